// Package cod implements the change-of-depot request lifecycle: creation by the
// trucking company, decision by the shipping line, and the container-side
// progression through payment, depot processing and completion.
//
// Request and container writes of one operation share a transaction and are
// conditional on the expected current status. Audit and billing writes happen
// after commit and never fail the operation.
package cod

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"depotChangeManagement/internal/audit"
	"depotChangeManagement/internal/auth"
	"depotChangeManagement/internal/fee"
	"depotChangeManagement/models"
	"depotChangeManagement/repository"
)

// DefaultExpiryWindow is how long a request may wait for a decision.
const DefaultExpiryWindow = 24 * time.Hour

// FeeQuoter resolves relocation fees.
type FeeQuoter interface {
	Compute(ctx context.Context, originDepotID, destinationDepotID string) (fee.Quote, error)
}

// AuditLog records lifecycle events. Append never fails the caller.
type AuditLog interface {
	Append(ctx context.Context, e audit.Entry)
	Trail(ctx context.Context, requestID string) ([]models.AuditLogEntry, error)
	ContainerTrail(ctx context.Context, containerID string) ([]models.AuditLogEntry, error)
}

// Biller emits billing transactions. Errors are logged by the caller and swallowed.
type Biller interface {
	EmitCodFee(ctx context.Context, payerOrgID, requestID, containerNumber string, amount int64) error
}

// Permissions answers role policy questions.
type Permissions interface {
	Can(role models.Role, obj, act string) bool
}

// Deps are the collaborators of Service.
type Deps struct {
	Tx         repository.Transactor
	Containers repository.ContainerRepositoryI
	Requests   repository.CodRequestRepositoryI
	Depots     repository.DepotRepositoryI
	Fees       FeeQuoter
	Audit      AuditLog
	Billing    Biller
	Authz      Permissions
	Log        logrus.FieldLogger
}

// Options tune the lifecycle.
type Options struct {
	ExpiryWindow time.Duration
	// StrictFee rejects a create whose client fee differs from the matrix fee.
	StrictFee bool
}

type Service struct {
	tx         repository.Transactor
	containers repository.ContainerRepositoryI
	requests   repository.CodRequestRepositoryI
	depots     repository.DepotRepositoryI
	fees       FeeQuoter
	audit      AuditLog
	billing    Biller
	authz      Permissions
	validate   *validator.Validate
	log        logrus.FieldLogger
	opts       Options
	now        func() time.Time
}

func NewService(d Deps, opts Options) *Service {
	if opts.ExpiryWindow <= 0 {
		opts.ExpiryWindow = DefaultExpiryWindow
	}
	log := d.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		tx:         d.Tx,
		containers: d.Containers,
		requests:   d.Requests,
		depots:     d.Depots,
		fees:       d.Fees,
		audit:      d.Audit,
		billing:    d.Billing,
		authz:      d.Authz,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		log:        log.WithField("component", "cod"),
		opts:       opts,
		now:        time.Now,
	}
}

// SetClock replaces the time source. Intended for tests and the expire command.
func (s *Service) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *Service) clock() time.Time {
	return s.now().UTC()
}

func (s *Service) can(actor models.Actor, obj, act string) bool {
	return s.authz != nil && s.authz.Can(actor.Role, obj, act)
}

func (s *Service) bypassesOrg(actor models.Actor) bool {
	return s.can(actor, auth.ObjCodRequest, auth.ActBypassOrg)
}

func (s *Service) check(in any) error {
	if err := s.validate.Struct(in); err != nil {
		return ErrInvalidInput.Wrap(err)
	}
	return nil
}

// loadRequest returns the request or ErrRequestNotFound.
func (s *Service) loadRequest(ctx context.Context, id string) (*models.CodRequest, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, ErrPersistence.Wrap(err)
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	return req, nil
}

// loadContainer returns the container or ErrContainerNotFound.
func (s *Service) loadContainer(ctx context.Context, id string) (*models.Container, error) {
	c, err := s.containers.GetByID(ctx, id)
	if err != nil {
		return nil, ErrPersistence.Wrap(err)
	}
	if c == nil {
		return nil, ErrContainerNotFound
	}
	return c, nil
}

// depotName is best effort; audit details tolerate an empty name.
func (s *Service) depotName(ctx context.Context, id string) string {
	d, err := s.depots.GetByID(ctx, id)
	if err != nil || d == nil {
		return ""
	}
	return d.Name
}

func (s *Service) record(ctx context.Context, actor models.Actor, action models.AuditAction, requestID, containerID string, details map[string]any) {
	if s.audit == nil {
		return
	}
	s.audit.Append(ctx, audit.Entry{
		RequestID:    requestID,
		ContainerID:  containerID,
		ActorUserID:  actor.UserID,
		ActorOrgName: actor.OrgName,
		Action:       action,
		Details:      details,
	})
}
