// Package billing records the amounts owed by organizations for COD changes.
package billing

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"depotChangeManagement/models"
)

// DefaultServiceFee is the platform service fee in VND when none is configured.
const DefaultServiceFee int64 = 20000

// Store persists billing transactions.
type Store interface {
	Create(ctx context.Context, t *models.BillingTransaction) error
}

type Emitter struct {
	store      Store
	serviceFee int64
	log        logrus.FieldLogger
}

func NewEmitter(store Store, serviceFee int64, log logrus.FieldLogger) *Emitter {
	if serviceFee <= 0 {
		serviceFee = DefaultServiceFee
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Emitter{store: store, serviceFee: serviceFee, log: log.WithField("component", "billing")}
}

// EmitCodFee bills the approved relocation fee to the requesting organization.
// A non-positive amount is a no-op.
func (e *Emitter) EmitCodFee(ctx context.Context, payerOrgID, requestID, containerNumber string, amount int64) error {
	if amount <= 0 {
		return nil
	}
	return e.emit(ctx, &models.BillingTransaction{
		OrganizationID:  payerOrgID,
		CodRequestID:    requestID,
		ContainerNumber: containerNumber,
		Kind:            models.BillingCodFee,
		Amount:          amount,
		Description:     describe("Phí thay đổi nơi hạ container (COD)", containerNumber),
	})
}

// EmitServiceFee bills the fixed platform service fee. containerNumber may be empty.
func (e *Emitter) EmitServiceFee(ctx context.Context, payerOrgID, requestID, containerNumber string) error {
	return e.emit(ctx, &models.BillingTransaction{
		OrganizationID:  payerOrgID,
		CodRequestID:    requestID,
		ContainerNumber: containerNumber,
		Kind:            models.BillingServiceFee,
		Amount:          e.serviceFee,
		Description:     describe("Phí dịch vụ nền tảng cho yêu cầu COD", containerNumber),
	})
}

func (e *Emitter) emit(ctx context.Context, t *models.BillingTransaction) error {
	if t.OrganizationID == "" {
		return errors.New("billing: payer organization is required")
	}
	if err := e.store.Create(ctx, t); err != nil {
		failures.WithLabelValues(string(t.Kind)).Inc()
		e.log.WithError(err).WithFields(logrus.Fields{
			"kind":       t.Kind,
			"payer":      t.OrganizationID,
			"request_id": t.CodRequestID,
			"amount":     t.Amount,
		}).Error("billing transaction failed")
		return errors.Wrapf(err, "emit %s", t.Kind)
	}
	emitted.WithLabelValues(string(t.Kind)).Inc()
	return nil
}

func describe(base, containerNumber string) string {
	if containerNumber == "" {
		return base
	}
	return fmt.Sprintf("%s - container %s", base, containerNumber)
}
