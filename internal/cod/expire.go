package cod

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"depotChangeManagement/internal/audit"
	"depotChangeManagement/models"
	"depotChangeManagement/repository"
)

const expireBatchSize = 100

// ExpireStale moves every PENDING or AWAITING_INFO request whose expires_at is at
// or before now to EXPIRED and returns its container to AVAILABLE.
// Requests that change status concurrently are skipped. It returns the number expired.
func (s *Service) ExpireStale(ctx context.Context, now time.Time) (n int, err error) {
	defer func(start time.Time) { observe("expire_stale", start, err) }(time.Now())

	now = now.UTC()
	for {
		batch, err := s.requests.ListExpired(ctx, now, expireBatchSize)
		if err != nil {
			return n, ErrPersistence.Wrap(err)
		}
		expired := 0
		for i := range batch {
			ok, err := s.expireOne(ctx, &batch[i], now)
			if err != nil {
				return n, err
			}
			if ok {
				expired++
			}
		}
		n += expired
		// A full batch where nothing moved would list the same rows again.
		if len(batch) < expireBatchSize || expired == 0 {
			return n, nil
		}
	}
}

func (s *Service) expireOne(ctx context.Context, req *models.CodRequest, now time.Time) (bool, error) {
	var moved bool
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		ok, err := s.requests.Transition(ctx, req.ID, repository.CodRequestTransition{
			From: models.ActiveCodStatuses,
			To:   models.CodExpired,
			At:   now,
		})
		if err != nil {
			return ErrPersistence.Wrap(err)
		}
		if !ok {
			return nil
		}
		moved = true
		ok, err = s.containers.Transition(ctx, req.ContainerID, repository.ContainerTransition{
			From: []models.ContainerStatus{models.ContainerAwaitingCodApproval},
			To:   mustProject(models.CodExpired),
			At:   now,
		})
		if err != nil {
			return ErrPersistence.Wrap(err)
		}
		if !ok {
			s.log.WithFields(logrus.Fields{
				"request_id":   req.ID,
				"container_id": req.ContainerID,
			}).Warn("expired request's container was not awaiting approval; container left unchanged")
		}
		return nil
	})
	if err != nil {
		return false, persistence(err)
	}
	if !moved {
		return false, nil
	}
	expiredTotal.Inc()
	s.record(ctx, models.Actor{OrgName: audit.ActorSystem}, models.AuditExpired, req.ID, req.ContainerID, map[string]any{
		"previous_status": req.Status,
		"expires_at":      req.ExpiresAt,
	})
	return true, nil
}

// RunExpirySweeper calls ExpireStale every interval until ctx is done.
func (s *Service) RunExpirySweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.ExpireStale(ctx, s.clock())
			if err != nil {
				s.log.WithError(err).Error("expiry sweep failed")
				continue
			}
			if n > 0 {
				s.log.WithField("expired", n).Info("expiry sweep finished")
			}
		}
	}
}
