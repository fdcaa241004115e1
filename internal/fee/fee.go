// Package fee resolves the flat relocation fee for moving a container between two depots.
package fee

import (
	"context"

	"github.com/sirupsen/logrus"

	"depotChangeManagement/internal/apperr"
	"depotChangeManagement/internal/geo"
	"depotChangeManagement/models"
)

const (
	NoteSameDepot = "same depot"
	NoteMatrix    = "fee matrix"
)

var (
	ErrFeeNotFound = apperr.New(apperr.KindNotFound, "FEE_NOT_FOUND",
		"Chưa có biểu phí cho tuyến depot này")
	ErrLookup = apperr.New(apperr.KindPersistence, "FEE_LOOKUP_FAILED",
		"Không thể tra cứu phí thay đổi depot, vui lòng thử lại sau")
)

// Store reads the fee matrix and, for distance fallback, the depot catalog.
type Store interface {
	GetFee(ctx context.Context, originID, destinationID string) (*models.FeeMatrixEntry, error)
	GetByID(ctx context.Context, id string) (*models.Depot, error)
}

// Quote is the result of a fee lookup. DistanceKm is informational only.
type Quote struct {
	Fee        int64    `json:"fee"`
	Note       string   `json:"note"`
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

type Calculator struct {
	store Store
	log   logrus.FieldLogger
}

func NewCalculator(store Store, log logrus.FieldLogger) *Calculator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Calculator{store: store, log: log.WithField("component", "fee")}
}

// Compute returns the fee for the ordered depot pair. A single point lookup, no caching or retries.
func (c *Calculator) Compute(ctx context.Context, originDepotID, destinationDepotID string) (Quote, error) {
	if originDepotID == destinationDepotID {
		zero := 0.0
		return Quote{Fee: 0, Note: NoteSameDepot, DistanceKm: &zero}, nil
	}
	entry, err := c.store.GetFee(ctx, originDepotID, destinationDepotID)
	if err != nil {
		c.log.WithError(err).WithFields(logrus.Fields{
			"origin":      originDepotID,
			"destination": destinationDepotID,
		}).Error("fee matrix lookup failed")
		return Quote{}, ErrLookup.Wrap(err)
	}
	if entry == nil {
		return Quote{}, ErrFeeNotFound
	}
	q := Quote{Fee: entry.Fee, Note: NoteMatrix, DistanceKm: entry.DistanceKm}
	if q.DistanceKm == nil {
		q.DistanceKm = c.distanceFromDepots(ctx, originDepotID, destinationDepotID)
	}
	return q, nil
}

// distanceFromDepots derives a great-circle distance from depot coordinates.
// Any failure yields nil; the distance never affects the fee.
func (c *Calculator) distanceFromDepots(ctx context.Context, originID, destinationID string) *float64 {
	origin, err := c.store.GetByID(ctx, originID)
	if err != nil || origin == nil {
		return nil
	}
	dest, err := c.store.GetByID(ctx, destinationID)
	if err != nil || dest == nil {
		return nil
	}
	if !geo.ValidCoordinates(origin.Lat, origin.Lng) || !geo.ValidCoordinates(dest.Lat, dest.Lng) {
		return nil
	}
	km := geo.RoundKm(geo.HaversineKm(origin.Lat, origin.Lng, dest.Lat, dest.Lng))
	return &km
}
