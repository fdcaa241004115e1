package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"depotChangeManagement/models"
)

// DepotRepository reads the depot catalog, the synced-depot table and the COD fee matrix.
type DepotRepository struct {
	db *sql.DB
}

func NewDepotRepository(db *sql.DB) *DepotRepository {
	return &DepotRepository{db: db}
}

func (r *DepotRepository) Create(ctx context.Context, d *models.Depot) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	_, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO depots (id, name, address, lat, lng) VALUES ($1, $2, $3, $4, $5)`,
		d.ID, d.Name, d.Address, d.Lat, d.Lng)
	if err != nil {
		return errors.Wrap(err, "insert depot")
	}
	return nil
}

func (r *DepotRepository) GetByID(ctx context.Context, id string) (*models.Depot, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var d models.Depot
	err := conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT id, name, address, lat, lng FROM depots WHERE id = $1`, id).Scan(&d.ID, &d.Name, &d.Address, &d.Lat, &d.Lng)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get depot")
	}
	return &d, nil
}

// MarkSynced records the depot in the secondary sync table. Repeated calls refresh synced_at.
func (r *DepotRepository) MarkSynced(ctx context.Context, id string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := conn(ctx, r.db).ExecContext(ctx, `
INSERT INTO synced_depots (depot_id, synced_at) VALUES ($1, $2)
ON CONFLICT (depot_id) DO UPDATE SET synced_at = excluded.synced_at`, id, formatTime(at))
	if err != nil {
		return errors.Wrap(err, "mark depot synced")
	}
	return nil
}

// IsSynced reports whether the depot appears in the sync table.
func (r *DepotRepository) IsSynced(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var n int
	err := conn(ctx, r.db).QueryRowContext(ctx, `SELECT COUNT(1) FROM synced_depots WHERE depot_id = $1`, id).Scan(&n)
	if err != nil {
		return false, errors.Wrap(err, "check depot sync")
	}
	return n > 0, nil
}

// UpsertFee sets the fee for an ordered depot pair.
func (r *DepotRepository) UpsertFee(ctx context.Context, e models.FeeMatrixEntry) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := conn(ctx, r.db).ExecContext(ctx, `
INSERT INTO cod_fee_matrix (origin_depot_id, destination_depot_id, fee, distance_km) VALUES ($1, $2, $3, $4)
ON CONFLICT (origin_depot_id, destination_depot_id) DO UPDATE SET fee = excluded.fee, distance_km = excluded.distance_km`,
		e.OriginDepotID, e.DestinationDepotID, e.Fee, nullableFloat(e.DistanceKm))
	if err != nil {
		return errors.Wrap(err, "upsert fee")
	}
	return nil
}

// GetFee returns the matrix entry for the ordered pair, or nil when there is none.
func (r *DepotRepository) GetFee(ctx context.Context, originID, destinationID string) (*models.FeeMatrixEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	e := models.FeeMatrixEntry{OriginDepotID: originID, DestinationDepotID: destinationID}
	var dist sql.NullFloat64
	err := conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT fee, distance_km FROM cod_fee_matrix WHERE origin_depot_id = $1 AND destination_depot_id = $2`,
		originID, destinationID).Scan(&e.Fee, &dist)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get fee")
	}
	if dist.Valid {
		v := dist.Float64
		e.DistanceKm = &v
	}
	return &e, nil
}
