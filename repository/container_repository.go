package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"depotChangeManagement/models"
)

type ContainerRepository struct {
	db *sql.DB
}

func NewContainerRepository(db *sql.DB) *ContainerRepository {
	return &ContainerRepository{db: db}
}

const containerColumns = `id, container_number, organization_id, shipping_line_id, depot_id, drop_off_address, lat, lng, status,
payment_confirmed_at, delivery_confirmed_at, depot_processing_started_at, completed_at, updated_at`

// Create inserts a container. Empty ID and status default to a new UUID and AVAILABLE.
func (r *ContainerRepository) Create(ctx context.Context, c *models.Container) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = models.ContainerAvailable
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = time.Now().UTC()
	}
	_, err := conn(ctx, r.db).ExecContext(ctx, `
INSERT INTO containers (id, container_number, organization_id, shipping_line_id, depot_id, drop_off_address, lat, lng, status, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		c.ID, c.ContainerNumber, c.OrganizationID, nullableString(c.ShippingLineID), c.DepotID, c.DropOffAddress,
		nullableFloat(c.Lat), nullableFloat(c.Lng), string(c.Status), formatTime(c.UpdatedAt))
	if err != nil {
		return errors.Wrap(err, "insert container")
	}
	return nil
}

func (r *ContainerRepository) GetByID(ctx context.Context, id string) (*models.Container, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	row := conn(ctx, r.db).QueryRowContext(ctx, `SELECT `+containerColumns+` FROM containers WHERE id = $1`, id)
	c, err := scanContainer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get container")
	}
	return c, nil
}

func (r *ContainerRepository) GetByNumber(ctx context.Context, number string) (*models.Container, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	row := conn(ctx, r.db).QueryRowContext(ctx, `SELECT `+containerColumns+` FROM containers WHERE container_number = $1`, number)
	c, err := scanContainer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get container by number")
	}
	return c, nil
}

// Relocation moves a container to another depot.
type Relocation struct {
	DepotID string
	Address string
	Lat     *float64
	Lng     *float64
}

// ContainerTransition is a conditional status write. Nil fields are left untouched.
type ContainerTransition struct {
	From []models.ContainerStatus
	To   models.ContainerStatus
	At   time.Time

	Relocate                 *Relocation
	PaymentConfirmedAt       *time.Time
	DeliveryConfirmedAt      *time.Time
	DepotProcessingStartedAt *time.Time
	CompletedAt              *time.Time
}

// Transition applies t only when the container is currently in one of t.From.
// It returns false when no row matched, either because the container is gone or because its status moved.
func (r *ContainerRepository) Transition(ctx context.Context, id string, t ContainerTransition) (bool, error) {
	if len(t.From) == 0 {
		return false, errors.New("container transition requires at least one source status")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	at := t.At
	if at.IsZero() {
		at = time.Now()
	}
	var b updateBuilder
	b.set("status", string(t.To))
	b.set("updated_at", formatTime(at))
	if t.Relocate != nil {
		b.set("depot_id", t.Relocate.DepotID)
		b.set("drop_off_address", t.Relocate.Address)
		b.set("lat", nullableFloat(t.Relocate.Lat))
		b.set("lng", nullableFloat(t.Relocate.Lng))
	}
	if t.PaymentConfirmedAt != nil {
		b.set("payment_confirmed_at", formatTime(*t.PaymentConfirmedAt))
	}
	if t.DeliveryConfirmedAt != nil {
		b.set("delivery_confirmed_at", formatTime(*t.DeliveryConfirmedAt))
	}
	if t.DepotProcessingStartedAt != nil {
		b.set("depot_processing_started_at", formatTime(*t.DepotProcessingStartedAt))
	}
	if t.CompletedAt != nil {
		b.set("completed_at", formatTime(*t.CompletedAt))
	}
	from := make([]string, len(t.From))
	for i, s := range t.From {
		from[i] = string(s)
	}
	query := `UPDATE containers SET ` + strings.Join(b.sets, ", ") +
		` WHERE id = ` + b.arg(id) + ` AND status IN ` + b.in(from)

	res, err := conn(ctx, r.db).ExecContext(ctx, query, b.args...)
	if err != nil {
		return false, errors.Wrap(err, "update container status")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "rows affected")
	}
	return n == 1, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContainer(s rowScanner) (*models.Container, error) {
	var c models.Container
	var shippingLine, paymentAt, deliveryAt, processingAt, completedAt sql.NullString
	var lat, lng sql.NullFloat64
	var status, updatedAt string
	if err := s.Scan(&c.ID, &c.ContainerNumber, &c.OrganizationID, &shippingLine, &c.DepotID, &c.DropOffAddress,
		&lat, &lng, &status, &paymentAt, &deliveryAt, &processingAt, &completedAt, &updatedAt); err != nil {
		return nil, err
	}
	c.ShippingLineID = shippingLine.String
	c.Status = models.ContainerStatus(status)
	if lat.Valid {
		v := lat.Float64
		c.Lat = &v
	}
	if lng.Valid {
		v := lng.Float64
		c.Lng = &v
	}
	var err error
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if c.PaymentConfirmedAt, err = parseNullTime(paymentAt); err != nil {
		return nil, err
	}
	if c.DeliveryConfirmedAt, err = parseNullTime(deliveryAt); err != nil {
		return nil, err
	}
	if c.DepotProcessingStartedAt, err = parseNullTime(processingAt); err != nil {
		return nil, err
	}
	if c.CompletedAt, err = parseNullTime(completedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
