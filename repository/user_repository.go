package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"depotChangeManagement/models"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user. An empty ID is generated; an empty role defaults to dispatcher.
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = models.RoleDispatcher
	}
	_, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO users (id, username, role, organization_id) VALUES ($1, $2, $3, $4)`,
		u.ID, u.Username, string(u.Role), u.OrganizationID)
	if err != nil {
		return errors.Wrap(err, "insert user")
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, `SELECT id, username, role, organization_id FROM users WHERE id = $1`, id)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, `SELECT id, username, role, organization_id FROM users WHERE username = $1`, username)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var u models.User
	var role string
	err := conn(ctx, r.db).QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Username, &role, &u.OrganizationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get user")
	}
	u.Role = models.Role(role)
	return &u, nil
}

func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := conn(ctx, r.db).QueryContext(ctx,
		`SELECT id, username, role, organization_id FROM users ORDER BY username LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	defer rows.Close()
	var out []models.User
	for rows.Next() {
		var u models.User
		var role string
		if err := rows.Scan(&u.ID, &u.Username, &role, &u.OrganizationID); err != nil {
			return nil, err
		}
		u.Role = models.Role(role)
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

// UpdateRoleByUsername sets the role for the given username.
// Intended for administrative flows and tests.
func (r *UserRepository) UpdateRoleByUsername(ctx context.Context, username string, role models.Role) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := conn(ctx, r.db).ExecContext(ctx, `UPDATE users SET role = $1 WHERE username = $2`, string(role), username)
	return err
}

// CreateOrganization inserts an organization, generating its ID when empty.
func (r *UserRepository) CreateOrganization(ctx context.Context, o *models.Organization) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	_, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO organizations (id, name, kind) VALUES ($1, $2, $3)`, o.ID, o.Name, string(o.Kind))
	if err != nil {
		return errors.Wrap(err, "insert organization")
	}
	return nil
}

func (r *UserRepository) GetOrganization(ctx context.Context, id string) (*models.Organization, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var o models.Organization
	var kind string
	err := conn(ctx, r.db).QueryRowContext(ctx, `SELECT id, name, kind FROM organizations WHERE id = $1`, id).Scan(&o.ID, &o.Name, &kind)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get organization")
	}
	o.Kind = models.OrganizationKind(kind)
	return &o, nil
}
