package repository

import (
	"context"
	"time"

	"depotChangeManagement/models"
)

// UserRepositoryI defines operations on User and Organization entities.
type UserRepositoryI interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetOrganization(ctx context.Context, id string) (*models.Organization, error)
}

// DepotRepositoryI defines operations on the depot catalog, its sync table and the fee matrix.
type DepotRepositoryI interface {
	GetByID(ctx context.Context, id string) (*models.Depot, error)
	IsSynced(ctx context.Context, id string) (bool, error)
	GetFee(ctx context.Context, originID, destinationID string) (*models.FeeMatrixEntry, error)
}

// ContainerRepositoryI defines operations on Container entities.
type ContainerRepositoryI interface {
	GetByID(ctx context.Context, id string) (*models.Container, error)
	Transition(ctx context.Context, id string, t ContainerTransition) (bool, error)
}

// CodRequestRepositoryI defines operations on CodRequest entities.
type CodRequestRepositoryI interface {
	Create(ctx context.Context, req *models.CodRequest) error
	GetByID(ctx context.Context, id string) (*models.CodRequest, error)
	FindActiveByContainer(ctx context.Context, containerID string) (*models.CodRequest, error)
	FindLatestApprovedByContainer(ctx context.Context, containerID string) (*models.CodRequest, error)
	Transition(ctx context.Context, id string, t CodRequestTransition) (bool, error)
	DeleteIfStatus(ctx context.Context, id string, from ...models.CodRequestStatus) (bool, error)
	ListPage(ctx context.Context, p ListCodRequestsParams) ([]models.CodRequest, error)
	ListExpired(ctx context.Context, now time.Time, limit int) ([]models.CodRequest, error)
}

// AuditRepositoryI is write-only apart from trail reads.
type AuditRepositoryI interface {
	Append(ctx context.Context, e *models.AuditLogEntry) error
	ListByRequest(ctx context.Context, requestID string) ([]models.AuditLogEntry, error)
	ListByContainer(ctx context.Context, containerID string) ([]models.AuditLogEntry, error)
}

// BillingRepositoryI defines operations on billing transactions.
type BillingRepositoryI interface {
	Create(ctx context.Context, t *models.BillingTransaction) error
	ListByRequest(ctx context.Context, requestID string) ([]models.BillingTransaction, error)
}

// Transactor runs a function in one database transaction.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
