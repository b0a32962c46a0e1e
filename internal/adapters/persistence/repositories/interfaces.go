package repositories

import (
	"context"
	"time"

	"reqflow/internal/adapters/persistence/models"
	"reqflow/internal/core/domain"

	"github.com/google/uuid"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetActiveByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetActiveByEmail(ctx context.Context, email string) (*models.User, error)
	GetActiveWithPermissions(ctx context.Context, id uuid.UUID) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context) ([]*models.User, error)
}

// RoleRepository defines role repository interface
type RoleRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Role, error)
	GetByIDWithPermissions(ctx context.Context, id uuid.UUID) (*models.Role, error)
	GetByName(ctx context.Context, name string) (*models.Role, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context) ([]*models.Role, error)
	ListActive(ctx context.Context) ([]*models.Role, error)
	CountUsers(ctx context.Context, roleID uuid.UUID) (int64, error)
	CountPermissions(ctx context.Context, roleID uuid.UUID) (int64, error)
	ReplacePermissions(ctx context.Context, roleID uuid.UUID, permissionIDs []uuid.UUID) error
}

// PermissionRepository defines permission repository interface
type PermissionRepository interface {
	List(ctx context.Context) ([]*models.Permission, error)
	GetByName(ctx context.Context, name string) (*models.Permission, error)
}

// RequestFilter holds list filtering parameters.
// OwnerID non-nil scopes the scan to one owner (visibility rule).
type RequestFilter struct {
	OwnerID   *uuid.UUID
	Search    string
	Status    *domain.RequestStatus
	Priority  *domain.Priority
	StartDate *time.Time
	EndDate   *time.Time
	Offset    int
	Limit     int
}

// StatusCounts holds dashboard counts by status
type StatusCounts struct {
	Total           int64
	Draft           int64
	PendingApproval int64
	Approved        int64
	Rejected        int64
}

// RequestRepository defines request repository interface
type RequestRepository interface {
	Create(ctx context.Context, request *models.Request) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Request, error)
	GetByIDWithHistory(ctx context.Context, id uuid.UUID) (*models.Request, error)
	Update(ctx context.Context, request *models.Request) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter *RequestFilter) ([]*models.Request, int64, error)
	Recent(ctx context.Context, ownerID *uuid.UUID, limit int) ([]*models.Request, error)
	CountByStatus(ctx context.Context, ownerID *uuid.UUID) (*StatusCounts, error)
	// CompareAndSwapStatus updates status only if the stored status still equals
	// from; reports whether the row was changed.
	CompareAndSwapStatus(ctx context.Context, id uuid.UUID, from, to domain.RequestStatus, updatedAt time.Time) (bool, error)
	MaxSequenceForPrefix(ctx context.Context, prefix string) (int, error)
	AppendHistory(ctx context.Context, entry *models.RequestStatusHistory) error
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uuid.UUID) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uuid.UUID) error
	DeleteExpired(ctx context.Context) (int64, error)
}
