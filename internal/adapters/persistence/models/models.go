package models

import (
	"time"

	"reqflow/internal/core/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ============================================================
// RBAC Tables
// ============================================================

// Permission represents permissions table (closed catalog, seeded)
type Permission struct {
	ID          uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Module      string    `gorm:"size:50;not null" json:"module"`
	Description string    `gorm:"size:255" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Permission) TableName() string {
	return "permissions"
}

// BeforeCreate assigns a UUID if none is set
func (p *Permission) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Role represents roles table
type Role struct {
	ID          uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:50;not null" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	RolePermissions []RolePermission `gorm:"foreignKey:RoleID" json:"-"`
}

func (Role) TableName() string {
	return "roles"
}

func (r *Role) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// RolePermission represents role_permissions assignment table.
// The (role, permission) pair is unique.
type RolePermission struct {
	ID           uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	RoleID       uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_role_permission" json:"role_id"`
	PermissionID uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_role_permission" json:"permission_id"`

	// Relations
	Role       *Role       `gorm:"foreignKey:RoleID" json:"-"`
	Permission *Permission `gorm:"foreignKey:PermissionID" json:"permission,omitempty"`
}

func (RolePermission) TableName() string {
	return "role_permissions"
}

func (rp *RolePermission) BeforeCreate(tx *gorm.DB) error {
	if rp.ID == uuid.Nil {
		rp.ID = uuid.New()
	}
	return nil
}

// User represents users table. Every user has exactly one role.
type User struct {
	ID        uuid.UUID  `gorm:"type:char(36);primaryKey" json:"id"`
	FirstName string     `gorm:"size:50;not null" json:"first_name"`
	LastName  string     `gorm:"size:50;not null" json:"last_name"`
	Email     string     `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password  string     `gorm:"size:255;not null" json:"-"`
	RoleID    uuid.UUID  `gorm:"type:char(36);not null" json:"role_id"`
	IsActive  bool       `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`

	// Relations
	Role *Role `gorm:"foreignKey:RoleID" json:"role,omitempty"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// FullName returns the user's display name
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// UserResponse DTO
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	RoleID    uuid.UUID `json:"role_id"`
	RoleName  string    `json:"role_name,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	resp := &UserResponse{
		ID:        u.ID,
		FullName:  u.FullName(),
		Email:     u.Email,
		RoleID:    u.RoleID,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
	if u.Role != nil {
		resp.RoleName = u.Role.Name
	}
	return resp
}

// ============================================================
// Request Tables
// ============================================================

// Request represents requests table
type Request struct {
	ID              uuid.UUID            `gorm:"type:char(36);primaryKey" json:"id"`
	RequestNumber   string               `gorm:"uniqueIndex;size:20;not null" json:"request_number"`
	Title           string               `gorm:"size:200;not null" json:"title"`
	Description     string               `gorm:"size:2000;not null" json:"description"`
	RequestType     domain.RequestType   `gorm:"not null" json:"request_type"`
	Priority        domain.Priority      `gorm:"not null" json:"priority"`
	Status          domain.RequestStatus `gorm:"not null;index" json:"status"`
	CreatedByUserID uuid.UUID            `gorm:"type:char(36);not null;index" json:"created_by_user_id"`
	CreatedAt       time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       *time.Time           `json:"updated_at"`

	// Relations
	CreatedByUser *User                  `gorm:"foreignKey:CreatedByUserID" json:"created_by_user,omitempty"`
	StatusHistory []RequestStatusHistory `gorm:"foreignKey:RequestID" json:"-"`
}

func (Request) TableName() string {
	return "requests"
}

func (r *Request) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// RequestResponse DTO for list views
type RequestResponse struct {
	ID            uuid.UUID  `json:"id"`
	RequestNumber string     `json:"request_number"`
	Title         string     `json:"title"`
	RequestType   string     `json:"request_type"`
	Priority      string     `json:"priority"`
	Status        string     `json:"status"`
	CreatedByName string     `json:"created_by_name,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

func (r *Request) ToResponse() *RequestResponse {
	resp := &RequestResponse{
		ID:            r.ID,
		RequestNumber: r.RequestNumber,
		Title:         r.Title,
		RequestType:   r.RequestType.String(),
		Priority:      r.Priority.String(),
		Status:        r.Status.String(),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if r.CreatedByUser != nil {
		resp.CreatedByName = r.CreatedByUser.FullName()
	}
	return resp
}

// RequestStatusHistory represents request_status_histories table.
// Rows are append-only: never updated, never deleted.
type RequestStatusHistory struct {
	ID              uuid.UUID            `gorm:"type:char(36);primaryKey" json:"id"`
	RequestID       uuid.UUID            `gorm:"type:char(36);not null;index" json:"request_id"`
	OldStatus       domain.RequestStatus `gorm:"not null" json:"old_status"`
	NewStatus       domain.RequestStatus `gorm:"not null" json:"new_status"`
	Comment         string               `gorm:"size:500" json:"comment"`
	ChangedByUserID uuid.UUID            `gorm:"type:char(36);not null" json:"changed_by_user_id"`
	ChangedAt       time.Time            `gorm:"not null" json:"changed_at"`

	// Relations
	Request       *Request `gorm:"foreignKey:RequestID" json:"-"`
	ChangedByUser *User    `gorm:"foreignKey:ChangedByUserID" json:"changed_by_user,omitempty"`
}

func (RequestStatusHistory) TableName() string {
	return "request_status_histories"
}

func (h *RequestStatusHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// StatusHistoryResponse DTO
type StatusHistoryResponse struct {
	OldStatus     string    `json:"old_status"`
	NewStatus     string    `json:"new_status"`
	Comment       string    `json:"comment,omitempty"`
	ChangedByName string    `json:"changed_by_name,omitempty"`
	ChangedAt     time.Time `json:"changed_at"`
}

func (h *RequestStatusHistory) ToResponse() *StatusHistoryResponse {
	resp := &StatusHistoryResponse{
		OldStatus: h.OldStatus.String(),
		NewStatus: h.NewStatus.String(),
		Comment:   h.Comment,
		ChangedAt: h.ChangedAt,
	}
	if h.ChangedByUser != nil {
		resp.ChangedByName = h.ChangedByUser.FullName()
	}
	return resp
}

// ============================================================
// Auth Tables
// ============================================================

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uuid.UUID  `gorm:"type:char(36);primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:char(36);index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`

	// Relations
	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) BeforeCreate(tx *gorm.DB) error {
	if rt.ID == uuid.Nil {
		rt.ID = uuid.New()
	}
	return nil
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// RBAC
		&Permission{},
		&Role{},
		&RolePermission{},
		&User{},
		// Requests
		&Request{},
		&RequestStatusHistory{},
		// Auth
		&RefreshToken{},
	)
}
