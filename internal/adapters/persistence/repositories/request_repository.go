package repositories

import (
	"context"
	"strconv"
	"strings"
	"time"

	"reqflow/internal/adapters/persistence/models"
	"reqflow/internal/core/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// requestRepository implements RequestRepository interface
type requestRepository struct {
	db *gorm.DB
}

// NewRequestRepository creates a new request repository
func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

// Create creates a new request
func (r *requestRepository) Create(ctx context.Context, request *models.Request) error {
	return r.db.WithContext(ctx).Create(request).Error
}

// GetByID gets a request by ID with its creator loaded
func (r *requestRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Request, error) {
	var request models.Request
	err := r.db.WithContext(ctx).
		Preload("CreatedByUser").
		Where("id = ?", id).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// GetByIDWithHistory gets a request with creator and full status history,
// newest entries first
func (r *requestRepository) GetByIDWithHistory(ctx context.Context, id uuid.UUID) (*models.Request, error) {
	var request models.Request
	err := r.db.WithContext(ctx).
		Preload("CreatedByUser").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("changed_at DESC")
		}).
		Preload("StatusHistory.ChangedByUser").
		Where("id = ?", id).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// Update updates a request
func (r *requestRepository) Update(ctx context.Context, request *models.Request) error {
	return r.db.WithContext(ctx).Save(request).Error
}

// Delete deletes a request
func (r *requestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Request{}, "id = ?", id).Error
}

// List lists requests matching the filter, newest first
func (r *requestRepository) List(ctx context.Context, filter *RequestFilter) ([]*models.Request, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Request{})

	if filter.OwnerID != nil {
		query = query.Where("created_by_user_id = ?", *filter.OwnerID)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("title LIKE ? OR request_number LIKE ?", pattern, pattern)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("priority = ?", *filter.Priority)
	}
	if filter.StartDate != nil {
		query = query.Where("created_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		// EndDate is date-granular; include the whole end day
		query = query.Where("created_at < ?", filter.EndDate.AddDate(0, 0, 1))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var requests []*models.Request
	err := query.Preload("CreatedByUser").
		Order("created_at DESC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&requests).Error
	if err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

// Recent returns the most recently created requests, optionally scoped to one owner
func (r *requestRepository) Recent(ctx context.Context, ownerID *uuid.UUID, limit int) ([]*models.Request, error) {
	query := r.db.WithContext(ctx).Model(&models.Request{})
	if ownerID != nil {
		query = query.Where("created_by_user_id = ?", *ownerID)
	}

	var requests []*models.Request
	err := query.Preload("CreatedByUser").
		Order("created_at DESC").
		Limit(limit).
		Find(&requests).Error
	return requests, err
}

// CountByStatus returns dashboard counts, optionally scoped to one owner
func (r *requestRepository) CountByStatus(ctx context.Context, ownerID *uuid.UUID) (*StatusCounts, error) {
	type row struct {
		Status domain.RequestStatus
		Count  int64
	}
	query := r.db.WithContext(ctx).Model(&models.Request{})
	if ownerID != nil {
		query = query.Where("created_by_user_id = ?", *ownerID)
	}

	var rows []row
	err := query.Select("status, COUNT(*) as count").Group("status").Find(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := &StatusCounts{}
	for _, rw := range rows {
		counts.Total += rw.Count
		switch rw.Status {
		case domain.StatusDraft:
			counts.Draft = rw.Count
		case domain.StatusPendingApproval:
			counts.PendingApproval = rw.Count
		case domain.StatusApproved:
			counts.Approved = rw.Count
		case domain.StatusRejected:
			counts.Rejected = rw.Count
		}
	}
	return counts, nil
}

// CompareAndSwapStatus transitions status in a single conditional statement.
// A concurrent transition that already moved the row leaves zero rows affected.
func (r *requestRepository) CompareAndSwapStatus(ctx context.Context, id uuid.UUID, from, to domain.RequestStatus, updatedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Request{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": updatedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// MaxSequenceForPrefix scans existing request numbers sharing the day prefix
// and returns the highest sequence observed (0 when none exist)
func (r *requestRepository) MaxSequenceForPrefix(ctx context.Context, prefix string) (int, error) {
	var last models.Request
	err := r.db.WithContext(ctx).
		Where("request_number LIKE ?", prefix+"%").
		Order("request_number DESC").
		First(&last).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, err
	}

	parts := strings.Split(last.RequestNumber, "-")
	sequence, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return 0, nil
	}
	return sequence, nil
}

// AppendHistory appends one immutable status history entry
func (r *requestRepository) AppendHistory(ctx context.Context, entry *models.RequestStatusHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}
