package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"reqflow/internal/adapters/persistence/models"
	"reqflow/internal/adapters/persistence/repositories"
	"reqflow/internal/core/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// NumberPrefix is the request number prefix, e.g. TLP-20260828-0001
	NumberPrefix = "TLP"

	// numberRetries bounds the retry loop on a request number collision
	numberRetries = 3
)

// Default history comments when the caller supplies none
const (
	commentSubmitted = "Request submitted for approval."
	commentApproved  = "Request approved."
)

// RequestService owns the request lifecycle state machine.
// Every operation takes the acting identity as an explicit parameter.
type RequestService struct {
	requestRepo repositories.RequestRepository
	userRepo    repositories.UserRepository
}

// NewRequestService creates a new request service
func NewRequestService(requestRepo repositories.RequestRepository, userRepo repositories.UserRepository) *RequestService {
	return &RequestService{
		requestRepo: requestRepo,
		userRepo:    userRepo,
	}
}

// CreateRequestInput represents create request input
type CreateRequestInput struct {
	Title       string              `json:"title" validate:"required,max=200"`
	Description string              `json:"description" validate:"required,max=2000"`
	RequestType domain.RequestType  `json:"request_type" validate:"required"`
	Priority    domain.Priority     `json:"priority" validate:"required"`
	Action      domain.CreateAction `json:"action"` // "save" (default) or "submit"
}

func (in *CreateRequestInput) validate() error {
	if strings.TrimSpace(in.Title) == "" || len(in.Title) > 200 {
		return domain.ErrValidationFailed
	}
	if strings.TrimSpace(in.Description) == "" || len(in.Description) > 2000 {
		return domain.ErrValidationFailed
	}
	if !in.RequestType.Valid() || !in.Priority.Valid() {
		return domain.ErrValidationFailed
	}
	return nil
}

// Create creates a new request owned by the actor. The "submit" action creates
// directly into PendingApproval and records the transition; "save" creates a
// Draft with no history.
func (s *RequestService) Create(ctx context.Context, input *CreateRequestInput, actorID uuid.UUID) (*models.Request, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	status := input.Action.InitialStatus()

	// Numbering is a read-then-write scan; the unique index on request_number
	// catches a concurrent winner and we retry with a fresh scan.
	var request *models.Request
	for attempt := 0; attempt < numberRetries; attempt++ {
		number, err := s.nextRequestNumber(ctx)
		if err != nil {
			return nil, err
		}

		request = &models.Request{
			RequestNumber:   number,
			Title:           input.Title,
			Description:     input.Description,
			RequestType:     input.RequestType,
			Priority:        input.Priority,
			Status:          status,
			CreatedByUserID: actorID,
		}

		err = s.requestRepo.Create(ctx, request)
		if err == nil {
			break
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			request = nil
			continue
		}
		return nil, err
	}
	if request == nil {
		return nil, domain.ErrNumberExhausted
	}

	if status == domain.StatusPendingApproval {
		if err := s.appendHistory(ctx, request.ID, domain.StatusDraft, domain.StatusPendingApproval, commentSubmitted, actorID); err != nil {
			return nil, err
		}
	}

	log.Printf("✅ Request created: %s (%s)", request.RequestNumber, status)
	return request, nil
}

// RequestDetail is the detail projection with computed capability flags
type RequestDetail struct {
	ID            uuid.UUID                       `json:"id"`
	RequestNumber string                          `json:"request_number"`
	Title         string                          `json:"title"`
	Description   string                          `json:"description"`
	RequestType   string                          `json:"request_type"`
	Priority      string                          `json:"priority"`
	Status        string                          `json:"status"`
	CreatedByName string                          `json:"created_by_name"`
	CreatedAt     time.Time                       `json:"created_at"`
	UpdatedAt     *time.Time                      `json:"updated_at,omitempty"`
	CanEdit       bool                            `json:"can_edit"`
	CanApprove    bool                            `json:"can_approve"`
	StatusHistory []*models.StatusHistoryResponse `json:"status_history"`
}

// GetByID returns the request detail, applying the visibility rule: a viewer
// without "view all" sees only their own requests. Hidden and absent are
// deliberately the same outcome so existence is not leaked.
func (s *RequestService) GetByID(ctx context.Context, id uuid.UUID, actorID uuid.UUID, canViewAll bool) (*RequestDetail, error) {
	request, err := s.requestRepo.GetByIDWithHistory(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, err
	}

	if !canViewAll && request.CreatedByUserID != actorID {
		return nil, domain.ErrRequestNotFound
	}

	detail := &RequestDetail{
		ID:            request.ID,
		RequestNumber: request.RequestNumber,
		Title:         request.Title,
		Description:   request.Description,
		RequestType:   request.RequestType.String(),
		Priority:      request.Priority.String(),
		Status:        request.Status.String(),
		CreatedAt:     request.CreatedAt,
		UpdatedAt:     request.UpdatedAt,
		CanEdit:       request.Status == domain.StatusDraft && request.CreatedByUserID == actorID,
		CanApprove:    request.Status == domain.StatusPendingApproval && canViewAll,
	}
	if request.CreatedByUser != nil {
		detail.CreatedByName = request.CreatedByUser.FullName()
	}

	detail.StatusHistory = make([]*models.StatusHistoryResponse, 0, len(request.StatusHistory))
	for i := range request.StatusHistory {
		detail.StatusHistory = append(detail.StatusHistory, request.StatusHistory[i].ToResponse())
	}

	return detail, nil
}

// ListRequestsInput represents list filtering input
type ListRequestsInput struct {
	Search    string
	Status    *domain.RequestStatus
	Priority  *domain.Priority
	StartDate *time.Time
	EndDate   *time.Time
	Offset    int
	Limit     int
}

// ListOutput represents list output
type ListOutput struct {
	Requests []*models.RequestResponse `json:"requests"`
	Total    int64                     `json:"total"`
}

// List lists requests visible to the actor, newest first
func (s *RequestService) List(ctx context.Context, input *ListRequestsInput, actorID uuid.UUID, canViewAll bool) (*ListOutput, error) {
	filter := &repositories.RequestFilter{
		Search:    input.Search,
		Status:    input.Status,
		Priority:  input.Priority,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		Offset:    input.Offset,
		Limit:     input.Limit,
	}
	if !canViewAll {
		filter.OwnerID = &actorID
	}

	requests, total, err := s.requestRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := &ListOutput{
		Requests: make([]*models.RequestResponse, 0, len(requests)),
		Total:    total,
	}
	for _, request := range requests {
		out.Requests = append(out.Requests, request.ToResponse())
	}
	return out, nil
}

// UpdateRequestInput represents update request input
type UpdateRequestInput struct {
	Title       string             `json:"title" validate:"required,max=200"`
	Description string             `json:"description" validate:"required,max=2000"`
	RequestType domain.RequestType `json:"request_type" validate:"required"`
	Priority    domain.Priority    `json:"priority" validate:"required"`
}

// Update edits a draft request. Edit is state-gated, not a transition: it only
// succeeds while status is Draft and the actor owns the request, and it never
// alters status.
func (s *RequestService) Update(ctx context.Context, id uuid.UUID, input *UpdateRequestInput, actorID uuid.UUID) (*models.Request, error) {
	create := CreateRequestInput{
		Title:       input.Title,
		Description: input.Description,
		RequestType: input.RequestType,
		Priority:    input.Priority,
	}
	if err := create.validate(); err != nil {
		return nil, err
	}

	request, err := s.getOwned(ctx, id, actorID)
	if err != nil {
		return nil, err
	}

	if request.Status != domain.StatusDraft {
		return nil, domain.ErrInvalidTransition
	}

	now := time.Now()
	request.Title = input.Title
	request.Description = input.Description
	request.RequestType = input.RequestType
	request.Priority = input.Priority
	request.UpdatedAt = &now

	if err := s.requestRepo.Update(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}

// Delete removes a draft request. Only the owner may delete, and only drafts.
func (s *RequestService) Delete(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error {
	request, err := s.getOwned(ctx, id, actorID)
	if err != nil {
		return err
	}

	if request.Status != domain.StatusDraft {
		return domain.ErrInvalidTransition
	}

	return s.requestRepo.Delete(ctx, id)
}

// Submit transitions an owned draft to PendingApproval
func (s *RequestService) Submit(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error {
	request, err := s.getOwned(ctx, id, actorID)
	if err != nil {
		return err
	}

	return s.transition(ctx, request, domain.StatusDraft, domain.StatusPendingApproval, commentSubmitted, actorID)
}

// Approve transitions a pending request to Approved. The permission gate has
// already verified Requests.Approve; the owner need not match.
func (s *RequestService) Approve(ctx context.Context, id uuid.UUID, actorID uuid.UUID, comment string) error {
	if strings.TrimSpace(comment) == "" {
		comment = commentApproved
	}

	request, err := s.get(ctx, id)
	if err != nil {
		return err
	}

	return s.transition(ctx, request, domain.StatusPendingApproval, domain.StatusApproved, comment, actorID)
}

// Reject transitions a pending request to Rejected. A non-empty comment is
// mandatory and validated before anything else runs.
func (s *RequestService) Reject(ctx context.Context, id uuid.UUID, actorID uuid.UUID, comment string) error {
	if strings.TrimSpace(comment) == "" {
		return domain.ErrCommentRequired
	}

	request, err := s.get(ctx, id)
	if err != nil {
		return err
	}

	return s.transition(ctx, request, domain.StatusPendingApproval, domain.StatusRejected, comment, actorID)
}

// DashboardOutput represents dashboard counts and recent activity
type DashboardOutput struct {
	TotalRequests        int64                     `json:"total_requests"`
	DraftCount           int64                     `json:"draft_count"`
	PendingApprovalCount int64                     `json:"pending_approval_count"`
	ApprovedCount        int64                     `json:"approved_count"`
	RejectedCount        int64                     `json:"rejected_count"`
	RecentRequests       []*models.RequestResponse `json:"recent_requests"`
}

// Dashboard computes status counts and the five most recent requests,
// scoped by the visibility rule
func (s *RequestService) Dashboard(ctx context.Context, actorID uuid.UUID, canViewAll bool) (*DashboardOutput, error) {
	var ownerID *uuid.UUID
	if !canViewAll {
		ownerID = &actorID
	}

	counts, err := s.requestRepo.CountByStatus(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	recent, err := s.requestRepo.Recent(ctx, ownerID, 5)
	if err != nil {
		return nil, err
	}

	out := &DashboardOutput{
		TotalRequests:        counts.Total,
		DraftCount:           counts.Draft,
		PendingApprovalCount: counts.PendingApproval,
		ApprovedCount:        counts.Approved,
		RejectedCount:        counts.Rejected,
		RecentRequests:       make([]*models.RequestResponse, 0, len(recent)),
	}
	for _, request := range recent {
		out.RecentRequests = append(out.RecentRequests, request.ToResponse())
	}
	return out, nil
}

// get fetches a request without a visibility check (used by gated transitions)
func (s *RequestService) get(ctx context.Context, id uuid.UUID) (*models.Request, error) {
	request, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, err
	}
	return request, nil
}

// getOwned fetches a request owned by the actor. A request owned by someone
// else reports not-found, same as an absent id.
func (s *RequestService) getOwned(ctx context.Context, id uuid.UUID, actorID uuid.UUID) (*models.Request, error) {
	request, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.CreatedByUserID != actorID {
		return nil, domain.ErrRequestNotFound
	}
	return request, nil
}

// transition performs one guarded state change: a conditional single-statement
// update from the expected status, then one appended history entry. A
// concurrent transition that got there first leaves the swap empty and nothing
// is written.
func (s *RequestService) transition(ctx context.Context, request *models.Request, from, to domain.RequestStatus, comment string, actorID uuid.UUID) error {
	if request.Status != from {
		return domain.ErrInvalidTransition
	}

	now := time.Now()
	swapped, err := s.requestRepo.CompareAndSwapStatus(ctx, request.ID, from, to, now)
	if err != nil {
		return err
	}
	if !swapped {
		return domain.ErrInvalidTransition
	}

	request.Status = to
	request.UpdatedAt = &now

	if err := s.appendHistory(ctx, request.ID, from, to, comment, actorID); err != nil {
		return err
	}

	log.Printf("✅ Request %s: %s → %s", request.RequestNumber, from, to)
	return nil
}

// appendHistory records one immutable audit entry for a status change
func (s *RequestService) appendHistory(ctx context.Context, requestID uuid.UUID, from, to domain.RequestStatus, comment string, actorID uuid.UUID) error {
	entry := &models.RequestStatusHistory{
		RequestID:       requestID,
		OldStatus:       from,
		NewStatus:       to,
		Comment:         comment,
		ChangedByUserID: actorID,
		ChangedAt:       time.Now(),
	}
	return s.requestRepo.AppendHistory(ctx, entry)
}

// nextRequestNumber produces a date-scoped number: TLP-<YYYYMMDD>-<4-digit
// sequence>, sequence restarting at 1 each UTC calendar day
func (s *RequestService) nextRequestNumber(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("%s-%s", NumberPrefix, time.Now().UTC().Format("20060102"))

	last, err := s.requestRepo.MaxSequenceForPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s-%04d", prefix, last+1), nil
}
