package services_test

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"reqflow/internal/core/domain"
	"reqflow/internal/core/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var numberPattern = regexp.MustCompile(`^TLP-\d{8}-\d{4}$`)

func validCreateInput(action domain.CreateAction) *services.CreateRequestInput {
	return &services.CreateRequestInput{
		Title:       "New laptop",
		Description: "Current one is out of warranty",
		RequestType: domain.TypeHardware,
		Priority:    domain.PriorityMedium,
		Action:      action,
	}
}

func TestCreateSaveProducesDraftWithoutHistory(t *testing.T) {
	db := setupTestDB(t)
	svc := newRequestService(db)
	owner := createTestUser(t, db, "owner@example.com", "User")

	request, err := svc.Create(context.Background(), validCreateInput(domain.ActionSave), owner.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusDraft, request.Status)
	assert.Regexp(t, numberPattern, request.RequestNumber)
	assert.Equal(t, owner.ID, request.CreatedByUserID)
	assert.EqualValues(t, 0, historyCount(t, db, request.ID))
}

func TestCreateSubmitStartsPendingWithOneHistoryEntry(t *testing.T) {
	db := setupTestDB(t)
	svc := newRequestService(db)
	owner := createTestUser(t, db, "owner@example.com", "User")

	request, err := svc.Create(context.Background(), validCreateInput(domain.ActionSubmit), owner.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPendingApproval, request.Status)
	assert.EqualValues(t, 1, historyCount(t, db, request.ID))

	detail, err := svc.GetByID(context.Background(), request.ID, owner.ID, false)
	require.NoError(t, err)
	require.Len(t, detail.StatusHistory, 1)
	assert.Equal(t, "Draft", detail.StatusHistory[0].OldStatus)
	assert.Equal(t, "Pending Approval", detail.StatusHistory[0].NewStatus)
	assert.Equal(t, "Request submitted for approval.", detail.StatusHistory[0].Comment)
}

func TestCreateValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := newRequestService(db)
	owner := createTestUser(t, db, "owner@example.com", "User")

	cases := []struct {
		name   string
		mutate func(*services.CreateRequestInput)
	}{
		{"blank title", func(in *services.CreateRequestInput) { in.Title = "   " }},
		{"blank description", func(in *services.CreateRequestInput) { in.Description = "" }},
		{"unknown request type", func(in *services.CreateRequestInput) { in.RequestType = 99 }},
		{"unknown priority", func(in *services.CreateRequestInput) { in.Priority = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validCreateInput(domain.ActionSave)
			tc.mutate(input)
			_, err := svc.Create(context.Background(), input, owner.ID)
			assert.ErrorIs(t, err, domain.ErrValidationFailed)
		})
	}
}

func TestRequestNumberSequenceWithinDay(t *testing.T) {
	db := setupTestDB(t)
	svc := newRequestService(db)
	owner := createTestUser(t, db, "owner@example.com", "User")

	day := time.Now().UTC().Format("20060102")
	for i := 1; i <= 3; i++ {
		request, err := svc.Create(context.Background(), validCreateInput(domain.ActionSave), owner.ID)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("TLP-%s-%04d", day, i), request.RequestNumber)
	}
}

func TestGetByIDHidesOtherOwnersWithoutViewAll(t *testing.T) {
	db := setupTestDB(t)
	svc := newRequestService(db)
	owner := createTestUser(t, db, "owner@example.com", "User")
	other := createTestUser(t, db, "other@example.com", "User")

	request, err := svc.Create(context.Background(), validCreateInput(domain.ActionSave), owner.ID)
	require.NoError(t, err)

	// Hidden and absent are the same outcome
	_, err = svc.GetByID(context.Background(), request.ID, other.ID, false)
	assert.ErrorIs(t, err, domain.ErrRequestNotFound)

	_, err = svc.GetByID(context.Background(), uuid.New(), owner.ID, false)
	assert.ErrorIs(t, err, domain.ErrRequestNotFound)

	// A viewer with view-all sees it
	detail, err := svc.GetByID(context.Background(), request.ID, other.ID, true)
	require.NoError(t, err)
	assert.Equal(t, request.RequestNumber, detail.RequestNumber)
}

func TestGetByIDCapabilityFlags(t *testing.T) {
	db := setupTestDB(t)
	svc := newRequestService(db)
	owner := createTestUser(t, db, "owner@example.com", "User")
	manager := createTestUser(t, db, "manager@example.com", "Manager")

	request, err := svc.Create(context.Background(), validCreateInput(domain.ActionSave), owner.ID)
	require.NoError(t, err)

	// Draft: owner can edit, nobody can approve
	detail, err := svc.GetByID(context.Background(), request.ID, owner.ID, false)
	require.NoError(t, err)
	assert.True(t, detail.CanEdit)
	assert.False(t, detail.CanApprove)

	require.NoError(t, svc.Submit(context.Background(), request.ID, owner.ID))

	// Pending: owner can no longer edit, a view-all reviewer can approve
	detail, err = svc.GetByID(context.Background(), request.ID, owner.ID, false)
	require.NoError(t, err)
	assert.False(t, detail.CanEdit)
	assert.False(t, detail.CanApprove)

	detail, err = svc.GetByID(context.Background(), request.ID, manager.ID, true)
	require.NoError(t, err)
	assert.False(t, detail.CanEdit)
	assert.True(t, detail.CanApprove)
}

func TestUpdateOnlyDraftAndOnlyOwner(t *testing.T) {
	db := setupTestDB(t)
	svc := newRequestService(db)
	owner := createTestUser(t, db, "owner@example.com", "User")
	other := createTestUser(t, db, "other@example.com", "User")

	request, err := svc.Create(context.Background(), validCreateInput(domain.ActionSave), owner.ID)
	require.NoError(t, err)

	update := &services.UpdateRequestInput{
		Title:       "New laptop, 16GB RAM",
		Description: "Current one is out of warranty",
		RequestType: domain.TypeHardware,
		Priority:    domain.PriorityHigh,
	}

	// Someone else's draft reads as not found
	_, err = svc.Update(context.Background(), request.ID, update, other.ID)
	assert.ErrorIs(t, err, domain.ErrRequestNotFound)

	updated, err := svc.Update(context.Background(), request.ID, update, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "New laptop, 16GB RAM", updated.Title)
	assert.Equal(t, domain.StatusDraft, updated.Status)

	// Outside Draft the edit is refused
	require.NoError(t, svc.Submit(context.Background(), request.ID, owner.ID))
	_, err = svc.Update(context.Background(), request.ID, update, owner.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestDeleteOnlyDraft(t *testing.T) {
	db := setupTestDB(t)
	svc := newRequestService(db)
	owner := createTestUser(t, db, "owner@example.com", "User")

	draft, err := svc.Create(context.Background(), validCreateInput(domain.ActionSave), owner.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), draft.ID, owner.ID))
	_, err = svc.GetByID(context.Background(), draft.ID, owner.ID, false)
	assert.ErrorIs(t, err, domain.ErrRequestNotFound)

	pending, err := svc.Create(context.Background(), validCreateInput(domain.ActionSubmit), owner.ID)
	require.NoError(t, err)
	err = svc.Delete(context.Background(), pending.ID, owner.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestSubmitIsSingleShot(t *testing.T) {
	db := setupTestDB(t)
	svc := newRequestService(db)
	owner := createTestUser(t, db, "owner@example.com", "User")

	request, err := svc.Create(context.Background(), validCreateInput(domain.ActionSave), owner.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Submit(context.Background(), request.ID, owner.ID))
	err = svc.Submit(context.Background(), request.ID, owner.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.EqualValues(t, 1, historyCount(t, db, request.ID))
}

func TestApproveDefaultsCommentAndRefusesRepeat(t *testing.T) {
	db := setupTestDB(t)
	svc := newRequestService(db)
	owner := createTestUser(t, db, "owner@example.com", "User")
	manager := createTestUser(t, db, "manager@example.com", "Manager")

	request, err := svc.Create(context.Background(), validCreateInput(domain.ActionSubmit), owner.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Approve(context.Background(), request.ID, manager.ID, "   "))

	detail, err := svc.GetByID(context.Background(), request.ID, manager.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "Approved", detail.Status)
	require.Len(t, detail.StatusHistory, 2)

	// History is newest first; the decision entry carries the default comment
	assert.Equal(t, "Approved", detail.StatusHistory[0].NewStatus)
	assert.Equal(t, "Request approved.", detail.StatusHistory[0].Comment)

	// A second approval changes nothing and records nothing
	err = svc.Approve(context.Background(), request.ID, manager.ID, "again")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.EqualValues(t, 2, historyCount(t, db, request.ID))
}

func TestRejectRequiresCommentBeforeAnythingElse(t *testing.T) {
	db := setupTestDB(t)
	svc := newRequestService(db)
	owner := createTestUser(t, db, "owner@example.com", "User")
	manager := createTestUser(t, db, "manager@example.com", "Manager")

	request, err := svc.Create(context.Background(), validCreateInput(domain.ActionSubmit), owner.ID)
	require.NoError(t, err)

	err = svc.Reject(context.Background(), request.ID, manager.ID, "  ")
	assert.ErrorIs(t, err, domain.ErrCommentRequired)

	// Nothing mutated by the failed attempt
	detail, err := svc.GetByID(context.Background(), request.ID, manager.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "Pending Approval", detail.Status)
	assert.EqualValues(t, 1, historyCount(t, db, request.ID))

	// The comment check fires even for ids that don't exist
	err = svc.Reject(context.Background(), uuid.New(), manager.ID, "")
	assert.ErrorIs(t, err, domain.ErrCommentRequired)

	require.NoError(t, svc.Reject(context.Background(), request.ID, manager.ID, "Budget exceeded"))
	detail, err = svc.GetByID(context.Background(), request.ID, manager.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "Rejected", detail.Status)
	assert.Equal(t, "Budget exceeded", detail.StatusHistory[0].Comment)
}

func TestListScopesToOwnerWithoutViewAll(t *testing.T) {
	db := setupTestDB(t)
	svc := newRequestService(db)
	alice := createTestUser(t, db, "alice@example.com", "User")
	bob := createTestUser(t, db, "bob@example.com", "User")

	for i := 0; i < 2; i++ {
		_, err := svc.Create(context.Background(), validCreateInput(domain.ActionSave), alice.ID)
		require.NoError(t, err)
	}
	_, err := svc.Create(context.Background(), validCreateInput(domain.ActionSubmit), bob.ID)
	require.NoError(t, err)

	input := &services.ListRequestsInput{Limit: 20}

	mine, err := svc.List(context.Background(), input, alice.ID, false)
	require.NoError(t, err)
	assert.EqualValues(t, 2, mine.Total)

	all, err := svc.List(context.Background(), input, alice.ID, true)
	require.NoError(t, err)
	assert.EqualValues(t, 3, all.Total)

	pending := domain.StatusPendingApproval
	filtered, err := svc.List(context.Background(), &services.ListRequestsInput{Status: &pending, Limit: 20}, alice.ID, true)
	require.NoError(t, err)
	assert.EqualValues(t, 1, filtered.Total)
}

func TestDashboardCountsAndRecentFive(t *testing.T) {
	db := setupTestDB(t)
	svc := newRequestService(db)
	owner := createTestUser(t, db, "owner@example.com", "User")
	manager := createTestUser(t, db, "manager@example.com", "Manager")

	var lastPending uuid.UUID
	for i := 0; i < 6; i++ {
		request, err := svc.Create(context.Background(), validCreateInput(domain.ActionSubmit), owner.ID)
		require.NoError(t, err)
		lastPending = request.ID
	}
	require.NoError(t, svc.Approve(context.Background(), lastPending, manager.ID, ""))

	out, err := svc.Dashboard(context.Background(), owner.ID, false)
	require.NoError(t, err)
	assert.EqualValues(t, 6, out.TotalRequests)
	assert.EqualValues(t, 5, out.PendingApprovalCount)
	assert.EqualValues(t, 1, out.ApprovedCount)
	assert.EqualValues(t, 0, out.DraftCount)
	assert.Len(t, out.RecentRequests, 5)

	// Someone else without view-all sees an empty board
	other := createTestUser(t, db, "other@example.com", "User")
	empty, err := svc.Dashboard(context.Background(), other.ID, false)
	require.NoError(t, err)
	assert.EqualValues(t, 0, empty.TotalRequests)
}

func TestTwoUserLifecycleEndToEnd(t *testing.T) {
	db := setupTestDB(t)
	svc := newRequestService(db)
	employee := createTestUser(t, db, "employee@example.com", "User")
	reviewer := createTestUser(t, db, "reviewer@example.com", "Manager")

	// Employee drafts, revises and submits
	request, err := svc.Create(context.Background(), validCreateInput(domain.ActionSave), employee.ID)
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), request.ID, &services.UpdateRequestInput{
		Title:       "New laptop for onboarding",
		Description: "Spare pool is empty",
		RequestType: domain.TypeHardware,
		Priority:    domain.PriorityCritical,
	}, employee.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Submit(context.Background(), request.ID, employee.ID))

	// Reviewer sees it and rejects with a reason
	detail, err := svc.GetByID(context.Background(), request.ID, reviewer.ID, true)
	require.NoError(t, err)
	assert.True(t, detail.CanApprove)
	require.NoError(t, svc.Reject(context.Background(), request.ID, reviewer.ID, "Use the spare pool instead"))

	// Terminal: no further transitions, audit trail complete
	assert.ErrorIs(t, svc.Submit(context.Background(), request.ID, employee.ID), domain.ErrInvalidTransition)
	assert.ErrorIs(t, svc.Approve(context.Background(), request.ID, reviewer.ID, ""), domain.ErrInvalidTransition)

	detail, err = svc.GetByID(context.Background(), request.ID, employee.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "Rejected", detail.Status)
	require.Len(t, detail.StatusHistory, 2)
	assert.Equal(t, "Use the spare pool instead", detail.StatusHistory[0].Comment)
	assert.Equal(t, "Test User", detail.StatusHistory[0].ChangedByName)
}
