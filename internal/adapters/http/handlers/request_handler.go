package handlers

import (
	"errors"
	"strconv"
	"time"

	"reqflow/internal/core/domain"
	"reqflow/internal/core/services"
	"reqflow/internal/pkg/pagination"
	"reqflow/internal/pkg/permissions"
	"reqflow/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RequestHandler handles request lifecycle endpoints
type RequestHandler struct {
	requestService *services.RequestService
	authService    *services.AuthService
}

// NewRequestHandler creates a new request handler
func NewRequestHandler(requestService *services.RequestService, authService *services.AuthService) *RequestHandler {
	return &RequestHandler{
		requestService: requestService,
		authService:    authService,
	}
}

// CreateRequestBody represents create request body
type CreateRequestBody struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	RequestType int    `json:"request_type"`
	Priority    int    `json:"priority"`
	Action      string `json:"action"` // "save" (default) or "submit"
}

// UpdateRequestBody represents update request body
type UpdateRequestBody struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	RequestType int    `json:"request_type"`
	Priority    int    `json:"priority"`
}

// DecisionBody represents an approve or reject body
type DecisionBody struct {
	Comment string `json:"comment"`
}

// List lists requests visible to the caller
// @Summary List requests
// @Description List requests visible to the caller, newest first, with filters
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search in number and title"
// @Param status query int false "Status filter (1-4)"
// @Param priority query int false "Priority filter (1-4)"
// @Param start_date query string false "Created-at lower bound (YYYY-MM-DD)"
// @Param end_date query string false "Created-at upper bound (YYYY-MM-DD)"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /requests [get]
func (h *RequestHandler) List(c *fiber.Ctx) error {
	actorID, ok := c.Locals("userID").(uuid.UUID)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	canViewAll, err := h.authService.HasPermission(c.Context(), actorID, permissions.RequestsViewAll)
	if err != nil {
		return response.InternalServerError(c, "Failed to resolve permissions")
	}

	params := pagination.GetParams(c)
	input := &services.ListRequestsInput{
		Search: c.Query("search"),
		Offset: params.Offset,
		Limit:  params.Limit,
	}

	if raw := c.Query("status"); raw != "" {
		value, err := strconv.Atoi(raw)
		status := domain.RequestStatus(value)
		if err != nil || !status.Valid() {
			return response.BadRequest(c, "Invalid status filter")
		}
		input.Status = &status
	}
	if raw := c.Query("priority"); raw != "" {
		value, err := strconv.Atoi(raw)
		priority := domain.Priority(value)
		if err != nil || !priority.Valid() {
			return response.BadRequest(c, "Invalid priority filter")
		}
		input.Priority = &priority
	}
	if raw := c.Query("start_date"); raw != "" {
		startDate, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return response.BadRequest(c, "Invalid start_date, expected YYYY-MM-DD")
		}
		input.StartDate = &startDate
	}
	if raw := c.Query("end_date"); raw != "" {
		endDate, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return response.BadRequest(c, "Invalid end_date, expected YYYY-MM-DD")
		}
		// The repository treats this as date-granular and includes the whole day
		input.EndDate = &endDate
	}

	result, err := h.requestService.List(c.Context(), input, actorID, canViewAll)
	if err != nil {
		return response.InternalServerError(c, "Failed to list requests")
	}

	return response.Success(c, "Requests retrieved successfully",
		pagination.NewResponse(result.Requests, params, result.Total))
}

// Dashboard returns status counts and recent requests
// @Summary Request dashboard
// @Description Status counts and the five most recent requests visible to the caller
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /requests/dashboard [get]
func (h *RequestHandler) Dashboard(c *fiber.Ctx) error {
	actorID, ok := c.Locals("userID").(uuid.UUID)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	canViewAll, err := h.authService.HasPermission(c.Context(), actorID, permissions.RequestsViewAll)
	if err != nil {
		return response.InternalServerError(c, "Failed to resolve permissions")
	}

	result, err := h.requestService.Dashboard(c.Context(), actorID, canViewAll)
	if err != nil {
		return response.InternalServerError(c, "Failed to load dashboard")
	}

	return response.Success(c, "Dashboard retrieved successfully", result)
}

// GetByID returns one request with its status history
// @Summary Get request detail
// @Description Get one request with status history and capability flags
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /requests/{id} [get]
func (h *RequestHandler) GetByID(c *fiber.Ctx) error {
	actorID, ok := c.Locals("userID").(uuid.UUID)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid request ID")
	}

	canViewAll, err := h.authService.HasPermission(c.Context(), actorID, permissions.RequestsViewAll)
	if err != nil {
		return response.InternalServerError(c, "Failed to resolve permissions")
	}

	detail, err := h.requestService.GetByID(c.Context(), id, actorID, canViewAll)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRequestNotFound):
			return response.NotFound(c, "Request not found")
		default:
			return response.InternalServerError(c, "Failed to get request")
		}
	}

	return response.Success(c, "Request retrieved successfully", detail)
}

// Create creates a new request
// @Summary Create request
// @Description Create a request as Draft ("save") or straight into Pending Approval ("submit")
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateRequestBody true "Request data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /requests [post]
func (h *RequestHandler) Create(c *fiber.Ctx) error {
	actorID, ok := c.Locals("userID").(uuid.UUID)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req CreateRequestBody
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	action := domain.CreateAction(req.Action)
	if action == "" {
		action = domain.ActionSave
	}
	if action != domain.ActionSave && action != domain.ActionSubmit {
		return response.BadRequest(c, "Action must be \"save\" or \"submit\"")
	}

	input := &services.CreateRequestInput{
		Title:       req.Title,
		Description: req.Description,
		RequestType: domain.RequestType(req.RequestType),
		Priority:    domain.Priority(req.Priority),
		Action:      action,
	}

	request, err := h.requestService.Create(c.Context(), input, actorID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidationFailed):
			return response.UnprocessableEntity(c, "Request data is invalid")
		case errors.Is(err, domain.ErrNumberExhausted):
			return response.Conflict(c, "Could not allocate a request number, please retry")
		default:
			return response.InternalServerError(c, "Failed to create request")
		}
	}

	return response.Created(c, "Request created successfully", request.ToResponse())
}

// Update edits a draft request
// @Summary Update request
// @Description Edit a draft request owned by the caller
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Param body body UpdateRequestBody true "Request data"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /requests/{id} [put]
func (h *RequestHandler) Update(c *fiber.Ctx) error {
	actorID, ok := c.Locals("userID").(uuid.UUID)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid request ID")
	}

	var req UpdateRequestBody
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input := &services.UpdateRequestInput{
		Title:       req.Title,
		Description: req.Description,
		RequestType: domain.RequestType(req.RequestType),
		Priority:    domain.Priority(req.Priority),
	}

	request, err := h.requestService.Update(c.Context(), id, input, actorID)
	if err != nil {
		return h.mapLifecycleError(c, err, "Failed to update request")
	}

	return response.Success(c, "Request updated successfully", request.ToResponse())
}

// Delete removes a draft request
// @Summary Delete request
// @Description Delete a draft request owned by the caller
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /requests/{id} [delete]
func (h *RequestHandler) Delete(c *fiber.Ctx) error {
	actorID, ok := c.Locals("userID").(uuid.UUID)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid request ID")
	}

	if err := h.requestService.Delete(c.Context(), id, actorID); err != nil {
		return h.mapLifecycleError(c, err, "Failed to delete request")
	}

	return response.Success(c, "Request deleted successfully", nil)
}

// Submit moves a draft to Pending Approval
// @Summary Submit request
// @Description Submit a draft request for approval
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /requests/{id}/submit [post]
func (h *RequestHandler) Submit(c *fiber.Ctx) error {
	actorID, ok := c.Locals("userID").(uuid.UUID)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid request ID")
	}

	if err := h.requestService.Submit(c.Context(), id, actorID); err != nil {
		return h.mapLifecycleError(c, err, "Failed to submit request")
	}

	return response.Success(c, "Request submitted for approval", nil)
}

// Approve moves a pending request to Approved
// @Summary Approve request
// @Description Approve a pending request with an optional comment
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Param body body DecisionBody false "Optional comment"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /requests/{id}/approve [post]
func (h *RequestHandler) Approve(c *fiber.Ctx) error {
	actorID, ok := c.Locals("userID").(uuid.UUID)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid request ID")
	}

	var req DecisionBody
	_ = c.BodyParser(&req) // comment is optional, an empty body is fine

	if err := h.requestService.Approve(c.Context(), id, actorID, req.Comment); err != nil {
		return h.mapLifecycleError(c, err, "Failed to approve request")
	}

	return response.Success(c, "Request approved", nil)
}

// Reject moves a pending request to Rejected
// @Summary Reject request
// @Description Reject a pending request; a comment is mandatory
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Param body body DecisionBody true "Rejection comment"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /requests/{id}/reject [post]
func (h *RequestHandler) Reject(c *fiber.Ctx) error {
	actorID, ok := c.Locals("userID").(uuid.UUID)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid request ID")
	}

	var req DecisionBody
	_ = c.BodyParser(&req)

	if err := h.requestService.Reject(c.Context(), id, actorID, req.Comment); err != nil {
		if errors.Is(err, domain.ErrCommentRequired) {
			return response.BadRequest(c, "Rejection comment is required")
		}
		return h.mapLifecycleError(c, err, "Failed to reject request")
	}

	return response.Success(c, "Request rejected", nil)
}

// mapLifecycleError translates lifecycle errors into HTTP responses
func (h *RequestHandler) mapLifecycleError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, domain.ErrRequestNotFound):
		return response.NotFound(c, "Request not found")
	case errors.Is(err, domain.ErrInvalidTransition):
		return response.Conflict(c, "Request status does not allow this action")
	case errors.Is(err, domain.ErrValidationFailed):
		return response.UnprocessableEntity(c, "Request data is invalid")
	default:
		return response.InternalServerError(c, fallback)
	}
}
