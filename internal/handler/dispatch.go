package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/relaywire/dispatch-chain/internal/domain"
	"github.com/relaywire/dispatch-chain/internal/service"
)

// DispatchHandler handles dispatch HTTP requests
type DispatchHandler struct {
	service  *service.DispatchService
	validate *validator.Validate
}

// NewDispatchHandler creates a new DispatchHandler
func NewDispatchHandler(service *service.DispatchService) *DispatchHandler {
	return &DispatchHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers dispatch routes
func (h *DispatchHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Dispatch)
	r.Post("/probe", h.Probe)
	r.Get("/channels", h.Channels)
	r.Get("/outcomes", h.ListOutcomes)
	r.Get("/outcomes/{id}", h.GetOutcome)
}

// DispatchRequestDTO represents a request to dispatch a notification
// @Description Request to dispatch a notification through the channel chain
type DispatchRequestDTO struct {
	Destination    string            `json:"destination" validate:"required" example:"user@example.com"`
	Body           string            `json:"body" validate:"required" example:"Your verification code is 123456"`
	Subject        string            `json:"subject,omitempty" example:"Verification"`
	Sender         string            `json:"sender,omitempty" example:"billing"`
	Priority       domain.Priority   `json:"priority" validate:"omitempty,oneof=low normal high urgent" example:"normal"`
	ScheduledAt    *time.Time        `json:"scheduled_at,omitempty"`
	Attributes     map[string]string `json:"attributes,omitempty"`
	IdempotencyKey *string           `json:"idempotency_key,omitempty" example:"unique-key-123"`
}

// Dispatch sends a notification through the channel chain
// @Summary Dispatch notification
// @Description Send a notification; the first channel whose destination shape matches delivers it
// @Tags dispatch
// @Accept json
// @Produce json
// @Param request body DispatchRequestDTO true "Dispatch request"
// @Success 200 {object} Response{data=domain.Outcome}
// @Failure 400 {object} Response
// @Failure 429 {object} Response
// @Failure 500 {object} Response
// @Router /api/v1/dispatch [post]
func (h *DispatchHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	var req DispatchRequestDTO
	if err := DecodeJSON(r, &req); err != nil {
		HandleError(w, err)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	outcome, err := h.service.Dispatch(r.Context(), service.DispatchRequest{
		Destination:    req.Destination,
		Body:           req.Body,
		Subject:        req.Subject,
		Sender:         req.Sender,
		Priority:       req.Priority,
		ScheduledAt:    req.ScheduledAt,
		Attributes:     req.Attributes,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		HandleError(w, err)
		return
	}

	JSON(w, http.StatusOK, outcome)
}

// ProbeRequest represents a capability probe
type ProbeRequest struct {
	Destination string `json:"destination" validate:"required" example:"+15551234567"`
}

// ProbeResult represents the result of a capability probe
type ProbeResult struct {
	Destination string `json:"destination"`
	CanHandle   bool   `json:"can_handle"`
}

// Probe checks whether any channel in the chain can deliver to a destination
// @Summary Probe destination
// @Description Check if any configured channel accepts the destination, without dispatching
// @Tags dispatch
// @Accept json
// @Produce json
// @Param request body ProbeRequest true "Probe request"
// @Success 200 {object} Response{data=ProbeResult}
// @Failure 400 {object} Response
// @Router /api/v1/dispatch/probe [post]
func (h *DispatchHandler) Probe(w http.ResponseWriter, r *http.Request) {
	var req ProbeRequest
	if err := DecodeJSON(r, &req); err != nil {
		HandleError(w, err)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	JSON(w, http.StatusOK, ProbeResult{
		Destination: req.Destination,
		CanHandle:   h.service.CanHandle(req.Destination),
	})
}

// ChannelsResult describes the configured chain
type ChannelsResult struct {
	Channels string `json:"channels" example:"CHAT + SMS + EMAIL + LOG"`
}

// Channels describes the configured channel chain, outermost first
// @Summary Describe channel chain
// @Description List the configured channels in delegation order
// @Tags dispatch
// @Produce json
// @Success 200 {object} Response{data=ChannelsResult}
// @Router /api/v1/dispatch/channels [get]
func (h *DispatchHandler) Channels(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, ChannelsResult{Channels: h.service.Channels()})
}

// GetOutcome retrieves a delivery outcome by ID
// @Summary Get outcome by ID
// @Description Get a recorded delivery outcome by its ID
// @Tags outcomes
// @Produce json
// @Param id path string true "Outcome ID"
// @Success 200 {object} Response{data=domain.Outcome}
// @Failure 404 {object} Response
// @Failure 500 {object} Response
// @Router /api/v1/dispatch/outcomes/{id} [get]
func (h *DispatchHandler) GetOutcome(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		JSONError(w, http.StatusBadRequest, "INVALID_ID", "Invalid outcome ID", nil)
		return
	}

	outcome, err := h.service.GetOutcome(r.Context(), id)
	if err != nil {
		HandleError(w, err)
		return
	}

	JSON(w, http.StatusOK, outcome)
}

// ListOutcomes lists delivery outcomes with filters
// @Summary List outcomes
// @Description List recorded delivery outcomes with optional filters and pagination
// @Tags outcomes
// @Produce json
// @Param status query string false "Filter by status"
// @Param channel query string false "Filter by channel"
// @Param start_date query string false "Filter by start date (RFC3339)"
// @Param end_date query string false "Filter by end date (RFC3339)"
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} Response{data=domain.OutcomeListResult}
// @Failure 400 {object} Response
// @Failure 500 {object} Response
// @Router /api/v1/dispatch/outcomes [get]
func (h *DispatchHandler) ListOutcomes(w http.ResponseWriter, r *http.Request) {
	filter := domain.OutcomeFilter{
		Page:     1,
		PageSize: 20,
	}

	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		status := domain.Status(statusStr)
		if !status.IsValid() {
			JSONError(w, http.StatusBadRequest, "INVALID_STATUS", "Invalid status", nil)
			return
		}
		filter.Status = &status
	}

	if channel := r.URL.Query().Get("channel"); channel != "" {
		filter.Channel = &channel
	}

	if startDateStr := r.URL.Query().Get("start_date"); startDateStr != "" {
		startDate, err := time.Parse(time.RFC3339, startDateStr)
		if err != nil {
			JSONError(w, http.StatusBadRequest, "INVALID_START_DATE", "Invalid start date format (use RFC3339)", nil)
			return
		}
		filter.StartDate = &startDate
	}

	if endDateStr := r.URL.Query().Get("end_date"); endDateStr != "" {
		endDate, err := time.Parse(time.RFC3339, endDateStr)
		if err != nil {
			JSONError(w, http.StatusBadRequest, "INVALID_END_DATE", "Invalid end date format (use RFC3339)", nil)
			return
		}
		filter.EndDate = &endDate
	}

	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil || page < 1 {
			JSONError(w, http.StatusBadRequest, "INVALID_PAGE", "Invalid page number", nil)
			return
		}
		filter.Page = page
	}

	if pageSizeStr := r.URL.Query().Get("page_size"); pageSizeStr != "" {
		pageSize, err := strconv.Atoi(pageSizeStr)
		if err != nil || pageSize < 1 || pageSize > 100 {
			JSONError(w, http.StatusBadRequest, "INVALID_PAGE_SIZE", "Page size must be between 1 and 100", nil)
			return
		}
		filter.PageSize = pageSize
	}

	result, err := h.service.ListOutcomes(r.Context(), filter)
	if err != nil {
		HandleError(w, err)
		return
	}

	JSON(w, http.StatusOK, result)
}
