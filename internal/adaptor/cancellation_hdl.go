package adaptor

import (
	"encoding/json"
	"net/http"

	"hotel-booking/internal/dto/request"
	"hotel-booking/internal/usecase"
	"hotel-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CancellationHandler struct {
	service usecase.CancellationService
	log     *zap.Logger
}

func NewCancellationHandler(service usecase.CancellationService, log *zap.Logger) *CancellationHandler {
	return &CancellationHandler{
		service: service,
		log:     log.With(zap.String("handler", "cancellation")),
	}
}

// CreateRequest handles POST /api/cancellations (protected)
func (h *CancellationHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreateCancellationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	result, err := h.service.CreateRequest(r.Context(), userID.String(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "create cancellation request")
		return
	}

	utils.ResponseCreated(w, "success", result)
}

// GetRequest handles GET /api/cancellations/{id} (protected, owner or staff)
func (h *CancellationHandler) GetRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	requestID := chi.URLParam(r, "id")
	if requestID == "" {
		utils.ResponseBadRequest(w, "Cancellation request ID is required", nil)
		return
	}

	result, err := h.service.GetRequest(r.Context(), requestID, userID.String(), isStaff(r))
	if err != nil {
		writeServiceError(w, h.log, err, "get cancellation request")
		return
	}

	utils.ResponseSuccess(w, "success", result)
}

// ListRequests handles GET /api/staff/cancellations (staff only)
func (h *CancellationHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	req := &request.PaginatedRequest{
		Page:    1,
		PerPage: 10,
	}

	query := r.URL.Query()
	req.Page = utils.ParseInt(query.Get("page"), 1)
	req.PerPage = utils.ParseInt(query.Get("per_page"), 10)

	result, err := h.service.ListRequests(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.log, err, "list cancellation requests")
		return
	}

	utils.ResponseSuccess(w, "success", result)
}

// UpdateStatus handles PUT /api/staff/cancellations/{id} (staff only)
func (h *CancellationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "id")
	if requestID == "" {
		utils.ResponseBadRequest(w, "Cancellation request ID is required", nil)
		return
	}

	var req request.UpdateCancellationStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	result, err := h.service.UpdateStatus(r.Context(), requestID, &req)
	if err != nil {
		writeServiceError(w, h.log, err, "update cancellation status")
		return
	}

	utils.ResponseSuccess(w, "success", result)
}

// ProcessRefund handles POST /api/staff/cancellations/{id}/refund (staff only)
func (h *CancellationHandler) ProcessRefund(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "id")
	if requestID == "" {
		utils.ResponseBadRequest(w, "Cancellation request ID is required", nil)
		return
	}

	result, err := h.service.ProcessRefund(r.Context(), requestID)
	if err != nil {
		writeServiceError(w, h.log, err, "process refund")
		return
	}

	utils.ResponseSuccess(w, "success", result)
}
