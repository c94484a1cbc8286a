package adaptor

import (
	"encoding/json"
	"net/http"
	"time"

	"hotel-booking/internal/dto/request"
	"hotel-booking/internal/gateway"
	"hotel-booking/internal/usecase"
	"hotel-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	service usecase.PaymentService
	log     *zap.Logger
}

func NewPaymentHandler(service usecase.PaymentService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		log:     log.With(zap.String("handler", "payment")),
	}
}

// InitiatePayment handles POST /api/bookings/{id}/payment (protected)
func (h *PaymentHandler) InitiatePayment(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	bookingID := chi.URLParam(r, "id")
	if bookingID == "" {
		utils.ResponseBadRequest(w, "Booking ID is required", nil)
		return
	}

	req := &request.InitiatePaymentRequest{}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			utils.ResponseBadRequest(w, "Invalid request body", nil)
			return
		}
	}

	result, err := h.service.InitiatePayment(r.Context(), userID.String(), bookingID, req)
	if err != nil {
		writeServiceError(w, h.log, err, "initiate payment")
		return
	}

	utils.ResponseSuccess(w, "success", result)
}

// Callback handles POST /api/payments/callback (public, called by the
// wallet provider). The provider retries on any non-200, so the endpoint
// always acknowledges with 200 and reports the true outcome in the body
// and the logs.
func (h *PaymentHandler) Callback(w http.ResponseWriter, r *http.Request) {
	var cb gateway.Callback
	if err := json.NewDecoder(r.Body).Decode(&cb); err != nil {
		h.log.Warn("undecodable payment callback", zap.Error(err))
		writeCallbackAck(w, false, "invalid callback payload", nil)
		return
	}

	result, err := h.service.Reconcile(r.Context(), &cb)
	if err != nil {
		h.log.Warn("payment callback rejected",
			zap.String("order_id", cb.OrderID),
			zap.Int("result_code", cb.ResultCode),
			zap.Error(err))
		writeCallbackAck(w, false, err.Error(), nil)
		return
	}

	h.log.Info("payment callback reconciled",
		zap.String("order_id", result.OrderID),
		zap.String("booking_id", result.BookingID),
		zap.String("payment_status", string(result.PaymentStatus)),
		zap.Bool("applied", result.Applied))

	writeCallbackAck(w, true, "success", result)
}

// callbackAck is the provider-facing acknowledgement envelope.
type callbackAck struct {
	Status    bool   `json:"status"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

func writeCallbackAck(w http.ResponseWriter, status bool, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(callbackAck{
		Status:    status,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	})
}
