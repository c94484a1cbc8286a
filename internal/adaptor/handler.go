package adaptor

import (
	"net/http"

	"hotel-booking/internal/usecase"
	"hotel-booking/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Room         *RoomHandler
	Booking      *BookingHandler
	Payment      *PaymentHandler
	Cancellation *CancellationHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Room:         NewRoomHandler(service.Room, log),
		Booking:      NewBookingHandler(service.Booking, log),
		Payment:      NewPaymentHandler(service.Payment, log),
		Cancellation: NewCancellationHandler(service.Cancellation, log),
	}
}

// writeServiceError maps the typed service error to an HTTP response.
func writeServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	switch utils.ErrorKind(err) {
	case utils.ErrValidation:
		log.Warn(operation+" validation failed", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	case utils.ErrConflict:
		log.Warn(operation+" failed - dates conflict", zap.Error(err))
		utils.ResponseJSON(w, http.StatusConflict, false, err.Error(), nil, nil)

	case utils.ErrAuthorization:
		log.Warn(operation+" failed - not owner", zap.Error(err))
		utils.ResponseForbidden(w, err.Error())

	case utils.ErrNotFound:
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case utils.ErrState:
		log.Warn(operation+" failed - invalid state", zap.Error(err))
		utils.ResponseJSON(w, http.StatusUnprocessableEntity, false, err.Error(), nil, nil)

	case utils.ErrGateway:
		log.Error(operation+" failed - payment provider error", zap.Error(err))
		utils.ResponseJSON(w, http.StatusBadGateway, false, err.Error(), nil, nil)

	case utils.ErrSignature:
		log.Warn(operation+" failed - signature mismatch", zap.Error(err))
		utils.ResponseForbidden(w, err.Error())

	default:
		log.Error("Failed to "+operation, zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
