package response

import (
	"time"

	"hotel-booking/internal/data/entity"
)

type CancellationResponse struct {
	ID           string                    `json:"id"`
	BookingID    string                    `json:"booking_id"`
	UserID       string                    `json:"user_id"`
	Reason       string                    `json:"reason"`
	Status       entity.CancellationStatus `json:"status"`
	RefundStatus entity.RefundStatus       `json:"refund_status"`
	RefundAmount float64                   `json:"refund_amount"`
	AdminNotes   *string                   `json:"admin_notes,omitempty"`
	CreatedAt    time.Time                 `json:"created_at"`
}

func CancellationToResponse(request *entity.CancellationRequest) CancellationResponse {
	return CancellationResponse{
		ID:           request.ID.String(),
		BookingID:    request.BookingID.String(),
		UserID:       request.UserID.String(),
		Reason:       request.Reason,
		Status:       request.Status,
		RefundStatus: request.RefundStatus,
		RefundAmount: request.RefundAmount,
		AdminNotes:   request.AdminNotes,
		CreatedAt:    request.CreatedAt,
	}
}
