package response

import (
	"time"

	"hotel-booking/internal/data/entity"
	"hotel-booking/pkg/utils"
)

type BookingResponse struct {
	ID            string               `json:"id"`
	BookingCode   string               `json:"booking_code"`
	UserID        string               `json:"user_id"`
	RoomID        string               `json:"room_id"`
	RoomName      string               `json:"room_name,omitempty"`
	CheckIn       string               `json:"check_in"`
	CheckOut      string               `json:"check_out"`
	Nights        int                  `json:"nights"`
	Adults        int                  `json:"adults"`
	Children      int                  `json:"children"`
	RoomCount     int                  `json:"room_count"`
	TotalPrice    float64              `json:"total_price"`
	ContactName   string               `json:"contact_name"`
	ContactPhone  string               `json:"contact_phone"`
	ContactEmail  string               `json:"contact_email"`
	Status        entity.BookingStatus `json:"status"`
	PaymentStatus entity.PaymentStatus `json:"payment_status"`
	TransactionID *string              `json:"gateway_transaction_id,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

// BookingStatusResponse is the restricted projection served to
// unauthenticated payment-result pollers. No guest PII.
type BookingStatusResponse struct {
	ID            string               `json:"id"`
	PaymentStatus entity.PaymentStatus `json:"payment_status"`
	Status        entity.BookingStatus `json:"status"`
	TotalPrice    float64              `json:"total_price"`
	TransactionID *string              `json:"gateway_transaction_id,omitempty"`
}

type PaymentInitResponse struct {
	PayURL    string `json:"pay_url"`
	OrderID   string `json:"order_id"`
	RequestID string `json:"request_id"`
}

func BookingToResponse(booking *entity.Booking, roomName string) BookingResponse {
	return BookingResponse{
		ID:            booking.ID.String(),
		BookingCode:   booking.BookingCode,
		UserID:        booking.UserID.String(),
		RoomID:        booking.RoomID.String(),
		RoomName:      roomName,
		CheckIn:       booking.CheckIn.Format(utils.DateLayout),
		CheckOut:      booking.CheckOut.Format(utils.DateLayout),
		Nights:        utils.Nights(booking.CheckIn, booking.CheckOut),
		Adults:        booking.Adults,
		Children:      booking.Children,
		RoomCount:     booking.RoomCount,
		TotalPrice:    booking.TotalPrice,
		ContactName:   booking.ContactName,
		ContactPhone:  booking.ContactPhone,
		ContactEmail:  booking.ContactEmail,
		Status:        booking.Status,
		PaymentStatus: booking.PaymentStatus,
		TransactionID: booking.GatewayTransactionID,
		CreatedAt:     booking.CreatedAt,
	}
}

func BookingToStatusResponse(booking *entity.Booking) BookingStatusResponse {
	return BookingStatusResponse{
		ID:            booking.ID.String(),
		PaymentStatus: booking.PaymentStatus,
		Status:        booking.Status,
		TotalPrice:    booking.TotalPrice,
		TransactionID: booking.GatewayTransactionID,
	}
}
