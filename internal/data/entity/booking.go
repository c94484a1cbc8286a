package entity

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

type Booking struct {
	Base
	BookingCode   string        `db:"booking_code"`
	UserID        uuid.UUID     `db:"user_id"`
	RoomID        uuid.UUID     `db:"room_id"`
	CheckIn       time.Time     `db:"check_in"`
	CheckOut      time.Time     `db:"check_out"`
	Adults        int           `db:"adults"`
	Children      int           `db:"children"`
	RoomCount     int           `db:"room_count"`
	TotalPrice    float64       `db:"total_price"`
	ContactName   string        `db:"contact_name"`
	ContactPhone  string        `db:"contact_phone"`
	ContactEmail  string        `db:"contact_email"`
	Status        BookingStatus `db:"status"`
	PaymentStatus PaymentStatus `db:"payment_status"`

	// Correlation fields for the external wallet provider
	GatewayOrderID       *string `db:"gateway_order_id"`
	GatewayRequestID     *string `db:"gateway_request_id"`
	GatewayTransactionID *string `db:"gateway_transaction_id"`
	ReturnURL            *string `db:"return_url"`
}

// ActiveForConflict reports whether this booking blocks other bookings on the
// same room. Cancelled and completed bookings never block.
func (b *Booking) ActiveForConflict() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}
