package notifier

// Event payloads published to the message broker. Downstream consumers
// (email worker, analytics) get enough to act without querying the database.

type BookingConfirmedEvent struct {
	BookingID     string  `json:"booking_id"`
	BookingCode   string  `json:"booking_code"`
	UserID        string  `json:"user_id"`
	RoomID        string  `json:"room_id"`
	CheckIn       string  `json:"check_in"`
	CheckOut      string  `json:"check_out"`
	TotalPrice    float64 `json:"total_price"`
	TransactionID string  `json:"transaction_id"`
	ContactEmail  string  `json:"contact_email"`
}

type BookingCancelledEvent struct {
	BookingID    string `json:"booking_id"`
	BookingCode  string `json:"booking_code"`
	UserID       string `json:"user_id"`
	ContactEmail string `json:"contact_email"`
}

// CancellationDecidedEvent carries a staff decision on a cancellation
// request. Decision is "approved" or "rejected"; Notes holds the staff
// reason shown to the guest on rejection.
type CancellationDecidedEvent struct {
	RequestID    string `json:"request_id"`
	BookingID    string `json:"booking_id"`
	BookingCode  string `json:"booking_code"`
	UserID       string `json:"user_id"`
	Decision     string `json:"decision"`
	Notes        string `json:"notes,omitempty"`
	ContactEmail string `json:"contact_email"`
}

type RefundCompletedEvent struct {
	RequestID    string  `json:"request_id"`
	BookingID    string  `json:"booking_id"`
	BookingCode  string  `json:"booking_code"`
	Amount       float64 `json:"amount"`
	ContactEmail string  `json:"contact_email"`
}
