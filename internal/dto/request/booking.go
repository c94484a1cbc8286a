package request

type CreateBookingRequest struct {
	RoomID       string `json:"room_id" validate:"required,uuid4"`
	CheckIn      string `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut     string `json:"check_out" validate:"required,datetime=2006-01-02"`
	Adults       int    `json:"adults" validate:"required,min=1"`
	Children     int    `json:"children" validate:"min=0"`
	RoomCount    int    `json:"room_count" validate:"required,min=1"`
	ContactName  string `json:"contact_name" validate:"required"`
	ContactPhone string `json:"contact_phone" validate:"required"`
	ContactEmail string `json:"contact_email" validate:"required,email"`
}

// UpdateBookingRequest is a partial patch; nil fields are left unchanged.
type UpdateBookingRequest struct {
	CheckIn      *string `json:"check_in,omitempty" validate:"omitempty,datetime=2006-01-02"`
	CheckOut     *string `json:"check_out,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Adults       *int    `json:"adults,omitempty" validate:"omitempty,min=1"`
	Children     *int    `json:"children,omitempty" validate:"omitempty,min=0"`
	RoomCount    *int    `json:"room_count,omitempty" validate:"omitempty,min=1"`
	ContactName  *string `json:"contact_name,omitempty"`
	ContactPhone *string `json:"contact_phone,omitempty"`
	ContactEmail *string `json:"contact_email,omitempty" validate:"omitempty,email"`
}

type InitiatePaymentRequest struct {
	ReturnURL string `json:"return_url,omitempty" validate:"omitempty,url"`
}
