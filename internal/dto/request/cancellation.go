package request

type CreateCancellationRequest struct {
	BookingID string `json:"booking_id" validate:"required,uuid4"`
	Reason    string `json:"reason" validate:"required,min=3"`
}

type UpdateCancellationStatusRequest struct {
	Status     string  `json:"status" validate:"required,oneof=approved rejected"`
	AdminNotes *string `json:"admin_notes,omitempty"`
}
