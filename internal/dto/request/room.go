package request

type UpdateRoomStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=available booked maintenance"`
}
