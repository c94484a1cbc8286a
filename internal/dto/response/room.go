package response

import (
	"hotel-booking/internal/data/entity"
)

type RoomResponse struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Capacity     int               `json:"capacity"`
	NightlyPrice float64           `json:"nightly_price"`
	Status       entity.RoomStatus `json:"status"`
}

func RoomToResponse(room *entity.Room) RoomResponse {
	return RoomResponse{
		ID:           room.ID.String(),
		Name:         room.Name,
		Capacity:     room.Capacity,
		NightlyPrice: room.NightlyPrice,
		Status:       room.Status,
	}
}
