package entity

type RoomStatus string

const (
	RoomStatusAvailable   RoomStatus = "available"
	RoomStatusBooked      RoomStatus = "booked"
	RoomStatusMaintenance RoomStatus = "maintenance"
)

type Room struct {
	Base
	Name         string     `db:"name"`
	Capacity     int        `db:"capacity"`
	NightlyPrice float64    `db:"nightly_price"`
	Status       RoomStatus `db:"status"`
}
