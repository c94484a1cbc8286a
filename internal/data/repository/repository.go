package repository

import (
	"hotel-booking/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	User         UserRepository
	Session      SessionRepository
	Room         RoomRepository
	Booking      BookingRepository
	Cancellation CancellationRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:         NewUserRepository(db, log),
		Session:      NewSessionRepository(db, log),
		Room:         NewRoomRepository(db, log),
		Booking:      NewBookingRepository(db, log),
		Cancellation: NewCancellationRepository(db, log),
	}
}
