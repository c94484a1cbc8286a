package wire

import (
	"hotel-booking/internal/adaptor"
	"hotel-booking/internal/data/repository"
	"hotel-booking/pkg/middleware"
	"hotel-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireRoom(
	r chi.Router,
	roomHandler *adaptor.RoomHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	// GET /api/rooms - Browse the room catalog
	r.Get("/api/rooms", roomHandler.ListRooms)

	// GET /api/rooms/{id} - Room details
	r.Get("/api/rooms/{id}", roomHandler.GetRoom)

	// ==================== STAFF ROUTES ====================
	r.Route("/api/staff/rooms", func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))
		r.Use(middleware.Staff(log))

		// PUT /api/staff/rooms/{id}/status - Take a room in or out of service
		r.Put("/{id}/status", roomHandler.UpdateRoomStatus)
	})
}
