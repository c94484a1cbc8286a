package wire

import (
	"hotel-booking/internal/adaptor"
	"hotel-booking/internal/data/repository"
	"hotel-booking/pkg/middleware"
	"hotel-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES (require auth) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))

		// POST /api/bookings - Create new booking
		r.Post("/api/bookings", bookingHandler.CreateBooking)

		// GET /api/user/bookings - View booking history (user's own bookings)
		r.Get("/api/user/bookings", bookingHandler.GetUserBookings)

		// GET /api/bookings/{id} - View booking details (owner or staff)
		r.Get("/api/bookings/{id}", bookingHandler.GetBooking)

		// PUT /api/bookings/{id} - Update guest details while payment is pending
		r.Put("/api/bookings/{id}", bookingHandler.UpdateBooking)

		// PUT /api/bookings/{id}/cancel - Cancel own booking before check-in
		r.Put("/api/bookings/{id}/cancel", bookingHandler.CancelBooking)

		// PUT /api/bookings/{id}/complete - Mark a finished stay as completed
		r.Put("/api/bookings/{id}/complete", bookingHandler.CompleteBooking)
	})

	// ==================== PUBLIC ROUTES ====================
	// GET /api/bookings/{id}/status - Payment-result polling after redirect.
	// Anonymous on purpose: the redirect landing page has no session.
	r.Get("/api/bookings/{id}/status", bookingHandler.GetBookingStatus)
}
