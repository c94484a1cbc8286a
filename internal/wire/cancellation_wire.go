package wire

import (
	"hotel-booking/internal/adaptor"
	"hotel-booking/internal/data/repository"
	"hotel-booking/pkg/middleware"
	"hotel-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireCancellation(
	r chi.Router,
	cancellationHandler *adaptor.CancellationHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES (require auth) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))

		// POST /api/cancellations - Request cancellation of a paid booking
		r.Post("/api/cancellations", cancellationHandler.CreateRequest)

		// GET /api/cancellations/{id} - View a cancellation request (owner or staff)
		r.Get("/api/cancellations/{id}", cancellationHandler.GetRequest)
	})

	// ==================== STAFF ROUTES ====================
	r.Route("/api/staff/cancellations", func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))
		r.Use(middleware.Staff(log))

		// GET /api/staff/cancellations - Review queue, newest first
		r.Get("/", cancellationHandler.ListRequests)

		// PUT /api/staff/cancellations/{id} - Approve or reject a request
		r.Put("/{id}", cancellationHandler.UpdateStatus)

		// POST /api/staff/cancellations/{id}/refund - Push the refund payout
		r.Post("/{id}/refund", cancellationHandler.ProcessRefund)
	})
}
