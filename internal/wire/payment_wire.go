package wire

import (
	"hotel-booking/internal/adaptor"
	"hotel-booking/internal/data/repository"
	"hotel-booking/pkg/middleware"
	"hotel-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wirePayment(
	r chi.Router,
	paymentHandler *adaptor.PaymentHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES (require auth) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))

		// POST /api/bookings/{id}/payment - Request a wallet payment URL
		r.Post("/api/bookings/{id}/payment", paymentHandler.InitiatePayment)
	})

	// ==================== PUBLIC ROUTES ====================
	// POST /api/payments/callback - Wallet provider IPN. Authenticated by
	// the HMAC signature inside the payload, not by session.
	r.Post("/api/payments/callback", paymentHandler.Callback)
}
