package wire

import (
	"net/http"

	"hotel-booking/internal/adaptor"
	"hotel-booking/internal/data/repository"
	"hotel-booking/internal/gateway"
	"hotel-booking/internal/notifier"
	"hotel-booking/internal/usecase"
	"hotel-booking/pkg/lock"
	"hotel-booking/pkg/middleware"
	"hotel-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type App struct {
	Router *chi.Mux
}

// Wiring builds the service layer, handlers, and router from the
// infrastructure pieces constructed in main.
func Wiring(
	repo *repository.Repository,
	config *utils.Config,
	locker lock.RoomLocker,
	gatewayClient *gateway.Client,
	payout gateway.PayoutClient,
	notif notifier.Notifier,
	logger *zap.Logger,
) *App {
	service := usecase.NewService(repo, config, locker, gatewayClient, payout, notif, logger)
	handler := adaptor.NewHandler(service, logger)

	router := setupRouter(handler, repo, config, logger)

	return &App{
		Router: router,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	repo *repository.Repository,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())

	// Apply routes
	wireRoom(r, handler.Room, repo, config, logger)
	wireBooking(r, handler.Booking, repo, config, logger)
	wirePayment(r, handler.Payment, repo, config, logger)
	wireCancellation(r, handler.Cancellation, repo, config, logger)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
