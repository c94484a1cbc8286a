package usecase

import (
	"time"

	"go.uber.org/zap"

	"hotel-booking/internal/data/repository"
	"hotel-booking/internal/gateway"
	"hotel-booking/internal/notifier"
	"hotel-booking/pkg/lock"
	"hotel-booking/pkg/utils"
)

type Service struct {
	Room         RoomService
	Booking      BookingService
	Payment      PaymentService
	Cancellation CancellationService
}

func NewService(
	repo *repository.Repository,
	config *utils.Config,
	locker lock.RoomLocker,
	gatewayClient *gateway.Client,
	payout gateway.PayoutClient,
	notif notifier.Notifier,
	log *zap.Logger,
) *Service {
	// All date-only values are interpreted in the fixed reference timezone.
	loc, err := time.LoadLocation(config.Booking.Timezone)
	if err != nil {
		log.Warn("Failed to load booking timezone, falling back to UTC",
			zap.Error(err),
			zap.String("timezone", config.Booking.Timezone),
		)
		loc = time.UTC
	}

	return &Service{
		Room:         NewRoomService(repo, log),
		Booking:      NewBookingService(repo, locker, notif, loc, log),
		Payment:      NewPaymentService(repo, gatewayClient, notif, config, log),
		Cancellation: NewCancellationService(repo, payout, notif, config, log),
	}
}
