package usecase

import (
	"context"
	"fmt"

	"hotel-booking/internal/data/entity"
	"hotel-booking/internal/data/repository"
	"hotel-booking/internal/dto/request"
	"hotel-booking/internal/dto/response"
	"hotel-booking/internal/gateway"
	"hotel-booking/internal/notifier"
	"hotel-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WalletGateway is the slice of the provider client the reconciler needs.
type WalletGateway interface {
	CreatePayment(ctx context.Context, order gateway.PaymentOrder) (string, error)
	VerifyCallback(cb *gateway.Callback) bool
}

// ReconciliationResult reports what a callback did to internal state. The
// HTTP handler acknowledges the provider regardless; this is for internal
// callers and logs.
type ReconciliationResult struct {
	BookingID     string               `json:"booking_id"`
	OrderID       string               `json:"order_id"`
	ResultCode    int                  `json:"result_code"`
	PaymentStatus entity.PaymentStatus `json:"payment_status"`
	Applied       bool                 `json:"applied"`
}

type PaymentService interface {
	InitiatePayment(ctx context.Context, userID, bookingID string, req *request.InitiatePaymentRequest) (*response.PaymentInitResponse, error)
	Reconcile(ctx context.Context, cb *gateway.Callback) (*ReconciliationResult, error)
}

type paymentService struct {
	repo    *repository.Repository
	gateway WalletGateway
	notif   notifier.Notifier
	config  *utils.Config
	log     *zap.Logger
}

func NewPaymentService(repo *repository.Repository, gw WalletGateway, notif notifier.Notifier, config *utils.Config, log *zap.Logger) PaymentService {
	return &paymentService{
		repo:    repo,
		gateway: gw,
		notif:   notif,
		config:  config,
		log:     log.With(zap.String("service", "payment")),
	}
}

func (s *paymentService) InitiatePayment(ctx context.Context, userID, bookingID string, req *request.InitiatePaymentRequest) (*response.PaymentInitResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, utils.NewValidationError("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, utils.NewValidationError("invalid booking ID format %s", bookingID)
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, utils.NewValidationError("invalid user ID format %s", userID)
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find booking: %w", err)
	}
	if booking == nil {
		return nil, utils.NewNotFoundError("booking %s not found", bookingID)
	}

	if booking.UserID != userUUID {
		return nil, utils.NewAuthorizationError("booking %s does not belong to the caller", bookingID)
	}

	if booking.Status != entity.BookingStatusPending {
		return nil, utils.NewStateError("booking is %s, payment can only be initiated while pending", booking.Status)
	}

	// A failed attempt may be retried; a paid booking may not be charged twice.
	if booking.PaymentStatus == entity.PaymentStatusPaid {
		return nil, utils.NewStateError("booking is already paid")
	}

	orderID := utils.GenerateGatewayOrderID()
	requestID := utils.GenerateGatewayRequestID()

	returnURL := req.ReturnURL
	if returnURL == "" {
		returnURL = s.config.Gateway.RedirectURL
	}

	// Persist the correlation fields before calling out: reconciliation looks
	// the booking up by this order id and must find it even if our process
	// dies between the provider call and the response.
	if err := s.repo.Booking.SetGatewayOrder(ctx, booking.ID, orderID, requestID, returnURL); err != nil {
		return nil, fmt.Errorf("store gateway order: %w", err)
	}

	payURL, err := s.gateway.CreatePayment(ctx, gateway.PaymentOrder{
		OrderID:   orderID,
		RequestID: requestID,
		Amount:    booking.TotalPrice,
		OrderInfo: fmt.Sprintf("Payment for booking %s", booking.BookingCode),
		ExtraData: booking.ID.String(),
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Payment initiated",
		zap.String("booking_id", bookingID),
		zap.String("booking_code", booking.BookingCode),
		zap.String("gateway_order_id", orderID),
		zap.Float64("amount", booking.TotalPrice),
	)

	return &response.PaymentInitResponse{
		PayURL:    payURL,
		OrderID:   orderID,
		RequestID: requestID,
	}, nil
}

// Reconcile applies a verified provider callback to booking state exactly
// once. Signature failures and unknown orders fail closed: nothing mutates.
func (s *paymentService) Reconcile(ctx context.Context, cb *gateway.Callback) (*ReconciliationResult, error) {
	if !s.gateway.VerifyCallback(cb) {
		s.log.Warn("Callback signature mismatch, rejecting",
			zap.String("order_id", cb.OrderID),
			zap.Int("result_code", cb.ResultCode),
		)
		return nil, utils.NewSignatureError("callback signature mismatch for order %s", cb.OrderID)
	}

	// The order id was stored at initiation; lookup is deterministic, no
	// parsing of composite ids.
	booking, err := s.repo.Booking.FindByGatewayOrderID(ctx, cb.OrderID)
	if err != nil {
		return nil, fmt.Errorf("find booking for order %s: %w", cb.OrderID, err)
	}
	if booking == nil {
		return nil, utils.NewNotFoundError("no booking for gateway order %s", cb.OrderID)
	}

	result := &ReconciliationResult{
		BookingID:  booking.ID.String(),
		OrderID:    cb.OrderID,
		ResultCode: cb.ResultCode,
	}

	// Idempotency: a redelivered callback must not re-apply side effects. A
	// paid booking is terminal for reconciliation, and a failure already
	// recorded is not recorded twice.
	if booking.PaymentStatus == entity.PaymentStatusPaid ||
		(booking.PaymentStatus == entity.PaymentStatusFailed && cb.ResultCode != gateway.ResultCodeSuccess) {
		s.log.Info("Callback already reconciled, skipping",
			zap.String("booking_id", booking.ID.String()),
			zap.String("order_id", cb.OrderID),
			zap.Int("result_code", cb.ResultCode),
		)
		result.PaymentStatus = booking.PaymentStatus
		result.Applied = false
		return result, nil
	}

	// The repository write carries its own guard (paid terminal, no status
	// re-applied over itself), so two racing deliveries of the same callback
	// resolve there: only the winner sees applied=true and notifies.
	switch {
	case cb.ResultCode == gateway.ResultCodeSuccess:
		transID := fmt.Sprintf("%d", cb.TransID)
		applied, err := s.repo.Booking.ApplyPaymentOutcome(ctx, booking.ID, entity.PaymentStatusPaid, entity.BookingStatusConfirmed, &transID)
		if err != nil {
			return nil, fmt.Errorf("apply payment success: %w", err)
		}
		result.PaymentStatus = entity.PaymentStatusPaid
		result.Applied = applied
		if !applied {
			s.log.Info("Payment already reconciled by a concurrent callback",
				zap.String("booking_id", booking.ID.String()),
				zap.String("order_id", cb.OrderID),
			)
			return result, nil
		}

		s.log.Info("Payment reconciled",
			zap.String("booking_id", booking.ID.String()),
			zap.String("order_id", cb.OrderID),
			zap.String("trans_id", transID),
		)

		// Notification failures are logged inside the notifier, not retried
		// here.
		s.notif.BookingConfirmed(ctx, notifier.BookingConfirmedEvent{
			BookingID:     booking.ID.String(),
			BookingCode:   booking.BookingCode,
			UserID:        booking.UserID.String(),
			RoomID:        booking.RoomID.String(),
			CheckIn:       booking.CheckIn.Format(utils.DateLayout),
			CheckOut:      booking.CheckOut.Format(utils.DateLayout),
			TotalPrice:    booking.TotalPrice,
			TransactionID: transID,
			ContactEmail:  booking.ContactEmail,
		})

	case cb.ResultCode == gateway.ResultCodeUserDenied:
		// Same data effect as a generic failure; the code is kept apart in
		// logs for support diagnostics.
		applied, err := s.repo.Booking.ApplyPaymentOutcome(ctx, booking.ID, entity.PaymentStatusFailed, booking.Status, booking.GatewayTransactionID)
		if err != nil {
			return nil, fmt.Errorf("apply payment denial: %w", err)
		}
		result.PaymentStatus = entity.PaymentStatusFailed
		result.Applied = applied

		s.log.Warn("Payment denied by user",
			zap.String("booking_id", booking.ID.String()),
			zap.String("order_id", cb.OrderID),
		)

	default:
		applied, err := s.repo.Booking.ApplyPaymentOutcome(ctx, booking.ID, entity.PaymentStatusFailed, booking.Status, booking.GatewayTransactionID)
		if err != nil {
			return nil, fmt.Errorf("apply payment failure: %w", err)
		}
		result.PaymentStatus = entity.PaymentStatusFailed
		result.Applied = applied

		s.log.Warn("Payment failed",
			zap.String("booking_id", booking.ID.String()),
			zap.String("order_id", cb.OrderID),
			zap.Int("result_code", cb.ResultCode),
			zap.String("message", cb.Message),
		)
	}

	return result, nil
}
