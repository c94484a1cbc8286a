package usecase

import (
	"context"
	"fmt"
	"time"

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

type CancellationService interface {
	CreateRequest(ctx context.Context, userID string, req *request.CreateCancellationRequest) (*response.CancellationResponse, error)
	GetRequest(ctx context.Context, requestID, userID string, staff bool) (*response.CancellationResponse, error)
	ListRequests(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.CancellationResponse], error)
	UpdateStatus(ctx context.Context, requestID string, req *request.UpdateCancellationStatusRequest) (*response.CancellationResponse, error)
	ProcessRefund(ctx context.Context, requestID string) (*response.CancellationResponse, error)
}

type cancellationService struct {
	repo   *repository.Repository
	payout gateway.PayoutClient
	notif  notifier.Notifier
	config *utils.Config
	log    *zap.Logger
}

func NewCancellationService(repo *repository.Repository, payout gateway.PayoutClient, notif notifier.Notifier, config *utils.Config, log *zap.Logger) CancellationService {
	return &cancellationService{
		repo:   repo,
		payout: payout,
		notif:  notif,
		config: config,
		log:    log.With(zap.String("service", "cancellation")),
	}
}

func (s *cancellationService) CreateRequest(ctx context.Context, userID string, req *request.CreateCancellationRequest) (*response.CancellationResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, utils.NewValidationError("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, utils.NewValidationError("invalid user ID format %s", userID)
	}

	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		return nil, utils.NewValidationError("invalid booking ID format %s", req.BookingID)
	}

	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("find booking: %w", err)
	}
	if booking == nil {
		return nil, utils.NewNotFoundError("booking %s not found", req.BookingID)
	}

	if booking.UserID != userUUID {
		return nil, utils.NewAuthorizationError("booking %s does not belong to the caller", req.BookingID)
	}

	if booking.Status == entity.BookingStatusCancelled || booking.Status == entity.BookingStatusCompleted {
		return nil, utils.NewStateError("booking is %s, cancellation cannot be requested", booking.Status)
	}

	// One open request per booking.
	existing, err := s.repo.Cancellation.FindPendingByBookingID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("check existing cancellation request: %w", err)
	}
	if existing != nil {
		return nil, utils.NewConflictError("booking %s already has a pending cancellation request", req.BookingID)
	}

	now := time.Now()
	cancellation := &entity.CancellationRequest{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		BookingID:    bookingID,
		UserID:       userUUID,
		Reason:       req.Reason,
		Status:       entity.CancellationStatusPending,
		RefundStatus: entity.RefundStatusNotRequested,
	}

	if err := s.repo.Cancellation.Create(ctx, cancellation); err != nil {
		return nil, fmt.Errorf("create cancellation request: %w", err)
	}

	s.log.Info("Cancellation request created",
		zap.String("request_id", cancellation.ID.String()),
		zap.String("booking_id", req.BookingID),
		zap.String("user_id", userID),
	)

	resp := response.CancellationToResponse(cancellation)
	return &resp, nil
}

func (s *cancellationService) GetRequest(ctx context.Context, requestID, userID string, staff bool) (*response.CancellationResponse, error) {
	id, err := uuid.Parse(requestID)
	if err != nil {
		return nil, utils.NewValidationError("invalid request ID format %s", requestID)
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, utils.NewValidationError("invalid user ID format %s", userID)
	}

	cancellation, err := s.repo.Cancellation.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find cancellation request: %w", err)
	}
	if cancellation == nil {
		return nil, utils.NewNotFoundError("cancellation request %s not found", requestID)
	}

	if !staff && cancellation.UserID != userUUID {
		return nil, utils.NewAuthorizationError("cancellation request %s does not belong to the caller", requestID)
	}

	resp := response.CancellationToResponse(cancellation)
	return &resp, nil
}

func (s *cancellationService) ListRequests(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.CancellationResponse], error) {
	requests, err := s.repo.Cancellation.FindAll(ctx, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to list cancellation requests", zap.Error(err))
		return nil, fmt.Errorf("list cancellation requests: %w", err)
	}

	total, err := s.repo.Cancellation.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("count cancellation requests: %w", err)
	}

	responses := make([]response.CancellationResponse, len(requests))
	for i, cancellation := range requests {
		responses[i] = response.CancellationToResponse(cancellation)
	}

	return response.NewPaginatedResponse(responses, req.Page, req.PerPage, total), nil
}

// UpdateStatus applies a staff decision. Approving also forces the linked
// booking to cancelled; both outcomes notify the guest.
func (s *cancellationService) UpdateStatus(ctx context.Context, requestID string, req *request.UpdateCancellationStatusRequest) (*response.CancellationResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, utils.NewValidationError("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	id, err := uuid.Parse(requestID)
	if err != nil {
		return nil, utils.NewValidationError("invalid request ID format %s", requestID)
	}

	cancellation, err := s.repo.Cancellation.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find cancellation request: %w", err)
	}
	if cancellation == nil {
		return nil, utils.NewNotFoundError("cancellation request %s not found", requestID)
	}

	if cancellation.Status != entity.CancellationStatusPending {
		return nil, utils.NewStateError("cancellation request is already %s", cancellation.Status)
	}

	booking, err := s.repo.Booking.FindByID(ctx, cancellation.BookingID)
	if err != nil {
		return nil, fmt.Errorf("find booking: %w", err)
	}
	if booking == nil {
		return nil, utils.NewNotFoundError("booking %s not found", cancellation.BookingID.String())
	}

	status := entity.CancellationStatus(req.Status)
	if err := s.repo.Cancellation.UpdateStatus(ctx, cancellation.ID, status, req.AdminNotes); err != nil {
		return nil, fmt.Errorf("update cancellation request status: %w", err)
	}
	cancellation.Status = status
	cancellation.AdminNotes = req.AdminNotes

	if status == entity.CancellationStatusApproved {
		if booking.Status != entity.BookingStatusCancelled {
			if err := s.repo.Booking.UpdateStatus(ctx, booking.ID, entity.BookingStatusCancelled); err != nil {
				return nil, fmt.Errorf("cancel booking %s: %w", booking.ID.String(), err)
			}
		}
	}

	s.log.Info("Cancellation request decided",
		zap.String("request_id", requestID),
		zap.String("booking_id", booking.ID.String()),
		zap.String("decision", string(status)),
	)

	notes := ""
	if req.AdminNotes != nil {
		notes = *req.AdminNotes
	}
	s.notif.CancellationDecided(ctx, notifier.CancellationDecidedEvent{
		RequestID:    cancellation.ID.String(),
		BookingID:    booking.ID.String(),
		BookingCode:  booking.BookingCode,
		UserID:       cancellation.UserID.String(),
		Decision:     string(status),
		Notes:        notes,
		ContactEmail: booking.ContactEmail,
	})

	resp := response.CancellationToResponse(cancellation)
	return &resp, nil
}

// ProcessRefund drives the refund sub-state-machine. A failed transfer is
// recorded and the error surfaces to the staff caller so the refund can be
// retried manually.
func (s *cancellationService) ProcessRefund(ctx context.Context, requestID string) (*response.CancellationResponse, error) {
	id, err := uuid.Parse(requestID)
	if err != nil {
		return nil, utils.NewValidationError("invalid request ID format %s", requestID)
	}

	cancellation, err := s.repo.Cancellation.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find cancellation request: %w", err)
	}
	if cancellation == nil {
		return nil, utils.NewNotFoundError("cancellation request %s not found", requestID)
	}

	// Refund only leaves not_requested once the request is approved.
	if cancellation.Status != entity.CancellationStatusApproved {
		return nil, utils.NewStateError("cancellation request is %s, refund requires approval", cancellation.Status)
	}

	switch cancellation.RefundStatus {
	case entity.RefundStatusNotRequested, entity.RefundStatusFailed:
		// proceed; failed refunds are retryable
	case entity.RefundStatusPending:
		return nil, utils.NewStateError("refund is already in progress")
	case entity.RefundStatusCompleted:
		return nil, utils.NewStateError("refund is already completed")
	}

	booking, err := s.repo.Booking.FindByID(ctx, cancellation.BookingID)
	if err != nil {
		return nil, fmt.Errorf("find booking: %w", err)
	}
	if booking == nil {
		return nil, utils.NewNotFoundError("booking %s not found", cancellation.BookingID.String())
	}

	refundAmount := booking.TotalPrice
	if err := s.repo.Cancellation.UpdateRefund(ctx, cancellation.ID, entity.RefundStatusPending, refundAmount); err != nil {
		return nil, fmt.Errorf("mark refund pending: %w", err)
	}

	orderRef := booking.BookingCode
	if booking.GatewayOrderID != nil {
		orderRef = *booking.GatewayOrderID
	}

	transferCtx, cancel := context.WithTimeout(ctx, time.Duration(s.config.Booking.RefundTimeoutSeconds)*time.Second)
	defer cancel()

	if err := s.payout.Transfer(transferCtx, orderRef, refundAmount); err != nil {
		s.log.Error("Refund transfer failed",
			zap.Error(err),
			zap.String("request_id", requestID),
			zap.String("booking_id", booking.ID.String()),
			zap.Float64("amount", refundAmount),
		)

		if updateErr := s.repo.Cancellation.UpdateRefund(ctx, cancellation.ID, entity.RefundStatusFailed, refundAmount); updateErr != nil {
			s.log.Error("Failed to record refund failure", zap.Error(updateErr), zap.String("request_id", requestID))
		}

		// This is the one downstream failure that must surface: staff retries
		// the refund manually.
		return nil, utils.NewGatewayError(err, "refund transfer failed for request %s", requestID)
	}

	if err := s.repo.Cancellation.UpdateRefund(ctx, cancellation.ID, entity.RefundStatusCompleted, refundAmount); err != nil {
		return nil, fmt.Errorf("mark refund completed: %w", err)
	}
	cancellation.RefundStatus = entity.RefundStatusCompleted
	cancellation.RefundAmount = refundAmount

	s.log.Info("Refund completed",
		zap.String("request_id", requestID),
		zap.String("booking_id", booking.ID.String()),
		zap.Float64("amount", refundAmount),
	)

	s.notif.RefundCompleted(ctx, notifier.RefundCompletedEvent{
		RequestID:    cancellation.ID.String(),
		BookingID:    booking.ID.String(),
		BookingCode:  booking.BookingCode,
		Amount:       refundAmount,
		ContactEmail: booking.ContactEmail,
	})

	resp := response.CancellationToResponse(cancellation)
	return &resp, nil
}
