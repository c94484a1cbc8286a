package usecase

import (
	"context"
	"fmt"
	"time"

	"hotel-booking/internal/data/entity"
	"hotel-booking/internal/data/repository"
	"hotel-booking/internal/dto/request"
	"hotel-booking/internal/dto/response"
	"hotel-booking/internal/notifier"
	"hotel-booking/pkg/lock"
	"hotel-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// bookingCodeRetries caps the retry loop on a duplicate booking code.
const bookingCodeRetries = 3

type BookingService interface {
	CreateBooking(ctx context.Context, userID string, req *request.CreateBookingRequest) (*response.BookingResponse, error)
	UpdateBooking(ctx context.Context, bookingID, userID string, req *request.UpdateBookingRequest) (*response.BookingResponse, error)
	CancelBooking(ctx context.Context, bookingID, userID string, staff bool) error
	CompleteBooking(ctx context.Context, bookingID, userID string, staff bool) error
	GetBooking(ctx context.Context, bookingID, userID string, staff bool) (*response.BookingResponse, error)
	GetBookingStatus(ctx context.Context, bookingID string) (*response.BookingStatusResponse, error)
	GetUserBookings(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)

	// HasConflict is the availability check: true when any pending or
	// confirmed booking on the room overlaps [checkIn, checkOut).
	HasConflict(ctx context.Context, roomID uuid.UUID, checkIn, checkOut time.Time, excludeID uuid.UUID) (bool, error)
}

type bookingService struct {
	repo   *repository.Repository
	locker lock.RoomLocker
	notif  notifier.Notifier
	loc    *time.Location
	log    *zap.Logger
}

func NewBookingService(repo *repository.Repository, locker lock.RoomLocker, notif notifier.Notifier, loc *time.Location, log *zap.Logger) BookingService {
	return &bookingService{
		repo:   repo,
		locker: locker,
		notif:  notif,
		loc:    loc,
		log:    log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) HasConflict(ctx context.Context, roomID uuid.UUID, checkIn, checkOut time.Time, excludeID uuid.UUID) (bool, error) {
	count, err := s.repo.Booking.CountOverlapping(ctx, roomID, checkIn, checkOut, excludeID)
	if err != nil {
		return false, fmt.Errorf("check availability: %w", err)
	}
	return count > 0, nil
}

// parseRange parses and validates a check-in/check-out pair. Both strings are
// calendar dates in the reference timezone; [checkIn, checkOut) must contain
// at least one night.
func (s *bookingService) parseRange(checkIn, checkOut string) (time.Time, time.Time, error) {
	in, err := utils.ParseDate(checkIn, s.loc)
	if err != nil {
		return time.Time{}, time.Time{}, utils.NewValidationError("invalid check-in date %q", checkIn)
	}

	out, err := utils.ParseDate(checkOut, s.loc)
	if err != nil {
		return time.Time{}, time.Time{}, utils.NewValidationError("invalid check-out date %q", checkOut)
	}

	if utils.Nights(in, out) < 1 {
		return time.Time{}, time.Time{}, utils.NewValidationError("check-out must be after check-in")
	}

	return in, out, nil
}

func (s *bookingService) CreateBooking(ctx context.Context, userID string, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		return nil, utils.NewValidationError("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, utils.NewValidationError("invalid user ID format %s", userID)
	}

	roomID, err := uuid.Parse(req.RoomID)
	if err != nil {
		return nil, utils.NewValidationError("invalid room ID format %s", req.RoomID)
	}

	checkIn, checkOut, err := s.parseRange(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}

	room, err := s.repo.Room.FindByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("find room: %w", err)
	}
	if room == nil {
		return nil, utils.NewNotFoundError("room %s not found", req.RoomID)
	}

	// Soft status check; the overlap check below is the real gate.
	if room.Status != entity.RoomStatusAvailable {
		return nil, utils.NewStateError("room %s is %s, cannot be booked", room.Name, room.Status)
	}

	// The conflict check and the insert must act as one unit, otherwise two
	// concurrent requests can both pass the check before either commits.
	release, err := s.locker.Acquire(ctx, roomID.String())
	if err != nil {
		return nil, fmt.Errorf("lock room %s: %w", roomID.String(), err)
	}
	defer release()

	conflict, err := s.HasConflict(ctx, roomID, checkIn, checkOut, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, utils.NewConflictError("room %s is already booked for %s to %s", room.Name, req.CheckIn, req.CheckOut)
	}

	nights := utils.Nights(checkIn, checkOut)
	totalPrice := room.NightlyPrice * float64(req.RoomCount) * float64(nights)

	now := time.Now()
	booking := &entity.Booking{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		BookingCode:   utils.GenerateBookingCode(),
		UserID:        userUUID,
		RoomID:        roomID,
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		Adults:        req.Adults,
		Children:      req.Children,
		RoomCount:     req.RoomCount,
		TotalPrice:    totalPrice,
		ContactName:   req.ContactName,
		ContactPhone:  req.ContactPhone,
		ContactEmail:  req.ContactEmail,
		Status:        entity.BookingStatusPending,
		PaymentStatus: entity.PaymentStatusPending,
	}

	// The timestamped code makes collisions rare; retry with a fresh code if
	// the unique index still rejects the insert.
	for attempt := 0; ; attempt++ {
		err = s.repo.Booking.Create(ctx, booking)
		if err == nil {
			break
		}
		if repository.IsUniqueViolation(err) && attempt < bookingCodeRetries {
			s.log.Warn("Booking code collision, regenerating",
				zap.String("booking_code", booking.BookingCode),
			)
			booking.BookingCode = utils.GenerateBookingCode()
			continue
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("booking_code", booking.BookingCode),
		zap.String("user_id", userID),
		zap.String("room_id", req.RoomID),
		zap.Int("nights", nights),
		zap.Float64("total_price", totalPrice),
	)

	resp := response.BookingToResponse(booking, room.Name)
	return &resp, nil
}

func (s *bookingService) UpdateBooking(ctx context.Context, bookingID, userID string, req *request.UpdateBookingRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, utils.NewValidationError("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	booking, err := s.loadOwned(ctx, bookingID, userID, false)
	if err != nil {
		return nil, err
	}

	// Only an unpaid, unconfirmed booking can still be edited.
	if booking.Status != entity.BookingStatusPending {
		return nil, utils.NewStateError("booking is %s, only pending bookings can be updated", booking.Status)
	}

	checkIn, checkOut := booking.CheckIn, booking.CheckOut
	if req.CheckIn != nil || req.CheckOut != nil {
		inStr := booking.CheckIn.Format(utils.DateLayout)
		outStr := booking.CheckOut.Format(utils.DateLayout)
		if req.CheckIn != nil {
			inStr = *req.CheckIn
		}
		if req.CheckOut != nil {
			outStr = *req.CheckOut
		}
		checkIn, checkOut, err = s.parseRange(inStr, outStr)
		if err != nil {
			return nil, err
		}
	}

	roomCount := booking.RoomCount
	if req.RoomCount != nil {
		roomCount = *req.RoomCount
	}

	datesChanged := !checkIn.Equal(booking.CheckIn) || !checkOut.Equal(booking.CheckOut)
	reprice := datesChanged || roomCount != booking.RoomCount

	room, err := s.repo.Room.FindByID(ctx, booking.RoomID)
	if err != nil {
		return nil, fmt.Errorf("find room: %w", err)
	}
	if room == nil {
		return nil, utils.NewNotFoundError("room %s not found", booking.RoomID.String())
	}

	if reprice {
		// Re-run the conflict check excluding this booking's own range.
		release, err := s.locker.Acquire(ctx, booking.RoomID.String())
		if err != nil {
			return nil, fmt.Errorf("lock room %s: %w", booking.RoomID.String(), err)
		}
		defer release()

		conflict, err := s.HasConflict(ctx, booking.RoomID, checkIn, checkOut, booking.ID)
		if err != nil {
			return nil, err
		}
		if conflict {
			return nil, utils.NewConflictError("room %s is already booked for the requested dates", room.Name)
		}

		booking.CheckIn = checkIn
		booking.CheckOut = checkOut
		booking.RoomCount = roomCount
		booking.TotalPrice = room.NightlyPrice * float64(roomCount) * float64(utils.Nights(checkIn, checkOut))
	}

	if req.Adults != nil {
		booking.Adults = *req.Adults
	}
	if req.Children != nil {
		booking.Children = *req.Children
	}
	if req.ContactName != nil {
		booking.ContactName = *req.ContactName
	}
	if req.ContactPhone != nil {
		booking.ContactPhone = *req.ContactPhone
	}
	if req.ContactEmail != nil {
		booking.ContactEmail = *req.ContactEmail
	}
	booking.UpdatedAt = time.Now()

	if err := s.repo.Booking.Update(ctx, booking); err != nil {
		s.log.Error("Failed to update booking",
			zap.Error(err),
			zap.String("booking_id", bookingID),
		)
		return nil, fmt.Errorf("update booking: %w", err)
	}

	s.log.Info("Booking updated",
		zap.String("booking_id", bookingID),
		zap.String("booking_code", booking.BookingCode),
		zap.Bool("repriced", reprice),
		zap.Float64("total_price", booking.TotalPrice),
	)

	resp := response.BookingToResponse(booking, room.Name)
	return &resp, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, bookingID, userID string, staff bool) error {
	booking, err := s.loadOwned(ctx, bookingID, userID, staff)
	if err != nil {
		return err
	}

	// Re-cancelling is a no-op success.
	if booking.Status == entity.BookingStatusCancelled {
		s.log.Info("Booking already cancelled", zap.String("booking_id", bookingID))
		return nil
	}

	if booking.Status == entity.BookingStatusCompleted {
		return utils.NewStateError("booking is completed, cannot cancel")
	}

	if !utils.Today(s.loc).Before(booking.CheckIn) {
		return utils.NewStateError("booking cannot be cancelled on or after the check-in date")
	}

	if err := s.repo.Booking.UpdateStatus(ctx, booking.ID, entity.BookingStatusCancelled); err != nil {
		return fmt.Errorf("cancel booking %s: %w", bookingID, err)
	}

	s.log.Info("Booking cancelled",
		zap.String("booking_id", bookingID),
		zap.String("booking_code", booking.BookingCode),
		zap.Bool("by_staff", staff),
	)

	s.notif.BookingCancelled(ctx, notifier.BookingCancelledEvent{
		BookingID:    booking.ID.String(),
		BookingCode:  booking.BookingCode,
		UserID:       booking.UserID.String(),
		ContactEmail: booking.ContactEmail,
	})

	return nil
}

// CompleteBooking moves a confirmed booking to completed. Completion is only
// accepted once the check-out date has been reached in the reference
// timezone; the stay has to be over before reviews unlock.
func (s *bookingService) CompleteBooking(ctx context.Context, bookingID, userID string, staff bool) error {
	booking, err := s.loadOwned(ctx, bookingID, userID, staff)
	if err != nil {
		return err
	}

	if booking.Status != entity.BookingStatusConfirmed {
		return utils.NewStateError("booking is %s, only confirmed bookings can be completed", booking.Status)
	}

	if utils.Today(s.loc).Before(booking.CheckOut) {
		return utils.NewStateError("booking cannot be completed before the check-out date")
	}

	if err := s.repo.Booking.UpdateStatus(ctx, booking.ID, entity.BookingStatusCompleted); err != nil {
		return fmt.Errorf("complete booking %s: %w", bookingID, err)
	}

	s.log.Info("Booking completed",
		zap.String("booking_id", bookingID),
		zap.String("booking_code", booking.BookingCode),
	)

	return nil
}

func (s *bookingService) GetBooking(ctx context.Context, bookingID, userID string, staff bool) (*response.BookingResponse, error) {
	booking, err := s.loadOwned(ctx, bookingID, userID, staff)
	if err != nil {
		return nil, err
	}

	resp := response.BookingToResponse(booking, s.roomName(ctx, booking.RoomID))
	return &resp, nil
}

// roomName resolves the display name for a response. A lookup failure only
// degrades the enrichment, so it is logged rather than failing the read.
func (s *bookingService) roomName(ctx context.Context, roomID uuid.UUID) string {
	room, err := s.repo.Room.FindByID(ctx, roomID)
	if err != nil {
		s.log.Error("Failed to resolve room name",
			zap.Error(err),
			zap.String("room_id", roomID.String()),
		)
		return ""
	}
	if room == nil {
		return ""
	}
	return room.Name
}

// GetBookingStatus serves anonymous payment-result polling. Only the payment
// outcome fields leave the server; the full record needs an authenticated
// owner or staff caller.
func (s *bookingService) GetBookingStatus(ctx context.Context, bookingID string) (*response.BookingStatusResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, utils.NewValidationError("invalid booking ID format %s", bookingID)
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find booking: %w", err)
	}
	if booking == nil {
		return nil, utils.NewNotFoundError("booking %s not found", bookingID)
	}

	resp := response.BookingToStatusResponse(booking)
	return &resp, nil
}

func (s *bookingService) GetUserBookings(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, utils.NewValidationError("invalid user ID format %s", userID)
	}

	bookings, err := s.repo.Booking.FindByUserID(ctx, userUUID, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get user bookings",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return nil, fmt.Errorf("get user bookings: %w", err)
	}

	total, err := s.repo.Booking.CountByUserID(ctx, userUUID)
	if err != nil {
		s.log.Error("Failed to count user bookings", zap.Error(err))
		return nil, fmt.Errorf("count user bookings: %w", err)
	}

	bookingResponses := make([]response.BookingResponse, len(bookings))
	for i, booking := range bookings {
		bookingResponses[i] = response.BookingToResponse(booking, s.roomName(ctx, booking.RoomID))
	}

	return response.NewPaginatedResponse(bookingResponses, req.Page, req.PerPage, total), nil
}

// loadOwned fetches a booking and enforces ownership. Staff callers bypass
// the ownership check.
func (s *bookingService) loadOwned(ctx context.Context, bookingID, userID string, staff bool) (*entity.Booking, error) {
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

	if !staff && booking.UserID != userUUID {
		return nil, utils.NewAuthorizationError("booking %s does not belong to the caller", bookingID)
	}

	return booking, nil
}
