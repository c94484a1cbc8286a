package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hotel-booking/internal/data/entity"
	"hotel-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByGatewayOrderID(ctx context.Context, orderID string) (*entity.Booking, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
	Update(ctx context.Context, booking *entity.Booking) error
	UpdateStatus(ctx context.Context, bookingID uuid.UUID, status entity.BookingStatus) error

	// Business queries
	CountOverlapping(ctx context.Context, roomID uuid.UUID, checkIn, checkOut time.Time, excludeID uuid.UUID) (int64, error)
	SetGatewayOrder(ctx context.Context, bookingID uuid.UUID, orderID, requestID, returnURL string) error
	ApplyPaymentOutcome(ctx context.Context, bookingID uuid.UUID, paymentStatus entity.PaymentStatus, status entity.BookingStatus, transactionID *string) (bool, error)
}

// IsUniqueViolation reports whether err is a Postgres duplicate-key error.
// Used to retry bookingCode generation on the rare collision.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

const bookingColumns = `id, booking_code, user_id, room_id, check_in, check_out,
	       adults, children, room_count, total_price,
	       contact_name, contact_phone, contact_email,
	       status, payment_status,
	       gateway_order_id, gateway_request_id, gateway_transaction_id, return_url,
	       created_at, updated_at, deleted_at`

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var booking entity.Booking
	err := row.Scan(
		&booking.ID,
		&booking.BookingCode,
		&booking.UserID,
		&booking.RoomID,
		&booking.CheckIn,
		&booking.CheckOut,
		&booking.Adults,
		&booking.Children,
		&booking.RoomCount,
		&booking.TotalPrice,
		&booking.ContactName,
		&booking.ContactPhone,
		&booking.ContactEmail,
		&booking.Status,
		&booking.PaymentStatus,
		&booking.GatewayOrderID,
		&booking.GatewayRequestID,
		&booking.GatewayTransactionID,
		&booking.ReturnURL,
		&booking.CreatedAt,
		&booking.UpdatedAt,
		&booking.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (id, booking_code, user_id, room_id, check_in, check_out,
		                      adults, children, room_count, total_price,
		                      contact_name, contact_phone, contact_email,
		                      status, payment_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := r.db.Exec(ctx, query,
		booking.ID,
		booking.BookingCode,
		booking.UserID,
		booking.RoomID,
		booking.CheckIn,
		booking.CheckOut,
		booking.Adults,
		booking.Children,
		booking.RoomCount,
		booking.TotalPrice,
		booking.ContactName,
		booking.ContactPhone,
		booking.ContactEmail,
		booking.Status,
		booking.PaymentStatus,
		booking.CreatedAt,
		booking.UpdatedAt,
	)

	if err != nil {
		if !IsUniqueViolation(err) {
			r.log.Error("Failed to create booking",
				zap.Error(err),
				zap.String("booking_code", booking.BookingCode),
				zap.String("user_id", booking.UserID.String()),
			)
		}
		return fmt.Errorf("create booking %s: %w", booking.BookingCode, err)
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE id = $1`, bookingColumns)

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	return booking, nil
}

func (r *bookingRepository) FindByGatewayOrderID(ctx context.Context, orderID string) (*entity.Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE gateway_order_id = $1`, bookingColumns)

	booking, err := scanBooking(r.db.QueryRow(ctx, query, orderID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by gateway order ID",
			zap.Error(err),
			zap.String("gateway_order_id", orderID),
		)
		return nil, fmt.Errorf("find booking by gateway order ID %s: %w", orderID, err)
	}

	return booking, nil
}

func (r *bookingRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, bookingColumns)

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find bookings by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find bookings by user ID %s: %w", userID.String(), err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, nil
}

func (r *bookingRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE user_id = $1`

	var count int64
	err := r.db.QueryRow(ctx, query, userID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count bookings by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return 0, fmt.Errorf("count bookings by user ID %s: %w", userID.String(), err)
	}

	return count, nil
}

func (r *bookingRepository) Update(ctx context.Context, booking *entity.Booking) error {
	query := `
		UPDATE bookings
		SET check_in = $2, check_out = $3, adults = $4, children = $5,
		    room_count = $6, total_price = $7,
		    contact_name = $8, contact_phone = $9, contact_email = $10,
		    status = $11, payment_status = $12, updated_at = $13
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		booking.ID,
		booking.CheckIn,
		booking.CheckOut,
		booking.Adults,
		booking.Children,
		booking.RoomCount,
		booking.TotalPrice,
		booking.ContactName,
		booking.ContactPhone,
		booking.ContactEmail,
		booking.Status,
		booking.PaymentStatus,
		booking.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to update booking",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
		return fmt.Errorf("update booking %s: %w", booking.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s not found", booking.ID.String())
	}

	return nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, bookingID uuid.UUID, status entity.BookingStatus) error {
	query := `UPDATE bookings SET status = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, bookingID, status)
	if err != nil {
		r.log.Error("Failed to update booking status",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("update booking %s status to %s: %w", bookingID.String(), string(status), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s not found", bookingID.String())
	}

	return nil
}

// CountOverlapping counts active bookings on the room whose date range
// overlaps [checkIn, checkOut) under half-open semantics. excludeID skips the
// booking being updated; pass uuid.Nil on create.
func (r *bookingRepository) CountOverlapping(ctx context.Context, roomID uuid.UUID, checkIn, checkOut time.Time, excludeID uuid.UUID) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM bookings
		WHERE room_id = $1
		  AND status IN ('pending', 'confirmed')
		  AND check_in < $3
		  AND check_out > $2
		  AND id <> $4
	`

	var count int64
	err := r.db.QueryRow(ctx, query, roomID, checkIn, checkOut, excludeID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count overlapping bookings",
			zap.Error(err),
			zap.String("room_id", roomID.String()),
		)
		return 0, fmt.Errorf("count overlapping bookings for room %s: %w", roomID.String(), err)
	}

	return count, nil
}

func (r *bookingRepository) SetGatewayOrder(ctx context.Context, bookingID uuid.UUID, orderID, requestID, returnURL string) error {
	query := `
		UPDATE bookings
		SET gateway_order_id = $2, gateway_request_id = $3, return_url = $4, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, bookingID, orderID, requestID, returnURL)
	if err != nil {
		r.log.Error("Failed to set gateway order",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
			zap.String("gateway_order_id", orderID),
		)
		return fmt.Errorf("set gateway order on booking %s: %w", bookingID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s not found", bookingID.String())
	}

	return nil
}

// ApplyPaymentOutcome records a reconciliation outcome. The WHERE clause is
// the idempotency guard: paid is terminal and a status never re-applies over
// itself, so concurrent deliveries of the same callback race on this single
// statement and exactly one of them reports applied=true.
func (r *bookingRepository) ApplyPaymentOutcome(ctx context.Context, bookingID uuid.UUID, paymentStatus entity.PaymentStatus, status entity.BookingStatus, transactionID *string) (bool, error) {
	query := `
		UPDATE bookings
		SET payment_status = $2, status = $3, gateway_transaction_id = $4, updated_at = NOW()
		WHERE id = $1
		  AND payment_status <> $2
		  AND payment_status <> 'paid'
	`

	result, err := r.db.Exec(ctx, query, bookingID, paymentStatus, status, transactionID)
	if err != nil {
		r.log.Error("Failed to apply payment outcome",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
			zap.String("payment_status", string(paymentStatus)),
		)
		return false, fmt.Errorf("apply payment outcome to booking %s: %w", bookingID.String(), err)
	}

	return result.RowsAffected() > 0, nil
}
