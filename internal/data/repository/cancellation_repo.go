package repository

import (
	"context"
	"fmt"

	"hotel-booking/internal/data/entity"
	"hotel-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type CancellationRepository interface {
	Create(ctx context.Context, request *entity.CancellationRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.CancellationRequest, error)
	FindPendingByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.CancellationRequest, error)
	FindAll(ctx context.Context, limit, offset int) ([]*entity.CancellationRequest, error)
	CountAll(ctx context.Context) (int64, error)
	UpdateStatus(ctx context.Context, requestID uuid.UUID, status entity.CancellationStatus, adminNotes *string) error
	UpdateRefund(ctx context.Context, requestID uuid.UUID, refundStatus entity.RefundStatus, refundAmount float64) error
}

const cancellationColumns = `id, booking_id, user_id, reason, status,
	       refund_status, refund_amount, admin_notes,
	       created_at, updated_at, deleted_at`

type cancellationRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewCancellationRepository(db database.PgxIface, log *zap.Logger) CancellationRepository {
	return &cancellationRepository{
		db:  db,
		log: log.With(zap.String("repository", "cancellation")),
	}
}

func scanCancellation(row pgx.Row) (*entity.CancellationRequest, error) {
	var request entity.CancellationRequest
	err := row.Scan(
		&request.ID,
		&request.BookingID,
		&request.UserID,
		&request.Reason,
		&request.Status,
		&request.RefundStatus,
		&request.RefundAmount,
		&request.AdminNotes,
		&request.CreatedAt,
		&request.UpdatedAt,
		&request.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *cancellationRepository) Create(ctx context.Context, request *entity.CancellationRequest) error {
	query := `
		INSERT INTO cancellation_requests (id, booking_id, user_id, reason, status,
		                                   refund_status, refund_amount, admin_notes,
		                                   created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(ctx, query,
		request.ID,
		request.BookingID,
		request.UserID,
		request.Reason,
		request.Status,
		request.RefundStatus,
		request.RefundAmount,
		request.AdminNotes,
		request.CreatedAt,
		request.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create cancellation request",
			zap.Error(err),
			zap.String("booking_id", request.BookingID.String()),
			zap.String("user_id", request.UserID.String()),
		)
		return fmt.Errorf("create cancellation request for booking %s: %w", request.BookingID.String(), err)
	}

	return nil
}

func (r *cancellationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.CancellationRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM cancellation_requests WHERE id = $1`, cancellationColumns)

	request, err := scanCancellation(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find cancellation request by ID",
			zap.Error(err),
			zap.String("request_id", id.String()),
		)
		return nil, fmt.Errorf("find cancellation request by ID %s: %w", id.String(), err)
	}

	return request, nil
}

// FindPendingByBookingID returns the non-terminal request for a booking, if
// any. The one-open-request rule is enforced through this existence check.
func (r *cancellationRepository) FindPendingByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.CancellationRequest, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM cancellation_requests
		WHERE booking_id = $1 AND status = 'pending'
		ORDER BY created_at DESC
		LIMIT 1
	`, cancellationColumns)

	request, err := scanCancellation(r.db.QueryRow(ctx, query, bookingID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find pending cancellation request",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return nil, fmt.Errorf("find pending cancellation request for booking %s: %w", bookingID.String(), err)
	}

	return request, nil
}

func (r *cancellationRepository) FindAll(ctx context.Context, limit, offset int) ([]*entity.CancellationRequest, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM cancellation_requests
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, cancellationColumns)

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		r.log.Error("Failed to find cancellation requests", zap.Error(err))
		return nil, fmt.Errorf("find cancellation requests: %w", err)
	}
	defer rows.Close()

	var requests []*entity.CancellationRequest
	for rows.Next() {
		request, err := scanCancellation(rows)
		if err != nil {
			r.log.Error("Failed to scan cancellation request row", zap.Error(err))
			return nil, fmt.Errorf("scan cancellation request row: %w", err)
		}
		requests = append(requests, request)
	}

	return requests, nil
}

func (r *cancellationRepository) CountAll(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM cancellation_requests`

	var count int64
	err := r.db.QueryRow(ctx, query).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count cancellation requests", zap.Error(err))
		return 0, fmt.Errorf("count cancellation requests: %w", err)
	}

	return count, nil
}

func (r *cancellationRepository) UpdateStatus(ctx context.Context, requestID uuid.UUID, status entity.CancellationStatus, adminNotes *string) error {
	query := `
		UPDATE cancellation_requests
		SET status = $2, admin_notes = $3, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, requestID, status, adminNotes)
	if err != nil {
		r.log.Error("Failed to update cancellation request status",
			zap.Error(err),
			zap.String("request_id", requestID.String()),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("update cancellation request %s status to %s: %w", requestID.String(), string(status), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("cancellation request %s not found", requestID.String())
	}

	return nil
}

func (r *cancellationRepository) UpdateRefund(ctx context.Context, requestID uuid.UUID, refundStatus entity.RefundStatus, refundAmount float64) error {
	query := `
		UPDATE cancellation_requests
		SET refund_status = $2, refund_amount = $3, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, requestID, refundStatus, refundAmount)
	if err != nil {
		r.log.Error("Failed to update refund status",
			zap.Error(err),
			zap.String("request_id", requestID.String()),
			zap.String("refund_status", string(refundStatus)),
		)
		return fmt.Errorf("update cancellation request %s refund to %s: %w", requestID.String(), string(refundStatus), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("cancellation request %s not found", requestID.String())
	}

	return nil
}
