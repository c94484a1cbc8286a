package entity

import (
	"github.com/google/uuid"
)

type CancellationStatus string

const (
	CancellationStatusPending  CancellationStatus = "pending"
	CancellationStatusApproved CancellationStatus = "approved"
	CancellationStatusRejected CancellationStatus = "rejected"
)

type RefundStatus string

const (
	RefundStatusNotRequested RefundStatus = "not_requested"
	RefundStatusPending      RefundStatus = "pending"
	RefundStatusCompleted    RefundStatus = "completed"
	RefundStatusFailed       RefundStatus = "failed"
)

type CancellationRequest struct {
	Base
	BookingID    uuid.UUID          `db:"booking_id"`
	UserID       uuid.UUID          `db:"user_id"`
	Reason       string             `db:"reason"`
	Status       CancellationStatus `db:"status"`
	RefundStatus RefundStatus       `db:"refund_status"`
	RefundAmount float64            `db:"refund_amount"`
	AdminNotes   *string            `db:"admin_notes"`
}
