package utils

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// ==================== BOOKING CODE ====================

// GenerateBookingCode creates a human-facing booking code. The timestamp plus
// a random suffix makes collisions rare; the repository still retries on a
// duplicate-key insert.
func GenerateBookingCode() string {
	now := time.Now()

	// Format: HB-YYYYMMDD-HHMMSS-RANDOM
	datePart := now.Format("20060102")
	timePart := now.Format("150405")
	randomPart := fmt.Sprintf("%04d", rand.Intn(10000))

	return fmt.Sprintf("HB-%s-%s-%s", datePart, timePart, randomPart)
}

// ==================== GATEWAY IDS ====================

// GenerateGatewayOrderID creates the order id sent to the wallet provider.
// Reconciliation looks bookings up by this exact value, so it must be unique
// per initiation attempt.
func GenerateGatewayOrderID() string {
	return fmt.Sprintf("PAY-%d-%s", time.Now().UnixMilli(), uuid.New().String()[:8])
}

func GenerateGatewayRequestID() string {
	return uuid.New().String()
}
