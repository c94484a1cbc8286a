package gateway

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// PayoutClient transfers a refund back to the guest's wallet. The external
// transfer API is simulated; the interface is what the cancellation workflow
// depends on so a real client can replace it.
type PayoutClient interface {
	Transfer(ctx context.Context, orderID string, amount float64) error
}

type payoutClient struct {
	log *zap.Logger
}

func NewPayoutClient(log *zap.Logger) PayoutClient {
	return &payoutClient{
		log: log.With(zap.String("component", "payout")),
	}
}

// Transfer simulates the provider-side refund transfer. Respects ctx so the
// caller's bounded timeout maps a slow provider to a failed refund.
func (p *payoutClient) Transfer(ctx context.Context, orderID string, amount float64) error {
	select {
	case <-time.After(500 * time.Millisecond):
	case <-ctx.Done():
		return ctx.Err()
	}

	p.log.Info("Refund transfer executed",
		zap.String("order_id", orderID),
		zap.Float64("amount", amount),
	)
	return nil
}
