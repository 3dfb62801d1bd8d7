package gateway

import (
	"context"
	"log/slog"
	"time"

	"github.com/siddeeqzul/calculatorzakakt/internal"
	paymentmodel "github.com/siddeeqzul/calculatorzakakt/internal/core/datamodel/payment"
)

// Gateway is the strategy capability for talking to the payment provider.
// The live client and the simulator both satisfy it; the caller never knows
// which one it holds.
type Gateway interface {
	// SubmitPayment sends an intent to the gateway. Exactly one of the
	// SubmitResult fields is populated: CheckoutURL when the payer must be
	// redirected to hosted checkout, Result when the gateway settled
	// synchronously.
	SubmitPayment(ctx context.Context, intent *paymentmodel.Intent) (*SubmitResult, error)

	// GetPaymentStatus looks up a payment by its gateway-assigned id and
	// returns the raw status payload for the caller to interpret.
	GetPaymentStatus(ctx context.Context, paymentID string) (*StatusPayload, error)
}

type SubmitResult struct {
	CheckoutURL string
	Result      *paymentmodel.Result
}

// Redirect reports whether the caller must navigate the payer to checkout.
func (r *SubmitResult) Redirect() bool {
	return r.CheckoutURL != ""
}

// StatusPayload is the gateway's view of a payment. Status values are the
// gateway's own vocabulary; Paid() is the only interpretation this package
// commits to.
type StatusPayload struct {
	ID            string    `json:"id"`
	ReferenceID   string    `json:"reference_id"`
	Status        string    `json:"status"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	Method        string    `json:"method"`
	PaidAt        time.Time `json:"paid_at"`
	FailureReason string    `json:"failure_reason,omitempty"`
}

func (p *StatusPayload) Paid() bool {
	return p.Status == "paid" || p.Status == "success"
}

// New constructs the gateway strategy selected by configuration.
func New(cfg internal.GatewayConfig, logger *slog.Logger) Gateway {
	if cfg.Mode == internal.GatewayModeSimulated {
		return NewSimulator(cfg.Simulator, logger)
	}
	return NewClient(cfg, logger)
}
