package gateway

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/siddeeqzul/calculatorzakakt/internal"
	paymentmodel "github.com/siddeeqzul/calculatorzakakt/internal/core/datamodel/payment"
)

// Simulator is the demo implementation of Gateway. It never touches the
// network: after a fixed delay it settles each payment pseudo-randomly with
// the configured success rate and a fabricated transaction id. A non-zero
// seed makes outcomes reproducible for tests.
type Simulator struct {
	successRate float64
	delay       time.Duration
	rng         *rand.Rand
	logger      *slog.Logger

	mu      sync.Mutex
	settled map[string]*StatusPayload
}

func NewSimulator(cfg internal.SimulatorConfig, logger *slog.Logger) *Simulator {
	rate := cfg.SuccessRate
	if rate <= 0 || rate > 1 {
		rate = 0.8
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Simulator{
		successRate: rate,
		delay:       cfg.Delay,
		rng:         rand.New(rand.NewSource(seed)),
		logger:      logger,
		settled:     make(map[string]*StatusPayload),
	}
}

func (s *Simulator) SubmitPayment(ctx context.Context, intent *paymentmodel.Intent) (*SubmitResult, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, internal.ErrNetwork.WithCause(ctx.Err())
		}
	}

	txnID := "sim_" + uuid.NewString()

	s.mu.Lock()
	success := s.rng.Float64() < s.successRate
	s.mu.Unlock()

	result := &paymentmodel.Result{
		TransactionID: txnID,
		ReferenceID:   intent.ReferenceID,
		Amount:        intent.Amount,
		Method:        intent.Method,
		CompletedAt:   time.Now(),
	}

	payload := &StatusPayload{
		ID:          txnID,
		ReferenceID: intent.ReferenceID,
		Amount:      intent.Amount,
		Currency:    intent.Currency,
		Method:      intent.GatewayCode,
	}

	if success {
		result.Status = paymentmodel.StatusSuccess
		payload.Status = "paid"
		payload.PaidAt = result.CompletedAt
		s.logger.Info("simulated payment succeeded",
			"reference_id", intent.ReferenceID,
			"transaction_id", txnID)
	} else {
		result.Status = paymentmodel.StatusFailed
		result.FailureReason = "Insufficient funds"
		payload.Status = "failed"
		payload.FailureReason = result.FailureReason
		s.logger.Info("simulated payment failed",
			"reference_id", intent.ReferenceID,
			"transaction_id", txnID,
			"reason", result.FailureReason)
	}

	s.mu.Lock()
	s.settled[txnID] = payload
	s.mu.Unlock()

	return &SubmitResult{Result: result}, nil
}

func (s *Simulator) GetPaymentStatus(ctx context.Context, paymentID string) (*StatusPayload, error) {
	s.mu.Lock()
	payload, ok := s.settled[paymentID]
	s.mu.Unlock()

	if !ok {
		return nil, internal.ErrPaymentNotFound
	}
	return payload, nil
}

// Settle records a payment as settled with the given status, so that demo
// redirect returns can be reconciled against the simulator.
func (s *Simulator) Settle(paymentID, referenceID, status string, amount float64, method string) {
	payload := &StatusPayload{
		ID:          paymentID,
		ReferenceID: referenceID,
		Status:      status,
		Amount:      amount,
		Currency:    paymentmodel.Currency,
		Method:      method,
	}
	if payload.Paid() {
		payload.PaidAt = time.Now()
	}

	s.mu.Lock()
	s.settled[paymentID] = payload
	s.mu.Unlock()
}
