package payment

import (
	"context"
	"log/slog"

	"github.com/siddeeqzul/calculatorzakakt/internal"
	paymentmodel "github.com/siddeeqzul/calculatorzakakt/internal/core/datamodel/payment"
	"github.com/siddeeqzul/calculatorzakakt/internal/core/events"
	"github.com/siddeeqzul/calculatorzakakt/internal/gateway"
)

// HistoryAPI is the append-only history log. There is deliberately no update
// or delete: the log only ever grows.
type HistoryAPI interface {
	Append(rec *paymentmodel.HistoryRecord) error
	List() ([]*paymentmodel.HistoryRecord, error)
}

// Service drives the submission flow: build the intent, hand it to the
// gateway, and persist synchronous successes. Redirect submissions persist
// nothing; the reconciler owns that side.
type Service struct {
	gateway  gateway.Gateway
	history  HistoryAPI
	eventBus *events.EventBus
	cfg      internal.GatewayConfig
	logger   *slog.Logger
}

func NewService(gw gateway.Gateway, history HistoryAPI, eventBus *events.EventBus, cfg internal.GatewayConfig, logger *slog.Logger) *Service {
	return &Service{
		gateway:  gw,
		history:  history,
		eventBus: eventBus,
		cfg:      cfg,
		logger:   logger,
	}
}

// SubmitOutcome is either a redirect instruction or a settled result.
type SubmitOutcome struct {
	Intent      *paymentmodel.Intent
	RedirectURL string
	Result      *paymentmodel.Result
	Record      *paymentmodel.HistoryRecord
}

func (s *Service) SubmitDonation(ctx context.Context, req *DonationRequest) (*SubmitOutcome, error) {
	intent, err := BuildIntent(IntentParams{
		Amount:        string(req.Amount),
		Method:        req.Method,
		Email:         req.Email,
		Name:          req.Name,
		Phone:         req.Phone,
		ReturnURL:     s.cfg.ReturnURL,
		CancelURL:     s.cfg.CancelURL,
		StrictMethods: s.cfg.StrictMethods,
	})
	if err != nil {
		s.logger.Warn("donation rejected by validation", "error", err)
		return nil, err
	}

	if !paymentmodel.KnownMethod(intent.Method) {
		s.logger.Warn("unknown payment method, defaulting gateway code to fpx",
			"method", intent.Method,
			"reference_id", intent.ReferenceID)
	}

	s.logger.Info("submitting donation",
		"reference_id", intent.ReferenceID,
		"amount", intent.Amount,
		"method", intent.Method)

	submitCtx, cancel := internal.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	res, err := s.gateway.SubmitPayment(submitCtx, intent)
	if err != nil {
		s.logger.Error("gateway submission failed", "error", err, "reference_id", intent.ReferenceID)
		return nil, err
	}

	if res.Redirect() {
		// Nothing is persisted yet; the record is written only after the
		// redirect-return flow confirms payment.
		return &SubmitOutcome{Intent: intent, RedirectURL: res.CheckoutURL}, nil
	}

	outcome := &SubmitOutcome{Intent: intent, Result: res.Result}

	switch res.Result.Status {
	case paymentmodel.StatusSuccess:
		record := paymentmodel.NewHistoryRecord(res.Result)
		if err := s.history.Append(record); err != nil {
			s.logger.Error("failed to append history record",
				"error", err,
				"transaction_id", res.Result.TransactionID)
			return nil, internal.NewInternalError("failed to record payment", err)
		}
		outcome.Record = record

		s.eventBus.Publish(ctx, events.NewPaymentCompletedEvent(
			res.Result.TransactionID,
			intent.ReferenceID,
			intent.Amount,
			string(intent.Method)))

	case paymentmodel.StatusFailed:
		s.eventBus.Publish(ctx, events.NewPaymentFailedEvent(
			intent.ReferenceID,
			intent.Amount,
			res.Result.FailureReason))
	}

	return outcome, nil
}

// GetStatus proxies the gateway status lookup under a bounded timeout.
func (s *Service) GetStatus(ctx context.Context, paymentID string) (*gateway.StatusPayload, error) {
	statusCtx, cancel := internal.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	return s.gateway.GetPaymentStatus(statusCtx, paymentID)
}

// History returns every persisted record in insertion order.
func (s *Service) History(ctx context.Context) ([]*paymentmodel.HistoryRecord, error) {
	records, err := s.history.List()
	if err != nil {
		s.logger.Error("failed to read payment history", "error", err)
		return nil, internal.NewInternalError("failed to read payment history", err)
	}
	return records, nil
}
