package payment

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/siddeeqzul/calculatorzakakt/internal"
	paymentmodel "github.com/siddeeqzul/calculatorzakakt/internal/core/datamodel/payment"
	"github.com/siddeeqzul/calculatorzakakt/internal/core/events"
	"github.com/siddeeqzul/calculatorzakakt/internal/gateway"
)

// Redirect-return query parameter contract with the gateway.
const (
	ReturnStatusParam = "payment_status"
	ReturnIDParam     = "payment_id"

	returnStatusCompleted = "completed"
	returnStatusCancelled = "cancelled"
)

type ReconcileKind string

const (
	ReconcileNone               ReconcileKind = "none"
	ReconcileSuccess            ReconcileKind = "success"
	ReconcileCancelled          ReconcileKind = "cancelled"
	ReconcileVerificationFailed ReconcileKind = "verification_failed"
)

// ReconcileOutcome describes what the return URL meant. CleanURL is the
// visible location with the return markers stripped, so a refresh does not
// re-trigger reconciliation; on verification failure the markers are kept so
// a refresh retries the lookup.
type ReconcileOutcome struct {
	Kind     ReconcileKind
	Record   *paymentmodel.HistoryRecord
	Message  string
	CleanURL string
}

// Reconciler drives a redirect-based payment to its terminal, persisted
// state. It must run before any other payment action on a return visit.
type Reconciler struct {
	gateway  gateway.Gateway
	history  HistoryAPI
	eventBus *events.EventBus
	timeout  time.Duration
	logger   *slog.Logger
}

func NewReconciler(gw gateway.Gateway, history HistoryAPI, eventBus *events.EventBus, timeout time.Duration, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		gateway:  gw,
		history:  history,
		eventBus: eventBus,
		timeout:  timeout,
		logger:   logger,
	}
}

func (r *Reconciler) Reconcile(ctx context.Context, loc *url.URL) (*ReconcileOutcome, error) {
	query := loc.Query()

	switch query.Get(ReturnStatusParam) {
	case returnStatusCompleted:
		paymentID := query.Get(ReturnIDParam)
		if paymentID == "" {
			// The gateway should never send completed without an id; treat
			// it as no markers but leave a trace for support.
			r.logger.Warn("completed return without payment id, ignoring", "url", loc.String())
			return &ReconcileOutcome{Kind: ReconcileNone, CleanURL: loc.String()}, nil
		}
		return r.reconcileCompleted(ctx, loc, paymentID)

	case returnStatusCancelled:
		r.logger.Info("payment cancelled by payer")
		r.eventBus.Publish(ctx, events.NewPaymentCancelledEvent(query.Get(ReturnIDParam)))
		return &ReconcileOutcome{
			Kind:     ReconcileCancelled,
			Message:  "payment was cancelled, no money has been taken",
			CleanURL: StripReturnParams(loc),
		}, nil

	default:
		return &ReconcileOutcome{Kind: ReconcileNone, CleanURL: loc.String()}, nil
	}
}

func (r *Reconciler) reconcileCompleted(ctx context.Context, loc *url.URL, paymentID string) (*ReconcileOutcome, error) {
	lookupCtx, cancel := internal.WithTimeout(ctx, r.timeout)
	defer cancel()

	payload, err := r.gateway.GetPaymentStatus(lookupCtx, paymentID)
	if err != nil {
		r.logger.Error("status lookup failed during reconciliation",
			"error", err,
			"payment_id", paymentID)
		return nil, err
	}

	if !payload.Paid() {
		// Possible inconsistency between redirect and gateway state; this
		// is never auto-retried, a human has to reconcile it.
		r.logger.Error("redirect says completed but gateway disagrees",
			"payment_id", paymentID,
			"gateway_status", payload.Status)
		return &ReconcileOutcome{
			Kind:     ReconcileVerificationFailed,
			Message:  internal.ErrVerificationFailed.Message,
			CleanURL: loc.String(),
		}, nil
	}

	result := &paymentmodel.Result{
		Status:        paymentmodel.StatusSuccess,
		TransactionID: payload.ID,
		ReferenceID:   payload.ReferenceID,
		Amount:        payload.Amount,
		Method:        paymentmodel.Method(payload.Method),
		CompletedAt:   payload.PaidAt,
	}

	record := paymentmodel.NewHistoryRecord(result)
	if err := r.history.Append(record); err != nil {
		r.logger.Error("failed to persist reconciled payment",
			"error", err,
			"payment_id", paymentID)
		return nil, internal.NewInternalError("failed to record payment", err)
	}

	r.logger.Info("payment reconciled",
		"payment_id", paymentID,
		"reference_id", payload.ReferenceID,
		"amount", payload.Amount)

	r.eventBus.Publish(ctx, events.NewPaymentCompletedEvent(
		payload.ID, payload.ReferenceID, payload.Amount, payload.Method))

	return &ReconcileOutcome{
		Kind:     ReconcileSuccess,
		Record:   record,
		CleanURL: StripReturnParams(loc),
	}, nil
}

// StripReturnParams rewrites the location without the return markers.
func StripReturnParams(loc *url.URL) string {
	stripped := *loc
	query := stripped.Query()
	query.Del(ReturnStatusParam)
	query.Del(ReturnIDParam)
	stripped.RawQuery = query.Encode()
	return stripped.String()
}
