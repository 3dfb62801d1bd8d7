package payment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/siddeeqzul/calculatorzakakt/internal/core/events"
)

// ReceiptNotifier reacts to settled payments. Today it only writes receipt
// log lines; it is the hook point for email receipts once the mailer lands.
type ReceiptNotifier struct {
	logger *slog.Logger
}

func NewReceiptNotifier(logger *slog.Logger) *ReceiptNotifier {
	return &ReceiptNotifier{logger: logger}
}

func (n *ReceiptNotifier) HandlePaymentCompleted(ctx context.Context, event events.Event) error {
	completed, ok := event.(*events.PaymentCompletedEvent)
	if !ok {
		return fmt.Errorf("expected PaymentCompletedEvent, got %T", event)
	}

	n.logger.Info("receipt: zakat payment completed",
		"transaction_id", completed.TransactionID,
		"reference_id", completed.ReferenceID,
		"amount", completed.Amount,
		"method", completed.Method,
		"event_id", completed.EventID())

	return nil
}

func (n *ReceiptNotifier) HandlePaymentCancelled(ctx context.Context, event events.Event) error {
	cancelled, ok := event.(*events.PaymentCancelledEvent)
	if !ok {
		return fmt.Errorf("expected PaymentCancelledEvent, got %T", event)
	}

	n.logger.Info("receipt: payment cancelled by payer",
		"payment_id", cancelled.PaymentID,
		"event_id", cancelled.EventID())

	return nil
}

func (n *ReceiptNotifier) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypePaymentCompleted, n.HandlePaymentCompleted)
	eventBus.Subscribe(events.EventTypePaymentCancelled, n.HandlePaymentCancelled)

	n.logger.Info("receipt event handlers registered",
		"handlers", []string{events.EventTypePaymentCompleted, events.EventTypePaymentCancelled})
}
