package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypePaymentCompleted = "payment.completed"
	EventTypePaymentFailed    = "payment.failed"
	EventTypePaymentCancelled = "payment.cancelled"
)

type PaymentCompletedEvent struct {
	BaseEvent
	TransactionID string  `json:"transaction_id"`
	ReferenceID   string  `json:"reference_id"`
	Amount        float64 `json:"amount"`
	Method        string  `json:"method"`
}

func NewPaymentCompletedEvent(transactionID, referenceID string, amount float64, method string) *PaymentCompletedEvent {
	return &PaymentCompletedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePaymentCompleted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"transaction_id": transactionID,
				"reference_id":   referenceID,
				"amount":         amount,
				"method":         method,
			},
		},
		TransactionID: transactionID,
		ReferenceID:   referenceID,
		Amount:        amount,
		Method:        method,
	}
}

type PaymentFailedEvent struct {
	BaseEvent
	ReferenceID   string  `json:"reference_id"`
	Amount        float64 `json:"amount"`
	FailureReason string  `json:"failure_reason"`
}

func NewPaymentFailedEvent(referenceID string, amount float64, failureReason string) *PaymentFailedEvent {
	return &PaymentFailedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePaymentFailed,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"reference_id":   referenceID,
				"amount":         amount,
				"failure_reason": failureReason,
			},
		},
		ReferenceID:   referenceID,
		Amount:        amount,
		FailureReason: failureReason,
	}
}

type PaymentCancelledEvent struct {
	BaseEvent
	PaymentID string `json:"payment_id"`
}

func NewPaymentCancelledEvent(paymentID string) *PaymentCancelledEvent {
	return &PaymentCancelledEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePaymentCancelled,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"payment_id": paymentID,
			},
		},
		PaymentID: paymentID,
	}
}
