package payment

import (
	"time"
)

// Currency is fixed for the whole service; the zakat calculator frontend only
// collects Malaysian Ringgit.
const Currency = "MYR"

type Status string

const (
	StatusPending   Status = "pending"
	StatusSuccess   Status = "success"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further transitions can occur for this status.
func (s Status) Terminal() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

type Method string

const (
	MethodFPX    Method = "fpx"
	MethodCard   Method = "card"
	MethodWallet Method = "wallet"
	MethodQR     Method = "qr"
)

// gatewayCodes translates our method names into the codes the gateway expects.
var gatewayCodes = map[Method]string{
	MethodFPX:    "fpx",
	MethodCard:   "card",
	MethodWallet: "tng_ewallet",
	MethodQR:     "duitnow_qr",
}

func KnownMethod(m Method) bool {
	_, ok := gatewayCodes[m]
	return ok
}

// GatewayCode returns the gateway-facing code for a method. Unrecognized
// methods fall back to fpx, matching long-standing frontend behavior.
func GatewayCode(m Method) string {
	if code, ok := gatewayCodes[m]; ok {
		return code
	}
	return "fpx"
}

type Customer struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// Intent is the immutable, validated description of a payment to be
// attempted. It is built once per submission and never persisted.
type Intent struct {
	Amount      float64
	Currency    string
	ReferenceID string
	Description string
	Method      Method
	GatewayCode string
	Customer    Customer
	ReturnURL   string
	CancelURL   string
	Metadata    map[string]string
	CreatedAt   time.Time
}

// Result is a payment's observed outcome, produced either synchronously in
// simulated mode or after the redirect-return status lookup.
type Result struct {
	Status        Status
	TransactionID string
	ReferenceID   string
	Amount        float64
	Method        Method
	CompletedAt   time.Time
	FailureReason string
}

// HistoryRecord is a Result plus the local receipt timestamp, appended to the
// payment_history log. The log is append-only: records are never mutated or
// removed.
type HistoryRecord struct {
	ID            int64     `gorm:"primaryKey" json:"id"`
	TransactionID string    `gorm:"column:transaction_id;not null" json:"transaction_id"`
	ReferenceID   string    `gorm:"column:reference_id;not null" json:"reference_id"`
	Amount        float64   `gorm:"column:amount;not null" json:"amount"`
	Currency      string    `gorm:"column:currency;not null" json:"currency"`
	Method        string    `gorm:"column:method;not null" json:"method"`
	Status        string    `gorm:"column:status;not null" json:"status"`
	CompletedAt   time.Time `gorm:"column:completed_at" json:"completed_at"`
	ReceivedAt    time.Time `gorm:"column:received_at" json:"received_at"`
}

func (HistoryRecord) TableName() string {
	return "payment_history"
}

// NewHistoryRecord stamps a Result with the local receipt time.
func NewHistoryRecord(res *Result) *HistoryRecord {
	return &HistoryRecord{
		TransactionID: res.TransactionID,
		ReferenceID:   res.ReferenceID,
		Amount:        res.Amount,
		Currency:      Currency,
		Method:        string(res.Method),
		Status:        string(res.Status),
		CompletedAt:   res.CompletedAt,
		ReceivedAt:    time.Now(),
	}
}
