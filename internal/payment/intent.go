package payment

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/siddeeqzul/calculatorzakakt/internal"
	paymentmodel "github.com/siddeeqzul/calculatorzakakt/internal/core/datamodel/payment"
)

const referencePrefix = "zkt"

// IntentParams is everything the builder needs: payer input plus the
// configured redirect locations.
type IntentParams struct {
	Amount string
	Method string
	Email  string
	Name   string
	Phone  string

	ReturnURL string
	CancelURL string

	// StrictMethods rejects unknown methods instead of letting the gateway
	// code fall back to fpx.
	StrictMethods bool
}

// BuildIntent validates payer input and constructs an immutable payment
// intent. Pure construction: no I/O, no logging. Checks run in order
// amount, method, email; the email check does not depend on the others.
func BuildIntent(p IntentParams) (*paymentmodel.Intent, error) {
	amount, err := parseAmount(p.Amount)
	if err != nil {
		return nil, err
	}

	method := paymentmodel.Method(strings.TrimSpace(p.Method))
	if method == "" {
		return nil, internal.ErrMissingMethod
	}
	if p.StrictMethods && !paymentmodel.KnownMethod(method) {
		return nil, internal.ErrUnsupportedMethod
	}

	email := strings.TrimSpace(p.Email)
	if email == "" {
		return nil, internal.ErrMissingEmail
	}

	refID := newReferenceID()

	return &paymentmodel.Intent{
		Amount:      amount,
		Currency:    paymentmodel.Currency,
		ReferenceID: refID,
		Description: fmt.Sprintf("Zakat payment %s", refID),
		Method:      method,
		GatewayCode: paymentmodel.GatewayCode(method),
		Customer: paymentmodel.Customer{
			Name:  strings.TrimSpace(p.Name),
			Email: email,
			Phone: strings.TrimSpace(p.Phone),
		},
		ReturnURL: p.ReturnURL,
		CancelURL: p.CancelURL,
		Metadata:  map[string]string{"source": "zakat-calculator-web"},
		CreatedAt: time.Now(),
	}, nil
}

// parseAmount rejects absent, non-numeric and non-positive input and
// normalizes the rest to two decimal places.
func parseAmount(raw string) (float64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, internal.ErrInvalidAmount
	}

	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, internal.ErrInvalidAmount
	}
	if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return 0, internal.ErrInvalidAmount
	}

	return math.Round(value*100) / 100, nil
}

var lastReference atomic.Int64

// newReferenceID derives a reference from the current time, bumped past the
// previous one so back-to-back submissions never collide within a session.
func newReferenceID() string {
	now := time.Now().UnixNano()
	for {
		prev := lastReference.Load()
		if now <= prev {
			now = prev + 1
		}
		if lastReference.CompareAndSwap(prev, now) {
			return fmt.Sprintf("%s-%d", referencePrefix, now)
		}
	}
}
