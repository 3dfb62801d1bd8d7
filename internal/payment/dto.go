package payment

import (
	"encoding/json"

	paymentmodel "github.com/siddeeqzul/calculatorzakakt/internal/core/datamodel/payment"
)

// FlexibleAmount carries the raw amount input. Frontends post whatever the
// payer typed, sometimes as a JSON string and sometimes as a number; numeric
// validation belongs to the intent builder, not the decoder.
type FlexibleAmount string

func (a *FlexibleAmount) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*a = FlexibleAmount(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*a = FlexibleAmount(n.String())
	return nil
}

// DonationRequest is the payload for POST /api/v1/payments.
type DonationRequest struct {
	Amount FlexibleAmount `json:"amount"`
	Method string         `json:"method"`
	Email  string         `json:"email"`
	Name   string         `json:"name,omitempty"`
	Phone  string         `json:"phone,omitempty"`
}

// DonationResponse reports the submission outcome. Redirect submissions carry
// the checkout URL the payer must be navigated to; simulated submissions carry
// the settled result.
type DonationResponse struct {
	Status        string  `json:"status"`
	ReferenceID   string  `json:"reference_id"`
	Amount        float64 `json:"amount"`
	Method        string  `json:"method"`
	CheckoutURL   string  `json:"checkout_url,omitempty"`
	TransactionID string  `json:"transaction_id,omitempty"`
	Message       string  `json:"message,omitempty"`
}

type HistoryResponse struct {
	Records []*paymentmodel.HistoryRecord `json:"records"`
	Total   int                           `json:"total"`
}
