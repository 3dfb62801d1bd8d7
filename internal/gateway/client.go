package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/siddeeqzul/calculatorzakakt/internal"
	paymentmodel "github.com/siddeeqzul/calculatorzakakt/internal/core/datamodel/payment"
)

// Client is the live HTTP implementation of Gateway. Every request carries
// the bearer credential and merchant id from configuration.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	merchantID string
	logger     *slog.Logger
}

func NewClient(cfg internal.GatewayConfig, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		merchantID: cfg.MerchantID,
		logger:     logger,
	}
}

// createPaymentRequest is the gateway's expected JSON shape.
type createPaymentRequest struct {
	Amount      float64           `json:"amount"`
	Currency    string            `json:"currency"`
	ReferenceID string            `json:"reference_id"`
	Description string            `json:"description"`
	Customer    customerPayload   `json:"customer"`
	Payment     methodPayload     `json:"payment"`
	Redirect    redirectPayload   `json:"redirect"`
	Metadata    map[string]string `json:"metadata"`
}

type customerPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type methodPayload struct {
	Method string `json:"method"`
}

type redirectPayload struct {
	ReturnURL string `json:"return_url"`
	CancelURL string `json:"cancel_url"`
}

type createPaymentResponse struct {
	Success     bool   `json:"success"`
	CheckoutURL string `json:"checkout_url"`
	Message     string `json:"message"`
}

func (c *Client) SubmitPayment(ctx context.Context, intent *paymentmodel.Intent) (*SubmitResult, error) {
	payload := createPaymentRequest{
		Amount:      intent.Amount,
		Currency:    intent.Currency,
		ReferenceID: intent.ReferenceID,
		Description: intent.Description,
		Customer: customerPayload{
			Name:  intent.Customer.Name,
			Email: intent.Customer.Email,
			Phone: intent.Customer.Phone,
		},
		Payment:  methodPayload{Method: intent.GatewayCode},
		Redirect: redirectPayload{ReturnURL: intent.ReturnURL, CancelURL: intent.CancelURL},
		Metadata: intent.Metadata,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, internal.NewInternalError("failed to marshal payment request", err)
	}

	url := fmt.Sprintf("%s/v1/payments", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, internal.NewInternalError("failed to create gateway request", err)
	}
	c.setHeaders(req)

	c.logger.Info("submitting payment to gateway",
		"url", url,
		"reference_id", intent.ReferenceID,
		"amount", intent.Amount,
		"method", intent.GatewayCode)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("gateway request failed", "error", err, "reference_id", intent.ReferenceID)
		return nil, internal.ErrNetwork.WithCause(err)
	}
	defer resp.Body.Close()

	var gwResp createPaymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&gwResp); err != nil {
		c.logger.Error("failed to decode gateway response", "error", err, "status", resp.StatusCode)
		return nil, internal.NewPaymentCreationError("").WithCause(err)
	}

	if !gwResp.Success || gwResp.CheckoutURL == "" {
		c.logger.Error("gateway rejected payment",
			"reference_id", intent.ReferenceID,
			"status", resp.StatusCode,
			"message", gwResp.Message)
		return nil, internal.NewPaymentCreationError(gwResp.Message)
	}

	c.logger.Info("gateway checkout created",
		"reference_id", intent.ReferenceID,
		"checkout_url", gwResp.CheckoutURL)

	// Control does not return to the payer's session here: the caller must
	// navigate the browser to the checkout URL and wait for the redirect back.
	return &SubmitResult{CheckoutURL: gwResp.CheckoutURL}, nil
}

func (c *Client) GetPaymentStatus(ctx context.Context, paymentID string) (*StatusPayload, error) {
	url := fmt.Sprintf("%s/v1/payments/%s", c.baseURL, paymentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, internal.NewInternalError("failed to create gateway request", err)
	}
	c.setHeaders(req)

	c.logger.Info("fetching payment status", "payment_id", paymentID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("status lookup failed", "error", err, "payment_id", paymentID)
		return nil, internal.ErrNetwork.WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, internal.ErrPaymentNotFound
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Error("status lookup returned error", "status", resp.StatusCode, "payment_id", paymentID)
		return nil, internal.ErrNetwork.WithCause(fmt.Errorf("gateway returned status %d", resp.StatusCode))
	}

	var payload StatusPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, internal.ErrNetwork.WithCause(err)
	}

	return &payload, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("X-Merchant-ID", c.merchantID)
}
