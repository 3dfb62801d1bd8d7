package gateway_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/siddeeqzul/calculatorzakakt/internal"
	paymentmodel "github.com/siddeeqzul/calculatorzakakt/internal/core/datamodel/payment"
	"github.com/siddeeqzul/calculatorzakakt/internal/gateway"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testIntent() *paymentmodel.Intent {
	return &paymentmodel.Intent{
		Amount:      150.00,
		Currency:    paymentmodel.Currency,
		ReferenceID: "zkt-1",
		Description: "Zakat payment zkt-1",
		Method:      paymentmodel.MethodCard,
		GatewayCode: "card",
		Customer:    paymentmodel.Customer{Email: "a@b.com"},
		ReturnURL:   "http://localhost:8080/api/v1/payments/return",
		CancelURL:   "http://localhost:8080/api/v1/payments/return",
	}
}

func newClient(baseURL string) *gateway.Client {
	return gateway.NewClient(internal.GatewayConfig{
		Mode:       internal.GatewayModeLive,
		BaseURL:    baseURL,
		APIKey:     "sk_test_123",
		MerchantID: "merchant_1",
		Timeout:    2 * time.Second,
	}, testLogger())
}

var _ = Describe("Client", func() {
	Describe("SubmitPayment", func() {
		It("posts the payment and returns the checkout URL", func() {
			var captured *http.Request
			var body map[string]any

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				captured = r
				Expect(json.NewDecoder(r.Body).Decode(&body)).To(Succeed())
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(map[string]any{
					"success":      true,
					"checkout_url": "https://gw/checkout/abc",
				})
			}))
			defer server.Close()

			res, err := newClient(server.URL).SubmitPayment(context.Background(), testIntent())

			Expect(err).ToNot(HaveOccurred())
			Expect(res.Redirect()).To(BeTrue())
			Expect(res.CheckoutURL).To(Equal("https://gw/checkout/abc"))

			Expect(captured.Method).To(Equal(http.MethodPost))
			Expect(captured.URL.Path).To(Equal("/v1/payments"))
			Expect(captured.Header.Get("Authorization")).To(Equal("Bearer sk_test_123"))
			Expect(captured.Header.Get("X-Merchant-ID")).To(Equal("merchant_1"))
			Expect(captured.Header.Get("Content-Type")).To(Equal("application/json"))

			Expect(body["amount"]).To(Equal(150.00))
			Expect(body["currency"]).To(Equal("MYR"))
			Expect(body["reference_id"]).To(Equal("zkt-1"))
			payment := body["payment"].(map[string]any)
			Expect(payment["method"]).To(Equal("card"))
		})

		It("maps a gateway rejection to a creation error carrying the message", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnprocessableEntity)
				json.NewEncoder(w).Encode(map[string]any{
					"success": false,
					"message": "merchant daily limit exceeded",
				})
			}))
			defer server.Close()

			_, err := newClient(server.URL).SubmitPayment(context.Background(), testIntent())

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodePaymentCreationFailed))
			Expect(appErr.Message).To(Equal("merchant daily limit exceeded"))
		})

		It("treats a success response without a checkout URL as a rejection", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(map[string]any{"success": true})
			}))
			defer server.Close()

			_, err := newClient(server.URL).SubmitPayment(context.Background(), testIntent())

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodePaymentCreationFailed))
		})

		It("maps an unreachable gateway to a network error", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			server.Close()

			_, err := newClient(server.URL).SubmitPayment(context.Background(), testIntent())

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeNetworkError))
			Expect(appErr.Unwrap()).To(HaveOccurred())
		})
	})

	Describe("GetPaymentStatus", func() {
		It("returns the decoded status payload", func() {
			paidAt := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				Expect(r.URL.Path).To(Equal("/v1/payments/pay_1"))
				Expect(r.Header.Get("Authorization")).To(Equal("Bearer sk_test_123"))
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(gateway.StatusPayload{
					ID:          "pay_1",
					ReferenceID: "zkt-1",
					Status:      "paid",
					Amount:      150.00,
					Currency:    "MYR",
					Method:      "card",
					PaidAt:      paidAt,
				})
			}))
			defer server.Close()

			payload, err := newClient(server.URL).GetPaymentStatus(context.Background(), "pay_1")

			Expect(err).ToNot(HaveOccurred())
			Expect(payload.ID).To(Equal("pay_1"))
			Expect(payload.Paid()).To(BeTrue())
			Expect(payload.PaidAt.Equal(paidAt)).To(BeTrue())
		})

		It("maps 404 to payment not found", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			}))
			defer server.Close()

			_, err := newClient(server.URL).GetPaymentStatus(context.Background(), "nope")

			Expect(err).To(Equal(internal.ErrPaymentNotFound))
		})

		It("maps server errors to a network error", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			}))
			defer server.Close()

			_, err := newClient(server.URL).GetPaymentStatus(context.Background(), "pay_1")

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeNetworkError))
		})
	})
})

var _ = Describe("StatusPayload", func() {
	It("treats paid and success as settled", func() {
		Expect((&gateway.StatusPayload{Status: "paid"}).Paid()).To(BeTrue())
		Expect((&gateway.StatusPayload{Status: "success"}).Paid()).To(BeTrue())
		Expect((&gateway.StatusPayload{Status: "pending"}).Paid()).To(BeFalse())
		Expect((&gateway.StatusPayload{Status: "failed"}).Paid()).To(BeFalse())
	})
})
