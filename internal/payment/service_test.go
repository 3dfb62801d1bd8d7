package payment_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/siddeeqzul/calculatorzakakt/internal"
	paymentmodel "github.com/siddeeqzul/calculatorzakakt/internal/core/datamodel/payment"
	"github.com/siddeeqzul/calculatorzakakt/internal/core/events"
	"github.com/siddeeqzul/calculatorzakakt/internal/gateway"
	paymentPkg "github.com/siddeeqzul/calculatorzakakt/internal/payment"
)

// fakeGateway scripts gateway behavior per test.
type fakeGateway struct {
	submitResult *gateway.SubmitResult
	submitErr    error
	statusResult *gateway.StatusPayload
	statusErr    error

	submittedIntents []*paymentmodel.Intent
	statusLookups    []string
}

func (f *fakeGateway) SubmitPayment(ctx context.Context, intent *paymentmodel.Intent) (*gateway.SubmitResult, error) {
	f.submittedIntents = append(f.submittedIntents, intent)
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return f.submitResult, nil
}

func (f *fakeGateway) GetPaymentStatus(ctx context.Context, paymentID string) (*gateway.StatusPayload, error) {
	f.statusLookups = append(f.statusLookups, paymentID)
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return f.statusResult, nil
}

// memHistory is an in-memory append-only log.
type memHistory struct {
	records   []*paymentmodel.HistoryRecord
	appendErr error
	listErr   error
}

func (m *memHistory) Append(rec *paymentmodel.HistoryRecord) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	rec.ID = int64(len(m.records) + 1)
	m.records = append(m.records, rec)
	return nil
}

func (m *memHistory) List() ([]*paymentmodel.HistoryRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.records, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testGatewayConfig() internal.GatewayConfig {
	return internal.GatewayConfig{
		Mode:      internal.GatewayModeLive,
		Timeout:   5 * time.Second,
		ReturnURL: "http://localhost:8080/api/v1/payments/return",
		CancelURL: "http://localhost:8080/api/v1/payments/return",
	}
}

var _ = Describe("Service", func() {
	var (
		gw      *fakeGateway
		history *memHistory
		service *paymentPkg.Service
	)

	BeforeEach(func() {
		gw = &fakeGateway{}
		history = &memHistory{}
		log := testLogger()
		service = paymentPkg.NewService(gw, history, events.NewEventBus(log), testGatewayConfig(), log)
	})

	Describe("SubmitDonation", func() {
		Context("with invalid input", func() {
			It("halts before contacting the gateway", func() {
				_, err := service.SubmitDonation(context.Background(), &paymentPkg.DonationRequest{
					Amount: "-1",
					Method: "card",
					Email:  "a@b.com",
				})

				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidAmount))
				Expect(gw.submittedIntents).To(BeEmpty())
			})
		})

		Context("when the gateway returns a checkout URL", func() {
			BeforeEach(func() {
				gw.submitResult = &gateway.SubmitResult{CheckoutURL: "https://gw/x"}
			})

			It("instructs the caller to redirect and persists nothing yet", func() {
				outcome, err := service.SubmitDonation(context.Background(), &paymentPkg.DonationRequest{
					Amount: "150.00",
					Method: "card",
					Email:  "a@b.com",
				})

				Expect(err).ToNot(HaveOccurred())
				Expect(outcome.RedirectURL).To(Equal("https://gw/x"))
				Expect(outcome.Result).To(BeNil())
				Expect(outcome.Record).To(BeNil())
				Expect(history.records).To(BeEmpty())

				Expect(gw.submittedIntents).To(HaveLen(1))
				intent := gw.submittedIntents[0]
				Expect(intent.Amount).To(Equal(150.00))
				Expect(intent.GatewayCode).To(Equal("card"))
				Expect(intent.Customer.Email).To(Equal("a@b.com"))
			})
		})

		Context("when the gateway settles synchronously with success", func() {
			BeforeEach(func() {
				gw.submitResult = &gateway.SubmitResult{
					Result: &paymentmodel.Result{
						Status:        paymentmodel.StatusSuccess,
						TransactionID: "sim_abc",
						ReferenceID:   "zkt-1",
						Amount:        88.80,
						Method:        paymentmodel.MethodFPX,
						CompletedAt:   time.Now(),
					},
				}
			})

			It("appends exactly one history record", func() {
				outcome, err := service.SubmitDonation(context.Background(), &paymentPkg.DonationRequest{
					Amount: "88.80",
					Method: "fpx",
					Email:  "a@b.com",
				})

				Expect(err).ToNot(HaveOccurred())
				Expect(outcome.Record).ToNot(BeNil())
				Expect(history.records).To(HaveLen(1))
				Expect(history.records[0].TransactionID).To(Equal("sim_abc"))
				Expect(history.records[0].Status).To(Equal(string(paymentmodel.StatusSuccess)))
			})

			It("surfaces a storage failure as an internal error", func() {
				history.appendErr = errors.New("disk full")

				_, err := service.SubmitDonation(context.Background(), &paymentPkg.DonationRequest{
					Amount: "88.80",
					Method: "fpx",
					Email:  "a@b.com",
				})

				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Type).To(Equal(internal.ErrorTypeInternal))
			})
		})

		Context("when the gateway settles synchronously with failure", func() {
			BeforeEach(func() {
				gw.submitResult = &gateway.SubmitResult{
					Result: &paymentmodel.Result{
						Status:        paymentmodel.StatusFailed,
						TransactionID: "sim_def",
						FailureReason: "Insufficient funds",
					},
				}
			})

			It("returns the failed result without persisting", func() {
				outcome, err := service.SubmitDonation(context.Background(), &paymentPkg.DonationRequest{
					Amount: "10",
					Method: "fpx",
					Email:  "a@b.com",
				})

				Expect(err).ToNot(HaveOccurred())
				Expect(outcome.Result.Status).To(Equal(paymentmodel.StatusFailed))
				Expect(history.records).To(BeEmpty())
			})
		})

		Context("when the gateway is unreachable", func() {
			It("passes the network error through", func() {
				gw.submitErr = internal.ErrNetwork

				_, err := service.SubmitDonation(context.Background(), &paymentPkg.DonationRequest{
					Amount: "10",
					Method: "fpx",
					Email:  "a@b.com",
				})

				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Code).To(Equal(internal.ErrCodeNetworkError))
			})
		})
	})

	Describe("History", func() {
		It("returns records in insertion order", func() {
			for _, txn := range []string{"t1", "t2", "t3"} {
				Expect(history.Append(&paymentmodel.HistoryRecord{TransactionID: txn})).To(Succeed())
			}

			records, err := service.History(context.Background())

			Expect(err).ToNot(HaveOccurred())
			Expect(records).To(HaveLen(3))
			Expect(records[0].TransactionID).To(Equal("t1"))
			Expect(records[2].TransactionID).To(Equal("t3"))
		})
	})
})
