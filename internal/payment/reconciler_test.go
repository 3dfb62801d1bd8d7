package payment_test

import (
	"context"
	"net/url"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/siddeeqzul/calculatorzakakt/internal"
	paymentmodel "github.com/siddeeqzul/calculatorzakakt/internal/core/datamodel/payment"
	"github.com/siddeeqzul/calculatorzakakt/internal/core/events"
	"github.com/siddeeqzul/calculatorzakakt/internal/gateway"
	paymentPkg "github.com/siddeeqzul/calculatorzakakt/internal/payment"
)

func returnURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	Expect(err).ToNot(HaveOccurred())
	return u
}

var _ = Describe("Reconciler", func() {
	var (
		gw         *fakeGateway
		history    *memHistory
		reconciler *paymentPkg.Reconciler
	)

	BeforeEach(func() {
		gw = &fakeGateway{}
		history = &memHistory{}
		log := testLogger()
		reconciler = paymentPkg.NewReconciler(gw, history, events.NewEventBus(log), 5*time.Second, log)
	})

	Context("with no return markers", func() {
		It("does nothing", func() {
			outcome, err := reconciler.Reconcile(context.Background(), returnURL("http://localhost/donate?lang=ms"))

			Expect(err).ToNot(HaveOccurred())
			Expect(outcome.Kind).To(Equal(paymentPkg.ReconcileNone))
			Expect(outcome.CleanURL).To(Equal("http://localhost/donate?lang=ms"))
			Expect(gw.statusLookups).To(BeEmpty())
			Expect(history.records).To(BeEmpty())
		})
	})

	Context("with a completed marker but no payment id", func() {
		It("ignores the malformed return", func() {
			outcome, err := reconciler.Reconcile(context.Background(),
				returnURL("http://localhost/donate?payment_status=completed"))

			Expect(err).ToNot(HaveOccurred())
			Expect(outcome.Kind).To(Equal(paymentPkg.ReconcileNone))
			Expect(gw.statusLookups).To(BeEmpty())
			Expect(history.records).To(BeEmpty())
		})
	})

	Context("with a cancelled marker", func() {
		It("reports the cancellation and strips the markers", func() {
			outcome, err := reconciler.Reconcile(context.Background(),
				returnURL("http://localhost/donate?payment_status=cancelled&payment_id=pay_1&lang=ms"))

			Expect(err).ToNot(HaveOccurred())
			Expect(outcome.Kind).To(Equal(paymentPkg.ReconcileCancelled))
			Expect(outcome.Message).ToNot(BeEmpty())
			Expect(outcome.CleanURL).To(Equal("http://localhost/donate?lang=ms"))
			Expect(gw.statusLookups).To(BeEmpty())
			Expect(history.records).To(BeEmpty())
		})
	})

	Context("with a completed marker the gateway confirms", func() {
		BeforeEach(func() {
			gw.statusResult = &gateway.StatusPayload{
				ID:          "pay_1",
				ReferenceID: "zkt-42",
				Status:      "paid",
				Amount:      150.00,
				Currency:    paymentmodel.Currency,
				Method:      "card",
				PaidAt:      time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC),
			}
		})

		It("appends exactly one history record and strips the markers", func() {
			outcome, err := reconciler.Reconcile(context.Background(),
				returnURL("http://localhost/donate?payment_status=completed&payment_id=pay_1"))

			Expect(err).ToNot(HaveOccurred())
			Expect(outcome.Kind).To(Equal(paymentPkg.ReconcileSuccess))
			Expect(outcome.CleanURL).To(Equal("http://localhost/donate"))

			Expect(gw.statusLookups).To(Equal([]string{"pay_1"}))
			Expect(history.records).To(HaveLen(1))

			rec := history.records[0]
			Expect(rec.TransactionID).To(Equal("pay_1"))
			Expect(rec.ReferenceID).To(Equal("zkt-42"))
			Expect(rec.Amount).To(Equal(150.00))
			Expect(rec.Status).To(Equal(string(paymentmodel.StatusSuccess)))
			Expect(outcome.Record).To(Equal(rec))
		})

		It("keeps unrelated query parameters intact", func() {
			outcome, err := reconciler.Reconcile(context.Background(),
				returnURL("http://localhost/donate?lang=ms&payment_status=completed&payment_id=pay_1"))

			Expect(err).ToNot(HaveOccurred())
			Expect(outcome.CleanURL).To(Equal("http://localhost/donate?lang=ms"))
		})
	})

	Context("with a completed marker the gateway disputes", func() {
		BeforeEach(func() {
			gw.statusResult = &gateway.StatusPayload{
				ID:     "pay_2",
				Status: "pending",
			}
		})

		It("reports verification failure, persists nothing and keeps the markers", func() {
			raw := "http://localhost/donate?payment_status=completed&payment_id=pay_2"
			outcome, err := reconciler.Reconcile(context.Background(), returnURL(raw))

			Expect(err).ToNot(HaveOccurred())
			Expect(outcome.Kind).To(Equal(paymentPkg.ReconcileVerificationFailed))
			Expect(outcome.CleanURL).To(Equal(raw))
			Expect(history.records).To(BeEmpty())
		})
	})

	Context("when the status lookup fails", func() {
		It("propagates the error without persisting", func() {
			gw.statusErr = internal.ErrNetwork

			_, err := reconciler.Reconcile(context.Background(),
				returnURL("http://localhost/donate?payment_status=completed&payment_id=pay_3"))

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeNetworkError))
			Expect(history.records).To(BeEmpty())
		})
	})

	Describe("StripReturnParams", func() {
		It("removes only the return markers", func() {
			u := returnURL("http://localhost/donate?a=1&payment_status=completed&payment_id=x&b=2")
			Expect(paymentPkg.StripReturnParams(u)).To(Equal("http://localhost/donate?a=1&b=2"))
		})
	})
})
