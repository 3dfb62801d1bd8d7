package payment

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi"

	errors "github.com/siddeeqzul/calculatorzakakt/internal"
	paymentmodel "github.com/siddeeqzul/calculatorzakakt/internal/core/datamodel/payment"
	"github.com/siddeeqzul/calculatorzakakt/internal/gateway"
	"github.com/siddeeqzul/calculatorzakakt/internal/transport"
)

type ServiceAPI interface {
	SubmitDonation(ctx context.Context, req *DonationRequest) (*SubmitOutcome, error)
	GetStatus(ctx context.Context, paymentID string) (*gateway.StatusPayload, error)
	History(ctx context.Context) ([]*paymentmodel.HistoryRecord, error)
}

type ReconcilerAPI interface {
	Reconcile(ctx context.Context, loc *url.URL) (*ReconcileOutcome, error)
}

type Handler struct {
	transport.BaseHandler
	Service    ServiceAPI
	Reconciler ReconcilerAPI
	Logger     *slog.Logger
}

func NewHandler(service ServiceAPI, reconciler ReconcilerAPI, logger *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.BaseHandler{Logger: logger},
		Service:     service,
		Reconciler:  reconciler,
		Logger:      logger,
	}
}

// SubmitDonation handles POST /api/v1/payments
func (h *Handler) SubmitDonation(w http.ResponseWriter, r *http.Request) {
	var req DonationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("SubmitDonation: failed to parse request body", "error", err)
		h.HandleError(w, errors.NewValidationError("invalid request body", errors.ErrCodeValidationFailed))
		return
	}

	outcome, err := h.Service.SubmitDonation(r.Context(), &req)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	resp := DonationResponse{
		ReferenceID: outcome.Intent.ReferenceID,
		Amount:      outcome.Intent.Amount,
		Method:      string(outcome.Intent.Method),
	}

	if outcome.RedirectURL != "" {
		resp.Status = string(paymentmodel.StatusPending)
		resp.CheckoutURL = outcome.RedirectURL
		h.WriteJSON(w, http.StatusAccepted, resp)
		return
	}

	resp.Status = string(outcome.Result.Status)
	resp.TransactionID = outcome.Result.TransactionID
	if outcome.Result.Status == paymentmodel.StatusFailed {
		resp.Message = outcome.Result.FailureReason
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

// HandleReturn handles GET /api/v1/payments/return, the gateway's
// redirect-return target. Terminal outcomes answer with a redirect to the
// same location with the markers stripped, so a refresh cannot re-trigger
// reconciliation.
func (h *Handler) HandleReturn(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.Reconciler.Reconcile(r.Context(), r.URL)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	switch outcome.Kind {
	case ReconcileSuccess, ReconcileCancelled:
		http.Redirect(w, r, outcome.CleanURL, http.StatusFound)
	case ReconcileVerificationFailed:
		h.HandleError(w, errors.ErrVerificationFailed)
	default:
		h.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// GetStatus handles GET /api/v1/payments/{id}
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	paymentID := chi.URLParam(r, "id")
	if paymentID == "" {
		h.HandleError(w, errors.NewValidationError("payment id is required", errors.ErrCodeValidationFailed))
		return
	}

	payload, err := h.Service.GetStatus(r.Context(), paymentID)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, payload)
}

// History handles GET /api/v1/payments/history
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	records, err := h.Service.History(r.Context())
	if err != nil {
		h.HandleError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, HistoryResponse{Records: records, Total: len(records)})
}
