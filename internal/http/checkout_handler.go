package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/forgeline/internal/checkout"
	"github.com/fjod/forgeline/internal/domain"
	"github.com/fjod/forgeline/internal/invoice"
	"github.com/fjod/forgeline/internal/pricing"
	"github.com/fjod/forgeline/internal/session"
)

type CheckoutHandler struct {
	timeout time.Duration
}

func NewCheckoutHandler(timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{timeout: timeout}
}

type PaymentMethodRequestDTO struct {
	Method string `json:"method"`
}

type CardDTO struct {
	Number string `json:"card_number"`
	Holder string `json:"card_holder"`
	Expiry string `json:"card_expiry"`
	CVV    string `json:"card_cvv"`
}

func (c CardDTO) details() checkout.CardDetails {
	return checkout.CardDetails{Number: c.Number, Holder: c.Holder, Expiry: c.Expiry, CVV: c.CVV}
}

type CustomerRequestDTO struct {
	Name    string `json:"name"`
	TaxID   string `json:"rtn"`
	Address string `json:"address"`
	CardDTO
}

type InvoiceDTO struct {
	Number    string `json:"number"`
	IssuedAt  string `json:"issued_at"`
	Method    string `json:"method"`
	Subtotal  string `json:"subtotal"`
	Surcharge string `json:"surcharge"`
	Total     string `json:"total"`
	Body      string `json:"body"`
	Document  string `json:"document,omitempty"`
}

type CheckoutResponseDTO struct {
	session.Snapshot
	Receipt *InvoiceDTO `json:"receipt,omitempty"`
}

func toInvoiceDTO(r *invoice.Receipt) *InvoiceDTO {
	if r == nil {
		return nil
	}
	return &InvoiceDTO{
		Number:    r.Record.Number,
		IssuedAt:  r.Record.IssuedAt.Format(time.RFC3339),
		Method:    string(r.Record.Method),
		Subtotal:  pricing.Format(r.Record.Subtotal),
		Surcharge: pricing.Format(r.Record.SurchargeAmount),
		Total:     pricing.Format(r.Record.Total),
		Body:      r.Body,
		Document:  string(r.Document),
	}
}

func respondCheckout(w http.ResponseWriter, sess *session.Session) {
	respondJSON(w, http.StatusOK, CheckoutResponseDTO{
		Snapshot: sess.Snapshot(),
		Receipt:  toInvoiceDTO(sess.Flow.Receipt()),
	})
}

// step runs one flow operation and answers with the resulting checkout view
func (h *CheckoutHandler) step(op func(ctx context.Context, f *checkout.Flow) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
		defer cancel()

		sess := sessionFromContext(r.Context())
		if err := op(ctx, sess.Flow); err != nil {
			handleError(w, r, err)
			return
		}
		respondCheckout(w, sess)
	}
}

// GET /api/v1/checkout
func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondCheckout(w, sessionFromContext(r.Context()))
}

// POST /api/v1/checkout/open
func (h *CheckoutHandler) Open(w http.ResponseWriter, r *http.Request) {
	h.step(func(ctx context.Context, f *checkout.Flow) error { return f.OpenCart(ctx) })(w, r)
}

// POST /api/v1/checkout/close
func (h *CheckoutHandler) Close(w http.ResponseWriter, r *http.Request) {
	h.step(func(ctx context.Context, f *checkout.Flow) error { return f.CloseCart(ctx) })(w, r)
}

// POST /api/v1/checkout/invoice
func (h *CheckoutHandler) GenerateInvoice(w http.ResponseWriter, r *http.Request) {
	h.step(func(ctx context.Context, f *checkout.Flow) error { return f.GenerateInvoice(ctx) })(w, r)
}

// POST /api/v1/checkout/back
func (h *CheckoutHandler) Back(w http.ResponseWriter, r *http.Request) {
	h.step(func(ctx context.Context, f *checkout.Flow) error { return f.Back(ctx) })(w, r)
}

// POST /api/v1/checkout/start
func (h *CheckoutHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.step(func(ctx context.Context, f *checkout.Flow) error { return f.Checkout(ctx) })(w, r)
}

// POST /api/v1/checkout/finish
func (h *CheckoutHandler) Finish(w http.ResponseWriter, r *http.Request) {
	h.step(func(ctx context.Context, f *checkout.Flow) error { return f.Finish(ctx) })(w, r)
}

// POST /api/v1/checkout/payment-method
func (h *CheckoutHandler) ChoosePayment(w http.ResponseWriter, r *http.Request) {
	var req PaymentMethodRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	method := domain.PaymentMethod(req.Method)
	h.step(func(ctx context.Context, f *checkout.Flow) error { return f.ChoosePayment(ctx, method) })(w, r)
}

// POST /api/v1/checkout/online-payment
func (h *CheckoutHandler) SubmitOnlinePayment(w http.ResponseWriter, r *http.Request) {
	var req CardDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	h.step(func(ctx context.Context, f *checkout.Flow) error {
		return f.SubmitOnlinePayment(ctx, req.details())
	})(w, r)
}

// POST /api/v1/checkout/customer
func (h *CheckoutHandler) SubmitCustomerInfo(w http.ResponseWriter, r *http.Request) {
	var req CustomerRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	customer := domain.CustomerInfo{Name: req.Name, TaxID: req.TaxID, Address: req.Address}
	h.step(func(ctx context.Context, f *checkout.Flow) error {
		return f.SubmitCustomerInfo(ctx, customer, req.CardDTO.details())
	})(w, r)
}
