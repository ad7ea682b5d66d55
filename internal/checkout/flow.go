package checkout

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/fjod/forgeline/internal/domain"
	"github.com/fjod/forgeline/internal/events"
	"github.com/fjod/forgeline/internal/invoice"
	"github.com/fjod/forgeline/internal/notice"
	"github.com/fjod/forgeline/internal/relay"
	"go.uber.org/zap"
)

// CartStore is the part of the cart the flow reads and settles.
type CartStore interface {
	Snapshot() domain.Cart
	Settle(ctx context.Context, invoiced domain.Cart)
}

type Emitter interface {
	Emit(ctx context.Context, cart domain.Cart, customer *domain.CustomerInfo, method domain.PaymentMethod) (*invoice.Receipt, error)
}

type Notifier interface {
	Post(level notice.Level, msg string) notice.Notice
}

// Flow is the checkout state machine of one session. Operations that emit
// an invoice release the lock while the relay is contacted; until the relay
// answers the flow is pending and rejects every other operation.
type Flow struct {
	sessionID string
	cart      CartStore
	emitter   Emitter
	notices   Notifier
	events    events.Publisher
	log       *zap.Logger

	mu      sync.Mutex
	state   domain.CheckoutState
	pending bool
	receipt *invoice.Receipt
}

func NewFlow(sessionID string, cart CartStore, emitter Emitter, notices Notifier, publisher events.Publisher, log *zap.Logger) *Flow {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Flow{
		sessionID: sessionID,
		cart:      cart,
		emitter:   emitter,
		notices:   notices,
		events:    publisher,
		log:       log.With(zap.String("session_id", sessionID)),
		state:     domain.StateBrowsing,
	}
}

func (f *Flow) State() domain.CheckoutState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Pending reports whether an invoice is being sent right now.
func (f *Flow) Pending() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending
}

// Receipt is the invoice of the last completed checkout, kept until Finish.
func (f *Flow) Receipt() *invoice.Receipt {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.receipt
}

func (f *Flow) OpenCart(ctx context.Context) error {
	return f.move(ctx, "open cart", domain.StateReviewingCart, domain.StateBrowsing)
}

func (f *Flow) CloseCart(ctx context.Context) error {
	return f.move(ctx, "close cart", domain.StateBrowsing,
		domain.StateReviewingCart,
		domain.StateChoosingPaymentMethod,
		domain.StateEnteringOnlinePayment,
		domain.StateEnteringCustomerInfo,
	)
}

// GenerateInvoice leaves the cart review for the payment method choice.
func (f *Flow) GenerateInvoice(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.checkLocked("generate invoice", domain.StateReviewingCart); err != nil {
		return f.fail(err)
	}
	if f.cart.Snapshot().IsEmpty() {
		return f.fail(ErrEmptyCart)
	}
	return f.fail(f.transitionLocked(domain.StateChoosingPaymentMethod))
}

func (f *Flow) Back(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.checkLocked("back", domain.StateChoosingPaymentMethod, domain.StateEnteringOnlinePayment); err != nil {
		return f.fail(err)
	}
	to := domain.StateReviewingCart
	if f.state == domain.StateEnteringOnlinePayment {
		to = domain.StateChoosingPaymentMethod
	}
	return f.fail(f.transitionLocked(to))
}

// ChoosePayment either emits right away (on delivery) or asks for the card
// (online).
func (f *Flow) ChoosePayment(ctx context.Context, method domain.PaymentMethod) error {
	switch method {
	case domain.PayOnline:
		return f.move(ctx, "choose payment", domain.StateEnteringOnlinePayment, domain.StateChoosingPaymentMethod)
	case domain.PayOnDelivery:
		return f.emit(ctx, "choose payment", nil, method, domain.StateChoosingPaymentMethod)
	default:
		return f.fail(fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, method))
	}
}

func (f *Flow) SubmitOnlinePayment(ctx context.Context, card CardDetails) error {
	if err := f.precheck("submit online payment", domain.StateEnteringOnlinePayment); err != nil {
		return err
	}
	if verr := card.Validate(); verr != nil {
		return f.fail(verr)
	}
	return f.emit(ctx, "submit online payment", nil, domain.PayOnline, domain.StateEnteringOnlinePayment)
}

// Checkout opens the billing form, from the catalog or from the cart.
func (f *Flow) Checkout(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.checkLocked("checkout", domain.StateBrowsing, domain.StateReviewingCart); err != nil {
		return f.fail(err)
	}
	if f.cart.Snapshot().IsEmpty() {
		return f.fail(ErrEmptyCart)
	}
	return f.fail(f.transitionLocked(domain.StateEnteringCustomerInfo))
}

// SubmitCustomerInfo validates billing data and card together, reporting
// every violation, then emits an invoice addressed to the customer.
func (f *Flow) SubmitCustomerInfo(ctx context.Context, customer domain.CustomerInfo, card CardDetails) error {
	if err := f.precheck("submit customer info", domain.StateEnteringCustomerInfo); err != nil {
		return err
	}

	cust, err := domain.NewCustomerInfo(customer.Name, customer.TaxID, customer.Address)
	var custErr *ValidationError
	if err != nil && !errors.As(err, &custErr) {
		return f.fail(err)
	}
	if verr := domain.Merge(custErr, card.Validate()); verr != nil {
		return f.fail(verr)
	}
	return f.emit(ctx, "submit customer info", &cust, domain.PayOnline, domain.StateEnteringCustomerInfo)
}

// Finish dismisses the confirmation and returns to the catalog.
func (f *Flow) Finish(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.checkLocked("finish", domain.StateCompleted); err != nil {
		return f.fail(err)
	}
	if err := f.transitionLocked(domain.StateBrowsing); err != nil {
		return f.fail(err)
	}
	f.receipt = nil
	return nil
}

// Edit runs a cart edit unless an invoice is being sent, so the cart never
// changes between the snapshot that is invoiced and its settlement.
func (f *Flow) Edit(edit func() error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pending {
		return f.fail(ErrEmissionPending)
	}
	return edit()
}

func (f *Flow) move(_ context.Context, op string, to domain.CheckoutState, from ...domain.CheckoutState) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.checkLocked(op, from...); err != nil {
		return f.fail(err)
	}
	return f.fail(f.transitionLocked(to))
}

// precheck rejects an operation early, before any input is validated.
func (f *Flow) precheck(op string, from ...domain.CheckoutState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fail(f.checkLocked(op, from...))
}

func (f *Flow) emit(ctx context.Context, op string, customer *domain.CustomerInfo, method domain.PaymentMethod, from domain.CheckoutState) error {
	f.mu.Lock()
	if err := f.checkLocked(op, from); err != nil {
		f.mu.Unlock()
		return f.fail(err)
	}
	snapshot := f.cart.Snapshot()
	if snapshot.IsEmpty() {
		f.mu.Unlock()
		return f.fail(ErrEmptyCart)
	}
	f.pending = true
	f.mu.Unlock()

	receipt, err := f.emitter.Emit(ctx, snapshot, customer, method)

	f.mu.Lock()
	if err != nil {
		f.pending = false
		f.mu.Unlock()
		return f.fail(err)
	}
	if err := f.transitionLocked(domain.StateCompleted); err != nil {
		f.pending = false
		f.mu.Unlock()
		return f.fail(err)
	}
	f.receipt = receipt
	// settled before pending drops so no edit lands in between
	f.cart.Settle(ctx, snapshot)
	f.pending = false
	f.mu.Unlock()

	ev := events.NewCheckoutCompleted(f.sessionID, receipt.Record)
	if err := f.events.Publish(ctx, ev); err != nil {
		f.log.Error("failed to publish checkout completed", zap.String("invoice", receipt.Record.Number), zap.Error(err))
	}

	f.notices.Post(notice.Success, successMessage(customer, method))
	return nil
}

func (f *Flow) checkLocked(op string, from ...domain.CheckoutState) error {
	if f.pending {
		return ErrEmissionPending
	}
	if !slices.Contains(from, f.state) {
		return fmt.Errorf("%w: cannot %s while %s", ErrIllegalTransition, op, f.state)
	}
	return nil
}

func (f *Flow) transitionLocked(to domain.CheckoutState) error {
	if !f.state.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, f.state, to)
	}
	f.log.Debug("checkout state changed",
		zap.Stringer("from", f.state),
		zap.Stringer("to", to))
	f.state = to
	return nil
}

// fail posts the notices for err and returns it unchanged. A nil err
// passes through.
func (f *Flow) fail(err error) error {
	if err == nil {
		return nil
	}
	for _, msg := range noticeMessages(err) {
		f.notices.Post(notice.Error, msg)
	}
	return err
}

func noticeMessages(err error) []string {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		msgs := make([]string, 0, len(verr.Violations))
		for _, v := range verr.Violations {
			msgs = append(msgs, v.Message)
		}
		return msgs
	case errors.Is(err, ErrEmptyCart):
		return []string{"El carrito está vacío"}
	case errors.Is(err, relay.ErrUnavailable):
		return []string{"Error al enviar la factura. Verifica tu conexión."}
	case errors.Is(err, ErrRelayFailure):
		return []string{"Error al enviar la factura. Intenta de nuevo."}
	case errors.Is(err, ErrEmissionPending):
		return []string{"Su factura se está enviando, espere un momento."}
	case errors.Is(err, ErrInvalidPaymentMethod):
		return []string{"Seleccione un método de pago válido."}
	case errors.Is(err, ErrIllegalTransition):
		return []string{"Esta acción no está disponible en este momento."}
	default:
		return []string{"Ocurrió un error inesperado. Intenta de nuevo."}
	}
}

func successMessage(customer *domain.CustomerInfo, method domain.PaymentMethod) string {
	switch {
	case customer != nil:
		return "¡Compra realizada con éxito! Su factura está lista para imprimir."
	case method == domain.PayOnline:
		return "Pago en línea procesado con éxito. Factura enviada."
	default:
		return "Factura enviada exitosamente al correo."
	}
}
