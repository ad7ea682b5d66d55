package invoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/forgeline/internal/domain"
	"github.com/fjod/forgeline/internal/relay"
	"github.com/fjod/forgeline/pkg/logger"
	"go.uber.org/zap"
)

var ErrRelayFailure = errors.New("invoice delivery failed")

// SubjectPrefix starts the subject of every invoice mail.
const SubjectPrefix = "Factura ForgeLine - #"

type Config struct {
	// To receives the invoice mail.
	To      string
	Company Company
}

// Receipt is the outcome of an acknowledged emission.
type Receipt struct {
	Record   domain.InvoiceRecord
	Body     string
	Document []byte
}

type Emitter struct {
	sender  relay.Sender
	numbers *Numberer
	cfg     Config
	render  *renderer
	now     func() time.Time
}

func NewEmitter(sender relay.Sender, numbers *Numberer, cfg Config) (*Emitter, error) {
	if sender == nil {
		return nil, errors.New("invoice emitter needs a sender")
	}
	if numbers == nil {
		numbers = NewNumberer()
	}
	if cfg.Company == (Company{}) {
		cfg.Company = DefaultCompany()
	}
	r, err := newRenderer()
	if err != nil {
		return nil, err
	}
	return &Emitter{
		sender:  sender,
		numbers: numbers,
		cfg:     cfg,
		render:  r,
		now:     time.Now,
	}, nil
}

// Emit builds the invoice for cart, mails it and waits for the relay to
// acknowledge. Nothing is returned but an error unless delivery succeeded.
func (e *Emitter) Emit(ctx context.Context, cart domain.Cart, customer *domain.CustomerInfo, method domain.PaymentMethod) (*Receipt, error) {
	if cart.IsEmpty() {
		return nil, domain.ErrEmptyCart
	}

	rec := domain.NewInvoiceRecord(e.numbers.Next(), e.now(), cart, customer, method)
	doc := document{InvoiceRecord: rec, Company: e.cfg.Company}

	body, err := e.render.body(doc)
	if err != nil {
		return nil, err
	}
	page, err := e.render.html(doc)
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx).With(zap.String("invoice", rec.Number))

	err = e.sender.Send(ctx, relay.Message{
		To:      e.cfg.To,
		Subject: SubjectPrefix + rec.Number,
		Body:    body,
	})
	if err != nil {
		log.Error("invoice emission failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrRelayFailure, err)
	}

	log.Info("invoice emitted",
		zap.String("method", string(method)),
		zap.String("total", rec.Total.StringFixed(2)))

	return &Receipt{Record: rec, Body: body, Document: page}, nil
}
