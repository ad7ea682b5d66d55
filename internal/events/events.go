package events

import (
	"context"
	"time"

	"github.com/fjod/forgeline/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TopicCheckoutCompleted = "checkout-completed"
	TypeCheckoutCompleted  = "checkout.completed"
)

type Item struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CheckoutCompleted is published once the relay has acknowledged an invoice.
type CheckoutCompleted struct {
	ID            string               `json:"id"`
	SessionID     string               `json:"session_id"`
	InvoiceNumber string               `json:"invoice_number"`
	Method        domain.PaymentMethod `json:"method"`
	Total         decimal.Decimal      `json:"total"`
	Items         []Item               `json:"items"`
	CompletedAt   time.Time            `json:"completed_at"`
}

func NewCheckoutCompleted(sessionID string, rec domain.InvoiceRecord) CheckoutCompleted {
	items := make([]Item, 0, len(rec.Lines))
	for _, l := range rec.Lines {
		items = append(items, Item{
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}
	return CheckoutCompleted{
		ID:            uuid.NewString(),
		SessionID:     sessionID,
		InvoiceNumber: rec.Number,
		Method:        rec.Method,
		Total:         rec.Total,
		Items:         items,
		CompletedAt:   rec.IssuedAt,
	}
}

type Publisher interface {
	Publish(ctx context.Context, ev CheckoutCompleted) error
}

// Nop drops every event. Used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, CheckoutCompleted) error { return nil }
