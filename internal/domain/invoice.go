package domain

import (
	"time"

	"github.com/fjod/forgeline/internal/pricing"
	"github.com/shopspring/decimal"
)

// InvoiceRecord is generated fresh for every checkout; it is only mailed and
// rendered, never stored.
type InvoiceRecord struct {
	Number          string
	IssuedAt        time.Time
	Lines           []CartLine
	Subtotal        decimal.Decimal
	SurchargeRate   decimal.Decimal
	SurchargeAmount decimal.Decimal
	Total           decimal.Decimal
	Customer        *CustomerInfo
	Method          PaymentMethod
}

// NewInvoiceRecord snapshots cart and applies the fixed surcharge.
func NewInvoiceRecord(number string, issuedAt time.Time, cart Cart, customer *CustomerInfo, method PaymentMethod) InvoiceRecord {
	snapshot := NewCart(cart.Lines)
	subtotal := snapshot.Total

	var cust *CustomerInfo
	if customer != nil {
		c := *customer
		cust = &c
	}

	return InvoiceRecord{
		Number:          number,
		IssuedAt:        issuedAt,
		Lines:           snapshot.Lines,
		Subtotal:        subtotal,
		SurchargeRate:   pricing.SurchargeRate,
		SurchargeAmount: pricing.Surcharge(subtotal),
		Total:           pricing.WithSurcharge(subtotal),
		Customer:        cust,
		Method:          method,
	}
}
