package checkout

import (
	"errors"

	"github.com/fjod/forgeline/internal/domain"
	"github.com/fjod/forgeline/internal/invoice"
)

var (
	ErrEmptyCart            = domain.ErrEmptyCart
	ErrInvalidCardShape     = domain.ErrInvalidCardShape
	ErrInvalidCustomerInfo  = domain.ErrInvalidCustomerInfo
	ErrRelayFailure         = invoice.ErrRelayFailure
	ErrIllegalTransition    = errors.New("illegal transition of checkout state")
	ErrEmissionPending      = errors.New("invoice emission already in progress")
	ErrInvalidPaymentMethod = errors.New("unknown payment method")
)

type (
	ValidationError = domain.ValidationError
	Violation       = domain.Violation
)
