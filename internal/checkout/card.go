package checkout

import (
	"regexp"
	"strings"

	"github.com/fjod/forgeline/internal/domain"
)

var (
	cardNumberPattern = regexp.MustCompile(`^\d{16}$`)
	expiryPattern     = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
	cvvPattern        = regexp.MustCompile(`^\d{3,4}$`)
)

// CardDetails are checked for shape only. They are never stored or logged.
type CardDetails struct {
	Number string
	Holder string
	Expiry string // MM/AA
	CVV    string
}

// Validate checks number, expiry and CVV independently and reports every
// failure.
func (c CardDetails) Validate() *ValidationError {
	var violations []Violation

	number := strings.Join(strings.Fields(c.Number), "")
	if !cardNumberPattern.MatchString(number) {
		violations = append(violations, Violation{Field: "card_number", Message: "El número de tarjeta debe tener 16 dígitos."})
	}
	if !expiryPattern.MatchString(strings.TrimSpace(c.Expiry)) {
		violations = append(violations, Violation{Field: "card_expiry", Message: "La fecha de vencimiento debe estar en formato MM/AA."})
	}
	if !cvvPattern.MatchString(strings.TrimSpace(c.CVV)) {
		violations = append(violations, Violation{Field: "card_cvv", Message: "El CVV debe tener 3 o 4 dígitos."})
	}

	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{Kinds: []error{domain.ErrInvalidCardShape}, Violations: violations}
}

func (c CardDetails) String() string {
	return "CardDetails{redacted}"
}
