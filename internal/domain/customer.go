package domain

import (
	"strings"
	"unicode/utf8"
)

const (
	minCustomerNameLen = 2
	minAddressLen      = 5
)

// CustomerInfo is collected once per checkout and never persisted.
type CustomerInfo struct {
	Name    string
	TaxID   string // RTN
	Address string
}

// NewCustomerInfo trims and validates the billing fields. Every violated
// rule is reported.
func NewCustomerInfo(name, taxID, address string) (CustomerInfo, error) {
	c := CustomerInfo{
		Name:    strings.TrimSpace(name),
		TaxID:   strings.TrimSpace(taxID),
		Address: strings.TrimSpace(address),
	}
	if verr := c.Validate(); verr != nil {
		return CustomerInfo{}, verr
	}
	return c, nil
}

// Validate returns nil when all fields pass.
func (c CustomerInfo) Validate() *ValidationError {
	var violations []Violation
	if utf8.RuneCountInString(strings.TrimSpace(c.Name)) < minCustomerNameLen {
		violations = append(violations, Violation{Field: "name", Message: "El nombre debe tener al menos 2 caracteres."})
	}
	if strings.TrimSpace(c.TaxID) == "" {
		violations = append(violations, Violation{Field: "tax_id", Message: "El RTN es requerido."})
	}
	if utf8.RuneCountInString(strings.TrimSpace(c.Address)) < minAddressLen {
		violations = append(violations, Violation{Field: "address", Message: "La dirección debe tener al menos 5 caracteres."})
	}
	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{Kinds: []error{ErrInvalidCustomerInfo}, Violations: violations}
}
