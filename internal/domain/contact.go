package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var ErrInvalidContactForm = errors.New("invalid contact form")

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const minContactMessageLen = 10

// ContactForm is the "contáctanos" submission.
type ContactForm struct {
	Name    string
	Email   string
	Type    string // consulta, cotización, reclamo...
	Message string
}

func (f ContactForm) Validate() *ValidationError {
	var violations []Violation
	if utf8.RuneCountInString(strings.TrimSpace(f.Name)) < minCustomerNameLen {
		violations = append(violations, Violation{Field: "name", Message: "El nombre debe tener al menos 2 caracteres"})
	}
	if !emailPattern.MatchString(strings.TrimSpace(f.Email)) {
		violations = append(violations, Violation{Field: "email", Message: "Ingresa un email válido"})
	}
	if utf8.RuneCountInString(strings.TrimSpace(f.Message)) < minContactMessageLen {
		violations = append(violations, Violation{Field: "message", Message: "El mensaje debe tener al menos 10 caracteres"})
	}
	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{Kinds: []error{ErrInvalidContactForm}, Violations: violations}
}

// Subject is the mail subject line for the form.
func (f ContactForm) Subject() string {
	kind := strings.TrimSpace(f.Type)
	if kind == "" {
		kind = "general"
	}
	return fmt.Sprintf("Consulta de %s de %s", kind, strings.TrimSpace(f.Name))
}

// Body renders the plain text mail body.
func (f ContactForm) Body() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Nombre: %s\n", strings.TrimSpace(f.Name))
	fmt.Fprintf(&b, "Email: %s\n", strings.TrimSpace(f.Email))
	fmt.Fprintf(&b, "Tipo de Consulta: %s\n\n", strings.TrimSpace(f.Type))
	fmt.Fprintf(&b, "Mensaje:\n%s", strings.TrimSpace(f.Message))
	return b.String()
}
