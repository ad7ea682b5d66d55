package invoice

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"

	"github.com/fjod/forgeline/internal/domain"
	"github.com/fjod/forgeline/internal/pricing"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var funcs = map[string]any{
	"money":   pricing.Format,
	"date":    func(t time.Time) string { return t.Format("2/1/2006") },
	"percent": func(rate decimal.Decimal) string { return rate.Shift(2).String() + "%" },
	"method":  methodLabel,
	"closing": closingLine,
}

// document is what both templates render.
type document struct {
	domain.InvoiceRecord
	Company Company
}

type renderer struct {
	mail *texttemplate.Template
	page *htmltemplate.Template
}

func newRenderer() (*renderer, error) {
	mail, err := texttemplate.New("mail.txt.tmpl").Funcs(funcs).ParseFS(templateFS, "templates/mail.txt.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse mail template: %w", err)
	}
	page, err := htmltemplate.New("invoice.html.tmpl").Funcs(funcs).ParseFS(templateFS, "templates/invoice.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse invoice template: %w", err)
	}
	return &renderer{mail: mail, page: page}, nil
}

func (r *renderer) body(d document) (string, error) {
	var buf bytes.Buffer
	if err := r.mail.Execute(&buf, d); err != nil {
		return "", fmt.Errorf("render mail body: %w", err)
	}
	return buf.String(), nil
}

func (r *renderer) html(d document) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.page.Execute(&buf, d); err != nil {
		return nil, fmt.Errorf("render invoice document: %w", err)
	}
	return buf.Bytes(), nil
}

func methodLabel(m domain.PaymentMethod) string {
	switch m {
	case domain.PayOnDelivery:
		return "PAGO AL ENTREGAR"
	case domain.PayOnline:
		return "PAGO EN LÍNEA"
	default:
		return "PAGO"
	}
}

func closingLine(m domain.PaymentMethod) string {
	if m == domain.PayOnline {
		return "Su pago en línea ha sido recibido y su pedido está siendo procesado."
	}
	return "Su pedido será procesado para pago al momento de la entrega."
}
