package chat

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultReply is sent when no keyword matches.
const DefaultReply = "Gracias por tu mensaje. Un representante te contactará pronto."

// Rule maps a keyword to a canned reply.
type Rule struct {
	Keyword string
	Reply   string
}

// DefaultRules is the scripted assistant of the storefront. Order matters:
// the first keyword found in the message wins.
var DefaultRules = []Rule{
	{"hola", "¡Hola! ¿En qué puedo ayudarte hoy?"},
	{"precio", "Nuestros precios son muy competitivos. ¿Qué producto te interesa?"},
	{"entrega", "Ofrecemos entrega en 24 horas para productos en stock."},
	{"garantia", "Todos nuestros productos tienen garantía oficial del fabricante."},
	{"contacto", "Puedes contactarnos al +504 9583-4797 o por WhatsApp."},
	{"horario", "Estamos abiertos de lunes a sábado de 8:00 AM a 6:00 PM."},
	{"ubicacion", "Estamos ubicados en Peña Blanca, barrio al centro, calle principal, Cortés, Honduras."},
}

type Bot struct {
	rules    []Rule
	fallback string
}

func NewBot(rules []Rule, fallback string) *Bot {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	if fallback == "" {
		fallback = DefaultReply
	}
	normalized := make([]Rule, len(rules))
	for i, r := range rules {
		normalized[i] = Rule{Keyword: fold(r.Keyword), Reply: r.Reply}
	}
	return &Bot{rules: normalized, fallback: fallback}
}

// Reply picks the answer for message. Matching ignores case and accents,
// so "garantía" finds the "garantia" rule.
func (b *Bot) Reply(message string) string {
	text := fold(message)
	for _, r := range b.rules {
		if strings.Contains(text, r.Keyword) {
			return r.Reply
		}
	}
	return b.fallback
}

func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}
