package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/fjod/forgeline/internal/domain"
	"github.com/fjod/forgeline/internal/relay"
)

type ContactHandler struct {
	relay   relay.Sender
	to      string
	timeout time.Duration
}

func NewContactHandler(sender relay.Sender, to string, timeout time.Duration) *ContactHandler {
	return &ContactHandler{
		relay:   sender,
		to:      to,
		timeout: timeout,
	}
}

type ContactRequestDTO struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

type ContactResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// POST /api/v1/contact
func (h *ContactHandler) Send(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req ContactRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	form := domain.ContactForm{Name: req.Name, Email: req.Email, Type: req.Type, Message: req.Message}
	if verr := form.Validate(); verr != nil {
		handleError(w, r, verr)
		return
	}

	err := h.relay.Send(ctx, relay.Message{
		To:      h.to,
		Subject: form.Subject(),
		Body:    form.Body(),
		ReplyTo: strings.TrimSpace(form.Email),
	})
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, ContactResponse{
		Success: true,
		Message: "¡Mensaje enviado con éxito! Nos pondremos en contacto contigo pronto.",
	})
}
