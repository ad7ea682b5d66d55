package http

import (
	"net/http"

	"github.com/fjod/forgeline/internal/chat"
	"github.com/fjod/forgeline/internal/notice"
)

// SessionHandler serves the per-session side channels: notices and chat.
type SessionHandler struct{}

func NewSessionHandler() *SessionHandler {
	return &SessionHandler{}
}

type ChatRequestDTO struct {
	Text string `json:"text"`
}

type ChatResponse struct {
	Messages []chat.Message `json:"messages"`
}

type NoticesResponse struct {
	Notices []notice.Notice `json:"notices"`
}

// GET /api/v1/notices
func (h *SessionHandler) Notices(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	respondJSON(w, http.StatusOK, NoticesResponse{Notices: sess.Notices.Active()})
}

// GET /api/v1/chat
func (h *SessionHandler) Chat(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	respondJSON(w, http.StatusOK, ChatResponse{Messages: sess.Chat.Messages()})
}

// POST /api/v1/chat/messages
// The bot answers later; clients poll GET /chat for the reply.
func (h *SessionHandler) SendChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	sess := sessionFromContext(r.Context())
	msg, ok := sess.Chat.Send(req.Text)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	respondJSON(w, http.StatusAccepted, msg)
}
