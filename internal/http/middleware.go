package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/forgeline/internal/session"
	"github.com/fjod/forgeline/pkg/logger"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	SessionHeader = "X-Session-ID"
	SessionCookie = "forgeline_session"

	sessionCookieMaxAge = 30 * 24 * time.Hour
)

type sessionKey struct{}

// LoggerMiddleware attaches a request scoped logger carrying the chi
// request id.
func LoggerMiddleware(base *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := base.With(
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
			)
			next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context(), l)))
		})
	}
}

// SessionMiddleware resolves the browsing session from the X-Session-ID
// header or the session cookie, issuing a new id when neither is present.
// The id is echoed in both so clients without cookies can keep it.
func SessionMiddleware(sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(SessionHeader)
			if id == "" {
				if c, err := r.Cookie(SessionCookie); err == nil {
					id = c.Value
				}
			}
			if id == "" {
				id = uuid.NewString()
			}

			sess, err := sessions.Get(r.Context(), id)
			if err != nil {
				handleError(w, r, err)
				return
			}

			w.Header().Set(SessionHeader, sess.ID)
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    sess.ID,
				Path:     "/",
				MaxAge:   int(sessionCookieMaxAge.Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})

			ctx := context.WithValue(r.Context(), sessionKey{}, sess)
			ctx = logger.WithContext(ctx, logger.FromContext(ctx).With(zap.String("session_id", sess.ID)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionFromContext(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(sessionKey{}).(*session.Session)
	return sess
}
