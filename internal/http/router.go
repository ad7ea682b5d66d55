package http

import (
	"net/http"
	"time"

	"github.com/fjod/forgeline/internal/archive"
	"github.com/fjod/forgeline/internal/catalog"
	"github.com/fjod/forgeline/internal/relay"
	"github.com/fjod/forgeline/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type RouterConfig struct {
	Catalog        catalog.Provider
	Sessions       *session.Manager
	Relay          relay.Sender
	RelayTo        string
	Archive        *archive.Store
	RequestTimeout time.Duration
	Log            *zap.Logger
}

// NewRouter wires every storefront route. Session scoped routes resolve the
// caller's session first.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	catalogHandler := NewCatalogHandler(cfg.Catalog, cfg.RequestTimeout)
	cartHandler := NewCartHandler(cfg.RequestTimeout)
	checkoutHandler := NewCheckoutHandler(cfg.RequestTimeout)
	sessionHandler := NewSessionHandler()
	contactHandler := NewContactHandler(cfg.Relay, cfg.RelayTo, cfg.RequestTimeout)
	uploadHandler := NewUploadHandler(cfg.Archive, cfg.RequestTimeout)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware(cfg.Log))
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Uploaded invoices
	r.Handle("/invoices/*", uploadHandler.Documents())

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", catalogHandler.List)
		r.Get("/products/{id}", catalogHandler.Get)
		r.Get("/categories", catalogHandler.Categories)
		r.Post("/contact", contactHandler.Send)
		r.Post("/invoices/upload", uploadHandler.Upload)

		r.Group(func(r chi.Router) {
			r.Use(SessionMiddleware(cfg.Sessions))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Delete("/", cartHandler.ClearCart)
				r.Post("/items", cartHandler.AddItem)
				r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
				r.Delete("/items/{product_id}", cartHandler.RemoveItem)
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Get("/", checkoutHandler.Get)
				r.Post("/open", checkoutHandler.Open)
				r.Post("/close", checkoutHandler.Close)
				r.Post("/invoice", checkoutHandler.GenerateInvoice)
				r.Post("/back", checkoutHandler.Back)
				r.Post("/payment-method", checkoutHandler.ChoosePayment)
				r.Post("/online-payment", checkoutHandler.SubmitOnlinePayment)
				r.Post("/start", checkoutHandler.Start)
				r.Post("/customer", checkoutHandler.SubmitCustomerInfo)
				r.Post("/finish", checkoutHandler.Finish)
			})

			r.Get("/notices", sessionHandler.Notices)
			r.Get("/chat", sessionHandler.Chat)
			r.Post("/chat/messages", sessionHandler.SendChat)
		})
	})

	return r
}
