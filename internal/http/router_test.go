package http

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fjod/forgeline/internal/archive"
	"github.com/fjod/forgeline/internal/catalog"
	"github.com/fjod/forgeline/internal/domain"
	"github.com/fjod/forgeline/internal/invoice"
	"github.com/fjod/forgeline/internal/relay"
	"github.com/fjod/forgeline/internal/session"
	"github.com/fjod/forgeline/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSession = "test-session-0001"

type fakeRelay struct {
	mu   sync.Mutex
	msgs []relay.Message
	err  error
}

func (f *fakeRelay) Send(_ context.Context, msg relay.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msg)
	return nil
}

func (f *fakeRelay) fail(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *fakeRelay) sent() []relay.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]relay.Message(nil), f.msgs...)
}

type testServer struct {
	handler    http.Handler
	relay      *fakeRelay
	archiveDir string
}

func setupServer(t *testing.T) *testServer {
	t.Helper()

	mem := storage.NewMemoryStore(time.Hour)
	t.Cleanup(func() { mem.Close() })

	sender := &fakeRelay{}
	emitter, err := invoice.NewEmitter(sender, invoice.NewNumberer(), invoice.Config{To: "ventas@forgeline.test"})
	require.NoError(t, err)

	sessions := session.NewManager(session.Deps{
		Catalog: catalog.Default(),
		Storage: mem,
		Emitter: emitter,
		Log:     zap.NewNop(),
	}, time.Hour)
	t.Cleanup(sessions.Close)

	dir := t.TempDir()
	store, err := archive.NewStore(dir, "http://localhost:8080/invoices")
	require.NoError(t, err)

	return &testServer{
		handler: NewRouter(RouterConfig{
			Catalog:        catalog.Default(),
			Sessions:       sessions,
			Relay:          sender,
			RelayTo:        "contacto@forgeline.test",
			Archive:        store,
			RequestTimeout: 5 * time.Second,
		}),
		relay:      sender,
		archiveDir: dir,
	}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SessionHeader, testSession)

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out), rec.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	srv := setupServer(t)

	rec := srv.do(t, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestListProducts(t *testing.T) {
	srv := setupServer(t)

	rec := srv.do(t, http.MethodGet, "/api/v1/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[ProductsResponse](t, rec)
	assert.Len(t, resp.Products, len(catalog.Seed()))
	assert.Equal(t, "Martillo Profesional", resp.Products[0].Name)
	assert.Equal(t, "1500.00", resp.Products[0].Price)
	assert.Equal(t, "L.1500.00", resp.Products[0].PriceLabel)
	assert.True(t, resp.Products[0].InStock)
}

func TestListProducts_FilterAndSort(t *testing.T) {
	srv := setupServer(t)

	rec := srv.do(t, http.MethodGet, "/api/v1/products?category=Herramientas+El%C3%A9ctricas&sort=price-asc", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[ProductsResponse](t, rec)
	require.NotEmpty(t, resp.Products)
	for i, p := range resp.Products {
		assert.Equal(t, "Herramientas Eléctricas", p.Category)
		if i > 0 {
			prev := decimal.RequireFromString(resp.Products[i-1].Price)
			assert.True(t, prev.LessThanOrEqual(decimal.RequireFromString(p.Price)))
		}
	}
}

func TestListProducts_InvalidQuery(t *testing.T) {
	srv := setupServer(t)

	rec := srv.do(t, http.MethodGet, "/api/v1/products?price=cheap", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_query", decode[ErrorResponse](t, rec).Code)

	rec = srv.do(t, http.MethodGet, "/api/v1/products?sort=random", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListProducts_SearchWithoutResultsSuggests(t *testing.T) {
	srv := setupServer(t)

	rec := srv.do(t, http.MethodGet, "/api/v1/products?q=xyzzy", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[ProductsResponse](t, rec)
	assert.Empty(t, resp.Products)
	assert.Contains(t, resp.Suggestions, "Martillo")
}

func TestGetProduct(t *testing.T) {
	srv := setupServer(t)

	rec := srv.do(t, http.MethodGet, "/api/v1/products/2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Taladro Inalámbrico 20V", decode[ProductResponse](t, rec).Name)

	rec = srv.do(t, http.MethodGet, "/api/v1/products/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "product_not_found", decode[ErrorResponse](t, rec).Code)

	rec = srv.do(t, http.MethodGet, "/api/v1/products/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCategories(t *testing.T) {
	srv := setupServer(t)

	rec := srv.do(t, http.MethodGet, "/api/v1/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[map[string][]string](t, rec)
	assert.Equal(t, catalog.Categories(catalog.Seed()), resp["categories"])
}

func TestSession_IssuedWhenMissing(t *testing.T) {
	srv := setupServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	id := rec.Header().Get(SessionHeader)
	assert.True(t, session.ValidID(id))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookie, cookies[0].Name)
	assert.Equal(t, id, cookies[0].Value)
}

func TestSession_FromCookie(t *testing.T) {
	srv := setupServer(t)

	require.Equal(t, http.StatusCreated, srv.do(t, http.MethodPost, "/api/v1/cart/items",
		AddItemRequestDTO{ProductID: 1}).Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: testSession})
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[session.Snapshot](t, rec).MiniCart.Count)
}

func TestSession_InvalidID(t *testing.T) {
	srv := setupServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set(SessionHeader, "../../etc")
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_session", decode[ErrorResponse](t, rec).Code)
}

func TestCart_Lifecycle(t *testing.T) {
	srv := setupServer(t)

	rec := srv.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: 1, Quantity: 2})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, testSession, rec.Header().Get(SessionHeader))
	snap := decode[session.Snapshot](t, rec)
	assert.Equal(t, 2, snap.MiniCart.Count)
	assert.Equal(t, "L.3000.00", snap.MiniCart.Total)

	rec = srv.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: 2})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "L.11500.00", decode[session.Snapshot](t, rec).MiniCart.Total)

	rec = srv.do(t, http.MethodPut, "/api/v1/cart/items/1", UpdateQuantityRequestDTO{Quantity: 5})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 6, decode[session.Snapshot](t, rec).MiniCart.Count)

	rec = srv.do(t, http.MethodDelete, "/api/v1/cart/items/2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	snap = decode[session.Snapshot](t, rec)
	require.Len(t, snap.MiniCart.Lines, 1)
	assert.Equal(t, "L.7500.00", snap.MiniCart.Total)

	rec = srv.do(t, http.MethodPut, "/api/v1/cart/items/1", UpdateQuantityRequestDTO{Quantity: 0})
	require.Equal(t, http.StatusOK, rec.Code)
	snap = decode[session.Snapshot](t, rec)
	assert.True(t, snap.MiniCart.Empty)
	assert.Equal(t, "Tu carrito está vacío", snap.MiniCart.Message)
}

func TestCart_Clear(t *testing.T) {
	srv := setupServer(t)

	srv.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: 6, Quantity: 3})

	rec := srv.do(t, http.MethodDelete, "/api/v1/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[session.Snapshot](t, rec).MiniCart.Empty)

	rec = srv.do(t, http.MethodGet, "/api/v1/notices", nil)
	notices := decode[NoticesResponse](t, rec).Notices
	require.Len(t, notices, 2)
	assert.Equal(t, "Pintura Interior (Galón) agregado al carrito", notices[0].Message)
	assert.Equal(t, "Carrito limpiado", notices[1].Message)
}

func TestCart_BadRequests(t *testing.T) {
	srv := setupServer(t)

	rec := srv.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: 999})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: 1, Quantity: 100})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_quantity", decode[ErrorResponse](t, rec).Code)

	rec = srv.do(t, http.MethodPut, "/api/v1/cart/items/x", UpdateQuantityRequestDTO{Quantity: 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", bytes.NewBufferString("{"))
	req.Header.Set(SessionHeader, testSession)
	w := httptest.NewRecorder()
	srv.handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_request", decode[ErrorResponse](t, w).Code)
}

func TestCheckout_PayOnDelivery(t *testing.T) {
	srv := setupServer(t)

	srv.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: 1, Quantity: 2})
	srv.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: 2, Quantity: 1})

	rec := srv.do(t, http.MethodPost, "/api/v1/checkout/open", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[CheckoutResponseDTO](t, rec)
	assert.Equal(t, domain.StateReviewingCart, resp.State)
	require.NotNil(t, resp.Modal)
	assert.Len(t, resp.Modal.Lines, 2)

	rec = srv.do(t, http.MethodPost, "/api/v1/checkout/invoice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.StateChoosingPaymentMethod, decode[CheckoutResponseDTO](t, rec).State)

	rec = srv.do(t, http.MethodPost, "/api/v1/checkout/payment-method", PaymentMethodRequestDTO{Method: "on-delivery"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp = decode[CheckoutResponseDTO](t, rec)
	assert.Equal(t, domain.StateCompleted, resp.State)
	assert.True(t, resp.MiniCart.Empty)
	require.NotNil(t, resp.Receipt)
	assert.Equal(t, "L.11500.00", resp.Receipt.Subtotal)
	assert.Equal(t, "L.1725.00", resp.Receipt.Surcharge)
	assert.Equal(t, "L.13225.00", resp.Receipt.Total)
	assert.Equal(t, resp.Receipt.Number, resp.Invoice)

	sent := srv.relay.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "ventas@forgeline.test", sent[0].To)
	assert.Equal(t, invoice.SubjectPrefix+resp.Receipt.Number, sent[0].Subject)

	rec = srv.do(t, http.MethodPost, "/api/v1/checkout/finish", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode[CheckoutResponseDTO](t, rec)
	assert.Equal(t, domain.StateBrowsing, resp.State)
	assert.Nil(t, resp.Receipt)
}

func TestCheckout_RelayFailureKeepsCart(t *testing.T) {
	srv := setupServer(t)
	srv.relay.fail(errors.New("smtp down"))

	srv.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: 1})
	srv.do(t, http.MethodPost, "/api/v1/checkout/open", nil)
	srv.do(t, http.MethodPost, "/api/v1/checkout/invoice", nil)

	rec := srv.do(t, http.MethodPost, "/api/v1/checkout/payment-method", PaymentMethodRequestDTO{Method: "on-delivery"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "relay_failure", decode[ErrorResponse](t, rec).Code)

	rec = srv.do(t, http.MethodGet, "/api/v1/checkout", nil)
	resp := decode[CheckoutResponseDTO](t, rec)
	assert.Equal(t, domain.StateChoosingPaymentMethod, resp.State)
	assert.Equal(t, 1, resp.MiniCart.Count)
}

func TestCheckout_EmptyCartAndIllegalMoves(t *testing.T) {
	srv := setupServer(t)

	rec := srv.do(t, http.MethodPost, "/api/v1/checkout/finish", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "illegal_transition", decode[ErrorResponse](t, rec).Code)

	require.Equal(t, http.StatusOK, srv.do(t, http.MethodPost, "/api/v1/checkout/open", nil).Code)

	rec = srv.do(t, http.MethodPost, "/api/v1/checkout/invoice", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "empty_cart", decode[ErrorResponse](t, rec).Code)

	rec = srv.do(t, http.MethodGet, "/api/v1/checkout", nil)
	assert.Equal(t, domain.StateReviewingCart, decode[CheckoutResponseDTO](t, rec).State)
}

func TestCheckout_OnlinePaymentValidation(t *testing.T) {
	srv := setupServer(t)

	srv.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: 8})
	srv.do(t, http.MethodPost, "/api/v1/checkout/open", nil)
	srv.do(t, http.MethodPost, "/api/v1/checkout/invoice", nil)

	rec := srv.do(t, http.MethodPost, "/api/v1/checkout/payment-method", PaymentMethodRequestDTO{Method: "bitcoin"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/v1/checkout/payment-method", PaymentMethodRequestDTO{Method: "online"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.StateEnteringOnlinePayment, decode[CheckoutResponseDTO](t, rec).State)

	rec = srv.do(t, http.MethodPost, "/api/v1/checkout/online-payment", CardDTO{Number: "123", Expiry: "13/25", CVV: "12"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	errResp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "validation_failed", errResp.Code)
	assert.Len(t, errResp.Violations, 3)
	assert.Empty(t, srv.relay.sent())

	rec = srv.do(t, http.MethodPost, "/api/v1/checkout/online-payment",
		CardDTO{Number: "4111 1111 1111 1111", Holder: "Ana", Expiry: "12/25", CVV: "123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, domain.StateCompleted, decode[CheckoutResponseDTO](t, rec).State)
	assert.Len(t, srv.relay.sent(), 1)
}

func TestCheckout_CustomerInfo(t *testing.T) {
	srv := setupServer(t)

	srv.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: 1})

	rec := srv.do(t, http.MethodPost, "/api/v1/checkout/start", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.StateEnteringCustomerInfo, decode[CheckoutResponseDTO](t, rec).State)

	rec = srv.do(t, http.MethodPost, "/api/v1/checkout/customer", CustomerRequestDTO{Name: "A"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	fields := map[string]bool{}
	for _, v := range decode[ErrorResponse](t, rec).Violations {
		fields[v.Field] = true
	}
	assert.True(t, fields["name"])
	assert.True(t, fields["card_number"])

	rec = srv.do(t, http.MethodPost, "/api/v1/checkout/customer", CustomerRequestDTO{
		Name:    "Juan Pérez",
		TaxID:   "08011990123456",
		Address: "Col. Palmira, Tegucigalpa",
		CardDTO: CardDTO{Number: "4111111111111111", Expiry: "12/25", CVV: "123"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[CheckoutResponseDTO](t, rec)
	assert.Equal(t, domain.StateCompleted, resp.State)
	require.NotNil(t, resp.Receipt)
	assert.Contains(t, resp.Receipt.Body, "Juan Pérez")
}

func TestChat(t *testing.T) {
	srv := setupServer(t)

	rec := srv.do(t, http.MethodPost, "/api/v1/chat/messages", ChatRequestDTO{Text: "  "})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/v1/chat/messages", ChatRequestDTO{Text: "hola"})
	require.Equal(t, http.StatusAccepted, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/v1/chat", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	msgs := decode[ChatResponse](t, rec).Messages
	require.GreaterOrEqual(t, len(msgs), 2)
	assert.Equal(t, "bot", string(msgs[0].From))
	assert.Equal(t, "hola", msgs[1].Text)
}

func TestContact(t *testing.T) {
	srv := setupServer(t)

	rec := srv.do(t, http.MethodPost, "/api/v1/contact", ContactRequestDTO{Name: "A", Email: "bad", Message: "corto"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Len(t, decode[ErrorResponse](t, rec).Violations, 3)
	assert.Empty(t, srv.relay.sent())

	rec = srv.do(t, http.MethodPost, "/api/v1/contact", ContactRequestDTO{
		Name:    "María López",
		Email:   "maria@example.com",
		Type:    "cotización",
		Message: "Necesito precio por mayor de cemento",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[ContactResponse](t, rec).Success)

	sent := srv.relay.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "contacto@forgeline.test", sent[0].To)
	assert.Equal(t, "maria@example.com", sent[0].ReplyTo)
	assert.Equal(t, "Consulta de cotización de María López", sent[0].Subject)
}

func TestContact_RelayDown(t *testing.T) {
	srv := setupServer(t)
	srv.relay.fail(relay.ErrUnavailable)

	rec := srv.do(t, http.MethodPost, "/api/v1/contact", ContactRequestDTO{
		Name:    "María López",
		Email:   "maria@example.com",
		Message: "Necesito precio por mayor de cemento",
	})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestUpload(t *testing.T) {
	srv := setupServer(t)
	pdf := []byte("%PDF-1.4 factura")

	rec := srv.do(t, http.MethodPost, "/api/v1/invoices/upload", UploadRequestDTO{
		Document: "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(pdf),
		Filename: "factura_FACT-1.pdf",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decode[UploadResponse](t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, "http://localhost:8080/invoices/factura_FACT-1.pdf", resp.URL)

	got, err := os.ReadFile(filepath.Join(srv.archiveDir, "factura_FACT-1.pdf"))
	require.NoError(t, err)
	assert.Equal(t, pdf, got)

	rec = srv.do(t, http.MethodPost, "/api/v1/invoices/upload", UploadRequestDTO{Document: "!!!"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_document", decode[ErrorResponse](t, rec).Code)
}

func TestUpload_ServedBack(t *testing.T) {
	srv := setupServer(t)
	pdf := []byte("%PDF-1.4 copia")

	rec := srv.do(t, http.MethodPost, "/api/v1/invoices/upload", UploadRequestDTO{
		Document: base64.StdEncoding.EncodeToString(pdf),
		Filename: "copia.pdf",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = srv.do(t, http.MethodGet, "/invoices/copia.pdf", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, pdf, rec.Body.Bytes())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestUpload_MarkupIsNeverServed(t *testing.T) {
	srv := setupServer(t)
	page := []byte("<html><script>alert(document.cookie)</script></html>")

	rec := srv.do(t, http.MethodPost, "/api/v1/invoices/upload", UploadRequestDTO{
		Document: base64.StdEncoding.EncodeToString(page),
		Filename: "x.html",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_document", decode[ErrorResponse](t, rec).Code)
	assert.NoFileExists(t, filepath.Join(srv.archiveDir, "x.html"))

	// a real pdf under an html name is stored and served as a pdf
	pdf := []byte("%PDF-1.4 <script>alert(1)</script>")
	rec = srv.do(t, http.MethodPost, "/api/v1/invoices/upload", UploadRequestDTO{
		Document: base64.StdEncoding.EncodeToString(pdf),
		Filename: "x.html",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "http://localhost:8080/invoices/x.pdf", decode[UploadResponse](t, rec).URL)
	assert.NoFileExists(t, filepath.Join(srv.archiveDir, "x.html"))

	rec = srv.do(t, http.MethodGet, "/invoices/x.pdf", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = srv.do(t, http.MethodGet, "/invoices/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpload_DoesNotReplaceExisting(t *testing.T) {
	srv := setupServer(t)
	original := []byte("%PDF-1.4 original")

	rec := srv.do(t, http.MethodPost, "/api/v1/invoices/upload", UploadRequestDTO{
		Document: base64.StdEncoding.EncodeToString(original),
		Filename: "factura_FACT-2.pdf",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/v1/invoices/upload", UploadRequestDTO{
		Document: base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 replacement")),
		Filename: "factura_FACT-2.pdf",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEqual(t, "http://localhost:8080/invoices/factura_FACT-2.pdf", decode[UploadResponse](t, rec).URL)

	rec = srv.do(t, http.MethodGet, "/invoices/factura_FACT-2.pdf", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, original, rec.Body.Bytes())
}
