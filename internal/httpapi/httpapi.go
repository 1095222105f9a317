package httpapi

import (
	"bytes"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"lubriwash/backend/internal/domain"
	"lubriwash/backend/internal/pos"
	"lubriwash/backend/internal/service"
	"lubriwash/backend/internal/store"
)

type API struct {
	service       *service.Service
	auth          *AuthManager
	allowedOrigin string
	logger        zerolog.Logger
	loginLimiter  *attemptLimiter
	pinLimiter    *attemptLimiter
	csrfSecret    []byte
}

func New(svc *service.Service, auth *AuthManager, allowedOrigin string, logger zerolog.Logger) *API {
	csrfSecret := make([]byte, 32)
	if _, err := rand.Read(csrfSecret); err != nil {
		// a guessable CSRF secret is worse than not booting
		logger.Fatal().Err(err).Msg("csrf secret generation failed")
	}
	return &API{
		service:       svc,
		auth:          auth,
		allowedOrigin: allowedOrigin,
		logger:        logger,
		loginLimiter:  newAttemptLimiter(5, time.Minute),
		pinLimiter:    newAttemptLimiter(8, time.Minute),
		csrfSecret:    csrfSecret,
	}
}

// csrfTokenForHour computes an HMAC-SHA256 token for the given hour
// bucket (Unix time truncated to the hour), hex-encoded.
func (a *API) csrfTokenForHour(hourBucket int64) string {
	h := hmac.New(sha256.New, a.csrfSecret)
	fmt.Fprintf(h, "%d", hourBucket)
	return hex.EncodeToString(h.Sum(nil))
}

func (a *API) generateCSRFToken() string {
	bucket := time.Now().UTC().Truncate(time.Hour).Unix()
	return a.csrfTokenForHour(bucket)
}

// validateCSRFToken accepts the current or previous hour bucket, giving
// a 2-hour validity window.
func (a *API) validateCSRFToken(token string) bool {
	if token == "" {
		return false
	}
	currentBucket := time.Now().UTC().Truncate(time.Hour).Unix()
	prevBucket := currentBucket - 3600

	return hmac.Equal([]byte(token), []byte(a.csrfTokenForHour(currentBucket))) ||
		hmac.Equal([]byte(token), []byte(a.csrfTokenForHour(prevBucket)))
}

type attemptLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	entries map[string][]time.Time
}

func newAttemptLimiter(max int, window time.Duration) *attemptLimiter {
	if max < 1 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &attemptLimiter{max: max, window: window, entries: make(map[string][]time.Time)}
}

func (l *attemptLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	now := time.Now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	history := l.entries[key]
	kept := make([]time.Time, 0, len(history)+1)
	for _, ts := range history {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.entries[key] = kept
		return false
	}
	kept = append(kept, now)
	l.entries[key] = kept
	return true
}

func clientKey(r *http.Request) string {
	host := strings.TrimSpace(r.RemoteAddr)
	if host == "" {
		return "unknown"
	}
	if addr, err := netip.ParseAddrPort(host); err == nil {
		return addr.Addr().String()
	}
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		return host[:idx]
	}
	return host
}

func (a *API) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", a.handleHealth)
	r.Post("/api/v1/auth/login", a.handleLogin)
	r.Get("/api/v1/auth/csrf-token", a.handleCSRFToken)

	r.Group(func(r chi.Router) {
		r.Use(a.requireAuth(domain.RoleCashier, domain.RoleManager))

		r.Get("/api/v1/products", a.handleListProducts)
		r.Get("/api/v1/products/{productID}", a.handleGetProduct)

		r.Route("/api/v1/terminals/{terminalID}", func(r chi.Router) {
			r.Get("/cart", a.handleGetCart)
			r.Delete("/cart", a.handleClearCart)
			r.Post("/cart/items", a.handleAddToCart)
			r.Patch("/cart/items/{productID}", a.handleUpdateQuantity)
			r.Delete("/cart/items/{productID}", a.handleRemoveFromCart)

			r.Post("/checkout", a.handleCheckout)

			r.Delete("/session", a.handleDisposeSession)

			r.Get("/transactions", a.handleListTransactions)
			r.Get("/transactions/{transactionID}", a.handleGetTransaction)
			r.Post("/transactions/{transactionID}/refund", a.handleRefund)
			r.Get("/transactions/{transactionID}/receipt", a.handleReceipt)
		})

		r.Get("/api/v1/customers", a.handleListCustomers)
		r.Post("/api/v1/customers", a.handleCreateCustomer)
		r.Get("/api/v1/customers/{customerID}", a.handleGetCustomer)
		r.Patch("/api/v1/customers/{customerID}", a.handleUpdateCustomer)
	})

	r.Group(func(r chi.Router) {
		r.Use(a.requireAuth(domain.RoleManager))

		r.Post("/api/v1/products", a.handleCreateProduct)
		r.Patch("/api/v1/products/{productID}", a.handleUpdateProduct)
		r.Put("/api/v1/products/{productID}/stock", a.handleSetStock)

		r.Get("/api/v1/reports/daily", a.handleDailyReport)

		r.Get("/api/v1/users/cashiers", a.handleListCashiers)
		r.Post("/api/v1/users/cashiers", a.handleCreateCashier)
	})

	return a.withMiddleware(r)
}

func (a *API) requireAuth(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authorization := strings.TrimSpace(r.Header.Get("Authorization"))
			if !strings.HasPrefix(strings.ToLower(authorization), "bearer ") {
				writeError(w, a.logger, http.StatusUnauthorized, errors.New("missing bearer token"))
				return
			}

			token := strings.TrimSpace(authorization[len("Bearer "):])
			actor, err := a.auth.ParseToken(token)
			if err != nil {
				writeError(w, a.logger, http.StatusUnauthorized, err)
				return
			}

			if len(roles) > 0 && !isRoleAllowed(actor.Role, roles) {
				writeError(w, a.logger, http.StatusForbidden, errors.New("forbidden role"))
				return
			}

			next.ServeHTTP(w, r.WithContext(service.WithActor(r.Context(), actor)))
		})
	}
}

func isRoleAllowed(role string, allowed []string) bool {
	for _, allow := range allowed {
		if role == allow {
			return true
		}
	}
	return false
}

func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"at": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !a.loginLimiter.Allow(clientKey(r)) {
		writeError(w, a.logger, http.StatusTooManyRequests, errors.New("too many login attempts"))
		return
	}

	var req domain.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, a.logger, http.StatusBadRequest, err)
		return
	}

	resp, err := a.auth.Login(req)
	if err != nil {
		writeError(w, a.logger, http.StatusUnauthorized, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleCSRFToken returns a stateless token clients must echo in the
// X-CSRF-Token header on all mutating requests.
func (a *API) handleCSRFToken(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"csrf_token": a.generateCSRFToken(),
	})
}

// Login is exempt because it happens before any CSRF token fetch.
var csrfExemptPaths = []string{
	"/api/v1/auth/login",
}

func (a *API) checkCSRF(w http.ResponseWriter, r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return true
	}
	for _, exempt := range csrfExemptPaths {
		if r.URL.Path == exempt {
			return true
		}
	}
	token := strings.TrimSpace(r.Header.Get("X-CSRF-Token"))
	if !a.validateCSRFToken(token) {
		writeError(w, a.logger, http.StatusForbidden, errors.New("missing or invalid CSRF token"))
		return false
	}
	return true
}

func (a *API) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := a.service.ListProducts(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, a.logger, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (a *API) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := a.service.GetProduct(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrNotFound) {
			status = http.StatusNotFound
		}
		writeError(w, a.logger, status, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"product": product})
}

func (a *API) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req domain.ProductCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, a.logger, http.StatusBadRequest, err)
		return
	}

	product, err := a.service.CreateProduct(r.Context(), req)
	if err != nil {
		status := http.StatusUnprocessableEntity
		switch {
		case errors.Is(err, store.ErrInvalidInput):
			status = http.StatusBadRequest
		case errors.Is(err, store.ErrDuplicate):
			status = http.StatusConflict
		case errors.Is(err, service.ErrManagerRole):
			status = http.StatusForbidden
		}
		writeError(w, a.logger, status, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"product": product})
}

func (a *API) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req domain.ProductUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, a.logger, http.StatusBadRequest, err)
		return
	}

	updated, err := a.service.UpdateProduct(r.Context(), chi.URLParam(r, "productID"), req)
	if err != nil {
		status := http.StatusUnprocessableEntity
		switch {
		case errors.Is(err, store.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, store.ErrInvalidInput):
			status = http.StatusBadRequest
		case errors.Is(err, service.ErrManagerRole):
			status = http.StatusForbidden
		}
		writeError(w, a.logger, status, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"product": updated})
}

func (a *API) handleSetStock(w http.ResponseWriter, r *http.Request) {
	var req domain.StockAdjustRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, a.logger, http.StatusBadRequest, err)
		return
	}

	updated, err := a.service.SetStock(r.Context(), chi.URLParam(r, "productID"), req)
	if err != nil {
		status := http.StatusUnprocessableEntity
		switch {
		case errors.Is(err, store.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, store.ErrInvalidInput):
			status = http.StatusBadRequest
		case errors.Is(err, service.ErrManagerRole):
			status = http.StatusForbidden
		}
		writeError(w, a.logger, status, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"product": updated})
}

// cartErrorStatus maps workflow and validation errors shared by the
// cart mutation handlers.
func cartErrorStatus(err error) int {
	var stockErr *pos.InsufficientStockError
	switch {
	case errors.Is(err, pos.ErrProductUnavailable), errors.Is(err, pos.ErrProductNotFound):
		return http.StatusNotFound
	case errors.As(err, &stockErr):
		return http.StatusConflict
	case errors.Is(err, pos.ErrPriceOptionMissing):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (a *API) handleGetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := a.service.Cart(r.Context(), chi.URLParam(r, "terminalID"))
	if err != nil {
		writeError(w, a.logger, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (a *API) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	var req domain.AddToCartRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, a.logger, http.StatusBadRequest, err)
		return
	}

	cart, err := a.service.AddToCart(r.Context(), chi.URLParam(r, "terminalID"), req)
	if err != nil {
		writeError(w, a.logger, cartErrorStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (a *API) handleUpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateQuantityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, a.logger, http.StatusBadRequest, err)
		return
	}

	cart, err := a.service.UpdateQuantity(r.Context(), chi.URLParam(r, "terminalID"), chi.URLParam(r, "productID"), req.Quantity)
	if err != nil {
		writeError(w, a.logger, cartErrorStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (a *API) handleRemoveFromCart(w http.ResponseWriter, r *http.Request) {
	cart, err := a.service.RemoveFromCart(r.Context(), chi.URLParam(r, "terminalID"), chi.URLParam(r, "productID"))
	if err != nil {
		writeError(w, a.logger, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (a *API) handleClearCart(w http.ResponseWriter, r *http.Request) {
	cart, err := a.service.ClearCart(r.Context(), chi.URLParam(r, "terminalID"))
	if err != nil {
		writeError(w, a.logger, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

// handleDisposeSession persists and drops a terminal's in-memory
// session, typically at end of day.
func (a *API) handleDisposeSession(w http.ResponseWriter, r *http.Request) {
	a.service.DisposeSession(r.Context(), chi.URLParam(r, "terminalID"))
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (a *API) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req domain.CheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, a.logger, http.StatusBadRequest, err)
		return
	}

	resp, err := a.service.Checkout(r.Context(), chi.URLParam(r, "terminalID"), req)
	if err != nil {
		var commitErr *pos.CommitError
		status := http.StatusUnprocessableEntity
		switch {
		case errors.Is(err, store.ErrInvalidInput):
			status = http.StatusBadRequest
		case errors.Is(err, store.ErrNotFound):
			status = http.StatusNotFound
		case errors.As(err, &commitErr), errors.Is(err, pos.ErrEmptyCart):
			status = http.StatusUnprocessableEntity
		}
		writeError(w, a.logger, status, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := a.service.Transactions(r.Context(), chi.URLParam(r, "terminalID"))
	if err != nil {
		writeError(w, a.logger, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": transactions})
}

func (a *API) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := a.service.Transaction(r.Context(), chi.URLParam(r, "terminalID"), chi.URLParam(r, "transactionID"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, pos.ErrTransactionNotFound) {
			status = http.StatusNotFound
		}
		writeError(w, a.logger, status, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transaction": tx})
}

func (a *API) handleRefund(w http.ResponseWriter, r *http.Request) {
	var req domain.RefundRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, a.logger, http.StatusBadRequest, err)
		return
	}
	if !a.pinLimiter.Allow("pin:refund:" + clientKey(r)) {
		writeError(w, a.logger, http.StatusTooManyRequests, errors.New("too many manager pin attempts"))
		return
	}
	if !a.auth.ValidateManagerPIN(req.ManagerPIN) {
		writeError(w, a.logger, http.StatusForbidden, errors.New("invalid manager pin"))
		return
	}

	resp, err := a.service.Refund(r.Context(), chi.URLParam(r, "terminalID"), chi.URLParam(r, "transactionID"), req.Reason)
	if err != nil {
		status := http.StatusUnprocessableEntity
		switch {
		case errors.Is(err, pos.ErrTransactionNotFound):
			status = http.StatusNotFound
		case errors.Is(err, pos.ErrAlreadyRefunded):
			status = http.StatusConflict
		}
		writeError(w, a.logger, status, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleReceipt(w http.ResponseWriter, r *http.Request) {
	resp, err := a.service.Receipt(r.Context(), chi.URLParam(r, "terminalID"), chi.URLParam(r, "transactionID"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, pos.ErrTransactionNotFound) {
			status = http.StatusNotFound
		}
		writeError(w, a.logger, status, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := a.service.ListCustomers(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, a.logger, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"customers": customers})
}

func (a *API) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	customer, err := a.service.GetCustomer(r.Context(), chi.URLParam(r, "customerID"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrNotFound) {
			status = http.StatusNotFound
		}
		writeError(w, a.logger, status, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"customer": customer})
}

func (a *API) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req domain.CustomerCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, a.logger, http.StatusBadRequest, err)
		return
	}

	customer, err := a.service.CreateCustomer(r.Context(), req)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, store.ErrInvalidInput) {
			status = http.StatusBadRequest
		}
		writeError(w, a.logger, status, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"customer": customer})
}

func (a *API) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var req domain.CustomerUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, a.logger, http.StatusBadRequest, err)
		return
	}

	customer, err := a.service.UpdateCustomer(r.Context(), chi.URLParam(r, "customerID"), req)
	if err != nil {
		status := http.StatusUnprocessableEntity
		switch {
		case errors.Is(err, store.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, store.ErrInvalidInput):
			status = http.StatusBadRequest
		}
		writeError(w, a.logger, status, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"customer": customer})
}

func (a *API) handleDailyReport(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))

	report, err := a.service.DailyReport(r.Context(), date)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, store.ErrInvalidInput) {
			status = http.StatusBadRequest
		}
		writeError(w, a.logger, status, err)
		return
	}

	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"daily-report-%s.csv\"", report.Date))
		_, _ = w.Write([]byte(dailyReportToCSV(report)))
	case "html":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(dailyReportToPrintableHTML(report)))
	default:
		writeJSON(w, http.StatusOK, report)
	}
}

func (a *API) handleListCashiers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"cashiers": a.auth.ListCashiers()})
}

func (a *API) handleCreateCashier(w http.ResponseWriter, r *http.Request) {
	var req domain.CashierCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, a.logger, http.StatusBadRequest, err)
		return
	}

	cashier, err := a.auth.CreateCashier(req)
	if err != nil {
		writeError(w, a.logger, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"cashier": cashier})
}

func (a *API) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Access-Control-Allow-Origin", a.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-CSRF-Token")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
		w.Header().Set("Vary", "Origin")

		if (r.Method == http.MethodPost || r.Method == http.MethodPatch || r.Method == http.MethodPut) && strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
			r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		if !a.checkCSRF(w, r) {
			return
		}

		startedAt := time.Now()
		next.ServeHTTP(w, r)
		a.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(startedAt)).
			Msg("request")
	})
}

func dailyReportToCSV(report domain.DailyReport) string {
	lines := []string{
		"section,key,value",
		fmt.Sprintf("summary,date,%s", report.Date),
		fmt.Sprintf("summary,transactions,%d", report.Transactions),
		fmt.Sprintf("summary,gross_sales_cents,%d", report.GrossSalesCents),
		fmt.Sprintf("summary,discount_cents,%d", report.DiscountCents),
		fmt.Sprintf("summary,net_sales_cents,%d", report.NetSalesCents),
		fmt.Sprintf("summary,refunded_cents,%d", report.RefundedCents),
		fmt.Sprintf("summary,service_liters,%s", strconv.FormatFloat(report.ServiceLiters, 'f', -1, 64)),
	}
	for _, payment := range report.ByPayment {
		lines = append(lines, fmt.Sprintf("payment,%s_transactions,%d", payment.PaymentMethod, payment.Transactions))
		lines = append(lines, fmt.Sprintf("payment,%s_total_cents,%d", payment.PaymentMethod, payment.TotalCents))
	}
	return strings.Join(lines, "\n") + "\n"
}

// dailyReportHTMLTmpl renders the printable daily report. User-supplied
// fields are auto-escaped by html/template.
var dailyReportHTMLTmpl = template.Must(template.New("daily-report").Parse(`<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <title>Daily Report {{.Date}}</title>
  <style>
    body { font-family: sans-serif; margin: 24px; }
    table { width: 100%; border-collapse: collapse; margin-top: 8px; }
    th, td { border: 1px solid #ddd; padding: 6px; font-size: 13px; }
    h2, h3 { margin-bottom: 4px; }
  </style>
</head>
<body>
  <h2>Daily Report {{.Date}}</h2>
  <p>Transactions: {{.Transactions}}</p>
  <p>Gross: {{.GrossSalesCents}} | Discount: {{.DiscountCents}} | Net: {{.NetSalesCents}} | Refunded: {{.RefundedCents}}</p>
  <p>Oil dispensed (liters): {{.ServiceLiters}}</p>

  <h3>By Payment</h3>
  <table>
    <thead><tr><th>Payment</th><th>Transactions</th><th>Total Cents</th></tr></thead>
    <tbody>{{range .ByPayment}}<tr><td>{{.PaymentMethod}}</td><td style="text-align:right;">{{.Transactions}}</td><td style="text-align:right;">{{.TotalCents}}</td></tr>{{end}}</tbody>
  </table>
</body>
</html>
`))

func dailyReportToPrintableHTML(report domain.DailyReport) string {
	var buf bytes.Buffer
	if err := dailyReportHTMLTmpl.Execute(&buf, report); err != nil {
		return "<!doctype html><html><body><p>Report rendering error.</p></body></html>"
	}
	return buf.String()
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func writeError(w http.ResponseWriter, logger zerolog.Logger, status int, err error) {
	// 5xx responses return a generic message so internal details never
	// reach the client; 4xx messages are user-facing.
	msg := err.Error()
	if status >= 500 {
		logger.Error().Err(err).Int("status", status).Msg("internal error")
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
