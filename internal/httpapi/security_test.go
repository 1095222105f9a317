package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	api, _, _ := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAuthRejectsGarbageToken(t *testing.T) {
	api, _, _ := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestTokenFromDifferentSecretIsRejected(t *testing.T) {
	api, _, _ := newTestAPI(t)

	other := NewAuthManager("a-different-secret", 0, "", nil)
	token, err := other.sign("manager", "manager", timeNowPlusHour())
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestMutationWithoutCSRFTokenIsRejected(t *testing.T) {
	api, _, cashier := newTestAPI(t)

	payload, _ := json.Marshal(map[string]any{"product_id": "prod-wash-full", "quantity": 1})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/terminals/bay-1/cart/items", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cashier)
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without CSRF token, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestLoginIsCSRFExempt(t *testing.T) {
	api, _, _ := newTestAPI(t)

	payload, _ := json.Marshal(map[string]string{"username": "cashier", "password": "cashier123"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestLoginRateLimit(t *testing.T) {
	api, _, _ := newTestAPI(t)
	handler := api.Handler()

	payload, _ := json.Marshal(map[string]string{"username": "cashier", "password": "badpass"})

	var lastCode int
	for i := 0; i < 6; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		lastCode = rec.Code
	}

	if lastCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after 6 attempts, got %d", lastCode)
	}
}

func TestPINAttemptLimit(t *testing.T) {
	api, _, cashier := newTestAPI(t)

	var lastCode int
	for i := 0; i < 9; i++ {
		rec := do(t, api, cashier, http.MethodPost, "/api/v1/terminals/bay-1/transactions/txn-x/refund", map[string]any{
			"manager_pin": "999999",
		})
		lastCode = rec.Code
	}

	if lastCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after 9 pin attempts, got %d", lastCode)
	}
}

func TestSecurityHeadersAndCORS(t *testing.T) {
	api, _, _ := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)

	headers := map[string]string{
		"X-Content-Type-Options":      "nosniff",
		"X-Frame-Options":             "DENY",
		"Referrer-Policy":             "strict-origin-when-cross-origin",
		"Cross-Origin-Opener-Policy":  "same-origin",
		"Access-Control-Allow-Origin": "*",
	}
	for name, expected := range headers {
		if got := rec.Header().Get(name); got != expected {
			t.Fatalf("header %s: expected %q, got %q", name, expected, got)
		}
	}
}

func TestPreflightRequestsShortCircuit(t *testing.T) {
	api, _, _ := newTestAPI(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/products", nil)
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", rec.Code)
	}
}

func TestUnknownJSONFieldsAreRejected(t *testing.T) {
	api, _, cashier := newTestAPI(t)

	rec := do(t, api, cashier, http.MethodPost, "/api/v1/terminals/bay-1/cart/items", map[string]any{
		"product_id": "prod-wash-full",
		"quantity":   1,
		"surprise":   true,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", rec.Code)
	}
}

func TestCSRFTokenWindow(t *testing.T) {
	api, _, _ := newTestAPI(t)

	current := api.generateCSRFToken()
	if !api.validateCSRFToken(current) {
		t.Fatal("current-hour token should validate")
	}
	if api.validateCSRFToken("") {
		t.Fatal("empty token should not validate")
	}
	if api.validateCSRFToken("deadbeef") {
		t.Fatal("forged token should not validate")
	}
}

func TestCSRFSecretIsPerProcess(t *testing.T) {
	a, _, _ := newTestAPI(t)
	b, _, _ := newTestAPI(t)

	// tokens from one instance must not validate on another: the
	// secret is random, never a shared constant
	if b.validateCSRFToken(a.generateCSRFToken()) {
		t.Fatal("token minted by one instance validated on another")
	}
}
