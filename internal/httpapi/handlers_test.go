package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"lubriwash/backend/internal/domain"
	"lubriwash/backend/internal/service"
	"lubriwash/backend/internal/snapshot"
	"lubriwash/backend/internal/store/memory"
)

// newTestAPI builds a full API over the in-memory store with a real
// AuthManager and Service so handler tests exercise the complete
// request path. Returns the API plus tokens for both roles.
func newTestAPI(t *testing.T) (*API, string, string) {
	t.Helper()

	repo := memory.NewSeeded()
	seedUser(t, repo, "manager", "manager123", domain.RoleManager)
	seedUser(t, repo, "cashier", "cashier123", domain.RoleCashier)

	svc := service.New(repo, snapshot.Noop{}, zerolog.Nop())
	auth := NewAuthManager("test-secret-key", time.Hour, "123456", repo)
	api := New(svc, auth, "*", zerolog.Nop())

	managerToken := login(t, api, "manager", "manager123")
	cashierToken := login(t, api, "cashier", "cashier123")
	return api, managerToken, cashierToken
}

func seedUser(t *testing.T, repo *memory.Store, username, password, role string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	err = repo.CreateUser(context.Background(), domain.UserAccount{
		Username:  username,
		Password:  string(hash),
		Role:      role,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
}

func login(t *testing.T, api *API, username, password string) string {
	t.Helper()
	resp, err := api.auth.Login(domain.LoginRequest{Username: username, Password: password})
	if err != nil {
		t.Fatalf("login %s: %v", username, err)
	}
	return resp.AccessToken
}

// do runs one request through the full middleware stack with auth and
// CSRF headers set.
func do(t *testing.T, api *API, token, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("X-CSRF-Token", api.generateCSRFToken())

	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v (raw: %s)", err, rec.Body.String())
	}
	return body
}

func TestHandleHealth(t *testing.T) {
	api, _, _ := newTestAPI(t)

	rec := do(t, api, "", http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["ok"] != true {
		t.Fatalf("expected ok:true, got %v", body["ok"])
	}
}

func TestHandleLogin(t *testing.T) {
	api, _, _ := newTestAPI(t)

	rec := do(t, api, "", http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": "cashier",
		"password": "cashier123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	if body := decodeBody(t, rec); body["access_token"] == "" || body["access_token"] == nil {
		t.Fatalf("expected access_token, got %v", body)
	}

	rec = do(t, api, "", http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": "cashier",
		"password": "wrongpassword",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestCartLifecycle(t *testing.T) {
	api, _, cashier := newTestAPI(t)

	rec := do(t, api, cashier, http.MethodGet, "/api/v1/terminals/bay-1/cart", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get empty cart: expected 200, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["total_cents"] != float64(0) {
		t.Fatalf("expected empty cart, got %v", body)
	}

	rec = do(t, api, cashier, http.MethodPost, "/api/v1/terminals/bay-1/cart/items", map[string]any{
		"product_id": "prod-wash-full",
		"quantity":   2,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("add to cart: expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	if body := decodeBody(t, rec); body["total_cents"] != float64(3000) {
		t.Fatalf("expected total 3000, got %v", body["total_cents"])
	}

	rec = do(t, api, cashier, http.MethodPatch, "/api/v1/terminals/bay-1/cart/items/prod-wash-full", map[string]any{
		"quantity": 3,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update quantity: expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	if body := decodeBody(t, rec); body["total_cents"] != float64(4500) {
		t.Fatalf("expected total 4500, got %v", body["total_cents"])
	}

	rec = do(t, api, cashier, http.MethodDelete, "/api/v1/terminals/bay-1/cart/items/prod-wash-full", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("remove item: expected 200, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["total_cents"] != float64(0) {
		t.Fatalf("expected empty cart after removal, got %v", body)
	}
}

func TestAddToCartErrors(t *testing.T) {
	api, _, cashier := newTestAPI(t)

	rec := do(t, api, cashier, http.MethodPost, "/api/v1/terminals/bay-1/cart/items", map[string]any{
		"product_id": "prod-ghost",
		"quantity":   1,
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown product: expected 404, got %d", rec.Code)
	}

	// degreaser is flagged not-for-POS in the seed data
	rec = do(t, api, cashier, http.MethodPost, "/api/v1/terminals/bay-1/cart/items", map[string]any{
		"product_id": "prod-degreaser-5l",
		"quantity":   1,
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unavailable product: expected 404, got %d", rec.Code)
	}

	rec = do(t, api, cashier, http.MethodPost, "/api/v1/terminals/bay-1/cart/items", map[string]any{
		"product_id": "prod-filter-ph7317",
		"quantity":   31,
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("over stock: expected 409, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestCheckoutRefundReceiptFlow(t *testing.T) {
	api, _, cashier := newTestAPI(t)

	rec := do(t, api, cashier, http.MethodPost, "/api/v1/terminals/bay-1/cart/items", map[string]any{
		"product_id":     "prod-oil-5w30",
		"quantity":       1,
		"is_service":     true,
		"service_liters": 4,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("add oil service: expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	rec = do(t, api, cashier, http.MethodPost, "/api/v1/terminals/bay-1/checkout", map[string]any{
		"payment_method": "card",
		"card_voucher":   "V-77",
		"customer_id":    "cust-ana",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("checkout: expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	tx, ok := body["transaction"].(map[string]any)
	if !ok {
		t.Fatalf("expected transaction in response, got %v", body)
	}
	txID, _ := tx["id"].(string)
	if txID == "" {
		t.Fatalf("expected transaction id, got %v", tx)
	}
	if tx["receipt_number"] == "" {
		t.Fatalf("expected receipt number, got %v", tx)
	}

	rec = do(t, api, cashier, http.MethodGet, "/api/v1/terminals/bay-1/transactions", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list transactions: expected 200, got %d", rec.Code)
	}

	rec = do(t, api, cashier, http.MethodGet, fmt.Sprintf("/api/v1/terminals/bay-1/transactions/%s/receipt", txID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("receipt: expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	receiptBody := decodeBody(t, rec)
	if receiptBody["escpos_base64"] == "" || receiptBody["escpos_base64"] == nil {
		t.Fatalf("expected escpos payload, got %v", receiptBody)
	}

	rec = do(t, api, cashier, http.MethodPost, fmt.Sprintf("/api/v1/terminals/bay-1/transactions/%s/refund", txID), map[string]any{
		"reason":      "bad oil batch",
		"manager_pin": "123456",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("refund: expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	if refund := decodeBody(t, rec); refund["status"] != domain.TxStatusRefunded {
		t.Fatalf("expected refunded status, got %v", refund)
	}

	// second refund of the same transaction conflicts
	rec = do(t, api, cashier, http.MethodPost, fmt.Sprintf("/api/v1/terminals/bay-1/transactions/%s/refund", txID), map[string]any{
		"reason":      "again",
		"manager_pin": "123456",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("double refund: expected 409, got %d", rec.Code)
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	api, _, cashier := newTestAPI(t)

	rec := do(t, api, cashier, http.MethodPost, "/api/v1/terminals/bay-9/checkout", map[string]any{
		"payment_method": "cash",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("empty cart checkout: expected 422, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestRefundRequiresValidPIN(t *testing.T) {
	api, _, cashier := newTestAPI(t)

	rec := do(t, api, cashier, http.MethodPost, "/api/v1/terminals/bay-1/transactions/txn-any/refund", map[string]any{
		"manager_pin": "000000",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("bad pin: expected 403, got %d", rec.Code)
	}
}

func TestProductManagementRoutes(t *testing.T) {
	api, manager, cashier := newTestAPI(t)

	payload := map[string]any{
		"sku":      "TIRE-SHINE",
		"name":     "Tire Shine Gel",
		"category": "detailing",
		"stock_unit": map[string]any{
			"kind":       "unit",
			"full_units": 24,
		},
		"price_options":     []map[string]any{{"kind": "unit", "price_cents": 1100}},
		"available_for_pos": true,
	}

	rec := do(t, api, cashier, http.MethodPost, "/api/v1/products", payload)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("cashier create product: expected 403, got %d", rec.Code)
	}

	rec = do(t, api, manager, http.MethodPost, "/api/v1/products", payload)
	if rec.Code != http.StatusCreated {
		t.Fatalf("manager create product: expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	product, _ := body["product"].(map[string]any)
	productID, _ := product["id"].(string)
	if productID == "" {
		t.Fatalf("expected product id, got %v", body)
	}

	rec = do(t, api, manager, http.MethodPut, fmt.Sprintf("/api/v1/products/%s/stock", productID), map[string]any{
		"full_units": 40,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("set stock: expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	rec = do(t, api, cashier, http.MethodGet, fmt.Sprintf("/api/v1/products/%s", productID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("cashier get product: expected 200, got %d", rec.Code)
	}

	rec = do(t, api, manager, http.MethodPatch, "/api/v1/products/prod-ghost", map[string]any{
		"brand": "Anywhere",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("patch unknown product: expected 404, got %d", rec.Code)
	}
}

func TestCustomerRoutes(t *testing.T) {
	api, _, cashier := newTestAPI(t)

	rec := do(t, api, cashier, http.MethodPost, "/api/v1/customers", map[string]any{
		"first_name":        "Elena",
		"last_name":         "Vega",
		"phone":             "6000-0099",
		"preferred_contact": "phone",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create customer: expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	customer, _ := body["customer"].(map[string]any)
	customerID, _ := customer["id"].(string)
	if customerID == "" {
		t.Fatalf("expected customer id, got %v", body)
	}

	rec = do(t, api, cashier, http.MethodPatch, fmt.Sprintf("/api/v1/customers/%s", customerID), map[string]any{
		"notes": "prefers morning appointments",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update customer: expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	rec = do(t, api, cashier, http.MethodGet, "/api/v1/customers/cust-ghost", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown customer: expected 404, got %d", rec.Code)
	}
}

func TestProductSearchAndSessionDispose(t *testing.T) {
	api, _, cashier := newTestAPI(t)

	rec := do(t, api, cashier, http.MethodGet, "/api/v1/products?q=castrol", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("product search: expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	products, _ := body["products"].([]any)
	if len(products) != 1 {
		t.Fatalf("expected 1 search hit, got %d", len(products))
	}

	rec = do(t, api, cashier, http.MethodDelete, "/api/v1/terminals/bay-1/session", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("dispose session: expected 200, got %d", rec.Code)
	}
}

func TestDailyReportRoute(t *testing.T) {
	api, manager, cashier := newTestAPI(t)

	rec := do(t, api, cashier, http.MethodGet, "/api/v1/reports/daily", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("cashier daily report: expected 403, got %d", rec.Code)
	}

	rec = do(t, api, manager, http.MethodGet, "/api/v1/reports/daily", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("manager daily report: expected 200, got %d", rec.Code)
	}

	rec = do(t, api, manager, http.MethodGet, "/api/v1/reports/daily?format=csv", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("csv report: expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv; charset=utf-8" {
		t.Fatalf("expected csv content type, got %q", ct)
	}

	rec = do(t, api, manager, http.MethodGet, "/api/v1/reports/daily?date=not-a-date", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad date: expected 400, got %d", rec.Code)
	}
}

func TestCashierManagementRoutes(t *testing.T) {
	api, manager, cashier := newTestAPI(t)

	rec := do(t, api, cashier, http.MethodGet, "/api/v1/users/cashiers", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("cashier listing cashiers: expected 403, got %d", rec.Code)
	}

	rec = do(t, api, manager, http.MethodPost, "/api/v1/users/cashiers", map[string]any{
		"username": "newcashier",
		"password": "secret99",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create cashier: expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	rec = do(t, api, manager, http.MethodGet, "/api/v1/users/cashiers", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list cashiers: expected 200, got %d", rec.Code)
	}
}
