package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/smarttel/smarttel-ivr-go/internal/intent"
	"github.com/smarttel/smarttel-ivr-go/internal/logger"
	"github.com/smarttel/smarttel-ivr-go/internal/metrics"
	"github.com/smarttel/smarttel-ivr-go/internal/ratelimit"
	"github.com/smarttel/smarttel-ivr-go/internal/storage"
)

func newTestRouter(t *testing.T, maxIntents int) (*gin.Engine, *storage.Repository) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db, err := storage.NewTestDB()
	if err != nil {
		t.Fatalf("NewTestDB() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	log := logger.NewWithWriter("error", io.Discard)
	repo := storage.NewRepository(db, log)
	m := metrics.New()
	dispatcher := intent.NewDefaultDispatcher(repo, m, log)

	limiter := ratelimit.NewKeyedWindow(ratelimit.WindowConfig{
		MaxRequests: maxIntents,
		Window:      time.Minute,
	})
	t.Cleanup(limiter.Stop)

	handler := NewHandler(repo, dispatcher, limiter, m, log)

	router := gin.New()
	router.POST("/fetch_customer", handler.FetchCustomer)
	router.POST("/register", handler.Register)
	router.POST("/intent", handler.ProcessIntent)

	return router, repo
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshaling request body: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestFullFlow(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t, 10)

	// Register
	rec := postJSON(t, router, "/register", map[string]any{"id": "3003", "name": "E2EUser"})
	if rec.Code != http.StatusOK {
		t.Fatalf("register status = %d, body = %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["status"] != "ok" {
		t.Fatalf("register status field = %v", body["status"])
	}
	if body["message"] != "Customer E2EUser registered successfully" {
		t.Errorf("register message = %v", body["message"])
	}

	// Fetch
	rec = postJSON(t, router, "/fetch_customer", map[string]any{"id": "3003"})
	body = decodeBody(t, rec)
	if body["status"] != "ok" {
		t.Fatalf("fetch status field = %v", body["status"])
	}
	customer := body["customer"].(map[string]any)
	if customer["plan"] != "SmartPlan 299" {
		t.Errorf("plan = %v, want SmartPlan 299", customer["plan"])
	}
	if customer["balance"] != 150.0 {
		t.Errorf("balance = %v, want 150", customer["balance"])
	}

	// Check balance intent
	rec = postJSON(t, router, "/intent", map[string]any{"id": "3003", "text": "check balance"})
	body = decodeBody(t, rec)
	if body["message"] != "Your current balance is rupees 150.0." {
		t.Errorf("balance message = %v", body["message"])
	}

	// Upgrade
	rec = postJSON(t, router, "/intent", map[string]any{"id": "3003", "text": "upgrade my data", "upgrade": true})
	body = decodeBody(t, rec)
	if body["message"] != "Upgraded to Premium Plan 499 successfully." {
		t.Errorf("upgrade message = %v", body["message"])
	}

	// Recharge
	rec = postJSON(t, router, "/intent", map[string]any{"id": "3003", "text": "recharge", "amount": 299})
	body = decodeBody(t, rec)
	if body["message"] != "Recharge of rupees 299 successful. New balance is 449.0." {
		t.Errorf("recharge message = %v", body["message"])
	}
}

func TestFetchCustomerValidation(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t, 10)

	tests := []struct {
		name        string
		body        any
		wantCode    int
		wantMessage string
	}{
		{"missing id", map[string]any{}, http.StatusBadRequest, "Missing customer ID"},
		{"blank id", map[string]any{"id": "  "}, http.StatusBadRequest, "Invalid customer ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, router, "/fetch_customer", tt.body)
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			body := decodeBody(t, rec)
			if body["message"] != tt.wantMessage {
				t.Errorf("message = %v, want %q", body["message"], tt.wantMessage)
			}
		})
	}
}

func TestFetchCustomerNotFound(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t, 10)

	rec := postJSON(t, router, "/fetch_customer", map[string]any{"id": "9999"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for not_found", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["status"] != "not_found" {
		t.Errorf("status field = %v, want not_found", body["status"])
	}
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t, 10)

	tests := []struct {
		name        string
		body        any
		wantMessage string
	}{
		{"missing both", map[string]any{}, "Missing ID or name"},
		{"missing name", map[string]any{"id": "1001"}, "Missing ID or name"},
		{"blank name", map[string]any{"id": "1001", "name": " "}, "Invalid ID or name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, router, "/register", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			body := decodeBody(t, rec)
			if body["message"] != tt.wantMessage {
				t.Errorf("message = %v, want %q", body["message"], tt.wantMessage)
			}
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	t.Parallel()

	router, repo := newTestRouter(t, 10)

	rec := postJSON(t, router, "/register", map[string]any{"id": "1001", "name": "First User"})
	if rec.Code != http.StatusOK {
		t.Fatalf("first register status = %d", rec.Code)
	}

	rec = postJSON(t, router, "/register", map[string]any{"id": "1001", "name": "Second User"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("duplicate register status = %d, want 400", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["message"] != "Customer ID already exists" {
		t.Errorf("message = %v", body["message"])
	}

	// The original record must survive the duplicate attempt
	customer, err := repo.GetCustomerByID(context.Background(), "1001")
	if err != nil {
		t.Fatalf("GetCustomerByID() error = %v", err)
	}
	if customer.Name != "First User" {
		t.Errorf("name = %q after duplicate attempt, want %q", customer.Name, "First User")
	}
}

func TestIntentValidation(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t, 10)

	tests := []struct {
		name        string
		body        any
		wantMessage string
	}{
		{"missing both", map[string]any{}, "Missing ID or text"},
		{"missing text", map[string]any{"id": "1001"}, "Missing ID or text"},
		{"blank text", map[string]any{"id": "1001", "text": "   "}, "Invalid ID or text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, router, "/intent", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			body := decodeBody(t, rec)
			if body["message"] != tt.wantMessage {
				t.Errorf("message = %v, want %q", body["message"], tt.wantMessage)
			}
		})
	}
}

func TestIntentUnknownCustomer(t *testing.T) {
	t.Parallel()

	router, repo := newTestRouter(t, 10)

	rec := postJSON(t, router, "/intent", map[string]any{"id": "9999", "text": "check balance"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["message"] != "Customer not found" {
		t.Errorf("message = %v", body["message"])
	}

	// No record may be created as a side effect
	customer, err := repo.GetCustomerByID(context.Background(), "9999")
	if err != nil {
		t.Fatalf("GetCustomerByID() error = %v", err)
	}
	if customer != nil {
		t.Errorf("customer created by intent request: %+v", customer)
	}
}

func TestIntentRateLimited(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t, 3)

	postJSON(t, router, "/register", map[string]any{"id": "1001", "name": "Limited User"})

	for i := 0; i < 3; i++ {
		rec := postJSON(t, router, "/intent", map[string]any{"id": "1001", "text": "menu"})
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, rec.Code)
		}
	}

	rec := postJSON(t, router, "/intent", map[string]any{"id": "1001", "text": "menu"})
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429 after limit", rec.Code)
	}
}

func TestIntentRateLimitKeyedByClientIP(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t, 3)

	postJSON(t, router, "/register", map[string]any{"id": "1001", "name": "First User"})
	postJSON(t, router, "/register", map[string]any{"id": "1002", "name": "Second User"})

	// Alternating customer IDs from one client must share one budget
	ids := []string{"1001", "1002", "1001"}
	for i, id := range ids {
		rec := postJSON(t, router, "/intent", map[string]any{"id": id, "text": "menu"})
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, rec.Code)
		}
	}

	rec := postJSON(t, router, "/intent", map[string]any{"id": "1002", "text": "menu"})
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d after rotating IDs, want 429", rec.Code)
	}

	// A different client IP gets its own window
	data, err := json.Marshal(map[string]any{"id": "1001", "text": "menu"})
	if err != nil {
		t.Fatalf("marshaling request body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/intent", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "203.0.113.7:5000"

	other := httptest.NewRecorder()
	router.ServeHTTP(other, req)
	if other.Code != http.StatusOK {
		t.Errorf("status = %d for fresh client IP, want 200", other.Code)
	}
}
