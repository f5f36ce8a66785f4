package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"kahwadash/internal/config"
	"kahwadash/internal/dashboard"
	"kahwadash/internal/orderapi"
	"kahwadash/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPassword = "s3cret"

// fakeUpstream serves the remote order service contract for tests.
type fakeUpstream struct {
	menuJSON    string
	ordersJSON  string
	orderJSON   map[string]string
	failMenu    atomic.Bool
	failOrders  atomic.Bool
	rejectWrite atomic.Bool
	lastPut     atomic.Value // string: method+path+body
}

func (f *fakeUpstream) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/menu", func(w http.ResponseWriter, r *http.Request) {
		if f.failMenu.Load() {
			http.Error(w, "down", http.StatusInternalServerError)
			return
		}
		_, _ = io.WriteString(w, f.menuJSON)
	})
	mux.HandleFunc("/api/orders", func(w http.ResponseWriter, r *http.Request) {
		if f.failOrders.Load() {
			http.Error(w, "down", http.StatusInternalServerError)
			return
		}
		_, _ = io.WriteString(w, f.ordersJSON)
	})
	mux.HandleFunc("/api/orders/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/api/orders/")
		if r.Method == http.MethodPut {
			if f.rejectWrite.Load() {
				http.Error(w, "rejected", http.StatusBadRequest)
				return
			}
			body, _ := io.ReadAll(r.Body)
			f.lastPut.Store(r.Method + " " + r.URL.Path + " " + string(body))
			w.WriteHeader(http.StatusOK)
			return
		}
		payload, ok := f.orderJSON[id]
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, payload)
	})
	mux.HandleFunc("/api/menu/", func(w http.ResponseWriter, r *http.Request) {
		if f.rejectWrite.Load() {
			http.Error(w, "rejected", http.StatusBadRequest)
			return
		}
		body, _ := io.ReadAll(r.Body)
		f.lastPut.Store(r.Method + " " + r.URL.Path + " " + string(body))
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{
		menuJSON: `[
			{"_id": "a1", "name": "Tea", "price": 2.5, "category": "drinks", "stock": 12},
			{"_id": "b2", "name": "Kabab", "price": 9.99, "category": "mains", "stock": 4}
		]`,
		ordersJSON: `[
			{"_id": "65f1c2d3e4a5b6c7d8e9f0a1", "items": [{"menuItem": {"name": "Tea", "price": 2.5}, "quantity": 2}],
			 "total": 5.0, "status": "pending", "paymentMethod": "CASH", "cashAmount": 10, "changeAmount": 5,
			 "createdAt": "2025-03-14T12:30:00Z"}
		]`,
		orderJSON: map[string]string{
			"65f1c2d3e4a5b6c7d8e9f0a1": `{"_id": "65f1c2d3e4a5b6c7d8e9f0a1",
				"items": [{"menuItem": {"name": "Tea", "price": 2.5}, "quantity": 2}],
				"total": 5.0, "status": "pending", "paymentMethod": "CASH",
				"cashAmount": 10, "changeAmount": 5, "createdAt": "2025-03-14T12:30:00Z"}`,
			"65f1c2d3e4a5b6c7d8e9f0c3": `{"_id": "65f1c2d3e4a5b6c7d8e9f0c3",
				"items": [{"menuItem": {"name": "Kabab", "price": 9.99}, "quantity": 1}],
				"total": 9.99, "status": "ready", "paymentMethod": "CARD",
				"createdAt": "2025-03-14T13:00:00Z"}`,
		},
	}
}

func newTestServer(t *testing.T, upstream *fakeUpstream) *httptest.Server {
	t.Helper()

	us := httptest.NewServer(upstream.handler())
	t.Cleanup(us.Close)

	cfg := &config.Config{
		Auth: config.AuthConfig{
			ManagerPassword: testPassword,
			CookieName:      "manager_session",
			SessionTTL:      time.Hour,
		},
		Upstream: config.UpstreamConfig{BaseURL: us.URL, Timeout: 5 * time.Second},
		Branding: config.BrandingConfig{Name: "Kahwa & Kabab", Footer: "Thank you for your order!"},
	}

	client := orderapi.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, nil)
	gate := session.NewGate(cfg.Auth.ManagerPassword, session.NewMemoryStore(time.Hour), nil)
	dash := dashboard.NewService(client, nil, nil)

	srv := NewServer(cfg, gate, dash, client, nil, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func noRedirects(c *http.Client) {
	c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}
}

func login(t *testing.T, ts *httptest.Server) *http.Cookie {
	t.Helper()

	client := &http.Client{}
	noRedirects(client)

	resp, err := client.PostForm(ts.URL+"/login", url.Values{"password": {testPassword}})
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	for _, c := range resp.Cookies() {
		if c.Name == "manager_session" {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func get(t *testing.T, ts *httptest.Server, path string, cookie *http.Cookie) (*http.Response, string) {
	t.Helper()

	client := &http.Client{}
	noRedirects(client)

	req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
	require.NoError(t, err)
	if cookie != nil {
		req.AddCookie(cookie)
	}

	resp, err := client.Do(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, string(body)
}

func postForm(t *testing.T, ts *httptest.Server, path string, form url.Values, cookie *http.Cookie) *http.Response {
	t.Helper()

	client := &http.Client{}
	noRedirects(client)

	req, err := http.NewRequest(http.MethodPost, ts.URL+path, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	return resp
}

func TestGateRedirectsLockedSessions(t *testing.T) {
	ts := newTestServer(t, newFakeUpstream())

	resp, _ := get(t, ts, "/", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	// The receipt route is gated too.
	resp, _ = get(t, ts, "/receipt/65f1c2d3e4a5b6c7d8e9f0a1", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestLoginWrongPassword(t *testing.T) {
	ts := newTestServer(t, newFakeUpstream())

	client := &http.Client{}
	noRedirects(client)
	resp, err := client.PostForm(ts.URL+"/login", url.Values{"password": {"guess"}})
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, string(body), "Invalid password")
	assert.Empty(t, resp.Cookies())
}

func TestLoginAndDashboard(t *testing.T) {
	ts := newTestServer(t, newFakeUpstream())
	cookie := login(t, ts)

	resp, body := get(t, ts, "/", cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Manager Dashboard")
	assert.Contains(t, body, "Tea")
	assert.Contains(t, body, "Kabab")
	assert.Contains(t, body, "Order #e9f0a1")
	assert.Contains(t, body, "$5.00")
}

func TestUnlockedSessionSkipsLoginForm(t *testing.T) {
	ts := newTestServer(t, newFakeUpstream())
	cookie := login(t, ts)

	resp, _ := get(t, ts, "/login", cookie)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestDashboardShowsErrorWhenOrdersFail(t *testing.T) {
	upstream := newFakeUpstream()
	ts := newTestServer(t, upstream)
	cookie := login(t, ts)

	upstream.failOrders.Store(true)

	resp, body := get(t, ts, "/", cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Failed to load data")
}

func TestUpdateStock(t *testing.T) {
	upstream := newFakeUpstream()
	ts := newTestServer(t, upstream)
	cookie := login(t, ts)

	resp := postForm(t, ts, "/menu/a1/stock", url.Values{"stock": {"5"}}, cookie)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	put, _ := upstream.lastPut.Load().(string)
	assert.Contains(t, put, "PUT /api/menu/a1")
	assert.Contains(t, put, `{"stock":5}`)
}

func TestUpdateStockRejectsBadNumber(t *testing.T) {
	ts := newTestServer(t, newFakeUpstream())
	cookie := login(t, ts)

	resp := postForm(t, ts, "/menu/a1/stock", url.Values{"stock": {"many"}}, cookie)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateOrderStatus(t *testing.T) {
	upstream := newFakeUpstream()
	ts := newTestServer(t, upstream)
	cookie := login(t, ts)

	resp := postForm(t, ts, "/orders/65f1c2d3e4a5b6c7d8e9f0a1/status", url.Values{"status": {"ready"}}, cookie)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	put, _ := upstream.lastPut.Load().(string)
	assert.Contains(t, put, "PUT /api/orders/65f1c2d3e4a5b6c7d8e9f0a1")
	assert.Contains(t, put, `{"status":"ready"}`)
}

func TestReceiptCashOrder(t *testing.T) {
	ts := newTestServer(t, newFakeUpstream())
	cookie := login(t, ts)

	resp, body := get(t, ts, "/receipt/65f1c2d3e4a5b6c7d8e9f0a1", cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "e9f0a1")
	assert.Contains(t, body, "2x Tea")
	assert.Contains(t, body, "$5.00")
	assert.Contains(t, body, "Cash Received")
	assert.Contains(t, body, "$10.00")
	assert.Contains(t, body, "Thank you for your order!")
}

func TestReceiptCardOrderOmitsCashLines(t *testing.T) {
	ts := newTestServer(t, newFakeUpstream())
	cookie := login(t, ts)

	resp, body := get(t, ts, "/receipt/65f1c2d3e4a5b6c7d8e9f0c3", cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, body, "Cash Received")
	assert.NotContains(t, body, "Change:")
}

func TestReceiptNotFound(t *testing.T) {
	ts := newTestServer(t, newFakeUpstream())
	cookie := login(t, ts)

	resp, body := get(t, ts, "/receipt/unknown", cookie)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "Order not found")
}

func TestExportExcel(t *testing.T) {
	ts := newTestServer(t, newFakeUpstream())
	cookie := login(t, ts)

	// Load data first so the export has rows.
	_, _ = get(t, ts, "/", cookie)

	resp, body := get(t, ts, "/export/orders.xlsx", cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
	assert.NotEmpty(t, body)
}

func TestExportSheetsNotConfigured(t *testing.T) {
	ts := newTestServer(t, newFakeUpstream())
	cookie := login(t, ts)

	resp := postForm(t, ts, "/export/sheets", nil, cookie)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthzIsUngated(t *testing.T) {
	ts := newTestServer(t, newFakeUpstream())

	resp, body := get(t, ts, "/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(body), &payload))
	assert.Equal(t, "ok", payload["status"])
}

func TestRequestIDHeader(t *testing.T) {
	ts := newTestServer(t, newFakeUpstream())

	resp, _ := get(t, ts, "/healthz", nil)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
}
