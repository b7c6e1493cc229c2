package service

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/commerce-kit/backoffice-core/internal/config"
	"github.com/commerce-kit/backoffice-core/internal/domain"
	"github.com/commerce-kit/backoffice-core/internal/events"
	"github.com/commerce-kit/backoffice-core/internal/observability"
	"github.com/commerce-kit/backoffice-core/internal/remote"
	"github.com/commerce-kit/backoffice-core/internal/repository"
)

// fakeCommerceAPI is an in-process stand-in for the remote commerce API. It
// issues sequential opaque tokens and lets tests expire or reject them.
type fakeCommerceAPI struct {
	srv *httptest.Server

	mu             sync.Mutex
	accessSeq      int
	validAccess    map[string]bool
	currentRefresh string

	identity map[string]any

	failRefresh      bool
	failLogout       bool
	rejectOrderCalls bool
	refreshDelay     time.Duration

	loginCalls   int
	refreshCalls int
	meCalls      int
	logoutCalls  int
	orderCalls   int

	orderStatus domain.OrderStatus
}

func newFakeCommerceAPI(t *testing.T) *fakeCommerceAPI {
	t.Helper()
	f := &fakeCommerceAPI{
		validAccess: map[string]bool{},
		orderStatus: domain.OrderStatusPending,
		identity: map[string]any{
			"id":        "op-1",
			"email":     "staff@example.com",
			"full_name": "Staff One",
			"role":      "STAFF",
			"status":    "ACTIVE",
		},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", f.handleLogin)
	mux.HandleFunc("/auth/refresh", f.handleRefresh)
	mux.HandleFunc("/auth/me", f.handleMe)
	mux.HandleFunc("/auth/logout", f.handleLogout)
	mux.HandleFunc("/orders/", f.handleOrders)
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeCommerceAPI) setRole(role string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.identity["role"] = role
}

// expireAccess invalidates every outstanding access token; the refresh token
// keeps working unless failRefresh is set.
func (f *fakeCommerceAPI) expireAccess() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.validAccess = map[string]bool{}
}

func (f *fakeCommerceAPI) counts() (login, refresh, me, logout, orders int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loginCalls, f.refreshCalls, f.meCalls, f.logoutCalls, f.orderCalls
}

func (f *fakeCommerceAPI) issueTokens() (access, refresh string) {
	f.accessSeq++
	access = fmt.Sprintf("access-%d", f.accessSeq)
	refresh = fmt.Sprintf("refresh-%d", f.accessSeq)
	f.validAccess[access] = true
	f.currentRefresh = refresh
	return access, refresh
}

func (f *fakeCommerceAPI) authorized(r *http.Request) bool {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.validAccess[token]
}

func writeData(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"data": v})
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"code": code, "message": message},
	})
}

func (f *fakeCommerceAPI) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	f.loginCalls++
	if req.Password != "correct-password" {
		f.mu.Unlock()
		writeAPIError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password")
		return
	}
	access, refresh := f.issueTokens()
	identity := f.identity
	f.mu.Unlock()

	writeData(w, map[string]any{
		"identity":      identity,
		"access_token":  access,
		"refresh_token": refresh,
	})
}

func (f *fakeCommerceAPI) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	f.refreshCalls++
	delay := f.refreshDelay
	fail := f.failRefresh || req.RefreshToken != f.currentRefresh
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if fail {
		writeAPIError(w, http.StatusUnauthorized, "REFRESH_REJECTED", "refresh token rejected")
		return
	}

	f.mu.Lock()
	access, refresh := f.issueTokens()
	f.mu.Unlock()
	writeData(w, map[string]any{"access_token": access, "refresh_token": refresh})
}

func (f *fakeCommerceAPI) handleMe(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.meCalls++
	identity := f.identity
	f.mu.Unlock()

	if !f.authorized(r) {
		writeAPIError(w, http.StatusUnauthorized, "TOKEN_REJECTED", "access token rejected")
		return
	}
	writeData(w, identity)
}

func (f *fakeCommerceAPI) handleLogout(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.logoutCalls++
	fail := f.failLogout
	f.mu.Unlock()

	if fail {
		writeAPIError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "session store unavailable")
		return
	}
	writeData(w, map[string]any{"status": "logged_out"})
}

func (f *fakeCommerceAPI) handleOrders(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.orderCalls++
	reject := f.rejectOrderCalls
	status := f.orderStatus
	f.mu.Unlock()

	if reject || !f.authorized(r) {
		writeAPIError(w, http.StatusUnauthorized, "TOKEN_REJECTED", "access token rejected")
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	orderID := parts[1]
	order := map[string]any{
		"id":             orderID,
		"status":         string(status),
		"final_amount":   149.90,
		"payment_status": "PAID",
	}

	switch {
	case len(parts) == 2 && r.Method == http.MethodGet:
	case len(parts) == 3 && parts[2] == "status" && r.Method == http.MethodPut:
		var req struct {
			Status string  `json:"status"`
			Notes  *string `json:"notes"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Status == string(domain.OrderStatusShipped) && status != domain.OrderStatusProcessing {
			writeAPIError(w, http.StatusUnprocessableEntity, "CONFLICT", "order was modified concurrently")
			return
		}
		order["status"] = req.Status
		if req.Notes != nil {
			order["staff_notes"] = *req.Notes
		}
	case len(parts) == 3 && parts[2] == "cancel" && r.Method == http.MethodPost:
		var req struct {
			Reason string `json:"reason"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if strings.TrimSpace(req.Reason) == "" {
			writeAPIError(w, http.StatusBadRequest, "VALIDATION_FAILED", "reason required")
			return
		}
		order["status"] = string(domain.OrderStatusCancelled)
		order["staff_notes"] = req.Reason
	case len(parts) == 3 && parts[2] == "assign" && r.Method == http.MethodPut:
		var req struct {
			StaffID string `json:"staff_id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		order["assigned_staff_id"] = req.StaffID
	default:
		writeAPIError(w, http.StatusNotFound, "NOT_FOUND", "no such endpoint")
		return
	}

	writeData(w, order)
}

// testSession bundles a session manager wired against the fake API.
type testSession struct {
	api      *fakeCommerceAPI
	repo     repository.CredentialRepository
	sessions *SessionManager
	metrics  *observability.Metrics
}

func newTestSession(t *testing.T, api *fakeCommerceAPI, repo repository.CredentialRepository) *testSession {
	t.Helper()
	if repo == nil {
		repo = repository.NewFileCredentialRepository(filepath.Join(t.TempDir(), "credentials.json"))
	}
	metrics := observability.NewMetrics()
	client := remote.NewClient(api.srv.URL, 5*time.Second, zap.NewNop())
	sessions := NewSessionManager(config.SessionConfig{}, SessionDependencies{
		APIClient:      client,
		CredentialRepo: repo,
		Dispatcher:     events.NewInMemoryDispatcher(),
		Metrics:        metrics,
	}, zap.NewNop())
	return &testSession{api: api, repo: repo, sessions: sessions, metrics: metrics}
}
