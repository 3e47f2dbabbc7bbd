package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"betsafe-ai/internal/session"
)

func newTestSessions(t *testing.T) (*Sessions, *session.Store) {
	t.Helper()
	store := session.NewStore(time.Hour)
	t.Cleanup(store.Close)
	return NewSessions(store, "test-secret", time.Hour, false), store
}

func sessionCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	t.Fatalf("expected %s cookie to be set", SessionCookieName)
	return nil
}

func captureSessionID(seen *uuid.UUID) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*seen = GetSessionID(r.Context())
	})
}

func TestSessions_CreatesAndReusesSession(t *testing.T) {
	s, store := newTestSessions(t)

	var first uuid.UUID
	rr := httptest.NewRecorder()
	s.Middleware(captureSessionID(&first)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if first == uuid.Nil {
		t.Fatalf("expected a session ID in context")
	}
	cookie := sessionCookie(t, rr)
	if !cookie.HttpOnly {
		t.Fatalf("expected HttpOnly cookie")
	}

	var second uuid.UUID
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	s.Middleware(captureSessionID(&second)).ServeHTTP(httptest.NewRecorder(), req)

	if second != first {
		t.Fatalf("expected cookie to resolve to the same session")
	}
	if store.Len() != 1 {
		t.Fatalf("expected a single session, got %d", store.Len())
	}
}

func TestSessions_RejectsForeignOrUnknownTokens(t *testing.T) {
	s, store := newTestSessions(t)
	known := store.Create()

	other := NewSessions(store, "another-secret", time.Hour, false)
	forged, _ := other.GenerateToken(known)

	orphan, _ := s.GenerateToken(uuid.New())

	tests := []struct {
		name  string
		value string
	}{
		{"garbage", "not-a-jwt"},
		{"wrong signature", forged},
		{"unknown session", orphan},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var seen uuid.UUID
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tc.value})
			s.Middleware(captureSessionID(&seen)).ServeHTTP(httptest.NewRecorder(), req)

			if seen == uuid.Nil || seen == known {
				t.Fatalf("expected a fresh session, got %s", seen)
			}
		})
	}
}

func TestSessions_ParseTokenExpired(t *testing.T) {
	s, store := newTestSessions(t)
	s.ttl = -time.Minute

	token, err := s.GenerateToken(store.Create())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := s.ParseToken(token); !errors.Is(err, jwt.ErrTokenExpired) {
		t.Fatalf("expected expired token error, got %v", err)
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(RequestIDHeader)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || rr.Header().Get(RequestIDHeader) != seen {
		t.Fatalf("expected generated request ID to be echoed, got %q / %q", seen, rr.Header().Get(RequestIDHeader))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if seen != "abc-123" || rr.Header().Get(RequestIDHeader) != "abc-123" {
		t.Fatalf("expected incoming request ID to be kept, got %q", seen)
	}
}

type failingCounter struct{}

func (failingCounter) Incr(context.Context, string) (int64, error) {
	return 0, errors.New("redis: connection refused")
}

func TestRateLimiter_Middleware(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	t.Cleanup(rl.Close)
	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/query", nil)
		req.RemoteAddr = "10.0.0.1"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}

	if codes[0] != http.StatusNoContent || codes[1] != http.StatusNoContent {
		t.Fatalf("expected first two requests to pass, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Fatalf("expected third request to be limited, got %d", codes[2])
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", nil)
	req.RemoteAddr = "10.0.0.2"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected other client to pass, got %d", rr.Code)
	}
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	rl := &RateLimiter{counter: failingCounter{}, limit: 1}
	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected request to pass when counter fails, got %d", rr.Code)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		remoteAddr string
		expected   string
	}{
		{"10.0.0.1:53412", "10.0.0.1"},
		{"[::1]:8080", "::1"},
		{"10.0.0.1", "10.0.0.1"},
	}

	for _, tc := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = tc.remoteAddr
		if got := ClientIP(req); got != tc.expected {
			t.Errorf("ClientIP(%q) = %q, want %q", tc.remoteAddr, got, tc.expected)
		}
	}
}

func TestMemoryCounter_SweepAndClose(t *testing.T) {
	c := newMemoryCounter(time.Minute)

	c.Incr(context.Background(), "10.0.0.1")
	c.Incr(context.Background(), "10.0.0.2")
	c.visitors["10.0.0.1"].lastSeen = time.Now().Add(-2 * time.Minute)

	c.sweep()

	if _, ok := c.visitors["10.0.0.1"]; ok {
		t.Fatalf("expected stale visitor to be removed")
	}
	if _, ok := c.visitors["10.0.0.2"]; !ok {
		t.Fatalf("expected recent visitor to be kept")
	}

	c.Close()
	c.Close()

	select {
	case <-c.done:
	default:
		t.Fatalf("expected cleanup goroutine to be signalled")
	}
}
