package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/snaveenk972/learning-platform/internal/auth"
	"github.com/snaveenk972/learning-platform/internal/config"
	"github.com/snaveenk972/learning-platform/internal/model"
)

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc123", "abc123"},
		{"bearer abc123", "abc123"},
		{"Basic abc123", ""},
		{"Bearer", ""},
		{"Bearer  token-with-space", "token-with-space"},
	}
	for _, tc := range cases {
		if got := bearerToken(tc.header); got != tc.want {
			t.Fatalf("bearerToken(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}

func TestStatusForCode(t *testing.T) {
	cases := []struct {
		code string
		want int
	}{
		{"course_not_found", http.StatusNotFound},
		{"enrollment_not_found", http.StatusNotFound},
		{"no_results", http.StatusNotFound},
		{"not_enrolled", http.StatusBadRequest},
		{"no_questions", http.StatusBadRequest},
		{"invalid_progress", http.StatusBadRequest},
		{"already_enrolled", http.StatusConflict},
		{"server_error", http.StatusInternalServerError},
		{"something_else", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := statusForCode(tc.code); got != tc.want {
			t.Fatalf("statusForCode(%q) = %d, want %d", tc.code, got, tc.want)
		}
	}
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/auth/signin", strings.NewReader(`{"usernameOrEmail":"alice","password":"pw","extra":true}`))

	var body signinRequest
	if err := decodeJSON(req, &body); err == nil {
		t.Fatal("expected unknown field to be rejected")
	}
}

func TestMapEnrollmentCompletedAt(t *testing.T) {
	enrolled := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	completed := enrolled.Add(48 * time.Hour)

	enrollment := model.Enrollment{
		ID:         "e-1",
		CourseID:   "c-1",
		Status:     model.EnrollmentStatusCompleted,
		Progress:   100,
		EnrolledAt: enrolled,
	}

	resp := mapEnrollment(enrollment)
	if resp.CompletedAt != nil {
		t.Fatalf("expected nil completedAt, got %d", *resp.CompletedAt)
	}

	enrollment.CompletedAt = &completed
	resp = mapEnrollment(enrollment)
	if resp.CompletedAt == nil || *resp.CompletedAt != completed.Unix() {
		t.Fatalf("completedAt = %v, want %d", resp.CompletedAt, completed.Unix())
	}
}

func testServer() *Server {
	cfg := config.Config{
		JWTSecret:      "test-secret",
		JWTIssuer:      "learning-platform",
		AccessTokenTTL: time.Hour,
	}
	return NewServer(cfg, nil, nil)
}

func TestAuthMiddlewareMissingToken(t *testing.T) {
	s := testServer()
	handler := s.authMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler should not run without a token")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/enrollments/all", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddlewareInvalidToken(t *testing.T) {
	s := testServer()
	handler := s.authMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler should not run with a bad token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/enrollments/all", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddlewarePassesClaims(t *testing.T) {
	s := testServer()

	token, err := auth.NewAccessToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, s.cfg.AccessTokenTTL, auth.Claims{
		UserID:   "user-1",
		Username: "alice",
	})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	var seen *auth.Claims
	handler := s.authMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = claimsFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/enrollments/all", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if seen == nil || seen.UserID != "user-1" || seen.Username != "alice" {
		t.Fatalf("claims = %+v, want user-1/alice", seen)
	}
}

func TestHealthEndpoint(t *testing.T) {
	s := testServer()

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}
}

func TestCatalogRoutesRegistered(t *testing.T) {
	router := testServer().Router().(chi.Router)

	paths := []string{
		"/courses/list",
		"/courses/categories",
		"/courses/difficulty-levels",
		"/courses/duration",
		"/courses/search/go",
		"/courses/category/Web",
		"/courses/difficulty/BEGINNER",
		"/courses/some-course-id",
	}
	for _, path := range paths {
		rctx := chi.NewRouteContext()
		if !router.Match(rctx, http.MethodGet, path) {
			t.Fatalf("GET %s is not routed", path)
		}
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	s := testServer()
	router := s.Router()

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/enrollments/enroll"},
		{http.MethodGet, "/enrollments/all"},
		{http.MethodGet, "/enrollments/stats"},
		{http.MethodPost, "/tests/submit"},
		{http.MethodGet, "/tests/results"},
		{http.MethodGet, "/tests/statistics"},
	}
	for _, tc := range paths {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: status = %d, want %d", tc.method, tc.path, rec.Code, http.StatusUnauthorized)
		}
	}
}
