package client

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// stubBackend is a minimal authkit backend speaking the envelope shapes.
type stubBackend struct {
	t   *testing.T
	srv *httptest.Server

	mu       sync.Mutex
	requests []*http.Request
	bodies   []map[string]any
	refresh  string
}

const (
	stubToken   = "access-1"
	stubRefresh = "refresh-1"
)

func newStubBackend(t *testing.T) *stubBackend {
	t.Helper()
	b := &stubBackend{t: t, refresh: stubRefresh}

	r := chi.NewRouter()
	r.Use(b.record)

	r.Post("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		body := b.lastBody()
		if body["password"] != "123456" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "bad credentials"})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: RefreshCookie, Value: b.refresh, HttpOnly: true})
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{
			"token": stubToken,
			"user":  map[string]any{"id": "u-1", "email": body["email"], "roles": []string{"admin"}},
		}})
	})
	r.Post("/api/auth/register", func(w http.ResponseWriter, r *http.Request) {
		body := b.lastBody()
		if body["email"] == "taken@example.com" {
			writeJSON(w, http.StatusConflict, map[string]any{
				"error": map[string]any{"message": "email already exists"},
				"type":  "CONFLICT",
			})
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"data": map[string]any{"id": "u-9", "email": body["email"], "full_name": body["full_name"]}})
	})
	r.Post("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		ck, err := r.Cookie(RefreshCookie)
		if err != nil || ck.Value != b.refresh {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "invalid refresh token"})
			return
		}
		b.refresh = "refresh-2"
		http.SetCookie(w, &http.Cookie{Name: RefreshCookie, Value: b.refresh})
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"token": "access-2"}})
	})
	r.Post("/api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: RefreshCookie, Value: "", MaxAge: -1})
		writeJSON(w, http.StatusOK, map[string]any{"message": "logged out"})
	})

	r.Group(func(r chi.Router) {
		r.Use(b.requireBearer)
		r.Get("/api/auth/profile", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"id": "u-1", "email": "admin@gmail.com", "full_name": "Admin"}})
		})
		r.Get("/api/auth/profile/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, _ := url.PathUnescape(chi.URLParam(r, "id"))
			writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{
				"user":  map[string]any{"id": "u-2", "email": id},
				"roles": []map[string]any{{"role_id": 3, "role_name": "author"}},
			}})
		})
		r.Put("/api/auth/profile/{id}", func(w http.ResponseWriter, r *http.Request) {
			body := b.lastBody()
			writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"id": chi.URLParam(r, "id"), "full_name": body["full_name"]}})
		})
		r.Delete("/api/auth/profile/{id}", func(w http.ResponseWriter, r *http.Request) {
			if chi.URLParam(r, "id") == "missing" {
				writeJSON(w, http.StatusNotFound, map[string]any{"error": map[string]any{"message": "user not found"}})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"message": "deleted"})
		})
		r.Get("/api/user", func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("page") == "" {
				writeJSON(w, http.StatusOK, map[string]any{"data": []map[string]any{{"id": "u-1"}, {"id": "u-2"}}})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{
				"users":              []map[string]any{{"id": "u-3", "email": "c@example.com"}},
				"pagination_enabled": true,
				"total":              11, "page": 2, "page_size": 5, "total_pages": 3,
			}})
		})
		r.Get("/api/roles", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"data": []map[string]any{
				{"id": 1, "name": "admin", "is_system": true},
				{"id": 2, "name": "editor", "is_system": false},
			}})
		})
		r.Post("/api/roles", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusCreated, map[string]any{"data": b.lastBody()})
		})
		r.Delete("/api/roles/{id}", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"message": "deleted"})
		})
		r.Get("/api/roles/{x}/users", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"data": []map[string]any{{"id": "u-5", "email": "e@example.com", "roles": []string{chi.URLParam(r, "x")}}}})
		})
		r.Post("/api/users/{u}/roles/{r}", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"user_id": chi.URLParam(r, "u"), "role_id": chi.URLParam(r, "r")}})
		})
		r.Delete("/api/users/{u}/roles/{r}", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"message": "removed"})
		})
		r.Put("/api/users/{u}/roles", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"data": b.lastBody()})
		})
		r.Get("/api/rules", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"data": []map[string]any{
				{"id": "GET|/api/bar", "type": "ALLOW", "fixed": true, "roles": []int{1, 2}},
				{"id": 7, "type": "PUBLIC", "fixed": false, "roles": []int{}},
			}})
		})
		r.Get("/api/rules/role/{x}", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"data": []map[string]any{{"id": "POST|/api/x", "type": "FORBID", "roles": []int{2}}}})
		})
		r.Get("/api/rules/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, err := url.QueryUnescape(chi.URLParam(r, "id"))
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"id": id, "type": "ALLOW", "roles": []int{1}}})
		})
		r.Put("/api/rules/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, _ := url.QueryUnescape(chi.URLParam(r, "id"))
			body := b.lastBody()
			writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"id": id, "type": body["type"], "roles": []int{1}}})
		})
	})

	r.Get("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "<html>oops</html>")
	})

	b.srv = httptest.NewServer(r)
	t.Cleanup(b.srv.Close)
	return b
}

func (b *stubBackend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if r.Body != nil {
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, &body)
		}
		b.mu.Lock()
		b.requests = append(b.requests, r)
		b.bodies = append(b.bodies, body)
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (b *stubBackend) requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": map[string]any{"message": "missing token"}})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *stubBackend) lastRequest() *http.Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.requests) == 0 {
		b.t.Fatal("no request recorded")
	}
	return b.requests[len(b.requests)-1]
}

func (b *stubBackend) lastBody() map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.bodies) == 0 {
		return nil
	}
	return b.bodies[len(b.bodies)-1]
}

func (b *stubBackend) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}

func (b *stubBackend) client(t *testing.T, token string) *Client {
	t.Helper()
	c, err := New(Options{BaseURL: b.srv.URL, Token: token, HTTPClient: b.srv.Client()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
