package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/marketplace/backend/internal/logging"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func serve(p Pinger) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	New(p, logging.Nop()).RegisterRoutes(r)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	return resp
}

func TestHealthOK(t *testing.T) {
	resp := serve(pingerFunc(func(context.Context) error { return nil }))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestHealthStoreDown(t *testing.T) {
	resp := serve(pingerFunc(func(context.Context) error { return errors.New("closed") }))
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
}
