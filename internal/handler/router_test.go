package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zhouzirui/pocket-coach/internal/model/persona"
	"github.com/zhouzirui/pocket-coach/internal/testutil"
)

func TestRouterMountsAPI(t *testing.T) {
	store := testutil.NewStore(t)
	gateway := testutil.NewOllamaStub(t, http.StatusOK, `{}`).Gateway()
	router := NewRouter(store, gateway, persona.Friendly)

	for _, path := range []string{"/healthz", "/api/personas", "/api/starters", "/api/messages"} {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("GET %s: expected 200, got %d", path, resp.Code)
		}
		if resp.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Fatalf("GET %s: missing CORS header", path)
		}
	}

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/unknown", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
