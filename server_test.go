package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestHealthzRespondsWithoutDependencies(t *testing.T) {
	router := newRouter()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestCreatePurchaseMalformedBodyIsBadRequest(t *testing.T) {
	router := newRouter()
	req := httptest.NewRequest(http.MethodPost, "/api/purchases", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("malformed body must be a client error, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "VALIDATION") {
		t.Fatalf("expected validation kind in body: %s", body)
	}
	if strings.Contains(body, "retryable") {
		t.Fatalf("a bind failure must not carry a retryable hint: %s", body)
	}
}

func TestCreatePurchaseBadDateFormatIsBadRequest(t *testing.T) {
	router := newRouter()
	req := httptest.NewRequest(http.MethodPost, "/api/purchases",
		strings.NewReader(`{"supplier_id":1,"purchase_date":"25/03/2026","payment_method":"Cash"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("unparseable date must be a client error, got %d", w.Code)
	}
}

func TestCreatePurchaseMissingRequiredFieldsIsBadRequest(t *testing.T) {
	router := newRouter()
	req := httptest.NewRequest(http.MethodPost, "/api/purchases", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty input, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "fields") {
		t.Fatalf("expected per-field validation details: %s", w.Body.String())
	}
}

func TestResourceRouteRejectsNonNumericId(t *testing.T) {
	router := newRouter()
	for _, path := range []string{
		"/api/purchases/abc",
		"/api/raw-materials/abc",
		"/api/supplies/abc",
		"/api/finished-goods/abc",
		"/api/credit-cards/abc",
		"/api/bank-accounts/abc",
	} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", path, w.Code)
		}
	}
}
