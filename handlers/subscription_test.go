package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newSubscriptionRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/subscription", AddSubscriptionMinutes)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAddSubscriptionMinutesRejectsUnknownPlan(t *testing.T) {
	r := newSubscriptionRouter()
	w := postJSON(t, r, "/subscription", `{"planId":"platinum"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestAddSubscriptionMinutesRequiresPlanOrMinutes(t *testing.T) {
	r := newSubscriptionRouter()
	for _, body := range []string{`{}`, `not json`} {
		w := postJSON(t, r, "/subscription", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want %d", body, w.Code, http.StatusBadRequest)
		}
	}
}

func TestAddSubscriptionMinutesRejectsNonPositiveMinutes(t *testing.T) {
	r := newSubscriptionRouter()
	for _, body := range []string{`{"minutes":0}`, `{"minutes":-10}`} {
		w := postJSON(t, r, "/subscription", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want %d", body, w.Code, http.StatusBadRequest)
		}
	}
}
