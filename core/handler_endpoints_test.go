package core

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/caasmo/accounts/config"
)

func TestListEndpointsHandler(t *testing.T) {
	cfg := config.NewDefaultConfig()
	mockApp := &App{}
	mockApp.SetConfigProvider(config.NewProvider(cfg))

	req := httptest.NewRequest("GET", "/api/endpoints", nil)
	rr := httptest.NewRecorder()
	http.HandlerFunc(mockApp.ListEndpointsHandler).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusOK)
	}

	var body struct {
		JsonBasic
		Data map[string]string `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("could not unmarshal response body: %v", err)
	}
	if body.Code != CodeOkEndpoints {
		t.Errorf("expected code %q, got %q", CodeOkEndpoints, body.Code)
	}
	if body.Data["login"] != cfg.Endpoints.Login || body.Data["get_user"] != cfg.Endpoints.GetUser {
		t.Errorf("unexpected endpoints %v", body.Data)
	}
	if _, ok := body.Data["metrics"]; ok {
		t.Error("metrics endpoint must not be listed")
	}
}

func TestNotFoundHandler(t *testing.T) {
	rr := httptest.NewRecorder()
	(&App{}).NotFoundHandler(rr, httptest.NewRequest("GET", "/nope", nil))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if rr.Body.String() != string(errorNotFound.body) {
		t.Errorf("unexpected body %s", rr.Body.String())
	}
}
