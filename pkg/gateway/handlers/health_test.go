package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vango-go/vai-voice/pkg/gateway/config"
)

func TestHealthHandler_OK(t *testing.T) {
	rr := httptest.NewRecorder()
	HealthHandler{}.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if rr.Body.String() != "ok\n" {
		t.Errorf("body = %q, want ok", rr.Body.String())
	}
}

func TestReadyHandler_OK(t *testing.T) {
	h := ReadyHandler{Config: config.Config{
		SystemInstruction: "Be helpful.",
		VoiceName:         "Puck",
	}}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var resp struct {
		OK     bool     `json:"ok"`
		Issues []string `json:"issues"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.OK || len(resp.Issues) != 0 {
		t.Errorf("resp = %+v, want ok with no issues", resp)
	}
}

func TestReadyHandler_ReportsIssues(t *testing.T) {
	h := ReadyHandler{Config: config.Config{
		SystemInstruction: "",
		VoiceName:         "NotAVoice",
	}}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}
	var resp struct {
		OK     bool     `json:"ok"`
		Issues []string `json:"issues"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.OK || len(resp.Issues) != 2 {
		t.Errorf("resp = %+v, want 2 issues", resp)
	}
}
