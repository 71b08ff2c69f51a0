package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vango-go/vai-voice/pkg/gateway/config"
	"github.com/vango-go/vai-voice/pkg/gateway/metrics"
)

func testConfig() config.Config {
	return config.Config{
		SystemInstruction: "Be helpful.",
		VoiceName:         "Puck",
	}
}

func TestConfigHandler_ServesSessionDefaults(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	h := ConfigHandler{Config: testConfig(), Metrics: m}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/config", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}

	var resp struct {
		SystemInstruction string `json:"systemInstruction"`
		VoiceName         string `json:"voiceName"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.SystemInstruction != "Be helpful." {
		t.Errorf("systemInstruction = %q", resp.SystemInstruction)
	}
	if resp.VoiceName != "Puck" {
		t.Errorf("voiceName = %q, want Puck", resp.VoiceName)
	}
}

func TestConfigHandler_MethodNotAllowed(t *testing.T) {
	h := ConfigHandler{Config: testConfig()}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/config", nil))

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rr.Code)
	}
	if got := rr.Header().Get("Allow"); got != http.MethodGet {
		t.Errorf("Allow = %q, want GET", got)
	}
}
