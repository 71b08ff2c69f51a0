package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/vango-go/vai-voice/pkg/core"
	"github.com/vango-go/vai-voice/pkg/gateway/config"
)

type HealthHandler struct{}

func (h HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

type ReadyHandler struct {
	Config config.Config
}

func (h ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	type readyResp struct {
		OK     bool     `json:"ok"`
		Voice  string   `json:"voice"`
		Issues []string `json:"issues,omitempty"`
	}

	issues := make([]string, 0, 2)

	if strings.TrimSpace(h.Config.SystemInstruction) == "" {
		issues = append(issues, "system instruction is empty")
	}
	if !core.ValidVoice(h.Config.VoiceName) {
		issues = append(issues, "voice name is not a known voice")
	}

	resp := readyResp{
		OK:     len(issues) == 0,
		Voice:  h.Config.VoiceName,
		Issues: issues,
	}

	status := http.StatusOK
	if !resp.OK {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
