package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/vango-go/vai-voice/pkg/gateway/config"
	"github.com/vango-go/vai-voice/pkg/gateway/metrics"
)

type configResponse struct {
	SystemInstruction string `json:"systemInstruction"`
	VoiceName         string `json:"voiceName"`
}

// ConfigHandler serves the session defaults clients load before
// connecting.
type ConfigHandler struct {
	Config  config.Config
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

func (h ConfigHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, r, http.MethodGet)
		return
	}

	resp := configResponse{
		SystemInstruction: h.Config.SystemInstruction,
		VoiceName:         h.Config.VoiceName,
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		if h.Logger != nil {
			h.Logger.Warn("write config response", "error", err)
		}
		return
	}
	if h.Metrics != nil {
		h.Metrics.ConfigServed.Inc()
	}
}
