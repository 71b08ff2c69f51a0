// Package clientconfig fetches session settings from the config
// service. A missing or broken service never blocks a session: every
// failure path falls back to the built-in defaults.
package clientconfig

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/vango-go/vai-voice/pkg/core"
)

// FetchTimeout bounds the config request. Sessions start with defaults
// rather than wait longer than this.
const FetchTimeout = 3000 * time.Millisecond

// DefaultSystemInstruction is used when the config service is
// unreachable or returns an empty instruction.
const DefaultSystemInstruction = "You are a friendly and helpful voice assistant. " +
	"Keep your responses concise and conversational."

// Config is the session configuration served by the config endpoint.
type Config struct {
	SystemInstruction string `json:"systemInstruction"`
	VoiceName         string `json:"voiceName"`
}

// Defaults returns the built-in configuration used when no service is
// available.
func Defaults() Config {
	return Config{
		SystemInstruction: DefaultSystemInstruction,
		VoiceName:         core.DefaultVoice,
	}
}

// Fetch retrieves the session configuration from url. Any failure
// (network, non-200, malformed body, timeout) is logged and the
// built-in defaults are returned; the error is informational only and
// callers may ignore it.
func Fetch(ctx context.Context, logger *slog.Logger, url string) (Config, error) {
	ctx, cancel := context.WithTimeout(ctx, FetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fallback(logger, core.NewConfigUnavailableError(fmt.Sprintf("build config request: %v", err)))
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fallback(logger, core.NewConfigUnavailableError(fmt.Sprintf("fetch config: %v", err)))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fallback(logger, core.NewConfigUnavailableError(fmt.Sprintf("config service returned %d", resp.StatusCode)))
	}

	var cfg Config
	if err := json.NewDecoder(resp.Body).Decode(&cfg); err != nil {
		return fallback(logger, core.NewConfigUnavailableError(fmt.Sprintf("decode config: %v", err)))
	}

	return sanitize(logger, cfg), nil
}

func fallback(logger *slog.Logger, err error) (Config, error) {
	logger.Warn("config fetch failed, using defaults", "error", err)
	return Defaults(), err
}

func sanitize(logger *slog.Logger, cfg Config) Config {
	if cfg.SystemInstruction == "" {
		cfg.SystemInstruction = DefaultSystemInstruction
	}
	if !core.ValidVoice(cfg.VoiceName) {
		if cfg.VoiceName != "" {
			logger.Warn("unknown voice in config, using default",
				"voice", cfg.VoiceName, "default", core.DefaultVoice)
		}
		cfg.VoiceName = core.CanonicalVoice(cfg.VoiceName)
	}
	return cfg
}
