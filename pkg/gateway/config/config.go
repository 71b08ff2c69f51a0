package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/vango-go/vai-voice/pkg/core"
)

type Config struct {
	Addr string

	// Session settings served to clients on GET /config.
	SystemInstruction string
	VoiceName         string

	// Optional path to a file whose contents replace SystemInstruction.
	// Lets operators edit the prompt without re-deploying.
	SystemInstructionFile string

	// CORS allowlist. Empty => any origin is allowed; the config
	// endpoint serves no secrets.
	CORSAllowedOrigins map[string]struct{}

	// Operational defaults
	ReadHeaderTimeout   time.Duration
	ReadTimeout         time.Duration
	ShutdownGracePeriod time.Duration
}

const defaultSystemInstruction = "You are a friendly and helpful voice assistant. " +
	"Keep your responses concise and conversational."

func LoadFromEnv() (Config, error) {
	cfg := Config{
		Addr:                  envOr("VAI_VOICE_ADDR", ":8081"),
		SystemInstruction:     envOr("VAI_VOICE_SYSTEM_INSTRUCTION", defaultSystemInstruction),
		VoiceName:             envOr("VAI_VOICE_NAME", core.DefaultVoice),
		SystemInstructionFile: strings.TrimSpace(os.Getenv("VAI_VOICE_SYSTEM_INSTRUCTION_FILE")),
		CORSAllowedOrigins:    make(map[string]struct{}),
		ReadHeaderTimeout:     envDurationOr("VAI_VOICE_READ_HEADER_TIMEOUT", 10*time.Second),
		ReadTimeout:           envDurationOr("VAI_VOICE_READ_TIMEOUT", 30*time.Second),
		ShutdownGracePeriod:   envDurationOr("VAI_VOICE_SHUTDOWN_GRACE_PERIOD", 30*time.Second),
	}

	for _, origin := range splitCSV(os.Getenv("VAI_VOICE_CORS_ORIGINS")) {
		cfg.CORSAllowedOrigins[origin] = struct{}{}
	}

	if cfg.SystemInstructionFile != "" {
		raw, err := os.ReadFile(cfg.SystemInstructionFile)
		if err != nil {
			return Config{}, fmt.Errorf("read VAI_VOICE_SYSTEM_INSTRUCTION_FILE: %w", err)
		}
		text := strings.TrimSpace(string(raw))
		if text == "" {
			return Config{}, fmt.Errorf("VAI_VOICE_SYSTEM_INSTRUCTION_FILE %q is empty", cfg.SystemInstructionFile)
		}
		cfg.SystemInstruction = text
	}

	if strings.TrimSpace(cfg.SystemInstruction) == "" {
		return Config{}, fmt.Errorf("VAI_VOICE_SYSTEM_INSTRUCTION must not be empty")
	}
	if !core.ValidVoice(cfg.VoiceName) {
		return Config{}, fmt.Errorf("VAI_VOICE_NAME %q is not a known voice (one of %s)",
			cfg.VoiceName, strings.Join(core.VoiceNames, ", "))
	}
	if cfg.ReadHeaderTimeout <= 0 {
		return Config{}, fmt.Errorf("VAI_VOICE_READ_HEADER_TIMEOUT must be > 0")
	}
	if cfg.ReadTimeout <= 0 {
		return Config{}, fmt.Errorf("VAI_VOICE_READ_TIMEOUT must be > 0")
	}
	if cfg.ShutdownGracePeriod <= 0 {
		return Config{}, fmt.Errorf("VAI_VOICE_SHUTDOWN_GRACE_PERIOD must be > 0")
	}

	return cfg, nil
}

func envOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envDurationOr(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}

func splitCSV(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
