// Command vai-voice is a terminal voice client: it streams microphone
// audio to the realtime speech service and plays the spoken replies,
// printing both sides of the transcript as it goes.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/vango-go/vai-voice/internal/dotenv"
	"github.com/vango-go/vai-voice/pkg/audio"
	"github.com/vango-go/vai-voice/pkg/capture"
	"github.com/vango-go/vai-voice/pkg/clientconfig"
	"github.com/vango-go/vai-voice/pkg/device"
	"github.com/vango-go/vai-voice/pkg/playback"
	"github.com/vango-go/vai-voice/pkg/session"
)

type options struct {
	model     string
	configURL string
	envFile   string
	transport string
	voice     string
	dumpWAV   string
	verbose   bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("vai-voice", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts options
	fs.StringVar(&opts.model, "model", session.DefaultModel, "model to converse with")
	fs.StringVar(&opts.configURL, "config-url", "", "config service URL (e.g. http://localhost:8081/config); empty uses built-in defaults")
	fs.StringVar(&opts.envFile, "env", ".env", "dotenv file to load")
	fs.StringVar(&opts.transport, "transport", "sdk", "live transport: sdk or websocket")
	fs.StringVar(&opts.voice, "voice", "", "override the configured voice")
	fs.StringVar(&opts.dumpWAV, "dump-wav", "", "write received model audio to this WAV file on exit")
	fs.BoolVar(&opts.verbose, "v", false, "debug logging")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

func apiKeyFromEnv() string {
	for _, key := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return ""
}

func newDialer(opts options, apiKey string) (session.Dialer, error) {
	switch opts.transport {
	case "sdk":
		return &session.GeminiDialer{APIKey: apiKey}, nil
	case "websocket":
		return &session.WebSocketDialer{APIKey: apiKey}, nil
	default:
		return nil, fmt.Errorf("unknown transport %q (want sdk or websocket)", opts.transport)
	}
}

// recordingOutput tees scheduled buffers into a PCM capture so the
// session can be dumped to a WAV file afterwards.
type recordingOutput struct {
	playback.Output

	mu  sync.Mutex
	pcm []byte
}

func (r *recordingOutput) Start(buf playback.Buffer, when float64, onEnded func()) (playback.Handle, error) {
	r.mu.Lock()
	r.pcm = append(r.pcm, audio.EncodeFrame(buf.Samples)...)
	r.mu.Unlock()
	return r.Output.Start(buf, when, onEnded)
}

func (r *recordingOutput) dump(path string) error {
	r.mu.Lock()
	pcm := r.pcm
	r.mu.Unlock()
	return os.WriteFile(path, audio.PCMToWAVDefault(pcm), 0o644)
}

func run(ctx context.Context, opts options, logger *slog.Logger, stdout io.Writer) error {
	apiKey := apiKeyFromEnv()
	if apiKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is not set")
	}

	dialer, err := newDialer(opts, apiKey)
	if err != nil {
		return err
	}

	cfg := clientconfig.Defaults()
	if opts.configURL != "" {
		cfg, _ = clientconfig.Fetch(ctx, logger, opts.configURL)
	}
	if opts.voice != "" {
		cfg.VoiceName = opts.voice
	}

	devices, err := device.Open(logger)
	if err != nil {
		return fmt.Errorf("open audio devices: %w", err)
	}
	defer devices.Close()

	var out playback.Output = devices.Speaker
	var rec *recordingOutput
	if opts.dumpWAV != "" {
		rec = &recordingOutput{Output: out}
		out = rec
	}

	scheduler := playback.New(out, func(playing bool) {
		if playing {
			fmt.Fprintln(stdout, "[assistant speaking]")
		}
	})
	pipeline := capture.New(logger, nil)

	var lastRole session.Role
	controller := session.NewController(logger, dialer, scheduler, pipeline, session.Callbacks{
		OnState: func(state session.State) {
			logger.Info("session state", "state", state)
		},
		OnTranscript: func(role session.Role, text string) {
			if text == "" {
				if lastRole != "" {
					fmt.Fprintln(stdout)
				}
				lastRole = ""
				return
			}
			if role != lastRole && lastRole != "" {
				fmt.Fprintln(stdout)
			}
			lastRole = role
			// Each fragment carries the full turn text; rewrite the line.
			fmt.Fprintf(stdout, "\r%s: %s", role, text)
		},
		OnError: func(err error) {
			logger.Error("session error", "error", err)
		},
	})

	framer := capture.NewFramer(audio.FrameSize, pipeline.HandleFrame)
	mic, err := devices.StartMic(framer.Push)
	if err != nil {
		return fmt.Errorf("start microphone: %w", err)
	}
	defer mic.Close()

	err = controller.Connect(ctx, session.ChannelConfig{
		Model:             opts.model,
		SystemInstruction: cfg.SystemInstruction,
		VoiceName:         cfg.VoiceName,
	})
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	fmt.Fprintln(stdout, "Connected. Speak into the microphone; Ctrl-C to hang up.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-ctx.Done():
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	}

	controller.Disconnect()

	if rec != nil {
		if err := rec.dump(opts.dumpWAV); err != nil {
			return fmt.Errorf("write wav dump: %w", err)
		}
		fmt.Fprintf(stdout, "wrote %s\n", opts.dumpWAV)
	}
	return nil
}

func runMain(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return 2
	}

	if err := dotenv.Load(opts.envFile); err != nil {
		fmt.Fprintf(stderr, "vai-voice: %v\n", err)
		return 1
	}

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if err := run(ctx, opts, logger, stdout); err != nil {
		fmt.Fprintf(stderr, "vai-voice: %v\n", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(runMain(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
