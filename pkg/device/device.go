// Package device binds the playback and capture pipelines to real
// audio hardware via malgo (microphone) and oto (speaker). Devices are
// opened once per process and reused across session reconnects.
package device

import (
	"fmt"
	"log/slog"

	"github.com/ebitengine/oto/v3"
	"github.com/gen2brain/malgo"

	"github.com/vango-go/vai-voice/pkg/audio"
	"github.com/vango-go/vai-voice/pkg/core"
)

// Devices owns the process-wide audio contexts. Open them once; oto in
// particular cannot be re-initialized after Close on some platforms.
type Devices struct {
	logger   *slog.Logger
	malgoCtx *malgo.AllocatedContext
	otoCtx   *oto.Context

	Speaker *Speaker
}

// Open initializes both audio contexts and the speaker. Fails with a
// permission error when the OS denies device access.
func Open(logger *slog.Logger) (*Devices, error) {
	if logger == nil {
		logger = slog.Default()
	}

	malgoConfig := malgo.ContextConfig{}
	malgoConfig.ThreadPriority = malgo.ThreadPriorityRealtime

	malgoCtx, err := malgo.InitContext(nil, malgoConfig, nil)
	if err != nil {
		return nil, core.NewPermissionDeniedError(fmt.Sprintf("init capture context: %v", err))
	}

	// At 24kHz mono 16-bit: 4800 bytes = 100ms of audio. Smaller
	// buffer = lower latency but risk of glitches.
	otoOpts := &oto.NewContextOptions{
		SampleRate:   audio.PlaybackSampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   4800,
	}
	otoCtx, ready, err := oto.NewContext(otoOpts)
	if err != nil {
		_ = malgoCtx.Uninit()
		return nil, core.NewPermissionDeniedError(fmt.Sprintf("init speaker: %v", err))
	}
	<-ready

	d := &Devices{
		logger:   logger,
		malgoCtx: malgoCtx,
		otoCtx:   otoCtx,
		Speaker:  newSpeaker(otoCtx, audio.PlaybackSampleRate),
	}
	return d, nil
}

// StartMic opens the capture device and begins delivering sample
// frames to onSamples from the audio thread. Callers stop it via
// Mic.Close.
func (d *Devices) StartMic(onSamples func([]float32)) (*Mic, error) {
	return startMic(d.malgoCtx.Context, d.logger, onSamples)
}

func (d *Devices) Close() {
	if d.Speaker != nil {
		d.Speaker.Close()
	}
	if d.malgoCtx != nil {
		_ = d.malgoCtx.Uninit()
		d.malgoCtx.Free()
	}
}
