// Package capture turns raw microphone callbacks into fixed-size encoded
// frames for the outbound channel, reporting an instantaneous volume
// level per frame along the way.
package capture

import (
	"log/slog"
	"sync"

	"github.com/vango-go/vai-voice/pkg/audio"
)

// Sink receives encoded capture frames. The session controller is the
// only production implementation.
type Sink interface {
	SendAudio(chunk audio.Chunk) error
}

// Pipeline encodes fixed-size mono frames and forwards them to the
// current sink. When no sink is attached the encoded chunk is dropped,
// not queued; capture is hardware-driven and never applies backpressure.
type Pipeline struct {
	logger *slog.Logger

	// onLevel receives the RMS of every frame for input metering. May be
	// nil.
	onLevel func(float64)

	mu   sync.Mutex
	sink Sink
}

// New creates a capture pipeline. onLevel may be nil.
func New(logger *slog.Logger, onLevel func(float64)) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{logger: logger, onLevel: onLevel}
}

// SetSink attaches the outbound sink. Pass nil to detach (frames are
// dropped until a sink is attached again).
func (p *Pipeline) SetSink(sink Sink) {
	p.mu.Lock()
	p.sink = sink
	p.mu.Unlock()
}

// HandleFrame processes one capture tick: meter, encode, forward.
// Send errors are logged and otherwise ignored (fire-and-forget).
func (p *Pipeline) HandleFrame(samples []float32) {
	if p.onLevel != nil {
		p.onLevel(audio.RMS(samples))
	}

	p.mu.Lock()
	sink := p.sink
	p.mu.Unlock()
	if sink == nil {
		return
	}

	chunk := audio.NewChunk(samples, audio.CaptureSampleRate)
	if err := sink.SendAudio(chunk); err != nil {
		p.logger.Warn("dropping capture frame", "error", err)
	}
}
