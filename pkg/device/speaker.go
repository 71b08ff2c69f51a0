package device

import (
	"fmt"
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"

	"github.com/vango-go/vai-voice/pkg/audio"
	"github.com/vango-go/vai-voice/pkg/core"
	"github.com/vango-go/vai-voice/pkg/playback"
)

// Speaker plays scheduled buffers through oto. It implements
// playback.Output with a consumption-based clock: Now advances as oto
// drains bytes, so scheduled start times line up with what the
// hardware has actually played.
type Speaker struct {
	otoCtx *oto.Context
	rate   int

	mu       sync.Mutex
	queue    []*segment
	consumed int64 // bytes handed to oto so far
	player   *oto.Player
	closed   bool
}

type segment struct {
	data      []byte
	pos       int
	cancelled bool
	onEnded   func()
}

func newSpeaker(ctx *oto.Context, rate int) *Speaker {
	return &Speaker{otoCtx: ctx, rate: rate}
}

// Now reports the stream position in seconds.
func (s *Speaker) Now() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.secondsAt(s.consumed)
}

// Start schedules buf at stream time when. Earlier times play
// immediately; later times are padded with silence so back-to-back
// buffers stay gap-free. onEnded fires from the playback goroutine,
// never synchronously.
func (s *Speaker) Start(buf playback.Buffer, when float64, onEnded func()) (playback.Handle, error) {
	if buf.Channels != 1 {
		return nil, core.NewMalformedPayloadError(fmt.Sprintf("unsupported channel count %d", buf.Channels))
	}

	samples := buf.Samples
	if buf.SampleRate != s.rate {
		samples = resampleLinear(samples, buf.SampleRate, s.rate)
	}
	data := audio.EncodeFrame(samples)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, core.NewChannelError("speaker is closed")
	}

	if pad := s.bytesAt(when) - s.tailLocked(); pad > 0 {
		s.queue = append(s.queue, &segment{data: make([]byte, pad)})
	}

	seg := &segment{data: data, onEnded: onEnded}
	s.queue = append(s.queue, seg)

	// A nil oto context means headless mode; callers drive Read themselves.
	if s.player == nil && s.otoCtx != nil {
		s.player = s.otoCtx.NewPlayer(s)
		s.player.Play()
	}

	return &speakerHandle{spk: s, seg: seg}, nil
}

type speakerHandle struct {
	spk *Speaker
	seg *segment
}

func (h *speakerHandle) Stop() {
	h.spk.mu.Lock()
	h.seg.cancelled = true
	h.spk.mu.Unlock()
}

// Read implements io.Reader for oto.Player. It pulls queued audio and
// fills with silence when idle so the player never starves.
func (s *Speaker) Read(p []byte) (int, error) {
	var ended []func()

	s.mu.Lock()
	n := 0
	for n < len(p) && len(s.queue) > 0 {
		seg := s.queue[0]
		if seg.cancelled {
			s.queue = s.queue[1:]
			continue
		}
		c := copy(p[n:], seg.data[seg.pos:])
		seg.pos += c
		n += c
		s.consumed += int64(c)
		if seg.pos == len(seg.data) {
			s.queue = s.queue[1:]
			if seg.onEnded != nil {
				ended = append(ended, seg.onEnded)
			}
		}
	}
	s.mu.Unlock()

	for _, fn := range ended {
		fn()
	}

	// Idle filler is not counted into the clock.
	for i := n; i < len(p); i++ {
		p[i] = 0
	}
	return len(p), nil
}

func (s *Speaker) Close() {
	s.mu.Lock()
	s.closed = true
	s.queue = nil
	player := s.player
	s.player = nil
	s.mu.Unlock()

	if player != nil {
		_ = player.Close()
	}
}

// tailLocked is the stream position at which the queue currently ends.
func (s *Speaker) tailLocked() int64 {
	tail := s.consumed
	for _, seg := range s.queue {
		if seg.cancelled {
			continue
		}
		tail += int64(len(seg.data) - seg.pos)
	}
	return tail
}

func (s *Speaker) bytesAt(seconds float64) int64 {
	return int64(math.Round(seconds*float64(s.rate))) * 2
}

func (s *Speaker) secondsAt(bytes int64) float64 {
	return float64(bytes) / float64(s.rate*2)
}

func resampleLinear(in []float32, from, to int) []float32 {
	if from == to || from <= 0 || len(in) == 0 {
		return in
	}
	outLen := int(math.Round(float64(len(in)) * float64(to) / float64(from)))
	if outLen == 0 {
		return nil
	}
	out := make([]float32, outLen)
	step := float64(from) / float64(to)
	for i := range out {
		pos := float64(i) * step
		j := int(pos)
		if j >= len(in)-1 {
			out[i] = in[len(in)-1]
			continue
		}
		frac := float32(pos - float64(j))
		out[i] = in[j]*(1-frac) + in[j+1]*frac
	}
	return out
}
