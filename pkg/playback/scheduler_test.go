package playback

import (
	"sync"
	"testing"

	"github.com/vango-go/vai-voice/pkg/audio"
)

// fakeOutput is a manually-clocked Output that records every start.
type fakeOutput struct {
	mu      sync.Mutex
	now     float64
	started []*fakeHandle
}

type fakeHandle struct {
	buf     Buffer
	when    float64
	onEnded func()
	stopped bool
	ended   bool
}

func (h *fakeHandle) Stop() {
	// Tolerate Stop on a finished buffer.
	if h.ended {
		return
	}
	h.stopped = true
}

func (o *fakeOutput) Now() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.now
}

func (o *fakeOutput) SetNow(t float64) {
	o.mu.Lock()
	o.now = t
	o.mu.Unlock()
}

func (o *fakeOutput) Start(buf Buffer, when float64, onEnded func()) (Handle, error) {
	h := &fakeHandle{buf: buf, when: when, onEnded: onEnded}
	o.mu.Lock()
	o.started = append(o.started, h)
	o.mu.Unlock()
	return h, nil
}

// finish simulates natural completion of the i-th started buffer.
func (o *fakeOutput) finish(i int) {
	o.mu.Lock()
	h := o.started[i]
	o.mu.Unlock()
	h.ended = true
	h.onEnded()
}

// pcm returns an encoded chunk of n zero samples.
func pcm(n int) []byte {
	return audio.EncodeFrame(make([]float32, n))
}

func TestEnqueue_BackToBack(t *testing.T) {
	out := &fakeOutput{}
	s := New(out, nil)

	// 2400 samples at 24kHz mono = 100ms.
	if err := s.Enqueue(pcm(2400), 24000, 1); err != nil {
		t.Fatalf("Enqueue A: %v", err)
	}
	if err := s.Enqueue(pcm(4800), 24000, 1); err != nil {
		t.Fatalf("Enqueue B: %v", err)
	}

	a, b := out.started[0], out.started[1]
	if a.when != 0 {
		t.Errorf("bufA start = %v, want 0", a.when)
	}
	if want := a.when + a.buf.Duration(); b.when != want {
		t.Errorf("bufB start = %v, want %v (no gap, no overlap)", b.when, want)
	}
	if got := s.Cursor(); got != b.when+b.buf.Duration() {
		t.Errorf("cursor = %v, want %v", got, b.when+b.buf.Duration())
	}
}

func TestEnqueue_BackToBackWithClockJitter(t *testing.T) {
	out := &fakeOutput{}
	s := New(out, nil)

	out.SetNow(1.0)
	if err := s.Enqueue(pcm(2400), 24000, 1); err != nil {
		t.Fatalf("Enqueue A: %v", err)
	}
	// Output clock is still before bufA's start; bufB must not leave a gap.
	out.SetNow(1.0)
	if err := s.Enqueue(pcm(2400), 24000, 1); err != nil {
		t.Fatalf("Enqueue B: %v", err)
	}

	a, b := out.started[0], out.started[1]
	if a.when != 1.0 {
		t.Errorf("bufA start = %v, want 1.0", a.when)
	}
	if want := a.when + a.buf.Duration(); b.when != want {
		t.Errorf("bufB start = %v, want %v", b.when, want)
	}
}

func TestEnqueue_NeverInThePast(t *testing.T) {
	out := &fakeOutput{}
	s := New(out, nil)

	if err := s.Enqueue(pcm(2400), 24000, 1); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	// Clock ran past the reserved time; next buffer starts at the clock.
	out.SetNow(5.0)
	if err := s.Enqueue(pcm(2400), 24000, 1); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	if got := out.started[1].when; got != 5.0 {
		t.Errorf("start = %v, want 5.0", got)
	}
}

func TestFlush_StopsActiveAndResetsCursor(t *testing.T) {
	out := &fakeOutput{}
	s := New(out, nil)

	if err := s.Enqueue(pcm(2400), 24000, 1); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := s.Enqueue(pcm(2400), 24000, 1); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if got := s.ActiveCount(); got != 2 {
		t.Fatalf("ActiveCount = %d, want 2", got)
	}

	s.Flush()

	if got := s.ActiveCount(); got != 0 {
		t.Errorf("ActiveCount after flush = %d, want 0", got)
	}
	if got := s.Cursor(); got != 0 {
		t.Errorf("cursor after flush = %v, want 0", got)
	}
	for i, h := range out.started {
		if !h.stopped {
			t.Errorf("buffer %d not stopped", i)
		}
	}

	// Next enqueue starts at max(0, current output time).
	out.SetNow(3.0)
	if err := s.Enqueue(pcm(2400), 24000, 1); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if got := out.started[2].when; got != 3.0 {
		t.Errorf("start after flush = %v, want 3.0", got)
	}
}

func TestFlush_ToleratesFinishedBuffers(t *testing.T) {
	out := &fakeOutput{}
	s := New(out, nil)

	if err := s.Enqueue(pcm(2400), 24000, 1); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	out.finish(0)

	// The finished buffer already left the active set; Flush must not
	// panic or double-stop.
	s.Flush()
	if out.started[0].stopped {
		t.Error("finished buffer was stopped again")
	}
}

func TestPlayingSignals(t *testing.T) {
	out := &fakeOutput{}
	var signals []bool
	s := New(out, func(playing bool) { signals = append(signals, playing) })

	if err := s.Enqueue(pcm(2400), 24000, 1); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := s.Enqueue(pcm(2400), 24000, 1); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	// Only the first buffer of a burst signals active.
	if len(signals) != 1 || !signals[0] {
		t.Fatalf("signals = %v, want [true]", signals)
	}

	out.finish(0)
	if len(signals) != 1 {
		t.Fatalf("idle signaled while a buffer was still active: %v", signals)
	}
	out.finish(1)
	if len(signals) != 2 || signals[1] {
		t.Fatalf("signals = %v, want [true false]", signals)
	}
}

func TestFlush_SignalsIdle(t *testing.T) {
	out := &fakeOutput{}
	var signals []bool
	s := New(out, func(playing bool) { signals = append(signals, playing) })

	if err := s.Enqueue(pcm(2400), 24000, 1); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	s.Flush()

	if len(signals) != 2 || signals[1] {
		t.Fatalf("signals = %v, want [true false]", signals)
	}

	// Flush while already idle stays quiet.
	s.Flush()
	if len(signals) != 2 {
		t.Fatalf("redundant flush signaled: %v", signals)
	}
}

func TestEnqueue_MalformedPayload(t *testing.T) {
	out := &fakeOutput{}
	s := New(out, nil)

	if err := s.Enqueue([]byte{1, 2, 3}, 24000, 1); err == nil {
		t.Fatal("expected decode error for odd-length payload")
	}
	if got := s.ActiveCount(); got != 0 {
		t.Errorf("ActiveCount = %d, want 0", got)
	}
	if got := s.Cursor(); got != 0 {
		t.Errorf("cursor = %v, want 0", got)
	}
}

func TestBufferDuration(t *testing.T) {
	tests := []struct {
		name string
		buf  Buffer
		want float64
	}{
		{"100ms mono", Buffer{Samples: make([]float32, 2400), SampleRate: 24000, Channels: 1}, 0.1},
		{"stereo halves duration", Buffer{Samples: make([]float32, 2400), SampleRate: 24000, Channels: 2}, 0.05},
		{"zero rate", Buffer{Samples: make([]float32, 100)}, 0},
	}

	for _, tt := range tests {
		if got := tt.buf.Duration(); got != tt.want {
			t.Errorf("%s: Duration = %v, want %v", tt.name, got, tt.want)
		}
	}
}
