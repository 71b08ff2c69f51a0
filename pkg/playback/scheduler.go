// Package playback schedules decoded reply audio for gap-free sequential
// output and tracks active buffers so an interruption can stop everything
// at once.
package playback

import (
	"sync"

	"github.com/vango-go/vai-voice/pkg/audio"
)

// Buffer is a decoded block of output-rate samples ready for playback.
type Buffer struct {
	Samples    []float32
	SampleRate int
	Channels   int
}

// Duration returns the buffer length in seconds.
func (b Buffer) Duration() float64 {
	if b.SampleRate <= 0 || b.Channels <= 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.SampleRate*b.Channels)
}

// Handle cancels a started buffer. Stop on an already-finished buffer
// must be a no-op.
type Handle interface {
	Stop()
}

// Output is the playback clock and sink. Now reports the current output
// clock time in seconds; Start schedules a buffer to begin at the given
// clock time and invokes onEnded once the buffer finishes naturally.
// Start must not invoke onEnded synchronously.
type Output interface {
	Now() float64
	Start(buf Buffer, when float64, onEnded func()) (Handle, error)
}

// Scheduler keeps one cursor of reserved output time and a set of active
// buffers. Buffers enqueue back to back with no gap and never overlap;
// the cursor only moves backward on Flush.
type Scheduler struct {
	out Output

	// onPlaying observes transitions between audible and idle, used to
	// drive a speaking indicator. May be nil.
	onPlaying func(bool)

	mu      sync.Mutex
	cursor  float64
	active  map[int64]Handle
	nextID  int64
	playing bool
}

// New creates a Scheduler over the given output. onPlaying may be nil.
func New(out Output, onPlaying func(bool)) *Scheduler {
	return &Scheduler{
		out:       out,
		onPlaying: onPlaying,
		active:    make(map[int64]Handle),
	}
}

// Enqueue decodes a raw PCM chunk and schedules it to start at
// max(cursor, current output time), so a buffer is never scheduled in
// the past and continues immediately after the prior one.
func (s *Scheduler) Enqueue(data []byte, sampleRate, channels int) error {
	samples, err := audio.DecodeChunk(data)
	if err != nil {
		return err
	}
	buf := Buffer{Samples: samples, SampleRate: sampleRate, Channels: channels}

	s.mu.Lock()
	start := s.cursor
	if now := s.out.Now(); now > start {
		start = now
	}

	id := s.nextID
	s.nextID++

	handle, err := s.out.Start(buf, start, func() { s.bufferEnded(id) })
	if err != nil {
		s.mu.Unlock()
		return err
	}

	s.active[id] = handle
	s.cursor = start + buf.Duration()
	first := !s.playing
	s.playing = true
	s.mu.Unlock()

	if first && s.onPlaying != nil {
		s.onPlaying(true)
	}
	return nil
}

func (s *Scheduler) bufferEnded(id int64) {
	s.mu.Lock()
	if _, ok := s.active[id]; !ok {
		// Already flushed.
		s.mu.Unlock()
		return
	}
	delete(s.active, id)
	idle := len(s.active) == 0 && s.playing
	if idle {
		s.playing = false
	}
	s.mu.Unlock()

	if idle && s.onPlaying != nil {
		s.onPlaying(false)
	}
}

// Flush stops every active buffer, clears the active set and resets the
// cursor to 0, so the next enqueue starts at the current output time.
// Used on interruption/barge-in and on session teardown.
func (s *Scheduler) Flush() {
	s.mu.Lock()
	handles := make([]Handle, 0, len(s.active))
	for _, h := range s.active {
		handles = append(handles, h)
	}
	s.active = make(map[int64]Handle)
	s.cursor = 0
	wasPlaying := s.playing
	s.playing = false
	s.mu.Unlock()

	for _, h := range handles {
		h.Stop()
	}
	if wasPlaying && s.onPlaying != nil {
		s.onPlaying(false)
	}
}

// ActiveCount returns the number of buffers currently scheduled or
// playing.
func (s *Scheduler) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

// Cursor returns the earliest output time the next buffer may start at.
func (s *Scheduler) Cursor() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Playing reports whether any buffer is active.
func (s *Scheduler) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}
