package capture

// Framer re-chunks arbitrary-length device callbacks into fixed-size
// frames. Hardware periods rarely match the frame size, so samples are
// accumulated and emitted in exact multiples; the remainder waits for
// the next callback.
type Framer struct {
	frameSize int
	pending   []float32
	emit      func([]float32)
}

// NewFramer creates a Framer emitting frames of frameSize samples.
func NewFramer(frameSize int, emit func([]float32)) *Framer {
	return &Framer{
		frameSize: frameSize,
		pending:   make([]float32, 0, frameSize*2),
		emit:      emit,
	}
}

// Push appends samples and emits every complete frame. The slice passed
// to emit is freshly allocated and safe to retain.
func (f *Framer) Push(samples []float32) {
	f.pending = append(f.pending, samples...)
	for len(f.pending) >= f.frameSize {
		frame := make([]float32, f.frameSize)
		copy(frame, f.pending[:f.frameSize])
		f.pending = f.pending[:copy(f.pending, f.pending[f.frameSize:])]
		f.emit(frame)
	}
}

// Reset discards any buffered partial frame.
func (f *Framer) Reset() {
	f.pending = f.pending[:0]
}
