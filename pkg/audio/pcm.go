// Package audio converts between normalized float samples and the 16-bit
// little-endian PCM wire format used by the realtime channel, and carries
// the small helpers (RMS metering, WAV framing) the pipeline needs around
// that format.
package audio

import (
	"fmt"

	"github.com/vango-go/vai-voice/pkg/core"
)

const (
	// CaptureSampleRate is the microphone rate sent to the service.
	CaptureSampleRate = 16000

	// PlaybackSampleRate is the rate of audio the service returns.
	PlaybackSampleRate = 24000

	// FrameSize is the fixed capture frame length in samples.
	FrameSize = 256

	// pcmScale maps normalized floats onto the signed 16-bit range. The
	// inverse division uses the same factor so a round trip stays within
	// one quantization step.
	pcmScale = 32768
)

// Chunk is a wire-ready block of encoded PCM with its declared MIME type.
// Immutable once produced.
type Chunk struct {
	Data     []byte
	MIMEType string
}

// MIMEType returns the PCM media type for a sample rate, for example
// "audio/pcm;rate=16000".
func MIMEType(sampleRate int) string {
	return fmt.Sprintf("audio/pcm;rate=%d", sampleRate)
}

// EncodeFrame converts normalized samples to 16-bit little-endian PCM.
// Samples outside [-1, 1] are clamped.
func EncodeFrame(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, sample := range samples {
		if sample > 1 {
			sample = 1
		} else if sample < -1 {
			sample = -1
		}
		v := int32(sample * pcmScale)
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		s := int16(v)
		out[i*2] = byte(s)
		out[i*2+1] = byte(s >> 8)
	}
	return out
}

// NewChunk encodes a frame and wraps it with the MIME type for rate.
func NewChunk(samples []float32, sampleRate int) Chunk {
	return Chunk{
		Data:     EncodeFrame(samples),
		MIMEType: MIMEType(sampleRate),
	}
}

// DecodeChunk converts 16-bit little-endian PCM back to normalized
// samples. Returns a malformed_payload error when the byte length is not
// a multiple of 2.
func DecodeChunk(data []byte) ([]float32, error) {
	if len(data)%2 != 0 {
		return nil, core.NewMalformedPayloadError(
			fmt.Sprintf("pcm payload length %d is not a multiple of 2", len(data)))
	}
	out := make([]float32, len(data)/2)
	for i := range out {
		s := int16(uint16(data[i*2]) | uint16(data[i*2+1])<<8)
		out[i] = float32(s) / pcmScale
	}
	return out, nil
}
