package session

import (
	"context"
	"strconv"
	"strings"

	"github.com/vango-go/vai-voice/pkg/audio"
)

// Role identifies a transcript speaker.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// AudioPayload is a decoded-side inbound audio chunk.
type AudioPayload struct {
	Data     []byte
	MIMEType string
}

// SampleRate parses the rate parameter from the payload MIME type
// ("audio/pcm;rate=24000"). Payloads without a parseable rate default to
// the playback rate.
func (p AudioPayload) SampleRate() int {
	for _, part := range strings.Split(p.MIMEType, ";") {
		part = strings.TrimSpace(part)
		if rest, ok := strings.CutPrefix(part, "rate="); ok {
			if rate, err := strconv.Atoi(rest); err == nil && rate > 0 {
				return rate
			}
		}
	}
	return audio.PlaybackSampleRate
}

// TranscriptFragment is an incremental transcript update for one role.
type TranscriptFragment struct {
	Role Role
	Text string
}

// ServerMessage is one inbound event from the realtime channel. Any
// combination of fields may be set on a single message.
type ServerMessage struct {
	Audio        *AudioPayload
	Transcript   *TranscriptFragment
	Interrupted  bool
	TurnComplete bool
}

// ChannelConfig carries the per-session settings handed to the service
// at connect time.
type ChannelConfig struct {
	Model             string
	SystemInstruction string
	VoiceName         string
}

// Channel is the capability-typed bidirectional session with the
// external service. Send transmits one encoded capture chunk; Receive
// blocks for the next inbound message and returns io.EOF on clean close.
// Implementations must support Send and Receive from different
// goroutines.
type Channel interface {
	Send(chunk audio.Chunk) error
	Receive() (*ServerMessage, error)
	Close() error
}

// Dialer opens a Channel. Implementations wrap a particular transport
// (vendor SDK session, raw websocket); the controller never sees past
// this interface.
type Dialer interface {
	Dial(ctx context.Context, cfg ChannelConfig) (Channel, error)
}
