// Package session owns the connection lifecycle to the realtime speech
// service: it wires the capture pipeline to the outbound channel, routes
// inbound audio to the playback scheduler, accumulates transcripts and
// handles barge-in by flushing playback.
package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/vango-go/vai-voice/pkg/audio"
	"github.com/vango-go/vai-voice/pkg/capture"
	"github.com/vango-go/vai-voice/pkg/core"
	"github.com/vango-go/vai-voice/pkg/playback"
)

// State is the session connection state.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateError        State = "error"
)

// Callbacks observe session activity. All fields may be nil.
type Callbacks struct {
	// OnState fires on every state transition.
	OnState func(State)

	// OnTranscript fires with the active role's full accumulated text
	// after every fragment, and with empty text when the display resets.
	OnTranscript func(Role, string)

	// OnError fires with the terminal error when the session enters
	// StateError.
	OnError func(error)
}

// Controller drives one session at a time over a Dialer-provided
// channel. Inbound messages are handled by a single receive loop, so
// scheduler and transcript updates are totally ordered.
type Controller struct {
	logger     *slog.Logger
	dialer     Dialer
	scheduler  *playback.Scheduler
	pipeline   *capture.Pipeline
	callbacks  Callbacks
	transcript *Transcript

	mu      sync.Mutex
	state   State
	channel Channel
}

// NewController creates a controller in StateDisconnected.
func NewController(logger *slog.Logger, dialer Dialer, scheduler *playback.Scheduler, pipeline *capture.Pipeline, cb Callbacks) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		logger:     logger,
		dialer:     dialer,
		scheduler:  scheduler,
		pipeline:   pipeline,
		callbacks:  cb,
		transcript: NewTranscript(),
		state:      StateDisconnected,
	}
}

// State returns the current session state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect opens a channel and transitions Disconnected → Connecting →
// Connected. Calls while not in StateDisconnected are no-ops, so a
// double press of start produces exactly one connection attempt.
func (c *Controller) Connect(ctx context.Context, cfg ChannelConfig) error {
	c.mu.Lock()
	if c.state != StateDisconnected {
		c.mu.Unlock()
		return nil
	}
	c.state = StateConnecting
	c.mu.Unlock()
	c.emitState(StateConnecting)

	ch, err := c.dialer.Dial(ctx, cfg)
	if err != nil {
		c.mu.Lock()
		c.state = StateError
		c.mu.Unlock()
		c.emitState(StateError)

		chanErr := asChannelError(err)
		if c.callbacks.OnError != nil {
			c.callbacks.OnError(chanErr)
		}
		return chanErr
	}

	c.mu.Lock()
	c.channel = ch
	c.state = StateConnected
	c.mu.Unlock()
	c.emitState(StateConnected)

	if c.pipeline != nil {
		c.pipeline.SetSink(c)
	}
	go c.receiveLoop(ch)
	return nil
}

// Disconnect tears the session down: closes the channel, flushes all
// scheduled playback and resets the transcript display. Valid from
// Connected and from Error (clearing the error so the user can retry);
// a no-op otherwise.
func (c *Controller) Disconnect() {
	c.mu.Lock()
	if c.state != StateConnected && c.state != StateError {
		c.mu.Unlock()
		return
	}
	ch := c.channel
	c.channel = nil
	c.state = StateDisconnected
	c.mu.Unlock()

	if ch != nil {
		_ = ch.Close()
	}
	c.teardown()
	c.emitState(StateDisconnected)
}

// SendAudio implements capture.Sink. Frames arriving while the session
// is not connected are dropped, matching the capture pipeline's
// no-queueing contract.
func (c *Controller) SendAudio(chunk audio.Chunk) error {
	c.mu.Lock()
	ch := c.channel
	connected := c.state == StateConnected
	c.mu.Unlock()

	if !connected || ch == nil {
		return nil
	}
	return ch.Send(chunk)
}

func (c *Controller) receiveLoop(ch Channel) {
	for {
		msg, err := ch.Receive()
		if err != nil {
			c.finish(ch, err)
			return
		}
		c.handleMessage(msg)
	}
}

// finish handles channel termination: clean close → Disconnected, any
// other error → Error. A loop superseded by an explicit Disconnect does
// nothing.
func (c *Controller) finish(ch Channel, err error) {
	c.mu.Lock()
	if c.channel != ch {
		c.mu.Unlock()
		return
	}
	c.channel = nil
	clean := errors.Is(err, io.EOF)
	if clean {
		c.state = StateDisconnected
	} else {
		c.state = StateError
	}
	state := c.state
	c.mu.Unlock()

	_ = ch.Close()
	c.teardown()
	c.emitState(state)

	if !clean {
		chanErr := asChannelError(err)
		c.logger.Error("realtime channel failed", "error", chanErr)
		if c.callbacks.OnError != nil {
			c.callbacks.OnError(chanErr)
		}
	}
}

// teardown detaches capture, flushes playback and clears the transcript
// display.
func (c *Controller) teardown() {
	if c.pipeline != nil {
		c.pipeline.SetSink(nil)
	}
	if c.scheduler != nil {
		c.scheduler.Flush()
	}
	c.transcript.Reset()
	if c.callbacks.OnTranscript != nil {
		c.callbacks.OnTranscript(c.transcript.ActiveRole(), "")
	}
}

func (c *Controller) handleMessage(msg *ServerMessage) {
	if msg == nil {
		return
	}

	// Barge-in: stop everything scheduled, stay Connected.
	if msg.Interrupted && c.scheduler != nil {
		c.scheduler.Flush()
	}

	if msg.Audio != nil && c.scheduler != nil {
		err := c.scheduler.Enqueue(msg.Audio.Data, msg.Audio.SampleRate(), 1)
		if err != nil {
			// Malformed chunks are dropped; the session stays up.
			c.logger.Warn("dropping inbound audio payload", "error", err)
		}
	}

	if msg.Transcript != nil {
		text := c.transcript.Append(msg.Transcript.Role, msg.Transcript.Text)
		if c.callbacks.OnTranscript != nil {
			c.callbacks.OnTranscript(msg.Transcript.Role, text)
		}
	}

	if msg.TurnComplete {
		c.transcript.Reset()
	}
}

func (c *Controller) emitState(state State) {
	if c.callbacks.OnState != nil {
		c.callbacks.OnState(state)
	}
}

func asChannelError(err error) error {
	var coreErr *core.Error
	if errors.As(err, &coreErr) {
		return coreErr
	}
	return core.NewChannelError(err.Error())
}
