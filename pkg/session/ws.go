package session

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-go/vai-voice/pkg/audio"
	"github.com/vango-go/vai-voice/pkg/core"
)

const (
	defaultLiveHost           = "generativelanguage.googleapis.com"
	liveBidiPath              = "/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"
	defaultLiveConnectTimeout = 15 * time.Second
)

// WebSocketDialer opens realtime sessions over a raw websocket speaking
// the BidiGenerateContent framing directly, without the vendor SDK.
type WebSocketDialer struct {
	APIKey string

	// Host overrides the service host, mainly for tests.
	Host string
}

type wsSetupFrame struct {
	Setup wsSetup `json:"setup"`
}

type wsSetup struct {
	Model                    string              `json:"model"`
	GenerationConfig         wsGenerationConfig  `json:"generationConfig"`
	SystemInstruction        *wsContent          `json:"systemInstruction,omitempty"`
	InputAudioTranscription  *struct{}           `json:"inputAudioTranscription,omitempty"`
	OutputAudioTranscription *struct{}           `json:"outputAudioTranscription,omitempty"`
}

type wsGenerationConfig struct {
	ResponseModalities []string       `json:"responseModalities"`
	SpeechConfig       wsSpeechConfig `json:"speechConfig"`
}

type wsSpeechConfig struct {
	VoiceConfig wsVoiceConfig `json:"voiceConfig"`
}

type wsVoiceConfig struct {
	PrebuiltVoiceConfig wsPrebuiltVoice `json:"prebuiltVoiceConfig"`
}

type wsPrebuiltVoice struct {
	VoiceName string `json:"voiceName"`
}

type wsContent struct {
	Parts []wsPart `json:"parts"`
}

type wsPart struct {
	Text       string  `json:"text,omitempty"`
	InlineData *wsBlob `json:"inlineData,omitempty"`
}

type wsBlob struct {
	MIMEType string `json:"mimeType"`
	Data     []byte `json:"data"`
}

type wsRealtimeInputFrame struct {
	RealtimeInput wsRealtimeInput `json:"realtimeInput"`
}

type wsRealtimeInput struct {
	MediaChunks []wsBlob `json:"mediaChunks"`
}

type wsServerFrame struct {
	SetupComplete *struct{}        `json:"setupComplete,omitempty"`
	ServerContent *wsServerContent `json:"serverContent,omitempty"`
}

type wsServerContent struct {
	ModelTurn           *wsContent       `json:"modelTurn,omitempty"`
	Interrupted         bool             `json:"interrupted,omitempty"`
	TurnComplete        bool             `json:"turnComplete,omitempty"`
	InputTranscription  *wsTranscription `json:"inputTranscription,omitempty"`
	OutputTranscription *wsTranscription `json:"outputTranscription,omitempty"`
}

type wsTranscription struct {
	Text string `json:"text"`
}

// Dial connects, sends the setup frame and waits for setupComplete
// before handing the channel over.
func (d *WebSocketDialer) Dial(ctx context.Context, cfg ChannelConfig) (Channel, error) {
	if strings.TrimSpace(d.APIKey) == "" {
		return nil, core.NewInvalidRequestError("api key must not be empty")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	host := strings.TrimSpace(d.Host)
	if host == "" {
		host = defaultLiveHost
	}

	endpoint := url.URL{
		Scheme:   "wss",
		Host:     host,
		Path:     liveBidiPath,
		RawQuery: url.Values{"key": {d.APIKey}}.Encode(),
	}

	dialCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, defaultLiveConnectTimeout)
		defer cancel()
	}

	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, endpoint.String(), nil)
	if err != nil {
		return nil, core.NewChannelError("websocket dial: " + err.Error())
	}

	setup := wsSetupFrame{
		Setup: wsSetup{
			Model: "models/" + model,
			GenerationConfig: wsGenerationConfig{
				ResponseModalities: []string{"AUDIO"},
				SpeechConfig: wsSpeechConfig{
					VoiceConfig: wsVoiceConfig{
						PrebuiltVoiceConfig: wsPrebuiltVoice{
							VoiceName: core.CanonicalVoice(cfg.VoiceName),
						},
					},
				},
			},
			InputAudioTranscription:  &struct{}{},
			OutputAudioTranscription: &struct{}{},
		},
	}
	if sys := strings.TrimSpace(cfg.SystemInstruction); sys != "" {
		setup.Setup.SystemInstruction = &wsContent{Parts: []wsPart{{Text: sys}}}
	}
	if err := conn.WriteJSON(setup); err != nil {
		_ = conn.Close()
		return nil, core.NewChannelError("send setup: " + err.Error())
	}

	// First frame must acknowledge setup.
	_ = conn.SetReadDeadline(time.Now().Add(defaultLiveConnectTimeout))
	var first wsServerFrame
	if err := conn.ReadJSON(&first); err != nil {
		_ = conn.Close()
		return nil, core.NewChannelError("read setup ack: " + err.Error())
	}
	_ = conn.SetReadDeadline(time.Time{})
	if first.SetupComplete == nil {
		_ = conn.Close()
		return nil, core.NewChannelError("unexpected first live frame")
	}

	return &wsChannel{conn: conn}, nil
}

// wsChannel is a Channel over one live websocket connection. Writes are
// serialized; reads happen from the controller's single receive loop.
type wsChannel struct {
	conn *websocket.Conn

	writeMu   sync.Mutex
	closeOnce sync.Once
}

func (c *wsChannel) Send(chunk audio.Chunk) error {
	frame := wsRealtimeInputFrame{
		RealtimeInput: wsRealtimeInput{
			MediaChunks: []wsBlob{{MIMEType: chunk.MIMEType, Data: chunk.Data}},
		},
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(frame)
}

func (c *wsChannel) Receive() (*ServerMessage, error) {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil, io.EOF
			}
			return nil, core.NewChannelError(err.Error())
		}
		msg, err := decodeLiveFrame(data)
		if err != nil {
			return nil, err
		}
		if msg != nil {
			return msg, nil
		}
	}
}

func (c *wsChannel) Close() error {
	c.closeOnce.Do(func() {
		c.writeMu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(2*time.Second))
		c.writeMu.Unlock()
		_ = c.conn.Close()
	})
	return nil
}

// decodeLiveFrame maps one inbound text frame onto a ServerMessage, or
// nil for frames the pipeline does not consume.
func decodeLiveFrame(data []byte) (*ServerMessage, error) {
	var frame wsServerFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, core.NewChannelError(fmt.Sprintf("decode live frame: %v", err))
	}
	if frame.ServerContent == nil {
		return nil, nil
	}
	content := frame.ServerContent

	msg := &ServerMessage{
		Interrupted:  content.Interrupted,
		TurnComplete: content.TurnComplete,
	}

	if content.ModelTurn != nil {
		for _, part := range content.ModelTurn.Parts {
			if part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			msg.Audio = &AudioPayload{
				Data:     part.InlineData.Data,
				MIMEType: part.InlineData.MIMEType,
			}
			break
		}
	}

	if content.InputTranscription != nil && content.InputTranscription.Text != "" {
		msg.Transcript = &TranscriptFragment{Role: RoleUser, Text: content.InputTranscription.Text}
	} else if content.OutputTranscription != nil && content.OutputTranscription.Text != "" {
		msg.Transcript = &TranscriptFragment{Role: RoleModel, Text: content.OutputTranscription.Text}
	}

	if msg.Audio == nil && msg.Transcript == nil && !msg.Interrupted && !msg.TurnComplete {
		return nil, nil
	}
	return msg, nil
}
