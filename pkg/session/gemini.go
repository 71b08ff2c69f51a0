package session

import (
	"context"
	"strings"

	"google.golang.org/genai"

	"github.com/vango-go/vai-voice/pkg/audio"
	"github.com/vango-go/vai-voice/pkg/core"
)

// DefaultModel is the native-audio dialog model used when none is
// configured.
const DefaultModel = "gemini-2.5-flash-preview-native-audio-dialog"

// GeminiDialer opens realtime sessions through the genai SDK's Live API.
type GeminiDialer struct {
	APIKey string

	// HTTPOptions etc. are left to the SDK defaults; the dialer only
	// carries what the channel needs.
}

// Dial connects a live session configured for audio responses with the
// requested voice and system instruction.
func (d *GeminiDialer) Dial(ctx context.Context, cfg ChannelConfig) (Channel, error) {
	if strings.TrimSpace(d.APIKey) == "" {
		return nil, core.NewInvalidRequestError("gemini api key must not be empty")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	voice := core.CanonicalVoice(cfg.VoiceName)

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  d.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, core.NewChannelError("create genai client: " + err.Error())
	}

	connectCfg := &genai.LiveConnectConfig{
		ResponseModalities: []genai.Modality{genai.ModalityAudio},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voice},
			},
		},
		InputAudioTranscription:  &genai.AudioTranscriptionConfig{},
		OutputAudioTranscription: &genai.AudioTranscriptionConfig{},
	}
	if sys := strings.TrimSpace(cfg.SystemInstruction); sys != "" {
		connectCfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: sys}},
		}
	}

	live, err := client.Live.Connect(ctx, model, connectCfg)
	if err != nil {
		return nil, core.NewChannelError("live connect: " + err.Error())
	}
	return &geminiChannel{session: live}, nil
}

// geminiChannel adapts *genai.Session to the Channel contract.
type geminiChannel struct {
	session *genai.Session
}

func (c *geminiChannel) Send(chunk audio.Chunk) error {
	return c.session.SendRealtimeInput(genai.LiveRealtimeInput{
		Media: &genai.Blob{
			Data:     chunk.Data,
			MIMEType: chunk.MIMEType,
		},
	})
}

func (c *geminiChannel) Receive() (*ServerMessage, error) {
	for {
		raw, err := c.session.Receive()
		if err != nil {
			return nil, err
		}
		if msg := fromLiveMessage(raw); msg != nil {
			return msg, nil
		}
		// Setup acks and tool frames carry nothing the pipeline needs.
	}
}

func (c *geminiChannel) Close() error {
	return c.session.Close()
}

// fromLiveMessage maps one SDK live message onto the channel's message
// shape, or nil when the frame carries nothing of interest.
func fromLiveMessage(raw *genai.LiveServerMessage) *ServerMessage {
	if raw == nil || raw.ServerContent == nil {
		return nil
	}
	content := raw.ServerContent

	msg := &ServerMessage{
		Interrupted:  content.Interrupted,
		TurnComplete: content.TurnComplete,
	}

	if content.ModelTurn != nil {
		for _, part := range content.ModelTurn.Parts {
			if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
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
		return nil
	}
	return msg
}
