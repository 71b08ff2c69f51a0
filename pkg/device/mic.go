package device

import (
	"fmt"
	"log/slog"

	"github.com/gen2brain/malgo"

	"github.com/vango-go/vai-voice/pkg/audio"
	"github.com/vango-go/vai-voice/pkg/core"
)

// Mic captures 16 kHz mono s16le audio from the default input device.
type Mic struct {
	device *malgo.Device
}

func startMic(ctx malgo.Context, logger *slog.Logger, onSamples func([]float32)) (*Mic, error) {
	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = 1
	deviceConfig.SampleRate = uint32(audio.CaptureSampleRate)
	deviceConfig.PeriodSizeInMilliseconds = 20

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, pInputSamples []byte, _ uint32) {
			samples, err := audio.DecodeChunk(pInputSamples)
			if err != nil {
				logger.Warn("drop capture period", "error", err)
				return
			}
			onSamples(samples)
		},
	}

	device, err := malgo.InitDevice(ctx, deviceConfig, callbacks)
	if err != nil {
		return nil, core.NewPermissionDeniedError(fmt.Sprintf("init microphone: %v", err))
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return nil, core.NewPermissionDeniedError(fmt.Sprintf("start microphone: %v", err))
	}

	return &Mic{device: device}, nil
}

func (m *Mic) Close() {
	if m.device != nil {
		_ = m.device.Stop()
		m.device.Uninit()
		m.device = nil
	}
}
