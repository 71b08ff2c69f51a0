package audio

import (
	"encoding/binary"
	"testing"
)

func TestPCMToWAV_Header(t *testing.T) {
	pcm := make([]byte, 4800) // 100ms at 24kHz mono 16-bit
	wav := PCMToWAV(pcm, 24000, 16, 1)

	if len(wav) != 44+len(pcm) {
		t.Fatalf("len = %d, want %d", len(wav), 44+len(pcm))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Fatal("missing RIFF/WAVE markers")
	}
	if got := binary.LittleEndian.Uint32(wav[24:28]); got != 24000 {
		t.Errorf("sample rate = %d, want 24000", got)
	}
	if got := binary.LittleEndian.Uint16(wav[22:24]); got != 1 {
		t.Errorf("channels = %d, want 1", got)
	}
	if got := binary.LittleEndian.Uint32(wav[40:44]); got != uint32(len(pcm)) {
		t.Errorf("data size = %d, want %d", got, len(pcm))
	}
}

func TestPCMToWAVDefault(t *testing.T) {
	wav := PCMToWAVDefault([]byte{1, 2, 3, 4})
	if got := binary.LittleEndian.Uint32(wav[24:28]); got != PlaybackSampleRate {
		t.Errorf("sample rate = %d, want %d", got, PlaybackSampleRate)
	}
}
