package audio

import "encoding/binary"

// PCMToWAV wraps raw PCM audio data with a WAV header.
//
// Useful for dumping received playback audio to a file that standard
// players understand. Reply audio is 24000 Hz, 16-bit, mono.
func PCMToWAV(pcmData []byte, sampleRate, bitsPerSample, channels int) []byte {
	dataLen := len(pcmData)
	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8

	// WAV header is 44 bytes
	header := make([]byte, 44)

	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+dataLen))
	copy(header[8:12], "WAVE")

	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], uint16(bitsPerSample))

	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(dataLen))

	return append(header, pcmData...)
}

// PCMToWAVDefault wraps PCM data using the playback format (24 kHz,
// 16-bit, mono).
func PCMToWAVDefault(pcmData []byte) []byte {
	return PCMToWAV(pcmData, PlaybackSampleRate, 16, 1)
}
