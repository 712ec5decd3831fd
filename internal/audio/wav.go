package audio

import (
	"bytes"
	"encoding/binary"
)

// EncodeWAV wraps raw PCM16-LE samples in a RIFF/WAVE container.
func EncodeWAV(pcm []byte, sampleRate, channels, bitDepth int) []byte {
	if sampleRate <= 0 {
		sampleRate = 44100
	}

	byteRate := sampleRate * channels * bitDepth / 8
	blockAlign := channels * bitDepth / 8

	buf := bytes.NewBuffer(make([]byte, 0, 44+len(pcm)))
	buf.WriteString("RIFF")
	writeLE(buf, uint32(36+len(pcm)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	writeLE(buf, uint32(16))             // fmt chunk size
	writeLE(buf, uint16(1))              // PCM format
	writeLE(buf, uint16(channels))
	writeLE(buf, uint32(sampleRate))
	writeLE(buf, uint32(byteRate))
	writeLE(buf, uint16(blockAlign))
	writeLE(buf, uint16(bitDepth))

	buf.WriteString("data")
	writeLE(buf, uint32(len(pcm)))
	buf.Write(pcm)

	return buf.Bytes()
}

func writeLE(buf *bytes.Buffer, v any) {
	_ = binary.Write(buf, binary.LittleEndian, v)
}
