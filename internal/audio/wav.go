package audio

import (
	"encoding/binary"
	"fmt"
	"os"
)

const wavHeaderSize = 44

// WriteWAV writes little-endian i16 PCM samples as a canonical 44-byte-header
// RIFF/WAVE file: a single `fmt ` chunk followed by a single `data` chunk.
func WriteWAV(path string, samples []int16, sampleRate int, channels int) error {
	if channels <= 0 {
		channels = 1
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create wav file %q: %w", path, err)
	}
	defer f.Close()

	pcm := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(pcm[i*2:i*2+2], uint16(s))
	}

	const bitsPerSample = 16
	byteRate := sampleRate * channels * (bitsPerSample / 8)
	blockAlign := channels * (bitsPerSample / 8)

	chunkSize := uint32(36 + len(pcm))
	subChunk2Size := uint32(len(pcm))

	header := make([]byte, wavHeaderSize)
	copy(header[0:4], []byte("RIFF"))
	binary.LittleEndian.PutUint32(header[4:8], chunkSize)
	copy(header[8:12], []byte("WAVE"))
	copy(header[12:16], []byte("fmt "))
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], bitsPerSample)
	copy(header[36:40], []byte("data"))
	binary.LittleEndian.PutUint32(header[40:44], subChunk2Size)

	if _, err := f.Write(header); err != nil {
		return fmt.Errorf("write wav header %q: %w", path, err)
	}
	if _, err := f.Write(pcm); err != nil {
		return fmt.Errorf("write wav data %q: %w", path, err)
	}
	return nil
}

// WAVInfo summarizes a decoded canonical WAV header plus its raw samples.
type WAVInfo struct {
	SampleRate int
	Channels   int
	Samples    []int16
	Duration   float64
}

// ReadWAV decodes a canonical 44-byte-header PCM16 WAV file. This is a
// fallback path: the capture engine's own sample count is the primary
// source of truth for duration, and the header is only consulted when
// re-reading a file written by a previous run (e.g. the silence-trim
// utility, or tests).
func ReadWAV(path string) (WAVInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return WAVInfo{}, fmt.Errorf("read wav file %q: %w", path, err)
	}
	if len(data) < wavHeaderSize {
		return WAVInfo{}, fmt.Errorf("wav file %q shorter than header", path)
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return WAVInfo{}, fmt.Errorf("wav file %q missing RIFF/WAVE markers", path)
	}

	channels := int(binary.LittleEndian.Uint16(data[22:24]))
	sampleRate := int(binary.LittleEndian.Uint32(data[24:28]))
	dataSize := int(binary.LittleEndian.Uint32(data[40:44]))

	end := wavHeaderSize + dataSize
	if end > len(data) {
		end = len(data)
	}
	pcm := data[wavHeaderSize:end]

	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2 : i*2+2]))
	}

	var duration float64
	if sampleRate > 0 && channels > 0 {
		duration = float64(len(samples)/channels) / float64(sampleRate)
	}

	return WAVInfo{
		SampleRate: sampleRate,
		Channels:   channels,
		Samples:    samples,
		Duration:   duration,
	}, nil
}
