package silencetrim

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/v01gh7/rapidwhisper/internal/audio"
)

const sampleRate = 16000

func loudSamples(n int) []int16 {
	out := make([]int16, n)
	for i := range out {
		if i%2 == 0 {
			out[i] = 20000
		} else {
			out[i] = -20000
		}
	}
	return out
}

func silentSamples(n int) []int16 {
	return make([]int16, n)
}

func TestTrimIdempotentOnAllLoudAudio(t *testing.T) {
	// Property 8: if all chunks are above threshold, trim returns the file
	// unchanged and removed == 0.
	dir := t.TempDir()
	path := filepath.Join(dir, "loud.wav")

	samples := loudSamples(chunkSize * 5)
	require.NoError(t, audio.WriteWAV(path, samples, sampleRate, 1))

	removed, err := Trim(path, DefaultParams())
	require.NoError(t, err)
	require.Equal(t, 0.0, removed)

	info, err := audio.ReadWAV(path)
	require.NoError(t, err)
	require.Equal(t, samples, info.Samples)
}

func TestTrimRemovesSilentRunsKeepingPadding(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mixed.wav")

	var samples []int16
	samples = append(samples, silentSamples(chunkSize*10)...)
	samples = append(samples, loudSamples(chunkSize*3)...)
	samples = append(samples, silentSamples(chunkSize*10)...)
	require.NoError(t, audio.WriteWAV(path, samples, sampleRate, 1))

	removed, err := Trim(path, DefaultParams())
	require.NoError(t, err)
	require.Greater(t, removed, 0.0)

	info, err := audio.ReadWAV(path)
	require.NoError(t, err)
	require.Less(t, len(info.Samples), len(samples))
	require.Greater(t, len(info.Samples), chunkSize*3) // speech + padding survives
}

func TestTrimOnEntirelySilentFileReturnsUnchanged(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "silent.wav")

	samples := silentSamples(chunkSize * 4)
	require.NoError(t, audio.WriteWAV(path, samples, sampleRate, 1))

	removed, err := Trim(path, DefaultParams())
	require.NoError(t, err)
	require.Equal(t, 0.0, removed)

	info, err := audio.ReadWAV(path)
	require.NoError(t, err)
	require.Equal(t, samples, info.Samples)
}

func TestTrimOnTooShortFileReturnsUnchanged(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tiny.wav")

	samples := loudSamples(chunkSize / 2)
	require.NoError(t, audio.WriteWAV(path, samples, sampleRate, 1))

	removed, err := Trim(path, DefaultParams())
	require.NoError(t, err)
	require.Equal(t, 0.0, removed)
}

func TestPaddingChunkCountAlwaysAtLeastOne(t *testing.T) {
	require.Equal(t, 1, paddingChunkCount(1, sampleRate))
	require.GreaterOrEqual(t, paddingChunkCount(100, sampleRate), 1)
}
