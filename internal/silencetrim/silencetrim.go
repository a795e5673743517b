// Package silencetrim removes leading/trailing/internal silence from a
// captured WAV recording before it is uploaded to a transcription provider.
package silencetrim

import (
	"math"

	"github.com/v01gh7/rapidwhisper/internal/audio"
)

const chunkSize = 1024

// Params configures one trim pass.
type Params struct {
	Threshold float64
	PaddingMS int
}

// DefaultParams returns the default trim thresholds (2% RMS, 100ms padding).
func DefaultParams() Params {
	return Params{Threshold: 0.02, PaddingMS: 100}
}

// Trim decodes the WAV at path, removes silent runs (keeping padding at each
// speech boundary), rewrites the file in place with the trimmed audio, and
// returns the amount of audio removed in seconds. If the entire file is
// silent or shorter than one chunk, the file is left unchanged and removed
// is 0.
func Trim(path string, params Params) (removedSeconds float64, err error) {
	info, err := audio.ReadWAV(path)
	if err != nil {
		return 0, err
	}

	if len(info.Samples) < chunkSize {
		return 0, nil
	}

	isSpeech := classifyChunks(info.Samples, params.Threshold)
	if !anyTrue(isSpeech) {
		return 0, nil
	}

	paddingChunks := paddingChunkCount(params.PaddingMS, info.SampleRate)
	keep := expandAndMerge(isSpeech, paddingChunks)

	if allTrue(keep) {
		return 0, nil
	}

	trimmed := concatenateKeptChunks(info.Samples, keep)

	originalDuration := float64(len(info.Samples)) / float64(info.SampleRate)
	trimmedDuration := float64(len(trimmed)) / float64(info.SampleRate)
	removed := originalDuration - trimmedDuration
	if removed < 0 {
		removed = 0
	}

	if err := audio.WriteWAV(path, trimmed, info.SampleRate, info.Channels); err != nil {
		return 0, err
	}

	return removed, nil
}

// classifyChunks partitions samples into chunkSize runs and marks each as
// speech (RMS > threshold, normalized to [-1,1]) or silence.
func classifyChunks(samples []int16, threshold float64) []bool {
	numChunks := (len(samples) + chunkSize - 1) / chunkSize
	marks := make([]bool, numChunks)

	for c := 0; c < numChunks; c++ {
		start := c * chunkSize
		end := start + chunkSize
		if end > len(samples) {
			end = len(samples)
		}
		marks[c] = chunkRMS(samples[start:end]) > threshold
	}
	return marks
}

func chunkRMS(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sumSquares float64
	for _, s := range samples {
		v := float64(s) / 32768.0
		sumSquares += v * v
	}
	return math.Sqrt(sumSquares / float64(len(samples)))
}

// paddingChunkCount converts a millisecond padding into a chunk count,
// rounding up so the padding window is never narrower than requested, and
// always retaining at least one chunk of padding around each speech run.
func paddingChunkCount(paddingMS int, sampleRate int) int {
	paddingSamples := int(float64(paddingMS) / 1000.0 * float64(sampleRate))
	chunks := (paddingSamples + chunkSize - 1) / chunkSize
	if chunks < 1 {
		return 1
	}
	return chunks
}

// expandAndMerge grows each contiguous speech run by paddingChunks on both
// sides (clamped to bounds) and merges overlapping/adjacent runs.
func expandAndMerge(isSpeech []bool, paddingChunks int) []bool {
	keep := make([]bool, len(isSpeech))
	for i, speech := range isSpeech {
		if !speech {
			continue
		}
		lo := i - paddingChunks
		if lo < 0 {
			lo = 0
		}
		hi := i + paddingChunks
		if hi > len(isSpeech)-1 {
			hi = len(isSpeech) - 1
		}
		for j := lo; j <= hi; j++ {
			keep[j] = true
		}
	}
	return keep
}

func concatenateKeptChunks(samples []int16, keep []bool) []int16 {
	out := make([]int16, 0, len(samples))
	for c, k := range keep {
		if !k {
			continue
		}
		start := c * chunkSize
		end := start + chunkSize
		if end > len(samples) {
			end = len(samples)
		}
		out = append(out, samples[start:end]...)
	}
	return out
}

func anyTrue(bs []bool) bool {
	for _, b := range bs {
		if b {
			return true
		}
	}
	return false
}

func allTrue(bs []bool) bool {
	for _, b := range bs {
		if !b {
			return false
		}
	}
	return true
}
