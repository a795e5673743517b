// Package audio owns the capture thread: it opens the default PulseAudio
// input source, emits fixed-size PCM chunks and a running RMS loudness
// estimate, and materializes a WAV file when a session ends.
package audio

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"

	"github.com/v01gh7/rapidwhisper/internal/apperrors"
)

// Params configures one capture session.
type Params struct {
	SampleRate      int
	ChunkSize       int // samples per chunk
	RecordingsDir   string
	MinFloorSeconds float64 // configured RecordingTooShort floor; 0 disables
}

const absoluteMinDuration = 0.3 // default minimum recording duration, seconds

// AudioChunk is one fixed-size PCM frame captured since session start.
type AudioChunk struct {
	Samples         []int16
	SampleRate      int
	TimestampOffset time.Duration
}

// RmsSample is one loudness reading since session start.
type RmsSample struct {
	RMS       float64
	Timestamp float64 // seconds from session start
}

// Engine streams PCM chunks and RMS samples from one PulseAudio source for
// the lifetime of a single recording session.
type Engine struct {
	params Params

	client *pulse.Client
	stream *pulse.RecordStream

	chunks chan AudioChunk
	rms    chan RmsSample
	stopCh chan struct{}

	mu           sync.Mutex
	pending      []int16
	raw          []int16
	stopped      bool
	sessionStart time.Time

	inflight sync.WaitGroup
	samples  atomic.Int64
}

// Start opens the default input source and begins streaming.
func Start(ctx context.Context, params Params) (*Engine, error) {
	if params.SampleRate <= 0 {
		params.SampleRate = 16000
	}
	if params.ChunkSize <= 0 {
		params.ChunkSize = 1024
	}

	client, err := pulse.NewClient(
		pulse.ClientApplicationName("rapidwhisper"),
		pulse.ClientApplicationIconName("audio-input-microphone"),
	)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindMicrophoneUnavailable, "connect pulse server", err)
	}

	source, err := client.DefaultSource()
	if err != nil {
		client.Close()
		return nil, apperrors.Wrap(apperrors.KindMicrophoneUnavailable, "resolve default source", err)
	}

	engine := &Engine{
		params:       params,
		client:       client,
		chunks:       make(chan AudioChunk, 128),
		rms:          make(chan RmsSample, 128),
		stopCh:       make(chan struct{}),
		sessionStart: time.Now(),
	}

	writer := pulse.NewWriter(writerFunc(engine.onPCM), pulseproto.FormatInt16LE)
	stream, err := client.NewRecord(
		writer,
		pulse.RecordSource(source),
		pulse.RecordMono,
		pulse.RecordSampleRate(uint32(params.SampleRate)),
		pulse.RecordBufferFragmentSize(uint32(params.ChunkSize*2)),
		pulse.RecordMediaName("rapidwhisper dictation"),
	)
	if err != nil {
		client.Close()
		return nil, apperrors.Wrap(apperrors.KindAudioDevice, "create pulse record stream", err)
	}

	engine.stream = stream
	stream.Start()

	go func() {
		<-ctx.Done()
		_, _ = engine.Cancel()
	}()

	return engine, nil
}

// Chunks returns the PCM stream as fixed-size sample slices.
func (e *Engine) Chunks() <-chan AudioChunk { return e.chunks }

// RMS returns the loudness stream.
func (e *Engine) RMS() <-chan RmsSample { return e.rms }

// Stop signals end-of-stream, flushes buffered frames to a freshly named
// WAV file under RecordingsDir, and returns its path.
func (e *Engine) Stop() (string, error) {
	raw, err := e.drain()
	if err != nil {
		return "", err
	}

	duration := float64(len(raw)) / float64(e.params.SampleRate)
	if len(raw) == 0 || duration < absoluteMinDuration {
		return "", apperrors.ErrEmptyRecording
	}
	if e.params.MinFloorSeconds > 0 && duration < e.params.MinFloorSeconds {
		return "", apperrors.RecordingTooShort(duration)
	}

	if err := os.MkdirAll(e.params.RecordingsDir, 0o700); err != nil {
		return "", apperrors.Wrap(apperrors.KindAudioDevice, "create recordings dir", err)
	}

	name := fmt.Sprintf("recording-%s.wav", time.Now().Format("20060102-150405.000"))
	path := filepath.Join(e.params.RecordingsDir, name)

	if err := WriteWAV(path, raw, e.params.SampleRate, 1); err != nil {
		return "", apperrors.Wrap(apperrors.KindAudioDevice, "write wav file", err)
	}
	return path, nil
}

// Cancel signals end-of-stream and discards the buffer; no file is produced.
func (e *Engine) Cancel() (discardedSamples int, err error) {
	raw, err := e.drain()
	if err != nil {
		return 0, err
	}
	return len(raw), nil
}

// drain stops the stream exactly once, waits for in-flight writers, and
// returns the full captured sample buffer.
func (e *Engine) drain() ([]int16, error) {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return nil, apperrors.ErrPipelineUnavailable
	}
	e.stopped = true
	close(e.stopCh)
	e.mu.Unlock()

	if e.stream != nil {
		e.stream.Stop()
		e.stream.Close()
	}
	if e.client != nil {
		e.client.Close()
	}

	e.inflight.Wait()

	e.mu.Lock()
	raw := append([]int16(nil), e.raw...)
	e.mu.Unlock()

	close(e.chunks)
	close(e.rms)
	return raw, nil
}

// SamplesCaptured reports total samples accepted from PulseAudio.
func (e *Engine) SamplesCaptured() int64 { return e.samples.Load() }

// onPCM receives raw little-endian i16 frames, buffers them, computes
// per-chunk RMS, and emits AudioChunk/RmsSample values.
func (e *Engine) onPCM(buffer []byte) (int, error) {
	if len(buffer) == 0 {
		return 0, nil
	}

	select {
	case <-e.stopCh:
		return 0, io.EOF
	default:
	}

	samples := bytesToInt16LE(buffer)

	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return 0, io.EOF
	}
	e.inflight.Add(1)

	e.raw = append(e.raw, samples...)
	e.pending = append(e.pending, samples...)

	chunkSize := e.params.ChunkSize
	var outChunks [][]int16
	for len(e.pending) >= chunkSize {
		chunk := make([]int16, chunkSize)
		copy(chunk, e.pending[:chunkSize])
		e.pending = e.pending[chunkSize:]
		outChunks = append(outChunks, chunk)
	}
	sessionStart := e.sessionStart
	e.mu.Unlock()
	defer e.inflight.Done()

	e.samples.Add(int64(len(samples)))

	for _, chunk := range outChunks {
		offset := time.Since(sessionStart)
		r := rms(chunk)
		ts := offset.Seconds()

		select {
		case <-e.stopCh:
			return 0, io.EOF
		case e.chunks <- AudioChunk{Samples: chunk, SampleRate: e.params.SampleRate, TimestampOffset: offset}:
		}
		select {
		case <-e.stopCh:
			return 0, io.EOF
		case e.rms <- RmsSample{RMS: r, Timestamp: ts}:
		}
	}

	return len(buffer), nil
}

// rms computes the root-mean-square amplitude of a chunk, normalized to
// [0,1] assuming the i16 sample range.
func rms(samples []int16) float64 {
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

func bytesToInt16LE(buffer []byte) []int16 {
	n := len(buffer) / 2
	out := make([]int16, n)
	for i := 0; i < n; i++ {
		out[i] = int16(uint16(buffer[i*2]) | uint16(buffer[i*2+1])<<8)
	}
	return out
}

// writerFunc adapts a function to io.Writer for pulse.NewWriter.
type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(b []byte) (int, error) { return f(b) }
