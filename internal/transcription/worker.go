package transcription

import (
	"context"
	"log/slog"
	"os"

	"github.com/v01gh7/rapidwhisper/internal/apperrors"
	"github.com/v01gh7/rapidwhisper/internal/audio"
	"github.com/v01gh7/rapidwhisper/internal/silencetrim"
)

// Statistics is the subset of the statistics ledger the worker records
// against; satisfied by *statistics.Ledger.
type Statistics interface {
	TrackTranscription(audioDuration float64, text string) error
	TrackSilenceRemoval(removedDuration float64) error
}

// WorkerConfig controls one run of the transcription pipeline.
type WorkerConfig struct {
	STT                  STTConfig
	LLM                  LLMConfig
	EnableSilenceTrim    bool
	SilenceTrim          silencetrim.Params
	EnablePostProcessing bool
	KeepRecordings       bool
}

// Worker runs the transcription pipeline: trim silence, upload for
// transcription, optionally post-process with an LLM, record statistics,
// clean up the temporary WAV file.
type Worker struct {
	cfg    WorkerConfig
	stats  Statistics
	logger *slog.Logger
}

func NewWorker(cfg WorkerConfig, stats Statistics, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{cfg: cfg, stats: stats, logger: logger}
}

// Result is the worker's terminal outcome for one recording.
type Result struct {
	Text          string
	PostProcessed bool
}

// Process runs the full pipeline against wavPath and returns the final
// transcript text. wavPath is removed before returning unless KeepRecordings
// is set, matching the finally-block cleanup of the source transcription
// thread.
func (w *Worker) Process(ctx context.Context, wavPath string) (Result, error) {
	if !w.cfg.KeepRecordings {
		defer func() {
			if err := os.Remove(wavPath); err != nil && !os.IsNotExist(err) {
				w.logger.Warn("failed to remove recording", "path", wavPath, "error", err)
			}
		}()
	}

	info, err := audio.ReadWAV(wavPath)
	if err != nil {
		return Result{}, apperrors.Wrap(apperrors.KindEmptyRecording, "read recording", err)
	}
	audioDuration := info.Duration

	if w.cfg.EnableSilenceTrim {
		removed, err := silencetrim.Trim(wavPath, w.cfg.SilenceTrim)
		if err != nil {
			w.logger.Warn("silence trim failed, continuing with untrimmed audio", "error", err)
		} else if removed > 0 {
			audioDuration -= removed
			if err := w.stats.TrackSilenceRemoval(removed); err != nil {
				w.logger.Warn("failed to record silence removal statistic", "error", err)
			}
		}
	}

	sttClient, err := NewSTTClient(w.cfg.STT, nil)
	if err != nil {
		return Result{}, err
	}

	text, err := sttClient.Transcribe(ctx, wavPath)
	if err != nil {
		return Result{}, err
	}

	result := Result{Text: text}

	if w.cfg.EnablePostProcessing {
		llmClient, err := NewLLMClient(w.cfg.LLM, nil)
		if err != nil {
			w.logger.Warn("post-processing unavailable, returning raw transcript", "error", err)
		} else {
			processed, err := llmClient.PostProcess(ctx, text)
			switch {
			case err == nil:
				result.Text = processed
				result.PostProcessed = true
			case apperrors.IsGracefulDegradation(err):
				w.logger.Warn("post-processing failed, falling back to raw transcript", "error", err)
			default:
				return Result{}, err
			}
		}
	}

	if err := w.stats.TrackTranscription(audioDuration, result.Text); err != nil {
		w.logger.Warn("failed to record transcription statistic", "error", err)
	}
	return result, nil
}
