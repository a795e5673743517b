package session

import (
	"context"

	"github.com/v01gh7/rapidwhisper/internal/apperrors"
	"github.com/v01gh7/rapidwhisper/internal/transcription"
)

// TranscriptionWorker runs the transcription pipeline against one finalized
// recording. Satisfied by *transcription.Worker.
type TranscriptionWorker interface {
	Process(ctx context.Context, wavPath string) (transcription.Result, error)
}

// PlaceholderWorker is a no-op fallback used when no worker is wired.
type PlaceholderWorker struct{}

func (PlaceholderWorker) Process(context.Context, string) (transcription.Result, error) {
	return transcription.Result{}, apperrors.ErrPipelineUnavailable
}
