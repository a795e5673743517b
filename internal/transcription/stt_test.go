package transcription

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/v01gh7/rapidwhisper/internal/apperrors"
	"github.com/v01gh7/rapidwhisper/internal/audio"
)

func writeTestWAV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.wav")
	samples := make([]int16, 16000)
	require.NoError(t, audio.WriteWAV(path, samples, 16000, 1))
	return path
}

func TestNewSTTClientRejectsProviderWithoutTranscriptionSupport(t *testing.T) {
	_, err := NewSTTClient(STTConfig{Provider: ProviderZAI}, nil)
	require.Error(t, err)

	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, apperrors.KindNotSupported, appErr.Kind)
}

func TestSTTClientTranscribeReturnsText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/audio/transcriptions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text": "hello world"}`))
	}))
	defer server.Close()

	client, err := NewSTTClient(STTConfig{
		Provider: ProviderOpenAI,
		BaseURL:  server.URL,
		APIKey:   "test-key",
	}, nil)
	require.NoError(t, err)

	text, err := client.Transcribe(context.Background(), writeTestWAV(t))
	require.NoError(t, err)
	require.Equal(t, "hello world", text)
}

func TestSTTClientTranscribeEmptyTextIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"text": "   "}`))
	}))
	defer server.Close()

	client, err := NewSTTClient(STTConfig{Provider: ProviderOpenAI, BaseURL: server.URL}, nil)
	require.NoError(t, err)

	_, err = client.Transcribe(context.Background(), writeTestWAV(t))
	require.ErrorIs(t, err, apperrors.ErrEmptyResponse)
}

func TestSTTClientTranscribeClassifiesUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": "invalid api key"}`))
	}))
	defer server.Close()

	client, err := NewSTTClient(STTConfig{Provider: ProviderOpenAI, BaseURL: server.URL}, nil)
	require.NoError(t, err)

	_, err = client.Transcribe(context.Background(), writeTestWAV(t))
	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, apperrors.KindAPIAuthentication, appErr.Kind)
}

func TestSTTClientTranscribeClassifiesRateLimitWithRetryAfter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "2.5")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, err := NewSTTClient(STTConfig{Provider: ProviderOpenAI, BaseURL: server.URL}, nil)
	require.NoError(t, err)

	_, err = client.Transcribe(context.Background(), writeTestWAV(t))
	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, apperrors.KindAPIRateLimit, appErr.Kind)
	require.Equal(t, 2.5, appErr.Seconds)
}

func TestSTTClientTranscribeMissingFileErrors(t *testing.T) {
	client, err := NewSTTClient(STTConfig{Provider: ProviderOpenAI, BaseURL: "http://example.invalid"}, nil)
	require.NoError(t, err)

	_, err = client.Transcribe(context.Background(), filepath.Join(os.TempDir(), "does-not-exist.wav"))
	require.Error(t, err)
}
