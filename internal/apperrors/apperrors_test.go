package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorIsMatchesByKind(t *testing.T) {
	err := APIBadRequest("openai", "invalid model")
	require.True(t, errors.Is(err, &Error{Kind: KindAPIBadRequest}))
	require.False(t, errors.Is(err, &Error{Kind: KindAPITimeout}))
}

func TestErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := Wrap(KindAPINetwork, "send failed", inner)
	require.ErrorIs(t, err, inner)
}

func TestIsGracefulDegradation(t *testing.T) {
	require.True(t, IsGracefulDegradation(APIBadRequest("openai", "bad")))
	require.True(t, IsGracefulDegradation(NotFound("model")))
	require.False(t, IsGracefulDegradation(NotFound("file")))
	require.False(t, IsGracefulDegradation(APIAuthentication("openai")))
	require.False(t, IsGracefulDegradation(errors.New("plain")))
}

func TestErrorMessageFormatting(t *testing.T) {
	err := APITimeout("groq", 30)
	require.Contains(t, err.Error(), "api_timeout")
	require.Contains(t, err.Error(), "groq")
}

func TestNotSupportedCapability(t *testing.T) {
	err := NotSupported("transcription")
	require.Equal(t, KindNotSupported, err.Kind)
	require.Equal(t, "transcription", err.Resource)
	require.Contains(t, fmt.Sprint(err), "transcription")
}
