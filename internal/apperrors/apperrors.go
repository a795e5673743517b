// Package apperrors defines the typed error taxonomy surfaced across the
// capture, transcription, and configuration boundaries. Errors never cross
// goroutine boundaries untyped: the capture and transcription workers convert
// every failure into one of these kinds before posting it to the session
// controller.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error for UI presentation and for the post-processing
// graceful-degradation rule in the transcription worker.
type Kind string

const (
	KindMissingConfig         Kind = "missing_config"
	KindInvalidAPIKey         Kind = "invalid_api_key"
	KindMicrophoneUnavailable Kind = "microphone_unavailable"
	KindAudioDevice           Kind = "audio_device"
	KindEmptyRecording        Kind = "empty_recording"
	KindRecordingTooShort     Kind = "recording_too_short"
	KindAPIAuthentication     Kind = "api_authentication"
	KindAPINetwork            Kind = "api_network"
	KindAPITimeout            Kind = "api_timeout"
	KindAPIRateLimit          Kind = "api_rate_limit"
	KindAPIConnection         Kind = "api_connection"
	KindNotFound              Kind = "not_found"
	KindAPIBadRequest         Kind = "api_bad_request"
	KindAPIUnexpected         Kind = "api_unexpected"
	KindNotSupported          Kind = "not_supported"
	KindEmptyResponse         Kind = "empty_response"
)

// Error is a typed, structured failure. Fields hold kind-specific context
// (provider name, resource, retry-after seconds) without formatting any
// user-facing string — per design, the core never formats user-facing text.
type Error struct {
	Kind     Kind
	Detail   string
	Provider string
	Resource string
	Seconds  float64
	Wrapped  error
}

func (e *Error) Error() string {
	switch {
	case e.Provider != "" && e.Detail != "":
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Detail, e.Provider)
	case e.Provider != "":
		return fmt.Sprintf("%s (%s)", e.Kind, e.Provider)
	case e.Detail != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Wrapped }

// Is allows errors.Is(err, &Error{Kind: KindX}) to match by kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind == "" {
		return false
	}
	return e.Kind == t.Kind
}

func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

func Wrap(kind Kind, detail string, err error) *Error {
	return &Error{Kind: kind, Detail: detail, Wrapped: err}
}

func NotSupported(capability string) *Error {
	return &Error{Kind: KindNotSupported, Resource: capability, Detail: fmt.Sprintf("capability %q not supported", capability)}
}

func NotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Resource: resource, Detail: fmt.Sprintf("resource %q not found", resource)}
}

func APIAuthentication(provider string) *Error {
	return &Error{Kind: KindAPIAuthentication, Provider: provider, Detail: "authentication failed"}
}

func APITimeout(provider string, seconds float64) *Error {
	return &Error{Kind: KindAPITimeout, Provider: provider, Seconds: seconds, Detail: "request timed out"}
}

func APIRateLimit(provider string, retryAfterSeconds float64) *Error {
	return &Error{Kind: KindAPIRateLimit, Provider: provider, Seconds: retryAfterSeconds, Detail: "rate limited"}
}

func APIConnection(provider string, detail string) *Error {
	return &Error{Kind: KindAPIConnection, Provider: provider, Detail: detail}
}

func APIBadRequest(provider string, detail string) *Error {
	return &Error{Kind: KindAPIBadRequest, Provider: provider, Detail: detail}
}

func APIUnexpected(provider string, detail string) *Error {
	return &Error{Kind: KindAPIUnexpected, Provider: provider, Detail: detail}
}

func RecordingTooShort(seconds float64) *Error {
	return &Error{Kind: KindRecordingTooShort, Seconds: seconds, Detail: "recording shorter than configured floor"}
}

var (
	// ErrEmptyRecording indicates stop() produced no captured chunks.
	ErrEmptyRecording = &Error{Kind: KindEmptyRecording, Detail: "no audio chunks were captured"}
	// ErrMicrophoneUnavailable indicates no input device could be opened.
	ErrMicrophoneUnavailable = &Error{Kind: KindMicrophoneUnavailable, Detail: "no input device could be opened"}
	// ErrEmptyResponse indicates a transcription response had no text field.
	ErrEmptyResponse = &Error{Kind: KindEmptyResponse, Detail: "provider response had no text field"}
	// ErrPipelineUnavailable indicates runtime capture/transcription wiring is missing.
	ErrPipelineUnavailable = errors.New("audio capture and transcription pipeline not implemented")
)

// IsGracefulDegradation reports whether a post-processing error should be
// swallowed in favor of the untransformed transcript, per the transcription
// worker's graceful-degradation rule.
func IsGracefulDegradation(err error) bool {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return false
	}
	if appErr.Kind == KindAPIBadRequest {
		return true
	}
	return appErr.Kind == KindNotFound && appErr.Resource == "model"
}
