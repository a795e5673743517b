// Package transcription implements the transcription worker: silence
// trimming, HTTP upload to a speech-to-text provider, optional LLM
// post-processing, and the supported provider table.
package transcription

import "github.com/v01gh7/rapidwhisper/internal/apperrors"

// Provider identifies a configured STT/LLM backend.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGroq   Provider = "groq"
	ProviderGLM    Provider = "glm"
	ProviderCustom Provider = "custom"
	ProviderZAI    Provider = "zai"
)

// LLMShape names the chat request/response wire shape a provider's
// post-processing endpoint speaks.
type LLMShape string

const (
	ShapeOpenAIChat       LLMShape = "openai_chat"
	ShapeAnthropicMessage LLMShape = "anthropic_messages"
)

// ProviderSpec is the fixed per-provider endpoint/model/shape table.
type ProviderSpec struct {
	BaseURL                string
	DefaultTranscribeModel string
	SupportsTranscription  bool
	LLMShape               LLMShape
}

var providerTable = map[Provider]ProviderSpec{
	ProviderOpenAI: {
		BaseURL:                "https://api.openai.com/v1/",
		DefaultTranscribeModel: "whisper-1",
		SupportsTranscription:  true,
		LLMShape:               ShapeOpenAIChat,
	},
	ProviderGroq: {
		BaseURL:                "https://api.groq.com/openai/v1/",
		DefaultTranscribeModel: "whisper-large-v3",
		SupportsTranscription:  true,
		LLMShape:               ShapeOpenAIChat,
	},
	ProviderGLM: {
		BaseURL:                "https://open.bigmodel.cn/api/paas/v4/",
		DefaultTranscribeModel: "glm-4-voice",
		SupportsTranscription:  true,
		LLMShape:               ShapeOpenAIChat,
	},
	ProviderCustom: {
		// BaseURL and DefaultTranscribeModel are user-supplied; the zero
		// values here are overridden from config before use.
		SupportsTranscription: true,
		LLMShape:              ShapeOpenAIChat,
	},
	ProviderZAI: {
		BaseURL:               "https://api.z.ai/api/anthropic",
		SupportsTranscription: false,
		LLMShape:              ShapeAnthropicMessage,
	},
}

// Spec returns the fixed endpoint/model table entry for provider, or an
// error if provider is unrecognized.
func Spec(provider Provider) (ProviderSpec, error) {
	spec, ok := providerTable[provider]
	if !ok {
		return ProviderSpec{}, apperrors.New(apperrors.KindMissingConfig, "unknown provider: "+string(provider))
	}
	return spec, nil
}
