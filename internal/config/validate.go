package config

import (
	"fmt"
	"math/bits"
	"strings"

	"github.com/v01gh7/rapidwhisper/internal/transcription"
)

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if strings.TrimSpace(cfg.Hotkey.Dictate) == "" {
		return nil, fmt.Errorf("hotkey.dictate must not be empty")
	}
	if strings.TrimSpace(cfg.Hotkey.Cancel) == "" {
		return nil, fmt.Errorf("hotkey.cancel must not be empty")
	}

	switch cfg.Audio.SampleRate {
	case 16000, 44100, 48000:
	default:
		return nil, fmt.Errorf("audio.sample_rate must be one of 16000, 44100, 48000")
	}

	if cfg.Audio.ChunkSize < 256 || cfg.Audio.ChunkSize > 8192 || bits.OnesCount(uint(cfg.Audio.ChunkSize)) != 1 {
		return nil, fmt.Errorf("audio.chunk_size must be a power of two between 256 and 8192")
	}

	if cfg.VAD.SilenceThreshold < 0.01 || cfg.VAD.SilenceThreshold > 0.1 {
		return nil, fmt.Errorf("vad.silence_threshold must be within [0.01, 0.1]")
	}
	if cfg.VAD.SilenceDuration < 0.5 || cfg.VAD.SilenceDuration > 5.0 {
		return nil, fmt.Errorf("vad.silence_duration must be within [0.5, 5.0]")
	}

	if cfg.Behavior.AutoHideDelay < 0 {
		return nil, fmt.Errorf("behavior.auto_hide_delay must be >= 0")
	}

	if _, err := transcription.Spec(transcription.Provider(cfg.Provider.Name)); err != nil {
		return nil, fmt.Errorf("provider.name: %w", err)
	}
	if cfg.Provider.Name == "custom" && strings.TrimSpace(cfg.Provider.BaseURL) == "" {
		return nil, fmt.Errorf("provider.base_url must not be empty when provider.name=custom")
	}
	if cfg.Provider.Name != "custom" && strings.TrimSpace(cfg.Provider.APIKey) == "" {
		warnings = append(warnings, Warning{Message: fmt.Sprintf("provider.api_key is empty for provider %q; requests will fail", cfg.Provider.Name)})
	}

	if cfg.PostProcess.Enable {
		if strings.TrimSpace(cfg.PostProcess.Provider) == "" {
			return nil, fmt.Errorf("post_process.provider must not be empty when post_process.enable=true")
		}
		if _, err := transcription.Spec(transcription.Provider(cfg.PostProcess.Provider)); err != nil {
			return nil, fmt.Errorf("post_process.provider: %w", err)
		}
		if cfg.PostProcess.Provider == "custom" && strings.TrimSpace(cfg.PostProcess.BaseURL) == "" {
			return nil, fmt.Errorf("post_process.base_url must not be empty when post_process.provider=custom")
		}
	}

	return warnings, nil
}
