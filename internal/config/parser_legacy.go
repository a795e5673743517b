package config

import (
	"fmt"
	"strconv"
	"strings"
)

// parseLegacy reads the pre-JSONC flat `key = value` format, one setting per
// line, `#` starting a comment. Retained for users migrating from an older
// RapidWhisper config; new installs get JSONC from Default plus comments.
func parseLegacy(content string, base Config) (Config, []Warning, error) {
	cfg := base
	warnings := make([]Warning, 0)

	for lineNum, rawLine := range strings.Split(content, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return Config{}, nil, fmt.Errorf("line %d: expected key=value", lineNum+1)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if err := applyLegacyField(&cfg, key, value); err != nil {
			return Config{}, nil, fmt.Errorf("line %d: %w", lineNum+1, err)
		}
	}

	validatedWarnings, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	warnings = append(warnings, validatedWarnings...)
	return cfg, warnings, nil
}

func applyLegacyField(cfg *Config, key, value string) error {
	switch key {
	case "hotkey_dictate":
		cfg.Hotkey.Dictate = value
	case "hotkey_cancel":
		cfg.Hotkey.Cancel = value
	case "hotkey_format_select":
		cfg.Hotkey.FormatSelect = value
	case "hotkey_format_tags":
		cfg.Hotkey.FormatTags = splitLegacyList(value)
	case "sample_rate":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("sample_rate: %w", err)
		}
		cfg.Audio.SampleRate = n
	case "chunk_size":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("chunk_size: %w", err)
		}
		cfg.Audio.ChunkSize = n
	case "silence_threshold":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("silence_threshold: %w", err)
		}
		cfg.VAD.SilenceThreshold = f
	case "silence_duration":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("silence_duration: %w", err)
		}
		cfg.VAD.SilenceDuration = f
	case "manual_stop":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("manual_stop: %w", err)
		}
		cfg.Behavior.ManualStop = b
	case "auto_hide_delay":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("auto_hide_delay: %w", err)
		}
		cfg.Behavior.AutoHideDelay = f
	case "keep_recordings":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("keep_recordings: %w", err)
		}
		cfg.Behavior.KeepRecordings = b
	case "min_recording_seconds":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("min_recording_seconds: %w", err)
		}
		cfg.Behavior.MinRecordingSeconds = f
	case "recordings_dir":
		cfg.Behavior.RecordingsDir = value
	case "provider":
		cfg.Provider.Name = value
	case "provider_api_key":
		cfg.Provider.APIKey = value
	case "provider_base_url":
		cfg.Provider.BaseURL = value
	case "provider_model":
		cfg.Provider.Model = value
	case "post_process_enable":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("post_process_enable: %w", err)
		}
		cfg.PostProcess.Enable = b
	case "post_process_provider":
		cfg.PostProcess.Provider = value
	case "post_process_api_key":
		cfg.PostProcess.APIKey = value
	case "post_process_base_url":
		cfg.PostProcess.BaseURL = value
	case "post_process_model":
		cfg.PostProcess.Model = value
	case "post_process_prompt":
		cfg.PostProcess.Prompt = value
	case "indicator_enable":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("indicator_enable: %w", err)
		}
		cfg.Indicator.Enable = b
	case "indicator_sound_enable":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("indicator_sound_enable: %w", err)
		}
		cfg.Indicator.SoundEnable = b
	case "indicator_desktop_app_name":
		cfg.Indicator.DesktopAppName = value
	case "indicator_error_timeout_ms":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("indicator_error_timeout_ms: %w", err)
		}
		cfg.Indicator.ErrorTimeoutMS = n
	default:
		return fmt.Errorf("unknown key %q", key)
	}
	return nil
}

// splitLegacyList parses a comma-separated legacy list value, trimming
// whitespace around each entry and discarding empty ones.
func splitLegacyList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
