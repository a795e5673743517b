package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

type jsoncConfig struct {
	Hotkey      *jsoncHotkey      `json:"hotkey"`
	Audio       *jsoncAudio       `json:"audio"`
	VAD         *jsoncVAD         `json:"vad"`
	Behavior    *jsoncBehavior    `json:"behavior"`
	Provider    *jsoncProvider    `json:"provider"`
	PostProcess *jsoncPostProcess `json:"post_process"`
	Indicator   *jsoncIndicator   `json:"indicator"`
}

type jsoncHotkey struct {
	Dictate      *string  `json:"dictate"`
	Cancel       *string  `json:"cancel"`
	FormatSelect *string  `json:"format_select"`
	FormatTags   []string `json:"format_tags"`
}

type jsoncAudio struct {
	SampleRate *int `json:"sample_rate"`
	ChunkSize  *int `json:"chunk_size"`
}

type jsoncVAD struct {
	SilenceThreshold *float64 `json:"silence_threshold"`
	SilenceDuration  *float64 `json:"silence_duration"`
}

type jsoncBehavior struct {
	ManualStop          *bool    `json:"manual_stop"`
	AutoHideDelay       *float64 `json:"auto_hide_delay"`
	KeepRecordings      *bool    `json:"keep_recordings"`
	MinRecordingSeconds *float64 `json:"min_recording_seconds"`
	RecordingsDir       *string  `json:"recordings_dir"`
}

type jsoncProvider struct {
	Name    *string `json:"name"`
	APIKey  *string `json:"api_key"`
	BaseURL *string `json:"base_url"`
	Model   *string `json:"model"`
}

type jsoncPostProcess struct {
	Enable   *bool   `json:"enable"`
	Provider *string `json:"provider"`
	APIKey   *string `json:"api_key"`
	BaseURL  *string `json:"base_url"`
	Model    *string `json:"model"`
	Prompt   *string `json:"prompt"`
}

type jsoncIndicator struct {
	Enable         *bool   `json:"enable"`
	SoundEnable    *bool   `json:"sound_enable"`
	DesktopAppName *string `json:"desktop_app_name"`
	ErrorTimeoutMS *int    `json:"error_timeout_ms"`
}

func parseJSONC(content string, base Config) (Config, []Warning, error) {
	normalized, err := normalizeJSONC(content)
	if err != nil {
		return Config{}, nil, err
	}

	decoder := json.NewDecoder(strings.NewReader(normalized))
	decoder.DisallowUnknownFields()

	var payload jsoncConfig
	if err := decoder.Decode(&payload); err != nil {
		return Config{}, nil, wrapJSONDecodeError(normalized, err)
	}
	if err := ensureSingleJSONValue(decoder); err != nil {
		return Config{}, nil, wrapJSONDecodeError(normalized, err)
	}

	cfg := base
	payload.applyTo(&cfg)

	warnings, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, warnings, nil
}

func (payload jsoncConfig) applyTo(cfg *Config) {
	if h := payload.Hotkey; h != nil {
		if h.Dictate != nil {
			cfg.Hotkey.Dictate = *h.Dictate
		}
		if h.Cancel != nil {
			cfg.Hotkey.Cancel = *h.Cancel
		}
		if h.FormatSelect != nil {
			cfg.Hotkey.FormatSelect = *h.FormatSelect
		}
		if h.FormatTags != nil {
			cfg.Hotkey.FormatTags = h.FormatTags
		}
	}

	if a := payload.Audio; a != nil {
		if a.SampleRate != nil {
			cfg.Audio.SampleRate = *a.SampleRate
		}
		if a.ChunkSize != nil {
			cfg.Audio.ChunkSize = *a.ChunkSize
		}
	}

	if v := payload.VAD; v != nil {
		if v.SilenceThreshold != nil {
			cfg.VAD.SilenceThreshold = *v.SilenceThreshold
		}
		if v.SilenceDuration != nil {
			cfg.VAD.SilenceDuration = *v.SilenceDuration
		}
	}

	if b := payload.Behavior; b != nil {
		if b.ManualStop != nil {
			cfg.Behavior.ManualStop = *b.ManualStop
		}
		if b.AutoHideDelay != nil {
			cfg.Behavior.AutoHideDelay = *b.AutoHideDelay
		}
		if b.KeepRecordings != nil {
			cfg.Behavior.KeepRecordings = *b.KeepRecordings
		}
		if b.MinRecordingSeconds != nil {
			cfg.Behavior.MinRecordingSeconds = *b.MinRecordingSeconds
		}
		if b.RecordingsDir != nil {
			cfg.Behavior.RecordingsDir = *b.RecordingsDir
		}
	}

	if p := payload.Provider; p != nil {
		if p.Name != nil {
			cfg.Provider.Name = strings.TrimSpace(*p.Name)
		}
		if p.APIKey != nil {
			cfg.Provider.APIKey = *p.APIKey
		}
		if p.BaseURL != nil {
			cfg.Provider.BaseURL = strings.TrimSpace(*p.BaseURL)
		}
		if p.Model != nil {
			cfg.Provider.Model = strings.TrimSpace(*p.Model)
		}
	}

	if pp := payload.PostProcess; pp != nil {
		if pp.Enable != nil {
			cfg.PostProcess.Enable = *pp.Enable
		}
		if pp.Provider != nil {
			cfg.PostProcess.Provider = strings.TrimSpace(*pp.Provider)
		}
		if pp.APIKey != nil {
			cfg.PostProcess.APIKey = *pp.APIKey
		}
		if pp.BaseURL != nil {
			cfg.PostProcess.BaseURL = strings.TrimSpace(*pp.BaseURL)
		}
		if pp.Model != nil {
			cfg.PostProcess.Model = strings.TrimSpace(*pp.Model)
		}
		if pp.Prompt != nil {
			cfg.PostProcess.Prompt = *pp.Prompt
		}
	}

	if ind := payload.Indicator; ind != nil {
		if ind.Enable != nil {
			cfg.Indicator.Enable = *ind.Enable
		}
		if ind.SoundEnable != nil {
			cfg.Indicator.SoundEnable = *ind.SoundEnable
		}
		if ind.DesktopAppName != nil {
			cfg.Indicator.DesktopAppName = *ind.DesktopAppName
		}
		if ind.ErrorTimeoutMS != nil {
			cfg.Indicator.ErrorTimeoutMS = *ind.ErrorTimeoutMS
		}
	}
}

func normalizeJSONC(content string) (string, error) {
	withoutComments, err := stripJSONCComments(content)
	if err != nil {
		return "", err
	}
	return stripJSONCTrailingCommas(withoutComments), nil
}

func stripJSONCComments(content string) (string, error) {
	var out strings.Builder
	out.Grow(len(content))

	inString := false
	escape := false
	lineComment := false
	blockComment := false

	for i := 0; i < len(content); i++ {
		ch := content[i]

		if lineComment {
			if ch == '\n' {
				lineComment = false
				out.WriteByte(ch)
				continue
			}
			if ch == '\r' {
				lineComment = false
				out.WriteByte(ch)
				continue
			}
			out.WriteByte(' ')
			continue
		}

		if blockComment {
			if ch == '*' && i+1 < len(content) && content[i+1] == '/' {
				blockComment = false
				out.WriteString("  ")
				i++
				continue
			}
			if ch == '\n' || ch == '\r' || ch == '\t' {
				out.WriteByte(ch)
			} else {
				out.WriteByte(' ')
			}
			continue
		}

		if inString {
			out.WriteByte(ch)
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}

		if ch == '"' {
			inString = true
			out.WriteByte(ch)
			continue
		}

		if ch == '/' && i+1 < len(content) {
			next := content[i+1]
			if next == '/' {
				lineComment = true
				out.WriteString("  ")
				i++
				continue
			}
			if next == '*' {
				blockComment = true
				out.WriteString("  ")
				i++
				continue
			}
		}

		out.WriteByte(ch)
	}

	if blockComment {
		return "", fmt.Errorf("unterminated block comment in JSONC")
	}

	return out.String(), nil
}

func stripJSONCTrailingCommas(content string) string {
	var out strings.Builder
	out.Grow(len(content))

	inString := false
	escape := false

	for i := 0; i < len(content); i++ {
		ch := content[i]

		if inString {
			out.WriteByte(ch)
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}

		if ch == '"' {
			inString = true
			out.WriteByte(ch)
			continue
		}

		if ch == ',' {
			j := i + 1
			for j < len(content) && isJSONWhitespace(content[j]) {
				j++
			}
			if j < len(content) && (content[j] == '}' || content[j] == ']') {
				continue
			}
		}

		out.WriteByte(ch)
	}

	return out.String()
}

func isJSONWhitespace(ch byte) bool {
	switch ch {
	case ' ', '\n', '\r', '\t':
		return true
	default:
		return false
	}
}

func ensureSingleJSONValue(decoder *json.Decoder) error {
	var extra struct{}
	err := decoder.Decode(&extra)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err == nil {
		return fmt.Errorf("multiple JSON values are not allowed")
	}
	return err
}

func wrapJSONDecodeError(content string, err error) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, col := offsetToLineCol(content, syntaxErr.Offset)
		return fmt.Errorf("line %d column %d: %w", line, col, err)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		line, col := offsetToLineCol(content, typeErr.Offset)
		return fmt.Errorf("line %d column %d: %w", line, col, err)
	}

	return err
}

func offsetToLineCol(content string, offset int64) (int, int) {
	if offset <= 0 {
		return 1, 1
	}

	limit := int(offset)
	if limit > len(content) {
		limit = len(content)
	}

	line := 1
	col := 1
	for i := 0; i < limit-1; i++ {
		if content[i] == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}
