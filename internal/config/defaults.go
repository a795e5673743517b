package config

// Default returns the canonical runtime configuration used when no file is
// present.
func Default() Config {
	return Config{
		Hotkey: HotkeyConfig{
			Dictate:      "ctrl+space",
			Cancel:       "esc",
			FormatSelect: "ctrl+alt+space",
			FormatTags:   []string{"markdown", "plain", "whatsapp"},
		},
		Audio: AudioConfig{
			SampleRate: 16000,
			ChunkSize:  1024,
		},
		VAD: VADConfig{
			SilenceThreshold: 0.02,
			SilenceDuration:  1.5,
		},
		Behavior: BehaviorConfig{
			ManualStop:          false,
			AutoHideDelay:       3.0,
			KeepRecordings:      false,
			MinRecordingSeconds: 0,
			RecordingsDir:       "",
		},
		Provider: ProviderConfig{
			Name: "openai",
		},
		PostProcess: PostProcessConfig{
			Enable: false,
		},
		Indicator: IndicatorConfig{
			Enable:         true,
			SoundEnable:    true,
			DesktopAppName: "rapidwhisper",
			ErrorTimeoutMS: 1200,
		},
	}
}
