package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseValidJSONCConfig(t *testing.T) {
	input := `
{
  // dictation hotkey
  "hotkey": {
    "dictate": "ctrl+space",
    "cancel": "esc"
  },
  "audio": {
    "sample_rate": 44100,
  },
  "provider": {
    "name": "openai",
    "api_key": "sk-test",
  },
}
`

	cfg, warnings, err := Parse(input, Default())
	require.NoError(t, err)
	require.Equal(t, "ctrl+space", cfg.Hotkey.Dictate)
	require.Equal(t, 44100, cfg.Audio.SampleRate)
	require.Equal(t, "sk-test", cfg.Provider.APIKey)
	require.Empty(t, warnings)
}

func TestParseLegacyFormatStillSupportedWithWarning(t *testing.T) {
	cfg, warnings, err := Parse(`
hotkey_dictate = ctrl+shift+space
manual_stop = true
`, Default())
	require.NoError(t, err)
	require.Equal(t, "ctrl+shift+space", cfg.Hotkey.Dictate)
	require.True(t, cfg.Behavior.ManualStop)

	found := false
	for _, w := range warnings {
		if strings.Contains(w.Message, "legacy") {
			found = true
			break
		}
	}
	require.True(t, found, "expected legacy format warning, warnings=%+v", warnings)
}

func TestParseLegacySkipsCommentsAndBlankLines(t *testing.T) {
	cfg, _, err := Parse(`
# a comment

provider = groq
`, Default())
	require.NoError(t, err)
	require.Equal(t, "groq", cfg.Provider.Name)
}

func TestParseLegacyRejectsMalformedLine(t *testing.T) {
	_, _, err := Parse("not-a-key-value-line\n", Default())
	require.Error(t, err)
	require.Contains(t, err.Error(), "line 1")
}

func TestParseLegacyRejectsUnknownKey(t *testing.T) {
	_, _, err := Parse("bogus_key = value\n", Default())
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown key")
}

func TestParseJSONCUnknownKeyFails(t *testing.T) {
	_, _, err := Parse(`{"foo": {"bar": 1}}`, Default())
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown field")
}

func TestParseJSONCLineNumberOnError(t *testing.T) {
	_, _, err := Parse(`
{
  "audio": {
    "sample_rate": 16000
    "chunk_size": 1024
  }
}
`, Default())
	require.Error(t, err)
	require.Contains(t, err.Error(), "line")
}

func TestParseEmptyContentReturnsDefaults(t *testing.T) {
	cfg, warnings, err := Parse("   \n  ", Default())
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.NotEmpty(t, warnings, "default provider has no api key, so validate warns")
}

func TestParsePostProcessFields(t *testing.T) {
	cfg, _, err := Parse(`{
  "provider": {"name": "openai", "api_key": "sk-test"},
  "post_process": {
    "enable": true,
    "provider": "zai",
    "api_key": "z-test",
    "prompt": "clean this up"
  }
}`, Default())
	require.NoError(t, err)
	require.True(t, cfg.PostProcess.Enable)
	require.Equal(t, "zai", cfg.PostProcess.Provider)
	require.Equal(t, "clean this up", cfg.PostProcess.Prompt)
}
