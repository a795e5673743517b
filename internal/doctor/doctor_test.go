package doctor

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/v01gh7/rapidwhisper/internal/config"
)

func TestReportOKAndString(t *testing.T) {
	report := Report{Checks: []Check{
		{Name: "one", Pass: true, Message: "good"},
		{Name: "two", Pass: false, Message: "bad"},
	}}

	require.False(t, report.OK())
	text := report.String()
	require.Contains(t, text, "[OK] one: good")
	require.Contains(t, text, "[FAIL] two: bad")
}

func TestCheckHotkeyCombosValid(t *testing.T) {
	cfg := config.Default()
	check := checkHotkeyCombos(cfg)
	require.True(t, check.Pass)
}

func TestCheckHotkeyCombosInvalid(t *testing.T) {
	cfg := config.Default()
	cfg.Hotkey.Dictate = "not-a-real-key"
	check := checkHotkeyCombos(cfg)
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "hotkey.dictate")
}

func TestCheckProviderCredentialsUnknownProvider(t *testing.T) {
	check := checkProviderCredentials("provider", "not-a-provider", "key", "")
	require.False(t, check.Pass)
}

func TestCheckProviderCredentialsMissingAPIKey(t *testing.T) {
	check := checkProviderCredentials("provider", "openai", "", "")
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "no api_key")
}

func TestCheckProviderCredentialsCustomRequiresBaseURL(t *testing.T) {
	check := checkProviderCredentials("provider", "custom", "key", "")
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "requires base_url")
}

func TestCheckProviderCredentialsPass(t *testing.T) {
	check := checkProviderCredentials("provider", "openai", "sk-test", "")
	require.True(t, check.Pass)
}

func TestCheckProviderReachableSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	cfg := config.ProviderConfig{Name: "custom", BaseURL: server.URL}
	check := checkProviderReachable(cfg)
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "HTTP 200")
}

func TestCheckProviderReachableUnknownProvider(t *testing.T) {
	check := checkProviderReachable(config.ProviderConfig{Name: "not-a-provider"})
	require.False(t, check.Pass)
}

func TestCheckProviderReachableNoBaseURL(t *testing.T) {
	check := checkProviderReachable(config.ProviderConfig{Name: "custom"})
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "no base_url")
}

func TestCheckAudioDevicesFailureWithInvalidPulseServer(t *testing.T) {
	t.Setenv("PULSE_SERVER", "unix:/tmp/definitely-missing-pulse-server")

	check := checkAudioDevices()
	require.False(t, check.Pass)
	require.Contains(t, check.Name, "audio.device")
}

func TestRunProducesConfigCheck(t *testing.T) {
	loaded := config.Loaded{Path: "/tmp/config.jsonc", Config: config.Default()}
	report := Run(loaded)

	var found bool
	for _, c := range report.Checks {
		if c.Name == "config" {
			found = true
			require.True(t, c.Pass)
			require.Contains(t, c.Message, "/tmp/config.jsonc")
		}
	}
	require.True(t, found)
}

func TestCheckClipboardBackendDoesNotPanic(t *testing.T) {
	require.NotPanics(t, func() {
		_ = checkClipboardBackend()
	})
	_ = strings.TrimSpace("")
}
