// Package doctor runs runtime readiness diagnostics for config, hotkeys,
// audio capture, the clipboard backend, and the configured providers.
package doctor

import (
	"context"
	"fmt"
	"net/http"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/v01gh7/rapidwhisper/internal/audio"
	"github.com/v01gh7/rapidwhisper/internal/config"
	"github.com/v01gh7/rapidwhisper/internal/hotkey"
	"github.com/v01gh7/rapidwhisper/internal/transcription"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes environment/config/runtime checks for a loaded config.
func Run(cfg config.Loaded) Report {
	checks := []Check{}

	checks = append(checks, Check{
		Name:    "config",
		Pass:    true,
		Message: fmt.Sprintf("loaded %q", cfg.Path),
	})

	checks = append(checks, checkHotkeyCombos(cfg.Config))
	checks = append(checks, checkClipboardBackend())
	checks = append(checks, checkAudioDevices())
	checks = append(checks, checkProviderCredentials("provider", cfg.Config.Provider.Name, cfg.Config.Provider.APIKey, cfg.Config.Provider.BaseURL))

	if cfg.Config.PostProcess.Enable {
		checks = append(checks, checkProviderCredentials("post_process.provider", cfg.Config.PostProcess.Provider, cfg.Config.PostProcess.APIKey, cfg.Config.PostProcess.BaseURL))
	}

	checks = append(checks, checkProviderReachable(cfg.Config.Provider))

	return Report{Checks: checks}
}

// checkHotkeyCombos validates every configured combo parses without
// contending for OS-level hotkey registration.
func checkHotkeyCombos(cfg config.Config) Check {
	combos := map[string]string{
		"hotkey.dictate": cfg.Hotkey.Dictate,
		"hotkey.cancel":  cfg.Hotkey.Cancel,
	}
	if cfg.Hotkey.FormatSelect != "" {
		combos["hotkey.format_select"] = cfg.Hotkey.FormatSelect
	}

	for name, combo := range combos {
		if err := hotkey.ValidateCombo(combo); err != nil {
			return Check{Name: "hotkey.combos", Pass: false, Message: fmt.Sprintf("%s=%q: %v", name, combo, err)}
		}
	}
	return Check{Name: "hotkey.combos", Pass: true, Message: "all configured combinations parse"}
}

// checkClipboardBackend checks for the external clipboard utility
// github.com/atotto/clipboard shells out to on X11/Wayland. Windows and
// macOS use native APIs and always pass.
func checkClipboardBackend() Check {
	if runtime.GOOS != "linux" {
		return Check{Name: "clipboard", Pass: true, Message: "native clipboard API"}
	}

	candidates := []string{"wl-copy", "xclip", "xsel"}
	for _, bin := range candidates {
		if path, err := exec.LookPath(bin); err == nil {
			return Check{Name: "clipboard", Pass: true, Message: fmt.Sprintf("found %s at %s", bin, path)}
		}
	}
	return Check{Name: "clipboard", Pass: false, Message: fmt.Sprintf("none of %s found in PATH", strings.Join(candidates, ", "))}
}

// checkAudioDevices lists Pulse input sources and confirms a default exists.
func checkAudioDevices() Check {
	devices, err := audio.ListDevices(context.Background())
	if err != nil {
		return Check{Name: "audio.device", Pass: false, Message: err.Error()}
	}
	if len(devices) == 0 {
		return Check{Name: "audio.device", Pass: false, Message: "no input devices found"}
	}
	for _, d := range devices {
		if d.Default {
			return Check{Name: "audio.device", Pass: true, Message: fmt.Sprintf("default source %q available=%v", d.ID, d.Available)}
		}
	}
	return Check{Name: "audio.device", Pass: false, Message: "no default input device reported"}
}

// checkProviderCredentials validates that a provider name is recognized and
// carries the credentials its provider table entry requires.
func checkProviderCredentials(name, providerName, apiKey, baseURL string) Check {
	spec, err := transcription.Spec(transcription.Provider(providerName))
	if err != nil {
		return Check{Name: name, Pass: false, Message: err.Error()}
	}
	if spec.BaseURL == "" && strings.TrimSpace(baseURL) == "" {
		return Check{Name: name, Pass: false, Message: fmt.Sprintf("%s=%q requires base_url", name, providerName)}
	}
	if strings.TrimSpace(apiKey) == "" {
		return Check{Name: name, Pass: false, Message: fmt.Sprintf("%s=%q has no api_key configured", name, providerName)}
	}
	return Check{Name: name, Pass: true, Message: fmt.Sprintf("%s configured", providerName)}
}

// checkProviderReachable probes the configured STT provider's base URL for
// basic network reachability. Any HTTP response, whatever its status code,
// passes the check; a transport failure (TLS, DNS, connect, timeout) fails
// it. The probe never sends the configured API key.
func checkProviderReachable(cfg config.ProviderConfig) Check {
	spec, err := transcription.Spec(transcription.Provider(cfg.Name))
	if err != nil {
		return Check{Name: "provider.reachable", Pass: false, Message: err.Error()}
	}

	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = spec.BaseURL
	}
	if base == "" {
		return Check{Name: "provider.reachable", Pass: false, Message: "no base_url to probe"}
	}

	client := http.Client{Timeout: 3 * time.Second}
	resp, err := client.Get(base)
	if err != nil {
		return Check{Name: "provider.reachable", Pass: false, Message: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()

	return Check{Name: "provider.reachable", Pass: true, Message: fmt.Sprintf("HTTP %d from %s", resp.StatusCode, base)}
}
