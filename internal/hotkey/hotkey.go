// Package hotkey wraps golang.design/x/hotkey's global key registration
// behind a combo-string config surface: dictate, cancel, and an optional
// format-selection hotkey, each posting a typed event onto a single
// ordered channel for the session loop to consume.
package hotkey

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.design/x/hotkey"
)

// EventKind names which registered combo fired.
type EventKind int

const (
	EventDictate EventKind = iota
	EventCancel
	EventFormatSelect
)

func (k EventKind) String() string {
	switch k {
	case EventDictate:
		return "dictate"
	case EventCancel:
		return "cancel"
	case EventFormatSelect:
		return "format_select"
	default:
		return "unknown"
	}
}

// Event is one fired hotkey, posted in registration order per combo but with
// no ordering guarantee across distinct combos beyond OS delivery order.
type Event struct {
	Kind EventKind
}

// Source owns zero or more registered global hotkeys and multiplexes their
// keydown events onto a single channel for one reader to consume.
type Source struct {
	logger *slog.Logger
	events chan Event
	keys   []*hotkey.Hotkey
}

// New parses combo, cancelCombo, and the optional formatCombo (empty string
// disables it) and registers them as OS-level global hotkeys. Registration
// failures on any combo cause New to unregister everything already
// registered and return the error.
func New(logger *slog.Logger, combo, cancelCombo, formatCombo string) (*Source, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Source{
		logger: logger,
		events: make(chan Event, 8),
	}

	if err := s.register(combo, EventDictate); err != nil {
		s.Close()
		return nil, fmt.Errorf("register dictate hotkey %q: %w", combo, err)
	}
	if err := s.register(cancelCombo, EventCancel); err != nil {
		s.Close()
		return nil, fmt.Errorf("register cancel hotkey %q: %w", cancelCombo, err)
	}
	if formatCombo != "" {
		if err := s.register(formatCombo, EventFormatSelect); err != nil {
			s.Close()
			return nil, fmt.Errorf("register format-selection hotkey %q: %w", formatCombo, err)
		}
	}

	return s, nil
}

func (s *Source) register(combo string, kind EventKind) error {
	mods, key, err := parseCombo(combo)
	if err != nil {
		return err
	}

	hk := hotkey.New(mods, key)
	if err := hk.Register(); err != nil {
		return err
	}
	s.keys = append(s.keys, hk)

	go func() {
		for range hk.Keydown() {
			select {
			case s.events <- Event{Kind: kind}:
			default:
				s.logger.Warn("hotkey event dropped, channel full", "kind", kind)
			}
		}
	}()

	return nil
}

// Events returns the channel events are posted on. Close does not close it.
func (s *Source) Events() <-chan Event {
	return s.events
}

// Run blocks forwarding nothing itself; it exists so callers can select on
// ctx.Done() alongside Events() without a separate goroutine. Run returns
// when ctx is cancelled, after closing the source.
func (s *Source) Run(ctx context.Context) {
	<-ctx.Done()
	s.Close()
}

// Close unregisters every hotkey; the event channel stays open. Safe to call
// more than once.
func (s *Source) Close() {
	for _, hk := range s.keys {
		_ = hk.Unregister()
	}
	s.keys = nil
}

// ValidateCombo reports whether combo parses as a valid hotkey combination,
// without registering it. Used by the doctor command to sanity-check
// configured combos without contending for OS-level hotkey ownership.
func ValidateCombo(combo string) error {
	_, _, err := parseCombo(combo)
	return err
}

// parseCombo parses a combo string like "ctrl+alt+space" or "esc" into
// golang.design/x/hotkey modifiers and a key, case-insensitively and
// order-insensitively.
func parseCombo(combo string) ([]hotkey.Modifier, hotkey.Key, error) {
	parts := strings.Split(combo, "+")
	if len(parts) == 0 {
		return nil, 0, fmt.Errorf("empty hotkey combination")
	}

	var mods []hotkey.Modifier
	var key hotkey.Key
	keySet := false

	for _, raw := range parts {
		token := strings.ToLower(strings.TrimSpace(raw))
		if mod, ok := modifierTable[token]; ok {
			mods = append(mods, mod)
			continue
		}
		k, ok := keyTable[token]
		if !ok {
			return nil, 0, fmt.Errorf("unrecognized hotkey token %q", raw)
		}
		if keySet {
			return nil, 0, fmt.Errorf("hotkey combination %q names more than one key", combo)
		}
		key = k
		keySet = true
	}

	if !keySet {
		return nil, 0, fmt.Errorf("hotkey combination %q names no key", combo)
	}
	return mods, key, nil
}

var modifierTable = map[string]hotkey.Modifier{
	"ctrl":    hotkey.ModCtrl,
	"control": hotkey.ModCtrl,
	"shift":   hotkey.ModShift,
	"alt":     hotkey.ModOption,
	"option":  hotkey.ModOption,
}

var keyTable = map[string]hotkey.Key{
	"space":  hotkey.KeySpace,
	"esc":    hotkey.KeyEscape,
	"escape": hotkey.KeyEscape,
	"a":      hotkey.KeyA,
	"b":      hotkey.KeyB,
	"c":      hotkey.KeyC,
	"d":      hotkey.KeyD,
	"e":      hotkey.KeyE,
	"f":      hotkey.KeyF,
	"g":      hotkey.KeyG,
	"h":      hotkey.KeyH,
	"i":      hotkey.KeyI,
	"j":      hotkey.KeyJ,
	"k":      hotkey.KeyK,
	"l":      hotkey.KeyL,
	"m":      hotkey.KeyM,
	"n":      hotkey.KeyN,
	"o":      hotkey.KeyO,
	"p":      hotkey.KeyP,
	"q":      hotkey.KeyQ,
	"r":      hotkey.KeyR,
	"s":      hotkey.KeyS,
	"t":      hotkey.KeyT,
	"u":      hotkey.KeyU,
	"v":      hotkey.KeyV,
	"w":      hotkey.KeyW,
	"x":      hotkey.KeyX,
	"y":      hotkey.KeyY,
	"z":      hotkey.KeyZ,
	"0":      hotkey.Key0,
	"1":      hotkey.Key1,
	"2":      hotkey.Key2,
	"3":      hotkey.Key3,
	"4":      hotkey.Key4,
	"5":      hotkey.Key5,
	"6":      hotkey.Key6,
	"7":      hotkey.Key7,
	"8":      hotkey.Key8,
	"9":      hotkey.Key9,
}
