package fsm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransitionHappyPath(t *testing.T) {
	s := StateIdle

	next, err := Transition(s, EventHotkeyPressed)
	require.NoError(t, err)
	require.Equal(t, StateRecording, next)

	next, err = Transition(next, EventHotkeyPressed)
	require.NoError(t, err)
	require.Equal(t, StateProcessing, next)

	next, err = Transition(next, EventTranscriptionOK)
	require.NoError(t, err)
	require.Equal(t, StateDisplaying, next)

	next, err = Transition(next, EventDisplayTimeoutElaps)
	require.NoError(t, err)
	require.Equal(t, StateIdle, next)
}

func TestTransitionSilenceDetectedStopsRecording(t *testing.T) {
	next, err := Transition(StateRecording, EventSilenceDetected)
	require.NoError(t, err)
	require.Equal(t, StateProcessing, next)
}

func TestTransitionCancelReturnsToIdle(t *testing.T) {
	next, err := Transition(StateRecording, EventCancelPressed)
	require.NoError(t, err)
	require.Equal(t, StateIdle, next)
}

func TestTransitionTranscriptionErrorGoesToErrorThenReset(t *testing.T) {
	next, err := Transition(StateProcessing, EventTranscriptionError)
	require.NoError(t, err)
	require.Equal(t, StateError, next)

	next, err = Transition(next, EventReset)
	require.NoError(t, err)
	require.Equal(t, StateIdle, next)
}

func TestTransitionDisplayingHotkeyHides(t *testing.T) {
	next, err := Transition(StateDisplaying, EventHotkeyPressed)
	require.NoError(t, err)
	require.Equal(t, StateIdle, next)
}

func TestTransitionFatalErrorFromAnyNonIdleState(t *testing.T) {
	states := []State{StateRecording, StateProcessing, StateDisplaying, StateError}
	for _, state := range states {
		next, err := Transition(state, EventFatalError)
		require.NoError(t, err)
		require.Equal(t, StateError, next)
	}
}

func TestTransitionFatalErrorFromIdleIsInvalid(t *testing.T) {
	next, err := Transition(StateIdle, EventFatalError)
	require.Error(t, err)
	require.Equal(t, StateIdle, next)
}

func TestTransitionMatrixInvalidTransitions(t *testing.T) {
	tests := []struct {
		name    string
		state   State
		event   Event
		want    State
		wantErr bool
	}{
		{name: "idle silence invalid", state: StateIdle, event: EventSilenceDetected, want: StateIdle, wantErr: true},
		{name: "idle cancel invalid", state: StateIdle, event: EventCancelPressed, want: StateIdle, wantErr: true},
		{name: "recording transcription-ok invalid", state: StateRecording, event: EventTranscriptionOK, want: StateRecording, wantErr: true},
		{name: "processing hotkey invalid", state: StateProcessing, event: EventHotkeyPressed, want: StateProcessing, wantErr: true},
		{name: "displaying silence invalid", state: StateDisplaying, event: EventSilenceDetected, want: StateDisplaying, wantErr: true},
		{name: "error hotkey invalid", state: StateError, event: EventHotkeyPressed, want: StateError, wantErr: true},
		{name: "error reset valid", state: StateError, event: EventReset, want: StateIdle, wantErr: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			next, err := Transition(tc.state, tc.event)
			require.Equal(t, tc.want, next)
			if tc.wantErr {
				require.Error(t, err)
				require.Contains(t, err.Error(), "invalid transition")
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestTransitionUnknownState(t *testing.T) {
	next, err := Transition(State("mystery"), EventHotkeyPressed)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown state")
	require.Equal(t, State("mystery"), next)
}
