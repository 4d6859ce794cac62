package service

import "testing"

func TestSuccessMessage_KnownCommands(t *testing.T) {
	cases := []struct {
		value string
		want  string
	}{
		{"ON", "Switched Lamp on"},
		{"OFF", "Switched Lamp off"},
		{"UP", "Moved Lamp up"},
		{"DOWN", "Moved Lamp down"},
		{"MOVE", "Moving Lamp"},
		{"STOP", "Stopped Lamp"},
		{"INCREASE", "Increased Lamp"},
		{"DECREASE", "Decreased Lamp"},
		{"UNDEF", "Reset Lamp to an undefined state"},
		{"", "Cleared state of Lamp"},
		{"PLAY", "Started playback on Lamp"},
		{"PAUSE", "Paused Lamp"},
		{"NEXT", "Skipped Lamp to the next track"},
		{"PREVIOUS", "Skipped Lamp to the previous track"},
		{"REWIND", "Rewinding Lamp"},
		{"FASTFORWARD", "Fast forwarding Lamp"},
	}
	for _, tc := range cases {
		if got := successMessage(tc.value, "Lamp", "ignored"); got != tc.want {
			t.Errorf("successMessage(%q) = %q, want %q", tc.value, got, tc.want)
		}
	}
}

func TestSuccessMessage_MatchIsCaseSensitive(t *testing.T) {
	got := successMessage("on", "Lamp", "on")
	if got != "Sent on to Lamp" {
		t.Errorf("lowercase 'on' must hit the generic template, got %q", got)
	}
}

func TestSuccessMessage_GenericFallbackUsesMappedValue(t *testing.T) {
	got := successMessage("55", "Dimmer", "55 %")
	if got != "Sent 55 % to Dimmer" {
		t.Errorf("got %q", got)
	}
}
