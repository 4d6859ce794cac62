package service

import "fmt"

const msgNoConnection = "No connection to the server"

// successTemplates maps well-known command values (case-sensitive, exact
// match) to a human-readable phrase over the item's display label.
var successTemplates = map[string]string{
	"ON":          "Switched %s on",
	"OFF":         "Switched %s off",
	"UP":          "Moved %s up",
	"DOWN":        "Moved %s down",
	"MOVE":        "Moving %s",
	"STOP":        "Stopped %s",
	"INCREASE":    "Increased %s",
	"DECREASE":    "Decreased %s",
	"UNDEF":       "Reset %s to an undefined state",
	"":            "Cleared state of %s",
	"PLAY":        "Started playback on %s",
	"PAUSE":       "Paused %s",
	"NEXT":        "Skipped %s to the next track",
	"PREVIOUS":    "Skipped %s to the previous track",
	"REWIND":      "Rewinding %s",
	"FASTFORWARD": "Fast forwarding %s",
}

// successMessage picks the phrase for a completed update. Unknown values fall
// back to a generic template over label and mapped value.
func successMessage(value, label, mappedValue string) string {
	if tpl, ok := successTemplates[value]; ok {
		return fmt.Sprintf(tpl, label)
	}
	return fmt.Sprintf("Sent %s to %s", mappedValue, label)
}

func failureMessage(label string, status int) string {
	return fmt.Sprintf("Failed to update %s (HTTP %d)", label, status)
}
