package main

import (
	"os"
	"strings"
)

// mode represents the CLI's operating mode.
type mode string

const (
	modeInteractive mode = "interactive"
	modeDashboard   mode = "dashboard"
)

// detectMode determines the CLI's operating mode from the AUTHCORE_MODE
// environment variable: "dashboard" (case-insensitive) selects non-
// interactive JSON mode, anything else (including unset) selects
// interactive mode.
func detectMode() mode {
	env := strings.ToLower(strings.TrimSpace(os.Getenv("AUTHCORE_MODE")))
	if env == "dashboard" {
		return modeDashboard
	}
	return modeInteractive
}
