// Package output renders command results for terminals, markdown consumers
// and machines.
package output

import "fmt"

// Mode selects how results are rendered.
type Mode string

// Output modes.
const (
	// ModeAuto picks text on a terminal and markdown otherwise.
	ModeAuto     Mode = "auto"
	ModeText     Mode = "text"
	ModeMarkdown Mode = "markdown"
	ModeJSON     Mode = "json"
)

// ParseMode converts a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeAuto, ModeText, ModeMarkdown, ModeJSON:
		return m, nil
	case "":
		return ModeAuto, nil
	default:
		return ModeAuto, fmt.Errorf("unknown output mode %q", s)
	}
}
