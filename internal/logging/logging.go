// Package logging provides leveled console logging with
// charmbracelet/log. Output goes to stderr only: stdout belongs to the
// widget and the one-shot commands.
package logging

import (
	"os"

	"github.com/charmbracelet/log"
)

var root = log.NewWithOptions(os.Stderr, log.Options{
	Level:           log.InfoLevel,
	Formatter:       log.TextFormatter,
	ReportTimestamp: false,
	Prefix:          "tickdeck",
})

// For returns a logger scoped to one component.
func For(component string) *log.Logger {
	return root.With("component", component)
}

// SetVerbose switches debug logging on or off.
func SetVerbose(verbose bool) {
	if verbose {
		root.SetLevel(log.DebugLevel)
	} else {
		root.SetLevel(log.InfoLevel)
	}
}
