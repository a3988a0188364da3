// Package terminal decides whether output may use ANSI color and provides
// the palette for status words. Detection honors the conventional
// environment switches: CLICOLOR_FORCE overrides everything, NO_COLOR
// disables, CLICOLOR applies only on a real terminal.
package terminal

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// ANSI codes for the palette
const (
	resetCode  = "\033[0m"
	grayCode   = "\033[90m"
	greenCode  = "\033[32m"
	yellowCode = "\033[33m"
	redCode    = "\033[31m"
)

// Options controls color detection.
type Options struct {
	// ForceColor enables color regardless of the environment
	ForceColor bool

	// DisableColor disables color regardless of the environment. It wins
	// over ForceColor.
	DisableColor bool
}

// Palette colors status words when the output supports it and passes text
// through unchanged otherwise.
type Palette struct {
	enabled bool
}

// NewPalette creates a Palette for the current process environment
func NewPalette(options Options) *Palette {
	return &Palette{enabled: colorEnabled(options)}
}

// colorEnabled applies the preference chain: explicit options, then
// CLICOLOR_FORCE, then NO_COLOR, then terminal detection with CLICOLOR.
func colorEnabled(options Options) bool {
	if options.DisableColor {
		return false
	}
	if options.ForceColor {
		return true
	}
	if isTruthy(os.Getenv("CLICOLOR_FORCE")) {
		return true
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	if os.Getenv("TERM") == "dumb" || !term.IsTerminal(int(os.Stdout.Fd())) {
		return false
	}
	if cliColor := os.Getenv("CLICOLOR"); cliColor != "" {
		return isTruthy(cliColor)
	}
	return true
}

// isTruthy reports whether an environment switch value means yes
func isTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

func (p *Palette) paint(code, text string) string {
	if !p.enabled {
		return text
	}
	return code + text + resetCode
}

// Good colors text green
func (p *Palette) Good(text string) string { return p.paint(greenCode, text) }

// Warn colors text yellow
func (p *Palette) Warn(text string) string { return p.paint(yellowCode, text) }

// Bad colors text red
func (p *Palette) Bad(text string) string { return p.paint(redCode, text) }

// Dim colors text gray
func (p *Palette) Dim(text string) string { return p.paint(grayCode, text) }

// StatusWord colors a backend or service status word by its meaning.
// Unrecognized words pass through unchanged.
func (p *Palette) StatusWord(word string) string {
	switch strings.ToUpper(strings.TrimSpace(word)) {
	case "OK", "ONLINE", "ACTIVE":
		return p.Good(word)
	case "REQUESTING_CONFIGURATION", "ACCESS_DENIED", "INACTIVE", "DOWN":
		return p.Warn(word)
	case "FAILED", "OFFLINE", "PORT_ERROR", "NOT_FOUND", "AUTHENTICATION_REQUIRED":
		return p.Bad(word)
	case "UNKNOWN":
		return p.Dim(word)
	default:
		return word
	}
}
