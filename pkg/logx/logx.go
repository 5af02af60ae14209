package logx

import (
	"fmt"
	"log"
	"os"
	"time"

	"golang.org/x/term"
)

const (
	reset   = "\x1b[0m"
	bold    = "\x1b[1m"
	gray    = "\x1b[90m"
	cyan    = "\x1b[36m"
	blue    = "\x1b[34m"
	yellow  = "\x1b[33m"
	green   = "\x1b[32m"
	magenta = "\x1b[35m"
	red     = "\x1b[31m"
)

var enableColor = true

func init() {
	// Disable color if NO_COLOR is set or stdout is not a terminal
	if os.Getenv("NO_COLOR") != "" {
		enableColor = false
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		enableColor = false
	}
}

// SetColor forces color on or off.
func SetColor(on bool) { enableColor = on }

// C returns a color-coded string (or plain string if color disabled)
func C(color, s string) string {
	if !enableColor {
		return s
	}
	return color + s + reset
}

// Cf returns a color-coded formatted string
func Cf(color, format string, args ...any) string {
	return C(color, fmt.Sprintf(format, args...))
}

// Channel tags, all four characters wide.
const (
	GEN  = "GEN "
	BEST = "BEST"
	EVAL = "EVAL"
	TRN  = "TRN "
	SRV  = "SRV "
)

var channelColors = map[string]string{
	GEN:  blue,
	BEST: green,
	EVAL: yellow,
	TRN:  cyan,
	SRV:  magenta,
}

// Channel returns a consistently-padded colored channel tag
func Channel(ch string) string {
	return Cf(channelColors[ch], "[%-4s]", ch)
}

// Printf logs one line tagged with ch through the standard logger.
func Printf(ch, format string, args ...any) {
	log.Printf("%s %s", Channel(ch), fmt.Sprintf(format, args...))
}

func Success(s string) string { return C(green, s) }

func Successf(format string, args ...any) string { return C(green, fmt.Sprintf(format, args...)) }

func Error(s string) string { return C(red, s) }

func Errorf(format string, args ...any) string { return C(red, fmt.Sprintf(format, args...)) }

func Warn(s string) string { return C(yellow, s) }

func Highlight(s string) string { return C(bold, s) }

func Dim(s string) string { return C(gray, s) }

// FitnessColor colours a fitness in [0, 1]: green from 0.8, yellow from 0.5.
func FitnessColor(f float64) string {
	s := fmt.Sprintf("%.2f", f)
	switch {
	case f >= 0.8:
		return Success(s)
	case f >= 0.5:
		return Warn(s)
	}
	return Error(s)
}

// FormatDuration returns a human-readable string for a duration
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
