// Package ui renders jlink-update's terminal output: status lines, fields,
// tables, spinners, prompts and the download progress bar.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Palette.
var (
	Success = color.New(color.FgGreen, color.Bold)
	Error   = color.New(color.FgRed, color.Bold)
	Warning = color.New(color.FgYellow, color.Bold)
	Info    = color.New(color.FgCyan)
	Header  = color.New(color.FgMagenta, color.Bold)
	Muted   = color.New(color.FgHiBlack)

	VersionName = color.New(color.FgGreen, color.Bold)
	FieldLabel  = color.New(color.FgCyan)
	Installed   = color.New(color.FgGreen)
	Missing     = color.New(color.FgHiBlack)
)

var (
	// UseColors is false once Init disabled colors.
	UseColors = true

	// UseUnicode selects the unicode symbol and spinner sets.
	UseUnicode = true
)

type symbolSet struct {
	ok, fail, warn, info string
}

var (
	unicodeSymbols = symbolSet{ok: "✓", fail: "✗", warn: "!", info: "→"}
	asciiSymbols   = symbolSet{ok: "[OK]", fail: "[ERROR]", warn: "[WARN]", info: "->"}

	symbols = unicodeSymbols
)

// Init applies the output settings. NO_COLOR always disables colors.
func Init(useColors, useUnicode bool) {
	UseColors = useColors && os.Getenv("NO_COLOR") == ""
	UseUnicode = useUnicode

	if !UseColors {
		color.NoColor = true
	}

	symbols = unicodeSymbols
	if !useUnicode {
		symbols = asciiSymbols
	}
}

func statusLine(c *color.Color, symbol, format string, args []interface{}) {
	c.Printf("%s %s\n", symbol, fmt.Sprintf(format, args...))
}

// SuccessMsg prints a success line.
func SuccessMsg(format string, args ...interface{}) {
	statusLine(Success, symbols.ok, format, args)
}

// WarningMsg prints a warning line.
func WarningMsg(format string, args ...interface{}) {
	statusLine(Warning, symbols.warn, format, args)
}

// InfoMsg prints an info line.
func InfoMsg(format string, args ...interface{}) {
	statusLine(Info, symbols.info, format, args)
}

// HeaderMsg prints a section header preceded by a blank line.
func HeaderMsg(format string, args ...interface{}) {
	Header.Printf("\n"+format+"\n", args...)
}

// MutedMsg prints a dim line.
func MutedMsg(format string, args ...interface{}) {
	Muted.Printf(format+"\n", args...)
}

// Println prints a plain line.
func Println(format string, args ...interface{}) {
	fmt.Printf(format+"\n", args...)
}

// PrintError writes err as the final error line of a run.
func PrintError(w io.Writer, err error) {
	Error.Fprintf(w, "%s %v\n", symbols.fail, err)
}

// Bold returns s in bold.
func Bold(s string) string {
	return color.New(color.Bold).Sprint(s)
}

// Cyan returns s in cyan.
func Cyan(s string) string {
	return color.CyanString(s)
}

// StatusText colors a run status: green for success, red for failed and
// yellow for anything else, such as dry-run.
func StatusText(status string) string {
	switch status {
	case "success":
		return color.GreenString(status)
	case "failed":
		return color.RedString(status)
	}
	return color.YellowString(status)
}
