package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Position represents a location in the source file
type Position struct {
	Filename string
	Line     int
	Column   int
}

func (p Position) String() string {
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

// ErrorKind categorizes the type of error. The grammar has no labels,
// directives, macros, or includes, so only three failure shapes exist.
type ErrorKind int

const (
	ErrorSyntax ErrorKind = iota
	ErrorInvalidInstruction
	ErrorInvalidOperand
)

// Error is a parse error tied to a source position.
type Error struct {
	Pos     Position
	Message string
	Context string // the source line the error occurred on, if available
	Kind    ErrorKind
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s: error: %s\n", e.Pos, e.Message))
	if e.Context != "" {
		sb.WriteString(fmt.Sprintf("    %s\n", e.Context))
	}
	return sb.String()
}

// NewError creates a new parser error
func NewError(pos Position, kind ErrorKind, message string) *Error {
	return &Error{Pos: pos, Message: message, Kind: kind}
}

// Warning is a non-fatal diagnostic: the source still assembles, but
// probably not the way the author intended (e.g. a truncated immediate).
type Warning struct {
	Pos     Position
	Message string
}

func (w *Warning) String() string {
	return fmt.Sprintf("%s: warning: %s", w.Pos, w.Message)
}

// ErrorList collects every error and warning found in one pass over a
// source file, so all of them can be reported together.
type ErrorList struct {
	Errors   []*Error
	Warnings []*Warning
}

// AddError adds an error to the list
func (el *ErrorList) AddError(err *Error) {
	el.Errors = append(el.Errors, err)
}

// AddWarning adds a warning to the list
func (el *ErrorList) AddWarning(warn *Warning) {
	el.Warnings = append(el.Warnings, warn)
}

// HasErrors returns true if there are any errors
func (el *ErrorList) HasErrors() bool {
	return len(el.Errors) > 0
}

// Error implements the error interface
func (el *ErrorList) Error() string {
	if !el.HasErrors() {
		return ""
	}
	var sb strings.Builder
	for _, err := range el.Errors {
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Render writes every diagnostic to w with its source span, errors in bold
// red and warnings in yellow. Pass colorize=false (or a non-terminal w,
// which the color package detects itself) for plain text.
func (el *ErrorList) Render(w io.Writer, colorize bool) {
	red := color.New(color.FgRed, color.Bold)
	yellow := color.New(color.FgYellow)
	if !colorize {
		red.DisableColor()
		yellow.DisableColor()
	}

	for _, e := range el.Errors {
		red.Fprintf(w, "%s: error: ", e.Pos)
		fmt.Fprintln(w, e.Message)
		if e.Context != "" {
			fmt.Fprintf(w, "    %s\n", e.Context)
		}
	}
	for _, warn := range el.Warnings {
		yellow.Fprintf(w, "%s: warning: ", warn.Pos)
		fmt.Fprintln(w, warn.Message)
	}
}
