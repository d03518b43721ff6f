package metasprite

import (
	"fmt"

	"github.com/retroblast-engine/metasprite/internal/action"
)

// FormatError is returned for malformed or unsupported binary input. It is
// always fatal: Parse never returns a partial document alongside it.
type FormatError struct {
	Offset int64
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("aseprite: invalid file at offset %d: %s", e.Offset, e.Reason)
}

func formatErrorf(off int64, format string, args ...any) *FormatError {
	return &FormatError{Offset: off, Reason: fmt.Sprintf(format, args...)}
}

// SyntaxError is returned for malformed meta layer action text.
type SyntaxError = action.SyntaxError

// ParamError is returned by typed parameter accessors on Layer.
type ParamError struct {
	Layer string
	Index int
	Want  ParamKind
	Got   ParamKind // ParamNone when the index is out of range
	Count int
}

func (e *ParamError) Error() string {
	if e.Index >= e.Count || e.Index < 0 {
		return fmt.Sprintf("layer %q: no parameter #%d (have %d)", e.Layer, e.Index, e.Count)
	}
	return fmt.Sprintf("layer %q: type mismatch at parameter #%d, expected %s, got %s",
		e.Layer, e.Index, e.Want, e.Got)
}

// Warning is a non-fatal issue found while parsing. Warnings are collected in
// File.Warnings and sent to the configured logger.
type Warning struct {
	Stage   string // "layer", "group", "cel", "tag", "action", "frame"
	Message string
	Offset  int64
}

func (w Warning) String() string {
	if w.Offset > 0 {
		return fmt.Sprintf("%s (at offset %d): %s", w.Stage, w.Offset, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Stage, w.Message)
}
