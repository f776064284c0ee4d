// Package coerce turns raw spreadsheet cells into typed optional values.
//
// Every rule is total: malformed input yields nil (absent), never an error.
package coerce

import "strings"

type kind uint8

const (
	kindNull kind = iota
	kindString
	kindBool
)

// Cell is one raw value read from a tabular source: a string, a boolean
// marker (an "x" in the sheet) or nothing at all.
type Cell struct {
	kind kind
	s    string
	b    bool
}

// Null is the absent cell. The zero Cell is Null.
var Null = Cell{}

// String wraps a raw string value.
func String(s string) Cell { return Cell{kind: kindString, s: s} }

// Bool wraps a native boolean marker.
func Bool(b bool) Cell { return Cell{kind: kindBool, b: b} }

func (c Cell) IsNull() bool { return c.kind == kindNull }

// IsBool reports whether the cell holds a native boolean rather than text.
func (c Cell) IsBool() bool { return c.kind == kindBool }

// Str returns the raw string and whether the cell held one.
func (c Cell) Str() (string, bool) { return c.s, c.kind == kindString }

// BoolValue returns the native boolean and whether the cell held one.
func (c Cell) BoolValue() (bool, bool) { return c.b, c.kind == kindBool }

// Blank reports whether the cell is null or a whitespace-only string.
func (c Cell) Blank() bool {
	switch c.kind {
	case kindNull:
		return true
	case kindString:
		return strings.TrimSpace(c.s) == ""
	}
	return false
}

func (c Cell) String() string {
	switch c.kind {
	case kindString:
		return c.s
	case kindBool:
		if c.b {
			return "true"
		}
		return "false"
	}
	return "<null>"
}
