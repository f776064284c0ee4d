package coerce

import "strings"

// TriState reads a numeric flag: "0" is false, any other integer is true.
// Non-numeric text, blanks and null are absent. Native booleans are absent
// too; only textual integers take part in this rule.
func TriState(c Cell) *bool {
	s, ok := c.Str()
	if !ok {
		return nil
	}
	n, ok := atoi(s)
	if !ok {
		return nil
	}
	return boolPtr(n != 0)
}

// StrictBool casts the cell to an integer and takes its truthiness. Native
// booleans cast to 1 and 0. Null and non-numeric text are absent.
func StrictBool(c Cell) *bool {
	if b, ok := c.BoolValue(); ok {
		return boolPtr(b)
	}
	s, ok := c.Str()
	if !ok {
		return nil
	}
	n, ok := atoi(s)
	if !ok {
		return nil
	}
	return boolPtr(n != 0)
}

// Marker reads a presence column where any mark means yes. Numeric text
// keeps its truthiness so that a literal "0" still reads as false.
func Marker(c Cell) *bool {
	if b, ok := c.BoolValue(); ok {
		return boolPtr(b)
	}
	s, ok := c.Str()
	if !ok || strings.TrimSpace(s) == "" {
		return nil
	}
	if n, ok := atoi(s); ok {
		return boolPtr(n != 0)
	}
	return boolPtr(true)
}

func boolPtr(b bool) *bool { return &b }
