package coerce

import (
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// Date parses YYYY-MM-DD. Month and day may omit their leading zero.
func Date(c Cell) *time.Time {
	s, ok := c.Str()
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	for _, layout := range []string{DateLayout, "2006-1-2"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
