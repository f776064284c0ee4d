package coerce

import (
	"net/url"
	"strings"

	"github.com/weppos/publicsuffix-go/publicsuffix"
)

// Text returns the trimmed string, or nil when the cell is blank or not text.
func Text(c Cell) *string {
	s, ok := c.Str()
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Genres returns a one-element list for a non-blank genre cell and an empty
// (non-nil) list otherwise.
func Genres(c Cell) []string {
	if t := Text(c); t != nil {
		return []string{*t}
	}
	return []string{}
}

// PlatformName returns the trimmed platform name. A platform slot is only
// present when the name is non-empty.
func PlatformName(c Cell) (string, bool) {
	t := Text(c)
	if t == nil {
		return "", false
	}
	return *t, true
}

// VendorName returns the trimmed vendor. Store links are reduced to their
// registrable domain, e.g. "https://www.gog.com/game/x" -> "gog.com".
func VendorName(c Cell) string {
	t := Text(c)
	if t == nil {
		return ""
	}
	v := *t
	if !strings.Contains(v, "://") && !strings.HasPrefix(strings.ToLower(v), "www.") {
		return v
	}

	raw := v
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return v
	}
	domain, err := publicsuffix.Domain(strings.ToLower(u.Hostname()))
	if err != nil {
		return v
	}
	return domain
}
