package preference

import (
	"net/http"
	"strconv"
	"strings"
)

// Preference represents the parsed OData Prefer header preferences that
// apply to a search
type Preference struct {
	// MaxPageSize is the requested odata.maxpagesize, zero when absent
	MaxPageSize int
}

// ParsePrefer parses the Prefer header from an HTTP request. Preferences
// other than odata.maxpagesize are ignored, as are invalid values.
func ParsePrefer(r *http.Request) *Preference {
	pref := &Preference{}

	for _, header := range r.Header.Values("Prefer") {
		for _, p := range strings.Split(header, ",") {
			name, value, ok := strings.Cut(strings.TrimSpace(p), "=")
			if !ok || !strings.EqualFold(strings.TrimSpace(name), "odata.maxpagesize") {
				continue
			}
			size, err := strconv.Atoi(strings.Trim(strings.TrimSpace(value), `"`))
			if err != nil || size <= 0 {
				continue
			}
			pref.MaxPageSize = size
		}
	}

	return pref
}

// PageSize returns the page size to serve: the requested maximum page size
// when present and within limit, otherwise fallback.
func (p *Preference) PageSize(fallback, limit int) int {
	if p == nil || p.MaxPageSize == 0 {
		return fallback
	}
	if limit > 0 && p.MaxPageSize > limit {
		return limit
	}
	return p.MaxPageSize
}

// GetPreferenceApplied returns the Preference-Applied header value for the
// page size actually served. Returns empty string if no preference was applied.
func (p *Preference) GetPreferenceApplied(pageSize int) string {
	if p == nil || p.MaxPageSize == 0 {
		return ""
	}
	return "odata.maxpagesize=" + strconv.Itoa(pageSize)
}
