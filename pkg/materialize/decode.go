package materialize

import (
	"net/url"
	"time"
)

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

func asInt(v any) int {
	f, _ := asFloat(v)
	return int(f)
}

// domainOf returns the registrable host of a URL ("example.com"), or "" if
// rawURL does not parse. Used as the cheap proxy for "independent source"
// when counting distinct-domain respondents.
func domainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Hostname()
}

// distinctStrings returns the number of distinct non-empty values in vs.
func distinctStrings(vs []string) int {
	seen := make(map[string]bool, len(vs))
	for _, v := range vs {
		if v != "" {
			seen[v] = true
		}
	}
	return len(seen)
}

// asTime parses a graph row's timestamp string (written by the projector
// via timeLayout, a superset of RFC3339).
func asTime(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok || s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func stringSet(vs []string) map[string]bool {
	out := make(map[string]bool, len(vs))
	for _, v := range vs {
		out[v] = true
	}
	return out
}
