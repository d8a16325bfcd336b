// Package promote implements the Link Promoter (C8): it turns the outbound
// links a scout run collects into source_registered proposals, per
// spec.md §4.4.
package promote

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
)

// trackingParamPrefixes and trackingParamNames are stripped from every URL
// before it is considered for promotion, so the same destination reached via
// different campaign tags collapses to one canonical source.
var trackingParamPrefixes = []string{"utm_"}
var trackingParamNames = map[string]bool{
	"gclid": true, "fbclid": true, "ref": true, "mc_cid": true, "mc_eid": true,
}

// junkExtensions are never promoted: they are assets, not pages that could
// themselves be scraped for signals.
var junkExtensions = []string{
	".css", ".js", ".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".ico",
	".woff", ".woff2", ".ttf", ".eot", ".pdf", ".zip",
}

var handlePlatforms = map[string]string{
	"twitter.com":   "twitter.com",
	"x.com":         "x.com",
	"instagram.com": "instagram.com",
	"facebook.com":  "facebook.com",
	"linktr.ee":     "linktr.ee",
}

var handlePathRE = regexp.MustCompile(`^/([A-Za-z0-9._-]+)/?$`)

// canonical is the result of normalizing one outbound URL.
type canonical struct {
	URL            string
	SourceType     string
	CanonicalValue string
}

// canonicalize strips tracking params and fragments, and derives
// source_type/canonical_value from the URL's shape. It returns ok=false for
// URLs the promoter should never propose (junk extensions).
func canonicalize(raw string) (canonical, bool) {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return canonical{}, false
	}
	u.Fragment = ""

	lowerPath := strings.ToLower(u.Path)
	for _, ext := range junkExtensions {
		if strings.HasSuffix(lowerPath, ext) {
			return canonical{}, false
		}
	}

	q := u.Query()
	for key := range q {
		lower := strings.ToLower(key)
		if trackingParamNames[lower] {
			q.Del(key)
			continue
		}
		for _, prefix := range trackingParamPrefixes {
			if strings.HasPrefix(lower, prefix) {
				q.Del(key)
				break
			}
		}
	}
	u.RawQuery = sortedQuery(q)

	host := strings.ToLower(u.Hostname())
	if canonicalHost, ok := handlePlatforms[strings.TrimPrefix(host, "www.")]; ok {
		if m := handlePathRE.FindStringSubmatch(u.Path); m != nil {
			handle := m[1]
			return canonical{
				URL:            u.String(),
				SourceType:     "social",
				CanonicalValue: canonicalHost + "/" + handle,
			}, true
		}
	}

	return canonical{
		URL:            u.String(),
		SourceType:     "web_page",
		CanonicalValue: host + u.Path,
	}, true
}

func sortedQuery(q url.Values) string {
	if len(q) == 0 {
		return ""
	}
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, k := range keys {
		for j, v := range q[k] {
			if i > 0 || j > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	return b.String()
}
