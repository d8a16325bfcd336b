package promote

import (
	"fmt"
	"strings"

	"github.com/fourthplaces/rootsignal/pkg/config"
	"github.com/fourthplaces/rootsignal/pkg/eventstore"
)

// ProposedLink is one outbound link a scout run collected, tagged with the
// source it was found on.
type ProposedLink struct {
	URL               string
	ReferringSourceKey string
}

// Promoter turns a batch of ProposedLink into source_registered payloads,
// respecting spec.md §4.4's per-referrer and per-run caps and the operator's
// BlockedSource patterns.
type Promoter struct {
	cfg *config.LinkPromoterConfig
}

func New(cfg *config.LinkPromoterConfig) *Promoter {
	return &Promoter{cfg: cfg}
}

// Promote canonicalizes links, discards junk/blocked/duplicate URLs, and
// caps the rest per referring source and per run, returning one
// SourceRegistered payload per surviving link. region scopes the
// canonical_key (e.g. the observing Scope's name).
func (p *Promoter) Promote(region string, links []ProposedLink, method eventstore.DiscoveryMethod) []eventstore.SourceRegistered {
	perReferrer := make(map[string]int)
	seen := make(map[string]bool)
	var out []eventstore.SourceRegistered

	for _, link := range links {
		if len(out) >= p.cfg.MaxPerRun {
			break
		}
		if perReferrer[link.ReferringSourceKey] >= p.cfg.MaxPerReferringSource {
			continue
		}

		c, ok := canonicalize(link.URL)
		if !ok {
			continue
		}
		if p.isBlocked(c.URL) {
			continue
		}
		key := canonicalKey(region, c.SourceType, c.CanonicalValue)
		if seen[key] {
			continue
		}
		seen[key] = true
		perReferrer[link.ReferringSourceKey]++

		out = append(out, eventstore.SourceRegistered{
			CanonicalKey:      key,
			URL:               c.URL,
			CanonicalValue:    c.CanonicalValue,
			SourceType:        c.SourceType,
			DiscoveryMethod:   method,
			Weight:            0.5,
			ReferringSignalID: link.ReferringSourceKey,
		})
	}
	return out
}

func (p *Promoter) isBlocked(target string) bool {
	for _, b := range p.cfg.BlockedSources {
		if strings.Contains(target, b.Pattern) {
			return true
		}
	}
	return false
}

func canonicalKey(region, sourceType, canonicalValue string) string {
	return fmt.Sprintf("%s:%s:%s", region, sourceType, canonicalValue)
}
