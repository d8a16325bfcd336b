// Package fetch implements the Fetcher (C5): polite HTTP/feed/social scraping
// that returns a ScrapedPage or a list of social posts, per spec.md §4.3 step 1.
package fetch

import "time"

// Strategy selects how a Source's value is fetched, inferred from its
// source_type (mirrors config.SourceSeed.SourceType).
type Strategy string

const (
	StrategyWebQuery     Strategy = "web_query"
	StrategyWebPage      Strategy = "web_page"
	StrategyRSS          Strategy = "rss"
	StrategySocial       Strategy = "social"
	StrategyHTMLListing  Strategy = "html_listing"
)

// ScrapedPage is the normalized result of fetching a single URL.
type ScrapedPage struct {
	URL         string
	RawHTML     string
	Markdown    string
	ContentHash string
	FetchedAt   time.Time
	// OutboundLinks are absolute URLs found in the page body, normalized by
	// the Link Promoter (C8) before becoming source proposals.
	OutboundLinks []string
}

// SocialPost is one post returned by a social(platform) fetch.
type SocialPost struct {
	Platform  string
	PostID    string
	URL       string
	Author    string
	Text      string
	PostedAt  time.Time
	Mentions  []string // links collected for promotion; FetchSocial fills it with the page's anchor links, not @handles
}
