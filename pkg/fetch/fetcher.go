package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/fourthplaces/rootsignal/pkg/config"
)

// Fetcher dispatches a source value to the strategy its source_type implies,
// through a per-host polite gate, returning a normalized ScrapedPage or a
// list of SocialPost.
type Fetcher struct {
	http *http.Client
	gate *politeGate
	seen SeenStore
}

// New builds a Fetcher from scout config and an already-constructed
// SeenStore (nil disables the hash short-circuit, useful in tests).
func New(cfg *config.ScoutConfig, seen SeenStore) *Fetcher {
	return &Fetcher{
		http: &http.Client{Timeout: 20 * time.Second},
		gate: newPoliteGate(cfg.PoliteFetchInterval, cfg.CircuitBreakerFailureThreshold),
		seen: seen,
	}
}

// Fetch runs the strategy implied by sourceType against value (a URL for
// every strategy but web_query, where value is a search phrase), returning a
// ScrapedPage. Social sources use FetchSocial instead.
func (f *Fetcher) Fetch(ctx context.Context, sourceType string, value string) (*ScrapedPage, error) {
	switch Strategy(sourceType) {
	case StrategyWebPage, StrategyHTMLListing:
		return f.fetchPage(ctx, value)
	case StrategyWebQuery:
		return f.fetchPage(ctx, searchURL(value))
	case StrategyRSS:
		return f.fetchFeed(ctx, value)
	default:
		return nil, fmt.Errorf("fetch: strategy %q requires FetchSocial", sourceType)
	}
}

// FetchSocial runs the social(platform) strategy, returning the platform's
// recent posts mentioning the tracked scope. platform-specific auth and
// pagination live behind this seam; the reference build here does a
// best-effort unauthenticated page scrape and returns it as one post whose
// Mentions are the page's anchor links. @handles in the post text are not
// parsed into links.
func (f *Fetcher) FetchSocial(ctx context.Context, platform, value string) ([]SocialPost, error) {
	page, err := f.fetchPage(ctx, value)
	if err != nil {
		return nil, err
	}
	return []SocialPost{{
		Platform: platform,
		URL:      page.URL,
		Text:     page.Markdown,
		PostedAt: page.FetchedAt,
		Mentions: page.OutboundLinks,
	}}, nil
}

func (f *Fetcher) fetchPage(ctx context.Context, target string) (*ScrapedPage, error) {
	result, err := f.gate.do(ctx, target, func() (any, error) {
		return f.getBody(ctx, target)
	})
	if err != nil {
		return nil, err
	}
	rawHTML := result.(string)

	markdown, links, err := parseHTML(rawHTML, target)
	if err != nil {
		return nil, err
	}

	page := &ScrapedPage{
		URL:           target,
		RawHTML:       rawHTML,
		Markdown:      markdown,
		ContentHash:   ContentHash(markdown),
		FetchedAt:     time.Now(),
		OutboundLinks: links,
	}

	if f.seen != nil {
		alreadySeen, err := f.seen.MarkAndCheck(ctx, page.ContentHash, target)
		if err != nil {
			return nil, err
		}
		if alreadySeen {
			return page, errAlreadySeen(page)
		}
	}
	return page, nil
}

func (f *Fetcher) fetchFeed(ctx context.Context, target string) (*ScrapedPage, error) {
	result, err := f.gate.do(ctx, target, func() (any, error) {
		return f.getBody(ctx, target)
	})
	if err != nil {
		return nil, err
	}
	rawXML := result.(string)

	items, err := parseFeed([]byte(rawXML))
	if err != nil {
		return nil, err
	}

	markdown, links := renderFeed(items)
	page := &ScrapedPage{
		URL:           target,
		RawHTML:       rawXML,
		Markdown:      markdown,
		ContentHash:   ContentHash(markdown),
		FetchedAt:     time.Now(),
		OutboundLinks: links,
	}
	return page, nil
}

func (f *Fetcher) getBody(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("fetch: build request for %s: %w", target, err)
	}
	req.Header.Set("User-Agent", "RootSignalBot/1.0 (+https://rootsignal.example/bot)")

	resp, err := f.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch: GET %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("fetch: GET %s: status %d", target, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return "", fmt.Errorf("fetch: read body of %s: %w", target, err)
	}
	return string(body), nil
}

// searchURL turns a web_query phrase into a concrete search-results page
// URL, so it can be fetched and parsed as an html_listing.
func searchURL(phrase string) string {
	q := url.Values{}
	q.Set("q", phrase)
	return "https://html.duckduckgo.com/html/?" + q.Encode()
}

// AlreadySeenErr marks a ScrapedPage that matched an earlier run's content
// hash: the caller still gets outbound links but must skip extraction.
type AlreadySeenErr struct {
	Page *ScrapedPage
}

func (e *AlreadySeenErr) Error() string {
	return fmt.Sprintf("fetch: %s already seen at this content hash", e.Page.URL)
}

func errAlreadySeen(page *ScrapedPage) error {
	return &AlreadySeenErr{Page: page}
}
