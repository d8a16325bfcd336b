package scout

import (
	"context"
	"fmt"
	"strings"

	"github.com/fourthplaces/rootsignal/pkg/extract"
	"github.com/fourthplaces/rootsignal/pkg/fetch"
)

// fakeGraphBackend is a read-only stand-in for graph.Backend covering the
// three Cypher shapes the scout runner issues: active sources, signals by
// kind (corpus seeding), and citations by source_url (freshness lookup).
type fakeGraphBackend struct {
	sources   []map[string]any
	signals   map[string][]map[string]any // kind -> rows
	citedURLs map[string][]string         // source_url -> signal ids
}

func newFakeGraphBackend() *fakeGraphBackend {
	return &fakeGraphBackend{signals: make(map[string][]map[string]any), citedURLs: make(map[string][]string)}
}

func (f *fakeGraphBackend) Close(ctx context.Context) error { return nil }
func (f *fakeGraphBackend) Wipe(ctx context.Context) error   { return nil }
func (f *fakeGraphBackend) RunWrite(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	return nil, fmt.Errorf("fakeGraphBackend: no writes expected, got: %s", cypher)
}

func (f *fakeGraphBackend) Run(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	switch {
	case strings.Contains(cypher, "MATCH (s:Source)"):
		rows := make([]map[string]any, 0, len(f.sources))
		for _, s := range f.sources {
			rows = append(rows, map[string]any{"s": s})
		}
		return rows, nil
	case strings.Contains(cypher, "MATCH (n:Signal {kind:"):
		kind, _ := params["p0"].(string)
		rows := make([]map[string]any, 0, len(f.signals[kind]))
		for _, s := range f.signals[kind] {
			rows = append(rows, map[string]any{"n": s})
		}
		return rows, nil
	case strings.Contains(cypher, "MATCH (c:Citation {source_url:"):
		url, _ := params["p0"].(string)
		rows := make([]map[string]any, 0, len(f.citedURLs[url]))
		for _, id := range f.citedURLs[url] {
			rows = append(rows, map[string]any{"signal_id": id})
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("fakeGraphBackend: unsupported read: %s", cypher)
	}
}

// fakeFetcher serves one ScrapedPage or fetch error per source value, and a
// fixed list of social posts for "social" source types.
type fakeFetcher struct {
	pages  map[string]*fetch.ScrapedPage
	errs   map[string]error
	social map[string][]fetch.SocialPost
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{pages: make(map[string]*fetch.ScrapedPage), errs: make(map[string]error), social: make(map[string][]fetch.SocialPost)}
}

func (f *fakeFetcher) Fetch(ctx context.Context, sourceType, value string) (*fetch.ScrapedPage, error) {
	if err, ok := f.errs[value]; ok {
		return nil, err
	}
	page, ok := f.pages[value]
	if !ok {
		return nil, fmt.Errorf("fakeFetcher: no page registered for %s", value)
	}
	return page, nil
}

func (f *fakeFetcher) FetchSocial(ctx context.Context, platform, value string) ([]fetch.SocialPost, error) {
	if err, ok := f.errs[value]; ok {
		return nil, err
	}
	return f.social[value], nil
}

// fakeExtractor returns a fixed signal list per source URL, ignoring markdown.
type fakeExtractor struct {
	bySourceURL map[string][]extract.Signal
	err         error
}

func newFakeExtractor() *fakeExtractor {
	return &fakeExtractor{bySourceURL: make(map[string][]extract.Signal)}
}

func (e *fakeExtractor) Extract(ctx context.Context, sourceURL, markdown string) ([]extract.Signal, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.bySourceURL[sourceURL], nil
}

// fakeEmbedder derives a deterministic embedding from the first rune of the
// input text, giving tests full control over which signals collide in the
// corpus without a real model call.
type fakeEmbedder struct {
	vectors map[string][]float32
	dim     int
}

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{vectors: make(map[string][]float32), dim: 3}
}

func (e *fakeEmbedder) Dimension() int { return e.dim }

func (e *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if v, ok := e.vectors[t]; ok {
			out[i] = v
			continue
		}
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}
