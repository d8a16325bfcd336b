package fetch

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var whitespaceRun = regexp.MustCompile(`[ \t]+`)
var blankLineRun = regexp.MustCompile(`\n\s*\n+`)

// parseHTML strips boilerplate (scripts, nav, ads) from rawHTML, converts the
// remaining body to a markdown-ish text rendering with inline [text](url)
// links, and collects the page's outbound links as absolute URLs resolved
// against base.
func parseHTML(rawHTML, base string) (markdown string, links []string, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return "", nil, fmt.Errorf("fetch: parse html: %w", err)
	}

	doc.Find("script, style, noscript, iframe, nav, footer, form").Remove()
	doc.Find("[class*='ad-'], [class*='advertisement'], [class*='cookie'], [class*='newsletter']").Remove()

	links = extractLinks(doc, base)
	markdown = renderMarkdown(doc, base)
	return markdown, links, nil
}

// extractLinks resolves every anchor href found anywhere in the document
// against base, skipping fragment-only and non-http(s) links.
func extractLinks(doc *goquery.Document, base string) []string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
			return
		}
		resolved, err := baseURL.Parse(href)
		if err != nil || (resolved.Scheme != "http" && resolved.Scheme != "https") {
			return
		}
		resolved.Fragment = ""
		abs := resolved.String()
		if !seen[abs] {
			seen[abs] = true
			links = append(links, abs)
		}
	})
	return links
}

// renderMarkdown picks the page's main content container (falling back to
// body) and renders it as plain text with links spelled out inline, which is
// close enough to markdown for the extractor's purposes without pulling in a
// full HTML-to-markdown converter.
func renderMarkdown(doc *goquery.Document, base string) string {
	main := doc.Find("article, main, [role='main'], .post-content, .article-body").First()
	if main.Length() == 0 {
		main = doc.Find("body")
	}

	baseURL, _ := url.Parse(base)
	main.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		text := strings.TrimSpace(s.Text())
		if href == "" || text == "" {
			return
		}
		if baseURL != nil {
			if resolved, err := baseURL.Parse(href); err == nil {
				href = resolved.String()
			}
		}
		s.ReplaceWithHtml(fmt.Sprintf("[%s](%s)", text, href))
	})

	text := main.Text()
	text = whitespaceRun.ReplaceAllString(text, " ")
	text = blankLineRun.ReplaceAllString(text, "\n\n")
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// pageTitle returns the document's <title>, used when a source lacks any
// other name.
func pageTitle(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find("title").First().Text())
}
