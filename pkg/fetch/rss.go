package fetch

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// feedItem is the strategy-agnostic shape both RSS and Atom items reduce to.
type feedItem struct {
	Title string
	Link  string
	Body  string
}

type rssFeed struct {
	XMLName xml.Name      `xml:"rss"`
	Channel rssChannel    `xml:"channel"`
}

type rssChannel struct {
	Title string    `xml:"title"`
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	Content     string `xml:"encoded"`
}

type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Title   string      `xml:"title"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title   string       `xml:"title"`
	Link    []atomLink   `xml:"link"`
	Summary string       `xml:"summary"`
	Content atomContent  `xml:"content"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
}

type atomContent struct {
	Value string `xml:",chardata"`
}

// parseFeed tries RSS 2.0 first, then Atom 1.0, returning a normalized list
// of feedItem. Either format is valid input for a "rss" source_type.
func parseFeed(raw []byte) ([]feedItem, error) {
	var rss rssFeed
	if err := xml.Unmarshal(raw, &rss); err == nil && rss.Channel.Title != "" {
		items := make([]feedItem, 0, len(rss.Channel.Items))
		for _, it := range rss.Channel.Items {
			body := it.Content
			if body == "" {
				body = it.Description
			}
			items = append(items, feedItem{Title: it.Title, Link: it.Link, Body: body})
		}
		return items, nil
	}

	var atom atomFeed
	if err := xml.Unmarshal(raw, &atom); err == nil && atom.Title != "" {
		items := make([]feedItem, 0, len(atom.Entries))
		for _, e := range atom.Entries {
			link := ""
			for _, l := range e.Link {
				if l.Rel == "" || l.Rel == "alternate" {
					link = l.Href
					break
				}
			}
			body := e.Content.Value
			if body == "" {
				body = e.Summary
			}
			items = append(items, feedItem{Title: e.Title, Link: link, Body: body})
		}
		return items, nil
	}

	return nil, fmt.Errorf("fetch: feed is neither valid RSS nor Atom")
}

// renderFeed flattens feed items into one markdown document (one item per
// paragraph, title then body) plus the item links as outbound links, so the
// rest of the pipeline treats a feed identically to a scraped page.
func renderFeed(items []feedItem) (markdown string, links []string) {
	var b strings.Builder
	for _, it := range items {
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", it.Title, it.Body)
		if it.Link != "" {
			links = append(links, it.Link)
		}
	}
	return strings.TrimSpace(b.String()), links
}
