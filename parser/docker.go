package parser

import (
	"bytes"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// dockerParser handles the site-specific dialect served by
// download.docker.com: an unadorned list of <a> links with no size or
// mtime information at all. The engine issues a HEAD for an existing file
// only when --head-before-get is set and the name matches
// --compare-size-only; any other file of this dialect that already exists
// locally is kept as it is.
type dockerParser struct{}

func (dockerParser) Parse(base *url.URL, body []byte) ([]ListingItem, error) {
	tok := html.NewTokenizer(bytes.NewReader(body))
	var items []ListingItem
	for {
		tt := tok.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		t := tok.Token()
		if t.Data != "a" {
			continue
		}
		var href string
		for _, a := range t.Attr {
			if a.Key == "href" {
				href = a.Val
			}
		}
		text := ""
		if tt == html.StartTagToken {
			if depthText, ok := readAnchorText(tok); ok {
				text = depthText
			}
		}
		if isParentEntry(href, strings.TrimSpace(text)) {
			continue
		}
		name, kind, resolved, ok := classify(base, href)
		if !ok {
			continue
		}
		items = append(items, ListingItem{Name: name, Kind: kind, Href: resolved})
	}
	return items, nil
}

// readAnchorText drains tokens up to the matching </a>, returning the
// concatenated text content (used only for Parent-Directory detection).
func readAnchorText(tok *html.Tokenizer) (string, bool) {
	var sb strings.Builder
	for {
		tt := tok.Next()
		if tt == html.ErrorToken {
			return sb.String(), false
		}
		if tt == html.EndTagToken && tok.Token().Data == "a" {
			return sb.String(), true
		}
		if tt == html.TextToken {
			sb.Write(tok.Text())
		}
	}
}
