package parser

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/taoky/tsumugu/cmn"
)

// nginxParser handles the stock nginx autoindex module: a <pre> block of
// <a href="...">text</a> entries, each immediately followed by a
// fixed-width "dd-Mon-yyyy HH:MM" timestamp and a size column (spec §4.1).
type nginxParser struct{}

var nginxDateRe = regexp.MustCompile(`(\d{2}-[A-Za-z]{3}-\d{4} \d{2}:\d{2})\s+(\S+)`)

func (nginxParser) Parse(base *url.URL, body []byte) ([]ListingItem, error) {
	tok := html.NewTokenizer(bytes.NewReader(body))
	var items []ListingItem
	var pendingHref, pendingText string
	haveAnchor := false

	for {
		tt := tok.Next()
		if tt == html.ErrorToken {
			break
		}
		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			t := tok.Token()
			if t.Data == "a" {
				haveAnchor = true
				pendingHref = ""
				pendingText = ""
				for _, a := range t.Attr {
					if a.Key == "href" {
						pendingHref = a.Val
					}
				}
			}
		case html.TextToken:
			text := string(tok.Text())
			if haveAnchor {
				pendingText += text
			} else if it, ok := parseNginxTrailer(items, text); ok {
				items = it
			}
		case html.EndTagToken:
			t := tok.Token()
			if t.Data == "a" && haveAnchor {
				haveAnchor = false
				if isParentEntry(pendingHref, pendingText) {
					continue
				}
				name, kind, resolved, ok := classify(base, pendingHref)
				if !ok {
					continue
				}
				items = append(items, ListingItem{Name: name, Kind: kind, Href: resolved})
			}
		}
	}
	return items, nil
}

// parseNginxTrailer attaches the "dd-Mon-yyyy HH:MM   <size>" text that
// trails each <a> to the most recently appended item, per nginx's
// fixed-width layout.
func parseNginxTrailer(items []ListingItem, text string) ([]ListingItem, bool) {
	if len(items) == 0 {
		return items, false
	}
	m := nginxDateRe.FindStringSubmatch(text)
	if m == nil {
		return items, false
	}
	last := &items[len(items)-1]
	if t, err := time.Parse("02-Jan-2006 15:04", m[1]); err == nil {
		last.MTime = ptrTime(t)
	}
	sizeTok := strings.TrimSpace(m[2])
	if last.Kind != Directory {
		if sz, ok := cmn.ParseSize(sizeTok); ok {
			last.Size = ptrInt64(sz)
		}
	}
	return items, true
}
