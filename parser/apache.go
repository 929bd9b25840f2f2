package parser

import (
	"bytes"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/taoky/tsumugu/cmn"
)

// apacheF2Parser handles Apache's mod_autoindex FancyIndexing (IndexOptions
// FancyIndexing with the classic Name/Last modified/Size/Description
// column table, commonly served as "F=2"). Rows live in a single <table>;
// parsing with goquery's CSS-style child selection is far less fragile than
// hand-walking the token stream for a table this irregular (spec §4.1).
type apacheF2Parser struct{}

var apacheDateLayouts = []string{
	"2006-01-02 15:04",
	"02-Jan-2006 15:04",
}

func (apacheF2Parser) Parse(base *url.URL, body []byte) ([]ListingItem, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	var items []ListingItem
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		anchor := row.Find("a").First()
		href, hasHref := anchor.Attr("href")
		if !hasHref {
			return
		}
		text := strings.TrimSpace(anchor.Text())
		if isParentEntry(href, text) {
			return
		}
		name, kind, resolved, ok := classify(base, href)
		if !ok {
			return
		}
		item := ListingItem{Name: name, Kind: kind, Href: resolved}

		// The Description column is optional (IndexOptions
		// SuppressDescription) and FancyIndexing's icon column is its own
		// leading <td> with no text, so a row may carry 3 (name/date/size)
		// or 4+ cells; last-modified and size are always the two cells right
		// after the name cell, whatever precedes or follows them.
		cells := row.Find("td")
		nameIdx := cells.IndexOfSelection(anchor.Closest("td"))
		if nameIdx >= 0 && cells.Length() >= nameIdx+3 {
			dateText := strings.TrimSpace(cells.Eq(nameIdx + 1).Text())
			for _, layout := range apacheDateLayouts {
				if t, err := time.Parse(layout, dateText); err == nil {
					item.MTime = ptrTime(t)
					break
				}
			}
			if kind != Directory {
				sizeText := strings.TrimSpace(cells.Eq(nameIdx + 2).Text())
				if sz, ok := cmn.ParseSize(sizeText); ok {
					item.Size = ptrInt64(sz)
				}
			}
		}
		items = append(items, item)
	})
	return items, nil
}
