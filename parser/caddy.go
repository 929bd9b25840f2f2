package parser

import (
	"bytes"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// caddyParser handles Caddy's file_server browse template: a <tbody> of
// <tr> rows whose name link sits in the first <td> and whose size/mtime
// columns carry the raw value in a "data-order" attribute (bytes and Unix
// seconds respectively) alongside the human-readable text, per spec §4.1.
type caddyParser struct{}

func (caddyParser) Parse(base *url.URL, body []byte) ([]ListingItem, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	var items []ListingItem
	doc.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
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

		// The first data-order cell is the size, the second the mtime.
		cells := row.Find("td[data-order]")
		cells.Each(func(i int, cell *goquery.Selection) {
			order, _ := cell.Attr("data-order")
			if n, err := strconv.ParseInt(order, 10, 64); err == nil {
				switch {
				case i == 0 && kind != Directory:
					item.Size = ptrInt64(n)
				case i == 1:
					item.MTime = ptrTime(time.Unix(n, 0).UTC())
				}
			}
		})
		items = append(items, item)
	})
	return items, nil
}
