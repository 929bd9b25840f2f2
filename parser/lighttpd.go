package parser

import (
	"bytes"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/taoky/tsumugu/cmn"
)

// lighttpdParser handles lighttpd's mod_dirlisting, whose table rows carry
// dedicated class attributes for the name/mtime/size columns (".n", ".m",
// ".s" in the stock template), per spec §4.1.
type lighttpdParser struct{}

func (lighttpdParser) Parse(base *url.URL, body []byte) ([]ListingItem, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	var items []ListingItem
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		nameCell := row.Find("td.n")
		anchor := nameCell.Find("a").First()
		if anchor.Length() == 0 {
			anchor = row.Find("a").First()
		}
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

		mtimeText := strings.TrimSpace(row.Find("td.m").Text())
		if t, err := time.Parse("2006-01-02 15:04:05", mtimeText); err == nil {
			item.MTime = ptrTime(t)
		}
		if kind != Directory {
			sizeText := strings.TrimSpace(row.Find("td.s").Text())
			if sz, ok := cmn.ParseSize(sizeText); ok {
				item.Size = ptrInt64(sz)
			}
		}
		items = append(items, item)
	})
	return items, nil
}
