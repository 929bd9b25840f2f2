package parser

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/taoky/tsumugu/cmn"
)

// directoryListerParser handles the "Directory Lister" PHP project's
// tree-style output: a <ul> of <li> entries, each tagged with a "directory"
// or "file" class, per spec §4.1.
type directoryListerParser struct{}

func (directoryListerParser) Parse(base *url.URL, body []byte) ([]ListingItem, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	var items []ListingItem
	doc.Find("li").Each(func(_ int, li *goquery.Selection) {
		class, _ := li.Attr("class")
		isFileClass := strings.Contains(class, "file")
		isDirClass := strings.Contains(class, "directory") || strings.Contains(class, "folder")
		if !isFileClass && !isDirClass {
			return
		}
		anchor := li.Find("a").First()
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

		sizeText := strings.TrimSpace(li.Find(".file-size, .size").First().Text())
		if kind != Directory {
			if sz, ok := cmn.ParseSize(sizeText); ok {
				item.Size = ptrInt64(sz)
			}
		}
		items = append(items, item)
	})
	return items, nil
}
