package crawler

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// LinkSource lists the raw href values of a page body in document order
type LinkSource interface {
	Links(body string) ([]string, error)
}

// DocumentLinks extracts every <a> element's href with goquery.
// Anchors without an href yield an empty string.
type DocumentLinks struct{}

// Links implements LinkSource
func (DocumentLinks) Links(body string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, err
	}

	links := make([]string, 0)
	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		links = append(links, s.AttrOr("href", ""))
	})
	return links, nil
}
