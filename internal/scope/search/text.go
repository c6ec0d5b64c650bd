package search

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoContent is returned when a page has no content region to extract
var ErrNoContent = errors.New("no content region in page")

// nonContent matches elements whose text is never part of a page's content
const nonContent = "script, style, noscript, .headerlink"

// HTMLToText extracts the visible text of the page's main region
func (e *Index) HTMLToText(html string) (string, error) {
	return HTMLToText(html)
}

// HTMLToText extracts the text of the [role=main] region, falling back to
// the body. Scripts, styles and permalink markers are dropped
func HTMLToText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}

	region := contentRegion(doc)
	if region == nil {
		return "", ErrNoContent
	}
	region.Find(nonContent).Remove()
	return region.Text(), nil
}

// ExtractDocument builds an index document from a rendered page
func ExtractDocument(docName, filename string, html []byte) (Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(html)))
	if err != nil {
		return Document{}, fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	region := contentRegion(doc)
	if region == nil {
		return Document{}, fmt.Errorf("%s: %w", filename, ErrNoContent)
	}
	region.Find(nonContent).Remove()

	d := Document{
		DocName:  docName,
		Filename: filename,
		Title:    strings.TrimSpace(region.Find("h1").First().Text()),
		Text:     region.Text(),
	}
	if d.Title == "" {
		d.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if d.Title == "" {
		d.Title = docName
	}

	region.Find("section[id], div.section[id]").Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("id")
		title := strings.TrimSpace(s.ChildrenFiltered("h1, h2, h3, h4, h5, h6").First().Text())
		if id != "" && title != "" {
			d.Sections = append(d.Sections, Section{Anchor: id, Title: title})
		}
	})

	return d, nil
}

func contentRegion(doc *goquery.Document) *goquery.Selection {
	if main := doc.Find(`[role="main"]`).First(); main.Length() > 0 {
		return main
	}
	body := doc.Find("body").First()
	if body.Length() == 0 || (body.Children().Length() == 0 && strings.TrimSpace(body.Text()) == "") {
		return nil
	}
	return body
}
