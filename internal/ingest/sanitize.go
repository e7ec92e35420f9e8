package ingest

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// stripMarkup flattens HTML fragments to plain text. Adzuna wraps query
// terms in <strong> tags inside description snippets, which would
// otherwise defeat word-boundary matching in the signal extractor.
func stripMarkup(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}

	return doc.Text()
}
