package planner

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// cleanText reduces any HTML the model emitted to its visible text and
// collapses whitespace.
func cleanText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	doc.Find("script, style, iframe").Remove()

	return strings.Join(strings.Fields(doc.Text()), " ")
}
