package jobs

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var blockElements = map[string]bool{
	"br": true, "p": true, "div": true, "li": true, "ul": true, "ol": true, "tr": true,
	"td": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// PlainText strips markup from an HTML fragment and collapses whitespace. Plain input
// is returned with whitespace collapsed.
func PlainText(fragment string) (string, error) {
	if !strings.Contains(fragment, "<") && !strings.Contains(fragment, "&") {
		return strings.Join(strings.Fields(fragment), " "), nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", fmt.Errorf("parsing html: %w", err)
	}
	doc.Find("script, style, noscript").Remove()

	var sb strings.Builder
	collectText(doc.Find("body"), &sb)
	return strings.Join(strings.Fields(sb.String()), " "), nil
}

func collectText(s *goquery.Selection, sb *strings.Builder) {
	s.Contents().Each(func(_ int, node *goquery.Selection) {
		name := goquery.NodeName(node)
		if name == "#text" {
			sb.WriteString(node.Text())
			return
		}
		collectText(node, sb)
		if blockElements[name] {
			sb.WriteString(" ")
		}
	})
}
