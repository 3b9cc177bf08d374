// internal/medium/extract.go
package medium

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const untitled = "Untitled"

// Metadata is what the importer writes into the article's front matter.
type Metadata struct {
	Title       string
	Description string
	// Date is dd/mm/yyyy, or empty when the page shows none.
	Date string
}

var (
	pageDatePattern = regexp.MustCompile(`\b([A-Z][a-z]{2,8} \d{1,2}, \d{4})\b`)
	pageDateLayouts = []string{"Jan 2, 2006", "January 2, 2006"}
)

func extractMetadata(doc *goquery.Document, article *goquery.Selection) Metadata {
	var meta Metadata

	h1 := doc.Find("h1").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return collapse(s.Text()) != ""
	}).First()
	if h1.Length() > 0 {
		meta.Title = collapse(h1.Text())
	}
	if meta.Title == "" {
		meta.Title = metaContent(doc, `meta[property="og:title"]`)
	}
	if meta.Title == "" {
		meta.Title = metaContent(doc, `meta[name="title"]`)
	}
	if meta.Title == "" {
		meta.Title = untitled
	}

	// The subtitle is the first h2 following the title in document order.
	if h1.Length() > 0 {
		if h2 := nextElement(doc.Nodes[0], h1.Nodes[0], "h2"); h2 != nil {
			meta.Description = collapse(goquery.NewDocumentFromNode(h2).Text())
		}
	}
	if meta.Description == "" {
		meta.Description = collapse(article.Find("p").First().Text())
	}

	meta.Date = findDate(spacedText(doc.Nodes[0]))
	return meta
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}

// findDate returns the first "Jan 2, 2006"-style date in text as dd/mm/yyyy.
func findDate(text string) string {
	for _, m := range pageDatePattern.FindAllString(text, -1) {
		for _, layout := range pageDateLayouts {
			if t, err := time.Parse(layout, m); err == nil {
				return t.Format("02/01/2006")
			}
		}
	}
	return ""
}

// nextElement returns the first element named tag that starts after mark in
// a depth-first walk of root.
func nextElement(root, mark *html.Node, tag string) *html.Node {
	seen := false
	var found *html.Node
	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		if n == mark {
			seen = true
		} else if seen && n.Type == html.ElementNode && n.Data == tag {
			found = n
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(root)
	return found
}

// spacedText joins every text node under n with spaces, so adjacent
// elements do not run together.
func spacedText(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			b.WriteString(n.Data)
			b.WriteByte(' ')
		case n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style"):
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
