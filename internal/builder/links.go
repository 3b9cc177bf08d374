// internal/builder/links.go
package builder

import (
	"strings"

	"golang.org/x/net/html"

	"folio/internal/util"
)

// RewriteRootLinks prefixes root-relative href and src attributes in doc
// with base, so a site can be served below a sub-path (a project page, for
// instance). Everything else, including untouched tags, is copied byte for
// byte. An empty base returns doc unchanged.
func RewriteRootLinks(doc, base string) string {
	if base == "" {
		return doc
	}
	z := html.NewTokenizer(strings.NewReader(doc))
	var b strings.Builder
	b.Grow(len(doc))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// The reader is in memory, so the only error is io.EOF.
			return b.String()
		case html.StartTagToken, html.SelfClosingTagToken:
			// Raw must be copied before Token, which rewrites the buffer.
			raw := string(z.Raw())
			tok := z.Token()
			changed := false
			for i, a := range tok.Attr {
				if a.Namespace == "" && (a.Key == "href" || a.Key == "src") && isRootRelative(a.Val) {
					tok.Attr[i].Val = util.JoinURL(base, a.Val)
					changed = true
				}
			}
			if changed {
				b.WriteString(tok.String())
			} else {
				b.WriteString(raw)
			}
		default:
			b.Write(z.Raw())
		}
	}
}

func isRootRelative(ref string) bool {
	return strings.HasPrefix(ref, "/") && !strings.HasPrefix(ref, "//")
}
