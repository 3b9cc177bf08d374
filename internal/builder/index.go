// internal/builder/index.go
package builder

import (
	"cmp"
	"html"
	"path"
	"slices"
	"strings"
	"time"

	"folio/internal/config"
	"folio/internal/tokens"
	"folio/internal/util"
)

type sortKey struct {
	info   ArticleInfo
	when   time.Time
	parsed bool
}

// SortArticles orders articles newest first. With the date policy each date
// is tried against layouts; unparseable dates follow the parsed ones in
// descending string order. The raw policy compares the date strings as they
// are. Ties are broken by title.
func SortArticles(articles []ArticleInfo, policy string, layouts []string) {
	if policy == config.SortRaw {
		slices.SortStableFunc(articles, func(a, b ArticleInfo) int {
			if c := cmp.Compare(b.Date, a.Date); c != 0 {
				return c
			}
			return cmp.Compare(a.Title, b.Title)
		})
		return
	}

	keys := make([]sortKey, len(articles))
	for i, a := range articles {
		t, ok := parseDate(a.Date, layouts)
		keys[i] = sortKey{info: a, when: t, parsed: ok}
	}
	slices.SortStableFunc(keys, func(a, b sortKey) int {
		switch {
		case a.parsed && !b.parsed:
			return -1
		case !a.parsed && b.parsed:
			return 1
		case a.parsed:
			if c := b.when.Compare(a.when); c != 0 {
				return c
			}
		default:
			if c := cmp.Compare(b.info.Date, a.info.Date); c != 0 {
				return c
			}
		}
		return cmp.Compare(a.info.Title, b.info.Title)
	})
	for i, k := range keys {
		articles[i] = k.info
	}
}

func parseDate(s string, layouts []string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// RenderIndex fills the index template with one block per article, in the
// order given. Links and thumbnails are made relative to the index page.
func (r *Renderer) RenderIndex(articles []ArticleInfo) string {
	indexRel := util.SiteRelative(r.site.Root, r.site.Path(r.site.IndexOutput))
	baseHref := util.ComputeBaseHref(indexRel)

	var b strings.Builder
	for _, a := range articles {
		writeArticleBlock(&b, a, baseHref)
	}
	out := tokens.Replace(r.tmpl.Index, tokens.Map{
		tokens.Articles:        b.String(),
		tokens.BaseHref:        baseHref,
		tokens.SiteTitle:       html.EscapeString(r.site.Title),
		tokens.SiteDescription: html.EscapeString(r.site.Description),
	})
	return RewriteRootLinks(out, r.site.BaseURL)
}

func writeArticleBlock(b *strings.Builder, a ArticleInfo, baseHref string) {
	link := baseHref + a.Link
	thumb := ""
	if a.Thumbnail != "" {
		src := a.Thumbnail
		if !util.IsExternal(src) {
			src = baseHref + path.Clean(src)
		}
		thumb = `<img src="` + html.EscapeString(src) + `" alt="Article image">`
	}
	b.WriteString("\n        <article class=\"article-item\">\n")
	b.WriteString("            <div class=\"article-content\">\n")
	b.WriteString("                <h3 class=\"article-title\"><a href=\"" + html.EscapeString(link) + "\">" + html.EscapeString(a.Title) + "</a></h3>\n")
	b.WriteString("                <p class=\"article-description\">" + html.EscapeString(a.Description) + "</p>\n")
	if a.ReadTime != "" {
		b.WriteString("                <p class=\"article-meta\">" + html.EscapeString(a.ReadTime) + "</p>\n")
	}
	b.WriteString("            </div>\n")
	b.WriteString("            <div class=\"article-image\">\n")
	b.WriteString("                " + thumb + "\n")
	b.WriteString("            </div>\n")
	b.WriteString("        </article>\n")
}
