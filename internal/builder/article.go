// internal/builder/article.go
package builder

import (
	"errors"
	"fmt"
	"html"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"folio/internal/config"
	"folio/internal/frontmatter"
	"folio/internal/mathguard"
	"folio/internal/ogimage"
	"folio/internal/tokens"
	"folio/internal/util"
)

// Renderer holds everything shared by the article renders of one run. It is
// safe for concurrent use once constructed.
type Renderer struct {
	site  config.SiteConfig
	tmpl  Templates
	plots tokens.Plots
	md    *MarkdownRenderer
	og    *ogimage.Renderer
	opts  BuildOptions
}

// NewRenderer prepares the markdown pipeline and, when enabled, the OG image
// renderer.
func NewRenderer(site config.SiteConfig, tmpl Templates, plots tokens.Plots, opts BuildOptions) (*Renderer, error) {
	r := &Renderer{
		site:  site,
		tmpl:  tmpl,
		plots: plots,
		md:    NewMarkdownRenderer(site.ArticleFile, opts.Unsafe),
		opts:  opts,
	}
	if plots == nil {
		r.plots = tokens.Plots{}
	}
	if site.OG.On() {
		style, err := ogimage.ParseStyle(site.OG.Background, site.OG.Foreground, site.OG.Accent)
		if err != nil {
			return nil, fmt.Errorf("og colors: %w", err)
		}
		if r.og, err = ogimage.New(style); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// RenderPage runs the full pipeline over one source document and returns the
// finished page. It does no I/O: the same source and location always yield
// the same page.
func (r *Renderer) RenderPage(source string, loc Location) Page {
	meta, body := frontmatter.Parse(source)
	readTime := tokens.ReadTime(body, r.site.WordsPerMinute)

	protected, table := mathguard.Protect(body)
	content := r.md.Render(protected)
	content = table.RestoreHTML(content)

	baseHref := util.ComputeBaseHref(path.Join(loc.Dir, "index.html"))
	content = r.plots.Expand(content, r.url(baseHref, r.site.PlotsURL))

	thumb := r.thumbnail(meta, loc)
	ogURL := r.ogURL(baseHref, thumb, loc)

	out := tokens.Replace(r.tmpl.Article, tokens.Map{
		tokens.Title:           html.EscapeString(meta.Title),
		tokens.Date:            html.EscapeString(meta.Date),
		tokens.Description:     html.EscapeString(meta.Description),
		tokens.Content:         content,
		tokens.ReadTimeToken:   readTime,
		tokens.OG:              html.EscapeString(ogURL),
		tokens.BaseHref:        baseHref,
		tokens.SiteTitle:       html.EscapeString(r.site.Title),
		tokens.SiteDescription: html.EscapeString(r.site.Description),
	})
	out = RewriteRootLinks(out, r.site.BaseURL)

	return Page{
		Meta:       meta,
		Content:    content,
		ReadTime:   readTime,
		Thumbnail:  thumb,
		OGURL:      ogURL,
		HTML:       out,
		Unresolved: tokens.Unresolved(out),
		Math:       table.Len(),
	}
}

// thumbnail returns the site-relative (or external) thumbnail of an article,
// or "" when it has none. A front matter value is relative to the article.
func (r *Renderer) thumbnail(meta frontmatter.Metadata, loc Location) string {
	switch {
	case meta.HasThumbnail() && util.IsExternal(meta.Thumbnail):
		return meta.Thumbnail
	case meta.HasThumbnail():
		return path.Join(loc.Dir, meta.Thumbnail)
	case loc.LocalThumbnail:
		return path.Join(loc.Dir, r.site.ThumbnailFile)
	}
	return ""
}

func (r *Renderer) ogURL(baseHref, thumb string, loc Location) string {
	if r.og != nil {
		return r.url(baseHref, path.Join(loc.Dir, r.site.OG.Filename))
	}
	if thumb == "" || util.IsExternal(thumb) {
		return thumb
	}
	return r.url(baseHref, thumb)
}

// url makes a site-relative path usable from a page: absolute when the site
// has a base URL, otherwise prefixed with the page's way back to the root.
func (r *Renderer) url(baseHref, siteRel string) string {
	if r.site.BaseURL != "" {
		return util.JoinURL(r.site.BaseURL, siteRel)
	}
	return baseHref + strings.TrimLeft(siteRel, "/")
}

// RenderArticle generates index.html (and the OG image) for the article in
// dir. It fails with ErrNoSource when dir has no article file. Warnings and
// debug lines come back as notes; RenderArticle never writes to Out, so
// articles can render in parallel.
func (r *Renderer) RenderArticle(dir string) (ArticleInfo, []string, error) {
	src := filepath.Join(dir, r.site.ArticleFile)
	data, err := os.ReadFile(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ArticleInfo{}, nil, fmt.Errorf("%w: %s", ErrNoSource, src)
		}
		return ArticleInfo{}, nil, fmt.Errorf("failed to read file %s: %w", src, err)
	}
	if !utf8.Valid(data) {
		return ArticleInfo{}, nil, fmt.Errorf("%w: %s", ErrInvalidSource, src)
	}

	_, statErr := os.Stat(filepath.Join(dir, r.site.ThumbnailFile))
	loc := Location{
		Dir:            util.SiteRelative(r.site.Root, dir),
		LocalThumbnail: statErr == nil,
	}
	page := r.RenderPage(string(data), loc)

	outputPath := filepath.Join(dir, "index.html")
	if err := os.WriteFile(outputPath, []byte(page.HTML), 0644); err != nil {
		return ArticleInfo{}, nil, fmt.Errorf("%w %s: %w", ErrPageWrite, outputPath, err)
	}
	var notes []string
	if len(page.Unresolved) > 0 {
		notes = append(notes, fmt.Sprintf("⚠️  Unresolved tokens in %s: %s", outputPath, strings.Join(page.Unresolved, ", ")))
	}
	if r.opts.Debug {
		notes = append(notes, fmt.Sprintf("🔎 %s: %d math expressions, %s, og %q", src, page.Math, page.ReadTime, page.OGURL))
	}

	if r.og != nil {
		card := ogimage.Card{
			Title:       page.Meta.Title,
			Description: page.Meta.Description,
			Footer:      r.cardFooter(page.Meta),
		}
		ogPath := filepath.Join(dir, r.site.OG.Filename)
		if err := r.og.WriteFile(ogPath, card); err != nil {
			return ArticleInfo{}, nil, fmt.Errorf("%w %s: %w", ErrOGImage, ogPath, err)
		}
	}

	return ArticleInfo{
		Title:       page.Meta.Title,
		Date:        page.Meta.Date,
		Description: page.Meta.Description,
		Link:        path.Join(loc.Dir, "index.html"),
		Thumbnail:   page.Thumbnail,
		ReadTime:    page.ReadTime,
	}, notes, nil
}

func (r *Renderer) cardFooter(meta frontmatter.Metadata) string {
	var parts []string
	if meta.Date != frontmatter.DefaultDate {
		parts = append(parts, meta.Date)
	}
	if r.site.Title != "" {
		parts = append(parts, r.site.Title)
	}
	return strings.Join(parts, " · ")
}
