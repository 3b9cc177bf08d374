// Package medium imports a published Medium story into an article directory:
// article.md with front matter, a thumbnail and the story's images.
package medium

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"

	"folio/internal/util"
)

// Importer turns story URLs into article directories under Dir.
type Importer struct {
	// Pages fetches the story HTML.
	Pages Fetcher
	// Images fetches image files. Nil means Pages.
	Images Fetcher
	Dir    string
	// ArticleFile and ThumbnailFile name the files written per article.
	ArticleFile   string
	ThumbnailFile string
	// Out receives progress lines. Nil means stdout.
	Out io.Writer
}

// Result describes one finished import.
type Result struct {
	Meta   Metadata
	Dir    string
	Path   string
	Images []string
}

func (im *Importer) out() io.Writer {
	if im.Out == nil {
		return os.Stdout
	}
	return im.Out
}

func (im *Importer) images() Fetcher {
	if im.Images == nil {
		return im.Pages
	}
	return im.Images
}

// Import fetches pageURL and writes <Dir>/<slug>/article.md. Image download
// failures are reported and the image is left out; anything else is fatal.
func (im *Importer) Import(ctx context.Context, pageURL string) (Result, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return Result{}, fmt.Errorf("invalid url %q: %w", pageURL, err)
	}
	body, err := im.Pages.Fetch(ctx, pageURL)
	if err != nil {
		return Result{}, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("failed to parse %s: %w", pageURL, err)
	}
	article := doc.Find("article").First()
	if article.Length() == 0 {
		return Result{}, fmt.Errorf("%w: %s", ErrNoArticle, pageURL)
	}

	meta := extractMetadata(doc, article)
	slug := util.Slugify(meta.Title)
	if slug == "" {
		slug = util.Slugify(untitled)
	}
	res := Result{Meta: meta, Dir: filepath.Join(im.Dir, slug)}
	if err := os.MkdirAll(res.Dir, 0755); err != nil {
		return Result{}, err
	}

	// The hero image becomes the thumbnail rather than part of the body.
	if hero := article.Find("figure").First(); hero.Length() > 0 {
		if src := imageURL(hero); src != "" {
			im.saveThumbnail(ctx, resolve(base, src), res.Dir)
		}
		hero.Remove()
	}

	removeChrome(article)
	rewriteCodeBlocks(article)
	res.Images = im.localizeImages(ctx, article, base, res.Dir)

	fragment, err := goquery.OuterHtml(article)
	if err != nil {
		return Result{}, fmt.Errorf("failed to serialize article: %w", err)
	}
	md, err := htmltomarkdown.ConvertString(fragment)
	if err != nil {
		return Result{}, fmt.Errorf("failed to convert article to markdown: %w", err)
	}
	md = cleanMarkdown(md, meta)

	res.Path = filepath.Join(res.Dir, im.articleFile())
	if err := os.WriteFile(res.Path, []byte(articleSource(meta, md)), 0644); err != nil {
		return Result{}, err
	}
	fmt.Fprintf(im.out(), "✓ Export complete: %s\n", res.Path)
	return res, nil
}

func (im *Importer) articleFile() string {
	if im.ArticleFile == "" {
		return "article.md"
	}
	return im.ArticleFile
}

func (im *Importer) thumbnailFile() string {
	if im.ThumbnailFile == "" {
		return "thumbnail.png"
	}
	return im.ThumbnailFile
}

func articleSource(meta Metadata, md string) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("title: " + meta.Title + "\n")
	b.WriteString("date: " + meta.Date + "\n")
	b.WriteString("description: " + meta.Description + "\n")
	b.WriteString("---\n\n")
	b.WriteString(meta.Description)
	b.WriteString("\n\n---\n\n")
	b.WriteString(md)
	return b.String()
}

func (im *Importer) saveThumbnail(ctx context.Context, src, dir string) {
	data, err := im.images().Fetch(ctx, src)
	if err != nil {
		fmt.Fprintf(im.out(), "⚠️  Failed to download thumbnail: %v\n", err)
		return
	}
	if converted, err := thumbnailPNG(data); err == nil {
		data = converted
	} else {
		fmt.Fprintf(im.out(), "⚠️  Keeping thumbnail as downloaded: %v\n", err)
	}
	dest := filepath.Join(dir, im.thumbnailFile())
	if err := os.WriteFile(dest, data, 0644); err != nil {
		fmt.Fprintf(im.out(), "⚠️  Failed to write thumbnail: %v\n", err)
		return
	}
	fmt.Fprintf(im.out(), "✓ Downloaded %s\n", im.thumbnailFile())
}

// localizeImages downloads the remaining figures and images into dir and
// points the markup at the local copies. It returns the written names.
func (im *Importer) localizeImages(ctx context.Context, article *goquery.Selection, base *url.URL, dir string) []string {
	// Collected first: figure replacements add <img> elements of their own.
	loose := article.Find("img").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.Closest("figure").Length() == 0
	})

	used := make(map[string]bool)
	var saved []string
	localize := func(sel *goquery.Selection, src string, block bool) {
		if src == "" {
			sel.Remove()
			return
		}
		name, err := im.downloadImage(ctx, resolve(base, src), dir, used)
		if err != nil {
			fmt.Fprintf(im.out(), "⚠️  Failed to download %s: %v\n", src, err)
			sel.Remove()
			return
		}
		saved = append(saved, name)
		ref := html.EscapeString(name)
		img := `<img src="` + ref + `" alt="` + ref + `">`
		if block {
			img = "<p>" + img + "</p>"
		}
		sel.ReplaceWithHtml(img)
	}

	article.Find("figure").Each(func(_ int, fig *goquery.Selection) {
		localize(fig, imageURL(fig), true)
	})
	loose.Each(func(_ int, img *goquery.Selection) {
		localize(img, imageURL(img), false)
	})
	return saved
}

func (im *Importer) downloadImage(ctx context.Context, src, dir string, used map[string]bool) (string, error) {
	data, err := im.images().Fetch(ctx, src)
	if err != nil {
		return "", err
	}
	name := uniqueName(imageFilename(src), used)
	if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
		return "", err
	}
	fmt.Fprintf(im.out(), "✓ Downloaded %s\n", name)
	return name, nil
}

func resolve(base *url.URL, ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}
