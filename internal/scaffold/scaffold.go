// internal/scaffold/scaffold.go
package scaffold

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"text/template"
	"time"

	"folio/internal/config"
	"folio/internal/util"
)

var (
	ErrExists     = errors.New("refusing to overwrite existing file")
	ErrEmptyTitle = errors.New("article title is empty")
)

// ArchetypePath is where a site may keep its own new-article template.
const ArchetypePath = "archetypes/article.md"

// CreateNewSite lays out a buildable site in dir: config, both templates, a
// stylesheet, the article archetype and a first article.
func CreateNewSite(dir string, now time.Time, out io.Writer) error {
	if _, err := os.Stat(filepath.Join(dir, config.DefaultFiles[0])); err == nil {
		return fmt.Errorf("%w: %s", ErrExists, filepath.Join(dir, config.DefaultFiles[0]))
	}
	fmt.Fprintln(out, "Scaffolding new site in:", dir)

	files := map[string]string{
		config.DefaultFiles[0]:  siteYamlContent,
		"article_template.html": articleTemplateContent,
		"index_template.html":   indexTemplateContent,
		"assets/style.css":      styleCssContent,
		ArchetypePath:           archetypeContent,
	}
	for path, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", filepath.Dir(full), err)
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to write file %s: %w", path, err)
		}
	}

	site, err := config.LoadSiteConfig(filepath.Join(dir, config.DefaultFiles[0]))
	if err != nil {
		return err
	}
	if _, err := CreateNewArticle(site, "Hello World", now, out); err != nil {
		return err
	}

	fmt.Fprintln(out, "Site scaffolded. You can now:")
	fmt.Fprintln(out, "  cd", dir)
	fmt.Fprintln(out, "  folio serve")
	return nil
}

// CreateNewArticle writes <articles_dir>/<slug>/<article_file> from the
// site's archetype (or the built-in one) and returns its path. An existing
// article is never overwritten.
func CreateNewArticle(site config.SiteConfig, title string, now time.Time, out io.Writer) (string, error) {
	slug := util.Slugify(title)
	if slug == "" {
		return "", ErrEmptyTitle
	}
	path := filepath.Join(site.Path(site.ArticlesDir), slug, site.ArticleFile)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%w: %s", ErrExists, path)
	}

	archetype := archetypeContent
	archetypePath := site.Path(filepath.FromSlash(ArchetypePath))
	if data, err := os.ReadFile(archetypePath); err == nil {
		archetype = string(data)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("could not read archetype file %s: %w", archetypePath, err)
	}

	tmpl, err := template.New("archetype").Parse(archetype)
	if err != nil {
		return "", fmt.Errorf("failed to parse archetype file %s: %w", archetypePath, err)
	}
	data := struct {
		Title string
		Date  string
	}{
		Title: title,
		Date:  now.Format("02/01/2006"),
	}
	var output bytes.Buffer
	if err := tmpl.Execute(&output, data); err != nil {
		return "", fmt.Errorf("failed to execute archetype template: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	// O_EXCL closes the gap between the existence check and the write.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("%w: %s", ErrExists, path)
		}
		return "", err
	}
	if _, err := f.Write(output.Bytes()); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	fmt.Fprintln(out, "Created:", path)
	return path, nil
}

// Constants for default file contents
const siteYamlContent = `title: My Articles
description: Notes, essays and experiments.
# base_url: https://user.github.io/repo
articles_dir: articles
sort: date
nojekyll: true
og:
  enabled: true
`

const archetypeContent = `---
title: {{.Title}}
date: {{.Date}}
description:
---

Write something meaningful here. Inline math like $e^{i\pi} + 1 = 0$ and
display math both work:

$$\sum_{k=1}^{n} k = \frac{n(n+1)}{2}$$
`

const articleTemplateContent = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{TITLE}} | {{SITE_TITLE}}</title>
  <meta name="description" content="{{DESCRIPTION}}">
  <meta property="og:title" content="{{TITLE}}">
  <meta property="og:description" content="{{DESCRIPTION}}">
  <meta property="og:image" content="{{OG}}">
  <meta name="twitter:card" content="summary_large_image">
  <link rel="stylesheet" href="{{BASE_HREF}}assets/style.css">
  <script>
    window.MathJax = { tex: { inlineMath: [['$', '$']], displayMath: [['$$', '$$']] } };
  </script>
  <script async src="https://cdn.jsdelivr.net/npm/mathjax@3/es5/tex-chtml.js"></script>
</head>
<body>
  <header><a href="{{BASE_HREF}}index.html">{{SITE_TITLE}}</a></header>
  <article>
    <h1>{{TITLE}}</h1>
    <p class="meta"><time>{{DATE}}</time> · {{READ_TIME}}</p>
    {{CONTENT}}
  </article>
</body>
</html>
`

const indexTemplateContent = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{SITE_TITLE}}</title>
  <meta name="description" content="{{SITE_DESCRIPTION}}">
  <link rel="stylesheet" href="{{BASE_HREF}}assets/style.css">
</head>
<body>
  <header><h1>{{SITE_TITLE}}</h1><p>{{SITE_DESCRIPTION}}</p></header>
  <main class="article-list">{{ARTICLES}}
  </main>
</body>
</html>
`

const styleCssContent = `body {
  font-family: sans-serif;
  max-width: 760px;
  margin: 2em auto;
  padding: 0 1em;
  line-height: 1.6;
  color: #222;
  background: #fdfdfd;
}
header a { color: #555; text-decoration: none; }
.meta { color: #777; font-size: 0.9em; }
.article-item { display: flex; gap: 1.5em; padding: 1.5em 0; border-bottom: 1px solid #eee; }
.article-content { flex: 1; }
.article-title a { color: #222; text-decoration: none; }
.article-description { color: #555; }
.article-meta { color: #777; font-size: 0.85em; }
.article-image img { max-width: 180px; border-radius: 4px; }
.codehilite { background: #f5f5f5; padding: 0.5em 1em; overflow-x: auto; border-radius: 4px; }
.plotly-chart { margin: 2em 0; }
.plotly-chart .caption { text-align: center; color: #777; font-size: 0.9em; }
.error { color: #a00; border: 1px solid #a00; padding: 0.5em; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ddd; padding: 0.3em 0.6em; }
`
