// internal/builder/builder.go
package builder

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"folio/internal/config"
	"folio/internal/tokens"
)

// BuildSite renders every article under the site's articles directory and
// writes the index page. Per-article failures are reported and skipped;
// missing templates or an unreadable articles directory abort the build.
func BuildSite(ctx context.Context, site config.SiteConfig, opts BuildOptions) (Report, error) {
	tmpl, err := LoadTemplates(site.Path(site.ArticleTemplate), site.Path(site.IndexTemplate))
	if err != nil {
		return Report{}, err
	}

	plotsFile := site.Path(site.PlotsMetadata)
	plots, err := tokens.LoadPlots(plotsFile)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(opts.out(), "⚠️  %v\n", err)
		} else if opts.Debug {
			fmt.Fprintf(opts.out(), "🔎 No plot metadata at %s\n", plotsFile)
		}
		plots = tokens.Plots{}
	}

	r, err := NewRenderer(site, tmpl, plots, opts)
	if err != nil {
		return Report{}, err
	}
	return r.BuildAll(ctx)
}

type articleResult struct {
	dir   string
	info  ArticleInfo
	notes []string
	err   error
}

func (r *Renderer) workers() int {
	switch {
	case r.opts.Workers > 0:
		return r.opts.Workers
	case r.site.Workers > 0:
		return r.site.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// BuildAll renders the article directories concurrently, then sorts the
// results and writes the index. Progress goes to Out only after every render
// has finished, in directory order. Cancelling ctx stops new renders from
// starting; the index is not written in that case.
func (r *Renderer) BuildAll(ctx context.Context) (Report, error) {
	root := r.site.Path(r.site.ArticlesDir)
	entries, err := os.ReadDir(root)
	if err != nil {
		return Report{}, fmt.Errorf("%w %s: %w", ErrArticlesRoot, root, err)
	}

	var dirs []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		dirs = append(dirs, filepath.Join(root, e.Name()))
	}

	results := make([]articleResult, len(dirs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers())
	for i, dir := range dirs {
		g.Go(func() error {
			results[i].dir = dir
			if err := gctx.Err(); err != nil {
				results[i].err = err
				return nil
			}
			results[i].info, results[i].notes, results[i].err = r.RenderArticle(dir)
			return nil
		})
	}
	// Jobs record their own failures, so Wait has nothing to report.
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	out := r.opts.out()
	var report Report
	for _, res := range results {
		for _, note := range res.notes {
			fmt.Fprintln(out, note)
		}
		switch {
		case errors.Is(res.err, ErrNoSource):
			fmt.Fprintf(out, "⚠️  No %s found in %s\n", r.site.ArticleFile, res.dir)
			report.Skipped = append(report.Skipped, res.dir)
		case res.err != nil:
			fmt.Fprintf(out, "❌ Error processing %s: %v\n", res.dir, res.err)
			report.Failed = append(report.Failed, ArticleError{Dir: res.dir, Err: res.err})
		default:
			fmt.Fprintf(out, "✓ Converted %s\n", filepath.Join(res.dir, "index.html"))
			report.Articles = append(report.Articles, res.info)
		}
	}

	SortArticles(report.Articles, r.site.Sort, r.site.DateLayouts)

	indexPath := r.site.Path(r.site.IndexOutput)
	if err := os.MkdirAll(filepath.Dir(indexPath), 0755); err != nil {
		return report, fmt.Errorf("%w %s: %w", ErrIndexWrite, indexPath, err)
	}
	if err := os.WriteFile(indexPath, []byte(r.RenderIndex(report.Articles)), 0644); err != nil {
		return report, fmt.Errorf("%w %s: %w", ErrIndexWrite, indexPath, err)
	}
	report.IndexPath = indexPath
	fmt.Fprintf(out, "✓ Generated %s with %d articles\n", indexPath, len(report.Articles))

	if r.site.NoJekyll {
		marker := filepath.Join(filepath.Dir(indexPath), ".nojekyll")
		if err := os.WriteFile(marker, nil, 0644); err != nil {
			return report, fmt.Errorf("%w %s: %w", ErrIndexWrite, marker, err)
		}
	}
	return report, nil
}
