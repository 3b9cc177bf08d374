// internal/builder/models.go
package builder

import (
	"io"
	"os"

	"folio/internal/frontmatter"
)

type BuildOptions struct {
	Unsafe bool
	Debug  bool
	// Workers bounds concurrent article renders; zero defers to the site
	// config and then to GOMAXPROCS.
	Workers int
	// Out receives progress lines. Nil means stdout.
	Out io.Writer
}

func (o BuildOptions) out() io.Writer {
	if o.Out == nil {
		return os.Stdout
	}
	return o.Out
}

// ArticleInfo is what the index needs to know about one rendered article.
// Paths are site-relative and slash-separated.
type ArticleInfo struct {
	Title       string
	Date        string
	Description string
	Link        string
	// Thumbnail is empty when the article has none.
	Thumbnail string
	// ReadTime is shown under the description in the index.
	ReadTime string
}

// Location says where a page sits in the site.
type Location struct {
	// Dir is the page's site-relative, slash-separated directory.
	Dir string
	// LocalThumbnail is set when a thumbnail file sits next to the source.
	LocalThumbnail bool
}

// Page is the result of running the pipeline over one source document.
type Page struct {
	Meta      frontmatter.Metadata
	Content   string
	ReadTime  string
	Thumbnail string
	// OGURL is the value substituted for the OG token.
	OGURL string
	HTML  string
	// Unresolved lists template tokens left in HTML.
	Unresolved []string
	Math       int
}

// ArticleError reports one article that could not be generated.
type ArticleError struct {
	Dir string
	Err error
}

func (e ArticleError) Error() string {
	return e.Dir + ": " + e.Err.Error()
}

func (e ArticleError) Unwrap() error {
	return e.Err
}

// Report summarizes a full build.
type Report struct {
	// Articles are in index order.
	Articles  []ArticleInfo
	Skipped   []string
	Failed    []ArticleError
	IndexPath string
}
