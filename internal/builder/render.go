// internal/builder/render.go
package builder

import (
	"bytes"
	"regexp"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// MarkdownRenderer turns an article body into an HTML fragment. It is built
// once per run and shared by every article render.
type MarkdownRenderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// NewMarkdownRenderer configures goldmark with tables, definition lists,
// footnotes, heading IDs and attributes. Fenced code gets a structural
// wrapper. sourceName is the per-article source file links are rewritten
// from. With unsafe set, the output is not sanitized.
func NewMarkdownRenderer(sourceName string, unsafe bool) *MarkdownRenderer {
	r := &MarkdownRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.Table,
				extension.DefinitionList,
				extension.Footnote,
				extension.Strikethrough,
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
				parser.WithAttribute(),
				parser.WithASTTransformers(
					util.Prioritized(newArticleLinkTransformer(sourceName), 100),
				),
			),
			goldmark.WithRendererOptions(
				html.WithUnsafe(),
				renderer.WithNodeRenderers(
					util.Prioritized(&codeBlockRenderer{}, 100),
				),
			),
		),
	}
	if !unsafe {
		r.policy = newSanitizer()
	}
	return r
}

func newSanitizer() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("div", "section", "dl", "dt", "dd", "sup", "del")
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^language-[\w+#.-]+$`)).OnElements("code")
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^(codehilite|footnotes)$`)).OnElements("div", "section")
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^footnote-(ref|backref)$`)).OnElements("a")
	p.AllowAttrs("role").Matching(regexp.MustCompile(`^doc-(noteref|backlink|endnotes)$`)).OnElements("a", "div", "section")
	return p
}

// Render converts body to HTML. Malformed markdown renders best-effort;
// no error reaches the caller.
func (r *MarkdownRenderer) Render(body string) string {
	var buf bytes.Buffer
	// Converting into a bytes.Buffer cannot fail on write, and the parser
	// recovers from any input, so whatever was produced is the result.
	_ = r.md.Convert([]byte(body), &buf)
	if r.policy == nil {
		return buf.String()
	}
	return string(r.policy.SanitizeBytes(buf.Bytes()))
}
