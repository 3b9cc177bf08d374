// internal/builder/goldmark_extensions.go
package builder

import (
	"bytes"
	"path"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// articleLinkTransformer points links at another article's source file
// (../other/article.md) to the page generated from it (../other/index.html).
type articleLinkTransformer struct {
	sourceName string
}

func newArticleLinkTransformer(sourceName string) parser.ASTTransformer {
	return &articleLinkTransformer{sourceName: sourceName}
}

func (t *articleLinkTransformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	suffix := []byte(t.sourceName)
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		link, ok := n.(*ast.Link)
		if !ok {
			return ast.WalkContinue, nil
		}
		dest := link.Destination
		// Leave external links alone; only relative references are rewritten.
		if bytes.Contains(dest, []byte("://")) {
			return ast.WalkContinue, nil
		}
		target, fragment, _ := bytes.Cut(dest, []byte("#"))
		if path.Base(string(target)) != t.sourceName {
			return ast.WalkContinue, nil
		}
		// Destination may alias the source buffer, so build a fresh slice.
		dir := bytes.TrimSuffix(target, suffix)
		newDest := make([]byte, 0, len(dir)+len("index.html")+1+len(fragment))
		newDest = append(newDest, dir...)
		newDest = append(newDest, "index.html"...)
		if len(fragment) > 0 {
			newDest = append(append(newDest, '#'), fragment...)
		}
		link.Destination = newDest
		return ast.WalkContinue, nil
	})
}

// codeBlockRenderer wraps fenced code in <div class="codehilite"> and tags
// the language on <code>. It only emits structure; colouring is left to the
// page's own stylesheet or script.
type codeBlockRenderer struct{}

func (r *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
}

func (r *codeBlockRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		_, _ = w.WriteString("</code></pre></div>\n")
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)
	_, _ = w.WriteString(`<div class="codehilite"><pre><code`)
	if lang := n.Language(source); lang != nil {
		_, _ = w.WriteString(` class="language-`)
		_, _ = w.Write(util.EscapeHTML(lang))
		_ = w.WriteByte('"')
	}
	_ = w.WriteByte('>')
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		_, _ = w.Write(util.EscapeHTML(line.Value(source)))
	}
	return ast.WalkContinue, nil
}
