// Package mathguard keeps TeX expressions away from the markdown renderer.
//
// Protect swaps every $$...$$ block and $...$ inline expression for an opaque
// token; Restore puts the original expressions back once the markdown has
// been rendered. Tokens look like {{MATHBLOCK_0}} and {{MATHINLINE_3}}.
package mathguard

import (
	"html"
	"regexp"
	"strconv"
	"strings"
)

// Kind separates the two expression forms. Each kind has its own index space.
type Kind int

const (
	Block Kind = iota
	Inline
)

func (k Kind) String() string {
	if k == Block {
		return "MATHBLOCK"
	}
	return "MATHINLINE"
}

func (k Kind) delimiter() string {
	if k == Block {
		return "$$"
	}
	return "$"
}

// Token returns the placeholder text for the i-th expression of kind k.
func Token(k Kind, i int) string {
	return "{{" + k.String() + "_" + strconv.Itoa(i) + "}}"
}

var blockPattern = regexp.MustCompile(`(?s)\$\$(.*?)\$\$`)

// Table is the ordered record of protected expressions. Index i of each
// slice is the expression behind Token(kind, i).
type Table struct {
	Blocks  []string
	Inlines []string
}

// Len returns the total number of protected expressions.
func (t *Table) Len() int {
	return len(t.Blocks) + len(t.Inlines)
}

// Protect replaces block expressions, then inline expressions, with tokens.
// Block tokens are surrounded by blank lines so they render as their own
// paragraph. Unbalanced or nested dollar signs are not validated.
func Protect(body string) (string, *Table) {
	t := &Table{}
	out := blockPattern.ReplaceAllStringFunc(body, func(m string) string {
		idx := len(t.Blocks)
		t.Blocks = append(t.Blocks, m[2:len(m)-2])
		return "\n\n" + Token(Block, idx) + "\n\n"
	})
	out = protectInline(out, t)
	return out, t
}

// protectInline stashes $...$ spans whose delimiters are not adjacent to
// another dollar sign. The span is non-greedy, may cross lines and holds at
// least one character. A lone dollar with no valid partner is left alone.
func protectInline(s string, t *Table) string {
	var b strings.Builder
	last := 0
	for i := 0; i < len(s); i++ {
		if !isLoneDollar(s, i) {
			continue
		}
		end := -1
		for j := i + 2; j < len(s); j++ {
			if isLoneDollar(s, j) {
				end = j
				break
			}
		}
		if end < 0 {
			continue
		}
		b.WriteString(s[last:i])
		b.WriteString(Token(Inline, len(t.Inlines)))
		t.Inlines = append(t.Inlines, s[i+1:end])
		last = end + 1
		i = end
	}
	if last == 0 {
		return s
	}
	b.WriteString(s[last:])
	return b.String()
}

func isLoneDollar(s string, i int) bool {
	if s[i] != '$' {
		return false
	}
	if i > 0 && s[i-1] == '$' {
		return false
	}
	if i+1 < len(s) && s[i+1] == '$' {
		return false
	}
	return true
}

// Restore replaces every token with its expression re-wrapped in the
// original delimiter. Protect followed by Restore is the identity on the
// math spans.
func (t *Table) Restore(s string) string {
	return t.restore(s, func(expr string) string { return expr })
}

// RestoreHTML is Restore for rendered HTML: expression text is escaped so a
// "<" inside TeX cannot open a tag. The browser hands MathJax the same text.
func (t *Table) RestoreHTML(s string) string {
	return t.restore(s, html.EscapeString)
}

func (t *Table) restore(s string, escape func(string) string) string {
	if t.Len() == 0 {
		return s
	}
	pairs := make([]string, 0, 2*t.Len()+2*len(t.Blocks))
	for i, expr := range t.Blocks {
		// The padded form comes first so an unrendered body round-trips
		// exactly; rendered HTML only ever holds the bare token.
		restored := Block.delimiter() + escape(expr) + Block.delimiter()
		pairs = append(pairs, "\n\n"+Token(Block, i)+"\n\n", restored, Token(Block, i), restored)
	}
	for i, expr := range t.Inlines {
		pairs = append(pairs, Token(Inline, i), Inline.delimiter()+escape(expr)+Inline.delimiter())
	}
	return strings.NewReplacer(pairs...).Replace(s)
}
