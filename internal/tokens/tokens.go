// Package tokens performs the literal {{NAME}} substitutions that turn a
// loaded template into a page.
package tokens

import (
	"regexp"
	"sort"
	"strings"
)

// Names used by the article and index templates.
const (
	Title           = "TITLE"
	Date            = "DATE"
	Content         = "CONTENT"
	ReadTimeToken   = "READ_TIME"
	Description     = "DESCRIPTION"
	OG              = "OG"
	BaseHref        = "BASE_HREF"
	SiteTitle       = "SITE_TITLE"
	SiteDescription = "SITE_DESCRIPTION"
	Articles        = "ARTICLES"
)

// Map maps a token name (without braces) to its replacement.
type Map map[string]string

// Wrap returns the literal form of a token name.
func Wrap(name string) string {
	return "{{" + name + "}}"
}

// Replace substitutes every {{NAME}} in tmpl whose NAME is in m. The pass is
// literal and single: replacement values are never rescanned, so a value that
// itself contains a token is inserted verbatim. Unknown tokens stay as they are.
func Replace(tmpl string, m Map) string {
	if len(m) == 0 {
		return tmpl
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, 2*len(names))
	for _, name := range names {
		pairs = append(pairs, Wrap(name), m[name])
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

var unresolvedPattern = regexp.MustCompile(`\{\{[A-Z][A-Z0-9_]*\}\}`)

// Unresolved lists the distinct upper-case tokens still present in s, in
// order of first appearance. Lower-case {{...}} text is ignored since it
// shows up legitimately in code samples.
func Unresolved(s string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range unresolvedPattern.FindAllString(s, -1) {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}
