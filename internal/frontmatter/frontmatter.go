// Package frontmatter reads the metadata block at the head of an article.
//
// The block is delimited by "---" lines and holds simple "key: value" lines.
// Only four keys are recognized; each is matched by its own line pattern
// rather than by a YAML decoder, so a malformed block degrades to defaults
// instead of failing the article.
package frontmatter

import (
	"regexp"
	"strings"
)

const (
	DefaultTitle = "Untitled Article"
	DefaultDate  = "No date"
)

var (
	blockPattern = regexp.MustCompile(`(?s)\A---[ \t]*\r?\n(.*?)\r?\n---[ \t]*(?:\r?\n|\z)`)

	titlePattern       = keyPattern("title")
	datePattern        = keyPattern("date")
	descriptionPattern = keyPattern("description")
	thumbnailPattern   = keyPattern("thumbnail")
)

func keyPattern(key string) *regexp.Regexp {
	return regexp.MustCompile(`(?m)^[ \t]*` + key + `[ \t]*:[ \t]*(\S.*?)[ \t]*\r?$`)
}

// Metadata is derived once per document and never modified afterwards.
type Metadata struct {
	Title       string
	Date        string
	Description string
	// Thumbnail is empty when the document names none.
	Thumbnail string
}

// Defaults returns the metadata used for documents without front matter.
func Defaults() Metadata {
	return Metadata{Title: DefaultTitle, Date: DefaultDate}
}

// HasThumbnail reports whether the front matter named a thumbnail.
func (m Metadata) HasThumbnail() bool {
	return m.Thumbnail != ""
}

// Parse splits doc into its metadata and the remaining body. When doc has no
// well-formed leading block, the defaults are returned with doc as the body.
func Parse(doc string) (Metadata, string) {
	meta := Defaults()

	loc := blockPattern.FindStringSubmatchIndex(doc)
	if loc == nil {
		return meta, doc
	}
	block := doc[loc[2]:loc[3]]
	body := doc[loc[1]:]

	if v, ok := lookup(titlePattern, block); ok {
		meta.Title = v
	}
	if v, ok := lookup(datePattern, block); ok {
		meta.Date = v
	}
	if v, ok := lookup(descriptionPattern, block); ok {
		meta.Description = v
	}
	if v, ok := lookup(thumbnailPattern, block); ok {
		meta.Thumbnail = v
	}
	return meta, body
}

// lookup returns the first value for the key's pattern, with one pair of
// matching surrounding quotes removed.
func lookup(re *regexp.Regexp, block string) (string, bool) {
	m := re.FindStringSubmatch(block)
	if m == nil {
		return "", false
	}
	v := m[1]
	if len(v) >= 2 {
		if q := v[0]; (q == '"' || q == '\'') && v[len(v)-1] == q {
			v = v[1 : len(v)-1]
		}
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}
