package util

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// ComputeBaseHref calculates the relative path to the site root
// so that CSS/JS links work correctly for pages at any depth.
// relPath is slash-separated on every OS, as SiteRelative returns it.
// For example, a page at articles/a/index.html gets a BaseHref of "../../".
func ComputeBaseHref(relPath string) string {
	dir := path.Dir(relPath)
	if dir == "." || dir == "/" {
		return ""
	}
	depth := strings.Count(strings.Trim(dir, "/"), "/") + 1
	return strings.Repeat("../", depth)
}

// SiteRelative returns target relative to root using forward slashes, the
// form links take in generated HTML. If the paths are unrelated, target is
// returned slash-converted.
func SiteRelative(root, target string) string {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return filepath.ToSlash(target)
	}
	return filepath.ToSlash(rel)
}

// JoinURL appends a site-relative path to base. A query or fragment on rel
// is carried over unescaped. An empty base leaves the path untouched.
func JoinURL(base, rel string) string {
	if base == "" {
		return rel
	}
	u, err := url.Parse(base)
	if err != nil {
		return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(rel, "/")
	}
	relPath, suffix := rel, ""
	if i := strings.IndexAny(rel, "?#"); i >= 0 {
		relPath, suffix = rel[:i], rel[i:]
	}
	u.Path = path.Join("/", u.Path, relPath)
	if strings.HasSuffix(relPath, "/") && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String() + suffix
}

// IsExternal reports whether ref already points somewhere absolute.
func IsExternal(ref string) bool {
	return strings.HasPrefix(ref, "/") || strings.Contains(ref, "://") || strings.HasPrefix(ref, "data:")
}

// Slugify converts a title to a URL-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
