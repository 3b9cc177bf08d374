package util

import (
	"path/filepath"
	"testing"
)

func TestComputeBaseHref(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rel  string
		want string
	}{
		{"index.html", ""},
		{"articles/index.html", "../"},
		{"articles/hello/index.html", "../../"},
		{"articles/hello/", "../../"},
		{"/index.html", ""},
	}
	for _, tt := range tests {
		if got := ComputeBaseHref(tt.rel); got != tt.want {
			t.Errorf("ComputeBaseHref(%q) = %q, want %q", tt.rel, got, tt.want)
		}
	}
}

func TestSiteRelative(t *testing.T) {
	t.Parallel()

	root := filepath.Join("site")
	target := filepath.Join("site", "articles", "one", "index.html")
	if got := SiteRelative(root, target); got != "articles/one/index.html" {
		t.Errorf("SiteRelative() = %q", got)
	}
}

func TestJoinURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		base string
		rel  string
		want string
	}{
		{"empty base", "", "articles/a/og.png", "articles/a/og.png"},
		{"host only", "https://example.com", "articles/a/og.png", "https://example.com/articles/a/og.png"},
		{"with path", "https://example.com/blog", "articles/a/og.png", "https://example.com/blog/articles/a/og.png"},
		{"leading slash rel", "https://example.com/blog", "/assets/x.css", "https://example.com/blog/assets/x.css"},
		{"query kept", "https://example.com/blog", "/assets/x.css?v=2", "https://example.com/blog/assets/x.css?v=2"},
		{"fragment kept", "https://example.com", "/about.html#team", "https://example.com/about.html#team"},
		{"trailing slash", "https://example.com/blog", "/tags/", "https://example.com/blog/tags/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := JoinURL(tt.base, tt.rel); got != tt.want {
				t.Errorf("JoinURL(%q, %q) = %q, want %q", tt.base, tt.rel, got, tt.want)
			}
		})
	}
}

func TestIsExternal(t *testing.T) {
	t.Parallel()

	for ref, want := range map[string]bool{
		"/img/a.png":            true,
		"https://cdn.x/a.png":   true,
		"data:image/png;base64": true,
		"thumbnail.png":         false,
		"../shared/a.png":       false,
	} {
		if got := IsExternal(ref); got != want {
			t.Errorf("IsExternal(%q) = %v, want %v", ref, got, want)
		}
	}
}

func TestSlugify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"  Go: Tips & Tricks!  ", "go-tips-tricks"},
		{"Already-slugged", "already-slugged"},
		{"Ünïcödé only", "n-c-d-only"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
