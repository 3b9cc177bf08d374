package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default("site")
	if cfg.ArticlesDir != "articles" {
		t.Errorf("ArticlesDir = %q, want articles", cfg.ArticlesDir)
	}
	if cfg.ArticleFile != "article.md" {
		t.Errorf("ArticleFile = %q, want article.md", cfg.ArticleFile)
	}
	if cfg.WordsPerMinute != 265 {
		t.Errorf("WordsPerMinute = %d, want 265", cfg.WordsPerMinute)
	}
	if cfg.Sort != SortDate {
		t.Errorf("Sort = %q, want %q", cfg.Sort, SortDate)
	}
	if !cfg.OG.On() {
		t.Error("OG should default to enabled")
	}
	if got, want := cfg.Path("index.html"), filepath.Join("site", "index.html"); got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestLoadSiteConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "yaml",
			file: "site.yaml",
			content: `title: Notes
base_url: https://example.com/blog/
articles_dir: posts
words_per_minute: 200
sort: raw
og:
  enabled: false
`,
		},
		{
			name: "toml",
			file: "site.toml",
			content: `title = "Notes"
base_url = "https://example.com/blog/"
articles_dir = "posts"
words_per_minute = 200
sort = "raw"

[og]
enabled = false
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			path := filepath.Join(dir, tt.file)
			writeFile(t, path, tt.content)

			cfg, err := LoadSiteConfig(path)
			if err != nil {
				t.Fatalf("LoadSiteConfig() error = %v", err)
			}
			if cfg.Title != "Notes" {
				t.Errorf("Title = %q", cfg.Title)
			}
			if cfg.BaseURL != "https://example.com/blog" {
				t.Errorf("BaseURL = %q, trailing slash should be trimmed", cfg.BaseURL)
			}
			if cfg.ArticlesDir != "posts" {
				t.Errorf("ArticlesDir = %q", cfg.ArticlesDir)
			}
			if cfg.WordsPerMinute != 200 {
				t.Errorf("WordsPerMinute = %d", cfg.WordsPerMinute)
			}
			if cfg.Sort != SortRaw {
				t.Errorf("Sort = %q", cfg.Sort)
			}
			if cfg.OG.On() {
				t.Error("OG should be disabled")
			}
			if cfg.Root != dir {
				t.Errorf("Root = %q, want %q", cfg.Root, dir)
			}
			if cfg.IndexOutput != "index.html" {
				t.Errorf("IndexOutput default not applied: %q", cfg.IndexOutput)
			}
		})
	}
}

func TestLoadSiteConfigErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bad := filepath.Join(dir, "site.yaml")
	writeFile(t, bad, "title: [unclosed\n")
	ini := filepath.Join(dir, "site.ini")
	writeFile(t, ini, "title=x\n")

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{"missing file", filepath.Join(dir, "nope.yaml"), ErrConfigRead},
		{"invalid yaml", bad, ErrConfigParse},
		{"unknown extension", ini, ErrConfigFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := LoadSiteConfig(tt.path)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("LoadSiteConfig() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	t.Run("no config falls back to defaults", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		cfg, path, err := Discover(dir)
		if err != nil {
			t.Fatalf("Discover() error = %v", err)
		}
		if path != "" {
			t.Errorf("path = %q, want empty", path)
		}
		if cfg.Root != dir || cfg.ArticlesDir != "articles" {
			t.Errorf("unexpected defaults: %+v", cfg)
		}
	})

	t.Run("finds site.toml", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "site.toml"), `title = "T"`)
		cfg, path, err := Discover(dir)
		if err != nil {
			t.Fatalf("Discover() error = %v", err)
		}
		if filepath.Base(path) != "site.toml" || cfg.Title != "T" {
			t.Errorf("Discover() = %+v, %q", cfg, path)
		}
	})
}
