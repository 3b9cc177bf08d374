package scaffold

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"folio/internal/builder"
	"folio/internal/config"
)

var testNow = time.Date(2024, time.March, 7, 12, 0, 0, 0, time.UTC)

func TestCreateNewArticle(t *testing.T) {
	t.Parallel()

	site := config.Default(t.TempDir())
	var out bytes.Buffer
	path, err := CreateNewArticle(site, "My First Post!", testNow, &out)
	if err != nil {
		t.Fatalf("CreateNewArticle: %v", err)
	}
	if want := filepath.Join(site.Root, "articles", "my-first-post", "article.md"); path != want {
		t.Errorf("path = %s, want %s", path, want)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "---\ntitle: My First Post!\ndate: 07/03/2024\n") {
		t.Errorf("front matter wrong:\n%s", data)
	}

	if _, err := CreateNewArticle(site, "My First Post", testNow, &out); !errors.Is(err, ErrExists) {
		t.Errorf("second create err = %v, want ErrExists", err)
	}
	if _, err := CreateNewArticle(site, "!!!", testNow, &out); !errors.Is(err, ErrEmptyTitle) {
		t.Errorf("empty slug err = %v, want ErrEmptyTitle", err)
	}
}

func TestCreateNewArticleUsesSiteArchetype(t *testing.T) {
	t.Parallel()

	site := config.Default(t.TempDir())
	archetype := filepath.Join(site.Root, filepath.FromSlash(ArchetypePath))
	if err := os.MkdirAll(filepath.Dir(archetype), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(archetype, []byte("---\ntitle: {{.Title}}\n---\ncustom {{.Date}}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	path, err := CreateNewArticle(site, "Custom", testNow, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "---\ntitle: Custom\n---\ncustom 07/03/2024\n" {
		t.Errorf("article = %q", data)
	}
}

func TestCreateNewSiteBuilds(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "blog")
	var out bytes.Buffer
	if err := CreateNewSite(dir, testNow, &out); err != nil {
		t.Fatalf("CreateNewSite: %v", err)
	}
	if err := CreateNewSite(dir, testNow, &out); !errors.Is(err, ErrExists) {
		t.Errorf("second scaffold err = %v, want ErrExists", err)
	}

	site, _, err := config.Discover(dir)
	if err != nil {
		t.Fatal(err)
	}
	report, err := builder.BuildSite(context.Background(), site, builder.BuildOptions{Out: &out})
	if err != nil {
		t.Fatalf("BuildSite on scaffold: %v", err)
	}
	if len(report.Articles) != 1 || report.Articles[0].Title != "Hello World" {
		t.Errorf("articles = %+v, want the sample article", report.Articles)
	}
	page, err := os.ReadFile(filepath.Join(dir, "articles", "hello-world", "index.html"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(page), `$$\sum_{k=1}^{n} k = \frac{n(n+1)}{2}$$`) {
		t.Errorf("display math not preserved:\n%s", page)
	}
	if _, err := os.Stat(filepath.Join(dir, ".nojekyll")); err != nil {
		t.Errorf(".nojekyll: %v", err)
	}
}
