package medium

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const storyPage = `<!doctype html>
<html><head>
<meta property="og:title" content="OG Title">
<title>My Story | Medium</title>
</head><body>
<header><a href="/">Medium</a></header>
<article>
  <div><h1>My Story</h1></div>
  <h2>A subtitle</h2>
  <div class="pw-post-meta"><span>Ada</span></div>
  <p>5 min read</p>
  <p>Jan 2, 2024</p>
  <figure><picture>
    <source srcset="/img/hero.png 400w, /img/hero-big.png 1400w">
    <img src="/img/hero.png">
  </picture></figure>
  <p>Body text here.</p>
  <pre><span>fmt.Println(1)</span><br><span>fmt.Println(2)</span></pre>
  <figure><img src="/img/chart.png?w=800"><figcaption>Chart</figcaption></figure>
  <p>Closing words <img src="/img/missing.png"></p>
  <div data-testid="postActionsBar">Clap</div>
</article>
<footer>footer</footer>
</body></html>`

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newStoryServer(t *testing.T) *httptest.Server {
	t.Helper()
	hero := pngBytes(t, 1400, 700)
	chart := pngBytes(t, 10, 10)
	mux := http.NewServeMux()
	mux.HandleFunc("/story", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(storyPage))
	})
	mux.HandleFunc("/bare", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>no story</p></body></html>"))
	})
	mux.HandleFunc("/img/hero-big.png", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(hero)
	})
	mux.HandleFunc("/img/chart.png", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(chart)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestImport(t *testing.T) {
	t.Parallel()

	srv := newStoryServer(t)
	dir := t.TempDir()
	var out bytes.Buffer
	im := &Importer{Pages: NewHTTPFetcher(0), Dir: dir, Out: &out}

	res, err := im.Import(context.Background(), srv.URL+"/story")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	want := Metadata{Title: "My Story", Description: "A subtitle", Date: "02/01/2024"}
	if res.Meta != want {
		t.Errorf("Meta = %+v, want %+v", res.Meta, want)
	}
	if res.Dir != filepath.Join(dir, "my-story") {
		t.Errorf("Dir = %s, want my-story under %s", res.Dir, dir)
	}

	thumb, err := os.Open(filepath.Join(res.Dir, "thumbnail.png"))
	if err != nil {
		t.Fatalf("thumbnail: %v", err)
	}
	defer thumb.Close()
	cfg, err := png.DecodeConfig(thumb)
	if err != nil {
		t.Fatalf("thumbnail decode: %v", err)
	}
	if cfg.Width != maxThumbnailWidth || cfg.Height != 600 {
		t.Errorf("thumbnail = %dx%d, want %dx600", cfg.Width, cfg.Height, maxThumbnailWidth)
	}
	if _, err := os.Stat(filepath.Join(res.Dir, "chart.png")); err != nil {
		t.Errorf("chart image not downloaded: %v", err)
	}

	data, err := os.ReadFile(res.Path)
	if err != nil {
		t.Fatal(err)
	}
	md := string(data)
	prefix := "---\ntitle: My Story\ndate: 02/01/2024\ndescription: A subtitle\n---\n\nA subtitle\n\n---\n\n"
	if !strings.HasPrefix(md, prefix) {
		t.Errorf("article.md prefix wrong:\n%s", md)
	}
	body := strings.TrimPrefix(md, prefix)
	if !strings.HasPrefix(body, "Body text here.") {
		t.Errorf("byline not stripped, body starts:\n%s", body)
	}
	for _, w := range []string{"```", "fmt.Println(1)\nfmt.Println(2)", "![chart.png](chart.png)", "Closing words"} {
		if !strings.Contains(body, w) {
			t.Errorf("body missing %q:\n%s", w, body)
		}
	}
	for _, nw := range []string{"hero", "Clap", "footer", "missing.png"} {
		if strings.Contains(body, nw) {
			t.Errorf("body contains %q:\n%s", nw, body)
		}
	}
	if !strings.Contains(out.String(), "Failed to download") {
		t.Errorf("missing download warning:\n%s", out.String())
	}
}

func TestImportErrors(t *testing.T) {
	t.Parallel()

	srv := newStoryServer(t)
	im := &Importer{Pages: NewHTTPFetcher(0), Dir: t.TempDir(), Out: &bytes.Buffer{}}

	tests := []struct {
		name string
		path string
		want error
	}{
		{"no article element", "/bare", ErrNoArticle},
		{"not found", "/gone", ErrStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := im.Import(context.Background(), srv.URL+tt.path); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}
