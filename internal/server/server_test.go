package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"folio/internal/config"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	root := t.TempDir()
	for path, content := range map[string]string{
		"index.html":            "<html><body><h1>Home</h1></body></html>",
		"articles/a/index.html": "<html><body><p>A</p></body></html>",
		"style.css":             "body{}",
	} {
		full := filepath.Join(root, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	build := func(context.Context) error { return nil }
	return New(config.Default(root), filepath.Join(root, "site.yaml"), build), root
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, string(body)
}

func TestHandlerInjectsLiveReload(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	tests := []struct {
		name       string
		path       string
		wantScript bool
		wantBody   string
	}{
		{"site index", "/", true, "<h1>Home</h1>"},
		{"article page", "/articles/a/", true, "<p>A</p>"},
		{"stylesheet", "/style.css", false, "body{}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			resp, body := get(t, srv.URL+tt.path)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			if !strings.Contains(body, tt.wantBody) {
				t.Errorf("body missing %q:\n%s", tt.wantBody, body)
			}
			if got := strings.Contains(body, "new WebSocket"); got != tt.wantScript {
				t.Errorf("script injected = %v, want %v", got, tt.wantScript)
			}
			if tt.wantScript && !strings.Contains(body, "</script>\n</body>") {
				t.Errorf("script not placed before </body>:\n%s", body)
			}
			if cc := resp.Header.Get("Cache-Control"); !strings.Contains(cc, "no-cache") {
				t.Errorf("Cache-Control = %q", cc)
			}
		})
	}
}

func TestHandlerNotFound(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, body := get(t, srv.URL+"/missing.html")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	if strings.Contains(body, "new WebSocket") {
		t.Errorf("script injected into error page")
	}
}

func TestBroadcastReachesClients(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for s.hub.count() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	s.hub.broadcast([]byte(reloadMessage))
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(msg) != reloadMessage {
		t.Errorf("message = %q, want %q", msg, reloadMessage)
	}
}

func TestIsGenerated(t *testing.T) {
	t.Parallel()

	s, root := newTestServer(t)
	tests := []struct {
		path string
		want bool
	}{
		{"index.html", true},
		{".nojekyll", true},
		{"articles/a/index.html", true},
		{"articles/a/og.png", true},
		{"articles/a/article.md", false},
		{"articles/a/thumbnail.png", false},
		{"articles/a/.article.md.swp", true},
		{"articles/a/figs/index.html", false},
		{"article_template.html", false},
		{"site.yaml", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			if got := s.isGenerated(filepath.Join(root, filepath.FromSlash(tt.path))); got != tt.want {
				t.Errorf("isGenerated(%s) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestRunShutsDownOnCancel(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, "127.0.0.1:0")
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
