//go:build integration

package medium

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"
)

func requireChrome(t *testing.T) {
	t.Helper()
	if os.Getenv("ROD_BROWSER_BIN") != "" {
		return
	}
	for _, p := range []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser"} {
		if _, err := exec.LookPath(p); err == nil {
			return
		}
	}
	t.Skip("Chrome not found. Install Chrome or Chromium to run browser tests.")
}

func TestBrowserFetcherLoadsScriptedPage(t *testing.T) {
	requireChrome(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><article><h1>Rendered</h1></article>` +
			`<script>document.querySelector("h1").textContent = "Scripted"</script></body></html>`))
	}))
	defer srv.Close()

	f := NewBrowserFetcher(200 * time.Millisecond)
	defer f.Close()

	// The second fetch starts after the first load's timeout would have
	// expired.
	for i := range 2 {
		got, err := f.Fetch(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
		if !strings.Contains(string(got), "Scripted") {
			t.Errorf("fetch %d: script output missing:\n%s", i, got)
		}
		time.Sleep(300 * time.Millisecond)
	}
}
