// internal/server/server.go
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"folio/internal/config"
)

const (
	debounceDuration = 500 * time.Millisecond
	shutdownTimeout  = 5 * time.Second
)

// BuildFunc rebuilds the whole site.
type BuildFunc func(ctx context.Context) error

// Server serves a site root, rebuilds it when sources change and tells
// connected browsers to reload.
type Server struct {
	site       config.SiteConfig
	configFile string
	build      BuildFunc
	hub        *Hub
	watched    map[string]bool
}

// New returns a server for site. configFile may be empty when the site runs
// on defaults.
func New(site config.SiteConfig, configFile string, build BuildFunc) *Server {
	return &Server{
		site:       site,
		configFile: configFile,
		build:      build,
		hub:        newHub(),
		watched:    make(map[string]bool),
	}
}

// Run builds the site once, then serves it on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	if err := s.build(ctx); err != nil {
		return fmt.Errorf("initial build failed: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("could not create file watcher: %w", err)
	}
	defer watcher.Close()
	if err := s.watchSources(watcher); err != nil {
		return err
	}

	watchCtx, stopWatching := context.WithCancel(ctx)
	defer stopWatching()
	go s.watchForChanges(watchCtx, watcher)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	host := addr
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}
	fmt.Printf("Serving site on http://%s\n", host)
	fmt.Println("Press Ctrl+C to stop")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down...")
	s.hub.closeAll()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Handler serves the site root with live reload injected into HTML pages.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWs(s.hub, w, r)
	})
	mux.Handle("/", liveReloadWrapper(http.FileServer(http.Dir(s.site.Root))))
	return mux
}

// watchSources registers the config file, templates, plot metadata and every
// directory under the articles root.
func (s *Server) watchSources(watcher *fsnotify.Watcher) error {
	// Files are watched through their parent directory so editors that save
	// by rename are still seen.
	files := []string{
		s.site.Path(s.site.ArticleTemplate),
		s.site.Path(s.site.IndexTemplate),
		s.site.Path(s.site.PlotsMetadata),
	}
	if s.configFile != "" {
		files = append(files, s.configFile)
	}
	for _, f := range files {
		if _, err := os.Stat(filepath.Dir(f)); err == nil {
			s.addWatch(watcher, filepath.Dir(f))
		}
	}

	root := s.site.Path(s.site.ArticlesDir)
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			s.addWatch(watcher, path)
		}
		return nil
	})
}

func (s *Server) addWatch(watcher *fsnotify.Watcher, dir string) {
	dir = filepath.Clean(dir)
	if s.watched[dir] {
		return
	}
	if err := watcher.Add(dir); err != nil {
		log.Printf("Error adding watch on %s: %v", dir, err)
		return
	}
	fmt.Printf("Watching directory: %s\n", dir)
	s.watched[dir] = true
}

// watchForChanges rebuilds once events have been quiet for debounceDuration.
func (s *Server) watchForChanges(ctx context.Context, watcher *fsnotify.Watcher) {
	timer := time.NewTimer(debounceDuration)
	timer.Stop()
	var last string

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !s.relevant(event) {
				continue
			}
			// New article directories need their own watch.
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					s.addWatch(watcher, event.Name)
				}
			}
			last = event.Name
			timer.Reset(debounceDuration)
		case <-timer.C:
			log.Printf("Change detected in %s, rebuilding...", last)
			if err := s.build(ctx); err != nil {
				log.Printf("Error rebuilding site: %v", err)
				continue
			}
			log.Printf("Site rebuilt successfully. Reloading %d browser(s)...", s.hub.count())
			s.hub.broadcast([]byte(reloadMessage))
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Watcher error: %v", err)
		}
	}
}

func (s *Server) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	return !s.isGenerated(event.Name)
}

// isGenerated reports whether path is written by the build itself, so the
// watcher does not rebuild in a loop. Editor swap files are ignored too.
func (s *Server) isGenerated(path string) bool {
	path = filepath.Clean(path)
	base := filepath.Base(path)
	switch {
	case base == ".nojekyll",
		strings.HasSuffix(base, "~"),
		strings.HasSuffix(base, ".swp"),
		strings.HasSuffix(base, ".swx"),
		strings.HasPrefix(base, ".#"):
		return true
	case path == filepath.Clean(s.site.Path(s.site.IndexOutput)):
		return true
	}

	rel, err := filepath.Rel(s.site.Path(s.site.ArticlesDir), path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	// Generated files sit directly inside an article directory.
	if filepath.Dir(rel) == "." || strings.ContainsRune(filepath.Dir(rel), filepath.Separator) {
		return false
	}
	return base == "index.html" || base == s.site.OG.Filename
}

func liveReloadWrapper(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")

		isHTML := strings.HasSuffix(r.URL.Path, ".html") || strings.HasSuffix(r.URL.Path, "/")
		if !isHTML {
			next.ServeHTTP(w, r)
			return
		}

		iw := newInterceptingWriter()
		next.ServeHTTP(iw, r)
		for key, values := range iw.Header() {
			for _, value := range values {
				w.Header().Add(key, value)
			}
		}

		body := iw.body.Bytes()
		if iw.statusCode != http.StatusOK {
			w.WriteHeader(iw.statusCode)
			_, _ = w.Write(body)
			return
		}

		injected := bytes.Replace(body, []byte("</body>"), []byte(liveReloadScript+"</body>"), 1)
		w.Header().Set("Content-Length", fmt.Sprint(len(injected)))
		w.WriteHeader(iw.statusCode)
		_, _ = w.Write(injected)
	})
}

// interceptingWriter buffers a response so it can be rewritten.
type interceptingWriter struct {
	body       *bytes.Buffer
	statusCode int
	header     http.Header
}

func newInterceptingWriter() *interceptingWriter {
	return &interceptingWriter{
		body:       new(bytes.Buffer),
		header:     make(http.Header),
		statusCode: http.StatusOK,
	}
}

func (iw *interceptingWriter) Header() http.Header {
	return iw.header
}

func (iw *interceptingWriter) Write(b []byte) (int, error) {
	return iw.body.Write(b)
}

func (iw *interceptingWriter) WriteHeader(statusCode int) {
	iw.statusCode = statusCode
}

const liveReloadScript = `
<script>
  (function() {
    let socket = new WebSocket("ws://" + window.location.host + "/ws");
    socket.onmessage = function(event) {
      if (event.data === "reload") {
        window.location.reload();
      }
    };
    socket.onerror = function() {
      console.error("Live reload connection error. Please restart 'folio serve'.");
    };
  })();
</script>
`
