package middleware

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// SPAHandler serves a prebuilt single-page-app bundle. Paths that match
// a real file are served directly; everything else falls back to
// index.html so client-side routes survive a full page reload.
func SPAHandler(distDir string, logger *zap.Logger) http.Handler {
	fileServer := http.FileServer(http.Dir(distDir))
	index := filepath.Join(distDir, "index.html")

	if _, err := os.Stat(index); err != nil {
		logger.Warn("frontend bundle not found, static serving disabled",
			zap.String("dist_dir", distDir))
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		})
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/")
		if path != "" {
			full := filepath.Join(distDir, filepath.Clean(path))
			if info, err := os.Stat(full); err == nil && !info.IsDir() {
				fileServer.ServeHTTP(w, r)
				return
			}
		}
		http.ServeFile(w, r, index)
	})
}
