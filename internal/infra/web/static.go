package web

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// spaHandler serves the built client bundle and falls back to index.html for
// client-side routes. /api and /sites are never rewritten.
type spaHandler struct {
	dir   string
	files http.Handler
}

// NewSPAHandler returns nil when dir has no index.html, leaving static serving to the platform.
func NewSPAHandler(dir string) http.Handler {
	if dir == "" {
		return nil
	}
	if st, err := os.Stat(filepath.Join(dir, "index.html")); err != nil || st.IsDir() {
		return nil
	}
	return &spaHandler{dir: dir, files: http.FileServer(http.Dir(dir))}
}

func (h *spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.NotFound(w, r)
		return
	}
	p := path.Clean("/" + r.URL.Path)
	if reservedPath(p) {
		http.NotFound(w, r)
		return
	}
	if st, err := os.Stat(filepath.Join(h.dir, filepath.FromSlash(p))); err == nil && !st.IsDir() {
		h.files.ServeHTTP(w, r)
		return
	}
	http.ServeFile(w, r, filepath.Join(h.dir, "index.html"))
}

func reservedPath(p string) bool {
	for _, prefix := range []string{"/api", "/sites"} {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return true
		}
	}
	return false
}
