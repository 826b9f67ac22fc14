package http

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-norms/internal/storage"
)

// MountTables serves the raw table files of a directory source, manifest
// included, read-only.
func MountTables(r chi.Router, bs storage.BlobStore) {
	// GET /norms/tables/*   -> the file at whatever follows /norms/tables/
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
		if key == "" {
			key = "manifest.json"
		}
		rc, err := bs.Get(key)
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		defer rc.Close()
		ct := "application/json"
		if strings.HasSuffix(key, ".yaml") || strings.HasSuffix(key, ".yml") {
			ct = "application/yaml"
		}
		w.Header().Set("Content-Type", ct)
		_, _ = io.Copy(w, rc)
	})
}
