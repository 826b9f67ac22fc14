package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-norms/internal/dossier"
	syncx "github.com/mind-engage/mindengage-norms/internal/sync"
)

// -----------------------------
// Admin: Compliance & Audit
// -----------------------------

// HandleDossierExport returns one dossier as a downloadable JSON file.
func HandleDossierExport(store dossier.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := store.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			storeError(w, err)
			return
		}
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "dossier_"+d.Code+".json"))
		respondJSON(w, http.StatusOK, d)
	}
}

// HandleAuditLog lists event_log entries after ?since=seq, oldest first.
func HandleAuditLog(events *syncx.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var since int64
		if s := r.URL.Query().Get("since"); s != "" {
			v, err := strconv.ParseInt(s, 10, 64)
			if err != nil || v < 0 {
				http.Error(w, "bad since", http.StatusBadRequest)
				return
			}
			since = v
		}
		list, err := events.Since(r.Context(), since, parseIntDefault(r.URL.Query().Get("limit"), 100))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		out := make([]map[string]any, 0, len(list))
		for _, e := range list {
			out = append(out, map[string]any{
				"seq":        e.Seq,
				"site_id":    e.SiteID,
				"typ":        e.Type,
				"key":        e.Key,
				"data":       e.DataJSON,
				"created_at": time.Unix(e.CreatedAt, 0).UTC(),
			})
		}
		respondJSON(w, http.StatusOK, out)
	}
}
