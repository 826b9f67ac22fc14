package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	authmw "github.com/mind-engage/mindengage-norms/internal/auth/middleware"
	"github.com/mind-engage/mindengage-norms/internal/dossier"
	"github.com/mind-engage/mindengage-norms/internal/scoring"
	"github.com/mind-engage/mindengage-norms/internal/subtests"
)

type dossierRequest struct {
	Code     string          `json:"code" validate:"required,max=64"`
	DOB      string          `json:"dob" validate:"normdate"`
	TestDate string          `json:"test_date" validate:"normdate"`
	Scores   subtests.Scores `json:"scores"`
}

func decodeDossier(w http.ResponseWriter, r *http.Request) (dossierRequest, bool) {
	var req dossierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return req, false
	}
	req.Code = strings.TrimSpace(req.Code)
	if err := validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return req, false
	}
	if msg := scoresError(req.Scores); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return req, false
	}
	return req, true
}

// POST /dossiers
func CreateDossierHandler(store dossier.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeDossier(w, r)
		if !ok {
			return
		}
		d, err := store.Put(r.Context(), dossier.Dossier{
			Code:      req.Code,
			DOB:       req.DOB,
			TestDate:  req.TestDate,
			Scores:    req.Scores,
			CreatedBy: authmw.SubjectFromContext(r.Context()),
		})
		if err != nil {
			storeError(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, d)
	}
}

// PUT /dossiers/{id}
func UpdateDossierHandler(store dossier.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		prev, err := store.Get(r.Context(), id)
		if err != nil {
			storeError(w, err)
			return
		}
		req, ok := decodeDossier(w, r)
		if !ok {
			return
		}
		prev.Code, prev.DOB, prev.TestDate, prev.Scores = req.Code, req.DOB, req.TestDate, req.Scores
		d, err := store.Put(r.Context(), prev)
		if err != nil {
			storeError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, d)
	}
}

// GET /dossiers?q=&limit=&offset=
func ListDossiersHandler(store dossier.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.List(r.Context(), dossier.ListOpts{
			Q:      strings.TrimSpace(r.URL.Query().Get("q")),
			Limit:  parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset: parseIntDefault(r.URL.Query().Get("offset"), 0),
		})
		if err != nil {
			storeError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, list)
	}
}

// GET /dossiers/{id}
func GetDossierHandler(store dossier.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := store.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			storeError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, d)
	}
}

// DELETE /dossiers/{id}
func DeleteDossierHandler(store dossier.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			storeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// GET /dossiers/{id}/results?overall=core7|all10|both
//
// Results are recomputed from the stored scores on every call.
func DossierResultsHandler(store dossier.Store, svc *scoring.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conv, both, err := scoring.ParseOverall(r.URL.Query().Get("overall"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		d, err := store.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			storeError(w, err)
			return
		}
		rep := svc.Score(scoring.Request{
			DOB:        d.DOB,
			TestDate:   d.TestDate,
			Scores:     d.Scores,
			Convention: conv,
			Both:       both,
		})
		respondJSON(w, http.StatusOK, map[string]any{
			"dossier": d,
			"report":  rep,
		})
	}
}
