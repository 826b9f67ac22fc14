package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mind-engage/mindengage-norms/internal/norms"
	"github.com/mind-engage/mindengage-norms/internal/scoring"
	"github.com/mind-engage/mindengage-norms/internal/subtests"
)

// GET /norms/bands
func BandsHandler(store *norms.TableStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, store.Bands())
	}
}

// GET /norms/bands/eligible?age_months=
//
// A missing or unparseable age selects the all-ages bands.
func EligibleHandler(store *norms.TableStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a := norms.ParseAge(r.URL.Query().Get("age_months"))
		respondJSON(w, http.StatusOK, map[string]any{
			"age_months": a.String(),
			"bands":      store.Eligible(a),
		})
	}
}

// GET /norms/subtests
func SubtestsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, subtests.Catalogue)
	}
}

// ScoreRequest is the body of POST /convert. age_months wins over the
// two dates when both are sent. It may be a number or a string; anything
// that is not a whole month count reads as unknown age.
type ScoreRequest struct {
	AgeMonths json.RawMessage `json:"age_months"`
	DOB       string          `json:"dob" validate:"required_with=TestDate,normdate"`
	TestDate  string          `json:"test_date" validate:"required_with=DOB,normdate"`
	Scores    subtests.Scores `json:"scores"`
	Overall   string          `json:"overall" validate:"omitempty,oneof=core7 all10 both"`
}

func scoresError(s subtests.Scores) string {
	errs := s.Validate()
	if len(errs) == 0 {
		return ""
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// ageText renders age_months for norms.ParseAge. Absent and null give "".
func ageText(raw json.RawMessage) string {
	raw = json.RawMessage(strings.TrimSpace(string(raw)))
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	return string(raw)
}

// POST /convert
func ConvertHandler(svc *scoring.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ScoreRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if msg := scoresError(req.Scores); msg != "" {
			http.Error(w, msg, http.StatusBadRequest)
			return
		}
		conv, both, _ := scoring.ParseOverall(req.Overall)

		rep := svc.Score(scoring.Request{
			AgeText:    ageText(req.AgeMonths),
			DOB:        req.DOB,
			TestDate:   req.TestDate,
			Scores:     req.Scores,
			Convention: conv,
			Both:       both,
		})
		respondJSON(w, http.StatusOK, rep)
	}
}
