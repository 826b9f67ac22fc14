package subtests

import (
	"fmt"
	"sort"

	"github.com/mind-engage/mindengage-norms/internal/norms"
)

// Standard scores run from 1 to 19.
const (
	MinScore = 1
	MaxScore = 19
)

// HeterogeneityRange is the score spread from which a profile is flagged.
const HeterogeneityRange = 7

type Subtest struct {
	Key   string         `json:"key"`
	Label string         `json:"label"`
	Index norms.IndexKey `json:"index"`
	Core  bool           `json:"core"` // part of the seven-subtest overall sum
}

// Catalogue lists the ten subtests in administration order.
var Catalogue = []Subtest{
	{Key: "SIM", Label: "Similarities", Index: norms.ICV, Core: true},
	{Key: "VOC", Label: "Vocabulary", Index: norms.ICV, Core: true},
	{Key: "CUB", Label: "Block Design", Index: norms.IVS, Core: true},
	{Key: "PUZ", Label: "Visual Puzzles", Index: norms.IVS},
	{Key: "MAT", Label: "Matrix Reasoning", Index: norms.IRF, Core: true},
	{Key: "BAL", Label: "Figure Weights", Index: norms.IRF, Core: true},
	{Key: "MCH", Label: "Digit Span", Index: norms.IMT, Core: true},
	{Key: "MIM", Label: "Picture Span", Index: norms.IMT},
	{Key: "COD", Label: "Coding", Index: norms.IVT, Core: true},
	{Key: "SYM", Label: "Symbol Search", Index: norms.IVT},
}

// Lookup finds a subtest by key.
func Lookup(key string) (Subtest, bool) {
	for _, s := range Catalogue {
		if s.Key == key {
			return s, true
		}
	}
	return Subtest{}, false
}

// Scores maps a subtest key to its standard score.
type Scores map[string]int

func validScore(v int) bool { return v >= MinScore && v <= MaxScore }

// Validate reports unknown keys and out-of-range scores, sorted by key.
func (s Scores) Validate() []error {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []error
	for _, k := range keys {
		if _, ok := Lookup(k); !ok {
			errs = append(errs, fmt.Errorf("unknown subtest %q", k))
			continue
		}
		if v := s[k]; !validScore(v) {
			errs = append(errs, fmt.Errorf("%s: score %d outside %d..%d", k, v, MinScore, MaxScore))
		}
	}
	return errs
}

// Sums is derived from one Scores snapshot. A nil sum means no valid
// subtest contributed to it.
type Sums struct {
	ByIndex   map[norms.IndexKey]*int `json:"by_index"`
	Counts    map[norms.IndexKey]int  `json:"counts"`
	TotalAll  *int                    `json:"total_all"`
	CountAll  int                     `json:"count_all"`
	TotalCore *int                    `json:"total_core"`
	CountCore int                     `json:"count_core"`
}

// Derive sums valid scores per index and overall. Invalid or unknown
// entries are ignored.
func Derive(s Scores) Sums {
	out := Sums{
		ByIndex: make(map[norms.IndexKey]*int, len(norms.IndexKeys)),
		Counts:  make(map[norms.IndexKey]int, len(norms.IndexKeys)),
	}
	var all, core int
	for _, st := range Catalogue {
		v, ok := s[st.Key]
		if !ok || !validScore(v) {
			continue
		}
		if out.ByIndex[st.Index] == nil {
			out.ByIndex[st.Index] = new(int)
		}
		*out.ByIndex[st.Index] += v
		out.Counts[st.Index]++

		all += v
		out.CountAll++
		if st.Core {
			core += v
			out.CountCore++
		}
	}
	if out.CountAll > 0 {
		out.TotalAll = &all
	}
	if out.CountCore > 0 {
		out.TotalCore = &core
	}
	return out
}

// Overall returns the overall sum for a convention.
func (s Sums) Overall(c norms.OverallConvention) *int {
	if c == norms.OverallAll10 {
		return s.TotalAll
	}
	return s.TotalCore
}

// Heterogeneity reports whether valid scores spread across at least
// HeterogeneityRange points, along with the spread itself.
func Heterogeneity(s Scores) (bool, int) {
	lo, hi, n := 0, 0, 0
	for _, st := range Catalogue {
		v, ok := s[st.Key]
		if !ok || !validScore(v) {
			continue
		}
		if n == 0 || v < lo {
			lo = v
		}
		if n == 0 || v > hi {
			hi = v
		}
		n++
	}
	if n < 2 {
		return false, 0
	}
	return hi-lo >= HeterogeneityRange, hi - lo
}
