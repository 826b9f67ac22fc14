package scoring

import (
	"errors"
	"strings"

	"github.com/mind-engage/mindengage-norms/internal/age"
	"github.com/mind-engage/mindengage-norms/internal/metrics"
	"github.com/mind-engage/mindengage-norms/internal/norms"
	"github.com/mind-engage/mindengage-norms/internal/subtests"
)

// Request is an immutable snapshot of one examinee's inputs. AgeMonths
// wins over AgeText, which wins over DOB/TestDate.
type Request struct {
	AgeMonths *int
	AgeText   string // a caller-supplied month count; unparseable reads as unknown
	DOB       string
	TestDate  string
	Scores    subtests.Scores

	Convention norms.OverallConvention // empty: service default
	Both       bool                    // also convert with the other convention
}

// Report is everything derived from a Request. Nothing in it is stored.
type Report struct {
	Age           *age.Age      `json:"age,omitempty"`
	AgeMonths     string        `json:"age_months"`
	Sums          subtests.Sums `json:"sums"`
	Heterogeneous bool          `json:"heterogeneous"`
	Spread        int           `json:"spread"`
	Result        norms.Result  `json:"result"`
	Alternate     *norms.Result `json:"alternate,omitempty"`
}

// OverallBoth asks for both conventions at once.
const OverallBoth = "both"

var ErrBadOverall = errors.New("overall must be core7, all10 or both")

// ParseOverall reads a user-supplied overall choice. Empty selects the
// service default.
func ParseOverall(s string) (conv norms.OverallConvention, both bool, err error) {
	switch s = strings.TrimSpace(s); s {
	case "":
		return "", false, nil
	case OverallBoth:
		return "", true, nil
	}
	conv = norms.OverallConvention(s)
	if !conv.Valid() {
		return "", false, ErrBadOverall
	}
	return conv, false, nil
}

type Option func(*Service)

// WithConvention sets the overall convention used when a request names none.
func WithConvention(c norms.OverallConvention) Option {
	return func(s *Service) {
		if c.Valid() {
			s.convention = c
		}
	}
}

type Service struct {
	store      *norms.TableStore
	convention norms.OverallConvention
}

func NewService(store *norms.TableStore, opts ...Option) *Service {
	s := &Service{store: store, convention: norms.OverallCore7}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) Store() *norms.TableStore { return s.store }

func (s *Service) Convention() norms.OverallConvention { return s.convention }

// ResolveAge picks the engine age for a request.
func ResolveAge(req Request) (norms.Age, *age.Age) {
	if req.AgeMonths != nil {
		return norms.KnownAge(*req.AgeMonths), nil
	}
	if strings.TrimSpace(req.AgeText) != "" {
		return norms.ParseAge(req.AgeText), nil
	}
	if req.DOB == "" && req.TestDate == "" {
		return norms.UnknownAge(), nil
	}
	a := age.Compute(req.DOB, req.TestDate)
	return a.TotalMonths(), &a
}

// Score derives sums, resolves age and converts. It is a pure function of
// req and the immutable table store.
func (s *Service) Score(req Request) Report {
	conv := req.Convention
	if !conv.Valid() {
		conv = s.convention
	}
	engineAge, exact := ResolveAge(req)
	sums := subtests.Derive(req.Scores)
	het, spread := subtests.Heterogeneity(req.Scores)

	merged := s.store.Merge(s.store.Eligible(engineAge))
	rep := Report{
		Age:           exact,
		AgeMonths:     engineAge.String(),
		Sums:          sums,
		Heterogeneous: het,
		Spread:        spread,
		Result:        convert(merged, sums, conv),
	}
	if req.Both {
		other := norms.OverallAll10
		if conv == norms.OverallAll10 {
			other = norms.OverallCore7
		}
		alt := convert(merged, sums, other)
		rep.Alternate = &alt
	}
	return rep
}

func convert(m norms.MergedTable, sums subtests.Sums, conv norms.OverallConvention) norms.Result {
	in := norms.Input{
		SumsByIndex: sums.ByIndex,
		OverallSum:  sums.Overall(conv),
		Convention:  conv,
	}
	res := m.Convert(in)
	record(in, res)
	return res
}

func record(in norms.Input, res norms.Result) {
	metrics.Conversions.WithLabelValues(string(in.Convention)).Inc()
	for _, k := range norms.IndexKeys {
		if in.SumsByIndex[k] != nil && res.Composites[k] == nil {
			metrics.Unresolved.WithLabelValues(string(k)).Inc()
		}
		if iv := res.Meta.Intervals[k]; iv != nil && iv.Source == norms.SourceFallback {
			metrics.FallbackIntervals.WithLabelValues(string(k)).Inc()
		}
	}
	if in.OverallSum != nil && res.Overall == nil {
		metrics.Unresolved.WithLabelValues(string(norms.QIT)).Inc()
	}
	if iv := res.Meta.OverallInterval; iv != nil && iv.Source == norms.SourceFallback {
		metrics.FallbackIntervals.WithLabelValues(string(norms.QIT)).Inc()
	}
}
