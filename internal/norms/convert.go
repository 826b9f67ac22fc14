package norms

// OverallConvention names which overall raw sum keys the QIT table.
type OverallConvention string

const (
	// OverallCore7 sums the seven core subtests (SIM, VOC, CUB, MAT, BAL, MCH, COD).
	OverallCore7 OverallConvention = "core7"
	// OverallAll10 sums all ten subtests.
	OverallAll10 OverallConvention = "all10"
)

func (c OverallConvention) Valid() bool { return c == OverallCore7 || c == OverallAll10 }

// Input is one conversion request. A nil sum means the index was not
// administered.
type Input struct {
	SumsByIndex map[IndexKey]*int
	OverallSum  *int
	Convention  OverallConvention
}

type Meta struct {
	Bands             []string               `json:"bands"`
	Convention        OverallConvention      `json:"overall_convention,omitempty"`
	Percentiles       map[IndexKey]*string   `json:"percentiles"`
	Intervals         map[IndexKey]*Interval `json:"intervals"`
	Intervals95       map[IndexKey]*Interval `json:"intervals95"`
	OverallPercentile *string                `json:"overall_percentile"`
	OverallInterval   *Interval              `json:"overall_interval"`
	OverallInterval95 *Interval              `json:"overall_interval95"`
}

// Result holds every resolved value; nil means insufficient normative data.
type Result struct {
	Composites map[IndexKey]*int `json:"composites"`
	Overall    *int              `json:"overall"`
	Meta       Meta              `json:"meta"`
}

// Lookup finds the row for an exact raw sum. The returned row is a copy;
// changing it does not affect the store.
func (m MergedTable) Lookup(key IndexKey, sum *int) (Row, bool) {
	if sum == nil {
		return Row{}, false
	}
	row, ok := m.rows[key][*sum]
	if !ok {
		return Row{}, false
	}
	return row.clone(), true
}

// Composite resolves a raw sum to a composite and percentile. A sum that
// is absent from the table yields nil for both.
func (m MergedTable) Composite(key IndexKey, sum *int) (*int, *string) {
	row, ok := m.Lookup(key, sum)
	if !ok {
		return nil, nil
	}
	c := row.Composite
	return &c, row.Percentile
}

type resolved struct {
	composite  *int
	percentile *string
	interval   *Interval
	interval95 *Interval
}

func (m MergedTable) resolve(key IndexKey, sum *int) resolved {
	row, ok := m.Lookup(key, sum)
	if !ok {
		return resolved{}
	}
	c := row.Composite
	return resolved{
		composite:  &c,
		percentile: row.Percentile,
		interval:   m.Interval(key, &c),
		interval95: row.Interval95,
	}
}

// Convert resolves every index and the overall composite for age. It never
// fails: unresolved values are nil.
func (s *TableStore) Convert(age Age, in Input) Result {
	return s.Merge(s.Eligible(age)).Convert(in)
}

// Convert runs the lookups of in against an already merged table.
func (m MergedTable) Convert(in Input) Result {
	out := Result{
		Composites: make(map[IndexKey]*int, len(IndexKeys)),
		Meta: Meta{
			Bands:       m.Bands(),
			Convention:  in.Convention,
			Percentiles: make(map[IndexKey]*string, len(IndexKeys)),
			Intervals:   make(map[IndexKey]*Interval, len(IndexKeys)),
			Intervals95: make(map[IndexKey]*Interval, len(IndexKeys)),
		},
	}
	for _, k := range IndexKeys {
		r := m.resolve(k, in.SumsByIndex[k])
		out.Composites[k] = r.composite
		out.Meta.Percentiles[k] = r.percentile
		out.Meta.Intervals[k] = r.interval
		out.Meta.Intervals95[k] = r.interval95
	}

	q := m.resolve(QIT, in.OverallSum)
	out.Overall = q.composite
	out.Meta.OverallPercentile = q.percentile
	out.Meta.OverallInterval = q.interval
	out.Meta.OverallInterval95 = q.interval95
	return out
}

func (r Row) clone() Row {
	r.Percentile = copyString(r.Percentile)
	r.Interval = copyInterval(r.Interval)
	r.Interval95 = copyInterval(r.Interval95)
	return r
}

func copyInterval(p *Interval) *Interval {
	if p == nil {
		return nil
	}
	iv := *p
	return &iv
}

func copyString(p *string) *string {
	if p == nil {
		return nil
	}
	s := *p
	return &s
}
