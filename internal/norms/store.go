package norms

import (
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/mind-engage/mindengage-norms/internal/logging"
)

// LoadWarning describes a definition (or part of one) that Load skipped.
type LoadWarning struct {
	Source string
	BandID string
	Reason string
}

func (w LoadWarning) String() string {
	if w.BandID != "" {
		return w.Source + " [" + w.BandID + "]: " + w.Reason
	}
	return w.Source + ": " + w.Reason
}

type LoadOption func(*loadConfig)

type loadConfig struct {
	warn       func(LoadWarning)
	mergeCache bool
}

// WithWarnFunc replaces the default logrus warning sink.
func WithWarnFunc(fn func(LoadWarning)) LoadOption {
	return func(c *loadConfig) { c.warn = fn }
}

// WithMergeCache memoizes merged tables per eligible band set.
func WithMergeCache() LoadOption { return func(c *loadConfig) { c.mergeCache = true } }

func logWarning(w LoadWarning) {
	logging.Log.WithFields(logrus.Fields{
		"source": w.Source,
		"band":   w.BandID,
	}).Warn("norms: table skipped: " + w.Reason)
}

// TableStore holds every loaded band and its tables. It is immutable once
// Load returns and safe for concurrent use.
type TableStore struct {
	bands     []Band // ascending MinMonths
	tables    map[string]map[IndexKey]ConversionTable
	intervals map[string]map[IndexKey]IntervalTable

	cache *sync.Map // band-set key -> MergedTable; nil when disabled
}

// Load builds a store from definitions in registry order. Bad definitions
// are skipped and reported, never fatal.
func Load(defs []Definition, opts ...LoadOption) (*TableStore, []LoadWarning) {
	cfg := loadConfig{warn: logWarning}
	for _, o := range opts {
		o(&cfg)
	}

	s := &TableStore{
		tables:    map[string]map[IndexKey]ConversionTable{},
		intervals: map[string]map[IndexKey]IntervalTable{},
	}
	if cfg.mergeCache {
		s.cache = &sync.Map{}
	}

	var warnings []LoadWarning
	warn := func(w LoadWarning) {
		warnings = append(warnings, w)
		if cfg.warn != nil {
			cfg.warn(w)
		}
	}

	for i, d := range defs {
		src := d.Source
		if src == "" {
			src = "definition #" + strconv.Itoa(i)
		}
		if !gjson.ValidBytes(d.Raw) {
			warn(LoadWarning{Source: src, Reason: "invalid json"})
			continue
		}
		doc := gjson.ParseBytes(d.Raw)
		if !doc.IsObject() {
			warn(LoadWarning{Source: src, Reason: "definition is not an object"})
			continue
		}

		id := strings.TrimSpace(doc.Get("id").String())
		if id == "" {
			warn(LoadWarning{Source: src, Reason: "missing id"})
			continue
		}
		if _, dup := s.tables[id]; dup {
			warn(LoadWarning{Source: src, BandID: id, Reason: "duplicate id"})
			continue
		}
		minM, err := parseMonths(doc.Get("minMonths"))
		if err != nil {
			warn(LoadWarning{Source: src, BandID: id, Reason: "bad minMonths"})
			continue
		}
		maxM, err := parseMonths(doc.Get("maxMonths"))
		if err != nil {
			warn(LoadWarning{Source: src, BandID: id, Reason: "bad maxMonths"})
			continue
		}
		b := Band{
			ID:        id,
			Label:     strings.TrimSpace(doc.Get("label").String()),
			MinMonths: minM,
			MaxMonths: maxM,
		}
		if b.Label == "" {
			b.Label = id
		}
		if b.MinMonths > b.MaxMonths {
			warn(LoadWarning{Source: src, BandID: id, Reason: "minMonths greater than maxMonths"})
			continue
		}

		conv := make(map[IndexKey]ConversionTable, len(AllKeys))
		ivs := make(map[IndexKey]IntervalTable, len(AllKeys))
		for _, k := range AllKeys {
			conv[k] = readConversion(doc.Get(string(k)), src, id, k, warn)
			ivs[k] = rowIntervals(conv[k])
		}
		ic := firstOf(doc, ic90Aliases...)
		if ic.IsObject() {
			ic.ForEach(func(key, val gjson.Result) bool {
				k := IndexKey(key.String())
				if !k.Valid() {
					warn(LoadWarning{Source: src, BandID: id, Reason: "unknown interval index " + key.String()})
					return true
				}
				for comp, iv := range readIntervals(val, src, id, k, warn) {
					ivs[k][comp] = iv
				}
				return true
			})
		}

		s.bands = append(s.bands, b)
		s.tables[id] = conv
		s.intervals[id] = ivs
	}

	sort.SliceStable(s.bands, func(i, j int) bool { return s.bands[i].MinMonths < s.bands[j].MinMonths })
	return s, warnings
}

func readConversion(v gjson.Result, src, id string, k IndexKey, warn func(LoadWarning)) ConversionTable {
	t := ConversionTable{}
	if !v.IsObject() {
		return t
	}
	v.ForEach(func(key, val gjson.Result) bool {
		sum, err := strconv.Atoi(strings.TrimSpace(key.String()))
		if err != nil || sum < 0 {
			warn(LoadWarning{Source: src, BandID: id, Reason: string(k) + ": bad raw sum " + strconv.Quote(key.String())})
			return true
		}
		row, err := normalizeRow(val)
		if err != nil {
			warn(LoadWarning{Source: src, BandID: id, Reason: string(k) + "[" + key.String() + "]: " + err.Error()})
			return true
		}
		t[sum] = row
		return true
	})
	return t
}

// rowIntervals collects the IC90 values carried on rows, keyed by
// composite. Rows are visited in ascending raw-sum order so the highest sum
// wins when rows sharing a composite disagree. An explicit IC90 block in
// the same band overrides them.
func rowIntervals(t ConversionTable) IntervalTable {
	sums := make([]int, 0, len(t))
	for sum := range t {
		sums = append(sums, sum)
	}
	sort.Ints(sums)
	out := IntervalTable{}
	for _, sum := range sums {
		if row := t[sum]; row.Interval != nil {
			out[row.Composite] = *row.Interval
		}
	}
	return out
}

func readIntervals(v gjson.Result, src, id string, k IndexKey, warn func(LoadWarning)) IntervalTable {
	t := IntervalTable{}
	if !v.IsObject() {
		return t
	}
	v.ForEach(func(key, val gjson.Result) bool {
		comp, err := strconv.Atoi(strings.TrimSpace(key.String()))
		if err != nil {
			warn(LoadWarning{Source: src, BandID: id, Reason: "IC90 " + string(k) + ": bad composite " + strconv.Quote(key.String())})
			return true
		}
		iv, ok := parseInterval(val)
		if !ok {
			warn(LoadWarning{Source: src, BandID: id, Reason: "IC90 " + string(k) + "[" + key.String() + "]: bad interval"})
			return true
		}
		t[comp] = iv
		return true
	})
	return t
}

// Bands returns the loaded bands in ascending MinMonths order.
func (s *TableStore) Bands() []Band {
	out := make([]Band, len(s.bands))
	copy(out, s.bands)
	return out
}

// Band looks up one band by id.
func (s *TableStore) Band(id string) (Band, bool) {
	for _, b := range s.bands {
		if b.ID == id {
			return b, true
		}
	}
	return Band{}, false
}
