package norms

import "encoding/json"

// IndexKey names a composite table: five sub-indices plus the overall composite.
type IndexKey string

const (
	ICV IndexKey = "ICV" // verbal comprehension
	IVS IndexKey = "IVS" // visual spatial
	IRF IndexKey = "IRF" // fluid reasoning
	IMT IndexKey = "IMT" // working memory
	IVT IndexKey = "IVT" // processing speed
	QIT IndexKey = "QIT" // overall composite
)

// IndexKeys are the five sub-indices in presentation order.
var IndexKeys = []IndexKey{ICV, IVS, IRF, IMT, IVT}

// AllKeys adds the overall composite to IndexKeys.
var AllKeys = []IndexKey{ICV, IVS, IRF, IMT, IVT, QIT}

func (k IndexKey) Valid() bool {
	for _, v := range AllKeys {
		if v == k {
			return true
		}
	}
	return false
}

// Composite score floor and ceiling published for the instrument.
const (
	CompositeFloor   = 40
	CompositeCeiling = 160
	fallbackHalfSpan = 8
)

type Band struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	MinMonths int    `json:"min_months"`
	MaxMonths int    `json:"max_months"`
}

// Covers reports whether months falls inside the inclusive range.
func (b Band) Covers(months int) bool { return months >= b.MinMonths && months <= b.MaxMonths }

// AllAges reports whether the band spans the whole supported domain [0,240].
func (b Band) AllAges() bool { return b.MinMonths <= 0 && b.MaxMonths >= DomainMaxMonths }

// DomainMaxMonths is the upper end of the supported age domain.
const DomainMaxMonths = 240

type IntervalSource string

const (
	SourceTable    IntervalSource = "table"
	SourceFallback IntervalSource = "fallback"
)

type Interval struct {
	Lo     float64        `json:"lo"`
	Hi     float64        `json:"hi"`
	Source IntervalSource `json:"source"`
}

// Row is the canonical shape of one conversion-table entry, whatever alias
// names the source file used.
type Row struct {
	Composite  int       `json:"composite"`
	Percentile *string   `json:"percentile,omitempty"`
	Interval   *Interval `json:"interval,omitempty"`   // IC90 carried on the row
	Interval95 *Interval `json:"interval95,omitempty"` // IC95 carried on the row
}

// ConversionTable maps a raw sum to its row. Keys are sparse.
type ConversionTable map[int]Row

// IntervalTable maps a composite score to its published interval.
type IntervalTable map[int]Interval

// Definition is one band's external table record, kept as raw JSON until
// Load normalizes it. Source names where it came from (file, row id) for
// warnings only.
type Definition struct {
	Source string
	Raw    json.RawMessage
}
