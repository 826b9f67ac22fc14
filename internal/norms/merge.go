package norms

import "strings"

// MergedTable is the effective lookup table for one set of eligible bands.
// Values come from the later band (ascending MinMonths) on key collision.
type MergedTable struct {
	bands     []string
	rows      map[IndexKey]ConversionTable
	intervals map[IndexKey]IntervalTable
}

// Bands lists the merged band ids in merge order.
func (m MergedTable) Bands() []string {
	out := make([]string, len(m.bands))
	copy(out, m.bands)
	return out
}

// Merge combines the tables of the given bands. The order of ids does not
// matter; store order does. Unknown ids are ignored.
func (s *TableStore) Merge(ids []string) MergedTable {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	order := make([]string, 0, len(ids))
	for _, b := range s.bands {
		if want[b.ID] {
			order = append(order, b.ID)
		}
	}

	var cacheKey string
	if s.cache != nil {
		cacheKey = strings.Join(order, "\x00")
		if v, ok := s.cache.Load(cacheKey); ok {
			return v.(MergedTable)
		}
	}

	m := MergedTable{
		bands:     order,
		rows:      make(map[IndexKey]ConversionTable, len(AllKeys)),
		intervals: make(map[IndexKey]IntervalTable, len(AllKeys)),
	}
	for _, k := range AllKeys {
		m.rows[k] = ConversionTable{}
		m.intervals[k] = IntervalTable{}
	}
	for _, id := range order {
		for _, k := range AllKeys {
			for sum, row := range s.tables[id][k] {
				m.rows[k][sum] = row
			}
			for comp, iv := range s.intervals[id][k] {
				m.intervals[k][comp] = iv
			}
		}
	}

	if s.cache != nil {
		v, _ := s.cache.LoadOrStore(cacheKey, m)
		return v.(MergedTable)
	}
	return m
}
