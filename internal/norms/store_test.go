package norms_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-norms/internal/norms"
)

func TestLoad_SkipsBadDefinitions(t *testing.T) {
	var seen []norms.LoadWarning
	s, warnings := norms.Load([]norms.Definition{
		def(t, "noid.json", map[string]any{"label": "no id", "ICV": map[string]any{"20": 95}}),
		def(t, "blank.json", map[string]any{"id": "   "}),
		{Source: "broken.json", Raw: []byte(`{"id": "x",`)},
		{Source: "array.json", Raw: []byte(`[1,2]`)},
		def(t, "inverted.json", map[string]any{"id": "inv", "minMonths": 100, "maxMonths": 90}),
		def(t, "wordy.json", map[string]any{"id": "8-9", "minMonths": "ninety-six", "maxMonths": 119, "ICV": map[string]any{"20": 97}}),
		def(t, "fraction.json", map[string]any{"id": "frac", "minMonths": 72.5, "maxMonths": 95}),
		def(t, "negative.json", map[string]any{"id": "neg", "minMonths": 0, "maxMonths": -1}),
		def(t, "ok.json", map[string]any{"id": "ok", "minMonths": 0, "maxMonths": 240}),
		def(t, "dup.json", map[string]any{"id": "ok", "minMonths": 10, "maxMonths": 20}),
	}, norms.WithWarnFunc(func(w norms.LoadWarning) { seen = append(seen, w) }))

	require.Len(t, warnings, 9)
	assert.Equal(t, warnings, seen)
	assert.Equal(t, "noid.json", warnings[0].Source)
	assert.Equal(t, "missing id", warnings[0].Reason)
	assert.Equal(t, norms.LoadWarning{Source: "wordy.json", BandID: "8-9", Reason: "bad minMonths"}, warnings[5])
	assert.Equal(t, "bad minMonths", warnings[6].Reason)
	assert.Equal(t, "bad maxMonths", warnings[7].Reason)
	assert.Equal(t, "duplicate id", warnings[8].Reason)
	assert.Empty(t, s.Eligible(norms.KnownAge(30)), "a band with unreadable bounds never matches")

	bands := s.Bands()
	require.Len(t, bands, 1)
	assert.Equal(t, norms.Band{ID: "ok", Label: "ok", MinMonths: 0, MaxMonths: 240}, bands[0])
}

func TestLoad_SortsByMinMonths(t *testing.T) {
	s := load(t,
		def(t, "c", map[string]any{"id": "c", "label": "Ten", "minMonths": 120, "maxMonths": 143}),
		def(t, "a", map[string]any{"id": "a", "minMonths": "72", "maxMonths": "95"}),
		def(t, "b", map[string]any{"id": "b", "minMonths": 96, "maxMonths": 119}),
		def(t, "z", map[string]any{"id": "z"}),
	)

	var ids []string
	for _, b := range s.Bands() {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []string{"z", "a", "b", "c"}, ids)

	b, ok := s.Band("a")
	require.True(t, ok)
	assert.Equal(t, 72, b.MinMonths, "string bounds are coerced")
	c, _ := s.Band("c")
	assert.Equal(t, "Ten", c.Label)
	z, _ := s.Band("z")
	assert.Equal(t, 0, z.MaxMonths)

	_, ok = s.Band("missing")
	assert.False(t, ok)
}

func TestLoad_PartialRowsStillLoadBand(t *testing.T) {
	var warnings []norms.LoadWarning
	s, _ := norms.Load([]norms.Definition{
		def(t, "rows.json", map[string]any{
			"id": "all", "minMonths": 0, "maxMonths": 240,
			"ICV": map[string]any{
				"20":  95,
				"21":  "98",
				"x":   100,
				"-1":  80,
				"22":  map[string]any{"pct": "50"},
				"23":  map[string]any{"Composite": 104, "percentile": 61},
				"24":  true,
				"25 ": 101.5,
			},
			"IC90": map[string]any{
				"ICV": map[string]any{"95": "90-101", "bad": "1-2", "98": "nope"},
				"XYZ": map[string]any{},
			},
		}),
	}, norms.WithWarnFunc(func(w norms.LoadWarning) { warnings = append(warnings, w) }))

	assert.Len(t, warnings, 8)
	m := s.Merge(s.Eligible(norms.UnknownAge()))
	for _, sum := range []int{-1, 22, 24, 25} {
		c, _ := m.Composite(norms.ICV, ip(sum))
		assert.Nil(t, c, "sum %d", sum)
	}

	c, _ := m.Composite(norms.ICV, ip(21))
	assert.Equal(t, 98, *c)
	c, p := m.Composite(norms.ICV, ip(23))
	assert.Equal(t, 104, *c)
	assert.Equal(t, "61", *p)

	iv := m.Interval(norms.ICV, ip(95))
	assert.Equal(t, &norms.Interval{Lo: 90, Hi: 101, Source: norms.SourceTable}, iv)
}

func TestParseAge(t *testing.T) {
	tests := []struct {
		in     string
		months int
		known  bool
	}{
		{"84", 84, true},
		{" 0 ", 0, true},
		{"", 0, false},
		{"unknown", 0, false},
		{"UNKNOWN", 0, false},
		{"-1", 0, false},
		{"8.5", 0, false},
	}
	for _, tt := range tests {
		m, ok := norms.ParseAge(tt.in).Months()
		assert.Equal(t, tt.known, ok, tt.in)
		assert.Equal(t, tt.months, m, tt.in)
	}
	assert.Equal(t, "unknown", norms.KnownAge(-5).String())
}
