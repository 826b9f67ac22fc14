package registry_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-norms/internal/db"
	"github.com/mind-engage/mindengage-norms/internal/norms"
	"github.com/mind-engage/mindengage-norms/internal/norms/registry"
	"github.com/mind-engage/mindengage-norms/internal/storage"
)

func quiet() norms.LoadOption { return norms.WithWarnFunc(func(norms.LoadWarning) {}) }

func ip(n int) *int { return &n }

func TestEmbedded_LoadsCleanly(t *testing.T) {
	defs, err := registry.Embedded()
	require.NoError(t, err)
	require.Len(t, defs, 4)

	s, warnings := norms.Load(defs, quiet())
	assert.Empty(t, warnings)

	var ids []string
	for _, b := range s.Bands() {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []string{"all-ages", "6-7", "8-9", "10-16"}, ids)
	assert.Equal(t, []string{"all-ages"}, s.Eligible(norms.UnknownAge()))
	assert.Equal(t, []string{"all-ages", "8-9"}, s.Eligible(norms.KnownAge(100)))
}

func TestEmbedded_BandSpecificRowsWin(t *testing.T) {
	defs, err := registry.Embedded()
	require.NoError(t, err)
	s, _ := norms.Load(defs, quiet())

	in := norms.Input{
		SumsByIndex: map[norms.IndexKey]*int{norms.ICV: ip(20)},
		OverallSum:  ip(70),
	}

	res := s.Convert(norms.UnknownAge(), in)
	assert.Equal(t, 100, *res.Composites[norms.ICV])
	assert.Nil(t, res.Meta.Percentiles[norms.ICV], "all-ages table carries bare composites")
	assert.Equal(t, &norms.Interval{Lo: 94, Hi: 106, Source: norms.SourceTable}, res.Meta.Intervals[norms.ICV])

	res = s.Convert(norms.KnownAge(100), in)
	assert.Equal(t, 100, *res.Composites[norms.ICV])
	assert.Equal(t, "50", *res.Meta.Percentiles[norms.ICV])
	assert.Equal(t, &norms.Interval{Lo: 93, Hi: 107, Source: norms.SourceTable}, res.Meta.Intervals[norms.ICV])
	assert.Equal(t, 100, *res.Overall)
	assert.Equal(t, &norms.Interval{Lo: 95, Hi: 105, Source: norms.SourceTable}, res.Meta.OverallInterval)
	assert.Equal(t, &norms.Interval{Lo: 94, Hi: 106, Source: norms.SourceTable}, res.Meta.OverallInterval95)

	res = s.Convert(norms.KnownAge(84), in)
	assert.Equal(t, 104, *res.Composites[norms.ICV])
}

func TestDir_ManifestOrderAndYAML(t *testing.T) {
	bs, err := storage.NewFSStore(t.TempDir())
	require.NoError(t, err)

	put := func(key, body string) {
		_, err := bs.Put(key, strings.NewReader(body))
		require.NoError(t, err)
	}
	put(registry.ManifestFile, `{"tables": ["young.yaml", "old.json", "noid.json"]}`)
	put("young.yaml", `
id: young
label: Young
minMonths: 72
maxMonths: 95
ICV:
  20: 95
  21: {comp: 98, pct: "45", IC90: "92–104"}
`)
	put("old.json", `{"id":"old","minMonths":96,"maxMonths":119,"ICV":{"20":97}}`)
	put("noid.json", `{"ICV":{"20":1}}`)
	put("unlisted.json", `{"id":"unlisted","minMonths":0,"maxMonths":240}`)

	defs, err := registry.Dir(bs)
	require.NoError(t, err)
	require.Len(t, defs, 3)
	assert.Equal(t, "young.yaml", defs[0].Source)

	s, warnings := norms.Load(defs, quiet())
	require.Len(t, warnings, 1)
	assert.Equal(t, "noid.json", warnings[0].Source)
	_, ok := s.Band("unlisted")
	assert.False(t, ok, "files outside the manifest are never loaded")

	res := s.Convert(norms.KnownAge(80), norms.Input{SumsByIndex: map[norms.IndexKey]*int{norms.ICV: ip(21)}})
	assert.Equal(t, 98, *res.Composites[norms.ICV])
	assert.Equal(t, "45", *res.Meta.Percentiles[norms.ICV])
	assert.Equal(t, &norms.Interval{Lo: 92, Hi: 104, Source: norms.SourceTable}, res.Meta.Intervals[norms.ICV])
}

func TestDir_Errors(t *testing.T) {
	bs, err := storage.NewFSStore(t.TempDir())
	require.NoError(t, err)

	_, err = registry.Dir(bs)
	assert.ErrorContains(t, err, "read manifest")

	_, err = bs.Put(registry.ManifestFile, strings.NewReader(`{"tables": []}`))
	require.NoError(t, err)
	_, err = registry.Dir(bs)
	assert.ErrorContains(t, err, "no tables")

	_, err = bs.Put(registry.ManifestFile, strings.NewReader(`{"tables": ["missing.json"]}`))
	require.NoError(t, err)
	_, err = registry.Dir(bs)
	assert.ErrorContains(t, err, "missing.json")
}

func TestDB_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	dbh, err := db.Open(ctx, db.DriverSQLite, "file:"+filepath.Join(t.TempDir(), "norms.db"))
	require.NoError(t, err)
	t.Cleanup(func() { dbh.Close() })

	_, err = registry.DB(ctx, dbh)
	assert.ErrorContains(t, err, "empty")

	id, err := registry.Save(ctx, dbh, 2, []byte(`{"id":"b","minMonths":96,"maxMonths":119,"ICV":{"20":97}}`))
	require.NoError(t, err)
	assert.Equal(t, "b", id)
	_, err = registry.Save(ctx, dbh, 1, []byte(`{"id":"a","minMonths":72,"maxMonths":95,"ICV":{"20":95}}`))
	require.NoError(t, err)
	_, err = registry.Save(ctx, dbh, 1, []byte(`{"id":"a","minMonths":72,"maxMonths":95,"ICV":{"20":96}}`))
	require.NoError(t, err, "save is an upsert")

	_, err = registry.Save(ctx, dbh, 3, []byte(`{"label":"x"}`))
	assert.Error(t, err)

	defs, err := registry.Load(ctx, registry.SourceDB, nil, dbh)
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, "norm_tables/a", defs[0].Source)

	s, warnings := norms.Load(defs, quiet())
	assert.Empty(t, warnings)
	c, _ := s.Merge(s.Eligible(norms.KnownAge(80))).Composite(norms.ICV, ip(20))
	assert.Equal(t, 96, *c)
}

func TestLoad_UnknownSource(t *testing.T) {
	_, err := registry.Load(context.Background(), "s3", nil, nil)
	assert.Error(t, err)
	_, err = registry.Load(context.Background(), registry.SourceDir, nil, nil)
	assert.Error(t, err)

	defs, err := registry.Load(context.Background(), "", nil, nil)
	require.NoError(t, err)
	assert.Len(t, defs, 4)
}
