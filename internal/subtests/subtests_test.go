package subtests_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-norms/internal/norms"
	"github.com/mind-engage/mindengage-norms/internal/subtests"
)

func TestCatalogue(t *testing.T) {
	require.Len(t, subtests.Catalogue, 10)

	perIndex := map[norms.IndexKey]int{}
	core := 0
	for _, s := range subtests.Catalogue {
		perIndex[s.Index]++
		if s.Core {
			core++
		}
	}
	for _, k := range norms.IndexKeys {
		assert.Equal(t, 2, perIndex[k], "index %s", k)
	}
	assert.Equal(t, 7, core)
}

func TestDerive(t *testing.T) {
	scores := subtests.Scores{
		"SIM": 10, "VOC": 12,
		"CUB": 8, "PUZ": 9,
		"MAT": 11, "BAL": 13,
		"MCH": 7, "MIM": 10,
		"COD": 9, "SYM": 11,
	}
	sums := subtests.Derive(scores)

	assert.Equal(t, 22, *sums.ByIndex[norms.ICV])
	assert.Equal(t, 17, *sums.ByIndex[norms.IVS])
	assert.Equal(t, 24, *sums.ByIndex[norms.IRF])
	assert.Equal(t, 17, *sums.ByIndex[norms.IMT])
	assert.Equal(t, 20, *sums.ByIndex[norms.IVT])
	assert.Equal(t, 100, *sums.TotalAll)
	assert.Equal(t, 10, sums.CountAll)
	// SIM VOC CUB MAT BAL MCH COD
	assert.Equal(t, 70, *sums.TotalCore)
	assert.Equal(t, 7, sums.CountCore)

	assert.Equal(t, 70, *sums.Overall(norms.OverallCore7))
	assert.Equal(t, 100, *sums.Overall(norms.OverallAll10))
	assert.Equal(t, 70, *sums.Overall(""), "core7 is the default")
}

func TestDerive_IgnoresInvalidAndMissing(t *testing.T) {
	sums := subtests.Derive(subtests.Scores{
		"SIM": 10,
		"VOC": 0,
		"CUB": 20,
		"XYZ": 5,
		"PUZ": 19,
	})
	assert.Equal(t, 10, *sums.ByIndex[norms.ICV])
	assert.Equal(t, 1, sums.Counts[norms.ICV])
	assert.Equal(t, 19, *sums.ByIndex[norms.IVS])
	assert.Nil(t, sums.ByIndex[norms.IRF], "no valid subtest means no sum, not zero")
	assert.Equal(t, 29, *sums.TotalAll)
	assert.Equal(t, 10, *sums.TotalCore)

	empty := subtests.Derive(nil)
	assert.Nil(t, empty.TotalAll)
	assert.Nil(t, empty.TotalCore)
}

func TestValidate(t *testing.T) {
	errs := subtests.Scores{"SIM": 10, "VOC": 0, "ZZZ": 3, "COD": 20}.Validate()
	require.Len(t, errs, 3)
	assert.Contains(t, errs[0].Error(), "COD")
	assert.Contains(t, errs[1].Error(), "VOC")
	assert.Contains(t, errs[2].Error(), "ZZZ")

	assert.Empty(t, subtests.Scores{"SIM": 1, "VOC": 19}.Validate())
}

func TestHeterogeneity(t *testing.T) {
	tests := []struct {
		name   string
		scores subtests.Scores
		flag   bool
		spread int
	}{
		{"empty", subtests.Scores{}, false, 0},
		{"single", subtests.Scores{"SIM": 3}, false, 0},
		{"narrow", subtests.Scores{"SIM": 8, "VOC": 12, "COD": 10}, false, 4},
		{"wide", subtests.Scores{"SIM": 5, "VOC": 12}, true, 7},
		{"ignores invalid", subtests.Scores{"SIM": 5, "VOC": 25, "MAT": 9}, false, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag, spread := subtests.Heterogeneity(tt.scores)
			assert.Equal(t, tt.flag, flag)
			assert.Equal(t, tt.spread, spread)
		})
	}
}
