package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/prodgraph/pkg/rates"
	"github.com/matzehuels/prodgraph/pkg/settings"
)

func TestParseMinerFlags(t *testing.T) {
	got, err := parseMinerFlags([]string{"iron-ore=Mk.2:pure", "copper-ore=impure"})
	require.NoError(t, err)
	assert.Equal(t, settings.MinerSettings{Tier: rates.MinerMk2, Purity: rates.PurityPure}, got["iron-ore"])
	assert.Equal(t, settings.MinerSettings{Tier: rates.MinerMk1, Purity: rates.PurityImpure}, got["copper-ore"])

	for _, bad := range []string{"iron-ore", "=Mk.2", "iron-ore=Mk.9"} {
		_, err := parseMinerFlags([]string{bad})
		assert.Error(t, err, bad)
	}

	got, err = parseMinerFlags(nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMergeMiners(t *testing.T) {
	pure := settings.MinerSettings{Tier: rates.MinerMk3, Purity: rates.PurityPure}
	a := map[string]settings.MinerSettings{"iron-ore": settings.DefaultMiner, "coal": settings.DefaultMiner}
	b := map[string]settings.MinerSettings{"iron-ore": pure}

	got := mergeMiners(a, b)
	assert.Equal(t, pure, got["iron-ore"])
	assert.Equal(t, settings.DefaultMiner, got["coal"])
	assert.Nil(t, mergeMiners(nil, nil))
}
