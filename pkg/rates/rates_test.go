package rates

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matzehuels/prodgraph/pkg/catalog"
)

func TestExtractorOutput(t *testing.T) {
	tests := []struct {
		tier   MinerTier
		purity Purity
		want   float64
	}{
		{MinerMk1, PurityImpure, 30},
		{MinerMk1, PurityNormal, 60},
		{MinerMk1, PurityPure, 120},
		{MinerMk2, PurityNormal, 120},
		{MinerMk3, PurityPure, 480},
		{"Mk.9", PurityNormal, 0},
		{MinerMk1, "legendary", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractorOutput(tt.tier, tt.purity), "%s/%s", tt.tier, tt.purity)
	}
}

func TestMachineThroughput(t *testing.T) {
	plate := &catalog.Recipe{Output: "iron-plate", OutputAmount: 20, CycleTime: 6}
	assert.Equal(t, 200.0, MachineThroughput(plate))
	assert.Zero(t, MachineThroughput(nil))
	assert.Zero(t, MachineThroughput(&catalog.Recipe{OutputAmount: 1}))
}

func TestMachinesNeeded(t *testing.T) {
	plate := &catalog.Recipe{Output: "iron-plate", OutputAmount: 2, CycleTime: 6} // 20/min

	tests := []struct {
		name   string
		amount float64
		window float64
		recipe *catalog.Recipe
		want   Machines
	}{
		{"exact fit", 200, 10, plate, Machines{Rounded: 1, Exact: 1}},
		{"fractional", 300, 10, plate, Machines{Rounded: 2, Exact: 1.5}},
		{"tiny", 1, 10, plate, Machines{Rounded: 1, Exact: 0.005}},
		{"nil recipe", 100, 10, nil, Machines{Rounded: 1, Exact: 1}},
		{"zero window", 100, 0, plate, Machines{Rounded: 1, Exact: 1}},
		{"negative window", 100, -5, plate, Machines{Rounded: 1, Exact: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MachinesNeeded(tt.amount, tt.window, tt.recipe)
			assert.Equal(t, tt.want.Rounded, got.Rounded)
			assert.InDelta(t, tt.want.Exact, got.Exact, 1e-9)
		})
	}
}

func TestMachinesRoundingProperty(t *testing.T) {
	r := &catalog.Recipe{OutputAmount: 3, CycleTime: 7}
	for amount := 1.0; amount < 2000; amount *= 1.37 {
		for _, window := range []float64{0.5, 1, 3, 10, 60} {
			m := MachinesNeeded(amount, window, r)
			assert.GreaterOrEqual(t, m.Rounded, 1)
			assert.Equal(t, int(math.Ceil(m.Exact)), m.Rounded, "amount=%v window=%v", amount, window)
		}
	}
}

func TestCeilCount(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{0, 0},
		{0.2, 1},
		{2, 2},
		{-1.5, -1},
		{1e20, math.MaxInt},
		{-1e20, math.MinInt},
		{math.Inf(1), math.MaxInt},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CeilCount(tt.in), "CeilCount(%v)", tt.in)
	}
}

func TestMachinesSaturateOnHugeRates(t *testing.T) {
	r := &catalog.Recipe{OutputAmount: 1, CycleTime: 60}
	m := MachinesForRate(1e20, r)
	assert.Equal(t, math.MaxInt, m.Rounded)
	assert.Equal(t, 1e20, m.Exact)

	miners := MinersNeeded(1e20, MinerMk1, PurityImpure)
	assert.Equal(t, math.MaxInt, miners.Rounded)
}

func TestMachinesForRate(t *testing.T) {
	ingot := &catalog.Recipe{OutputAmount: 1, CycleTime: 2} // 30/min
	got := MachinesForRate(75, ingot)
	assert.Equal(t, 3, got.Rounded)
	assert.InDelta(t, 2.5, got.Exact, 1e-9)
}

func TestMinersNeeded(t *testing.T) {
	got := MinersNeeded(150, MinerMk1, PurityNormal)
	assert.Equal(t, Machines{Rounded: 3, Exact: 2.5}, got)

	got = MinersNeeded(150, MinerMk3, PurityPure)
	assert.Equal(t, 1, got.Rounded)

	assert.Equal(t, Machines{Rounded: 1, Exact: 1}, MinersNeeded(150, "bogus", PurityPure))
}

func TestMiningMinutes(t *testing.T) {
	assert.Equal(t, 2.5, MiningMinutes(150, MinerMk1, PurityNormal))
	assert.Equal(t, 0.625, MiningMinutes(150, MinerMk2, PurityPure))
	assert.Zero(t, MiningMinutes(150, "bogus", PurityPure))
}

func TestRequiredTransportTier(t *testing.T) {
	tests := []struct {
		rate  float64
		table []TransportTier
		want  Transport
	}{
		{0, Belts, Transport{Tier: "Mk.1", Capacity: 60}},
		{60, Belts, Transport{Tier: "Mk.1", Capacity: 60}},
		{61, Belts, Transport{Tier: "Mk.2", Capacity: 120}},
		{500, Belts, Transport{Tier: "Mk.5", Capacity: 780}},
		{1200, Belts, Transport{Tier: "Mk.6", Capacity: 1200}},
		{1201, Belts, Transport{Tier: LimitTier, Capacity: 1200, IsOverLimit: true}},
		{301, Pipes, Transport{Tier: "Mk.2", Capacity: 600}},
		{601, Pipes, Transport{Tier: LimitTier, Capacity: 600, IsOverLimit: true}},
		{1, nil, Transport{Tier: LimitTier, IsOverLimit: true}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RequiredTransportTier(tt.rate, tt.table), "rate=%v", tt.rate)
	}
}

func TestTransportMonotonic(t *testing.T) {
	index := func(tr Transport, table []TransportTier) int {
		if tr.IsOverLimit {
			return len(table)
		}
		for i, t := range table {
			if t.Name == tr.Tier {
				return i
			}
		}
		return -1
	}
	for _, table := range [][]TransportTier{Belts, Pipes} {
		prev := -1
		for rate := 0.0; rate <= 2000; rate += 7.5 {
			i := index(RequiredTransportTier(rate, table), table)
			assert.GreaterOrEqual(t, i, prev, "rate=%v", rate)
			prev = i
		}
		assert.True(t, RequiredTransportTier(table[len(table)-1].Capacity+1, table).IsOverLimit)
	}
}

func TestTransportFor(t *testing.T) {
	assert.Equal(t, "Mk.1", TransportFor(250, true).Tier, "liquids use pipes")
	assert.Equal(t, "Mk.3", TransportFor(250, false).Tier, "solids use belts")
	assert.Equal(t, "pipe", Kind(true))
	assert.Equal(t, "belt", Kind(false))
}
