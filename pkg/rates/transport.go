package rates

// LimitTier is the sentinel tier reported when no transport tier is large enough.
const LimitTier = "LIMIT"

// TransportTier is one entry of a belt or pipe table.
type TransportTier struct {
	Name     string
	Capacity float64 // items or m³ per minute
}

// Belts are conveyor tiers in ascending capacity.
var Belts = []TransportTier{
	{"Mk.1", 60},
	{"Mk.2", 120},
	{"Mk.3", 270},
	{"Mk.4", 480},
	{"Mk.5", 780},
	{"Mk.6", 1200},
}

// Pipes are pipeline tiers in ascending capacity.
var Pipes = []TransportTier{
	{"Mk.1", 300},
	{"Mk.2", 600},
}

// Transport is the result of a tier lookup.
type Transport struct {
	Tier        string  `json:"tier"`
	Capacity    float64 `json:"capacity"`
	IsOverLimit bool    `json:"isOverLimit"`
}

// RequiredTransportTier returns the first tier in table whose capacity is at
// least rate. table must be sorted by ascending capacity. When no tier fits, the
// result is {LimitTier, largest capacity, true}; callers keep reporting the
// actual rate rather than clamping it.
func RequiredTransportTier(rate float64, table []TransportTier) Transport {
	var largest float64
	for _, t := range table {
		if t.Capacity >= rate {
			return Transport{Tier: t.Name, Capacity: t.Capacity}
		}
		if t.Capacity > largest {
			largest = t.Capacity
		}
	}
	return Transport{Tier: LimitTier, Capacity: largest, IsOverLimit: true}
}

// TransportFor selects pipes for liquids and belts otherwise.
func TransportFor(rate float64, liquid bool) Transport {
	if liquid {
		return RequiredTransportTier(rate, Pipes)
	}
	return RequiredTransportTier(rate, Belts)
}

// Kind names the transport family used for a flow.
func Kind(liquid bool) string {
	if liquid {
		return "pipe"
	}
	return "belt"
}
