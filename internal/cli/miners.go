package cli

import (
	"fmt"
	"strings"

	perrors "github.com/matzehuels/prodgraph/pkg/errors"
	"github.com/matzehuels/prodgraph/pkg/settings"
)

// parseMinerFlags parses repeated --miner key=Mk.2:pure values.
func parseMinerFlags(values []string) (map[string]settings.MinerSettings, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make(map[string]settings.MinerSettings, len(values))
	for _, v := range values {
		key, spec, ok := strings.Cut(v, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, perrors.New(perrors.ErrCodeInvalidInput, "invalid --miner %q (want key=Mk.2:pure)", v)
		}
		m, err := settings.ParseMiner(spec)
		if err != nil {
			return nil, fmt.Errorf("--miner %s: %w", key, err)
		}
		out[key] = m
	}
	return out, nil
}

// mergeMiners overlays b on a. Either may be nil.
func mergeMiners(a, b map[string]settings.MinerSettings) map[string]settings.MinerSettings {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make(map[string]settings.MinerSettings, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}
