// Package settings holds the mutable per-user state that feeds layout: the
// miner tier and purity chosen for each extractor node, and the display
// language.
//
// Miner settings are keyed by a node's content-derived key (see chain.Node.Key),
// not by its per-resolution ID, so a choice survives re-resolving the same
// chain at a different amount. A [Store] is safe for concurrent use; layout
// works on an immutable [Snapshot] taken from it.
package settings

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	perrors "github.com/matzehuels/prodgraph/pkg/errors"
	"github.com/matzehuels/prodgraph/pkg/i18n"
	"github.com/matzehuels/prodgraph/pkg/rates"
)

// MinerSettings configures one extractor.
type MinerSettings struct {
	Tier   rates.MinerTier `json:"tier"`
	Purity rates.Purity    `json:"purity"`
}

// DefaultMiner is applied to extractors the user has not configured.
var DefaultMiner = MinerSettings{Tier: rates.MinerMk1, Purity: rates.PurityNormal}

// Output returns the extraction rate of one miner with these settings.
func (m MinerSettings) Output() float64 {
	return rates.ExtractorOutput(m.Tier, m.Purity)
}

// String renders m as "Mk.2:pure".
func (m MinerSettings) String() string {
	return string(m.Tier) + ":" + string(m.Purity)
}

// Validate reports an error if tier or purity is unknown.
func (m MinerSettings) Validate() error {
	if !rates.ValidTier(m.Tier) {
		return perrors.New(perrors.ErrCodeInvalidTier, "unknown miner tier %q (want one of %v)", m.Tier, rates.MinerTiers)
	}
	if !rates.ValidPurity(m.Purity) {
		return perrors.New(perrors.ErrCodeInvalidPurity, "unknown purity %q (want one of %v)", m.Purity, rates.Purities)
	}
	return nil
}

// ParseMiner parses "Mk.2:pure", "Mk.3" or "impure". A missing half keeps the
// default.
func ParseMiner(s string) (MinerSettings, error) {
	m := DefaultMiner
	for _, part := range strings.Split(strings.TrimSpace(s), ":") {
		part = strings.TrimSpace(part)
		switch {
		case part == "":
		case rates.ValidTier(rates.MinerTier(part)):
			m.Tier = rates.MinerTier(part)
		case rates.ValidPurity(rates.Purity(strings.ToLower(part))):
			m.Purity = rates.Purity(strings.ToLower(part))
		default:
			return MinerSettings{}, perrors.New(perrors.ErrCodeInvalidInput, "invalid miner setting %q (want e.g. Mk.2:pure)", s)
		}
	}
	return m, nil
}

// Store is the process-wide settings store. The zero value is not usable; use
// [NewStore].
type Store struct {
	mu       sync.RWMutex
	miners   map[string]MinerSettings
	language string
}

// NewStore creates a store with the given language. An empty or unsupported
// language falls back to [i18n.Default].
func NewStore(language string) *Store {
	lang, err := i18n.Normalize(language)
	if err != nil {
		lang = i18n.Default
	}
	return &Store{miners: make(map[string]MinerSettings), language: lang}
}

// Get returns the settings for key, or [DefaultMiner] if none are stored.
func (s *Store) Get(key string) MinerSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if m, ok := s.miners[key]; ok {
		return m
	}
	return DefaultMiner
}

// Set replaces the settings for key.
func (s *Store) Set(key string, m MinerSettings) error {
	if err := m.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.miners[key] = m
	return nil
}

// SetTier changes the tier for key, keeping the stored or default purity.
func (s *Store) SetTier(key string, tier rates.MinerTier) error {
	if !rates.ValidTier(tier) {
		return perrors.New(perrors.ErrCodeInvalidTier, "unknown miner tier %q (want one of %v)", tier, rates.MinerTiers)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.miners[key]
	if !ok {
		m = DefaultMiner
	}
	m.Tier = tier
	s.miners[key] = m
	return nil
}

// SetPurity changes the purity for key, keeping the stored or default tier.
func (s *Store) SetPurity(key string, purity rates.Purity) error {
	if !rates.ValidPurity(purity) {
		return perrors.New(perrors.ErrCodeInvalidPurity, "unknown purity %q (want one of %v)", purity, rates.Purities)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.miners[key]
	if !ok {
		m = DefaultMiner
	}
	m.Purity = purity
	s.miners[key] = m
	return nil
}

// Ensure stores [DefaultMiner] for every key that has no settings yet. It is
// called when a chain is first shown so each extractor has an explicit entry.
func (s *Store) Ensure(keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		if _, ok := s.miners[k]; !ok {
			s.miners[k] = DefaultMiner
		}
	}
}

// Retain drops settings for keys not in keep and returns how many were removed.
func (s *Store) Retain(keep []string) int {
	set := make(map[string]bool, len(keep))
	for _, k := range keep {
		set[k] = true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for k := range s.miners {
		if !set[k] {
			delete(s.miners, k)
			removed++
		}
	}
	return removed
}

// SetLanguage changes the display language. Regional variants are reduced to
// their base language.
func (s *Store) SetLanguage(lang string) error {
	norm, err := i18n.Normalize(lang)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.language = norm
	return nil
}

// Language returns the display language.
func (s *Store) Language() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.language
}

// Snapshot returns an immutable copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Language: s.language, Miners: maps.Clone(s.miners)}
}

// Snapshot is a point-in-time copy of a [Store].
type Snapshot struct {
	Language string                   `json:"language"`
	Miners   map[string]MinerSettings `json:"miners"`
}

// Get returns the settings for key, or [DefaultMiner].
func (s Snapshot) Get(key string) MinerSettings {
	if m, ok := s.Miners[key]; ok {
		return m
	}
	return DefaultMiner
}

// Hash returns a stable digest of the snapshot's miner settings. Entries equal
// to [DefaultMiner] are skipped, so a snapshot with explicit defaults hashes the
// same as an empty one. The language is not part of the hash.
func (s Snapshot) Hash() string {
	h := sha256.New()
	for _, k := range slices.Sorted(maps.Keys(s.Miners)) {
		m := s.Miners[k]
		if m == DefaultMiner {
			continue
		}
		fmt.Fprintf(h, "%s=%s\n", k, m)
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
