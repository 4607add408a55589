package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	perrors "github.com/matzehuels/prodgraph/pkg/errors"
)

// Category classifies an item. The resolver treats [CategoryOre] as terminal.
type Category string

const (
	CategoryOre         Category = "Ore"
	CategoryIngot       Category = "Ingot"
	CategoryMineral     Category = "Mineral"
	CategoryLiquid      Category = "Liquid"
	CategoryStandard    Category = "Standard"
	CategoryElectronics Category = "Electronics"
	CategoryIndustrial  Category = "Industrial"
)

var validCategories = map[Category]bool{
	CategoryOre:         true,
	CategoryIngot:       true,
	CategoryMineral:     true,
	CategoryLiquid:      true,
	CategoryStandard:    true,
	CategoryElectronics: true,
	CategoryIndustrial:  true,
}

// DefaultLanguage is used when a name is missing in the requested language.
const DefaultLanguage = "en"

// ExtractionSources are liquids and gases that are extracted rather than crafted.
var ExtractionSources = map[string]bool{
	"water":        true,
	"crude-oil":    true,
	"nitrogen-gas": true,
}

var (
	ErrDuplicateItem   = errors.New("duplicate item id")
	ErrDuplicateRecipe = errors.New("duplicate recipe for output item")
	ErrUnknownItem     = errors.New("recipe output is not a known item")
	ErrUnknownInput    = errors.New("recipe input is not a known item")
	ErrInvalidRecipe   = errors.New("invalid recipe")
	ErrInvalidItem     = errors.New("invalid item")
	ErrRecipeCycle     = errors.New("recipe cycle")
)

// Item is an immutable item definition.
type Item struct {
	ID       string            `json:"id"`
	Names    map[string]string `json:"names"`
	Category Category          `json:"category"`
	IsLiquid bool              `json:"isLiquid,omitempty"`
	Icon     string            `json:"icon,omitempty"`
}

// Name returns the display name in lang, falling back to English and then to the id.
func (it Item) Name(lang string) string {
	if n := it.Names[lang]; n != "" {
		return n
	}
	if n := it.Names[DefaultLanguage]; n != "" {
		return n
	}
	return it.ID
}

// Input is one ingredient of a recipe, per cycle.
type Input struct {
	ItemID string  `json:"itemId"`
	Amount float64 `json:"amount"`
}

// Recipe produces OutputAmount of Output every CycleTime seconds.
type Recipe struct {
	Output       string  `json:"output"`
	OutputAmount float64 `json:"outputAmount"`
	CycleTime    float64 `json:"cycleTime"`
	Building     string  `json:"building"`
	Inputs       []Input `json:"inputs"`
}

// Catalog is a validated, read-only set of items and recipes.
// It is safe for concurrent use.
type Catalog struct {
	version     string
	fingerprint string
	items       map[string]Item
	recipes     map[string]*Recipe
	ids         []string
}

// New validates items and recipes and builds a catalog.
// All validation failures carry [perrors.ErrCodeInvalidCatalog] and wrap one of
// the package's sentinel errors.
func New(version string, items []Item, recipes []Recipe) (*Catalog, error) {
	c := &Catalog{
		version: version,
		items:   make(map[string]Item, len(items)),
		recipes: make(map[string]*Recipe, len(recipes)),
		ids:     make([]string, 0, len(items)),
	}

	for _, it := range items {
		if it.ID == "" {
			return nil, invalid(ErrInvalidItem, "item with empty id")
		}
		if _, dup := c.items[it.ID]; dup {
			return nil, invalid(ErrDuplicateItem, "item %s", it.ID)
		}
		if it.Category != "" && !validCategories[it.Category] {
			return nil, invalid(ErrInvalidItem, "item %s: unknown category %q", it.ID, it.Category)
		}
		it.Names = cloneNames(it.Names)
		c.items[it.ID] = it
		c.ids = append(c.ids, it.ID)
	}
	sort.Strings(c.ids)

	for i := range recipes {
		r := recipes[i]
		if _, ok := c.items[r.Output]; !ok {
			return nil, invalid(ErrUnknownItem, "recipe %d: %s", i, r.Output)
		}
		if _, dup := c.recipes[r.Output]; dup {
			return nil, invalid(ErrDuplicateRecipe, "%s", r.Output)
		}
		if r.OutputAmount <= 0 {
			return nil, invalid(ErrInvalidRecipe, "%s: output amount must be positive", r.Output)
		}
		if r.CycleTime < 0 {
			return nil, invalid(ErrInvalidRecipe, "%s: negative cycle time", r.Output)
		}
		for _, in := range r.Inputs {
			if _, ok := c.items[in.ItemID]; !ok {
				return nil, invalid(ErrUnknownInput, "%s needs %s", r.Output, in.ItemID)
			}
			if in.Amount <= 0 {
				return nil, invalid(ErrInvalidRecipe, "%s: input %s amount must be positive", r.Output, in.ItemID)
			}
		}
		r.Inputs = append([]Input(nil), r.Inputs...)
		c.recipes[r.Output] = &r
	}
	if err := c.checkCycles(); err != nil {
		return nil, err
	}

	c.fingerprint = c.computeFingerprint()
	return c, nil
}

// expands reports whether resolution recurses into the recipe of id. Ores and
// the fixed extraction sources stop expansion even when they have a recipe.
func (c *Catalog) expands(id string) bool {
	if _, ok := c.recipes[id]; !ok || ExtractionSources[id] {
		return false
	}
	return c.items[id].Category != CategoryOre
}

// checkCycles rejects recipe graphs on which resolution would not terminate.
func (c *Catalog) checkCycles() error {
	const (
		unvisited = iota
		active
		done
	)
	state := make(map[string]int, len(c.recipes))
	var visit func(id string, path []string) error
	visit = func(id string, path []string) error {
		switch state[id] {
		case active:
			return invalid(ErrRecipeCycle, "%s", strings.Join(append(path, id), " -> "))
		case done:
			return nil
		}
		state[id] = active
		for _, in := range c.recipes[id].Inputs {
			if !c.expands(in.ItemID) {
				continue
			}
			if err := visit(in.ItemID, append(path, id)); err != nil {
				return err
			}
		}
		state[id] = done
		return nil
	}
	for _, id := range c.ids {
		if !c.expands(id) {
			continue
		}
		if err := visit(id, nil); err != nil {
			return err
		}
	}
	return nil
}

func invalid(sentinel error, format string, args ...any) error {
	return perrors.Wrap(perrors.ErrCodeInvalidCatalog, sentinel, format, args...)
}

func cloneNames(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Version returns the version string declared by the catalog source.
func (c *Catalog) Version() string { return c.version }

// Fingerprint returns a short content hash of the catalog.
func (c *Catalog) Fingerprint() string { return c.fingerprint }

// Len returns the number of items.
func (c *Catalog) Len() int { return len(c.items) }

// Item returns the item with the given id.
func (c *Catalog) Item(id string) (Item, bool) {
	it, ok := c.items[id]
	return it, ok
}

// Recipe returns the single recipe producing id, if any.
// The returned recipe must not be modified.
func (c *Catalog) Recipe(id string) (*Recipe, bool) {
	r, ok := c.recipes[id]
	return r, ok
}

// Items returns all items sorted by id.
func (c *Catalog) Items() []Item {
	out := make([]Item, len(c.ids))
	for i, id := range c.ids {
		out[i] = c.items[id]
	}
	return out
}

// Craftable returns the items that have a recipe, sorted by id.
func (c *Catalog) Craftable() []Item {
	var out []Item
	for _, id := range c.ids {
		if _, ok := c.recipes[id]; ok {
			out = append(out, c.items[id])
		}
	}
	return out
}

// Name returns the display name of id in lang. Unknown ids are returned unchanged.
func (c *Catalog) Name(id, lang string) string {
	if it, ok := c.items[id]; ok {
		return it.Name(lang)
	}
	return id
}

// Icon returns the icon reference of id, or "" if unknown.
func (c *Catalog) Icon(id string) string {
	return c.items[id].Icon
}

// IsLiquid reports whether id is a liquid or gas. Unknown ids are solids.
func (c *Catalog) IsLiquid(id string) bool {
	return c.items[id].IsLiquid
}

// Languages returns every language code that appears in item names, sorted.
func (c *Catalog) Languages() []string {
	seen := map[string]bool{}
	for _, it := range c.items {
		for lang := range it.Names {
			seen[lang] = true
		}
	}
	out := make([]string, 0, len(seen))
	for lang := range seen {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

func (c *Catalog) computeFingerprint() string {
	type snapshot struct {
		Items   []Item
		Recipes []*Recipe
	}
	s := snapshot{Items: c.Items()}
	for _, id := range c.ids {
		if r, ok := c.recipes[id]; ok {
			s.Recipes = append(s.Recipes, r)
		}
	}
	// json.Marshal sorts map keys, so the encoding is deterministic.
	data, err := json.Marshal(s)
	if err != nil {
		panic(fmt.Sprintf("catalog: fingerprint: %v", err))
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}
