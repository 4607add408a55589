package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	perrors "github.com/matzehuels/prodgraph/pkg/errors"
)

//go:embed data/default.json
var defaultData []byte

type file struct {
	Version string         `json:"version" toml:"version"`
	Items   []itemRecord   `json:"items" toml:"items"`
	Recipes []recipeRecord `json:"recipes" toml:"recipes"`
}

type itemRecord struct {
	ID       string            `json:"id" toml:"id"`
	EN       string            `json:"en" toml:"en"`
	DE       string            `json:"de" toml:"de"`
	Names    map[string]string `json:"names,omitempty" toml:"names,omitempty"`
	Category Category          `json:"category" toml:"category"`
	IsLiquid bool              `json:"isLiquid,omitempty" toml:"isLiquid,omitempty"`
	Icon     string            `json:"icon,omitempty" toml:"icon,omitempty"`
}

type recipeRecord struct {
	Output       string        `json:"output" toml:"output"`
	OutputAmount float64       `json:"outputAmount" toml:"outputAmount"`
	CycleTime    float64       `json:"cycleTime" toml:"cycleTime"`
	Building     string        `json:"building" toml:"building"`
	Inputs       []inputRecord `json:"inputs" toml:"inputs"`
}

type inputRecord struct {
	ItemID string  `json:"itemId" toml:"itemId"`
	Amount float64 `json:"amount" toml:"amount"`
}

func (f *file) build() (*Catalog, error) {
	items := make([]Item, len(f.Items))
	for i, r := range f.Items {
		names := make(map[string]string, len(r.Names)+2)
		for k, v := range r.Names {
			names[k] = v
		}
		if r.EN != "" {
			names["en"] = r.EN
		}
		if r.DE != "" {
			names["de"] = r.DE
		}
		items[i] = Item{ID: r.ID, Names: names, Category: r.Category, IsLiquid: r.IsLiquid, Icon: r.Icon}
	}

	recipes := make([]Recipe, len(f.Recipes))
	for i, r := range f.Recipes {
		inputs := make([]Input, len(r.Inputs))
		for j, in := range r.Inputs {
			inputs[j] = Input(in)
		}
		recipes[i] = Recipe{
			Output:       r.Output,
			OutputAmount: r.OutputAmount,
			CycleTime:    r.CycleTime,
			Building:     r.Building,
			Inputs:       inputs,
		}
	}
	return New(f.Version, items, recipes)
}

// ReadJSON decodes a JSON catalog from r and validates it with [New].
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Catalog, error) {
	var f file
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidCatalog, err, "decode json")
	}
	return f.build()
}

// ReadTOML decodes a TOML catalog from r and validates it with [New].
//
// The TOML layout mirrors the JSON one using arrays of tables:
//
//	version = "custom"
//
//	[[items]]
//	id = "iron-ore"
//	en = "Iron Ore"
//	category = "Ore"
//
//	[[recipes]]
//	output = "iron-ingot"
//	outputAmount = 1
//	cycleTime = 2
//	building = "Smelter"
//	inputs = [{ itemId = "iron-ore", amount = 1 }]
func ReadTOML(r io.Reader) (*Catalog, error) {
	var f file
	md, err := toml.NewDecoder(r).Decode(&f)
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidCatalog, err, "decode toml")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, perrors.New(perrors.ErrCodeInvalidCatalog, "unknown keys: %v", undecoded)
	}
	return f.build()
}

// Load reads a catalog file, choosing the decoder from its extension
// (.json or .toml).
func Load(path string) (*Catalog, error) {
	ext := strings.ToLower(filepath.Ext(path))
	var read func(io.Reader) (*Catalog, error)
	switch ext {
	case ".json":
		read = ReadJSON
	case ".toml":
		read = ReadTOML
	default:
		return nil, perrors.New(perrors.ErrCodeInvalidFormat, "unsupported catalog format %q (want .json or .toml)", ext)
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, perrors.Wrap(perrors.ErrCodeFileNotFound, err, "catalog %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	c, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the catalog embedded in the binary.
// It panics if the embedded data is invalid, which tests guard against.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := ReadJSON(bytes.NewReader(defaultData))
		if err != nil {
			panic(fmt.Sprintf("catalog: embedded default: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// LoadOrDefault loads path, or returns [Default] when path is empty.
func LoadOrDefault(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}
