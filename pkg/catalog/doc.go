// Package catalog holds the static item and recipe data that production chains
// are resolved against.
//
// # Overview
//
// A [Catalog] is an immutable lookup table of [Item] definitions (identifier,
// localized display names, category, liquid flag, icon) and [Recipe] definitions
// (output item, output amount per cycle, cycle time, building, inputs). It is
// loaded once and then shared read-only by every resolution, layout and render.
//
// # Invariants
//
// [New] enforces the invariants the resolver relies on:
//
//   - Item identifiers are unique
//   - At most one recipe exists per output item ([ErrDuplicateRecipe])
//   - Every recipe output and input references a known item ([ErrUnknownItem],
//     [ErrUnknownInput])
//   - Output amounts are positive and cycle times are non-negative
//
// Items without a recipe are terminal: the resolver turns them into extractor
// nodes. The fixed extraction sources ([ExtractionSources]) are terminal even if
// a catalog were to define a recipe for them.
//
// # File Format
//
// Catalogs are read from JSON ([ReadJSON]) or TOML ([ReadTOML]); [Load] picks
// the decoder from the file extension:
//
//	{
//	  "version": "2026.10",
//	  "items": [
//	    {"id": "iron-ore", "en": "Iron Ore", "de": "Eisenerz", "category": "Ore"},
//	    {"id": "iron-ingot", "en": "Iron Ingot", "de": "Eisenbarren", "category": "Ingot"}
//	  ],
//	  "recipes": [
//	    {"output": "iron-ingot", "outputAmount": 1, "cycleTime": 2,
//	     "building": "Smelter", "inputs": [{"itemId": "iron-ore", "amount": 1}]}
//	  ]
//	}
//
// [Default] returns the catalog embedded in the binary.
//
// # Versioning
//
// [Catalog.Fingerprint] is a content hash of the loaded data. Caches key chain
// resolutions by it so that editing a catalog file invalidates stale results
// even when the declared version string is unchanged.
package catalog
