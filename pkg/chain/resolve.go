package chain

import (
	"strconv"

	"github.com/matzehuels/prodgraph/pkg/catalog"
	"github.com/matzehuels/prodgraph/pkg/rates"
)

// Extractor buildings by resource.
var extractorBuildings = map[string]string{
	"water":        "Water Extractor",
	"crude-oil":    "Oil Extractor",
	"nitrogen-gas": "Resource Well Extractor",
}

// Resolve expands itemID into a production chain for amount, interpreted per
// mode. It never fails: unknown items become a single generic extractor node
// labeled with the raw id. Callers validate amount > 0 beforehand.
//
// Ranks are left at zero; call [Rank] to assign them.
func Resolve(cat Catalog, itemID string, amount float64, mode Mode) *Chain {
	r := &resolver{cat: cat, mode: mode}
	r.resolve(itemID, amount, 0, itemID)
	return &Chain{
		Target: itemID,
		Amount: amount,
		Mode:   mode,
		Nodes:  r.nodes,
		Edges:  r.edges,
	}
}

// resolver carries the state of exactly one top-level resolution.
type resolver struct {
	cat   Catalog
	mode  Mode
	next  int
	nodes []Node
	edges []Edge
}

func (r *resolver) newID() string {
	id := "n" + strconv.Itoa(r.next)
	r.next++
	return id
}

// resolve appends the subtree for itemID and returns the ID of its root.
func (r *resolver) resolve(itemID string, amount float64, depth int, key string) string {
	item, known := r.cat.Item(itemID)
	recipe, hasRecipe := r.cat.Recipe(itemID)

	if res, terminal := classify(item, known, hasRecipe); terminal {
		id := r.newID()
		r.nodes = append(r.nodes, Node{
			ID:       id,
			Key:      key,
			ItemID:   itemID,
			Building: extractorBuilding(itemID, res),
			Amount:   amount,
			Depth:    depth,
			Kind:     KindExtractor,
			Resource: res,
		})
		return id
	}

	id := r.newID()
	node := Node{
		ID:       id,
		Key:      key,
		ItemID:   itemID,
		Building: recipe.Building,
		Amount:   amount,
		Depth:    depth,
		Kind:     KindProcessor,
	}
	if r.mode == ModeRate {
		m := rates.MachinesForRate(amount, recipe)
		node.Machines = &m
	}
	r.nodes = append(r.nodes, node)

	cycles := amount / recipe.OutputAmount
	for i, in := range recipe.Inputs {
		need := in.Amount * cycles
		childKey := key + "/" + strconv.Itoa(i) + ":" + in.ItemID
		child := r.resolve(in.ItemID, need, depth+1, childKey)
		r.edges = append(r.edges, Edge{
			From:   child,
			To:     id,
			ItemID: in.ItemID,
			Amount: need,
			Label:  rates.CeilCount(need),
		})
	}
	return id
}

// classify decides whether an item is extracted rather than crafted.
func classify(item catalog.Item, known, hasRecipe bool) (Resource, bool) {
	switch {
	case !known:
		return ResourceGeneric, true
	case catalog.ExtractionSources[item.ID]:
		return ResourceLiquid, true
	case item.Category == catalog.CategoryOre:
		return ResourceOre, true
	case !hasRecipe && item.IsLiquid:
		return ResourceLiquid, true
	case !hasRecipe:
		return ResourceGeneric, true
	}
	return "", false
}

func extractorBuilding(itemID string, res Resource) string {
	if b, ok := extractorBuildings[itemID]; ok {
		return b
	}
	switch res {
	case ResourceOre:
		return "Miner"
	case ResourceLiquid:
		return "Water Extractor"
	}
	return "Extractor"
}
