package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys. The English text doubles as the key.
const (
	MsgTier           = "Tier %d"
	MsgExtraction     = "Extraction"
	MsgRatePerMinute  = "%s/min"
	MsgBottleneck     = "Bottleneck: %s"
	MsgCompletion     = "Estimated completion: %.1f min"
	MsgMachines       = "%d× %s"
	MsgOverloaded     = "over capacity"
	MsgRawResources   = "Raw resources"
	MsgNodesEdges     = "%d nodes, %d edges"
	MsgOverloadedEdge = "%d overloaded edges"
)

var german = map[string]string{
	MsgTier:           "Stufe %d",
	MsgExtraction:     "Abbau",
	MsgRatePerMinute:  "%s/min",
	MsgBottleneck:     "Engpass: %s",
	MsgCompletion:     "Geschätzte Fertigstellung: %.1f min",
	MsgMachines:       "%d× %s",
	MsgOverloaded:     "über Kapazität",
	MsgRawResources:   "Rohstoffe",
	MsgNodesEdges:     "%d Knoten, %d Kanten",
	MsgOverloadedEdge: "%d überlastete Verbindungen",
}

var buildings = map[string]string{
	"Miner":                   "Miner",
	"Water Extractor":         "Wasserextraktor",
	"Oil Extractor":           "Ölpumpe",
	"Resource Well Extractor": "Ressourcenquellen-Extraktor",
	"Extractor":               "Extraktor",
	"Smelter":                 "Schmelzofen",
	"Foundry":                 "Gießerei",
	"Constructor":             "Konstruktor",
	"Assembler":               "Monteur",
	"Manufacturer":            "Produzent",
	"Refinery":                "Raffinerie",
	"Blender":                 "Mischer",
}

func init() {
	for key, msg := range german {
		if err := message.SetString(language.German, key, msg); err != nil {
			panic(err)
		}
	}
	for key, msg := range buildings {
		if err := message.SetString(language.German, key, msg); err != nil {
			panic(err)
		}
	}
}

// Building returns the localized name of a building type. Unknown buildings
// are returned unchanged.
func Building(lang, name string) string {
	if name == "" {
		return ""
	}
	return Printer(lang).Sprintf(name)
}
