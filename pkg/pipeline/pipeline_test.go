package pipeline

import (
	"testing"

	perrors "github.com/matzehuels/prodgraph/pkg/errors"
	"github.com/matzehuels/prodgraph/pkg/layout/ordering"
	"github.com/matzehuels/prodgraph/pkg/rates"
	"github.com/matzehuels/prodgraph/pkg/settings"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"dot", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !perrors.Is(err, perrors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s", tt.format, perrors.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "dot"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateStyle(t *testing.T) {
	tests := []struct {
		style   string
		wantErr bool
	}{
		{"light", false},
		{"dark", false},
		{"handdrawn", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateStyle(tt.style)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateStyle(%q) error = %v, wantErr %v", tt.style, err, tt.wantErr)
		}
	}
}

func TestValidateVizType(t *testing.T) {
	tests := []struct {
		viz     string
		wantErr bool
	}{
		{"diagram", false},
		{"nodelink", false},
		{"sankey", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateVizType(tt.viz)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateVizType(%q) error = %v, wantErr %v", tt.viz, err, tt.wantErr)
		}
	}
}

func TestOptionsValidateForResolve(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code perrors.Code
	}{
		{"missing item", Options{Amount: 1}, perrors.ErrCodeInvalidItem},
		{"bad item", Options{Item: "Iron Plate", Amount: 1}, perrors.ErrCodeInvalidItem},
		{"zero amount", Options{Item: "iron-plate"}, perrors.ErrCodeInvalidAmount},
		{"negative amount", Options{Item: "iron-plate", Amount: -3}, perrors.ErrCodeInvalidAmount},
		{"bad mode", Options{Item: "iron-plate", Amount: 1, Mode: "hourly"}, perrors.ErrCodeInvalidMode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateForResolve()
			if !perrors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}

	opts := Options{Item: "iron-plate", Amount: 10}
	if err := opts.ValidateForResolve(); err != nil {
		t.Fatalf("Valid options should pass: %v", err)
	}
	if opts.Mode != DefaultMode {
		t.Errorf("Mode should default to %s, got %s", DefaultMode, opts.Mode)
	}
	if opts.Catalog == nil || opts.Logger == nil {
		t.Error("runtime defaults should be set")
	}
}

func TestOptionsValidateForLayout(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code perrors.Code
	}{
		{"language", Options{Language: "fr"}, perrors.ErrCodeInvalidLanguage},
		{"direction", Options{Direction: "RL"}, perrors.ErrCodeInvalidDirection},
		{"window", Options{Window: -1}, perrors.ErrCodeInvalidAmount},
		{"miner", Options{Miners: map[string]settings.MinerSettings{"iron-ore": {Tier: "Mk.9", Purity: rates.PurityNormal}}}, perrors.ErrCodeInvalidTier},
		{"ordering", Options{Ordering: "optimal"}, perrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateForLayout()
			if !perrors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}

	opts := Options{Language: "de-AT"}
	if err := opts.ValidateForLayout(); err != nil {
		t.Fatalf("Valid options should pass: %v", err)
	}
	if opts.Language != "de" {
		t.Errorf("Language should be normalized to de, got %s", opts.Language)
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Item: "iron-plate", Amount: 100}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}

	original := opts.LayoutKeyOpts()
	originalViz := opts.Viz
	originalStyle := opts.Style

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}

	if opts.LayoutKeyOpts() != original {
		t.Error("layout options changed on second call")
	}
	if opts.Viz != originalViz {
		t.Error("Viz changed on second call")
	}
	if opts.Style != originalStyle {
		t.Error("Style changed on second call")
	}
}

func TestSetLayoutDefaults(t *testing.T) {
	opts := Options{}
	opts.SetLayoutDefaults()

	if opts.Language != "en" {
		t.Errorf("Language should be en, got %s", opts.Language)
	}
	if opts.Direction != DefaultDirection {
		t.Errorf("Direction should be %s, got %s", DefaultDirection, opts.Direction)
	}
	if opts.Window != DefaultWindow {
		t.Errorf("Window should be %f, got %f", DefaultWindow, opts.Window)
	}
	if opts.Ordering != DefaultOrdering {
		t.Errorf("Ordering should be %s, got %s", DefaultOrdering, opts.Ordering)
	}
}

func TestSetRenderDefaults(t *testing.T) {
	opts := Options{}
	opts.SetRenderDefaults()

	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats should be [svg], got %v", opts.Formats)
	}
	if opts.Style != DefaultStyle {
		t.Errorf("Style should be %s, got %s", DefaultStyle, opts.Style)
	}
	if opts.Viz != DefaultViz {
		t.Errorf("Viz should be %s, got %s", DefaultViz, opts.Viz)
	}
}

func TestOptionsIsNodelink(t *testing.T) {
	opts := Options{}
	if opts.IsNodelink() {
		t.Error("Empty Viz should not be nodelink")
	}

	opts.Viz = "nodelink"
	if !opts.IsNodelink() {
		t.Error("nodelink Viz should be nodelink")
	}
}

func TestOptionsOrderer(t *testing.T) {
	opts := Options{Ordering: OrderingIdentity}
	if _, ok := opts.Orderer().(ordering.Identity); !ok {
		t.Errorf("identity ordering should use ordering.Identity, got %T", opts.Orderer())
	}
	opts.Ordering = OrderingBarycentric
	if _, ok := opts.Orderer().(ordering.Barycentric); !ok {
		t.Errorf("barycentric ordering should use ordering.Barycentric, got %T", opts.Orderer())
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	a := Options{Viz: VizDiagram, Style: "light"}
	b := Options{Viz: VizDiagram, Style: "light", Summary: true}
	c := Options{Viz: VizNodelink, Style: "light"}
	if a.ArtifactKeyOpts("svg") == b.ArtifactKeyOpts("svg") {
		t.Error("summary should change the artifact key")
	}
	if a.ArtifactKeyOpts("svg") == c.ArtifactKeyOpts("svg") {
		t.Error("viz should change the artifact key")
	}
}

func TestExpandMiners(t *testing.T) {
	ch, err := Resolve(Options{Item: "iron-plate", Amount: 100})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	oreKey := ch.ExtractorKeys()[0]
	pure := settings.MinerSettings{Tier: rates.MinerMk2, Purity: rates.PurityPure}
	impure := settings.MinerSettings{Tier: rates.MinerMk1, Purity: rates.PurityImpure}

	tests := []struct {
		name   string
		miners map[string]settings.MinerSettings
		want   map[string]settings.MinerSettings
	}{
		{"nil", nil, nil},
		{"by item", map[string]settings.MinerSettings{"iron-ore": pure}, map[string]settings.MinerSettings{oreKey: pure}},
		{"exact key wins", map[string]settings.MinerSettings{"iron-ore": pure, oreKey: impure}, map[string]settings.MinerSettings{oreKey: impure}},
		{"unrelated dropped", map[string]settings.MinerSettings{"copper-ore": pure}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExpandMiners(ch, tt.miners)
			if len(got) != len(tt.want) {
				t.Fatalf("ExpandMiners() = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("ExpandMiners()[%s] = %v, want %v", k, got[k], v)
				}
			}
		})
	}
}
