package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/scaffold-engine/internal/selection"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a selection replay fixture.
type Fixture struct {
	Description     string                  `json:"description"`
	Params          FixtureParams           `json:"params"`
	Turns           []FixtureTurn           `json:"turns"`
	ExpectedResults []FixtureExpectedResult `json:"expected_results"`
}

// FixtureParams mirrors the tunable selection parameters with JSON tags.
// Zero-valued fields fall back to the defaults.
type FixtureParams struct {
	MinConfidence   float64            `json:"min_confidence"`
	AmbiguityMargin float64            `json:"ambiguity_margin"`
	Bias            map[string]float64 `json:"bias"`
}

// FixtureTurn is one recorded input to replay through selection.
type FixtureTurn struct {
	TurnID           string            `json:"turn_id"`
	Input            string            `json:"input"`
	ToolName         string            `json:"tool_name"`
	CallerTemplateID string            `json:"caller_template_id"`
	Context          map[string]string `json:"context"`
}

// FixtureExpectedResult captures the expected selection per turn.
type FixtureExpectedResult struct {
	TurnID     string `json:"turn_id"`
	TemplateID string `json:"template_id"`
	Mode       string `json:"mode"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// ToParams converts fixture parameters to selection parameters, keeping
// defaults for anything the fixture leaves zero.
func (fp *FixtureParams) ToParams() selection.Params {
	p := selection.DefaultParams()
	if fp.MinConfidence > 0 {
		p.MinConfidence = fp.MinConfidence
	}
	if fp.AmbiguityMargin > 0 {
		p.AmbiguityMargin = fp.AmbiguityMargin
	}
	if len(fp.Bias) > 0 {
		p.Bias = fp.Bias
	}
	return p
}

// #endregion fixture-loader
