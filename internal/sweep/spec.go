// Package sweep expands a parameter-sweep specification into the full
// matrix of concrete backtest parameter sets.
package sweep

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mmtrader/pairsweep/internal/core"
)

// Variable is one swept parameter range.
type Variable struct {
	Name string  `json:"name"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

// Asset points at a dataset file and its weight in the spread.
type Asset struct {
	Path   string  `json:"path"`
	Weight float64 `json:"weight"`
}

// Assets names the two legs of the spread.
type Assets struct {
	AssetA Asset `json:"assetA"`
	AssetB Asset `json:"assetB"`
}

// Constants are the fixed parameters shared by every permutation.
type Constants struct {
	Timezone  string `json:"timezone"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Assets    Assets `json:"assets"`
}

// Spec is a full sweep specification document.
type Spec struct {
	Variables []Variable `json:"variables"`
	Constants Constants  `json:"constants"`
}

// Parse decodes and validates a JSON sweep document.
func Parse(data []byte) (*Spec, error) {
	var raw struct {
		Variables *[]Variable `json:"variables"`
		Constants *Constants  `json:"constants"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, core.WrapError(core.ErrValidation, fmt.Errorf("parsing sweep document: %w", err))
	}

	if raw.Variables == nil {
		return nil, core.Validationf("sweep document must have a variables array")
	}
	if raw.Constants == nil {
		return nil, core.Validationf("sweep document must have a constants object")
	}

	spec := &Spec{Variables: *raw.Variables, Constants: *raw.Constants}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return spec, nil
}

// Load reads and validates a sweep document from disk.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.WrapError(core.ErrValidation, fmt.Errorf("reading sweep document %s: %w", path, err))
	}
	return Parse(data)
}

// Validate checks every field the generator depends on. A spec that
// passes validation can always be expanded.
func (s *Spec) Validate() error {
	if s.Constants.Timezone == "" {
		return core.Validationf("constants must have timezone")
	}
	if s.Constants.StartDate == "" {
		return core.Validationf("constants must have startDate")
	}
	if s.Constants.EndDate == "" {
		return core.Validationf("constants must have endDate")
	}
	if s.Constants.Assets.AssetA.Path == "" {
		return core.Validationf("constants must have assets.assetA defined")
	}
	if s.Constants.Assets.AssetB.Path == "" {
		return core.Validationf("constants must have assets.assetB defined")
	}

	for i, v := range s.Variables {
		if v.Name == "" {
			return core.Validationf("variables[%d] must have a name", i)
		}
		if v.Min > v.Max {
			return core.Validationf("variable %s: min %v exceeds max %v", v.Name, v.Min, v.Max)
		}
		if v.Step <= 0 {
			return core.Validationf("variable %s: step must be positive, got %v", v.Name, v.Step)
		}
	}

	return nil
}
