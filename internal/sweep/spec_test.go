package sweep

import (
	"errors"
	"strings"
	"testing"

	"github.com/mmtrader/pairsweep/internal/core"
)

func validSpec() *Spec {
	return &Spec{
		Variables: []Variable{
			{Name: "stdDevMultiplier", Min: 1.5, Max: 2.5, Step: 0.5},
		},
		Constants: validConstants(),
	}
}

func TestSpec_Validate_OK(t *testing.T) {
	if err := validSpec().Validate(); err != nil {
		t.Fatalf("valid spec rejected: %v", err)
	}
}

func TestSpec_Validate_FieldErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Spec)
		wantMsg string
	}{
		{"missing timezone", func(s *Spec) { s.Constants.Timezone = "" }, "timezone"},
		{"missing startDate", func(s *Spec) { s.Constants.StartDate = "" }, "startDate"},
		{"missing endDate", func(s *Spec) { s.Constants.EndDate = "" }, "endDate"},
		{"missing assetA", func(s *Spec) { s.Constants.Assets.AssetA = Asset{} }, "assetA"},
		{"missing assetB", func(s *Spec) { s.Constants.Assets.AssetB = Asset{} }, "assetB"},
		{"unnamed variable", func(s *Spec) { s.Variables[0].Name = "" }, "name"},
		{"min above max", func(s *Spec) { s.Variables[0].Min = 3 }, "min"},
		{"zero step", func(s *Spec) { s.Variables[0].Step = 0 }, "step"},
		{"negative step", func(s *Spec) { s.Variables[0].Step = -0.5 }, "step"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := validSpec()
			tt.mutate(spec)

			err := spec.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, core.ErrValidation) {
				t.Errorf("expected VALIDATION_FAILED, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q should mention %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestParse_Document(t *testing.T) {
	doc := `{
		"variables": [
			{"name": "stdDevMultiplier", "min": 1.5, "max": 2.5, "step": 0.5},
			{"name": "windowLength", "min": 20, "max": 60, "step": 20}
		],
		"constants": {
			"timezone": "America/Chicago",
			"startDate": "2024-01-02",
			"endDate": "2024-03-29",
			"assets": {
				"assetA": {"path": "ym_1s.csv", "weight": 1},
				"assetB": {"path": "es_1s.csv", "weight": 1}
			}
		}
	}`

	spec, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(spec.Variables) != 2 {
		t.Errorf("expected 2 variables, got %d", len(spec.Variables))
	}
	if spec.Constants.Assets.AssetB.Path != "es_1s.csv" {
		t.Errorf("assetB path not carried: %s", spec.Constants.Assets.AssetB.Path)
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{{`},
		{"missing variables", `{"constants": {}}`},
		{"missing constants", `{"variables": []}`},
		{"variables not array", `{"variables": {}, "constants": {}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, core.ErrValidation) {
				t.Errorf("expected VALIDATION_FAILED, got %v", err)
			}
		})
	}
}
