package sweep

// Permutation is one concrete assignment of every swept variable,
// paired with the spec's constants. Names preserves declaration order
// so enumeration is reproducible.
type Permutation struct {
	Constants Constants
	Names     []string
	Values    map[string]float64
}

// valuesFor expands a single variable range. Steps from min while the
// value stays within max; the max endpoint is force-appended when the
// stepped sequence stops short of it, so the boundary is always tested
// even when step does not divide the range exactly.
func valuesFor(v Variable) []float64 {
	var values []float64
	for current := v.Min; current <= v.Max; current += v.Step {
		values = append(values, current)
	}
	if values[len(values)-1] < v.Max {
		values = append(values, v.Max)
	}
	return values
}

// cartesian computes the product of the per-variable value lists.
// Earlier lists vary slowest, matching declaration order.
func cartesian(lists [][]float64) [][]float64 {
	if len(lists) == 0 {
		return [][]float64{{}}
	}

	rest := cartesian(lists[1:])
	combos := make([][]float64, 0, len(lists[0])*len(rest))
	for _, v := range lists[0] {
		for _, tail := range rest {
			combo := make([]float64, 0, 1+len(tail))
			combo = append(combo, v)
			combo = append(combo, tail...)
			combos = append(combos, combo)
		}
	}
	return combos
}

// Generate expands the spec into the full matrix of parameter
// permutations. The spec must have passed Validate; expansion itself
// cannot fail. Zero variables yield exactly one empty permutation.
func Generate(spec *Spec) []Permutation {
	names := make([]string, len(spec.Variables))
	lists := make([][]float64, len(spec.Variables))
	for i, v := range spec.Variables {
		names[i] = v.Name
		lists[i] = valuesFor(v)
	}

	combos := cartesian(lists)
	perms := make([]Permutation, 0, len(combos))
	for _, combo := range combos {
		values := make(map[string]float64, len(names))
		for i, name := range names {
			values[name] = combo[i]
		}
		perms = append(perms, Permutation{
			Constants: spec.Constants,
			Names:     names,
			Values:    values,
		})
	}
	return perms
}
