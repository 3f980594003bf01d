package sweep

import (
	"strconv"

	"github.com/mmtrader/pairsweep/internal/core"
)

// Swept variable names with dedicated parameter fields.
const (
	VarStdDevMultiplier = "stdDevMultiplier"
	VarWindowLength     = "windowLength"
)

// ToJobRequest converts one permutation into a backtest request. Asset A
// becomes the dataset reference and leg one, asset B leg two; the
// parameter set carries the swept values plus the timezone constant.
func ToJobRequest(perm Permutation, id string, resolution core.Resolution) core.JobRequest {
	params := core.Parameters{Timezone: perm.Constants.Timezone}

	for _, name := range perm.Names {
		value := perm.Values[name]
		switch name {
		case VarStdDevMultiplier:
			params.StdDevMultiplier = value
		case VarWindowLength:
			params.WindowLength = int(value)
		default:
			if params.Extra == nil {
				params.Extra = make(map[string]string)
			}
			params.Extra[name] = strconv.FormatFloat(value, 'f', -1, 64)
		}
	}

	return core.JobRequest{
		ID:          id,
		DatasetName: perm.Constants.Assets.AssetA.Path,
		Legs: [2]core.SpreadLeg{
			{Symbol: perm.Constants.Assets.AssetA.Path, Multiplier: perm.Constants.Assets.AssetA.Weight},
			{Symbol: perm.Constants.Assets.AssetB.Path, Multiplier: perm.Constants.Assets.AssetB.Weight},
		},
		StartDate:  perm.Constants.StartDate,
		EndDate:    perm.Constants.EndDate,
		Resolution: resolution,
		Parameters: params,
	}
}
