package strategy

import (
	"fmt"
)

// OFI returns the built-in "Option For Income" strategy: an uptrending
// stock that pulled back into oversold territory and is bouncing on
// volume, screened for liquid near-the-money puts worth selling.
func OFI() *Strategy {
	return &Strategy{
		Name:    "ofi",
		Version: "1.0",
		Conditions: []Condition{
			{
				Kind:   KindTrend,
				Rule:   "sma_20 > sma_60",
				Weight: 0.3,
			},
			{
				Kind: KindOversold,
				Params: map[string]float64{
					"threshold": 40,
					"lookback":  5,
				},
				Weight: 0.4,
			},
			{
				Kind: KindBounce,
				Params: map[string]float64{
					"lookback":         5,
					"confirm_volume":   1,
					"volume_threshold": 1.2,
				},
				Weight: 0.3,
			},
		},
		Options: OptionCriteria{
			MinYield:        0.20,
			MinVolume:       100,
			MinOpenInterest: 500,
			StrikeTolerance: 0.05,
		},
	}
}

// Presets returns all built-in strategies.
func Presets() []*Strategy {
	return []*Strategy{
		OFI(),
	}
}

// PresetByName returns a built-in strategy by name.
func PresetByName(name string) (*Strategy, error) {
	for _, s := range Presets() {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("preset strategy not found: %s", name)
}
