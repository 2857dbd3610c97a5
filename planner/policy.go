package planner

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/urbanlab/siting/planner/algo"
)

// Policy collects the selector conventions that are deliberately not
// hard-coded: how round trips are derived from one-way times, when a
// tract counts as served, and how small a gain is still worth a site.
type Policy struct {
	// one-way shortest path minutes are multiplied by this factor
	RoundTripFactor float64 `yaml:"round-trip-factor"`
	// a tract is served once its round trip is at most this many
	// minutes; 0 disables the threshold (any finite time serves)
	ServeThresholdMin float64 `yaml:"serve-threshold-min"`
	// a candidate must offer a gain strictly greater than this
	MinGain float64 `yaml:"min-gain"`
	// scale phase-1 gains by tract weight instead of plain minutes
	WeightedEquity bool `yaml:"weighted-equity"`
	// transit modes admitted into the graph; empty means all
	Modes []string `yaml:"modes"`
	// matrix builder worker count
	Workers int `yaml:"workers"`
}

func DefaultPolicy() Policy {
	return Policy{
		RoundTripFactor: 2,
		Workers:         4,
	}
}

func (p *Policy) Validate() error {
	if p.RoundTripFactor <= 0 {
		return fmt.Errorf("round-trip-factor must be positive, got %v", p.RoundTripFactor)
	}
	if p.ServeThresholdMin < 0 {
		return fmt.Errorf("serve-threshold-min must be non-negative, got %v", p.ServeThresholdMin)
	}
	if p.MinGain < 0 {
		return fmt.Errorf("min-gain must be non-negative, got %v", p.MinGain)
	}
	if p.Workers <= 0 {
		p.Workers = DefaultPolicy().Workers
	}
	for _, s := range p.Modes {
		if _, err := algo.ModeFromString(s); err != nil {
			return fmt.Errorf("%w: %s", err, s)
		}
	}
	return nil
}

// Served reports whether a current round-trip time satisfies the policy.
func (p Policy) Served(minutes float64) bool {
	if !algo.Reachable(minutes) {
		return false
	}
	return p.ServeThresholdMin == 0 || minutes <= p.ServeThresholdMin
}

func (p Policy) modeSet() map[algo.Mode]bool {
	if len(p.Modes) == 0 {
		return map[algo.Mode]bool{
			algo.MODE_WALK: true,
			algo.MODE_BUS:  true,
			algo.MODE_RAIL: true,
		}
	}
	return lo.SliceToMap(p.Modes, func(s string) (algo.Mode, bool) {
		m, _ := algo.ModeFromString(s)
		return m, true
	})
}
