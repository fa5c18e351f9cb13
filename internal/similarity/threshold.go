package similarity

import (
	"errors"
	"fmt"
)

// Breakpoint sets the pass threshold for expected sentences whose normalized
// length is at most MaxLength runes.
type Breakpoint struct {
	MaxLength int
	Threshold float64
}

// ThresholdFunc maps a normalized expected length to the minimum similarity
// needed to pass.
type ThresholdFunc func(expectedLength int) float64

// DefaultBreakpoints returns the stock length-adaptive mapping. Lengths past
// the last breakpoint use its threshold.
func DefaultBreakpoints() []Breakpoint {
	return []Breakpoint{
		{MaxLength: 10, Threshold: 0.55},
		{MaxLength: 20, Threshold: 0.6},
		{MaxLength: 40, Threshold: 0.65},
		{MaxLength: 80, Threshold: 0.7},
	}
}

// ValidateBreakpoints checks that breakpoints are ordered by strictly
// increasing length and carry non-decreasing thresholds in (0, 1].
func ValidateBreakpoints(bps []Breakpoint) error {
	if len(bps) == 0 {
		return errors.New("at least one threshold breakpoint is required")
	}
	for i, bp := range bps {
		if bp.MaxLength <= 0 {
			return fmt.Errorf("breakpoint %d: max_length must be positive, got %d", i, bp.MaxLength)
		}
		if bp.Threshold <= 0 || bp.Threshold > 1 {
			return fmt.Errorf("breakpoint %d: threshold must be in (0, 1], got %v", i, bp.Threshold)
		}
		if i == 0 {
			continue
		}
		prev := bps[i-1]
		if bp.MaxLength <= prev.MaxLength {
			return fmt.Errorf("breakpoint %d: max_length %d must exceed previous %d", i, bp.MaxLength, prev.MaxLength)
		}
		if bp.Threshold < prev.Threshold {
			return fmt.Errorf("breakpoint %d: threshold %v is lower than previous %v", i, bp.Threshold, prev.Threshold)
		}
	}
	return nil
}

// NewThresholdFunc builds a step mapping from validated breakpoints.
func NewThresholdFunc(bps []Breakpoint) (ThresholdFunc, error) {
	if err := ValidateBreakpoints(bps); err != nil {
		return nil, err
	}
	steps := make([]Breakpoint, len(bps))
	copy(steps, bps)

	return func(expectedLength int) float64 {
		for _, bp := range steps {
			if expectedLength <= bp.MaxLength {
				return bp.Threshold
			}
		}
		return steps[len(steps)-1].Threshold
	}, nil
}
