package similarity

import (
	"fmt"
	"unicode/utf8"
)

// Outcome is the result of evaluating one spoken attempt.
type Outcome int

const (
	OutcomePass Outcome = iota
	// OutcomeTooShort means fewer spoken characters than the absolute floor.
	OutcomeTooShort
	// OutcomeIncomplete means the spoken/expected length ratio is below the floor.
	OutcomeIncomplete
	OutcomeMismatch
)

func (o Outcome) String() string {
	switch o {
	case OutcomePass:
		return "pass"
	case OutcomeTooShort:
		return "too_short"
	case OutcomeIncomplete:
		return "incomplete"
	case OutcomeMismatch:
		return "mismatch"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Gated reports whether the completeness gate rejected the attempt.
func (o Outcome) Gated() bool {
	return o == OutcomeTooShort || o == OutcomeIncomplete
}

// Verdict is what Evaluate decided and why.
type Verdict struct {
	Outcome   Outcome
	Result    Result
	Threshold float64
	// Scored is false when the completeness gate rejected the attempt before
	// any similarity comparison ran.
	Scored      bool
	PrefixMatch bool
}

func (v Verdict) Passed() bool {
	return v.Outcome == OutcomePass
}

// Config tunes a Scorer.
type Config struct {
	Thresholds     []Breakpoint
	MinSpokenChars int
	MinLengthRatio float64
	PrefixLength   int
}

// DefaultConfig returns the stock scorer tuning.
func DefaultConfig() Config {
	return Config{
		Thresholds:     DefaultBreakpoints(),
		MinSpokenChars: 3,
		MinLengthRatio: 0.6,
		PrefixLength:   4,
	}
}

// Scorer applies the completeness gate, the length-adaptive threshold and
// the prefix containment rule to a spoken attempt.
type Scorer struct {
	threshold      ThresholdFunc
	minSpokenChars int
	minLengthRatio float64
	prefixLength   int
}

func NewScorer(cfg Config) (*Scorer, error) {
	threshold, err := NewThresholdFunc(cfg.Thresholds)
	if err != nil {
		return nil, fmt.Errorf("thresholds: %w", err)
	}
	if cfg.MinSpokenChars < 0 {
		return nil, fmt.Errorf("min spoken chars must be non-negative, got %d", cfg.MinSpokenChars)
	}
	if cfg.MinLengthRatio < 0 || cfg.MinLengthRatio > 1 {
		return nil, fmt.Errorf("min length ratio must be in [0, 1], got %v", cfg.MinLengthRatio)
	}
	if cfg.PrefixLength < 0 {
		return nil, fmt.Errorf("prefix length must be non-negative, got %d", cfg.PrefixLength)
	}

	return &Scorer{
		threshold:      threshold,
		minSpokenChars: cfg.MinSpokenChars,
		minLengthRatio: cfg.MinLengthRatio,
		prefixLength:   cfg.PrefixLength,
	}, nil
}

// Threshold returns the pass threshold for an expected sentence of the given
// normalized length.
func (s *Scorer) Threshold(expectedLength int) float64 {
	return s.threshold(expectedLength)
}

// Evaluate judges spoken against expected.
func (s *Scorer) Evaluate(expected, spoken string) Verdict {
	exp := Normalize(expected)
	sp := Normalize(spoken)
	expLen := utf8.RuneCountInString(exp)
	spLen := utf8.RuneCountInString(sp)

	threshold := s.threshold(expLen)
	gate := Result{Expected: exp, Spoken: sp}

	if spLen < s.minSpokenChars {
		return Verdict{Outcome: OutcomeTooShort, Result: gate, Threshold: threshold}
	}
	if expLen > 0 && float64(spLen)/float64(expLen) < s.minLengthRatio {
		return Verdict{Outcome: OutcomeIncomplete, Result: gate, Threshold: threshold}
	}

	res := scoreNormalized(exp, sp)
	v := Verdict{Outcome: OutcomeMismatch, Result: res, Threshold: threshold, Scored: true}

	switch {
	case res.Score >= threshold:
		v.Outcome = OutcomePass
	case PrefixContained(exp, sp, s.prefixLength):
		v.Outcome = OutcomePass
		v.PrefixMatch = true
	}
	return v
}
