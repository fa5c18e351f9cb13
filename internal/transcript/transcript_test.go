package transcript

import "testing"

func TestAccumulatorOverwrites(t *testing.T) {
	acc := NewAccumulator()

	steps := []struct {
		ev   Event
		want string
	}{
		{Event{Kind: Partial, Text: "the"}, "the"},
		{Event{Kind: Partial, Text: "the cat sat"}, "the cat sat"},
		// a later partial can be shorter than the previous one
		{Event{Kind: Partial, Text: "the cats"}, "the cats"},
		{Event{Kind: Final, Text: "the cat sat."}, "the cat sat."},
	}

	for i, step := range steps {
		acc.Apply(step.ev)
		if got := acc.CurrentBestGuess(); got != step.want {
			t.Errorf("step %d: CurrentBestGuess() = %q, want %q", i, got, step.want)
		}
	}

	if acc.Events() != len(steps) {
		t.Errorf("Events() = %d, want %d", acc.Events(), len(steps))
	}
}

func TestAccumulatorIgnoresBlank(t *testing.T) {
	acc := NewAccumulator()
	acc.Apply(Event{Kind: Partial, Text: "  the cat  "})

	if acc.Apply(Event{Kind: Partial, Text: "   "}) {
		t.Error("Apply() = true for blank text")
	}
	if got := acc.CurrentBestGuess(); got != "the cat" {
		t.Errorf("CurrentBestGuess() = %q, want %q", got, "the cat")
	}
	if acc.Events() != 1 {
		t.Errorf("Events() = %d, want 1", acc.Events())
	}
}

func TestAccumulatorSettled(t *testing.T) {
	acc := NewAccumulator()
	if acc.Settled() {
		t.Error("empty accumulator should not be settled")
	}

	acc.Apply(Event{Kind: Final, Text: "hello"})
	if !acc.Settled() {
		t.Error("Settled() = false after final event")
	}

	acc.Apply(Event{Kind: Partial, Text: "hello there"})
	if acc.Settled() {
		t.Error("Settled() = true after a newer partial")
	}
}

func TestAccumulatorReset(t *testing.T) {
	acc := NewAccumulator()
	acc.Apply(Event{Kind: Final, Text: "something"})
	acc.Reset()

	if got := acc.CurrentBestGuess(); got != "" {
		t.Errorf("CurrentBestGuess() after Reset = %q, want empty", got)
	}
	if acc.Events() != 0 || acc.Settled() {
		t.Errorf("Reset left state behind: events=%d settled=%v", acc.Events(), acc.Settled())
	}
}

func TestKindString(t *testing.T) {
	if Partial.String() != "partial" || Final.String() != "final" {
		t.Errorf("unexpected kind strings %q %q", Partial, Final)
	}
}
