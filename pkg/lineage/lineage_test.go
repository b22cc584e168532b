package lineage

import (
	"testing"
	"time"
)

func fixedContext(rows int) (*Context, *time.Time) {
	loaded := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	clock := loaded
	c := NewContext("orders.csv", rows)
	c.LoadedAt = loaded
	c.now = func() time.Time { return clock }
	return c, &clock
}

func TestFreshContextScoresFull(t *testing.T) {
	c, _ := fixedContext(100)

	if got := c.TrustScore(); got != 100 {
		t.Errorf("TrustScore = %v, want 100 for a fresh dataset", got)
	}
	if c.ID == "" {
		t.Error("context must carry an id")
	}
	if c.CurrentRows() != 100 {
		t.Errorf("CurrentRows = %d, want 100", c.CurrentRows())
	}
}

func TestTransformationPenalty(t *testing.T) {
	c, _ := fixedContext(100)
	c.Record("clean:missing", "filled 3 cells", 100, 100)
	c.Record("clean:invalid", "coerced 1 cell", 100, 100)

	if got := c.TrustScore(); got != 96 {
		t.Errorf("TrustScore = %v, want 96 after two transformations", got)
	}

	// Twenty more steps would cost 44 points uncapped; the cap holds
	// the transformation penalty at 30.
	for i := 0; i < 20; i++ {
		c.Record("filter", "", 100, 100)
	}
	if got := c.TrustScore(); got != 70 {
		t.Errorf("TrustScore = %v, want the penalty capped at 30", got)
	}
}

func TestAgePenaltyStartsAfterGrace(t *testing.T) {
	c, clock := fixedContext(100)

	*clock = c.LoadedAt.Add(6 * 24 * time.Hour)
	if got := c.TrustScore(); got != 100 {
		t.Errorf("TrustScore = %v, want no age penalty inside the grace week", got)
	}

	*clock = c.LoadedAt.Add(10 * 24 * time.Hour)
	if got := c.TrustScore(); got != 97 {
		t.Errorf("TrustScore = %v, want 3 days past grace to cost 3 points", got)
	}

	*clock = c.LoadedAt.Add(365 * 24 * time.Hour)
	if got := c.TrustScore(); got != 75 {
		t.Errorf("TrustScore = %v, want the age penalty capped at 25", got)
	}
}

func TestRowLossPenalty(t *testing.T) {
	c, _ := fixedContext(100)
	c.Record("dedupe", "", 100, 90)

	// One transformation (2) plus ten percent row loss (10).
	if got := c.TrustScore(); got != 88 {
		t.Errorf("TrustScore = %v, want 88", got)
	}

	c2, _ := fixedContext(100)
	c2.Record("filter", "", 100, 10)
	// 90% loss caps at 30, plus 2 for the step.
	if got := c2.TrustScore(); got != 68 {
		t.Errorf("TrustScore = %v, want row loss capped at 30", got)
	}
}

func TestTrustScoreWorstCase(t *testing.T) {
	c, clock := fixedContext(100)
	for i := 0; i < 20; i++ {
		c.Record("step", "", 100, 5)
	}
	*clock = c.LoadedAt.Add(100 * 24 * time.Hour)

	// All three caps together cost 85, so the worst case is 15.
	if got := c.TrustScore(); got != 15 {
		t.Errorf("TrustScore = %v, want 15 with every penalty maxed", got)
	}
	if got := c.TrustScore(); got < 0 {
		t.Errorf("TrustScore = %v, must never be negative", got)
	}
}

func TestCurrentRowsTracksLastStep(t *testing.T) {
	c, _ := fixedContext(50)
	c.Record("a", "", 50, 40)
	c.Record("b", "", 40, 35)

	if c.CurrentRows() != 35 {
		t.Errorf("CurrentRows = %d, want 35", c.CurrentRows())
	}
}
