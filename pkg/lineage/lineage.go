// Package lineage tracks how a dataset was derived: the source it was
// loaded from and every transformation applied since. A Context is
// constructed per dataset and passed explicitly; there is no shared
// tracker instance.
package lineage

import (
	"time"

	"github.com/google/uuid"
)

// Transformation is one recorded step.
type Transformation struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Detail     string    `json:"detail,omitempty"`
	RowsBefore int       `json:"rows_before"`
	RowsAfter  int       `json:"rows_after"`
	At         time.Time `json:"at"`
}

// Context is the lineage record for one dataset.
type Context struct {
	ID              string           `json:"id"`
	Source          string           `json:"source"`
	LoadedAt        time.Time        `json:"loaded_at"`
	OriginalRows    int              `json:"original_rows"`
	Transformations []Transformation `json:"transformations"`

	now func() time.Time
}

// NewContext starts tracking a freshly loaded dataset.
func NewContext(source string, rows int) *Context {
	return &Context{
		ID:           uuid.New().String(),
		Source:       source,
		LoadedAt:     time.Now(),
		OriginalRows: rows,
		now:          time.Now,
	}
}

// Record appends a transformation step.
func (c *Context) Record(kind, detail string, rowsBefore, rowsAfter int) {
	c.Transformations = append(c.Transformations, Transformation{
		ID:         uuid.New().String(),
		Kind:       kind,
		Detail:     detail,
		RowsBefore: rowsBefore,
		RowsAfter:  rowsAfter,
		At:         c.now(),
	})
}

// CurrentRows returns the row count after the last transformation, or
// the original count when nothing has been applied.
func (c *Context) CurrentRows() int {
	if n := len(c.Transformations); n > 0 {
		return c.Transformations[n-1].RowsAfter
	}
	return c.OriginalRows
}

// Trust score penalties. Each source of doubt is capped so no single
// factor can zero the score on its own.
const (
	transformPenalty    = 2.0
	transformPenaltyCap = 30.0
	ageGraceDays        = 7.0
	agePenaltyPerDay    = 1.0
	agePenaltyCap       = 25.0
	rowLossPenaltyCap   = 30.0
)

// TrustScore grades how much the current dataset can be trusted
// relative to its source, from 100 (fresh, untouched) down to 0.
// Every transformation, every day of staleness beyond a week, and
// every percent of dropped rows costs points.
func (c *Context) TrustScore() float64 {
	score := 100.0

	score -= capAt(float64(len(c.Transformations))*transformPenalty, transformPenaltyCap)

	days := c.now().Sub(c.LoadedAt).Hours() / 24
	if days > ageGraceDays {
		score -= capAt((days-ageGraceDays)*agePenaltyPerDay, agePenaltyCap)
	}

	if c.OriginalRows > 0 {
		lost := float64(c.OriginalRows-c.CurrentRows()) / float64(c.OriginalRows) * 100
		if lost > 0 {
			score -= capAt(lost, rowLossPenaltyCap)
		}
	}

	if score < 0 {
		return 0
	}
	return score
}

func capAt(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	return v
}
