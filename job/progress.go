package job

import "github.com/xraph/lifecycle"

// Progress tracks a job's work accounting: total and done units plus an
// optional pinned percentage that overrides the computed value.
//
// There is deliberately no done ≤ total enforcement: callers may
// over-report done units and the computed percentage simply exceeds 100.
type Progress struct {
	TotalUnits int `json:"total_units"`
	DoneUnits  int `json:"done_units"`

	// PercentOverride pins the reported percentage until cleared.
	// Nil means the percentage is computed from the unit counts.
	PercentOverride *int `json:"percent_override,omitempty"`
}

// AddTotalUnits increases the total unit count by n.
func (p *Progress) AddTotalUnits(n int) {
	p.TotalUnits += n
}

// AddDoneUnits increases the done unit count by n.
func (p *Progress) AddDoneUnits(n int) {
	p.DoneUnits += n
}

// RemainingUnits returns total minus done.
func (p *Progress) RemainingUnits() int {
	return p.TotalUnits - p.DoneUnits
}

// Percent returns the override when pinned, otherwise the computed
// percentage. A zero total reports 0.
func (p *Progress) Percent() int {
	if p.PercentOverride != nil {
		return *p.PercentOverride
	}
	if p.TotalUnits == 0 {
		return 0
	}
	return p.DoneUnits * 100 / p.TotalUnits
}

// SetPercentOverride pins the reported percentage to v.
// Returns ErrPercentRange unless 0 ≤ v ≤ 100.
func (p *Progress) SetPercentOverride(v int) error {
	if v < 0 || v > 100 {
		return lifecycle.ErrPercentRange
	}
	p.PercentOverride = &v
	return nil
}

// ClearPercentOverride unpins the percentage so it is computed from the
// unit counts again.
func (p *Progress) ClearPercentOverride() {
	p.PercentOverride = nil
}
