package engine

// RequiresAdmin decides whether a candidate expense must carry elevated
// approval. Figures must be aggregated before the candidate is added.
//
// A zero-budget bucket is never implicitly authorized, and any amount
// that would push a bucket negative needs elevated sign-off. The
// comparisons are strictly greater-than: an amount that lands exactly on
// the remaining balance does not escalate.
//
// A nil dept means the target bucket has no loaded figures (degraded
// phase or unknown key); that is treated like a zero-allocated bucket.
func RequiresAdmin(amount float64, phase PhaseFigures, dept *DepartmentFigures) bool {
	if phase.TotalBudget == 0 {
		return true
	}
	if amount > phase.Remaining {
		return true
	}
	if dept == nil || dept.Allocated == 0 {
		return true
	}
	return amount > dept.Remaining
}
