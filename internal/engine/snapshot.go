package engine

import (
	"github.com/fieldcost/fieldcost/internal/pkg/dates"
	"github.com/google/uuid"
)

// DepartmentSnapshot is the immutable view of a department the engine
// aggregates over. Key is phase-scoped (phase id + department name) so
// same-named departments in different phases never collide.
type DepartmentSnapshot struct {
	Key       string
	Name      string
	Allocated float64
}

// PhaseSnapshot is the immutable view of a phase at aggregation time.
// DepartmentsLoaded is false when the department detail failed to load
// or the phase predates departments entirely (no rows, only the legacy
// phase-level budget map); either way aggregation falls back to
// LegacyBudgets and the figures are marked degraded.
type PhaseSnapshot struct {
	ID                uuid.UUID
	Number            int
	StartDate         *dates.Date
	EndDate           *dates.Date
	Enabled           bool
	Departments       []DepartmentSnapshot
	DepartmentsLoaded bool
	LegacyBudgets     map[string]float64
}

// ActiveOn reports whether the phase timeline contains the given day.
// A missing bound is unbounded on that side; a disabled phase is never
// active regardless of its window.
func (p PhaseSnapshot) ActiveOn(today dates.Date) bool {
	if !p.Enabled {
		return false
	}
	return dates.InWindow(today, p.StartDate, p.EndDate)
}

// ExpenseSnapshot is the slice of an approved expense the aggregator
// needs. Only approved expenses may be passed to the aggregator.
type ExpenseSnapshot struct {
	ID            uuid.UUID
	PhaseID       *uuid.UUID
	DepartmentKey string
	Amount        float64
}
