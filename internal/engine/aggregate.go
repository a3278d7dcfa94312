package engine

import (
	"sort"
	"sync"

	"github.com/fieldcost/fieldcost/internal/pkg/dates"
	"github.com/google/uuid"
)

// DepartmentFigures are the aggregated numbers for one budget bucket.
// Remaining may be negative: overspend is representable, not an error.
type DepartmentFigures struct {
	Key       string  `json:"key"`
	Name      string  `json:"name"`
	Allocated float64 `json:"allocated"`
	Approved  float64 `json:"approved"`
	Remaining float64 `json:"remaining"`
}

// PhaseFigures are the aggregated numbers for one phase. Degraded marks
// figures derived from the legacy phase-level budget map because the
// department detail was unavailable; degraded figures carry no
// per-department breakdown.
type PhaseFigures struct {
	PhaseID     uuid.UUID                    `json:"phase_id"`
	Number      int                          `json:"phase_number"`
	TotalBudget float64                      `json:"total_budget"`
	Approved    float64                      `json:"approved"`
	Remaining   float64                      `json:"remaining"`
	Active      bool                         `json:"active"`
	Degraded    bool                         `json:"degraded"`
	Departments map[string]DepartmentFigures `json:"departments,omitempty"`
}

// ProjectFigures roll the phase figures up to the project.
type ProjectFigures struct {
	TotalBudget    float64        `json:"total_budget"`
	Approved       float64        `json:"approved"`
	Remaining      float64        `json:"remaining"`
	AnyPhaseActive bool           `json:"any_phase_active"`
	Degraded       bool           `json:"degraded"`
	Phases         []PhaseFigures `json:"phases"`
}

// Department looks up the figures for a department key within the
// project's phases. Returns nil when unknown or when the owning phase is
// degraded.
func (f ProjectFigures) Department(key string) *DepartmentFigures {
	for i := range f.Phases {
		if d, ok := f.Phases[i].Departments[key]; ok {
			return &d
		}
	}
	return nil
}

// Phase looks up the figures for one phase by id.
func (f ProjectFigures) Phase(id uuid.UUID) *PhaseFigures {
	for i := range f.Phases {
		if f.Phases[i].PhaseID == id {
			return &f.Phases[i]
		}
	}
	return nil
}

// AggregatePhase computes the figures for a single phase from its
// snapshot and the project's approved expenses. Pure: no side effects,
// inputs are never mutated.
//
// Expenses belonging to other phases are ignored. An expense whose
// department key matches no department in this phase still counts toward
// the phase total, but is excluded from every department bucket.
func AggregatePhase(p PhaseSnapshot, expenses []ExpenseSnapshot, today dates.Date) PhaseFigures {
	fig := PhaseFigures{
		PhaseID: p.ID,
		Number:  p.Number,
		Active:  p.ActiveOn(today),
	}

	if !p.DepartmentsLoaded {
		// Legacy fallback: only a flat phase-level figure is possible.
		fig.Degraded = true
		for _, amount := range p.LegacyBudgets {
			fig.TotalBudget += amount
		}
		for _, e := range expenses {
			if e.PhaseID == nil || *e.PhaseID != p.ID {
				continue
			}
			fig.Approved += e.Amount
		}
		fig.Remaining = fig.TotalBudget - fig.Approved
		return fig
	}

	fig.Departments = make(map[string]DepartmentFigures, len(p.Departments))
	for _, d := range p.Departments {
		fig.TotalBudget += d.Allocated
		fig.Departments[d.Key] = DepartmentFigures{
			Key:       d.Key,
			Name:      d.Name,
			Allocated: d.Allocated,
			Remaining: d.Allocated,
		}
	}

	for _, e := range expenses {
		if e.PhaseID == nil || *e.PhaseID != p.ID {
			continue
		}
		fig.Approved += e.Amount
		if d, ok := fig.Departments[e.DepartmentKey]; ok {
			d.Approved += e.Amount
			d.Remaining = d.Allocated - d.Approved
			fig.Departments[e.DepartmentKey] = d
		}
	}

	fig.Remaining = fig.TotalBudget - fig.Approved
	return fig
}

// AggregateProject fans out one aggregation per phase and joins the
// results. Phases are read-only during the pass and results merge by
// phase id, so there is no shared mutable state and no ordering
// requirement between phases.
//
// Expenses without a phase, or whose phase no longer exists, belong to
// no phase bucket but still count toward the project total; project
// spend never shrinks because a phase was deleted.
func AggregateProject(phases []PhaseSnapshot, expenses []ExpenseSnapshot, today dates.Date) ProjectFigures {
	out := ProjectFigures{Phases: make([]PhaseFigures, len(phases))}

	var wg sync.WaitGroup
	for i := range phases {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out.Phases[i] = AggregatePhase(phases[i], expenses, today)
		}(i)
	}
	wg.Wait()

	sort.Slice(out.Phases, func(i, j int) bool {
		return out.Phases[i].Number < out.Phases[j].Number
	})

	for _, pf := range out.Phases {
		out.TotalBudget += pf.TotalBudget
		out.Approved += pf.Approved
		if pf.Active {
			out.AnyPhaseActive = true
		}
		if pf.Degraded {
			out.Degraded = true
		}
	}

	known := make(map[uuid.UUID]struct{}, len(phases))
	for i := range phases {
		known[phases[i].ID] = struct{}{}
	}
	for _, e := range expenses {
		if e.PhaseID == nil {
			out.Approved += e.Amount
			continue
		}
		if _, ok := known[*e.PhaseID]; !ok {
			out.Approved += e.Amount
		}
	}

	out.Remaining = out.TotalBudget - out.Approved
	return out
}
