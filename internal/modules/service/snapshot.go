package service

import (
	"github.com/fieldcost/fieldcost/internal/engine"
	"github.com/fieldcost/fieldcost/internal/modules/model"
)

// phaseSnapshot builds the engine's immutable view of a phase.
// departments carries the loaded sub-entities; loaded=false marks a
// failed or unavailable department read, which the aggregator treats as
// degraded data.
func phaseSnapshot(p model.Phase, departments []model.Department, loaded bool) engine.PhaseSnapshot {
	snap := engine.PhaseSnapshot{
		ID:                p.ID,
		Number:            p.PhaseNumber,
		StartDate:         p.StartDate,
		EndDate:           p.EndDate,
		Enabled:           p.IsEnabled,
		DepartmentsLoaded: loaded,
		LegacyBudgets:     p.LegacyBudgets.Data(),
	}
	for i := range departments {
		d := &departments[i]
		snap.Departments = append(snap.Departments, engine.DepartmentSnapshot{
			Key:       d.Key(),
			Name:      d.Name,
			Allocated: d.AllocatedBudget(),
		})
	}
	return snap
}

func expenseSnapshots(expenses []model.Expense) []engine.ExpenseSnapshot {
	out := make([]engine.ExpenseSnapshot, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, engine.ExpenseSnapshot{
			ID:            e.ID,
			PhaseID:       e.PhaseID,
			DepartmentKey: e.DepartmentKey,
			Amount:        e.Amount,
		})
	}
	return out
}
