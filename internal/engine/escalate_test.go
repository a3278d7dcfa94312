package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequiresAdmin(t *testing.T) {
	dept := func(allocated, approved float64) *DepartmentFigures {
		return &DepartmentFigures{
			Key:       "p1_electrical",
			Allocated: allocated,
			Approved:  approved,
			Remaining: allocated - approved,
		}
	}

	tests := []struct {
		name   string
		amount float64
		phase  PhaseFigures
		dept   *DepartmentFigures
		want   bool
	}{
		{
			name:   "zero phase budget always escalates",
			amount: 1,
			phase:  PhaseFigures{TotalBudget: 0, Remaining: 0},
			dept:   dept(1000, 0),
			want:   true,
		},
		{
			name:   "amount over phase remaining escalates",
			amount: 600,
			phase:  PhaseFigures{TotalBudget: 10000, Approved: 9500, Remaining: 500},
			dept:   dept(10000, 9500),
			want:   true,
		},
		{
			name:   "zero department allocation escalates",
			amount: 1,
			phase:  PhaseFigures{TotalBudget: 10000, Remaining: 10000},
			dept:   dept(0, 0),
			want:   true,
		},
		{
			name:   "amount over department remaining escalates",
			amount: 600,
			phase:  PhaseFigures{TotalBudget: 20000, Approved: 9500, Remaining: 10500},
			dept:   dept(10000, 9500),
			want:   true,
		},
		{
			name:   "amount equal to department remaining does not escalate",
			amount: 500,
			phase:  PhaseFigures{TotalBudget: 20000, Approved: 9500, Remaining: 10500},
			dept:   dept(10000, 9500),
			want:   false,
		},
		{
			name:   "amount equal to phase remaining does not escalate",
			amount: 500,
			phase:  PhaseFigures{TotalBudget: 10000, Approved: 9500, Remaining: 500},
			dept:   dept(10000, 9500),
			want:   false,
		},
		{
			name:   "comfortably inside both budgets",
			amount: 100,
			phase:  PhaseFigures{TotalBudget: 10000, Approved: 1000, Remaining: 9000},
			dept:   dept(5000, 1000),
			want:   false,
		},
		{
			name:   "missing department figures treated as zero bucket",
			amount: 1,
			phase:  PhaseFigures{TotalBudget: 10000, Remaining: 10000},
			dept:   nil,
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RequiresAdmin(tt.amount, tt.phase, tt.dept))
		})
	}
}
