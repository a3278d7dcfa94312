package service

import (
	"context"
	"time"

	"github.com/fieldcost/fieldcost/internal/engine"
	"github.com/fieldcost/fieldcost/internal/modules/model"
	"github.com/fieldcost/fieldcost/internal/modules/repo"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockProjectRepo struct{ mock.Mock }

func (m *mockProjectRepo) Create(ctx context.Context, p *model.Project) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProjectRepo) Get(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*model.Project); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProjectRepo) ListWithCursor(ctx context.Context, afterCreatedAt time.Time, afterID uuid.UUID, limit int, timeDesc bool) ([]*model.Project, error) {
	args := m.Called(ctx, afterCreatedAt, afterID, limit, timeDesc)
	if ps, ok := args.Get(0).([]*model.Project); ok {
		return ps, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProjectRepo) Update(ctx context.Context, p *model.Project) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProjectRepo) UpdateStatusIfCurrent(ctx context.Context, id uuid.UUID, expected, next string, at time.Time) error {
	return m.Called(ctx, id, expected, next, at).Error(0)
}

func (m *mockProjectRepo) SetSuspension(ctx context.Context, id uuid.UUID, suspended bool, fields map[string]interface{}) error {
	return m.Called(ctx, id, suspended, fields).Error(0)
}

func (m *mockProjectRepo) SetTempApprover(ctx context.Context, id uuid.UUID, approverID *uuid.UUID) error {
	return m.Called(ctx, id, approverID).Error(0)
}

type mockPhaseRepo struct{ mock.Mock }

func (m *mockPhaseRepo) Create(ctx context.Context, p *model.Phase) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockPhaseRepo) Get(ctx context.Context, projectID, phaseID uuid.UUID) (*model.Phase, error) {
	args := m.Called(ctx, projectID, phaseID)
	if p, ok := args.Get(0).(*model.Phase); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPhaseRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.Phase, error) {
	args := m.Called(ctx, projectID)
	if ps, ok := args.Get(0).([]model.Phase); ok {
		return ps, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPhaseRepo) Update(ctx context.Context, p *model.Phase) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockPhaseRepo) Delete(ctx context.Context, projectID, phaseID uuid.UUID) error {
	return m.Called(ctx, projectID, phaseID).Error(0)
}

type mockDepartmentRepo struct{ mock.Mock }

func (m *mockDepartmentRepo) Create(ctx context.Context, d *model.Department) error {
	return m.Called(ctx, d).Error(0)
}

func (m *mockDepartmentRepo) Get(ctx context.Context, phaseID, departmentID uuid.UUID) (*model.Department, error) {
	args := m.Called(ctx, phaseID, departmentID)
	if d, ok := args.Get(0).(*model.Department); ok {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDepartmentRepo) ListByPhase(ctx context.Context, phaseID uuid.UUID) ([]model.Department, error) {
	args := m.Called(ctx, phaseID)
	if ds, ok := args.Get(0).([]model.Department); ok {
		return ds, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDepartmentRepo) Update(ctx context.Context, d *model.Department) error {
	return m.Called(ctx, d).Error(0)
}

func (m *mockDepartmentRepo) Delete(ctx context.Context, phaseID, departmentID uuid.UUID) error {
	return m.Called(ctx, phaseID, departmentID).Error(0)
}

type mockExpenseRepo struct{ mock.Mock }

func (m *mockExpenseRepo) Create(ctx context.Context, e *model.Expense) error {
	return m.Called(ctx, e).Error(0)
}

func (m *mockExpenseRepo) Get(ctx context.Context, projectID, expenseID uuid.UUID) (*model.Expense, error) {
	args := m.Called(ctx, projectID, expenseID)
	if e, ok := args.Get(0).(*model.Expense); ok {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockExpenseRepo) ListByProject(ctx context.Context, projectID uuid.UUID, status string, afterCreatedAt time.Time, afterID uuid.UUID, limit int) ([]*model.Expense, error) {
	args := m.Called(ctx, projectID, status, afterCreatedAt, afterID, limit)
	if es, ok := args.Get(0).([]*model.Expense); ok {
		return es, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockExpenseRepo) ListApproved(ctx context.Context, projectID uuid.UUID) ([]model.Expense, error) {
	args := m.Called(ctx, projectID)
	if es, ok := args.Get(0).([]model.Expense); ok {
		return es, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockExpenseRepo) Decide(ctx context.Context, projectID, expenseID uuid.UUID, d repo.ExpenseDecision) error {
	return m.Called(ctx, projectID, expenseID, d).Error(0)
}

type mockTempApproverRepo struct{ mock.Mock }

func (m *mockTempApproverRepo) Create(ctx context.Context, t *model.TempApprover) error {
	return m.Called(ctx, t).Error(0)
}

func (m *mockTempApproverRepo) Get(ctx context.Context, projectID, approverID uuid.UUID) (*model.TempApprover, error) {
	args := m.Called(ctx, projectID, approverID)
	if t, ok := args.Get(0).(*model.TempApprover); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTempApproverRepo) UpdateStatus(ctx context.Context, projectID, approverID uuid.UUID, status string, reason *string) error {
	return m.Called(ctx, projectID, approverID, status, reason).Error(0)
}

func (m *mockTempApproverRepo) AppendApprovedExpense(ctx context.Context, projectID, approverID, expenseID uuid.UUID) error {
	return m.Called(ctx, projectID, approverID, expenseID).Error(0)
}

type mockFiguresCache struct{ mock.Mock }

func (m *mockFiguresCache) Get(ctx context.Context, projectID uuid.UUID) (*engine.ProjectFigures, error) {
	args := m.Called(ctx, projectID)
	if f, ok := args.Get(0).(*engine.ProjectFigures); ok {
		return f, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFiguresCache) Set(ctx context.Context, projectID uuid.UUID, f engine.ProjectFigures) error {
	return m.Called(ctx, projectID, f).Error(0)
}

func (m *mockFiguresCache) Invalidate(ctx context.Context, projectID uuid.UUID) error {
	return m.Called(ctx, projectID).Error(0)
}

// noopCache is for tests where caching is incidental.
type noopCache struct{}

func (noopCache) Get(context.Context, uuid.UUID) (*engine.ProjectFigures, error) { return nil, nil }
func (noopCache) Set(context.Context, uuid.UUID, engine.ProjectFigures) error    { return nil }
func (noopCache) Invalidate(context.Context, uuid.UUID) error                    { return nil }

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishJSON(ctx context.Context, payload interface{}) error {
	return m.Called(ctx, payload).Error(0)
}

type mockReconcileService struct{ mock.Mock }

func (m *mockReconcileService) ReconcileProject(ctx context.Context, projectID uuid.UUID) (*ReconcileResult, error) {
	args := m.Called(ctx, projectID)
	if r, ok := args.Get(0).(*ReconcileResult); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockReconcileService) ReconcileProjects(ctx context.Context, projects []*model.Project) {
	m.Called(ctx, projects)
}

func (m *mockReconcileService) CachedFigures(ctx context.Context, projectID uuid.UUID) (*engine.ProjectFigures, error) {
	args := m.Called(ctx, projectID)
	if f, ok := args.Get(0).(*engine.ProjectFigures); ok {
		return f, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockApproverService struct{ mock.Mock }

func (m *mockApproverService) Assign(ctx context.Context, in AssignApproverInput) (*DelegationView, error) {
	args := m.Called(ctx, in)
	if v, ok := args.Get(0).(*DelegationView); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockApproverService) Get(ctx context.Context, projectID, approverID uuid.UUID) (*DelegationView, error) {
	args := m.Called(ctx, projectID, approverID)
	if v, ok := args.Get(0).(*DelegationView); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockApproverService) Accept(ctx context.Context, projectID uuid.UUID, actor *model.User) (*DelegationView, error) {
	args := m.Called(ctx, projectID, actor)
	if v, ok := args.Get(0).(*DelegationView); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockApproverService) Reject(ctx context.Context, projectID uuid.UUID, actor *model.User, reason string) error {
	return m.Called(ctx, projectID, actor, reason).Error(0)
}

func (m *mockApproverService) ReconcileDelegation(ctx context.Context, project *model.Project, now time.Time) (bool, error) {
	args := m.Called(ctx, project, now)
	return args.Bool(0), args.Error(1)
}

func (m *mockApproverService) HasApprovalAuthority(ctx context.Context, project *model.Project, userID uuid.UUID, now time.Time) (bool, error) {
	args := m.Called(ctx, project, userID, now)
	return args.Bool(0), args.Error(1)
}

func (m *mockApproverService) AppendApprovedExpense(ctx context.Context, projectID, approverID, expenseID uuid.UUID) error {
	return m.Called(ctx, projectID, approverID, expenseID).Error(0)
}
