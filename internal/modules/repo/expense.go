package repo

import (
	"context"
	"time"

	"github.com/fieldcost/fieldcost/internal/modules/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ExpenseDecision carries the single allowed mutation of a decided
// expense: the approval or rejection itself.
type ExpenseDecision struct {
	Status    string
	DecidedBy uuid.UUID
	Remark    string
	At        time.Time
}

type ExpenseRepo interface {
	Create(ctx context.Context, e *model.Expense) error
	Get(ctx context.Context, projectID, expenseID uuid.UUID) (*model.Expense, error)
	ListByProject(ctx context.Context, projectID uuid.UUID, status string, afterCreatedAt time.Time, afterID uuid.UUID, limit int) ([]*model.Expense, error)
	ListApproved(ctx context.Context, projectID uuid.UUID) ([]model.Expense, error)
	Decide(ctx context.Context, projectID, expenseID uuid.UUID, d ExpenseDecision) error
}

type expenseRepo struct{ db *gorm.DB }

func NewExpenseRepo(db *gorm.DB) ExpenseRepo {
	return &expenseRepo{db: db}
}

func (r *expenseRepo) Create(ctx context.Context, e *model.Expense) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *expenseRepo) Get(ctx context.Context, projectID, expenseID uuid.UUID) (*model.Expense, error) {
	var e model.Expense
	return &e, r.db.WithContext(ctx).
		Where("id = ? AND project_id = ?", expenseID, projectID).
		First(&e).Error
}

func (r *expenseRepo) ListByProject(ctx context.Context, projectID uuid.UUID, status string, afterCreatedAt time.Time, afterID uuid.UUID, limit int) ([]*model.Expense, error) {
	q := r.db.WithContext(ctx).Where("project_id = ?", projectID)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	if !afterCreatedAt.IsZero() && afterID != uuid.Nil {
		q = q.Where("(created_at < ?) OR (created_at = ? AND id < ?)", afterCreatedAt, afterCreatedAt, afterID)
	}

	var expenses []*model.Expense
	return expenses, q.Order("created_at DESC, id DESC").Limit(limit).Find(&expenses).Error
}

// ListApproved feeds the budget aggregator: only approved expenses
// participate in totals.
func (r *expenseRepo) ListApproved(ctx context.Context, projectID uuid.UUID) ([]model.Expense, error) {
	var expenses []model.Expense
	return expenses, r.db.WithContext(ctx).
		Where("project_id = ? AND status = ?", projectID, model.ExpenseApproved).
		Find(&expenses).Error
}

// Decide applies the one-shot approval or rejection. The WHERE on the
// pending status makes the mutation exactly-once: a second decision
// finds zero rows and reports ErrAlreadyDecided.
func (r *expenseRepo) Decide(ctx context.Context, projectID, expenseID uuid.UUID, d ExpenseDecision) error {
	updates := map[string]interface{}{
		"status":     d.Status,
		"remark":     d.Remark,
		"decided_at": d.At,
	}
	switch d.Status {
	case model.ExpenseApproved:
		updates["approved_by"] = d.DecidedBy
	case model.ExpenseRejected:
		updates["rejected_by"] = d.DecidedBy
	}

	res := r.db.WithContext(ctx).
		Model(&model.Expense{}).
		Where("id = ? AND project_id = ? AND status = ?", expenseID, projectID, model.ExpensePending).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyDecided
	}
	return nil
}
