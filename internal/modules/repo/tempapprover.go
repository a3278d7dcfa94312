package repo

import (
	"context"

	"github.com/fieldcost/fieldcost/internal/modules/model"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TempApproverRepo interface {
	Create(ctx context.Context, t *model.TempApprover) error
	Get(ctx context.Context, projectID, approverID uuid.UUID) (*model.TempApprover, error)
	UpdateStatus(ctx context.Context, projectID, approverID uuid.UUID, status string, reason *string) error
	AppendApprovedExpense(ctx context.Context, projectID, approverID, expenseID uuid.UUID) error
}

type tempApproverRepo struct{ db *gorm.DB }

func NewTempApproverRepo(db *gorm.DB) TempApproverRepo {
	return &tempApproverRepo{db: db}
}

// Create starts a fresh delegation. Re-assigning the same approver to a
// project replaces the old terminal record wholesale.
func (r *tempApproverRepo) Create(ctx context.Context, t *model.TempApprover) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "project_id"}, {Name: "approver_id"}},
		UpdateAll: true,
	}).Create(t).Error
}

func (r *tempApproverRepo) Get(ctx context.Context, projectID, approverID uuid.UUID) (*model.TempApprover, error) {
	var t model.TempApprover
	return &t, r.db.WithContext(ctx).
		Where("project_id = ? AND approver_id = ?", projectID, approverID).
		First(&t).Error
}

func (r *tempApproverRepo) UpdateStatus(ctx context.Context, projectID, approverID uuid.UUID, status string, reason *string) error {
	updates := map[string]interface{}{"status": status}
	if reason != nil {
		updates["reject_reason"] = *reason
	}
	return r.db.WithContext(ctx).
		Model(&model.TempApprover{}).
		Where("project_id = ? AND approver_id = ?", projectID, approverID).
		Updates(updates).Error
}

func (r *tempApproverRepo) AppendApprovedExpense(ctx context.Context, projectID, approverID, expenseID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t model.TempApprover
		if err := tx.Where("project_id = ? AND approver_id = ?", projectID, approverID).First(&t).Error; err != nil {
			return err
		}
		t.ApprovedExpenses = append(t.ApprovedExpenses, expenseID)
		return tx.Model(&t).Update("approved_expenses", datatypes.JSONSlice[uuid.UUID](t.ApprovedExpenses)).Error
	})
}
