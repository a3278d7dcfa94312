package repo

import (
	"context"
	"time"

	"github.com/fieldcost/fieldcost/internal/modules/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectRepo interface {
	Create(ctx context.Context, p *model.Project) error
	Get(ctx context.Context, id uuid.UUID) (*model.Project, error)
	ListWithCursor(ctx context.Context, afterCreatedAt time.Time, afterID uuid.UUID, limit int, timeDesc bool) ([]*model.Project, error)
	Update(ctx context.Context, p *model.Project) error
	UpdateStatusIfCurrent(ctx context.Context, id uuid.UUID, expected, next string, at time.Time) error
	SetSuspension(ctx context.Context, id uuid.UUID, suspended bool, fields map[string]interface{}) error
	SetTempApprover(ctx context.Context, id uuid.UUID, approverID *uuid.UUID) error
}

type projectRepo struct{ db *gorm.DB }

func NewProjectRepo(db *gorm.DB) ProjectRepo {
	return &projectRepo{db: db}
}

func (r *projectRepo) Create(ctx context.Context, p *model.Project) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *projectRepo) Get(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var p model.Project
	return &p, r.db.WithContext(ctx).Where(&model.Project{ID: id}).First(&p).Error
}

func (r *projectRepo) ListWithCursor(ctx context.Context, afterCreatedAt time.Time, afterID uuid.UUID, limit int, timeDesc bool) ([]*model.Project, error) {
	q := r.db.WithContext(ctx)

	if !afterCreatedAt.IsZero() && afterID != uuid.Nil {
		comparisonOp := ">"
		if timeDesc {
			comparisonOp = "<"
		}
		q = q.Where(
			"(created_at "+comparisonOp+" ?) OR (created_at = ? AND id "+comparisonOp+" ?)",
			afterCreatedAt, afterCreatedAt, afterID,
		)
	}

	orderBy := "created_at ASC, id ASC"
	if timeDesc {
		orderBy = "created_at DESC, id DESC"
	}

	var projects []*model.Project
	return projects, q.Order(orderBy).Limit(limit).Find(&projects).Error
}

func (r *projectRepo) Update(ctx context.Context, p *model.Project) error {
	return r.db.WithContext(ctx).Where(&model.Project{ID: p.ID}).Updates(p).Error
}

// UpdateStatusIfCurrent is the corrective write of a reconciliation
// pass: it only lands when the stored status still matches what the
// pass read. Zero rows affected means the pass lost a race; the caller
// leaves the correction to the next pass.
func (r *projectRepo) UpdateStatusIfCurrent(ctx context.Context, id uuid.UUID, expected, next string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&model.Project{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(map[string]interface{}{
			"status":            next,
			"status_updated_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStateConflict
	}
	return nil
}

func (r *projectRepo) SetSuspension(ctx context.Context, id uuid.UUID, suspended bool, fields map[string]interface{}) error {
	updates := map[string]interface{}{"is_suspended": suspended}
	for k, v := range fields {
		updates[k] = v
	}
	return r.db.WithContext(ctx).
		Model(&model.Project{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *projectRepo) SetTempApprover(ctx context.Context, id uuid.UUID, approverID *uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.Project{}).
		Where("id = ?", id).
		Update("temp_approver_id", approverID).Error
}
