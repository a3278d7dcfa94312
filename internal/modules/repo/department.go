package repo

import (
	"context"

	"github.com/fieldcost/fieldcost/internal/modules/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DepartmentRepo interface {
	Create(ctx context.Context, d *model.Department) error
	Get(ctx context.Context, phaseID, departmentID uuid.UUID) (*model.Department, error)
	ListByPhase(ctx context.Context, phaseID uuid.UUID) ([]model.Department, error)
	Update(ctx context.Context, d *model.Department) error
	Delete(ctx context.Context, phaseID, departmentID uuid.UUID) error
}

type departmentRepo struct{ db *gorm.DB }

func NewDepartmentRepo(db *gorm.DB) DepartmentRepo {
	return &departmentRepo{db: db}
}

func (r *departmentRepo) Create(ctx context.Context, d *model.Department) error {
	d.NameKey = model.NormalizeDepartmentName(d.Name)
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *departmentRepo) Get(ctx context.Context, phaseID, departmentID uuid.UUID) (*model.Department, error) {
	var d model.Department
	return &d, r.db.WithContext(ctx).
		Where("id = ? AND phase_id = ?", departmentID, phaseID).
		First(&d).Error
}

func (r *departmentRepo) ListByPhase(ctx context.Context, phaseID uuid.UUID) ([]model.Department, error) {
	var departments []model.Department
	return departments, r.db.WithContext(ctx).
		Where("phase_id = ?", phaseID).
		Order("name_key ASC").
		Find(&departments).Error
}

func (r *departmentRepo) Update(ctx context.Context, d *model.Department) error {
	if d.Name != "" {
		d.NameKey = model.NormalizeDepartmentName(d.Name)
	}
	return r.db.WithContext(ctx).Where(&model.Department{ID: d.ID}).Updates(d).Error
}

func (r *departmentRepo) Delete(ctx context.Context, phaseID, departmentID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND phase_id = ?", departmentID, phaseID).
		Delete(&model.Department{}).Error
}
