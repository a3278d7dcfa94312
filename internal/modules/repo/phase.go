package repo

import (
	"context"
	"fmt"

	"github.com/fieldcost/fieldcost/internal/modules/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PhaseRepo interface {
	Create(ctx context.Context, p *model.Phase) error
	Get(ctx context.Context, projectID, phaseID uuid.UUID) (*model.Phase, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.Phase, error)
	Update(ctx context.Context, p *model.Phase) error
	Delete(ctx context.Context, projectID, phaseID uuid.UUID) error
}

type phaseRepo struct{ db *gorm.DB }

func NewPhaseRepo(db *gorm.DB) PhaseRepo {
	return &phaseRepo{db: db}
}

// Create appends the phase at the end of the project's sequence.
func (r *phaseRepo) Create(ctx context.Context, p *model.Phase) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxNumber int
		err := tx.Model(&model.Phase{}).
			Where("project_id = ?", p.ProjectID).
			Select("COALESCE(MAX(phase_number), 0)").
			Scan(&maxNumber).Error
		if err != nil {
			return fmt.Errorf("next phase number: %w", err)
		}
		p.PhaseNumber = maxNumber + 1
		return tx.Create(p).Error
	})
}

func (r *phaseRepo) Get(ctx context.Context, projectID, phaseID uuid.UUID) (*model.Phase, error) {
	var p model.Phase
	return &p, r.db.WithContext(ctx).
		Where("id = ? AND project_id = ?", phaseID, projectID).
		First(&p).Error
}

func (r *phaseRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.Phase, error) {
	var phases []model.Phase
	return phases, r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("phase_number ASC").
		Find(&phases).Error
}

func (r *phaseRepo) Update(ctx context.Context, p *model.Phase) error {
	return r.db.WithContext(ctx).Where(&model.Phase{ID: p.ID}).Updates(p).Error
}

// Delete removes the phase and renumbers the remaining phases so the
// 1-based sequence stays gapless.
func (r *phaseRepo) Delete(ctx context.Context, projectID, phaseID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var phase model.Phase
		if err := tx.Where("id = ? AND project_id = ?", phaseID, projectID).First(&phase).Error; err != nil {
			return err
		}

		if err := tx.Delete(&phase).Error; err != nil {
			return fmt.Errorf("delete phase: %w", err)
		}

		return tx.Model(&model.Phase{}).
			Where("project_id = ? AND phase_number > ?", projectID, phase.PhaseNumber).
			Update("phase_number", gorm.Expr("phase_number - 1")).Error
	})
}
