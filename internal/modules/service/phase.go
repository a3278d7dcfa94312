package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fieldcost/fieldcost/internal/engine"
	"github.com/fieldcost/fieldcost/internal/modules/model"
	"github.com/fieldcost/fieldcost/internal/modules/repo"
	"github.com/fieldcost/fieldcost/internal/pkg/dates"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CreatePhaseInput struct {
	ProjectID uuid.UUID
	StartDate *dates.Date `json:"start_date,omitempty"`
	EndDate   *dates.Date `json:"end_date,omitempty"`
	IsEnabled *bool       `json:"is_enabled,omitempty"`
}

type UpdatePhaseInput struct {
	ProjectID uuid.UUID
	PhaseID   uuid.UUID
	StartDate *dates.Date `json:"start_date,omitempty"`
	EndDate   *dates.Date `json:"end_date,omitempty"`
	IsEnabled *bool       `json:"is_enabled,omitempty"`
}

// PhaseView pairs a phase with the figures aggregated for it.
type PhaseView struct {
	Phase   model.Phase          `json:"phase"`
	Figures *engine.PhaseFigures `json:"figures,omitempty"`
}

type PhaseService interface {
	Create(ctx context.Context, in CreatePhaseInput, actor *model.User) (*model.Phase, error)
	ListWithFigures(ctx context.Context, projectID uuid.UUID) ([]PhaseView, error)
	Update(ctx context.Context, in UpdatePhaseInput, actor *model.User) (*model.Phase, error)
	Delete(ctx context.Context, projectID, phaseID uuid.UUID, actor *model.User) error
}

type phaseService struct {
	phases    repo.PhaseRepo
	reconcile ReconcileService
	cache     FiguresCache
	log       *zap.Logger
	now       func() time.Time
}

func NewPhaseService(phases repo.PhaseRepo, reconcile ReconcileService, cache FiguresCache, log *zap.Logger, now func() time.Time) PhaseService {
	if now == nil {
		now = time.Now
	}
	return &phaseService{phases: phases, reconcile: reconcile, cache: cache, log: log, now: now}
}

func (s *phaseService) Create(ctx context.Context, in CreatePhaseInput, actor *model.User) (*model.Phase, error) {
	if actor == nil || !actor.IsAdmin() {
		return nil, ErrNotAuthorized
	}

	phase := &model.Phase{
		ProjectID: in.ProjectID,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		IsEnabled: true,
	}
	if in.IsEnabled != nil {
		phase.IsEnabled = *in.IsEnabled
	}

	// Numbering is assigned inside the repo transaction.
	if err := s.phases.Create(ctx, phase); err != nil {
		return nil, fmt.Errorf("create phase: %w", err)
	}
	if err := s.cache.Invalidate(ctx, in.ProjectID); err != nil {
		s.log.Sugar().Debugw("figures cache invalidate failed", "project_id", in.ProjectID, "err", err)
	}
	s.log.Sugar().Infow("phase created",
		"project_id", in.ProjectID, "phase_id", phase.ID, "phase_number", phase.PhaseNumber)
	return phase, nil
}

// ListWithFigures is the phase-load read path: it runs a reconciliation
// pass and decorates each phase with its aggregated figures.
func (s *phaseService) ListWithFigures(ctx context.Context, projectID uuid.UUID) ([]PhaseView, error) {
	res, err := s.reconcile.ReconcileProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	phases, err := s.phases.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load phases: %w", err)
	}

	views := make([]PhaseView, 0, len(phases))
	for _, p := range phases {
		views = append(views, PhaseView{Phase: p, Figures: res.Figures.Phase(p.ID)})
	}
	return views, nil
}

func (s *phaseService) Update(ctx context.Context, in UpdatePhaseInput, actor *model.User) (*model.Phase, error) {
	if actor == nil || !actor.IsAdmin() {
		return nil, ErrNotAuthorized
	}

	phase, err := s.phases.Get(ctx, in.ProjectID, in.PhaseID)
	if err != nil {
		return nil, err
	}
	if in.StartDate != nil {
		phase.StartDate = in.StartDate
	}
	if in.EndDate != nil {
		phase.EndDate = in.EndDate
	}
	if in.IsEnabled != nil {
		phase.IsEnabled = *in.IsEnabled
	}
	if err := s.phases.Update(ctx, phase); err != nil {
		return nil, fmt.Errorf("update phase: %w", err)
	}
	if err := s.cache.Invalidate(ctx, in.ProjectID); err != nil {
		s.log.Sugar().Debugw("figures cache invalidate failed", "project_id", in.ProjectID, "err", err)
	}
	return phase, nil
}

// Delete removes a phase and closes the numbering gap behind it.
func (s *phaseService) Delete(ctx context.Context, projectID, phaseID uuid.UUID, actor *model.User) error {
	if actor == nil || !actor.IsAdmin() {
		return ErrNotAuthorized
	}
	if err := s.phases.Delete(ctx, projectID, phaseID); err != nil {
		return fmt.Errorf("delete phase: %w", err)
	}
	if err := s.cache.Invalidate(ctx, projectID); err != nil {
		s.log.Sugar().Debugw("figures cache invalidate failed", "project_id", projectID, "err", err)
	}
	s.log.Sugar().Infow("phase deleted", "project_id", projectID, "phase_id", phaseID)
	return nil
}
