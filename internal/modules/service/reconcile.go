package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fieldcost/fieldcost/internal/engine"
	"github.com/fieldcost/fieldcost/internal/modules/model"
	"github.com/fieldcost/fieldcost/internal/modules/repo"
	"github.com/fieldcost/fieldcost/internal/pkg/dates"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ChangePublisher emits "project-updated" change events so dependent
// views refresh. Satisfied by infra/queue.Publisher.
type ChangePublisher interface {
	PublishJSON(ctx context.Context, payload interface{}) error
}

// FiguresCache holds the last aggregated figures per project. Satisfied
// by infra/cache.FiguresCache. A nil result with nil error is a miss.
type FiguresCache interface {
	Get(ctx context.Context, projectID uuid.UUID) (*engine.ProjectFigures, error)
	Set(ctx context.Context, projectID uuid.UUID, f engine.ProjectFigures) error
	Invalidate(ctx context.Context, projectID uuid.UUID) error
}

// ProjectChangedEvent is the payload published on every corrective write.
type ProjectChangedEvent struct {
	Topic     string    `json:"topic"`
	ProjectID uuid.UUID `json:"project_id"`
	Status    string    `json:"status"`
	At        time.Time `json:"at"`
}

// ReconcileResult is what one pass over a project produced.
type ReconcileResult struct {
	Project *model.Project        `json:"project"`
	Figures engine.ProjectFigures `json:"figures"`
	Changed bool                  `json:"changed"`
}

// ReconcileService is the reconciliation driver: it derives state from
// current data on every relevant read and corrects stored state to
// match. It runs opportunistically, never on a timer.
type ReconcileService interface {
	ReconcileProject(ctx context.Context, projectID uuid.UUID) (*ReconcileResult, error)
	ReconcileProjects(ctx context.Context, projects []*model.Project)
	CachedFigures(ctx context.Context, projectID uuid.UUID) (*engine.ProjectFigures, error)
}

type reconcileService struct {
	projects  repo.ProjectRepo
	phases    repo.PhaseRepo
	deps      repo.DepartmentRepo
	expenses  repo.ExpenseRepo
	approvers TempApproverService
	cache     FiguresCache
	pub       ChangePublisher
	log       *zap.Logger
	now       func() time.Time
}

// NewReconcileService wires the driver. A nil clock means the wall clock.
func NewReconcileService(
	projects repo.ProjectRepo,
	phases repo.PhaseRepo,
	deps repo.DepartmentRepo,
	expenses repo.ExpenseRepo,
	approvers TempApproverService,
	cache FiguresCache,
	pub ChangePublisher,
	log *zap.Logger,
	now func() time.Time,
) ReconcileService {
	if now == nil {
		now = time.Now
	}
	return &reconcileService{
		projects:  projects,
		phases:    phases,
		deps:      deps,
		expenses:  expenses,
		approvers: approvers,
		cache:     cache,
		pub:       pub,
		log:       log,
		now:       now,
	}
}

// ReconcileProject runs one full pass: load, aggregate, derive, correct.
//
// Any read failure abandons the pass before corrective writes happen;
// the previous externally-visible state is retained and the next trigger
// retries. Department reads are the one exception: a failed department
// load degrades that phase to its legacy budget map instead of killing
// the pass.
func (s *reconcileService) ReconcileProject(ctx context.Context, projectID uuid.UUID) (*ReconcileResult, error) {
	now := s.now()
	today := dates.Today(now)

	project, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}

	phases, err := s.phases.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load phases: %w", err)
	}

	approved, err := s.expenses.ListApproved(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load approved expenses: %w", err)
	}

	// Department loads fan out per phase; results land in their slot so
	// phase order is stable.
	snapshots := make([]engine.PhaseSnapshot, len(phases))
	var wg sync.WaitGroup
	for i, phase := range phases {
		wg.Add(1)
		go func(i int, phase model.Phase) {
			defer wg.Done()
			departments, derr := s.deps.ListByPhase(ctx, phase.ID)
			loaded := derr == nil && len(departments) > 0
			if derr != nil {
				s.log.Sugar().Warnw("department load failed, degrading phase to legacy budgets",
					"project_id", projectID, "phase_id", phase.ID, "err", derr)
			}
			snapshots[i] = phaseSnapshot(phase, departments, loaded)
		}(i, phase)
	}
	wg.Wait()

	figures := engine.AggregateProject(snapshots, expenseSnapshots(approved), today)

	changed := false

	// Temporary approver reconciliation: expiry against the clock.
	delegationChanged, err := s.approvers.ReconcileDelegation(ctx, project, now)
	if err != nil {
		s.log.Sugar().Warnw("delegation reconcile failed",
			"project_id", projectID, "err", err)
	}
	changed = changed || delegationChanged

	statusChanged, err := s.reconcileStatus(ctx, project, figures, today, now)
	if err != nil {
		return nil, err
	}
	changed = changed || statusChanged

	if err := s.cache.Set(ctx, projectID, figures); err != nil {
		s.log.Sugar().Warnw("figures cache write failed", "project_id", projectID, "err", err)
	}

	if changed {
		s.publishChanged(ctx, project)
	}

	return &ReconcileResult{Project: project, Figures: figures, Changed: changed}, nil
}

// reconcileStatus applies the project status state machine and issues at
// most one corrective write. Re-running against consistent state writes
// nothing.
func (s *reconcileService) reconcileStatus(ctx context.Context, project *model.Project, figures engine.ProjectFigures, today dates.Date, now time.Time) (bool, error) {
	// Unsuspension lifts before anything else, and only once the
	// suspension date is strictly in the past.
	if project.IsSuspended {
		if project.SuspendedDate != nil && project.SuspendedDate.Before(today) {
			target := engine.UnsuspendTarget(project.PlannedDate, today)
			err := s.projects.SetSuspension(ctx, project.ID, false, map[string]interface{}{
				"suspended_date":    nil,
				"suspension_reason": nil,
				"status":            string(target),
				"status_updated_at": now,
			})
			if err != nil {
				return false, fmt.Errorf("lift suspension: %w", err)
			}
			project.IsSuspended = false
			project.SuspendedDate = nil
			project.SuspensionReason = nil
			project.Status = string(target)
			s.log.Sugar().Infow("suspension lifted",
				"project_id", project.ID, "status", project.Status)
			return true, nil
		}
		// Suspension overrides all automatic transitions.
		return false, nil
	}

	current := project.CurrentStatus()
	next, fire := engine.NextStatus(engine.StatusInput{
		Current:        current,
		Today:          today,
		HandoverDate:   project.HandoverDate,
		Suspended:      project.IsSuspended,
		AnyPhaseActive: figures.AnyPhaseActive,
	})
	if !fire {
		return false, nil
	}

	err := s.projects.UpdateStatusIfCurrent(ctx, project.ID, project.Status, string(next), now)
	if errors.Is(err, repo.ErrStateConflict) {
		// Lost the race against a concurrent write. Leave the correction
		// to the next pass instead of forcing it.
		s.log.Sugar().Infow("status correction skipped on conflict",
			"project_id", project.ID, "expected", project.Status, "derived", next)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("status corrective write: %w", err)
	}

	s.log.Sugar().Infow("project status corrected",
		"project_id", project.ID, "from", current, "to", next)
	project.Status = string(next)
	project.StatusUpdatedAt = now
	return true, nil
}

// ReconcileProjects runs a pass over a batch, e.g. one page of the
// project list. Failures are isolated per project: one bad pass never
// blocks the rest, figures just stay momentarily stale.
func (s *reconcileService) ReconcileProjects(ctx context.Context, projects []*model.Project) {
	for _, p := range projects {
		res, err := s.ReconcileProject(ctx, p.ID)
		if err != nil {
			s.log.Sugar().Warnw("reconcile pass abandoned", "project_id", p.ID, "err", err)
			continue
		}
		// Reflect corrections into the caller's copy.
		*p = *res.Project
	}
}

// CachedFigures serves the last aggregated figures, recomputing through
// a full pass on a cache miss.
func (s *reconcileService) CachedFigures(ctx context.Context, projectID uuid.UUID) (*engine.ProjectFigures, error) {
	figures, err := s.cache.Get(ctx, projectID)
	if err != nil {
		s.log.Sugar().Debugw("figures cache read failed", "project_id", projectID, "err", err)
	}
	if figures != nil {
		return figures, nil
	}

	res, err := s.ReconcileProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return &res.Figures, nil
}

func (s *reconcileService) publishChanged(ctx context.Context, project *model.Project) {
	if s.pub == nil {
		return
	}
	event := ProjectChangedEvent{
		Topic:     "project-updated",
		ProjectID: project.ID,
		Status:    project.Status,
		At:        s.now(),
	}
	if err := s.pub.PublishJSON(ctx, event); err != nil {
		// Notification is best effort; consumers self-heal on the next
		// read.
		s.log.Sugar().Warnw("change notification failed", "project_id", project.ID, "err", err)
	}
}

// IsNotFound reports whether an error is the store's missing-row error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
