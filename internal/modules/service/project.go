package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fieldcost/fieldcost/internal/engine"
	"github.com/fieldcost/fieldcost/internal/modules/model"
	"github.com/fieldcost/fieldcost/internal/modules/repo"
	"github.com/fieldcost/fieldcost/internal/pkg/dates"
	"github.com/fieldcost/fieldcost/internal/pkg/paging"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

var (
	ErrAlreadySuspended = errors.New("project is already suspended")
	ErrNotSuspended     = errors.New("project is not suspended")
)

type CreateProjectInput struct {
	Name                string      `json:"name" binding:"required"`
	PlannedDate         *dates.Date `json:"planned_date,omitempty"`
	HandoverDate        *dates.Date `json:"handover_date,omitempty"`
	InitialHandoverDate *dates.Date `json:"initial_handover_date,omitempty"`
	ManagerID           *uuid.UUID  `json:"manager_id,omitempty"`
}

type ListProjectsInput struct {
	Limit  int
	Cursor string
}

type ListProjectsOutput struct {
	Items      []*model.Project `json:"items"`
	NextCursor string           `json:"next_cursor,omitempty"`
	HasMore    bool             `json:"has_more"`
}

// ProjectView is a project plus the figures derived for it on this read.
type ProjectView struct {
	Project *model.Project        `json:"project"`
	Figures engine.ProjectFigures `json:"figures"`
}

type SuspendProjectInput struct {
	ProjectID uuid.UUID
	Reason    string
	Actor     *model.User
}

type AssignTeamInput struct {
	ProjectID   uuid.UUID
	ManagerID   *uuid.UUID
	TeamMembers []uuid.UUID
	Actor       *model.User
}

type ProjectService interface {
	Create(ctx context.Context, in CreateProjectInput, actor *model.User) (*model.Project, error)
	List(ctx context.Context, in ListProjectsInput) (*ListProjectsOutput, error)
	Get(ctx context.Context, projectID uuid.UUID) (*ProjectView, error)
	Suspend(ctx context.Context, in SuspendProjectInput) (*model.Project, error)
	Unsuspend(ctx context.Context, projectID uuid.UUID, actor *model.User) (*model.Project, error)
	AssignTeam(ctx context.Context, in AssignTeamInput) (*model.Project, error)
}

type projectService struct {
	projects  repo.ProjectRepo
	reconcile ReconcileService
	log       *zap.Logger
	now       func() time.Time
}

func NewProjectService(projects repo.ProjectRepo, reconcile ReconcileService, log *zap.Logger, now func() time.Time) ProjectService {
	if now == nil {
		now = time.Now
	}
	return &projectService{projects: projects, reconcile: reconcile, log: log, now: now}
}

// Create registers a project in review. It only leaves review through
// the reconciliation driver or an explicit operator transition.
func (s *projectService) Create(ctx context.Context, in CreateProjectInput, actor *model.User) (*model.Project, error) {
	if actor == nil || !actor.IsAdmin() {
		return nil, ErrNotAuthorized
	}

	project := &model.Project{
		Name:                in.Name,
		Status:              string(engine.StatusInReview),
		PlannedDate:         in.PlannedDate,
		HandoverDate:        in.HandoverDate,
		InitialHandoverDate: in.InitialHandoverDate,
		StatusUpdatedAt:     s.now(),
	}
	if in.ManagerID != nil {
		project.ManagerIDs = datatypes.NewJSONSlice([]uuid.UUID{*in.ManagerID})
	}

	if err := s.projects.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	s.log.Sugar().Infow("project created", "project_id", project.ID, "name", project.Name)
	return project, nil
}

// List pages projects newest first and runs an opportunistic
// reconciliation pass over the page before returning it, so listings
// never show a status the clock has already moved past.
func (s *projectService) List(ctx context.Context, in ListProjectsInput) (*ListProjectsOutput, error) {
	var afterT time.Time
	var afterID uuid.UUID
	var err error
	if in.Cursor != "" {
		afterT, afterID, err = paging.DecodeCursor(in.Cursor)
		if err != nil {
			return nil, err
		}
	}

	projects, err := s.projects.ListWithCursor(ctx, afterT, afterID, in.Limit+1, true)
	if err != nil {
		return nil, err
	}

	out := &ListProjectsOutput{Items: projects}
	if len(projects) > in.Limit {
		out.HasMore = true
		out.Items = projects[:in.Limit]
		last := out.Items[len(out.Items)-1]
		out.NextCursor = paging.EncodeCursor(last.CreatedAt, last.ID)
	}

	s.reconcile.ReconcileProjects(ctx, out.Items)
	return out, nil
}

// Get runs a full pass and returns the project with fresh figures.
func (s *projectService) Get(ctx context.Context, projectID uuid.UUID) (*ProjectView, error) {
	res, err := s.reconcile.ReconcileProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return &ProjectView{Project: res.Project, Figures: res.Figures}, nil
}

// Suspend freezes the project's status machine. The stored status is
// left untouched; reconciliation passes become no-ops until the
// suspension lifts.
func (s *projectService) Suspend(ctx context.Context, in SuspendProjectInput) (*model.Project, error) {
	if in.Actor == nil || !in.Actor.IsAdmin() {
		return nil, ErrNotAuthorized
	}
	project, err := s.projects.Get(ctx, in.ProjectID)
	if err != nil {
		return nil, err
	}
	if project.IsSuspended {
		return nil, ErrAlreadySuspended
	}

	today := dates.Today(s.now())
	fields := map[string]interface{}{
		"suspended_date": &today,
	}
	if in.Reason != "" {
		fields["suspension_reason"] = in.Reason
	}
	if err := s.projects.SetSuspension(ctx, in.ProjectID, true, fields); err != nil {
		return nil, fmt.Errorf("suspend project: %w", err)
	}

	s.log.Sugar().Infow("project suspended", "project_id", in.ProjectID, "reason", in.Reason)
	return s.projects.Get(ctx, in.ProjectID)
}

// Unsuspend lifts a suspension. The project resumes at ACTIVE when its
// planned start date has been reached, otherwise it re-enters LOCKED
// and waits for the clock.
func (s *projectService) Unsuspend(ctx context.Context, projectID uuid.UUID, actor *model.User) (*model.Project, error) {
	if actor == nil || !actor.IsAdmin() {
		return nil, ErrNotAuthorized
	}
	project, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !project.IsSuspended {
		return nil, ErrNotSuspended
	}

	today := dates.Today(s.now())
	target := engine.UnsuspendTarget(project.PlannedDate, today)
	fields := map[string]interface{}{
		"suspended_date":    nil,
		"suspension_reason": nil,
		"status":            string(target),
		"status_updated_at": s.now(),
	}
	if err := s.projects.SetSuspension(ctx, projectID, false, fields); err != nil {
		return nil, fmt.Errorf("unsuspend project: %w", err)
	}

	s.log.Sugar().Infow("project unsuspended", "project_id", projectID, "status", target)
	return s.projects.Get(ctx, projectID)
}

// AssignTeam replaces the manager and team roster. The manager list is
// stored as a slice but holds at most one active entry.
func (s *projectService) AssignTeam(ctx context.Context, in AssignTeamInput) (*model.Project, error) {
	if in.Actor == nil || !in.Actor.IsAdmin() {
		return nil, ErrNotAuthorized
	}
	project, err := s.projects.Get(ctx, in.ProjectID)
	if err != nil {
		return nil, err
	}

	if in.ManagerID != nil {
		project.ManagerIDs = datatypes.NewJSONSlice([]uuid.UUID{*in.ManagerID})
	}
	if in.TeamMembers != nil {
		project.TeamMembers = datatypes.NewJSONSlice(in.TeamMembers)
	}
	if err := s.projects.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("assign team: %w", err)
	}
	return project, nil
}
