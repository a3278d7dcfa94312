package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fieldcost/fieldcost/internal/engine"
	"github.com/fieldcost/fieldcost/internal/modules/model"
	"github.com/fieldcost/fieldcost/internal/modules/repo"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNotAuthorized     = errors.New("not authorized")
	ErrDelegationLive    = errors.New("project already has a live delegation")
	ErrDelegationExpired = errors.New("delegation has expired")
	ErrReasonRequired    = errors.New("rejection reason is required")
	ErrBadWindow         = errors.New("delegation window is invalid")
)

// DelegationView is a temp approver with its clock-reconciled status.
type DelegationView struct {
	model.TempApprover
	CurrentStatus engine.ApproverStatus `json:"current_status"`
}

type AssignApproverInput struct {
	ProjectID  uuid.UUID
	ApproverID uuid.UUID
	StartDate  time.Time
	EndDate    time.Time
	Actor      *model.User
}

type TempApproverService interface {
	Assign(ctx context.Context, in AssignApproverInput) (*DelegationView, error)
	Get(ctx context.Context, projectID, approverID uuid.UUID) (*DelegationView, error)
	Accept(ctx context.Context, projectID uuid.UUID, actor *model.User) (*DelegationView, error)
	Reject(ctx context.Context, projectID uuid.UUID, actor *model.User, reason string) error

	// ReconcileDelegation folds wall-clock time into the project's
	// stored delegation: persists observed expiry and clears the
	// assignment of expired delegations. Reports whether anything was
	// written.
	ReconcileDelegation(ctx context.Context, project *model.Project, now time.Time) (bool, error)

	// HasApprovalAuthority answers "can this user approve expenses for
	// this project": the first manager, or a delegate whose reconciled
	// status still carries authority.
	HasApprovalAuthority(ctx context.Context, project *model.Project, userID uuid.UUID, now time.Time) (bool, error)

	// AppendApprovedExpense records an expense a delegate signed off on.
	AppendApprovedExpense(ctx context.Context, projectID, approverID, expenseID uuid.UUID) error
}

type tempApproverService struct {
	approvers repo.TempApproverRepo
	projects  repo.ProjectRepo
	pub       ChangePublisher
	log       *zap.Logger
	now       func() time.Time
}

func NewTempApproverService(approvers repo.TempApproverRepo, projects repo.ProjectRepo, pub ChangePublisher, log *zap.Logger, now func() time.Time) TempApproverService {
	if now == nil {
		now = time.Now
	}
	return &tempApproverService{
		approvers: approvers,
		projects:  projects,
		pub:       pub,
		log:       log,
		now:       now,
	}
}

func (s *tempApproverService) Assign(ctx context.Context, in AssignApproverInput) (*DelegationView, error) {
	if in.Actor == nil || !in.Actor.IsAdmin() {
		return nil, ErrNotAuthorized
	}
	now := s.now()
	if !in.EndDate.After(in.StartDate) || in.EndDate.Before(now) {
		return nil, ErrBadWindow
	}

	project, err := s.projects.Get(ctx, in.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}

	// At most one live delegation per project.
	if project.TempApproverID != nil {
		existing, err := s.approvers.Get(ctx, project.ID, *project.TempApproverID)
		if err == nil && engine.CurrentApproverStatus(engine.ApproverStatus(existing.Status), existing.StartDate, existing.EndDate, now) != engine.ApproverExpired {
			return nil, ErrDelegationLive
		}
	}

	delegation := &model.TempApprover{
		ProjectID:  in.ProjectID,
		ApproverID: in.ApproverID,
		StartDate:  in.StartDate,
		EndDate:    in.EndDate,
		Status:     string(engine.ApproverPending),
	}
	if err := s.approvers.Create(ctx, delegation); err != nil {
		return nil, fmt.Errorf("create delegation: %w", err)
	}
	if err := s.projects.SetTempApprover(ctx, in.ProjectID, &in.ApproverID); err != nil {
		return nil, fmt.Errorf("assign delegate: %w", err)
	}

	s.log.Sugar().Infow("delegation assigned",
		"project_id", in.ProjectID, "approver_id", in.ApproverID,
		"start", in.StartDate, "end", in.EndDate)

	return &DelegationView{TempApprover: *delegation, CurrentStatus: delegation.CurrentStatus(now)}, nil
}

// Get reads a delegation, reconciling its status against the clock on
// the way out. An observed expiry is persisted, not just displayed.
func (s *tempApproverService) Get(ctx context.Context, projectID, approverID uuid.UUID) (*DelegationView, error) {
	delegation, err := s.approvers.Get(ctx, projectID, approverID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	current := delegation.CurrentStatus(now)
	if current == engine.ApproverExpired && delegation.Status != string(engine.ApproverExpired) {
		project, perr := s.projects.Get(ctx, projectID)
		if perr == nil {
			if _, rerr := s.ReconcileDelegation(ctx, project, now); rerr != nil {
				s.log.Sugar().Warnw("expiry reconcile on read failed",
					"project_id", projectID, "approver_id", approverID, "err", rerr)
			}
		}
		delegation.Status = string(engine.ApproverExpired)
	}

	return &DelegationView{TempApprover: *delegation, CurrentStatus: current}, nil
}

// Accept transitions a pending delegation to its status at acceptance
// time, which may already be active when the window has started.
func (s *tempApproverService) Accept(ctx context.Context, projectID uuid.UUID, actor *model.User) (*DelegationView, error) {
	if actor == nil {
		return nil, ErrNotAuthorized
	}
	delegation, err := s.approvers.Get(ctx, projectID, actor.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	current := delegation.CurrentStatus(now)
	switch current {
	case engine.ApproverExpired:
		// Expired before acceptance: persist and self-revoke.
		if project, perr := s.projects.Get(ctx, projectID); perr == nil {
			if _, rerr := s.ReconcileDelegation(ctx, project, now); rerr != nil {
				s.log.Sugar().Warnw("expiry reconcile failed", "project_id", projectID, "err", rerr)
			}
		}
		return nil, ErrDelegationExpired
	case engine.ApproverPending:
		// Status at acceptance: accepted, or active when already inside
		// the window.
		accepted := engine.CurrentApproverStatus(engine.ApproverAccepted, delegation.StartDate, delegation.EndDate, now)
		if err := s.approvers.UpdateStatus(ctx, projectID, actor.ID, string(accepted), nil); err != nil {
			return nil, fmt.Errorf("accept delegation: %w", err)
		}
		delegation.Status = string(accepted)
		s.log.Sugar().Infow("delegation accepted",
			"project_id", projectID, "approver_id", actor.ID, "status", accepted)
		return &DelegationView{TempApprover: *delegation, CurrentStatus: accepted}, nil
	default:
		return nil, fmt.Errorf("delegation is %s, not pending", current)
	}
}

// Reject refuses a delegation. The reason is mandatory and revocation is
// immediate: the project's assignment is cleared in the same call.
func (s *tempApproverService) Reject(ctx context.Context, projectID uuid.UUID, actor *model.User, reason string) error {
	if actor == nil {
		return ErrNotAuthorized
	}
	if reason == "" {
		return ErrReasonRequired
	}

	delegation, err := s.approvers.Get(ctx, projectID, actor.ID)
	if err != nil {
		return err
	}
	current := delegation.CurrentStatus(s.now())
	if current == engine.ApproverRejected {
		return nil
	}
	if current == engine.ApproverExpired {
		// Expired before rejection: persist and self-revoke, as on read.
		if project, perr := s.projects.Get(ctx, projectID); perr == nil {
			if _, rerr := s.ReconcileDelegation(ctx, project, s.now()); rerr != nil {
				s.log.Sugar().Warnw("expiry reconcile failed", "project_id", projectID, "err", rerr)
			}
		}
		return ErrDelegationExpired
	}

	if err := s.approvers.UpdateStatus(ctx, projectID, actor.ID, string(engine.ApproverRejected), &reason); err != nil {
		return fmt.Errorf("reject delegation: %w", err)
	}
	if err := s.projects.SetTempApprover(ctx, projectID, nil); err != nil {
		return fmt.Errorf("clear delegate assignment: %w", err)
	}

	s.log.Sugar().Infow("delegation rejected",
		"project_id", projectID, "approver_id", actor.ID, "reason", reason)

	if s.pub != nil {
		event := ProjectChangedEvent{Topic: "project-updated", ProjectID: projectID, At: s.now()}
		if perr := s.pub.PublishJSON(ctx, event); perr != nil {
			s.log.Sugar().Warnw("change notification failed", "project_id", projectID, "err", perr)
		}
	}
	return nil
}

func (s *tempApproverService) ReconcileDelegation(ctx context.Context, project *model.Project, now time.Time) (bool, error) {
	if project.TempApproverID == nil {
		return false, nil
	}

	delegation, err := s.approvers.Get(ctx, project.ID, *project.TempApproverID)
	if IsNotFound(err) {
		// Dangling assignment without a delegation record.
		if cerr := s.projects.SetTempApprover(ctx, project.ID, nil); cerr != nil {
			return false, fmt.Errorf("clear dangling delegate: %w", cerr)
		}
		project.TempApproverID = nil
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("load delegation: %w", err)
	}

	current := delegation.CurrentStatus(now)
	if current != engine.ApproverExpired {
		return false, nil
	}

	changed := false
	if delegation.Status != string(engine.ApproverExpired) {
		if err := s.approvers.UpdateStatus(ctx, project.ID, delegation.ApproverID, string(engine.ApproverExpired), nil); err != nil {
			return false, fmt.Errorf("persist expiry: %w", err)
		}
		changed = true
	}

	// Expired delegations self-revoke once observed.
	if err := s.projects.SetTempApprover(ctx, project.ID, nil); err != nil {
		return changed, fmt.Errorf("clear expired delegate: %w", err)
	}
	project.TempApproverID = nil

	s.log.Sugar().Infow("expired delegation cleared",
		"project_id", project.ID, "approver_id", delegation.ApproverID)
	return true, nil
}

func (s *tempApproverService) HasApprovalAuthority(ctx context.Context, project *model.Project, userID uuid.UUID, now time.Time) (bool, error) {
	if manager := project.FirstManager(); manager != nil && *manager == userID {
		return true, nil
	}
	if project.TempApproverID == nil || *project.TempApproverID != userID {
		return false, nil
	}

	delegation, err := s.approvers.Get(ctx, project.ID, userID)
	if err != nil {
		if IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return engine.HasAuthority(delegation.CurrentStatus(now)), nil
}

func (s *tempApproverService) AppendApprovedExpense(ctx context.Context, projectID, approverID, expenseID uuid.UUID) error {
	return s.approvers.AppendApprovedExpense(ctx, projectID, approverID, expenseID)
}
