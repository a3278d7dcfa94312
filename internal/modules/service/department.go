package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fieldcost/fieldcost/internal/modules/model"
	"github.com/fieldcost/fieldcost/internal/modules/repo"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

var (
	ErrDuplicateDepartment = errors.New("department name already used in this phase")
	ErrBadContractorMode   = errors.New("unknown contractor mode")
)

type CreateDepartmentInput struct {
	ProjectID      uuid.UUID
	PhaseID        uuid.UUID
	Name           string           `json:"name" binding:"required"`
	ContractorMode string           `json:"contractor_mode"`
	Items          []model.LineItem `json:"items"`
}

type UpdateDepartmentInput struct {
	ProjectID      uuid.UUID
	PhaseID        uuid.UUID
	DepartmentID   uuid.UUID
	Name           *string          `json:"name,omitempty"`
	ContractorMode *string          `json:"contractor_mode,omitempty"`
	Items          []model.LineItem `json:"items,omitempty"`
}

type DepartmentService interface {
	Create(ctx context.Context, in CreateDepartmentInput, actor *model.User) (*model.Department, error)
	ListByPhase(ctx context.Context, phaseID uuid.UUID) ([]model.Department, error)
	Update(ctx context.Context, in UpdateDepartmentInput, actor *model.User) (*model.Department, error)
	Delete(ctx context.Context, projectID uuid.UUID, phaseID, departmentID uuid.UUID, actor *model.User) error
}

type departmentService struct {
	departments repo.DepartmentRepo
	cache       FiguresCache
	log         *zap.Logger
	now         func() time.Time
}

func NewDepartmentService(departments repo.DepartmentRepo, cache FiguresCache, log *zap.Logger, now func() time.Time) DepartmentService {
	if now == nil {
		now = time.Now
	}
	return &departmentService{departments: departments, cache: cache, log: log, now: now}
}

// Create adds a budget department to a phase. Names are unique per
// phase after trimming and lowercasing; "Steel" and "steel " are the
// same department.
func (s *departmentService) Create(ctx context.Context, in CreateDepartmentInput, actor *model.User) (*model.Department, error) {
	if actor == nil || !actor.IsAdmin() {
		return nil, ErrNotAuthorized
	}

	existing, err := s.departments.ListByPhase(ctx, in.PhaseID)
	if err != nil {
		return nil, fmt.Errorf("load departments: %w", err)
	}
	key := model.NormalizeDepartmentName(in.Name)
	for _, d := range existing {
		if d.NameKey == key {
			return nil, ErrDuplicateDepartment
		}
	}

	mode := in.ContractorMode
	if mode == "" {
		mode = model.ContractorLabourOnly
	}
	if mode != model.ContractorLabourOnly && mode != model.ContractorTurnkey {
		return nil, ErrBadContractorMode
	}
	dept := &model.Department{
		PhaseID:        in.PhaseID,
		Name:           in.Name,
		ContractorMode: mode,
		Items:          datatypes.NewJSONType(in.Items),
	}
	if err := s.departments.Create(ctx, dept); err != nil {
		return nil, fmt.Errorf("create department: %w", err)
	}
	if err := s.cache.Invalidate(ctx, in.ProjectID); err != nil {
		s.log.Sugar().Debugw("figures cache invalidate failed", "project_id", in.ProjectID, "err", err)
	}
	s.log.Sugar().Infow("department created",
		"phase_id", in.PhaseID, "department_id", dept.ID, "name_key", dept.NameKey)
	return dept, nil
}

func (s *departmentService) ListByPhase(ctx context.Context, phaseID uuid.UUID) ([]model.Department, error) {
	return s.departments.ListByPhase(ctx, phaseID)
}

func (s *departmentService) Update(ctx context.Context, in UpdateDepartmentInput, actor *model.User) (*model.Department, error) {
	if actor == nil || !actor.IsAdmin() {
		return nil, ErrNotAuthorized
	}

	dept, err := s.departments.Get(ctx, in.PhaseID, in.DepartmentID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil && model.NormalizeDepartmentName(*in.Name) != dept.NameKey {
		existing, err := s.departments.ListByPhase(ctx, in.PhaseID)
		if err != nil {
			return nil, fmt.Errorf("load departments: %w", err)
		}
		key := model.NormalizeDepartmentName(*in.Name)
		for _, d := range existing {
			if d.ID != dept.ID && d.NameKey == key {
				return nil, ErrDuplicateDepartment
			}
		}
		dept.Name = *in.Name
	}
	if in.ContractorMode != nil {
		if *in.ContractorMode != model.ContractorLabourOnly && *in.ContractorMode != model.ContractorTurnkey {
			return nil, ErrBadContractorMode
		}
		dept.ContractorMode = *in.ContractorMode
	}
	if in.Items != nil {
		dept.Items = datatypes.NewJSONType(in.Items)
	}

	if err := s.departments.Update(ctx, dept); err != nil {
		return nil, fmt.Errorf("update department: %w", err)
	}
	if err := s.cache.Invalidate(ctx, in.ProjectID); err != nil {
		s.log.Sugar().Debugw("figures cache invalidate failed", "project_id", in.ProjectID, "err", err)
	}
	return dept, nil
}

func (s *departmentService) Delete(ctx context.Context, projectID uuid.UUID, phaseID, departmentID uuid.UUID, actor *model.User) error {
	if actor == nil || !actor.IsAdmin() {
		return ErrNotAuthorized
	}
	if err := s.departments.Delete(ctx, phaseID, departmentID); err != nil {
		return fmt.Errorf("delete department: %w", err)
	}
	if err := s.cache.Invalidate(ctx, projectID); err != nil {
		s.log.Sugar().Debugw("figures cache invalidate failed", "project_id", projectID, "err", err)
	}
	return nil
}
