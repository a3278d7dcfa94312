package service

import (
	"context"
	"testing"

	"github.com/fieldcost/fieldcost/internal/modules/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func TestProjectCreate_StartsInReview(t *testing.T) {
	projects := new(mockProjectRepo)
	svc := NewProjectService(projects, new(mockReconcileService), zap.NewNop(), fixedClock)

	managerID := uuid.New()
	projects.On("Create", mock.Anything, mock.MatchedBy(func(p *model.Project) bool {
		return p.Status == "IN_REVIEW" && len(p.ManagerIDs) == 1 && p.ManagerIDs[0] == managerID
	})).Return(nil)

	project, err := svc.Create(context.Background(), CreateProjectInput{
		Name:      "Riverside depot",
		ManagerID: &managerID,
	}, adminUser())

	assert.NoError(t, err)
	assert.Equal(t, "IN_REVIEW", project.Status)
	projects.AssertExpectations(t)
}

func TestProjectCreate_NonAdminDenied(t *testing.T) {
	svc := NewProjectService(new(mockProjectRepo), new(mockReconcileService), zap.NewNop(), fixedClock)

	_, err := svc.Create(context.Background(), CreateProjectInput{Name: "x"}, memberUser())

	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestProjectList_ReconcilesThePage(t *testing.T) {
	projects := new(mockProjectRepo)
	reconcile := new(mockReconcileService)
	svc := NewProjectService(projects, reconcile, zap.NewNop(), fixedClock)

	page := []*model.Project{
		{ID: uuid.New(), Status: "ACTIVE", CreatedAt: fixedNow},
		{ID: uuid.New(), Status: "LOCKED", CreatedAt: fixedNow},
	}
	projects.On("ListWithCursor", mock.Anything, mock.Anything, mock.Anything, 21, true).Return(page, nil)
	reconcile.On("ReconcileProjects", mock.Anything, page).Return()

	out, err := svc.List(context.Background(), ListProjectsInput{Limit: 20})

	assert.NoError(t, err)
	assert.Len(t, out.Items, 2)
	assert.False(t, out.HasMore)
	reconcile.AssertExpectations(t)
}

func TestProjectList_PagesWithCursor(t *testing.T) {
	projects := new(mockProjectRepo)
	reconcile := new(mockReconcileService)
	svc := NewProjectService(projects, reconcile, zap.NewNop(), fixedClock)

	// Limit 2 with three rows back means another page exists.
	page := []*model.Project{
		{ID: uuid.New(), CreatedAt: fixedNow},
		{ID: uuid.New(), CreatedAt: fixedNow.Add(-1)},
		{ID: uuid.New(), CreatedAt: fixedNow.Add(-2)},
	}
	projects.On("ListWithCursor", mock.Anything, mock.Anything, mock.Anything, 3, true).Return(page, nil)
	reconcile.On("ReconcileProjects", mock.Anything, mock.Anything).Return()

	out, err := svc.List(context.Background(), ListProjectsInput{Limit: 2})

	assert.NoError(t, err)
	assert.Len(t, out.Items, 2)
	assert.True(t, out.HasMore)
	assert.NotEmpty(t, out.NextCursor)
}

func TestProjectSuspend(t *testing.T) {
	projects := new(mockProjectRepo)
	svc := NewProjectService(projects, new(mockReconcileService), zap.NewNop(), fixedClock)

	projectID := uuid.New()
	projects.On("Get", mock.Anything, projectID).Return(&model.Project{ID: projectID, Status: "ACTIVE"}, nil)
	projects.On("SetSuspension", mock.Anything, projectID, true, mock.MatchedBy(func(fields map[string]interface{}) bool {
		_, hasDate := fields["suspended_date"]
		return hasDate && fields["suspension_reason"] == "funding hold"
	})).Return(nil)

	_, err := svc.Suspend(context.Background(), SuspendProjectInput{
		ProjectID: projectID,
		Reason:    "funding hold",
		Actor:     adminUser(),
	})

	assert.NoError(t, err)
	projects.AssertExpectations(t)
}

func TestProjectSuspend_TwiceFails(t *testing.T) {
	projects := new(mockProjectRepo)
	svc := NewProjectService(projects, new(mockReconcileService), zap.NewNop(), fixedClock)

	projectID := uuid.New()
	projects.On("Get", mock.Anything, projectID).Return(&model.Project{ID: projectID, IsSuspended: true}, nil)

	_, err := svc.Suspend(context.Background(), SuspendProjectInput{ProjectID: projectID, Actor: adminUser()})

	assert.ErrorIs(t, err, ErrAlreadySuspended)
}

func TestProjectUnsuspend_TargetDependsOnPlannedDate(t *testing.T) {
	tests := []struct {
		name    string
		planned func() *model.Project
		want    string
	}{
		{
			"planned date reached resumes active",
			func() *model.Project {
				return &model.Project{IsSuspended: true, PlannedDate: datePtr(2026, 3, 1)}
			},
			"ACTIVE",
		},
		{
			"future planned date locks",
			func() *model.Project {
				return &model.Project{IsSuspended: true, PlannedDate: datePtr(2026, 5, 1)}
			},
			"LOCKED",
		},
		{
			"missing planned date locks",
			func() *model.Project {
				return &model.Project{IsSuspended: true}
			},
			"LOCKED",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			projects := new(mockProjectRepo)
			svc := NewProjectService(projects, new(mockReconcileService), zap.NewNop(), fixedClock)

			projectID := uuid.New()
			project := tt.planned()
			project.ID = projectID
			projects.On("Get", mock.Anything, projectID).Return(project, nil)
			projects.On("SetSuspension", mock.Anything, projectID, false, mock.MatchedBy(func(fields map[string]interface{}) bool {
				return fields["status"] == tt.want
			})).Return(nil)

			_, err := svc.Unsuspend(context.Background(), projectID, adminUser())

			assert.NoError(t, err)
			projects.AssertExpectations(t)
		})
	}
}

func TestProjectUnsuspend_NotSuspendedFails(t *testing.T) {
	projects := new(mockProjectRepo)
	svc := NewProjectService(projects, new(mockReconcileService), zap.NewNop(), fixedClock)

	projectID := uuid.New()
	projects.On("Get", mock.Anything, projectID).Return(&model.Project{ID: projectID}, nil)

	_, err := svc.Unsuspend(context.Background(), projectID, adminUser())

	assert.ErrorIs(t, err, ErrNotSuspended)
}
