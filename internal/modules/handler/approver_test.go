package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/fieldcost/fieldcost/internal/engine"
	"github.com/fieldcost/fieldcost/internal/modules/model"
	"github.com/fieldcost/fieldcost/internal/modules/service"
)

// MockApproverService is a mock implementation of TempApproverService
type MockApproverService struct {
	mock.Mock
}

func (m *MockApproverService) Assign(ctx context.Context, in service.AssignApproverInput) (*service.DelegationView, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DelegationView), args.Error(1)
}

func (m *MockApproverService) Get(ctx context.Context, projectID, approverID uuid.UUID) (*service.DelegationView, error) {
	args := m.Called(ctx, projectID, approverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DelegationView), args.Error(1)
}

func (m *MockApproverService) Accept(ctx context.Context, projectID uuid.UUID, actor *model.User) (*service.DelegationView, error) {
	args := m.Called(ctx, projectID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DelegationView), args.Error(1)
}

func (m *MockApproverService) Reject(ctx context.Context, projectID uuid.UUID, actor *model.User, reason string) error {
	args := m.Called(ctx, projectID, actor, reason)
	return args.Error(0)
}

func (m *MockApproverService) ReconcileDelegation(ctx context.Context, project *model.Project, now time.Time) (bool, error) {
	args := m.Called(ctx, project, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockApproverService) HasApprovalAuthority(ctx context.Context, project *model.Project, userID uuid.UUID, now time.Time) (bool, error) {
	args := m.Called(ctx, project, userID, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockApproverService) AppendApprovedExpense(ctx context.Context, projectID, approverID, expenseID uuid.UUID) error {
	args := m.Called(ctx, projectID, approverID, expenseID)
	return args.Error(0)
}

func TestApproverHandler_AssignApprover(t *testing.T) {
	admin := testAdmin()
	projectID := uuid.New()
	approverID := uuid.New()
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		requestBody    AssignApproverReq
		setup          func(*MockApproverService)
		expectedStatus int
	}{
		{
			name: "successful assignment",
			requestBody: AssignApproverReq{
				ApproverID: approverID.String(),
				StartDate:  start,
				EndDate:    end,
			},
			setup: func(svc *MockApproverService) {
				view := &service.DelegationView{
					TempApprover:  model.TempApprover{ProjectID: projectID, ApproverID: approverID},
					CurrentStatus: engine.ApproverPending,
				}
				svc.On("Assign", mock.Anything, mock.MatchedBy(func(in service.AssignApproverInput) bool {
					return in.ProjectID == projectID && in.ApproverID == approverID
				})).Return(view, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "inverted window",
			requestBody: AssignApproverReq{
				ApproverID: approverID.String(),
				StartDate:  end,
				EndDate:    start,
			},
			setup: func(svc *MockApproverService) {
				svc.On("Assign", mock.Anything, mock.Anything).Return(nil, service.ErrBadWindow)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "live delegation already exists",
			requestBody: AssignApproverReq{
				ApproverID: approverID.String(),
				StartDate:  start,
				EndDate:    end,
			},
			setup: func(svc *MockApproverService) {
				svc.On("Assign", mock.Anything, mock.Anything).Return(nil, service.ErrDelegationLive)
			},
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockApproverService{}
			tt.setup(mockService)

			handler := NewApproverHandler(mockService)
			router := setupProjectRouter()
			router.POST("/project/:project_id/approver", func(c *gin.Context) {
				c.Set("user", admin)
				handler.AssignApprover(c)
			})

			body, _ := sonic.Marshal(tt.requestBody)
			req := httptest.NewRequest("POST", "/project/"+projectID.String()+"/approver", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestApproverHandler_AcceptDelegation(t *testing.T) {
	delegate := &model.User{ID: uuid.New(), Name: "delegate", Role: model.RoleMember}
	projectID := uuid.New()

	tests := []struct {
		name           string
		setup          func(*MockApproverService)
		expectedStatus int
	}{
		{
			name: "accept inside window goes active",
			setup: func(svc *MockApproverService) {
				view := &service.DelegationView{
					TempApprover:  model.TempApprover{ProjectID: projectID, ApproverID: delegate.ID},
					CurrentStatus: engine.ApproverActive,
				}
				svc.On("Accept", mock.Anything, projectID, delegate).Return(view, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "window already over",
			setup: func(svc *MockApproverService) {
				svc.On("Accept", mock.Anything, projectID, delegate).Return(nil, service.ErrDelegationExpired)
			},
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockApproverService{}
			tt.setup(mockService)

			handler := NewApproverHandler(mockService)
			router := setupProjectRouter()
			router.POST("/project/:project_id/approver/accept", func(c *gin.Context) {
				c.Set("user", delegate)
				handler.AcceptDelegation(c)
			})

			req := httptest.NewRequest("POST", "/project/"+projectID.String()+"/approver/accept", nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestApproverHandler_RejectDelegation(t *testing.T) {
	delegate := &model.User{ID: uuid.New(), Name: "delegate", Role: model.RoleMember}
	projectID := uuid.New()

	tests := []struct {
		name           string
		requestBody    RejectApproverReq
		setup          func(*MockApproverService)
		expectedStatus int
	}{
		{
			name:        "successful rejection",
			requestBody: RejectApproverReq{Reason: "on leave that week"},
			setup: func(svc *MockApproverService) {
				svc.On("Reject", mock.Anything, projectID, delegate, "on leave that week").Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing reason is rejected by binding",
			requestBody:    RejectApproverReq{},
			setup:          func(svc *MockApproverService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockApproverService{}
			tt.setup(mockService)

			handler := NewApproverHandler(mockService)
			router := setupProjectRouter()
			router.POST("/project/:project_id/approver/reject", func(c *gin.Context) {
				c.Set("user", delegate)
				handler.RejectDelegation(c)
			})

			body, _ := sonic.Marshal(tt.requestBody)
			req := httptest.NewRequest("POST", "/project/"+projectID.String()+"/approver/reject", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}
