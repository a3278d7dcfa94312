package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/fieldcost/fieldcost/internal/modules/model"
	"github.com/fieldcost/fieldcost/internal/modules/repo"
	"github.com/fieldcost/fieldcost/internal/modules/service"
)

// MockExpenseService is a mock implementation of ExpenseService
type MockExpenseService struct {
	mock.Mock
}

func (m *MockExpenseService) Submit(ctx context.Context, in service.SubmitExpenseInput) (*model.Expense, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Expense), args.Error(1)
}

func (m *MockExpenseService) List(ctx context.Context, in service.ListExpensesInput) (*service.ListExpensesOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListExpensesOutput), args.Error(1)
}

func (m *MockExpenseService) Decide(ctx context.Context, in service.DecideExpenseInput) (*model.Expense, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Expense), args.Error(1)
}

func (m *MockExpenseService) ReceiptURL(ctx context.Context, projectID, expenseID uuid.UUID) (string, error) {
	args := m.Called(ctx, projectID, expenseID)
	return args.String(0), args.Error(1)
}

func TestExpenseHandler_SubmitExpense(t *testing.T) {
	actor := &model.User{ID: uuid.New(), Name: "pm", Role: model.RoleManager}
	projectID := uuid.New()
	phaseID := uuid.New()

	tests := []struct {
		name           string
		requestBody    SubmitExpenseReq
		setup          func(*MockExpenseService)
		expectedStatus int
	}{
		{
			name: "successful submission",
			requestBody: SubmitExpenseReq{
				PhaseID:        phaseID.String(),
				DepartmentName: "Steel",
				Amount:         5000,
				Description:    "rebar delivery",
			},
			setup: func(svc *MockExpenseService) {
				svc.On("Submit", mock.Anything, mock.MatchedBy(func(in service.SubmitExpenseInput) bool {
					return in.ProjectID == projectID &&
						in.PhaseID != nil && *in.PhaseID == phaseID &&
						in.DepartmentName == "Steel" &&
						in.Amount == 5000 &&
						in.Actor == actor
				})).Return(&model.Expense{ID: uuid.New(), ProjectID: projectID, Status: model.ExpensePending}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "zero amount is rejected by binding",
			requestBody:    SubmitExpenseReq{DepartmentName: "Steel"},
			setup:          func(svc *MockExpenseService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "phase from another project",
			requestBody: SubmitExpenseReq{PhaseID: phaseID.String(), Amount: 100},
			setup: func(svc *MockExpenseService) {
				svc.On("Submit", mock.Anything, mock.Anything).Return(nil, service.ErrPhaseMismatch)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "service layer error",
			requestBody: SubmitExpenseReq{Amount: 100},
			setup: func(svc *MockExpenseService) {
				svc.On("Submit", mock.Anything, mock.Anything).Return(nil, errors.New("database error"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockExpenseService{}
			tt.setup(mockService)

			handler := NewExpenseHandler(mockService)
			router := setupProjectRouter()
			router.POST("/project/:project_id/expense", func(c *gin.Context) {
				c.Set("user", actor)
				handler.SubmitExpense(c)
			})

			body, _ := sonic.Marshal(tt.requestBody)
			req := httptest.NewRequest("POST", "/project/"+projectID.String()+"/expense", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestExpenseHandler_ListExpenses(t *testing.T) {
	projectID := uuid.New()

	tests := []struct {
		name           string
		query          string
		setup          func(*MockExpenseService)
		expectedStatus int
	}{
		{
			name:  "status filter is passed through",
			query: "?status=pending",
			setup: func(svc *MockExpenseService) {
				out := &service.ListExpensesOutput{Items: []*model.Expense{}, HasMore: false}
				svc.On("List", mock.Anything, service.ListExpensesInput{
					ProjectID: projectID,
					Status:    model.ExpensePending,
					Limit:     20,
				}).Return(out, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "unknown status is rejected",
			query:          "?status=stalled",
			setup:          func(svc *MockExpenseService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockExpenseService{}
			tt.setup(mockService)

			handler := NewExpenseHandler(mockService)
			router := setupProjectRouter()
			router.GET("/project/:project_id/expense", handler.ListExpenses)

			req := httptest.NewRequest("GET", "/project/"+projectID.String()+"/expense"+tt.query, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestExpenseHandler_ApproveExpense(t *testing.T) {
	actor := &model.User{ID: uuid.New(), Name: "pm", Role: model.RoleManager}
	projectID := uuid.New()
	expenseID := uuid.New()

	tests := []struct {
		name           string
		setup          func(*MockExpenseService)
		expectedStatus int
	}{
		{
			name: "successful approval",
			setup: func(svc *MockExpenseService) {
				svc.On("Decide", mock.Anything, mock.MatchedBy(func(in service.DecideExpenseInput) bool {
					return in.ProjectID == projectID && in.ExpenseID == expenseID && in.Approve
				})).Return(&model.Expense{ID: expenseID, Status: model.ExpenseApproved}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "escalated expense needs an admin",
			setup: func(svc *MockExpenseService) {
				svc.On("Decide", mock.Anything, mock.Anything).Return(nil, service.ErrAdminRequired)
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name: "no authority over the project",
			setup: func(svc *MockExpenseService) {
				svc.On("Decide", mock.Anything, mock.Anything).Return(nil, service.ErrNotAuthorized)
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name: "already decided",
			setup: func(svc *MockExpenseService) {
				svc.On("Decide", mock.Anything, mock.Anything).Return(nil, repo.ErrAlreadyDecided)
			},
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockExpenseService{}
			tt.setup(mockService)

			handler := NewExpenseHandler(mockService)
			router := setupProjectRouter()
			router.POST("/project/:project_id/expense/:expense_id/approve", func(c *gin.Context) {
				c.Set("user", actor)
				handler.ApproveExpense(c)
			})

			url := "/project/" + projectID.String() + "/expense/" + expenseID.String() + "/approve"
			req := httptest.NewRequest("POST", url, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestExpenseHandler_GetReceiptURL(t *testing.T) {
	projectID := uuid.New()
	expenseID := uuid.New()

	mockService := &MockExpenseService{}
	mockService.On("ReceiptURL", mock.Anything, projectID, expenseID).
		Return("https://blob.example/receipts/abc?sig=xyz", nil)

	handler := NewExpenseHandler(mockService)
	router := setupProjectRouter()
	router.GET("/project/:project_id/expense/:expense_id/receipt", handler.GetReceiptURL)

	url := "/project/" + projectID.String() + "/expense/" + expenseID.String() + "/receipt"
	req := httptest.NewRequest("GET", url, nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "blob.example")
	mockService.AssertExpectations(t)
}
