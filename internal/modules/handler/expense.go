package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fieldcost/fieldcost/internal/middleware"
	"github.com/fieldcost/fieldcost/internal/modules/repo"
	"github.com/fieldcost/fieldcost/internal/modules/serializer"
	"github.com/fieldcost/fieldcost/internal/modules/service"
)

type ExpenseHandler struct {
	svc service.ExpenseService
}

func NewExpenseHandler(s service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{svc: s}
}

type SubmitExpenseReq struct {
	PhaseID        string  `form:"phase_id" json:"phase_id" format:"uuid"`
	DepartmentName string  `form:"department_name" json:"department_name" example:"Steel"`
	Amount         float64 `form:"amount" json:"amount" binding:"required,gt=0" example:"5000"`
	Description    string  `form:"description" json:"description" example:"rebar delivery"`
}

type ListExpensesReq struct {
	Status string `form:"status" json:"status" binding:"omitempty,oneof=pending approved rejected" example:"pending"`
	Limit  int    `form:"limit,default=20" json:"limit" binding:"min=1,max=200" example:"20"`
	Cursor string `form:"cursor" json:"cursor"`
}

type DecideExpenseReq struct {
	Remark string `form:"remark" json:"remark" example:"within quarter budget"`
}

// SubmitExpense godoc
//
//	@Summary		Submit expense
//	@Description	Submit a pending expense. The escalation decision is evaluated against the budget figures at submission time and stored with the expense. An optional receipt file can be attached as multipart form data.
//	@Tags			expense
//	@Accept			mpfd
//	@Produce		json
//	@Param			project_id		path		string	true	"Project ID"	format(uuid)
//	@Param			phase_id		formData	string	false	"Phase ID"		format(uuid)
//	@Param			department_name	formData	string	false	"Department name"
//	@Param			amount			formData	number	true	"Expense amount"
//	@Param			description		formData	string	false	"Description"
//	@Param			receipt			formData	file	false	"Receipt file"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=model.Expense}
//	@Router			/project/{project_id}/expense [post]
func (h *ExpenseHandler) SubmitExpense(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid project_id", err))
		return
	}
	req := SubmitExpenseReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	in := service.SubmitExpenseInput{
		ProjectID:      projectID,
		DepartmentName: req.DepartmentName,
		Amount:         req.Amount,
		Description:    req.Description,
		Actor:          middleware.CurrentUser(c),
	}
	if req.PhaseID != "" {
		id, err := uuid.Parse(req.PhaseID)
		if err != nil {
			c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid phase_id", err))
			return
		}
		in.PhaseID = &id
	}
	// Receipt is optional; FormFile errors just mean no file was sent.
	if fh, err := c.FormFile("receipt"); err == nil {
		in.Receipt = fh
	}

	expense, err := h.svc.Submit(c.Request.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBadAmount):
			c.JSON(http.StatusBadRequest, serializer.ParamErr("expense amount must be positive", err))
		case errors.Is(err, service.ErrPhaseMismatch):
			c.JSON(http.StatusBadRequest, serializer.ParamErr("phase does not belong to project", err))
		case service.IsNotFound(err):
			c.JSON(http.StatusNotFound, serializer.NotFoundErr("project not found"))
		default:
			c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		}
		return
	}

	c.JSON(http.StatusCreated, serializer.Response{Data: expense})
}

// ListExpenses godoc
//
//	@Summary		List expenses
//	@Description	List the project's expenses newest first, optionally filtered by status.
//	@Tags			expense
//	@Accept			json
//	@Produce		json
//	@Param			project_id	path	string	true	"Project ID"	format(uuid)
//	@Param			status		query	string	false	"Filter by status: pending, approved, rejected"
//	@Param			limit		query	integer	false	"Limit of expenses to return, default 20. Max 200."
//	@Param			cursor		query	string	false	"Cursor for pagination. Use the cursor from the previous response to get the next page."
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=service.ListExpensesOutput}
//	@Router			/project/{project_id}/expense [get]
func (h *ExpenseHandler) ListExpenses(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid project_id", err))
		return
	}
	req := ListExpensesReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	out, err := h.svc.List(c.Request.Context(), service.ListExpensesInput{
		ProjectID: projectID,
		Status:    req.Status,
		Limit:     req.Limit,
		Cursor:    req.Cursor,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: out})
}

// ApproveExpense godoc
//
//	@Summary		Approve expense
//	@Description	Approve a pending expense. Escalated expenses require an administrator; others accept the first manager or a live temp approver. Each expense is decided exactly once.
//	@Tags			expense
//	@Accept			json
//	@Produce		json
//	@Param			project_id	path	string						true	"Project ID"	format(uuid)
//	@Param			expense_id	path	string						true	"Expense ID"	format(uuid)
//	@Param			payload		body	handler.DecideExpenseReq	false	"Approve payload"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.Expense}
//	@Router			/project/{project_id}/expense/{expense_id}/approve [post]
func (h *ExpenseHandler) ApproveExpense(c *gin.Context) {
	h.decide(c, true)
}

// RejectExpense godoc
//
//	@Summary		Reject expense
//	@Description	Reject a pending expense. Authority rules match approval.
//	@Tags			expense
//	@Accept			json
//	@Produce		json
//	@Param			project_id	path	string						true	"Project ID"	format(uuid)
//	@Param			expense_id	path	string						true	"Expense ID"	format(uuid)
//	@Param			payload		body	handler.DecideExpenseReq	false	"Reject payload"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.Expense}
//	@Router			/project/{project_id}/expense/{expense_id}/reject [post]
func (h *ExpenseHandler) RejectExpense(c *gin.Context) {
	h.decide(c, false)
}

func (h *ExpenseHandler) decide(c *gin.Context, approve bool) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid project_id", err))
		return
	}
	expenseID, err := uuid.Parse(c.Param("expense_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid expense_id", err))
		return
	}
	req := DecideExpenseReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	expense, err := h.svc.Decide(c.Request.Context(), service.DecideExpenseInput{
		ProjectID: projectID,
		ExpenseID: expenseID,
		Approve:   approve,
		Remark:    req.Remark,
		Actor:     middleware.CurrentUser(c),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotAuthorized):
			c.JSON(http.StatusForbidden, serializer.ForbiddenErr("no approval authority for this project"))
		case errors.Is(err, service.ErrAdminRequired):
			c.JSON(http.StatusForbidden, serializer.ForbiddenErr("expense requires administrator approval"))
		case errors.Is(err, repo.ErrAlreadyDecided):
			c.JSON(http.StatusConflict, serializer.ConflictErr("expense already decided", err))
		case service.IsNotFound(err):
			c.JSON(http.StatusNotFound, serializer.NotFoundErr("expense not found"))
		default:
			c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		}
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: expense})
}

// GetReceiptURL godoc
//
//	@Summary		Get receipt URL
//	@Description	Produce a short-lived pre-signed download link for the expense's stored receipt.
//	@Tags			expense
//	@Accept			json
//	@Produce		json
//	@Param			project_id	path	string	true	"Project ID"	format(uuid)
//	@Param			expense_id	path	string	true	"Expense ID"	format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=string}
//	@Router			/project/{project_id}/expense/{expense_id}/receipt [get]
func (h *ExpenseHandler) GetReceiptURL(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid project_id", err))
		return
	}
	expenseID, err := uuid.Parse(c.Param("expense_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid expense_id", err))
		return
	}

	url, err := h.svc.ReceiptURL(c.Request.Context(), projectID, expenseID)
	if err != nil {
		if service.IsNotFound(err) {
			c.JSON(http.StatusNotFound, serializer.NotFoundErr("expense not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: url})
}
