package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fieldcost/fieldcost/internal/middleware"
	"github.com/fieldcost/fieldcost/internal/modules/serializer"
	"github.com/fieldcost/fieldcost/internal/modules/service"
)

type ApproverHandler struct {
	svc service.TempApproverService
}

func NewApproverHandler(s service.TempApproverService) *ApproverHandler {
	return &ApproverHandler{svc: s}
}

type AssignApproverReq struct {
	ApproverID string    `form:"approver_id" json:"approver_id" binding:"required" format:"uuid"`
	StartDate  time.Time `form:"start_date" json:"start_date" binding:"required" example:"2026-06-01T00:00:00Z"`
	EndDate    time.Time `form:"end_date" json:"end_date" binding:"required" example:"2026-06-15T00:00:00Z"`
}

type RejectApproverReq struct {
	Reason string `form:"reason" json:"reason" binding:"required" example:"on leave that week"`
}

// AssignApprover godoc
//
//	@Summary		Assign temp approver
//	@Description	Delegate approval authority over a project for a bounded time window. One live delegation per project.
//	@Tags			approver
//	@Accept			json
//	@Produce		json
//	@Param			project_id	path	string						true	"Project ID"	format(uuid)
//	@Param			payload		body	handler.AssignApproverReq	true	"AssignApprover payload"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=service.DelegationView}
//	@Router			/project/{project_id}/approver [post]
func (h *ApproverHandler) AssignApprover(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid project_id", err))
		return
	}
	req := AssignApproverReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	approverID, err := uuid.Parse(req.ApproverID)
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid approver_id", err))
		return
	}

	view, err := h.svc.Assign(c.Request.Context(), service.AssignApproverInput{
		ProjectID:  projectID,
		ApproverID: approverID,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Actor:      middleware.CurrentUser(c),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotAuthorized):
			c.JSON(http.StatusForbidden, serializer.ForbiddenErr("admin role required"))
		case errors.Is(err, service.ErrBadWindow):
			c.JSON(http.StatusBadRequest, serializer.ParamErr("delegation window is invalid", err))
		case errors.Is(err, service.ErrDelegationLive):
			c.JSON(http.StatusConflict, serializer.ConflictErr("project already has a live delegation", err))
		case service.IsNotFound(err):
			c.JSON(http.StatusNotFound, serializer.NotFoundErr("project not found"))
		default:
			c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		}
		return
	}

	c.JSON(http.StatusCreated, serializer.Response{Data: view})
}

// GetApprover godoc
//
//	@Summary		Get delegation
//	@Description	Get a delegation with its current status. The status is recomputed against the clock on every read; an observed expiry is persisted.
//	@Tags			approver
//	@Accept			json
//	@Produce		json
//	@Param			project_id	path	string	true	"Project ID"	format(uuid)
//	@Param			approver_id	path	string	true	"Approver ID"	format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=service.DelegationView}
//	@Router			/project/{project_id}/approver/{approver_id} [get]
func (h *ApproverHandler) GetApprover(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid project_id", err))
		return
	}
	approverID, err := uuid.Parse(c.Param("approver_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid approver_id", err))
		return
	}

	view, err := h.svc.Get(c.Request.Context(), projectID, approverID)
	if err != nil {
		if service.IsNotFound(err) {
			c.JSON(http.StatusNotFound, serializer.NotFoundErr("delegation not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: view})
}

// AcceptDelegation godoc
//
//	@Summary		Accept delegation
//	@Description	Accept a pending delegation. Acceptance inside the window makes it active immediately.
//	@Tags			approver
//	@Accept			json
//	@Produce		json
//	@Param			project_id	path	string	true	"Project ID"	format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=service.DelegationView}
//	@Router			/project/{project_id}/approver/accept [post]
func (h *ApproverHandler) AcceptDelegation(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid project_id", err))
		return
	}

	view, err := h.svc.Accept(c.Request.Context(), projectID, middleware.CurrentUser(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotAuthorized):
			c.JSON(http.StatusForbidden, serializer.ForbiddenErr(""))
		case errors.Is(err, service.ErrDelegationExpired):
			c.JSON(http.StatusConflict, serializer.ConflictErr("delegation has expired", err))
		case service.IsNotFound(err):
			c.JSON(http.StatusNotFound, serializer.NotFoundErr("delegation not found"))
		default:
			c.JSON(http.StatusConflict, serializer.ConflictErr("", err))
		}
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: view})
}

// RejectDelegation godoc
//
//	@Summary		Reject delegation
//	@Description	Refuse a delegation. The reason is mandatory and revocation is immediate.
//	@Tags			approver
//	@Accept			json
//	@Produce		json
//	@Param			project_id	path	string						true	"Project ID"	format(uuid)
//	@Param			payload		body	handler.RejectApproverReq	true	"Reject payload"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response
//	@Router			/project/{project_id}/approver/reject [post]
func (h *ApproverHandler) RejectDelegation(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid project_id", err))
		return
	}
	req := RejectApproverReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	if err := h.svc.Reject(c.Request.Context(), projectID, middleware.CurrentUser(c), req.Reason); err != nil {
		switch {
		case errors.Is(err, service.ErrNotAuthorized):
			c.JSON(http.StatusForbidden, serializer.ForbiddenErr(""))
		case errors.Is(err, service.ErrReasonRequired):
			c.JSON(http.StatusBadRequest, serializer.ParamErr("rejection reason is required", err))
		case errors.Is(err, service.ErrDelegationExpired):
			c.JSON(http.StatusConflict, serializer.ConflictErr("delegation has expired", err))
		case service.IsNotFound(err):
			c.JSON(http.StatusNotFound, serializer.NotFoundErr("delegation not found"))
		default:
			c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		}
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Msg: "delegation rejected"})
}
