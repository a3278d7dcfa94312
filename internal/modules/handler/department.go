package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fieldcost/fieldcost/internal/middleware"
	"github.com/fieldcost/fieldcost/internal/modules/model"
	"github.com/fieldcost/fieldcost/internal/modules/serializer"
	"github.com/fieldcost/fieldcost/internal/modules/service"
)

type DepartmentHandler struct {
	svc service.DepartmentService
}

func NewDepartmentHandler(s service.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{svc: s}
}

type CreateDepartmentReq struct {
	Name           string           `form:"name" json:"name" binding:"required" example:"Steel"`
	ContractorMode string           `form:"contractor_mode" json:"contractor_mode" example:"labour_only"`
	Items          []model.LineItem `json:"items"`
}

type UpdateDepartmentReq struct {
	Name           *string          `json:"name,omitempty"`
	ContractorMode *string          `json:"contractor_mode,omitempty"`
	Items          []model.LineItem `json:"items,omitempty"`
}

// ListDepartments godoc
//
//	@Summary		List departments
//	@Description	List the budget departments of a phase.
//	@Tags			department
//	@Accept			json
//	@Produce		json
//	@Param			project_id	path	string	true	"Project ID"	format(uuid)
//	@Param			phase_id	path	string	true	"Phase ID"		format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=[]model.Department}
//	@Router			/project/{project_id}/phase/{phase_id}/department [get]
func (h *DepartmentHandler) ListDepartments(c *gin.Context) {
	phaseID, err := uuid.Parse(c.Param("phase_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid phase_id", err))
		return
	}

	departments, err := h.svc.ListByPhase(c.Request.Context(), phaseID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: departments})
}

// CreateDepartment godoc
//
//	@Summary		Create department
//	@Description	Add a budget department to a phase. Names are unique within a phase, ignoring case and surrounding whitespace.
//	@Tags			department
//	@Accept			json
//	@Produce		json
//	@Param			project_id	path	string						true	"Project ID"	format(uuid)
//	@Param			phase_id	path	string						true	"Phase ID"		format(uuid)
//	@Param			payload		body	handler.CreateDepartmentReq	true	"CreateDepartment payload"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=model.Department}
//	@Router			/project/{project_id}/phase/{phase_id}/department [post]
func (h *DepartmentHandler) CreateDepartment(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid project_id", err))
		return
	}
	phaseID, err := uuid.Parse(c.Param("phase_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid phase_id", err))
		return
	}
	req := CreateDepartmentReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	dept, err := h.svc.Create(c.Request.Context(), service.CreateDepartmentInput{
		ProjectID:      projectID,
		PhaseID:        phaseID,
		Name:           req.Name,
		ContractorMode: req.ContractorMode,
		Items:          req.Items,
	}, middleware.CurrentUser(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotAuthorized):
			c.JSON(http.StatusForbidden, serializer.ForbiddenErr("admin role required"))
		case errors.Is(err, service.ErrDuplicateDepartment):
			c.JSON(http.StatusConflict, serializer.ConflictErr("department name already used in this phase", err))
		case errors.Is(err, service.ErrBadContractorMode):
			c.JSON(http.StatusBadRequest, serializer.ParamErr("unknown contractor mode", err))
		default:
			c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		}
		return
	}

	c.JSON(http.StatusCreated, serializer.Response{Data: dept})
}

// UpdateDepartment godoc
//
//	@Summary		Update department
//	@Description	Change a department's name, contractor mode, or line items.
//	@Tags			department
//	@Accept			json
//	@Produce		json
//	@Param			project_id		path	string						true	"Project ID"	format(uuid)
//	@Param			phase_id		path	string						true	"Phase ID"		format(uuid)
//	@Param			department_id	path	string						true	"Department ID"	format(uuid)
//	@Param			payload			body	handler.UpdateDepartmentReq	true	"UpdateDepartment payload"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.Department}
//	@Router			/project/{project_id}/phase/{phase_id}/department/{department_id} [put]
func (h *DepartmentHandler) UpdateDepartment(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid project_id", err))
		return
	}
	phaseID, err := uuid.Parse(c.Param("phase_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid phase_id", err))
		return
	}
	departmentID, err := uuid.Parse(c.Param("department_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid department_id", err))
		return
	}
	req := UpdateDepartmentReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	dept, err := h.svc.Update(c.Request.Context(), service.UpdateDepartmentInput{
		ProjectID:      projectID,
		PhaseID:        phaseID,
		DepartmentID:   departmentID,
		Name:           req.Name,
		ContractorMode: req.ContractorMode,
		Items:          req.Items,
	}, middleware.CurrentUser(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotAuthorized):
			c.JSON(http.StatusForbidden, serializer.ForbiddenErr("admin role required"))
		case errors.Is(err, service.ErrDuplicateDepartment):
			c.JSON(http.StatusConflict, serializer.ConflictErr("department name already used in this phase", err))
		case errors.Is(err, service.ErrBadContractorMode):
			c.JSON(http.StatusBadRequest, serializer.ParamErr("unknown contractor mode", err))
		case service.IsNotFound(err):
			c.JSON(http.StatusNotFound, serializer.NotFoundErr("department not found"))
		default:
			c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		}
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: dept})
}

// DeleteDepartment godoc
//
//	@Summary		Delete department
//	@Description	Remove a department from a phase. Expenses booked against it keep counting toward the phase total.
//	@Tags			department
//	@Accept			json
//	@Produce		json
//	@Param			project_id		path	string	true	"Project ID"	format(uuid)
//	@Param			phase_id		path	string	true	"Phase ID"		format(uuid)
//	@Param			department_id	path	string	true	"Department ID"	format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response
//	@Router			/project/{project_id}/phase/{phase_id}/department/{department_id} [delete]
func (h *DepartmentHandler) DeleteDepartment(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid project_id", err))
		return
	}
	phaseID, err := uuid.Parse(c.Param("phase_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid phase_id", err))
		return
	}
	departmentID, err := uuid.Parse(c.Param("department_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid department_id", err))
		return
	}

	if err := h.svc.Delete(c.Request.Context(), projectID, phaseID, departmentID, middleware.CurrentUser(c)); err != nil {
		switch {
		case errors.Is(err, service.ErrNotAuthorized):
			c.JSON(http.StatusForbidden, serializer.ForbiddenErr("admin role required"))
		case service.IsNotFound(err):
			c.JSON(http.StatusNotFound, serializer.NotFoundErr("department not found"))
		default:
			c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		}
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Msg: "department deleted"})
}
