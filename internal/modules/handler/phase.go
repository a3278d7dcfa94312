package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fieldcost/fieldcost/internal/middleware"
	"github.com/fieldcost/fieldcost/internal/modules/serializer"
	"github.com/fieldcost/fieldcost/internal/modules/service"
)

type PhaseHandler struct {
	svc service.PhaseService
}

func NewPhaseHandler(s service.PhaseService) *PhaseHandler {
	return &PhaseHandler{svc: s}
}

type CreatePhaseReq struct {
	StartDate string `form:"start_date" json:"start_date" example:"01/06/2026"`
	EndDate   string `form:"end_date" json:"end_date" example:"30/09/2026"`
	IsEnabled *bool  `form:"is_enabled" json:"is_enabled"`
}

type UpdatePhaseReq struct {
	StartDate string `form:"start_date" json:"start_date" example:"01/06/2026"`
	EndDate   string `form:"end_date" json:"end_date" example:"30/09/2026"`
	IsEnabled *bool  `form:"is_enabled" json:"is_enabled"`
}

// ListPhases godoc
//
//	@Summary		List phases
//	@Description	List the project's phases in order, each decorated with its aggregated budget figures.
//	@Tags			phase
//	@Accept			json
//	@Produce		json
//	@Param			project_id	path	string	true	"Project ID"	format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=[]service.PhaseView}
//	@Router			/project/{project_id}/phase [get]
func (h *PhaseHandler) ListPhases(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid project_id", err))
		return
	}

	views, err := h.svc.ListWithFigures(c.Request.Context(), projectID)
	if err != nil {
		if service.IsNotFound(err) {
			c.JSON(http.StatusNotFound, serializer.NotFoundErr("project not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: views})
}

// CreatePhase godoc
//
//	@Summary		Create phase
//	@Description	Append a phase to the project. Numbering is assigned automatically.
//	@Tags			phase
//	@Accept			json
//	@Produce		json
//	@Param			project_id	path	string					true	"Project ID"	format(uuid)
//	@Param			payload		body	handler.CreatePhaseReq	true	"CreatePhase payload"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=model.Phase}
//	@Router			/project/{project_id}/phase [post]
func (h *PhaseHandler) CreatePhase(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid project_id", err))
		return
	}
	req := CreatePhaseReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	in := service.CreatePhaseInput{ProjectID: projectID, IsEnabled: req.IsEnabled}
	if in.StartDate, err = parseDate(req.StartDate); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid start_date", err))
		return
	}
	if in.EndDate, err = parseDate(req.EndDate); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid end_date", err))
		return
	}

	phase, err := h.svc.Create(c.Request.Context(), in, middleware.CurrentUser(c))
	if err != nil {
		if errors.Is(err, service.ErrNotAuthorized) {
			c.JSON(http.StatusForbidden, serializer.ForbiddenErr("admin role required"))
			return
		}
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}

	c.JSON(http.StatusCreated, serializer.Response{Data: phase})
}

// UpdatePhase godoc
//
//	@Summary		Update phase
//	@Description	Change a phase's window or enablement.
//	@Tags			phase
//	@Accept			json
//	@Produce		json
//	@Param			project_id	path	string					true	"Project ID"	format(uuid)
//	@Param			phase_id	path	string					true	"Phase ID"		format(uuid)
//	@Param			payload		body	handler.UpdatePhaseReq	true	"UpdatePhase payload"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.Phase}
//	@Router			/project/{project_id}/phase/{phase_id} [put]
func (h *PhaseHandler) UpdatePhase(c *gin.Context) {
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
	req := UpdatePhaseReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	in := service.UpdatePhaseInput{ProjectID: projectID, PhaseID: phaseID, IsEnabled: req.IsEnabled}
	if in.StartDate, err = parseDate(req.StartDate); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid start_date", err))
		return
	}
	if in.EndDate, err = parseDate(req.EndDate); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid end_date", err))
		return
	}

	phase, err := h.svc.Update(c.Request.Context(), in, middleware.CurrentUser(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotAuthorized):
			c.JSON(http.StatusForbidden, serializer.ForbiddenErr("admin role required"))
		case service.IsNotFound(err):
			c.JSON(http.StatusNotFound, serializer.NotFoundErr("phase not found"))
		default:
			c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		}
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: phase})
}

// DeletePhase godoc
//
//	@Summary		Delete phase
//	@Description	Remove a phase. Later phases are renumbered so the sequence stays gapless.
//	@Tags			phase
//	@Accept			json
//	@Produce		json
//	@Param			project_id	path	string	true	"Project ID"	format(uuid)
//	@Param			phase_id	path	string	true	"Phase ID"		format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response
//	@Router			/project/{project_id}/phase/{phase_id} [delete]
func (h *PhaseHandler) DeletePhase(c *gin.Context) {
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

	if err := h.svc.Delete(c.Request.Context(), projectID, phaseID, middleware.CurrentUser(c)); err != nil {
		switch {
		case errors.Is(err, service.ErrNotAuthorized):
			c.JSON(http.StatusForbidden, serializer.ForbiddenErr("admin role required"))
		case service.IsNotFound(err):
			c.JSON(http.StatusNotFound, serializer.NotFoundErr("phase not found"))
		default:
			c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		}
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Msg: "phase deleted"})
}
