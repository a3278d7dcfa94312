package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fieldcost/fieldcost/internal/middleware"
	"github.com/fieldcost/fieldcost/internal/modules/serializer"
	"github.com/fieldcost/fieldcost/internal/modules/service"
	"github.com/fieldcost/fieldcost/internal/pkg/dates"
)

type ProjectHandler struct {
	svc service.ProjectService
}

func NewProjectHandler(s service.ProjectService) *ProjectHandler {
	return &ProjectHandler{svc: s}
}

type CreateProjectReq struct {
	Name                string `form:"name" json:"name" binding:"required" example:"Riverside depot"`
	PlannedDate         string `form:"planned_date" json:"planned_date" example:"01/06/2026"`
	HandoverDate        string `form:"handover_date" json:"handover_date" example:"01/12/2026"`
	InitialHandoverDate string `form:"initial_handover_date" json:"initial_handover_date" example:"01/12/2026"`
	ManagerID           string `form:"manager_id" json:"manager_id" format:"uuid"`
}

type ListProjectsReq struct {
	Limit  int    `form:"limit,default=20" json:"limit" binding:"min=1,max=200" example:"20"`
	Cursor string `form:"cursor" json:"cursor"`
}

type SuspendProjectReq struct {
	Reason string `form:"reason" json:"reason" example:"funding hold"`
}

type AssignTeamReq struct {
	ManagerID   string   `form:"manager_id" json:"manager_id" format:"uuid"`
	TeamMembers []string `form:"team_members" json:"team_members"`
}

func parseDate(s string) (*dates.Date, error) {
	if s == "" {
		return nil, nil
	}
	d, err := dates.Parse(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListProjects godoc
//
//	@Summary		List projects
//	@Description	List projects newest first. Each page is reconciled before it is returned, so statuses reflect the current date.
//	@Tags			project
//	@Accept			json
//	@Produce		json
//	@Param			limit	query	integer	false	"Limit of projects to return, default 20. Max 200."
//	@Param			cursor	query	string	false	"Cursor for pagination. Use the cursor from the previous response to get the next page."
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=service.ListProjectsOutput}
//	@Router			/project [get]
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	req := ListProjectsReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	out, err := h.svc.List(c.Request.Context(), service.ListProjectsInput{
		Limit:  req.Limit,
		Cursor: req.Cursor,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: out})
}

// CreateProject godoc
//
//	@Summary		Create project
//	@Description	Create a new project. It starts in review and only leaves that status through an operator transition.
//	@Tags			project
//	@Accept			json
//	@Produce		json
//	@Param			payload	body	handler.CreateProjectReq	true	"CreateProject payload"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=model.Project}
//	@Router			/project [post]
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	req := CreateProjectReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	in := service.CreateProjectInput{Name: req.Name}
	var err error
	if in.PlannedDate, err = parseDate(req.PlannedDate); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid planned_date", err))
		return
	}
	if in.HandoverDate, err = parseDate(req.HandoverDate); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid handover_date", err))
		return
	}
	if in.InitialHandoverDate, err = parseDate(req.InitialHandoverDate); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid initial_handover_date", err))
		return
	}
	if req.ManagerID != "" {
		id, err := uuid.Parse(req.ManagerID)
		if err != nil {
			c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid manager_id", err))
			return
		}
		in.ManagerID = &id
	}

	project, err := h.svc.Create(c.Request.Context(), in, middleware.CurrentUser(c))
	if err != nil {
		if errors.Is(err, service.ErrNotAuthorized) {
			c.JSON(http.StatusForbidden, serializer.ForbiddenErr("admin role required"))
			return
		}
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}

	c.JSON(http.StatusCreated, serializer.Response{Data: project})
}

// GetProject godoc
//
//	@Summary		Get project
//	@Description	Get a project with its budget figures. The read runs a reconciliation pass first.
//	@Tags			project
//	@Accept			json
//	@Produce		json
//	@Param			project_id	path	string	true	"Project ID"	format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=service.ProjectView}
//	@Router			/project/{project_id} [get]
func (h *ProjectHandler) GetProject(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid project_id", err))
		return
	}

	view, err := h.svc.Get(c.Request.Context(), projectID)
	if err != nil {
		if service.IsNotFound(err) {
			c.JSON(http.StatusNotFound, serializer.NotFoundErr("project not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: view})
}

// SuspendProject godoc
//
//	@Summary		Suspend project
//	@Description	Freeze the project's automatic status transitions.
//	@Tags			project
//	@Accept			json
//	@Produce		json
//	@Param			project_id	path	string						true	"Project ID"	format(uuid)
//	@Param			payload		body	handler.SuspendProjectReq	false	"Suspend payload"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.Project}
//	@Router			/project/{project_id}/suspend [post]
func (h *ProjectHandler) SuspendProject(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid project_id", err))
		return
	}
	req := SuspendProjectReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	project, err := h.svc.Suspend(c.Request.Context(), service.SuspendProjectInput{
		ProjectID: projectID,
		Reason:    req.Reason,
		Actor:     middleware.CurrentUser(c),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotAuthorized):
			c.JSON(http.StatusForbidden, serializer.ForbiddenErr("admin role required"))
		case errors.Is(err, service.ErrAlreadySuspended):
			c.JSON(http.StatusConflict, serializer.ConflictErr("project is already suspended", err))
		case service.IsNotFound(err):
			c.JSON(http.StatusNotFound, serializer.NotFoundErr("project not found"))
		default:
			c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		}
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: project})
}

// UnsuspendProject godoc
//
//	@Summary		Unsuspend project
//	@Description	Lift a suspension. The project resumes active when its planned date has been reached, otherwise it re-enters locked.
//	@Tags			project
//	@Accept			json
//	@Produce		json
//	@Param			project_id	path	string	true	"Project ID"	format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.Project}
//	@Router			/project/{project_id}/unsuspend [post]
func (h *ProjectHandler) UnsuspendProject(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid project_id", err))
		return
	}

	project, err := h.svc.Unsuspend(c.Request.Context(), projectID, middleware.CurrentUser(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotAuthorized):
			c.JSON(http.StatusForbidden, serializer.ForbiddenErr("admin role required"))
		case errors.Is(err, service.ErrNotSuspended):
			c.JSON(http.StatusConflict, serializer.ConflictErr("project is not suspended", err))
		case service.IsNotFound(err):
			c.JSON(http.StatusNotFound, serializer.NotFoundErr("project not found"))
		default:
			c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		}
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: project})
}

// AssignTeam godoc
//
//	@Summary		Assign team
//	@Description	Replace the project's manager and team roster.
//	@Tags			project
//	@Accept			json
//	@Produce		json
//	@Param			project_id	path	string					true	"Project ID"	format(uuid)
//	@Param			payload		body	handler.AssignTeamReq	true	"AssignTeam payload"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.Project}
//	@Router			/project/{project_id}/team [put]
func (h *ProjectHandler) AssignTeam(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid project_id", err))
		return
	}
	req := AssignTeamReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	in := service.AssignTeamInput{ProjectID: projectID, Actor: middleware.CurrentUser(c)}
	if req.ManagerID != "" {
		id, err := uuid.Parse(req.ManagerID)
		if err != nil {
			c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid manager_id", err))
			return
		}
		in.ManagerID = &id
	}
	if req.TeamMembers != nil {
		members := make([]uuid.UUID, 0, len(req.TeamMembers))
		for _, raw := range req.TeamMembers {
			id, err := uuid.Parse(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid team member id", err))
				return
			}
			members = append(members, id)
		}
		in.TeamMembers = members
	}

	project, err := h.svc.AssignTeam(c.Request.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotAuthorized):
			c.JSON(http.StatusForbidden, serializer.ForbiddenErr("admin role required"))
		case service.IsNotFound(err):
			c.JSON(http.StatusNotFound, serializer.NotFoundErr("project not found"))
		default:
			c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		}
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: project})
}
