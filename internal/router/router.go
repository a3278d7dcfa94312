package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/fieldcost/fieldcost/docs"
	"github.com/fieldcost/fieldcost/internal/config"
	"github.com/fieldcost/fieldcost/internal/middleware"
	"github.com/fieldcost/fieldcost/internal/modules/handler"
	"github.com/fieldcost/fieldcost/internal/modules/repo"
	"github.com/fieldcost/fieldcost/internal/modules/serializer"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	Config            *config.Config
	Users             repo.UserRepo
	Log               *zap.Logger
	ProjectHandler    *handler.ProjectHandler
	PhaseHandler      *handler.PhaseHandler
	DepartmentHandler *handler.DepartmentHandler
	ExpenseHandler    *handler.ExpenseHandler
	ApproverHandler   *handler.ApproverHandler
}

func NewRouter(d RouterDeps) *gin.Engine {
	// Initialize logger for serializer package
	serializer.SetLogger(d.Log)

	r := gin.New()
	r.Use(gin.Recovery())

	// Add OpenTelemetry middleware if enabled (using configuration system)
	if d.Config.Telemetry.Enabled && d.Config.Telemetry.OtlpEndpoint != "" {
		r.Use(middleware.OtelTracing(d.Config.App.Name))
		// Add trace ID to response header
		r.Use(middleware.TraceID())
	}

	r.Use(middleware.ZapLogger(d.Log))

	// health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Msg: "ok"}) })

	// swagger
	r.GET("/swagger", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		v1.Use(middleware.UserAuth(d.Config, d.Users))

		// ping endpoint
		v1.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Msg: "pong"}) })

		project := v1.Group("/project")
		{
			project.GET("", d.ProjectHandler.ListProjects)
			project.POST("", d.ProjectHandler.CreateProject)
			project.GET("/:project_id", d.ProjectHandler.GetProject)

			project.POST("/:project_id/suspend", d.ProjectHandler.SuspendProject)
			project.POST("/:project_id/unsuspend", d.ProjectHandler.UnsuspendProject)
			project.PUT("/:project_id/team", d.ProjectHandler.AssignTeam)

			phase := project.Group("/:project_id/phase")
			{
				phase.GET("", d.PhaseHandler.ListPhases)
				phase.POST("", d.PhaseHandler.CreatePhase)
				phase.PUT("/:phase_id", d.PhaseHandler.UpdatePhase)
				phase.DELETE("/:phase_id", d.PhaseHandler.DeletePhase)

				department := phase.Group("/:phase_id/department")
				{
					department.GET("", d.DepartmentHandler.ListDepartments)
					department.POST("", d.DepartmentHandler.CreateDepartment)
					department.PUT("/:department_id", d.DepartmentHandler.UpdateDepartment)
					department.DELETE("/:department_id", d.DepartmentHandler.DeleteDepartment)
				}
			}

			expense := project.Group("/:project_id/expense")
			{
				expense.GET("", d.ExpenseHandler.ListExpenses)
				expense.POST("", d.ExpenseHandler.SubmitExpense)
				expense.POST("/:expense_id/approve", d.ExpenseHandler.ApproveExpense)
				expense.POST("/:expense_id/reject", d.ExpenseHandler.RejectExpense)
				expense.GET("/:expense_id/receipt", d.ExpenseHandler.GetReceiptURL)
			}

			approver := project.Group("/:project_id/approver")
			{
				approver.POST("", d.ApproverHandler.AssignApprover)
				approver.POST("/accept", d.ApproverHandler.AcceptDelegation)
				approver.POST("/reject", d.ApproverHandler.RejectDelegation)
				approver.GET("/:approver_id", d.ApproverHandler.GetApprover)
			}
		}
	}
	return r
}
