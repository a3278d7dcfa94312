package main

//	@title			Fieldcost API
//	@version		1.0
//	@description	Project lifecycle and budget reconciliation API.
//	@schemes		http https
//	@BasePath		/api/v1

//  Bearer at user level
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				User Bearer token (e.g., "Bearer sk-fc-xxxx")

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fieldcost/fieldcost/internal/bootstrap"
	"github.com/fieldcost/fieldcost/internal/config"
	"github.com/fieldcost/fieldcost/internal/modules/handler"
	"github.com/fieldcost/fieldcost/internal/modules/repo"
	"github.com/fieldcost/fieldcost/internal/router"
	"github.com/fieldcost/fieldcost/internal/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/samber/do"
	"go.uber.org/zap"
)

func main() {
	// build dependency injection container
	inj := bootstrap.BuildContainer()

	cfg := do.MustInvoke[*config.Config](inj)
	log := do.MustInvoke[*zap.Logger](inj)

	// Setup OpenTelemetry tracing (using configuration system)
	tp, err := telemetry.SetupTracing(cfg)
	if err != nil {
		log.Sugar().Warnw("failed to setup tracing, continuing without tracing", "err", err)
	} else if tp != nil {
		log.Sugar().Infow("OpenTelemetry tracing enabled", "endpoint", cfg.Telemetry.OtlpEndpoint)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := telemetry.Shutdown(ctx); err != nil {
				log.Sugar().Errorw("failed to shutdown tracer", "err", err)
			}
		}()
	}

	// init gin
	gin.SetMode(cfg.App.Env)

	// build handlers
	projectHandler := do.MustInvoke[*handler.ProjectHandler](inj)
	phaseHandler := do.MustInvoke[*handler.PhaseHandler](inj)
	departmentHandler := do.MustInvoke[*handler.DepartmentHandler](inj)
	expenseHandler := do.MustInvoke[*handler.ExpenseHandler](inj)
	approverHandler := do.MustInvoke[*handler.ApproverHandler](inj)

	engine := router.NewRouter(router.RouterDeps{
		Config:            cfg,
		Users:             do.MustInvoke[repo.UserRepo](inj),
		Log:               log,
		ProjectHandler:    projectHandler,
		PhaseHandler:      phaseHandler,
		DepartmentHandler: departmentHandler,
		ExpenseHandler:    expenseHandler,
		ApproverHandler:   approverHandler,
	})

	addr := fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port)
	srv := &http.Server{Addr: addr, Handler: engine}

	go func() {
		log.Sugar().Infow("starting http server", "addr", addr)
		log.Sugar().Infow("swagger url", "url", addr+"/swagger/index.html")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Sugar().Fatalw("listen error", "err", err)
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Sugar().Errorw("server shutdown", "err", err)
	}
	log.Sugar().Info("server exited")
}
