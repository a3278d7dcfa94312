package bootstrap

import (
	"context"
	"time"

	"github.com/fieldcost/fieldcost/internal/config"
	"github.com/fieldcost/fieldcost/internal/infra/blob"
	"github.com/fieldcost/fieldcost/internal/infra/cache"
	"github.com/fieldcost/fieldcost/internal/infra/db"
	"github.com/fieldcost/fieldcost/internal/infra/logger"
	"github.com/fieldcost/fieldcost/internal/infra/queue"
	"github.com/fieldcost/fieldcost/internal/modules/handler"
	"github.com/fieldcost/fieldcost/internal/modules/model"
	"github.com/fieldcost/fieldcost/internal/modules/repo"
	"github.com/fieldcost/fieldcost/internal/modules/service"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func BuildContainer() *do.Injector {
	inj := do.New()

	// config
	do.Provide(inj, func(i *do.Injector) (*config.Config, error) {
		return config.Load()
	})

	// logger
	do.Provide(inj, func(i *do.Injector) (*zap.Logger, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return logger.New(cfg.Log.Level)
	})

	// DB
	do.Provide(inj, func(i *do.Injector) (*gorm.DB, error) {
		cfg := do.MustInvoke[*config.Config](i)
		d, err := db.New(cfg)
		if err != nil {
			return nil, err
		}
		// [optional] auto migrate
		if cfg.Database.AutoMigrate {
			_ = d.AutoMigrate(
				&model.User{},
				&model.Project{},
				&model.Phase{},
				&model.Department{},
				&model.Expense{},
				&model.TempApprover{},
			)
		}
		return d, nil
	})

	// Redis
	do.Provide(inj, func(i *do.Injector) (*redis.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		rdb := cache.New(cfg)
		return rdb, nil
	})

	// figures cache on top of redis
	do.Provide(inj, func(i *do.Injector) (*cache.FiguresCache, error) {
		cfg := do.MustInvoke[*config.Config](i)
		rdb := do.MustInvoke[*redis.Client](i)
		ttl := time.Duration(cfg.Redis.FiguresTTLSec) * time.Second
		return cache.NewFiguresCache(rdb, ttl), nil
	})

	// RabbitMQ Connection
	do.Provide(inj, func(i *do.Injector) (*amqp.Connection, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return amqp.Dial(cfg.RabbitMQ.URL)
	})

	// change publisher
	do.Provide(inj, func(i *do.Injector) (*queue.Publisher, error) {
		cfg := do.MustInvoke[*config.Config](i)
		conn := do.MustInvoke[*amqp.Connection](i)
		log := do.MustInvoke[*zap.Logger](i)
		return queue.NewPublisher(conn, cfg.RabbitMQ.Queue, log)
	})

	// S3
	do.Provide(inj, func(i *do.Injector) (*blob.S3Deps, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return blob.NewS3(context.Background(), cfg)
	})
	// get presign expire duration
	do.Provide(inj, func(i *do.Injector) (func() time.Duration, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return func() time.Duration {
			if cfg.S3.PresignExpireSec <= 0 {
				return 15 * time.Minute
			}
			return time.Duration(cfg.S3.PresignExpireSec) * time.Second
		}, nil
	})

	// Repo
	do.Provide(inj, func(i *do.Injector) (repo.UserRepo, error) {
		return repo.NewUserRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.ProjectRepo, error) {
		return repo.NewProjectRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.PhaseRepo, error) {
		return repo.NewPhaseRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.DepartmentRepo, error) {
		return repo.NewDepartmentRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.ExpenseRepo, error) {
		return repo.NewExpenseRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.TempApproverRepo, error) {
		return repo.NewTempApproverRepo(do.MustInvoke[*gorm.DB](i)), nil
	})

	// Service
	do.Provide(inj, func(i *do.Injector) (service.TempApproverService, error) {
		return service.NewTempApproverService(
			do.MustInvoke[repo.TempApproverRepo](i),
			do.MustInvoke[repo.ProjectRepo](i),
			do.MustInvoke[*queue.Publisher](i),
			do.MustInvoke[*zap.Logger](i),
			nil,
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.ReconcileService, error) {
		return service.NewReconcileService(
			do.MustInvoke[repo.ProjectRepo](i),
			do.MustInvoke[repo.PhaseRepo](i),
			do.MustInvoke[repo.DepartmentRepo](i),
			do.MustInvoke[repo.ExpenseRepo](i),
			do.MustInvoke[service.TempApproverService](i),
			do.MustInvoke[*cache.FiguresCache](i),
			do.MustInvoke[*queue.Publisher](i),
			do.MustInvoke[*zap.Logger](i),
			nil,
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.ExpenseService, error) {
		return service.NewExpenseService(
			do.MustInvoke[repo.ExpenseRepo](i),
			do.MustInvoke[repo.ProjectRepo](i),
			do.MustInvoke[service.TempApproverService](i),
			do.MustInvoke[service.ReconcileService](i),
			do.MustInvoke[*cache.FiguresCache](i),
			do.MustInvoke[*blob.S3Deps](i),
			do.MustInvoke[*queue.Publisher](i),
			do.MustInvoke[*zap.Logger](i),
			do.MustInvoke[func() time.Duration](i),
			nil,
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.ProjectService, error) {
		return service.NewProjectService(
			do.MustInvoke[repo.ProjectRepo](i),
			do.MustInvoke[service.ReconcileService](i),
			do.MustInvoke[*zap.Logger](i),
			nil,
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.PhaseService, error) {
		return service.NewPhaseService(
			do.MustInvoke[repo.PhaseRepo](i),
			do.MustInvoke[service.ReconcileService](i),
			do.MustInvoke[*cache.FiguresCache](i),
			do.MustInvoke[*zap.Logger](i),
			nil,
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.DepartmentService, error) {
		return service.NewDepartmentService(
			do.MustInvoke[repo.DepartmentRepo](i),
			do.MustInvoke[*cache.FiguresCache](i),
			do.MustInvoke[*zap.Logger](i),
			nil,
		), nil
	})

	// Handler
	do.Provide(inj, func(i *do.Injector) (*handler.ProjectHandler, error) {
		return handler.NewProjectHandler(do.MustInvoke[service.ProjectService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.PhaseHandler, error) {
		return handler.NewPhaseHandler(do.MustInvoke[service.PhaseService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.DepartmentHandler, error) {
		return handler.NewDepartmentHandler(do.MustInvoke[service.DepartmentService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.ExpenseHandler, error) {
		return handler.NewExpenseHandler(do.MustInvoke[service.ExpenseService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.ApproverHandler, error) {
		return handler.NewApproverHandler(do.MustInvoke[service.TempApproverService](i)), nil
	})

	return inj
}
