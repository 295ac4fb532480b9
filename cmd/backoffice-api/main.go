package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/ithaka-ucu/backoffice-api/api/swagger"
	"github.com/ithaka-ucu/backoffice-api/internal/handler"
	"github.com/ithaka-ucu/backoffice-api/internal/middleware"
	"github.com/ithaka-ucu/backoffice-api/internal/repository"
	"github.com/ithaka-ucu/backoffice-api/internal/service"
	"github.com/ithaka-ucu/backoffice-api/pkg/config"
	"github.com/ithaka-ucu/backoffice-api/pkg/database"
	"github.com/ithaka-ucu/backoffice-api/pkg/logger"
	corsmiddleware "github.com/ithaka-ucu/backoffice-api/pkg/middleware/cors"
	reqidmiddleware "github.com/ithaka-ucu/backoffice-api/pkg/middleware/requestid"
)

// @title Ithaka Backoffice API
// @version 1.0.0
// @description Backoffice for the Ithaka entrepreneurship program
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	tx := repository.NewTxRunner(db)
	roleRepo := repository.NewRoleRepository(db)
	userRepo := repository.NewUserRepository(db)
	entrepreneurRepo := repository.NewEntrepreneurRepository(db)
	stateRepo := repository.NewStateRepository(db)
	convocatoriaRepo := repository.NewConvocatoriaRepository(db)
	caseRepo := repository.NewCaseRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	programRepo := repository.NewProgramRepository(db)
	supportRepo := repository.NewSupportRepository(db)
	requestedSupportRepo := repository.NewRequestedSupportRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	auditSvc := service.NewAuditService(auditRepo, logr)
	authSvc := service.NewAuthService(userRepo, auditRepo, tx, validate, logr, cfg.JWT)
	roleSvc := service.NewRoleService(roleRepo, auditRepo, tx, validate, logr)
	userSvc := service.NewUserService(userRepo, roleRepo, validate, logr)
	entrepreneurSvc := service.NewEntrepreneurService(entrepreneurRepo, validate, logr)
	stateSvc := service.NewStateService(stateRepo, validate, logr)
	convocatoriaSvc := service.NewConvocatoriaService(convocatoriaRepo, auditRepo, tx, validate, logr)
	caseSvc := service.NewCaseService(caseRepo, stateRepo, entrepreneurRepo, convocatoriaRepo, assignmentRepo, auditRepo, tx, validate, logr)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, userRepo, caseRepo, auditRepo, tx, validate, logr)
	programSvc := service.NewProgramService(programRepo, validate, logr)
	supportSvc := service.NewSupportService(supportRepo, requestedSupportRepo, programRepo, caseRepo, auditRepo, tx, validate, logr)
	noteSvc := service.NewNoteService(noteRepo, caseRepo, assignmentRepo, auditRepo, tx, validate, logr)

	handlers := handler.Handlers{
		Auth:          handler.NewAuthHandler(authSvc),
		Roles:         handler.NewRoleHandler(roleSvc),
		Users:         handler.NewUserHandler(userSvc),
		Entrepreneurs: handler.NewEntrepreneurHandler(entrepreneurSvc),
		States:        handler.NewStateHandler(stateSvc),
		Convocatorias: handler.NewConvocatoriaHandler(convocatoriaSvc),
		Cases:         handler.NewCaseHandler(caseSvc),
		Assignments:   handler.NewAssignmentHandler(assignmentSvc),
		Programs:      handler.NewProgramHandler(programSvc),
		Supports:      handler.NewSupportHandler(supportSvc),
		Notes:         handler.NewNoteHandler(noteSvc),
		Audit:         handler.NewAuditHandler(auditSvc),
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r, cfg.APIPrefix, authSvc, handlers)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
