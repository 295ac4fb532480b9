package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ithaka-ucu/backoffice-api/internal/middleware"
	"github.com/ithaka-ucu/backoffice-api/internal/models"
	"github.com/ithaka-ucu/backoffice-api/internal/service"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth          *AuthHandler
	Roles         *RoleHandler
	Users         *UserHandler
	Entrepreneurs *EntrepreneurHandler
	States        *StateHandler
	Convocatorias *ConvocatoriaHandler
	Cases         *CaseHandler
	Assignments   *AssignmentHandler
	Programs      *ProgramHandler
	Supports      *SupportHandler
	Notes         *NoteHandler
	Audit         *AuditHandler
}

// RegisterRoutes mounts the API under the given prefix. Each route carries
// its own role allow-list; everything except login requires a token.
func RegisterRoutes(r *gin.Engine, prefix string, auth *service.AuthService, h Handlers) {
	admin := middleware.RequireRoles(models.RoleAdmin)
	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleCoordinator)
	anyRole := middleware.RequireRoles(models.RoleAdmin, models.RoleCoordinator, models.RoleTutor)

	api := r.Group(prefix)

	api.POST("/auth/login", h.Auth.Login)

	protected := api.Group("")
	protected.Use(middleware.JWT(auth))

	protected.GET("/auth/me", anyRole, h.Auth.Me)
	protected.POST("/auth/logout", anyRole, h.Auth.Logout)

	protected.GET("/roles", admin, h.Roles.List)
	protected.GET("/roles/:id", admin, h.Roles.Get)
	protected.POST("/roles", admin, h.Roles.Create)
	protected.PUT("/roles/:id", admin, h.Roles.Update)
	protected.DELETE("/roles/:id", admin, h.Roles.Delete)

	protected.GET("/users", admin, h.Users.List)
	protected.GET("/users/:id", admin, h.Users.Get)
	protected.POST("/users", admin, h.Users.Create)
	protected.PUT("/users/:id", admin, h.Users.Update)
	protected.DELETE("/users/:id", admin, h.Users.Delete)

	protected.GET("/entrepreneurs", anyRole, h.Entrepreneurs.List)
	protected.GET("/entrepreneurs/:id", anyRole, h.Entrepreneurs.Get)
	protected.POST("/entrepreneurs", staff, h.Entrepreneurs.Create)
	protected.PUT("/entrepreneurs/:id", staff, h.Entrepreneurs.Update)
	protected.DELETE("/entrepreneurs/:id", staff, h.Entrepreneurs.Delete)

	protected.GET("/states", anyRole, h.States.List)
	protected.GET("/states/:id", anyRole, h.States.Get)
	protected.POST("/states", staff, h.States.Create)
	protected.PUT("/states/:id", staff, h.States.Update)
	protected.DELETE("/states/:id", staff, h.States.Delete)

	protected.GET("/convocatorias", anyRole, h.Convocatorias.List)
	protected.GET("/convocatorias/:id", anyRole, h.Convocatorias.Get)
	protected.POST("/convocatorias", staff, h.Convocatorias.Create)
	protected.PUT("/convocatorias/:id", staff, h.Convocatorias.Update)
	protected.DELETE("/convocatorias/:id", staff, h.Convocatorias.Delete)

	protected.GET("/cases", anyRole, h.Cases.List)
	protected.GET("/cases/:id", anyRole, h.Cases.Get)
	protected.POST("/cases", staff, h.Cases.Create)
	protected.PUT("/cases/:id", anyRole, h.Cases.Update)
	protected.PUT("/cases/:id/state", anyRole, h.Cases.ChangeState)
	protected.DELETE("/cases/:id", admin, h.Cases.Delete)
	protected.GET("/cases/:id/requested-supports", anyRole, h.Supports.ListRequested)

	protected.GET("/assignments", staff, h.Assignments.List)
	protected.GET("/assignments/:id", staff, h.Assignments.Get)
	protected.POST("/assignments", staff, h.Assignments.Create)
	protected.DELETE("/assignments/:id", staff, h.Assignments.Delete)

	protected.GET("/programs", anyRole, h.Programs.List)
	protected.GET("/programs/:id", anyRole, h.Programs.Get)
	protected.POST("/programs", staff, h.Programs.Create)
	protected.PUT("/programs/:id", staff, h.Programs.Update)
	protected.DELETE("/programs/:id", staff, h.Programs.Delete)

	protected.GET("/supports", anyRole, h.Supports.List)
	protected.GET("/supports/:id", anyRole, h.Supports.Get)
	protected.POST("/supports", staff, h.Supports.Create)
	protected.PUT("/supports/:id", staff, h.Supports.Update)
	protected.DELETE("/supports/:id", staff, h.Supports.Delete)

	protected.POST("/requested-supports", staff, h.Supports.CreateRequested)
	protected.PUT("/requested-supports/:id", staff, h.Supports.UpdateRequested)
	protected.DELETE("/requested-supports/:id", staff, h.Supports.DeleteRequested)

	protected.GET("/notes", anyRole, h.Notes.List)
	protected.GET("/notes/:id", anyRole, h.Notes.Get)
	protected.POST("/notes", anyRole, h.Notes.Create)
	protected.PUT("/notes/:id", anyRole, h.Notes.Update)
	protected.DELETE("/notes/:id", anyRole, h.Notes.Delete)

	protected.GET("/audit", staff, h.Audit.List)
}
