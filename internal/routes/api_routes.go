package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/crimi5361/IIPEA-BACKEND/internal/handlers"
	"github.com/crimi5361/IIPEA-BACKEND/internal/middleware"
)

// RegisterAPIRoutes mounts every authenticated API route under /api.
func RegisterAPIRoutes(api *gin.RouterGroup, h *Handlers) {
	apiGroup := api.Group("/api")
	{
		students := apiGroup.Group("/students")
		{
			students.POST("", middleware.RequirePermission("students_create"), h.Students.Create)
			students.GET("", h.Students.List)
			students.GET("/:id", h.Students.Get)
			students.PUT("/:id", middleware.RequirePermission("students_update"), h.Students.Update)
			students.DELETE("/:id", middleware.RequirePermission("students_delete"), h.Students.Delete)
			students.GET("/:id/payments", h.Payments.ListByStudent)
			students.GET("/:id/waivers", h.Waivers.ListByStudent)
			students.GET("/:id/waivers/active", h.Waivers.ActiveByStudent)
		}

		payments := apiGroup.Group("/payments")
		{
			payments.POST("", middleware.RequirePermission("payments_record"), h.Payments.Create)
			payments.GET("/archive/download", middleware.RequirePermission("payments_view_all"), h.Payments.DownloadArchive)
			payments.GET("/:id", h.Payments.Get)
		}

		waivers := apiGroup.Group("/waivers")
		{
			waivers.POST("", middleware.RequirePermission("waivers_request"), h.Waivers.Request)
			waivers.GET("/pending", middleware.RequirePermission("waivers_decide"), h.Waivers.PendingQueue)
			waivers.POST("/:id/decide", middleware.RequirePermission("waivers_decide"), h.Waivers.Decide)
		}

		classes := apiGroup.Group("/classes")
		{
			classes.GET("", h.Classes.List)
			classes.GET("/:id", h.Classes.Get)
			classes.GET("/:id/groups", h.Classes.Groups)
			classes.POST("/:id/divide", middleware.RequirePermission("classes_divide"), h.Classes.Divide)
		}

		years := apiGroup.Group("/academic-years")
		{
			years.GET("", h.Years.List)
			years.GET("/current", h.Years.Current)
			years.POST("", middleware.RequirePermission("years_manage"), h.Years.Create)
			years.POST("/:id/close", middleware.RequirePermission("years_manage"), h.Years.Close)
			years.POST("/:id/reopen", middleware.RequirePermission("years_manage"), h.Years.Reopen)
		}

		admin := apiGroup.Group("/admin", middleware.RequirePermission("admin_manage"))
		{
			admin.GET("/users", h.Users.List)
			admin.POST("/users", h.Users.Create)
			admin.GET("/users/:id", h.Users.Get)
			admin.PUT("/users/:id", h.Users.Update)
			admin.DELETE("/users/:id", h.Users.Delete)

			admin.GET("/roles", h.Roles.List)
			admin.POST("/roles", h.Roles.Create)
			admin.GET("/roles/:id", h.Roles.Get)
			admin.PUT("/roles/:id", h.Roles.Update)
			admin.DELETE("/roles/:id", h.Roles.Delete)

			admin.GET("/permissions", h.Permissions.List)
			admin.POST("/permissions", h.Permissions.Create)
			admin.PUT("/permissions/:id", h.Permissions.Update)
			admin.DELETE("/permissions/:id", h.Permissions.Delete)
		}

		catalog := apiGroup.Group("/catalog")
		{
			catalog.GET("/categories", h.Catalog.ListCategories)
			catalog.GET("/programs", h.Catalog.ListPrograms)
			catalog.POST("/programs", middleware.RequirePermission("catalog_manage"), h.Catalog.CreateProgram)
			catalog.GET("/programs/:id/levels", h.Catalog.ListLevels)
			catalog.GET("/curricula", h.Catalog.ListCurricula)
		}
	}
}

// Handlers bundles every API handler for route registration.
type Handlers struct {
	Students    *handlers.StudentHandler
	Payments    *handlers.PaymentHandler
	Waivers     *handlers.WaiverHandler
	Classes     *handlers.ClassHandler
	Years       *handlers.AcademicYearHandler
	Catalog     *handlers.CatalogHandler
	Users       *handlers.UserHandler
	Roles       *handlers.RoleHandler
	Permissions *handlers.PermissionHandler
}
