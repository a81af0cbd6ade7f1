package routes

import (
	"net/http"

	"structura-api/config"
	"structura-api/controllers"
	"structura-api/middleware"
	"structura-api/models"

	"github.com/gin-gonic/gin"
)

// Options carries the optional pieces SetupRoutes wires in.
type Options struct {
	// LoginLimiter guards POST /login. Nil disables rate limiting.
	LoginLimiter gin.HandlerFunc
}

// crud mounts the five resource handlers. writeGuards run before create, update and delete only.
func crud(group *gin.RouterGroup, list, create, get, update, remove gin.HandlerFunc, writeGuards ...gin.HandlerFunc) {
	write := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, writeGuards...), h)
	}
	group.GET("", list)
	group.POST("", write(create)...)
	group.GET("/:id", get)
	group.PUT("/:id", write(update)...)
	group.PATCH("/:id", write(update)...)
	group.DELETE("/:id", write(remove)...)
}

func SetupRoutes(router *gin.Engine, opts Options) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			login := []gin.HandlerFunc{controllers.Login}
			if opts.LoginLimiter != nil {
				login = append([]gin.HandlerFunc{opts.LoginLimiter}, login...)
			}
			public.POST("/login", login...)

			public.GET("/health", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{
					"status":  "ok",
					"message": config.AppName() + " API is running",
				})
			})

			// Address hierarchy
			public.GET("/regions", controllers.GetRegions)
			public.GET("/regions/:id", controllers.GetRegion)
			public.GET("/provinces", controllers.GetProvinces)
			public.GET("/provinces/:id", controllers.GetProvince)
			public.GET("/cities", controllers.GetCities)
			public.GET("/cities/:id", controllers.GetCity)
			public.GET("/barangays", controllers.GetBarangays)
			public.GET("/barangays/:id", controllers.GetBarangay)
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			managerOnly := middleware.RequireAccountType(models.AccountTypeUser)

			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			crud(protected.Group("/users", managerOnly),
				controllers.GetUsers, controllers.CreateUser, controllers.GetUser, controllers.UpdateUser, controllers.DeleteUser)
			crud(protected.Group("/projects"),
				controllers.GetProjects, controllers.CreateProject, controllers.GetProject, controllers.UpdateProject, controllers.DeleteProject)
			crud(protected.Group("/supervisors"),
				controllers.GetSupervisors, controllers.CreateSupervisor, controllers.GetSupervisor, controllers.UpdateSupervisor, controllers.DeleteSupervisor,
				managerOnly)
			crud(protected.Group("/clients"),
				controllers.GetClients, controllers.CreateClient, controllers.GetClient, controllers.UpdateClient, controllers.DeleteClient,
				managerOnly)
			crud(protected.Group("/field-workers"),
				controllers.GetFieldWorkers, controllers.CreateFieldWorker, controllers.GetFieldWorker, controllers.UpdateFieldWorker, controllers.DeleteFieldWorker)
			crud(protected.Group("/phases"),
				controllers.GetPhases, controllers.CreatePhase, controllers.GetPhase, controllers.UpdatePhase, controllers.DeletePhase)
			crud(protected.Group("/subtasks"),
				controllers.GetSubtasks, controllers.CreateSubtask, controllers.GetSubtask, controllers.UpdateSubtask, controllers.DeleteSubtask)
			crud(protected.Group("/attendance"),
				controllers.GetAttendance, controllers.CreateAttendance, controllers.GetAttendanceRecord, controllers.UpdateAttendance, controllers.DeleteAttendance)

			assignments := protected.Group("/subtask-assignments")
			{
				assignments.GET("", controllers.GetAssignments)
				assignments.POST("", controllers.CreateAssignments)
				assignments.DELETE("", controllers.DeleteAssignmentsBySubtask)
				assignments.DELETE("/:id", controllers.DeleteAssignment)
			}

			dashboard := protected.Group("/dashboard", managerOnly)
			{
				dashboard.GET("/pm-summary", controllers.GetPMDashboardSummary)
			}
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Endpoint not found"})
	})
}
