package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"modernmen-backend/config"
	"modernmen-backend/controllers"
	"modernmen-backend/middleware"
	"modernmen-backend/services"
	"modernmen-backend/utils"
)

// Deps are the long-lived services the handlers need.
type Deps struct {
	Appointments *services.AppointmentService
	Resources    *services.ResourceService
	HR           *services.HRService
	Orders       *services.OrderService
	Reminders    *services.ReminderService
	Media        *services.MediaStore
	Hub          *services.Hub
	LimitStore   middleware.LimitStore
	OIDC         controllers.IDTokenVerifier
}

func SetupRouter(cfg *config.Config, deps Deps) *gin.Engine {
	r := gin.New()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RequestID(), middleware.Recovery(), middleware.Metrics())
	r.Use(config.PerformanceLogger())

	r.GET("/health", func(c *gin.Context) {
		utils.RespondSuccess(c, http.StatusOK, "ok", gin.H{"time": time.Now().UTC()})
	})
	r.GET("/metrics", middleware.MetricsHandler())

	authMW := utils.AuthMiddleware(cfg.Auth.JWTSecret, cfg.Auth.CookieName)
	rateLimit := middleware.RateLimit(deps.LimitStore, cfg.RateLimit.Requests, cfg.RateLimit.Window)
	staff := utils.RequireRoles(utils.RoleStylist, utils.RoleManager, utils.RoleAdmin)
	managers := utils.RequireRoles(utils.RoleManager, utils.RoleAdmin)

	authController := controllers.NewAuthController(cfg.Auth, deps.OIDC)
	auth := r.Group("/auth", rateLimit)
	{
		auth.POST("/register-business", authController.RegisterBusiness)
		auth.POST("/signup", authController.Signup)
		auth.POST("/login", authController.Login)
		auth.POST("/logout", authController.Logout)
		auth.POST("/oidc", authController.OIDCLogin)
		auth.GET("/me", authMW, authController.Me)
	}

	r.GET("/api/settings/public", rateLimit, controllers.GetPublicSettings)

	api := r.Group("/api")
	api.Use(authMW, rateLimit)
	{
		services := api.Group("/services")
		{
			services.GET("", controllers.GetServices)
			services.GET("/:id", controllers.GetService)
			services.POST("", managers, controllers.CreateService)
			services.PUT("/:id", managers, controllers.UpdateService)
			services.DELETE("/:id", managers, controllers.DeleteService)
		}

		// Customer routes
		customers := api.Group("/customers")
		{
			customers.POST("", staff, controllers.CreateCustomer)
			customers.GET("", staff, controllers.GetCustomers)
			customers.GET("/:id", controllers.GetCustomer)
			customers.PUT("/:id", controllers.UpdateCustomer)
			customers.DELETE("/:id", managers, controllers.DeleteCustomer)
			customers.GET("/:id/loyalty", controllers.GetCustomerLoyalty)
		}
		api.POST("/loyalty/add-points", managers, controllers.AddLoyaltyPoints)

		stylistController := controllers.NewStylistController(deps.Resources)
		stylists := api.Group("/stylists")
		{
			stylists.GET("", stylistController.List)
			stylists.GET("/:id", stylistController.Get)
			stylists.POST("", managers, stylistController.Create)
			stylists.PUT("/:id", staff, stylistController.Update)
			stylists.DELETE("/:id", managers, stylistController.Delete)
			stylists.POST("/:id/deactivate", managers, stylistController.Deactivate)
			stylists.POST("/:id/reactivate", managers, stylistController.Reactivate)
		}

		resourceController := controllers.NewResourceController(deps.Resources)
		resources := api.Group("/resources", staff)
		{
			resources.GET("", resourceController.List)
			resources.GET("/:id", resourceController.Get)
			resources.POST("", managers, resourceController.Create)
			resources.PUT("/:id", managers, resourceController.Update)
			resources.DELETE("/:id", managers, resourceController.Delete)
			resources.POST("/:id/deactivate", managers, resourceController.Deactivate)
			resources.POST("/:id/reactivate", managers, resourceController.Reactivate)
		}

		appointmentController := controllers.NewAppointmentController(deps.Appointments)
		appointments := api.Group("/appointments")
		{
			appointments.GET("/availability", appointmentController.Availability)
			appointments.POST("", appointmentController.Create)
			appointments.GET("", appointmentController.List)
			appointments.GET("/:id", appointmentController.Get)
			appointments.PUT("/:id", appointmentController.Update)
			appointments.DELETE("/:id", appointmentController.Delete)
			appointments.PATCH("/:id/status", staff, appointmentController.ChangeStatus)
		}

		products := api.Group("/products")
		{
			products.GET("", controllers.GetProducts)
			products.GET("/:id", controllers.GetProduct)
			products.POST("", managers, controllers.CreateProduct)
			products.PUT("/:id", managers, controllers.UpdateProduct)
			products.DELETE("/:id", managers, controllers.DeleteProduct)
			products.POST("/:id/stock", managers, controllers.AdjustProductStock)
		}

		orderController := controllers.NewOrderController(deps.Orders)
		orders := api.Group("/orders")
		{
			orders.POST("", orderController.Create)
			orders.GET("", orderController.List)
			orders.GET("/:id", orderController.Get)
			orders.PATCH("/:id/status", orderController.ChangeStatus)
			orders.PATCH("/:id/payment", staff, orderController.UpdatePayment)
		}

		hrController := controllers.NewHRController(deps.HR)
		hr := api.Group("/hr", staff)
		{
			hr.POST("/clock/in", hrController.ClockIn)
			hr.POST("/clock/out", hrController.ClockOut)
			hr.GET("/clock/session", hrController.Session)
			hr.GET("/clock/entries", hrController.Entries)
			hr.PATCH("/clock/entries/:id/approve", managers, hrController.ApproveEntry)
			hr.POST("/payroll/generate", managers, hrController.GeneratePayroll)
			hr.GET("/payroll", hrController.Payroll)
			hr.PATCH("/payroll/:id/status", managers, hrController.UpdatePayrollStatus)
		}

		settings := api.Group("/settings", managers)
		{
			settings.GET("", controllers.GetSettings)
			settings.PUT("", controllers.UpdateSettings)
		}

		templates := api.Group("/templates", staff)
		{
			templates.GET("", controllers.GetTemplates)
			templates.GET("/:id", controllers.GetTemplate)
			templates.POST("", managers, controllers.CreateTemplate)
			templates.PUT("/:id", managers, controllers.UpdateTemplate)
			templates.DELETE("/:id", managers, controllers.DeleteTemplate)
			templates.POST("/:id/use", controllers.UseTemplate)
			templates.POST("/:id/rate", controllers.RateTemplate)
		}

		mediaController := controllers.NewMediaController(deps.Media)
		media := api.Group("/media", staff)
		{
			media.POST("", mediaController.Upload)
			media.GET("", mediaController.List)
			media.GET("/:id/file", mediaController.File)
			media.DELETE("/:id", managers, mediaController.Delete)
		}

		reminderTemplates := api.Group("/reminder-templates", managers)
		{
			reminderTemplates.POST("", controllers.CreateReminderTemplate)
			reminderTemplates.GET("", controllers.GetReminderTemplates)
			reminderTemplates.GET("/:id", controllers.GetReminderTemplate)
			reminderTemplates.PUT("/:id", controllers.UpdateReminderTemplate)
			reminderTemplates.DELETE("/:id", controllers.DeleteReminderTemplate)
		}

		reminderController := controllers.NewReminderController(deps.Reminders)
		api.GET("/reminders/logs", managers, reminderController.Logs)
		api.POST("/reminders/run", managers, reminderController.Run)

		analyticsController := controllers.NewAnalyticsController()
		api.GET("/analytics", managers, analyticsController.GetAnalytics)

		realtimeController := controllers.NewRealtimeController(deps.Hub, cfg.Server.CORSOrigins)
		api.GET("/ws", realtimeController.Connect)
	}

	return r
}
