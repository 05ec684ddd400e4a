package routes

import (
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"queuebarber-backend/config"
	"queuebarber-backend/controllers"
	"queuebarber-backend/utils"
)

func SetupRouter() *gin.Engine {
	r := gin.Default()

	origins := []string{"http://localhost:3000"}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		origins = strings.Split(env, ",")
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger())

	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)

		auth.Use(utils.AuthMiddleware())
		auth.GET("/me", controllers.Me)
	}

	// Public salon pages: anyone with the QR code link can view and join
	public := r.Group("/salons")
	{
		public.GET("/:slug", controllers.GetSalonBySlug)
		public.GET("/:slug/queue", controllers.GetQueue)
		public.POST("/:slug/queue/join", controllers.JoinQueue)
		public.GET("/:slug/queue/ws", controllers.QueueWebSocket)
	}

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware())
	{
		// Salon routes
		salons := api.Group("/salons")
		{
			salons.POST("", controllers.CreateSalon)
			salons.GET("", controllers.GetSalons)
			salons.GET("/:id", controllers.GetSalon)
			salons.PUT("/:id", controllers.UpdateSalon)
			salons.DELETE("/:id", controllers.DeleteSalon)
			salons.PUT("/:id/toggle", controllers.ToggleOpen)

			// Service menu routes
			salons.POST("/:id/services", controllers.CreateService)
			salons.PUT("/:id/services/:serviceId", controllers.UpdateService)
			salons.DELETE("/:id/services/:serviceId", controllers.DeleteService)

			// Queue management routes
			salons.GET("/:id/queue", controllers.OwnerQueue)
			salons.POST("/:id/queue", controllers.AddClient)
			salons.PUT("/:id/queue/:clientId/done", controllers.MarkClientDone)
			salons.DELETE("/:id/queue/:clientId", controllers.RemoveClient)
			// Clearing served entries targets the queue itself, not one client
			salons.DELETE("/:id/queue", controllers.ClearCompleted)

			// Dashboard routes
			salons.GET("/:id/dashboard", controllers.GetDashboardOverview)
		}

		// Settings routes
		profile := api.Group("/profile")
		{
			profile.GET("", controllers.GetProfile)
			profile.PUT("", controllers.UpdateProfile)
		}
	}

	return r
}
