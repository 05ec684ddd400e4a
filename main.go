package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"queuebarber-backend/cache"
	"queuebarber-backend/config"
	"queuebarber-backend/models"
	"queuebarber-backend/routes"
	"queuebarber-backend/services"
	"queuebarber-backend/ws"
)

func init() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	config.ConnectDB()

	config.DB.AutoMigrate(
		&models.User{},
		&models.Salon{},
		&models.Service{},
		&models.Client{},
	)
}

func main() {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		db := 0
		if env := os.Getenv("REDIS_DB"); env != "" {
			if n, err := strconv.Atoi(env); err == nil {
				db = n
			}
		}
		cache.Store = cache.NewRedis(addr, os.Getenv("REDIS_PASSWORD"), db)
		log.Println("Redis cache enabled")
	}

	go ws.HubInstance.Run()

	digest := services.NewDigestService(config.DB, ws.HubInstance)
	digest.StartScheduler()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r := routes.SetupRouter()
	printRoutes(r)
	r.Run(":" + port)
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
