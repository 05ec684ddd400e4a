package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"queuebarber-backend/config"
	"queuebarber-backend/models"
	"queuebarber-backend/services"
	"queuebarber-backend/utils"
	"queuebarber-backend/ws"
)

func queueService() *services.QueueService {
	return services.NewQueueService(config.DB, ws.HubInstance)
}

// ownedSalon loads the salon from the :id param and checks the authenticated
// user owns it. Writes the error response itself; callers just bail on nil.
func ownedSalon(c *gin.Context) *models.Salon {
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return nil
	}

	salonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid salon ID format")
		return nil
	}

	var salon models.Salon
	if err := config.DB.First(&salon, "id = ?", salonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Salon not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return nil
	}

	if salon.OwnerID.String() != userID.(string) {
		utils.RespondWithError(c, http.StatusForbidden, "You do not own this salon")
		return nil
	}

	return &salon
}

// salonBySlug resolves a public :slug param, responding 404 on miss.
func salonBySlug(c *gin.Context) *models.Salon {
	slug := c.Param("slug")

	var salon models.Salon
	if err := config.DB.Preload("Services").First(&salon, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Salon not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return nil
	}

	return &salon
}
