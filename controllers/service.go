// controllers/service.go
package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"queuebarber-backend/config"
	"queuebarber-backend/models"
	"queuebarber-backend/utils"
)

// CreateServiceInput defines the expected JSON structure for adding a menu entry
type CreateServiceInput struct {
	Name     string   `json:"name" binding:"required"`
	Duration int      `json:"duration" binding:"required,min=1"` // in minutes
	Price    *float64 `json:"price"`
}

// UpdateServiceInput defines the expected JSON structure for updating a menu entry.
// Queue entries keep their snapshotted name and duration; edits here only
// affect clients who join afterwards.
type UpdateServiceInput struct {
	Name     *string  `json:"name"`
	Duration *int     `json:"duration"`
	Price    *float64 `json:"price"`
}

// CreateService adds a service to the salon's menu
func CreateService(c *gin.Context) {
	salon := ownedSalon(c)
	if salon == nil {
		return
	}

	var input CreateServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	service := models.Service{
		SalonID:  salon.ID,
		Name:     input.Name,
		Duration: input.Duration,
		Price:    input.Price,
	}

	if err := config.DB.Create(&service).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create service")
		return
	}

	invalidateSalonCache(salon.Slug)
	c.JSON(http.StatusCreated, service)
}

// UpdateService updates an existing menu entry
func UpdateService(c *gin.Context) {
	salon := ownedSalon(c)
	if salon == nil {
		return
	}

	serviceUUID, err := uuid.Parse(c.Param("serviceId"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid service ID format")
		return
	}

	var input UpdateServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if input.Duration != nil && *input.Duration <= 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "Service duration must be positive")
		return
	}

	var service models.Service
	if err := config.DB.Where("salon_id = ? AND id = ?", salon.ID, serviceUUID).
		First(&service).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Service not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Name != nil {
		service.Name = *input.Name
	}
	if input.Duration != nil {
		service.Duration = *input.Duration
	}
	if input.Price != nil {
		service.Price = input.Price
	}

	if err := config.DB.Save(&service).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update service")
		return
	}

	invalidateSalonCache(salon.Slug)
	c.JSON(http.StatusOK, service)
}

// DeleteService removes a menu entry. Already-queued clients keep their
// snapshotted duration.
func DeleteService(c *gin.Context) {
	salon := ownedSalon(c)
	if salon == nil {
		return
	}

	serviceUUID, err := uuid.Parse(c.Param("serviceId"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid service ID format")
		return
	}

	result := config.DB.Where("salon_id = ? AND id = ?", salon.ID, serviceUUID).
		Delete(&models.Service{})

	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete service")
		return
	}

	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Service not found")
		return
	}

	invalidateSalonCache(salon.Slug)
	c.JSON(http.StatusOK, gin.H{"message": "Service deleted successfully"})
}
