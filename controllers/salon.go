// controllers/salon.go
package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"queuebarber-backend/cache"
	"queuebarber-backend/config"
	"queuebarber-backend/models"
	"queuebarber-backend/utils"
)

const salonCacheTTL = 30 * time.Second

// CreateSalonInput defines the expected JSON structure for creating a salon
type CreateSalonInput struct {
	Name            string               `json:"name" binding:"required"`
	Phone           string               `json:"phone" binding:"required"`
	City            string               `json:"city" binding:"required"`
	Address         string               `json:"address"`
	WhatsappSupport string               `json:"whatsappSupport"`
	Services        []CreateServiceInput `json:"services" binding:"required,min=1,dive"`
}

// UpdateSalonInput defines the expected JSON structure for updating a salon.
// The slug is derived once at creation and never changes afterwards.
type UpdateSalonInput struct {
	Name            *string `json:"name"`
	Phone           *string `json:"phone"`
	City            *string `json:"city"`
	Address         *string `json:"address"`
	WhatsappSupport *string `json:"whatsappSupport"`
}

type ToggleOpenInput struct {
	IsOpen *bool `json:"isOpen" binding:"required"`
}

// CreateSalon creates a new salon for the authenticated owner
func CreateSalon(c *gin.Context) {
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	ownerUUID, err := uuid.Parse(userID.(string))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Invalid user ID format")
		return
	}

	var input CreateSalonInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if !utils.ValidatePhone(input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number")
		return
	}
	for _, s := range input.Services {
		if s.Duration <= 0 {
			utils.RespondWithError(c, http.StatusBadRequest, "Service duration must be positive")
			return
		}
	}

	slug := utils.Slugify(input.Name)
	if slug == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "Salon name does not produce a valid slug")
		return
	}

	// Pre-check so the common case surfaces as a friendly conflict. The
	// unique index on slug still backs this against concurrent creators.
	var existing models.Salon
	result := config.DB.Where("slug = ?", slug).First(&existing)
	if result.Error == nil {
		utils.RespondWithError(c, http.StatusConflict, "This salon name is already used")
		return
	} else if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	salon := models.Salon{
		OwnerID:         ownerUUID,
		Name:            input.Name,
		Slug:            slug,
		Phone:           input.Phone,
		City:            input.City,
		Address:         input.Address,
		WhatsappSupport: input.WhatsappSupport,
		IsOpen:          true,
	}
	for _, s := range input.Services {
		salon.Services = append(salon.Services, models.Service{
			Name:     s.Name,
			Duration: s.Duration,
			Price:    s.Price,
		})
	}

	if err := config.DB.Create(&salon).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create salon")
		return
	}

	c.JSON(http.StatusCreated, salon)
}

// GetSalons lists the authenticated owner's salons
func GetSalons(c *gin.Context) {
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	var salons []models.Salon
	if err := config.DB.Preload("Services").Where("owner_id = ?", userID).Find(&salons).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve salons")
		return
	}

	c.JSON(http.StatusOK, salons)
}

// GetSalon retrieves one of the owner's salons by ID
func GetSalon(c *gin.Context) {
	salon := ownedSalon(c)
	if salon == nil {
		return
	}

	if err := config.DB.Preload("Services").First(salon, "id = ?", salon.ID).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	c.JSON(http.StatusOK, salon)
}

// UpdateSalon partially updates a salon's info fields
func UpdateSalon(c *gin.Context) {
	salon := ownedSalon(c)
	if salon == nil {
		return
	}

	var input UpdateSalonInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if input.Name != nil {
		salon.Name = *input.Name
	}
	if input.Phone != nil {
		if !utils.ValidatePhone(*input.Phone) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number")
			return
		}
		salon.Phone = *input.Phone
	}
	if input.City != nil {
		salon.City = *input.City
	}
	if input.Address != nil {
		salon.Address = *input.Address
	}
	if input.WhatsappSupport != nil {
		salon.WhatsappSupport = *input.WhatsappSupport
	}

	if err := config.DB.Save(salon).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update salon")
		return
	}

	invalidateSalonCache(salon.Slug)
	c.JSON(http.StatusOK, salon)
}

// DeleteSalon removes a salon with its services and queue entries
func DeleteSalon(c *gin.Context) {
	salon := ownedSalon(c)
	if salon == nil {
		return
	}

	// Hard delete: a soft-deleted row would keep the slug's unique index
	// occupied and block re-creating a salon under the same name.
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("salon_id = ?", salon.ID).Delete(&models.Client{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("salon_id = ?", salon.ID).Delete(&models.Service{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(salon).Error
	})
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete salon")
		return
	}

	invalidateSalonCache(salon.Slug)
	c.JSON(http.StatusOK, gin.H{"message": "Salon deleted successfully"})
}

// ToggleOpen flips the salon's open/closed flag
func ToggleOpen(c *gin.Context) {
	salon := ownedSalon(c)
	if salon == nil {
		return
	}

	var input ToggleOpenInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if err := config.DB.Model(salon).Update("is_open", *input.IsOpen).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update salon")
		return
	}

	invalidateSalonCache(salon.Slug)
	c.JSON(http.StatusOK, gin.H{"isOpen": *input.IsOpen})
}

// GetSalonBySlug serves the public salon page data: status and service menu
func GetSalonBySlug(c *gin.Context) {
	slug := c.Param("slug")
	cacheKey := "salon:slug:" + slug

	if payload, ok, err := cache.Store.Get(c.Request.Context(), cacheKey); err == nil && ok {
		c.Data(http.StatusOK, "application/json", payload)
		return
	}

	salon := salonBySlug(c)
	if salon == nil {
		return
	}

	payload, err := json.Marshal(salon)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to encode salon")
		return
	}
	if err := cache.Store.Set(c.Request.Context(), cacheKey, payload, salonCacheTTL); err != nil {
		log.Printf("cache: failed to store %s: %v", cacheKey, err)
	}

	c.Data(http.StatusOK, "application/json", payload)
}

func invalidateSalonCache(slug string) {
	if err := cache.Store.Delete(context.Background(), "salon:slug:"+slug); err != nil {
		log.Printf("cache: failed to invalidate salon %s: %v", slug, err)
	}
}
