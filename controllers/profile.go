package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"queuebarber-backend/config"
	"queuebarber-backend/models"
	"queuebarber-backend/utils"
)

type UpdateProfileInput struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

func GetProfile(c *gin.Context) {
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return
	}

	var user models.User
	if err := config.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "User not found")
		return
	}

	var salonCount int64
	config.DB.Model(&models.Salon{}).Where("owner_id = ?", user.ID).Count(&salonCount)

	c.JSON(http.StatusOK, gin.H{
		"name":       user.Name,
		"email":      user.Email,
		"salonCount": salonCount,
		"lastLogin":  user.LastLogin,
	})
}

func UpdateProfile(c *gin.Context) {
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return
	}

	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	var user models.User
	if err := config.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "User not found")
		return
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Email != nil {
		user.Email = *input.Email
	}

	if err := config.DB.Save(&user).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"name":  user.Name,
		"email": user.Email,
	})
}
