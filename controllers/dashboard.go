package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"queuebarber-backend/config"
	"queuebarber-backend/models"
	"queuebarber-backend/utils"
)

type DashboardOverview struct {
	TotalWaiting      int    `json:"totalWaiting"`
	EstimatedWaitTime int    `json:"estimatedWaitTime"` // minutes until the queue clears
	WaitTimeLabel     string `json:"waitTimeLabel"`
	ServedToday       int64  `json:"servedToday"` // best-effort: cleared entries are not counted
	IsOpen            bool   `json:"isOpen"`
}

// GetDashboardOverview summarizes a salon's queue for the owner dashboard
func GetDashboardOverview(c *gin.Context) {
	salon := ownedSalon(c)
	if salon == nil {
		return
	}

	update, err := queueService().ProjectedSnapshot(salon.ID, salon.IsOpen)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load queue")
		return
	}

	// Served today
	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var servedToday int64
	config.DB.Model(&models.Client{}).
		Where("salon_id = ? AND status = ? AND created_at >= ?", salon.ID, models.StatusDone, startOfDay).
		Count(&servedToday)

	overview := DashboardOverview{
		TotalWaiting:      update.Stats.TotalWaiting,
		EstimatedWaitTime: update.Stats.EstimatedWaitTime,
		WaitTimeLabel:     utils.FormatWaitTime(update.Stats.EstimatedWaitTime),
		ServedToday:       servedToday,
		IsOpen:            salon.IsOpen,
	}

	c.JSON(http.StatusOK, overview)
}
