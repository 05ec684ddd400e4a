// controllers/queue.go
package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"queuebarber-backend/models"
	"queuebarber-backend/services"
	"queuebarber-backend/utils"
	"queuebarber-backend/ws"
)

// JoinQueueInput is the public join form: just a name and a chosen service
type JoinQueueInput struct {
	Name      string `json:"name" binding:"required"`
	ServiceID string `json:"serviceId" binding:"required,uuid"`
}

// JoinQueue appends a walk-in to a salon's queue. Public, no auth.
func JoinQueue(c *gin.Context) {
	salon := salonBySlug(c)
	if salon == nil {
		return
	}

	var input JoinQueueInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	serviceUUID, err := uuid.Parse(input.ServiceID)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid service ID format")
		return
	}

	client, err := queueService().Append(salon.ID, input.Name, serviceUUID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSalonClosed):
			utils.RespondWithError(c, http.StatusConflict, "The salon is currently closed")
		case errors.Is(err, services.ErrServiceNotFound):
			utils.RespondWithError(c, http.StatusBadRequest, "Unknown service")
		default:
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to join the queue")
		}
		return
	}

	respondWithQueuedClient(c, salon.ID, salon.IsOpen, client)
}

// AddClient appends a walk-in from the owner dashboard. Unlike the public
// join, this works while the salon is closed: the person is already in the
// shop.
func AddClient(c *gin.Context) {
	salon := ownedSalon(c)
	if salon == nil {
		return
	}

	var input JoinQueueInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	serviceUUID, err := uuid.Parse(input.ServiceID)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid service ID format")
		return
	}

	client, err := queueService().AppendByOwner(salon.ID, input.Name, serviceUUID)
	if err != nil {
		if errors.Is(err, services.ErrServiceNotFound) {
			utils.RespondWithError(c, http.StatusBadRequest, "Unknown service")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to add client")
		}
		return
	}

	respondWithQueuedClient(c, salon.ID, salon.IsOpen, client)
}

// respondWithQueuedClient tells the new joiner where they landed.
func respondWithQueuedClient(c *gin.Context, salonID uuid.UUID, isOpen bool, client *models.Client) {
	update, err := queueService().ProjectedSnapshot(salonID, isOpen)
	if err != nil {
		// The entry is in; degrade to returning it without derived fields.
		c.JSON(http.StatusCreated, gin.H{"client": client})
		return
	}
	for _, entry := range update.Clients {
		if entry.ID == client.ID {
			c.JSON(http.StatusCreated, gin.H{
				"client":            entry,
				"position":          entry.Position,
				"estimatedWaitTime": entry.EstimatedWaitTime,
				"stats":             update.Stats,
			})
			return
		}
	}
	c.JSON(http.StatusCreated, gin.H{"client": client})
}

// GetQueue returns the projected queue for a salon's public page
func GetQueue(c *gin.Context) {
	salon := salonBySlug(c)
	if salon == nil {
		return
	}

	update, err := queueService().ProjectedSnapshot(salon.ID, salon.IsOpen)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load queue")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"clients": update.Clients,
		"stats":   update.Stats,
	})
}

// QueueWebSocket subscribes the caller to live queue updates for a salon.
// The current snapshot is delivered first, then one message per change.
func QueueWebSocket(c *gin.Context) {
	salon := salonBySlug(c)
	if salon == nil {
		return
	}

	var initial []byte
	if update, err := queueService().ProjectedSnapshot(salon.ID, salon.IsOpen); err == nil {
		if payload, err := json.Marshal(update); err == nil {
			initial = payload
		}
	}

	if err := ws.Serve(ws.HubInstance, c.Writer, c.Request, salon.ID.String(), initial); err != nil {
		log.Printf("websocket upgrade failed for salon %s: %v", salon.Slug, err)
	}
}

// MarkClientDone flags a queue entry as served. Owner only.
func MarkClientDone(c *gin.Context) {
	salon := ownedSalon(c)
	if salon == nil {
		return
	}

	clientUUID, err := uuid.Parse(c.Param("clientId"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid client ID format")
		return
	}

	if err := queueService().MarkDone(salon.ID, clientUUID); err != nil {
		if errors.Is(err, services.ErrClientNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Client not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update client")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Client marked as done"})
}

// RemoveClient deletes a queue entry regardless of status. Owner only.
func RemoveClient(c *gin.Context) {
	salon := ownedSalon(c)
	if salon == nil {
		return
	}

	clientUUID, err := uuid.Parse(c.Param("clientId"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid client ID format")
		return
	}

	if err := queueService().Remove(salon.ID, clientUUID); err != nil {
		if errors.Is(err, services.ErrClientNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Client not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to remove client")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Client removed"})
}

// ClearCompleted deletes every served entry in one batch. Owner only.
func ClearCompleted(c *gin.Context) {
	salon := ownedSalon(c)
	if salon == nil {
		return
	}

	cleared, err := queueService().ClearCompleted(salon.ID)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to clear completed clients")
		return
	}

	c.JSON(http.StatusOK, gin.H{"cleared": cleared})
}

// OwnerQueue returns the projected queue for the dashboard view
func OwnerQueue(c *gin.Context) {
	salon := ownedSalon(c)
	if salon == nil {
		return
	}

	update, err := queueService().ProjectedSnapshot(salon.ID, salon.IsOpen)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load queue")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"clients": update.Clients,
		"stats":   update.Stats,
	})
}
