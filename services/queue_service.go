// services/queue_service.go
package services

import (
	"encoding/json"
	"errors"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"queuebarber-backend/models"
	"queuebarber-backend/ws"
)

var (
	ErrSalonNotFound   = errors.New("salon not found")
	ErrSalonClosed     = errors.New("salon is closed")
	ErrServiceNotFound = errors.New("service not found")
	ErrClientNotFound  = errors.New("client not found")
)

// QueueService owns a salon's queue entries: append, mark done, remove and
// clear completed, with every mutation fanned out to live subscribers.
type QueueService struct {
	db  *gorm.DB
	hub *ws.Hub
}

func NewQueueService(db *gorm.DB, hub *ws.Hub) *QueueService {
	return &QueueService{db: db, hub: hub}
}

// QueueUpdate is the message pushed to subscribers on every change.
type QueueUpdate struct {
	Type    string        `json:"type"`
	SalonID string        `json:"salonId"`
	Clients []QueueClient `json:"clients"`
	Stats   QueueStats    `json:"stats"`
}

// Append adds a walk-in to the end of the queue, snapshotting the chosen
// service's name and duration. Duplicate names are allowed. Rejected while
// the salon is closed; this is the public join path.
func (s *QueueService) Append(salonID uuid.UUID, name string, serviceID uuid.UUID) (*models.Client, error) {
	return s.append(salonID, name, serviceID, false)
}

// AppendByOwner queues a physically-present walk-in from the dashboard.
// Owners can keep adding clients while the public page shows closed.
func (s *QueueService) AppendByOwner(salonID uuid.UUID, name string, serviceID uuid.UUID) (*models.Client, error) {
	return s.append(salonID, name, serviceID, true)
}

func (s *QueueService) append(salonID uuid.UUID, name string, serviceID uuid.UUID, allowClosed bool) (*models.Client, error) {
	var salon models.Salon
	if err := s.db.First(&salon, "id = ?", salonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSalonNotFound
		}
		return nil, err
	}
	if !salon.IsOpen && !allowClosed {
		return nil, ErrSalonClosed
	}

	var service models.Service
	if err := s.db.First(&service, "salon_id = ? AND id = ?", salonID, serviceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}

	client := models.Client{
		SalonID:         salonID,
		Name:            name,
		Service:         service.Name,
		ServiceDuration: service.Duration,
		Status:          models.StatusWaiting,
	}
	if err := s.db.Create(&client).Error; err != nil {
		return nil, err
	}

	s.publish(salonID, salon.IsOpen)
	return &client, nil
}

// MarkDone flags an entry as served. Marking an already-done entry again is a
// no-op with the same observable state.
func (s *QueueService) MarkDone(salonID, clientID uuid.UUID) error {
	result := s.db.Model(&models.Client{}).
		Where("salon_id = ? AND id = ?", salonID, clientID).
		Update("status", models.StatusDone)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrClientNotFound
	}

	s.publishWithSalonLookup(salonID)
	return nil
}

// Remove deletes an entry regardless of status. Any confirmation step is the
// caller's problem.
func (s *QueueService) Remove(salonID, clientID uuid.UUID) error {
	result := s.db.Where("salon_id = ? AND id = ?", salonID, clientID).
		Delete(&models.Client{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrClientNotFound
	}

	s.publishWithSalonLookup(salonID)
	return nil
}

// ClearCompleted batch-deletes every done entry. Entries created concurrently
// with the delete are not covered; there is no snapshot isolation here.
func (s *QueueService) ClearCompleted(salonID uuid.UUID) (int64, error) {
	result := s.db.Where("salon_id = ? AND status = ?", salonID, models.StatusDone).
		Delete(&models.Client{})
	if result.Error != nil {
		return 0, result.Error
	}

	s.publishWithSalonLookup(salonID)
	return result.RowsAffected, nil
}

// Snapshot loads the salon's entries in arrival order.
func (s *QueueService) Snapshot(salonID uuid.UUID) ([]models.Client, error) {
	var clients []models.Client
	err := s.db.Where("salon_id = ?", salonID).
		Order("created_at ASC, seq ASC").
		Find(&clients).Error
	return clients, err
}

// ProjectedSnapshot loads and projects in one step.
func (s *QueueService) ProjectedSnapshot(salonID uuid.UUID, isOpen bool) (*QueueUpdate, error) {
	clients, err := s.Snapshot(salonID)
	if err != nil {
		return nil, err
	}
	projected, stats := ProjectQueue(clients)
	stats.IsOpen = isOpen
	return &QueueUpdate{
		Type:    "queue",
		SalonID: salonID.String(),
		Clients: projected,
		Stats:   stats,
	}, nil
}

func (s *QueueService) publishWithSalonLookup(salonID uuid.UUID) {
	var salon models.Salon
	isOpen := true
	if err := s.db.First(&salon, "id = ?", salonID).Error; err == nil {
		isOpen = salon.IsOpen
	}
	s.publish(salonID, isOpen)
}

// publish pushes the fresh projection to every subscriber of the salon.
// Fan-out failures are logged, never surfaced: the mutation already committed.
func (s *QueueService) publish(salonID uuid.UUID, isOpen bool) {
	update, err := s.ProjectedSnapshot(salonID, isOpen)
	if err != nil {
		log.Printf("queue broadcast: failed to load snapshot for salon %s: %v", salonID, err)
		return
	}
	payload, err := json.Marshal(update)
	if err != nil {
		log.Printf("queue broadcast: failed to marshal update for salon %s: %v", salonID, err)
		return
	}
	s.hub.Publish(salonID.String(), payload)
}
