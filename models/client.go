package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusWaiting = "waiting"
	StatusDone    = "done"
)

// Client is a walk-in customer holding a spot in a salon's queue.
// Service name and duration are copied at join time so later menu edits
// never change an entry that is already in line.
type Client struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	SalonID         uuid.UUID `gorm:"type:uuid;index;not null" json:"salonId"`
	Name            string    `gorm:"not null" json:"name"`
	Service         string    `gorm:"not null" json:"service"`
	ServiceDuration int       `gorm:"not null" json:"serviceDuration"` // in minutes
	Status          string    `gorm:"type:varchar(10);not null;default:'waiting';index" json:"status"`

	// Seq is assigned by the database and breaks created_at ties, so arrival
	// order is decided by commit order, never by a client clock.
	Seq       uint64    `gorm:"autoIncrement;uniqueIndex" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

func (c *Client) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = StatusWaiting
	}
	return
}
