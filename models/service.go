package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	SalonID  uuid.UUID `gorm:"type:uuid;index;not null" json:"salonId"`
	Name     string    `gorm:"not null" json:"name"`
	Duration int       `gorm:"not null" json:"duration"` // in minutes
	Price    *float64  `gorm:"type:decimal(10,2)" json:"price,omitempty"`

	gorm.Model `json:"-"`
}

func (s *Service) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}
