package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Salon struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	OwnerID         uuid.UUID `gorm:"type:uuid;index;not null" json:"ownerId"`
	Name            string    `gorm:"not null" json:"name"`
	Slug            string    `gorm:"uniqueIndex;not null" json:"slug"`
	Phone           string    `gorm:"not null" json:"phone"`
	City            string    `gorm:"not null" json:"city"`
	Address         string    `json:"address,omitempty"`
	WhatsappSupport string    `json:"whatsappSupport,omitempty"`
	IsOpen          bool      `gorm:"default:true" json:"isOpen"`

	Services []Service `gorm:"foreignKey:SalonID" json:"services"`

	gorm.Model `json:"-"`
}

func (s *Salon) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}
