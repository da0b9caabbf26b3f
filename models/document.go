package models

import (
	"time"

	"gorm.io/gorm"
)

// DefaultLocation is applied to documents created without a location.
const DefaultLocation = "India"

// Document references an HR policy file hosted on SharePoint.
type Document struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null;index" json:"name"`
	Description *string   `gorm:"type:text" json:"description"`
	Location    string    `gorm:"size:100;not null;index;default:'India'" json:"location"`
	Link        string    `gorm:"size:500;not null" json:"link"`
	LastUpdated time.Time `gorm:"not null" json:"last_updated"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

// BeforeSave stamps LastUpdated on every insert and update.
func (d *Document) BeforeSave(tx *gorm.DB) error {
	d.LastUpdated = time.Now()
	if d.Location == "" {
		d.Location = DefaultLocation
	}
	return nil
}
