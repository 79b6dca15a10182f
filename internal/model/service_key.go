package model

import (
	"time"

	"gorm.io/gorm"
)

// ServiceKey represents a caller's API key for accessing the import service.
type ServiceKey struct {
	gorm.Model
	Key        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	UsageCount int       `gorm:"default:0;not null"`
	Status     string    `gorm:"type:varchar(50);default:'active';not null"`
	ExpiresAt  time.Time `gorm:"default:null"`
}
