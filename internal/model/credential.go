package model

import (
	"time"

	"gorm.io/gorm"
)

// Outcome of the most recent attempt made with a credential.
const (
	ResultUnknown     = "unknown"
	ResultSuccess     = "success"
	ResultError       = "error"
	ResultRateLimited = "rate_limited"
)

// ApiCredential represents a provider API credential stored in the database.
// The pipeline mutates its bookkeeping fields after every attempt but never
// deletes a credential; deactivation is an administrative action.
type ApiCredential struct {
	gorm.Model
	Provider   string     `gorm:"type:varchar(50);index;not null" json:"provider"`
	Secret     string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"secret"`
	Active     bool       `gorm:"default:true;not null" json:"active"`
	Priority   int        `gorm:"default:0;not null" json:"priority"`
	UsageCount int64      `gorm:"default:0;not null" json:"usage_count"`
	DailyUsage int        `gorm:"default:0;not null" json:"daily_usage"`
	DailyLimit int        `gorm:"default:0;not null" json:"daily_limit"`
	LastUsedAt *time.Time `json:"last_used_at"`
	LastResult string     `gorm:"type:varchar(50);default:'unknown';not null" json:"last_result"`
}
