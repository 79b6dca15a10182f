package model

import "time"

// Import session kinds.
const (
	SessionSuccess = "success"
	SessionFailure = "failure"
)

// ImportSession is an append-only audit record of one import outcome. It is
// written once, never updated, and becomes eligible for deletion after its
// retention window.
type ImportSession struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(36);index;not null" json:"user_id"`
	Kind      string    `gorm:"type:varchar(20);index;not null" json:"kind"`
	Payload   []byte    `json:"payload"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	ExpiresAt time.Time `gorm:"index" json:"expires_at"`
}
