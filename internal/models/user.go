package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq" // required for pq.StringArray
	"gorm.io/gorm"
)

// User represents a registered member of the service. Only the fields the
// meetup flow touches live here; profile editing is handled elsewhere.
type User struct {
	ID        string         `gorm:"primaryKey" json:"id"` // UUID
	Username  string         `gorm:"uniqueIndex" json:"username"`
	Interests pq.StringArray `gorm:"type:text[]" json:"interests"`
}

// BeforeCreate is a GORM hook that runs before a record is inserted.
// It generates a new UUID for the user if the ID is not set yet.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}
