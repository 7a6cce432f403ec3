package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a registered recipe author.
type User struct {
	ID           uint      `json:"-" gorm:"primaryKey"`
	PublicID     string    `json:"public_id" gorm:"type:char(36);uniqueIndex;not null"`
	FirstName    string    `json:"first_name" gorm:"size:50"`
	LastName     string    `json:"last_name" gorm:"size:30"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Bio          *string   `json:"bio,omitempty" gorm:"size:300"`
	Role         *string   `json:"role,omitempty" gorm:"size:100"`
	Location     *string   `json:"location,omitempty" gorm:"size:100"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BeforeCreate assigns a public identifier if the caller did not.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.PublicID == "" {
		u.PublicID = uuid.NewString()
	}
	return nil
}
