package model

import "time"

// MaxIngredientNameLength bounds a normalized ingredient name so the
// unique index stays within InnoDB's key size limit (255 x 4 bytes).
const MaxIngredientNameLength = 255

// Ingredient is a ledger entry counting how many times a normalized
// ingredient name has been listed across all recipes.
type Ingredient struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(255) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin;uniqueIndex;not null"`
	Used      int       `json:"used" gorm:"not null;default:0;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
