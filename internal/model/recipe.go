package model

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Recipe represents a submitted recipe together with its rating state.
type Recipe struct {
	ID              uint                `json:"id" gorm:"primaryKey"`
	Name            string              `json:"name" gorm:"size:50;not null;index"`
	Body            string              `json:"body" gorm:"type:text"`
	Ratings         RatingHistory       `json:"ratings" gorm:"type:text"`
	AvgRating       decimal.NullDecimal `json:"avg_rating" gorm:"type:decimal(20,10)"`
	OwnerEmail      string              `json:"owner_email" gorm:"size:255;not null;index"`
	IngredientList  string              `json:"ingredient_list" gorm:"type:text"`
	IngredientCount int                 `json:"ingredient_count" gorm:"not null;default:0;index"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// RatingHistory is the ordered list of ratings a recipe has received.
// It is stored as comma-delimited text; an empty history is stored as NULL.
type RatingHistory []int

// Value implements driver.Valuer.
func (h RatingHistory) Value() (driver.Value, error) {
	if len(h) == 0 {
		return nil, nil
	}
	parts := make([]string, len(h))
	for i, r := range h {
		parts[i] = strconv.Itoa(r)
	}
	return strings.Join(parts, ","), nil
}

// Scan implements sql.Scanner.
func (h *RatingHistory) Scan(value interface{}) error {
	var raw string
	switch v := value.(type) {
	case nil:
		*h = nil
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("scan rating history: unsupported type %T", value)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		*h = nil
		return nil
	}

	fields := strings.Split(raw, ",")
	out := make(RatingHistory, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return fmt.Errorf("scan rating history: %w", err)
		}
		out = append(out, n)
	}
	*h = out
	return nil
}

// Sum returns the total of all ratings.
func (h RatingHistory) Sum() int64 {
	var total int64
	for _, r := range h {
		total += int64(r)
	}
	return total
}

// Average returns sum/len using decimal division. ok is false for an empty history.
func (h RatingHistory) Average() (avg decimal.Decimal, ok bool) {
	if len(h) == 0 {
		return decimal.Zero, false
	}
	return decimal.NewFromInt(h.Sum()).Div(decimal.NewFromInt(int64(len(h)))), true
}
