package models

import (
	"time"

	"gorm.io/datatypes"
)

// Team groups students competing together in the gincana.
//
// Members holds profile ids in join order. The store does not deduplicate the
// list; the coordinator's join command is the idempotency guard.
//
// TotalPoints is a legacy field carried over from the original data model. The
// authoritative ranking is always recomputed from graded submissions and never
// reads this column.
type Team struct {
	ID          string                      `gorm:"primaryKey;size:36" json:"id"`
	Name        string                      `gorm:"size:255;not null" json:"name"`
	Description string                      `gorm:"type:text" json:"description"`
	Color       string                      `gorm:"size:32" json:"color"`
	Members     datatypes.JSONSlice[string] `json:"members"`
	TotalPoints int                         `json:"total_points"`
	CreatedAt   time.Time                   `json:"created_at"`
	CreatedBy   string                      `gorm:"size:36" json:"created_by"`
}

// HasMember reports whether the profile id is already on the roster.
func (t Team) HasMember(profileID string) bool {
	for _, id := range t.Members {
		if id == profileID {
			return true
		}
	}
	return false
}

// WithoutMember returns the roster with the given profile id removed.
func (t Team) WithoutMember(profileID string) []string {
	out := make([]string, 0, len(t.Members))
	for _, id := range t.Members {
		if id != profileID {
			out = append(out, id)
		}
	}
	return out
}
