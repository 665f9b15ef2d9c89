package models

import "time"

// RankingSettings is a singleton record controlling whether students may see
// the ranking. It is created lazily with visibility off the first time the
// collection is observed empty, and updated in place afterwards.
type RankingSettings struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	IsVisible   bool      `gorm:"not null" json:"is_visible"`
	LastUpdated time.Time `json:"last_updated"`
	UpdatedBy   string    `gorm:"size:36" json:"updated_by"`
}

// TeamRanking is a projected ranking row. It is derived on demand from teams
// and graded submissions, never stored.
type TeamRanking struct {
	TeamID      string `json:"team_id"`
	TeamName    string `json:"team_name"`
	TeamColor   string `json:"team_color"`
	TotalPoints int    `json:"total_points"`
	MemberCount int    `json:"member_count"`
	Position    int    `json:"position"`
}
