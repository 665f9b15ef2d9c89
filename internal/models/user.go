package models

import "time"

// Roles recognised by the application. Instructors run the gincana, students
// join teams and submit, admins get the instructor surface plus diagnostics.
const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"
)

// ValidRole reports whether the given role is one the application knows.
func ValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleInstructor, RoleAdmin:
		return true
	}
	return false
}

// UserProfile is the application-side record kept for every identity. The
// identity provider owns authentication; this record owns role, display data
// and team membership.
type UserProfile struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Email       string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role        string    `gorm:"size:32;not null" json:"role"`
	DisplayName string    `gorm:"size:255" json:"display_name"`
	TeamID      *string   `gorm:"size:36" json:"team_id"`
	Age         *int      `json:"age"`
	Grade       string    `gorm:"size:64" json:"grade"`
	Class       string    `gorm:"size:64" json:"class"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Name returns the best displayable name for the profile.
func (p UserProfile) Name() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.Email
}

// IsInstructor reports whether the profile may run instructor commands.
func (p UserProfile) IsInstructor() bool {
	return p.Role == RoleInstructor || p.Role == RoleAdmin
}

// Credential stores the password hash backing sign-in for a profile.
type Credential struct {
	ProfileID    string    `gorm:"primaryKey;size:36" json:"profile_id"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
