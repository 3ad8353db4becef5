package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Profile represents a user profile (profiles table).
// The row id equals the auth user id.
type Profile struct {
	ID        string    `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	Name      string    `gorm:"column:name" json:"name"`
	AvatarURL string    `gorm:"column:avatar_url" json:"avatar_url"`
	Bio       string    `gorm:"column:bio;type:text" json:"bio"`
	Email     string    `gorm:"column:email;uniqueIndex" json:"email"`
	Password  string    `gorm:"column:password" json:"-"`
	IsAdmin   bool      `gorm:"column:is_admin" json:"-"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

// ProfileResponse represents a profile in API responses
type ProfileResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
	Bio       string `json:"bio"`
	Email     string `json:"email,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// ToResponse converts Profile to ProfileResponse
func (p *Profile) ToResponse() *ProfileResponse {
	return &ProfileResponse{
		ID:        p.ID,
		Name:      p.Name,
		AvatarURL: p.AvatarURL,
		Bio:       p.Bio,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}

// PlaceholderProfile builds a deterministic display profile for a user id
// whose profiles row is missing. The avatar is a generated-initials image
// so the UI always has something to render.
func PlaceholderProfile(userID string) *ProfileResponse {
	seed := userID
	if len(seed) > 8 {
		seed = seed[:8]
	}
	name := "用户" + seed
	return &ProfileResponse{
		ID:        userID,
		Name:      name,
		AvatarURL: fmt.Sprintf("https://ui-avatars.com/api/?name=%s&background=random", url.QueryEscape(seed)),
	}
}

// DisplayNameFromEmail derives a fallback display name from the email
// local part, matching the sign-up fallback behavior.
func DisplayNameFromEmail(email string) string {
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	if email != "" {
		return email
	}
	return "User"
}

// UpdateProfileRequest updates display fields only
type UpdateProfileRequest struct {
	Name      string `json:"name"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatar_url"`
}
