package domain

import "time"

// Preferences steer recipe generation.
type Preferences struct {
	Diet       string   `json:"diet,omitempty"` // e.g. vegetarian, vegan
	Allergies  []string `json:"allergies,omitempty"`
	Cuisine    string   `json:"cuisine,omitempty"`
	Servings   int      `json:"servings,omitempty"`
	MaxMinutes int      `json:"max_minutes,omitempty"` // 0 = no limit
	Language   string   `json:"language,omitempty"`    // BCP 47 tag for model output
}

// IsZero reports whether no preference is set.
func (p Preferences) IsZero() bool {
	return p.Diet == "" && len(p.Allergies) == 0 && p.Cuisine == "" &&
		p.Servings == 0 && p.MaxMinutes == 0 && p.Language == ""
}

// Profile is a user's stored profile keyed by an opaque user identifier.
type Profile struct {
	UserID      string      `json:"user_id"`
	DisplayName string      `json:"display_name,omitempty"`
	Preferences Preferences `json:"preferences"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Favorite is a recipe saved by a user.
type Favorite struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Recipe    Recipe    `json:"recipe"`
	CreatedAt time.Time `json:"created_at"`
}
