package domain

import "time"

type HistoryKind string

const (
	HistoryDetect   HistoryKind = "detect"
	HistoryGenerate HistoryKind = "generate"
	HistoryAdapt    HistoryKind = "adapt"
)

// HistoryEntry records one assistant interaction.
type HistoryEntry struct {
	ID          string       `json:"id"`
	UserID      string       `json:"user_id"`
	Kind        HistoryKind  `json:"kind"`
	Ingredients []Ingredient `json:"ingredients,omitempty"`
	Recipes     []Recipe     `json:"recipes,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}
