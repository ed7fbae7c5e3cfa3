package domain

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// RecipeIngredient is one line of a recipe's ingredient list.
type RecipeIngredient struct {
	Name     string `json:"name"`
	Amount   string `json:"amount,omitempty"`
	Optional bool   `json:"optional,omitempty"`
	InFridge bool   `json:"in_fridge,omitempty"`
}

// Recipe is a generated or adapted recipe
type Recipe struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	Ingredients []RecipeIngredient `json:"ingredients"`
	Steps       []string           `json:"steps"`
	PrepMinutes int                `json:"prep_minutes,omitempty"`
	CookMinutes int                `json:"cook_minutes,omitempty"`
	Servings    int                `json:"servings,omitempty"`
	Difficulty  Difficulty         `json:"difficulty,omitempty"`
	Tags        []string           `json:"tags,omitempty"`
}

// TotalMinutes returns prep plus cook time.
func (r Recipe) TotalMinutes() int {
	return r.PrepMinutes + r.CookMinutes
}

// Valid reports whether the recipe has the fields a cook needs.
func (r Recipe) Valid() bool {
	return r.Title != "" && len(r.Ingredients) > 0 && len(r.Steps) > 0
}
