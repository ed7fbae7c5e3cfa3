package domain

import "strings"

// Ingredient is a food item detected in (or typed into) the fridge list.
type Ingredient struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity,omitempty"`
	Category string `json:"category,omitempty"`
}

// Key returns the normalized name used for deduplication.
func (i Ingredient) Key() string {
	return strings.ToLower(strings.TrimSpace(i.Name))
}

// DedupeIngredients drops blank names and repeated names, keeping the first occurrence.
func DedupeIngredients(in []Ingredient) []Ingredient {
	seen := make(map[string]struct{}, len(in))
	out := make([]Ingredient, 0, len(in))
	for _, ing := range in {
		key := ing.Key()
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		ing.Name = strings.TrimSpace(ing.Name)
		out = append(out, ing)
	}
	return out
}

// IngredientNames returns trimmed names in order.
func IngredientNames(in []Ingredient) []string {
	names := make([]string, 0, len(in))
	for _, ing := range in {
		names = append(names, strings.TrimSpace(ing.Name))
	}
	return names
}
