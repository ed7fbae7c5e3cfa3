package chef

import (
	"fmt"
	"strings"

	"github.com/vietddude/fridgechef/internal/core/domain"
)

const systemPrompt = "You are a practical home-cooking assistant for a smart fridge. " +
	"Answer only with JSON, no markdown and no commentary."

const detectPrompt = `List every food ingredient visible in this fridge photo.
Return a JSON array of objects with fields:
  "name" (singular, lower case), "quantity" (rough estimate, e.g. "2", "half a bottle"),
  "category" (one of: produce, dairy, meat, seafood, grains, condiments, beverages, other).
Ignore containers whose content cannot be identified.`

func recipesPrompt(ingredients []domain.Ingredient, prefs domain.Preferences, count int) string {
	var b strings.Builder
	b.WriteString("Ingredients in my fridge:\n")
	for _, ing := range ingredients {
		if ing.Quantity != "" {
			fmt.Fprintf(&b, "- %s (%s)\n", ing.Name, ing.Quantity)
		} else {
			fmt.Fprintf(&b, "- %s\n", ing.Name)
		}
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Suggest %d recipes that mostly use these ingredients. "+
		"Basic pantry staples (salt, pepper, oil, water) may be assumed.\n", count)
	writePreferences(&b, prefs)
	b.WriteString(recipeSchema)
	return b.String()
}

func adaptPrompt(recipe, instruction string, prefs domain.Preferences) string {
	var b strings.Builder
	b.WriteString("Here is a recipe as JSON:\n")
	b.WriteString(recipe)
	b.WriteString("\n\nRewrite it according to this request: ")
	b.WriteString(strings.TrimSpace(instruction))
	b.WriteString("\nKeep anything the request does not ask to change.\n")
	writePreferences(&b, prefs)
	b.WriteString("Return a single JSON object with the same fields as the input recipe.")
	return b.String()
}

func writePreferences(b *strings.Builder, p domain.Preferences) {
	if p.Diet != "" {
		fmt.Fprintf(b, "Diet: %s.\n", p.Diet)
	}
	if len(p.Allergies) > 0 {
		fmt.Fprintf(b, "Never use: %s.\n", strings.Join(p.Allergies, ", "))
	}
	if p.Cuisine != "" {
		fmt.Fprintf(b, "Preferred cuisine: %s.\n", p.Cuisine)
	}
	if p.Servings > 0 {
		fmt.Fprintf(b, "Servings: %d.\n", p.Servings)
	}
	if p.MaxMinutes > 0 {
		fmt.Fprintf(b, "Total time must not exceed %d minutes.\n", p.MaxMinutes)
	}
	if p.Language != "" {
		fmt.Fprintf(b, "Write titles, descriptions and steps in language %q.\n", p.Language)
	}
}

const recipeSchema = `
Return a JSON array; each recipe is an object with fields:
  "title", "description",
  "ingredients" (array of {"name", "amount", "optional"}),
  "steps" (array of strings),
  "prep_minutes", "cook_minutes", "servings",
  "difficulty" (easy|medium|hard), "tags" (array of strings).`
