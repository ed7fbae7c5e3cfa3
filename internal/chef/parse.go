package chef

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/vietddude/fridgechef/internal/core/domain"
)

// ErrBadModelOutput is returned when the model text cannot be read as the expected JSON.
var ErrBadModelOutput = errors.New("chef: model output is not valid JSON")

// extractJSON trims markdown fences and any prose around the first JSON
// value in text. A fenced block wins over brackets in surrounding prose.
func extractJSON(text string) (string, error) {
	s := strings.TrimSpace(text)
	if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+3:]
		// Skip the info string, e.g. "json"
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		} else {
			s = strings.TrimPrefix(strings.TrimPrefix(s, "json"), "JSON")
		}
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.IndexAny(s, "[{")
	if start < 0 {
		return "", ErrBadModelOutput
	}
	closer := byte(']')
	if s[start] == '{' {
		closer = '}'
	}
	end := strings.LastIndexByte(s, closer)
	if end < start {
		return "", ErrBadModelOutput
	}
	return s[start : end+1], nil
}

// decodeList accepts either a bare JSON array or an object wrapping the
// array under field.
func decodeList[T any](text, field string) ([]T, error) {
	raw, err := extractJSON(text)
	if err != nil {
		return nil, err
	}

	var list []T
	if raw[0] == '[' {
		if err := json.Unmarshal([]byte(raw), &list); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadModelOutput, err)
		}
		return list, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &wrapped); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadModelOutput, err)
	}
	inner, ok := wrapped[field]
	if !ok {
		return nil, fmt.Errorf("%w: missing %q", ErrBadModelOutput, field)
	}
	if err := json.Unmarshal(inner, &list); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadModelOutput, err)
	}
	return list, nil
}

func parseIngredients(text string) ([]domain.Ingredient, error) {
	return decodeList[domain.Ingredient](text, "ingredients")
}

func parseRecipes(text string) ([]domain.Recipe, error) {
	return decodeList[domain.Recipe](text, "recipes")
}

func parseRecipe(text string) (domain.Recipe, error) {
	var r domain.Recipe
	raw, err := extractJSON(text)
	if err != nil {
		return r, err
	}
	if raw[0] == '[' {
		list, err := parseRecipes(raw)
		if err != nil {
			return r, err
		}
		if len(list) == 0 {
			return r, ErrBadModelOutput
		}
		return list[0], nil
	}
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return r, fmt.Errorf("%w: %v", ErrBadModelOutput, err)
	}
	// {"recipe": {...}}
	if r.Title == "" {
		var wrapped struct {
			Recipe domain.Recipe `json:"recipe"`
		}
		if err := json.Unmarshal([]byte(raw), &wrapped); err == nil && wrapped.Recipe.Title != "" {
			r = wrapped.Recipe
		}
	}
	return r, nil
}
