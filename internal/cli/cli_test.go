package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/vietddude/fridgechef/internal/core/domain"
)

func TestToIngredients(t *testing.T) {
	got := toIngredients([]string{" eggs", "", "spinach ", "  "})
	if len(got) != 2 || got[0].Name != "eggs" || got[1].Name != "spinach" {
		t.Errorf("unexpected ingredients %+v", got)
	}
}

func TestPrintRecipes(t *testing.T) {
	var buf bytes.Buffer
	printRecipes(&buf, []domain.Recipe{{
		Title:       "Shakshuka",
		PrepMinutes: 5,
		CookMinutes: 20,
		Ingredients: []domain.RecipeIngredient{
			{Name: "eggs", Amount: "4", InFridge: true},
			{Name: "cumin"},
		},
		Steps: []string{"Simmer tomatoes", "Poach eggs"},
	}})

	out := buf.String()
	for _, want := range []string{"Shakshuka (25 min)", "* 4 eggs", "  cumin", "2. Poach eggs"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := map[string]bool{"detect": false, "suggest": false, "status": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %s not registered", name)
		}
	}
}
