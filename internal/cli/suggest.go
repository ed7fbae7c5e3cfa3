package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vietddude/fridgechef/internal/core/domain"
)

var (
	suggestUser        string
	suggestIngredients []string
	suggestDiet        string
	suggestMaxMinutes  int
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Suggest recipes for a list of ingredients",
	Run:   runSuggest,
}

func init() {
	suggestCmd.Flags().StringVar(&suggestUser, "user", "cli", "user id whose profile preferences apply")
	suggestCmd.Flags().StringSliceVar(&suggestIngredients, "ingredients", nil, "comma separated ingredients, e.g. eggs,spinach,feta")
	suggestCmd.Flags().StringVar(&suggestDiet, "diet", "", "diet, e.g. vegetarian")
	suggestCmd.Flags().IntVar(&suggestMaxMinutes, "max-minutes", 0, "maximum total cooking time")
	_ = suggestCmd.MarkFlagRequired("ingredients")
	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(cmd *cobra.Command, args []string) {
	app, err := newOneShotApp(cmd)
	if err != nil {
		slog.Error("Failed to initialize fridgechef", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	prefs := domain.Preferences{Diet: suggestDiet, MaxMinutes: suggestMaxMinutes}
	recipes, err := app.Service().GenerateRecipes(cmd.Context(), suggestUser, toIngredients(suggestIngredients), prefs)
	if err != nil {
		slog.Error("Recipe generation failed", "error", err)
		app.Close()
		os.Exit(1)
	}
	printRecipes(cmd.OutOrStdout(), recipes)
}

func toIngredients(names []string) []domain.Ingredient {
	out := make([]domain.Ingredient, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, domain.Ingredient{Name: n})
		}
	}
	return out
}

func printRecipes(w io.Writer, recipes []domain.Recipe) {
	for i, r := range recipes {
		if i > 0 {
			_, _ = fmt.Fprintln(w)
		}
		_, _ = fmt.Fprintf(w, "%s", r.Title)
		if total := r.TotalMinutes(); total > 0 {
			_, _ = fmt.Fprintf(w, " (%d min)", total)
		}
		_, _ = fmt.Fprintln(w)
		if r.Description != "" {
			_, _ = fmt.Fprintf(w, "  %s\n", r.Description)
		}
		for _, ing := range r.Ingredients {
			mark := " "
			if ing.InFridge {
				mark = "*"
			}
			line := strings.TrimSpace(ing.Amount + " " + ing.Name)
			_, _ = fmt.Fprintf(w, "  %s %s\n", mark, line)
		}
		for n, step := range r.Steps {
			_, _ = fmt.Fprintf(w, "  %d. %s\n", n+1, step)
		}
	}
}
