package cli

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var statusUser string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show a user's cooking streak, favorites and recent activity",
	Run:   runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusUser, "user", "cli", "user id")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	app, err := newOneShotApp(cmd)
	if err != nil {
		slog.Error("Failed to initialize fridgechef", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	ctx := cmd.Context()
	svc := app.Service()

	streak, err := svc.Streak(ctx, statusUser)
	if err != nil {
		slog.Error("Failed to load streak", "error", err)
		return
	}
	favs, err := svc.Favorites(ctx, statusUser)
	if err != nil {
		slog.Error("Failed to load favorites", "error", err)
		return
	}
	history, err := svc.History(ctx, statusUser, 5)
	if err != nil {
		slog.Error("Failed to load history", "error", err)
		return
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "User:      %s\n", statusUser)
	_, _ = fmt.Fprintf(out, "Streak:    %d day(s) (longest %d)\n", streak.Current, streak.Longest)
	_, _ = fmt.Fprintf(out, "Favorites: %d\n\n", len(favs))

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "WHEN\tKIND\tINGREDIENTS\tRECIPES")
	for _, h := range history {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\n",
			h.CreatedAt.Local().Format(time.DateTime), h.Kind, len(h.Ingredients), len(h.Recipes))
	}
	_ = w.Flush()
}
