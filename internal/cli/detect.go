package cli

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var detectUser string

var detectCmd = &cobra.Command{
	Use:   "detect <photo>",
	Short: "List the ingredients visible in a fridge photo",
	Args:  cobra.ExactArgs(1),
	Run:   runDetect,
}

func init() {
	detectCmd.Flags().StringVar(&detectUser, "user", "cli", "user id to record the detection under")
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) {
	image, err := os.ReadFile(args[0])
	if err != nil {
		slog.Error("Failed to read photo", "path", args[0], "error", err)
		os.Exit(1)
	}

	app, err := newOneShotApp(cmd)
	if err != nil {
		slog.Error("Failed to initialize fridgechef", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	ingredients, err := app.Service().DetectIngredients(cmd.Context(), detectUser, image, http.DetectContentType(image))
	if err != nil {
		slog.Error("Detection failed", "error", err)
		app.Close()
		os.Exit(1)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, "INGREDIENT\tQUANTITY\tCATEGORY")
	for _, ing := range ingredients {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", ing.Name, ing.Quantity, ing.Category)
	}
	_ = w.Flush()
}
