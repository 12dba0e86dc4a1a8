package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/kittrack/kittrack/pkg/tracking"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show records submitted from this machine",
	RunE: func(cmd *cobra.Command, _ []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		records, err := store.Records(context.Background())
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("No records submitted yet.")
			return nil
		}
		if limit > 0 && len(records) > limit {
			records = records[len(records)-limit:]
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "WHEN\tKIT\tFOODS\tSTOOL\tMOOD\t")
		for _, r := range records {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t\n",
				humanize.Time(r.Date), r.KitID, foodSummary(r.Meals), r.Stool.Type, r.Mood.Level())
		}
		return w.Flush()
	},
}

func foodSummary(m tracking.Meals) string {
	var parts []string
	for _, meal := range tracking.MealTypes() {
		if n := m.For(meal).Count(); n > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", meal, n))
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().Int("limit", 20, "Number of recent records to show (0 for all)")
}
