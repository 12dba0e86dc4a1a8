package cmd

import (
	"context"
	"fmt"

	"github.com/kittrack/kittrack/internal/ui"
	"github.com/spf13/cobra"
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Chart the mood trend stored by the backend",
	RunE: func(cmd *cobra.Command, _ []string) error {
		width, _ := cmd.Flags().GetInt("width")

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()
		kitID, err := resolveKit(ctx, cmd, store)
		if err != nil {
			return err
		}

		c, err := newClient(nil)
		if err != nil {
			return err
		}
		points, err := c.Insights(ctx, kitID)
		if err != nil {
			return err
		}

		styles := ui.DefaultStyles()
		fmt.Println(styles.Title.Render("Mood for " + kitID))
		fmt.Println(ui.MoodChart(points, width, styles))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(insightsCmd)
	addKitFlag(insightsCmd)
	insightsCmd.Flags().Int("width", 80, "Chart width in columns")
}
