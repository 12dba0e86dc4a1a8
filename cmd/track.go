package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kittrack/kittrack/internal/ui"
	"github.com/kittrack/kittrack/internal/utils"
	"github.com/kittrack/kittrack/pkg/client"
	"github.com/kittrack/kittrack/pkg/tracking"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type discardNavigator struct{}

func (discardNavigator) Navigate(string) {}

// trackCmd runs the three step tracking wizard.
var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Fill in meals, stool and mood interactively",
	RunE: func(cmd *cobra.Command, _ []string) error {
		logFile, _ := cmd.Flags().GetString("log-file")

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

		// The wizard owns the terminal while it runs.
		if logFile != "" {
			f, err := tea.LogToFile(logFile, "kittrack")
			if err != nil {
				return err
			}
			defer f.Close()
			utils.Log.SetOutput(f)
		} else {
			utils.Log.SetOutput(io.Discard)
		}
		defer utils.Log.SetOutput(os.Stderr)

		alerts := ui.NewAlerts()
		c, err := newClient(store, client.WithAlerter(alerts), client.WithNavigator(discardNavigator{}))
		if err != nil {
			return err
		}

		records, err := store.Records(ctx)
		if err != nil {
			utils.Log.Warnf("Could not read local history: %v", err)
		}

		model := ui.New(ui.Config{
			KitID:     kitID,
			Menus:     c.MenuLoader(),
			Submitter: c,
			Alerts:    alerts,
			History:   moodHistory(records),
			Log:       utils.Log,
			Timeout:   viper.GetDuration("server.timeout"),
		})

		final, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
		if err != nil {
			return err
		}
		if m, ok := final.(*ui.Model); ok && m.Done() {
			fmt.Printf("Tracking data saved for kit %s.\n", kitID)
		}
		return nil
	},
}

// moodHistory turns locally logged records into chart points.
func moodHistory(records []tracking.TrackingRecord) []tracking.MoodPoint {
	points := make([]tracking.MoodPoint, 0, len(records))
	for _, r := range records {
		points = append(points, tracking.MoodPoint{Date: r.Date, Mood: r.Mood.Level()})
	}
	return points
}

func init() {
	rootCmd.AddCommand(trackCmd)
	addKitFlag(trackCmd)
	trackCmd.Flags().String("log-file", "", "Write logs to this file while the wizard runs")
}
