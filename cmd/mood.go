package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kittrack/kittrack/pkg/tracking"
	"github.com/spf13/cobra"
)

var moodCmd = &cobra.Command{
	Use:   "mood <1-7>",
	Short: "Save today's mood (once per day)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := strconv.Atoi(args[0])
		if err != nil || level < 1 || level > tracking.MoodMax {
			return fmt.Errorf("mood must be a number between 1 and %d", tracking.MoodMax)
		}

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

		c, err := newClient(store)
		if err != nil {
			return err
		}
		if err := c.SaveMood(ctx, kitID, tracking.MoodValue(level)); err != nil {
			return err
		}
		fmt.Println("Mood saved.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(moodCmd)
	addKitFlag(moodCmd)
}
