package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/kittrack/kittrack/internal/utils"
	"github.com/kittrack/kittrack/pkg/collector"
	"github.com/spf13/cobra"
)

// submitCmd sends the state of a saved tracking form page.
var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a filled-in tracking form saved as HTML",
	Long: `Reads a tracking form page (as served by GET /track and saved from the
browser), collects the checked foods, the stool answers and the mood, and
sends them as one tracking record.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		formPath, _ := cmd.Flags().GetString("form")
		if formPath == "" {
			return fmt.Errorf("--form is required")
		}

		f, err := os.Open(formPath)
		if err != nil {
			return err
		}
		defer f.Close()

		form, err := collector.FromHTML(f, utils.Log)
		if err != nil {
			return err
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

		rec := collector.Collect(form, kitID, time.Now())
		if err := c.Submit(ctx, rec); err != nil {
			return err
		}
		fmt.Println("Tracking data saved.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(submitCmd)
	addKitFlag(submitCmd)
	submitCmd.Flags().StringP("form", "f", "", "Path to the saved tracking form HTML")
}
