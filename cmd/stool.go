package cmd

import (
	"context"
	"fmt"

	"github.com/kittrack/kittrack/pkg/tracking"
	"github.com/spf13/cobra"
)

var stoolCmd = &cobra.Command{
	Use:   "stool",
	Short: "Save a stool entry",
	RunE: func(cmd *cobra.Command, _ []string) error {
		stoolType, _ := cmd.Flags().GetInt("type")
		relief, _ := cmd.Flags().GetInt("relief")
		smell, _ := cmd.Flags().GetInt("smell")

		if stoolType < 1 || stoolType > 7 {
			return fmt.Errorf("stool type must be between 1 and 7")
		}
		if relief < 1 || relief > 5 || smell < 1 || smell > 5 {
			return fmt.Errorf("relief and smell must be between 1 and 5")
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
		err = c.SaveStool(ctx, kitID, tracking.Stool{
			Type:   stoolType,
			Relief: tracking.IntPtr(relief),
			Smell:  tracking.IntPtr(smell),
		})
		if err != nil {
			return err
		}
		fmt.Println("Stool entry saved.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stoolCmd)
	addKitFlag(stoolCmd)
	stoolCmd.Flags().Int("type", tracking.DefaultScale, "Bristol stool type (1-7)")
	stoolCmd.Flags().Int("relief", tracking.DefaultScale, "Relief (1-5)")
	stoolCmd.Flags().Int("smell", tracking.DefaultScale, "Smell (1-5)")
}
