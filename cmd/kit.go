package cmd

import (
	"context"
	"fmt"

	"github.com/kittrack/kittrack/internal/utils"
	"github.com/kittrack/kittrack/pkg/localstore"
	"github.com/spf13/cobra"
)

// kitCmd represents the kit command
var kitCmd = &cobra.Command{
	Use:   "kit",
	Short: "Validate, generate and cache kit ids",
}

var kitValidateCmd = &cobra.Command{
	Use:   "validate <kit-id>",
	Short: "Check a kit id against the backend and cache it locally",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		c, err := newClient(store)
		if err != nil {
			return err
		}

		kitID := ""
		if len(args) == 1 {
			kitID = args[0]
		}
		if err := c.ValidateKit(context.Background(), kitID); err != nil {
			return err
		}
		fmt.Printf("Kit %s is valid and cached.\n", kitID)
		return nil
	},
}

var kitGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Ask the backend for a new kit id",
	RunE: func(cmd *cobra.Command, _ []string) error {
		save, _ := cmd.Flags().GetBool("save")

		var store *localstore.Store
		if save {
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()
			store = s
		}

		c, err := newClient(nil)
		if err != nil {
			return err
		}
		kitID, err := c.GenerateKit(context.Background())
		if err != nil {
			return err
		}
		fmt.Println(kitID)

		if store != nil {
			if err := store.SetKitID(context.Background(), kitID); err != nil {
				return fmt.Errorf("caching kit id: %w", err)
			}
			utils.Log.Infof("Cached kit id %s", kitID)
		}
		return nil
	},
}

var kitShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the cached kit id",
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		kitID, err := store.KitID(context.Background())
		if err != nil {
			return err
		}
		if kitID == "" {
			fmt.Println("No kit id cached.")
			return nil
		}
		fmt.Println(kitID)
		return nil
	},
}

var kitForgetCmd = &cobra.Command{
	Use:   "forget",
	Short: "Remove the cached kit id",
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		return store.Delete(context.Background(), localstore.KeyKitID)
	},
}

func init() {
	rootCmd.AddCommand(kitCmd)
	kitCmd.AddCommand(kitValidateCmd)
	kitCmd.AddCommand(kitGenerateCmd)
	kitCmd.AddCommand(kitShowCmd)
	kitCmd.AddCommand(kitForgetCmd)

	kitGenerateCmd.Flags().Bool("save", false, "Cache the new kit id locally")
}
