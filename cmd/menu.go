package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/kittrack/kittrack/pkg/menu"
	"github.com/kittrack/kittrack/pkg/tracking"
	"github.com/spf13/cobra"
)

var menuCmd = &cobra.Command{
	Use:   "menu <breakfast|lunch|dinner>",
	Short: "Fetch the food catalog of one meal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		meal, ok := tracking.ParseMealType(args[0])
		if !ok {
			return fmt.Errorf("unknown meal type: %s", args[0])
		}
		htmlOut, _ := cmd.Flags().GetString("html")

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
		m, err := c.MenuLoader().Load(ctx, kitID, meal)
		if err != nil {
			return err
		}

		if htmlOut != "" {
			f, err := os.Create(htmlOut)
			if err != nil {
				return err
			}
			defer f.Close()
			return menu.Render(f, m, nil)
		}

		if len(m.Categories) == 0 {
			fmt.Printf("No %s items for kit %s.\n", meal, kitID)
			return nil
		}
		for _, cat := range m.Categories {
			fmt.Printf("%s\n  %s\n", cat.Name, strings.Join(cat.Items, ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(menuCmd)
	addKitFlag(menuCmd)
	menuCmd.Flags().String("html", "", "Write the checklist HTML fragment to this file")
}
