package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/kittrack/kittrack/pkg/tracking"
	"github.com/spf13/cobra"
)

var mealCmd = &cobra.Command{
	Use:   "meal <breakfast|lunch|dinner>",
	Short: "Save the foods eaten at one meal",
	Example: `  kittrack meal dinner --food Protein=Chicken --food "Vegetables=Green Beans"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		meal, ok := tracking.ParseMealType(args[0])
		if !ok {
			return fmt.Errorf("unknown meal type: %s", args[0])
		}
		foodFlags, _ := cmd.Flags().GetStringArray("food")

		foods, err := parseFoods(foodFlags)
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
		if err := c.SaveMeal(ctx, kitID, meal, foods); err != nil {
			return err
		}
		fmt.Printf("Saved %d %s item(s).\n", foods.Normalize().Count(), meal)
		return nil
	},
}

// parseFoods reads Category=Item pairs.
func parseFoods(pairs []string) (tracking.CategoryMap, error) {
	foods := tracking.CategoryMap{}
	for _, p := range pairs {
		cat, item, ok := strings.Cut(p, "=")
		cat, item = strings.TrimSpace(cat), strings.TrimSpace(item)
		if !ok || cat == "" || item == "" {
			return nil, fmt.Errorf("invalid food %q, expected Category=Item", p)
		}
		foods.Add(cat, item)
	}
	return foods, nil
}

func init() {
	rootCmd.AddCommand(mealCmd)
	addKitFlag(mealCmd)
	mealCmd.Flags().StringArray("food", nil, "Food as Category=Item (repeatable)")
}
