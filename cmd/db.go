package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/kittrack/kittrack/pkg/menu"
	"github.com/kittrack/kittrack/pkg/storage"
	"github.com/kittrack/kittrack/pkg/tracking"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tidwall/gjson"
)

// dbCmd represents the db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Interact with the backend database",
}

func backendDBPath(cmd *cobra.Command) string {
	dbPath, _ := cmd.Flags().GetString("dbpath")
	if dbPath == "" {
		dbPath = viper.GetString("serve.dbpath")
	}
	return dbPath
}

// openBackendDB opens an existing backend database.
func openBackendDB(cmd *cobra.Command) (*storage.DB, error) {
	dbPath := backendDBPath(cmd)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("kittrack backend database not found: %s (start 'kittrack serve' once to create it)", dbPath)
	}
	return storage.Open(dbPath)
}

// shellCmd opens sqlite3 on the backend database.
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Open sqlite3 on the kittrack backend database (kits, menu_items, submissions)",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath := backendDBPath(cmd)
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return fmt.Errorf("kittrack backend database not found: %s (start 'kittrack serve' once to create it)", dbPath)
		}

		// Check if sqlite3 is in PATH
		sqlitePath, err := exec.LookPath("sqlite3")
		if err != nil {
			return fmt.Errorf("sqlite3 command not found in your PATH. Please install it to use the db shell")
		}

		fmt.Printf("--> kittrack backend schema (%s):\n", dbPath)
		schemaCmd := exec.Command(sqlitePath, dbPath, ".schema")
		schemaCmd.Stdout = os.Stdout
		schemaCmd.Stderr = os.Stderr
		if err := schemaCmd.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: couldn't retrieve schema: %v\n", err)
		}
		fmt.Println("\n--> Starting interactive shell... (Ctrl+D to exit)")

		c := exec.Command(sqlitePath, dbPath)
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr

		return c.Run()
	},
}

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Prints submission counts per kind.",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openBackendDB(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := context.Background()
		kits, err := db.CountKits(ctx)
		if err != nil {
			return err
		}
		stats, err := db.GetStats(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("Kits issued: %d\n", kits)
		if len(stats) == 0 {
			fmt.Println("No submissions in the database yet.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight)
		fmt.Fprintln(w, "KIND\tKITS\tSUBMISSIONS\t")

		var total int
		for _, s := range stats {
			fmt.Fprintf(w, "%s\t%d\t%d\t\n", s.Kind, s.KitCount, s.SubmitCount)
			total += s.SubmitCount
		}

		fmt.Fprintln(w, " \t \t \t")
		fmt.Fprintf(w, "TOTAL\t \t%d\t\n", total)

		return w.Flush()
	},
}

var kitsCmd = &cobra.Command{
	Use:   "kits",
	Short: "List issued kit ids",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openBackendDB(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		kits, err := db.ListKits(context.Background())
		if err != nil {
			return err
		}
		for _, k := range kits {
			fmt.Printf("%s  %s\n", k.KitID, humanize.Time(k.CreatedAt))
		}
		return nil
	},
}

var submissionsCmd = &cobra.Command{
	Use:   "submissions <kit-id>",
	Short: "Dump the stored submissions of a kit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, _ := cmd.Flags().GetString("kind")

		db, err := openBackendDB(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		subs, err := db.ListSubmissions(context.Background(), args[0], storage.Kind(kind))
		if err != nil {
			return err
		}
		for _, s := range subs {
			fmt.Printf("%s  %-8s  %s\n", s.CreatedAt.Format("2006-01-02 15:04:05"), s.Kind, s.Payload)
		}
		return nil
	},
}

var setMenuCmd = &cobra.Command{
	Use:   "set-menu <breakfast|lunch|dinner> <file.json>",
	Short: "Replace the catalog of a meal",
	Long: `Replaces the catalog of a meal with the categories of a JSON object such as
{"Protein": ["Chicken", "Fish"], "Vegetables": ["Green Beans"]}.
Categories and items keep the order they have in the file.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		meal, ok := tracking.ParseMealType(args[0])
		if !ok {
			return fmt.Errorf("unknown meal type: %s", args[0])
		}
		body, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}
		categories, err := parseCatalog(string(body))
		if err != nil {
			return err
		}

		dbPath := backendDBPath(cmd)
		db, err := storage.Open(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.SetMenu(context.Background(), meal, categories); err != nil {
			return err
		}
		fmt.Printf("Stored %d %s categories in %s\n", len(categories), meal, dbPath)
		return nil
	},
}

// parseCatalog reads a category -> items object in document order.
func parseCatalog(body string) ([]menu.Category, error) {
	if !gjson.Valid(body) {
		return nil, fmt.Errorf("catalog is not valid JSON")
	}
	root := gjson.Parse(body)
	if !root.IsObject() {
		return nil, fmt.Errorf("catalog must be a JSON object of category -> items")
	}

	var out []menu.Category
	var bad error
	root.ForEach(func(name, items gjson.Result) bool {
		if !items.IsArray() {
			bad = fmt.Errorf("category %q: items must be an array", name.String())
			return false
		}
		c := menu.Category{Name: name.String()}
		for _, it := range items.Array() {
			c.Items = append(c.Items, it.String())
		}
		out = append(out, c)
		return true
	})
	if bad != nil {
		return nil, bad
	}
	return out, nil
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(shellCmd)
	dbCmd.AddCommand(statsCmd)
	dbCmd.AddCommand(kitsCmd)
	dbCmd.AddCommand(submissionsCmd)
	dbCmd.AddCommand(setMenuCmd)
	dbCmd.PersistentFlags().String("dbpath", "", "Path to SQLite DB file (default: serve.dbpath)")
	submissionsCmd.Flags().String("kind", "", "Only show one kind (tracking, meal, stool, mood)")
}
