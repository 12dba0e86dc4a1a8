package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/kittrack/kittrack/internal/server"
	"github.com/kittrack/kittrack/internal/utils"
	"github.com/kittrack/kittrack/pkg/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the tracking backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		listenAddr := viper.GetString("serve.listen")
		dbPath := viper.GetString("serve.dbpath")
		stringMenu := viper.GetBool("serve.string_menu")

		db, err := storage.Open(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		utils.Log.Infof("Using database %s", dbPath)
		return server.New(db, server.Options{
			StringMenu: stringMenu,
			Log:        utils.Log,
		}).Start(ctx, listenAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", "", "Address to listen on (overrides serve.listen)")
	serveCmd.Flags().String("dbpath", "", "Path to SQLite DB file (overrides serve.dbpath)")
	serveCmd.Flags().Bool("string-menu", false, "Serve menu_data as a JSON-encoded string")

	viper.BindPFlag("serve.listen", serveCmd.Flags().Lookup("listen"))
	viper.BindPFlag("serve.dbpath", serveCmd.Flags().Lookup("dbpath"))
	viper.BindPFlag("serve.string_menu", serveCmd.Flags().Lookup("string-menu"))
}
