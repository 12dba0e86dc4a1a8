package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kittrack/kittrack/internal/utils"
	"github.com/spf13/cobra"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

const (
	LOGO = `	 _    _ _   _                  _
	| | _(_) |_| |_ _ __ __ _  ___| | __
	| |/ / | __| __| '__/ _' |/ __| |/ /
	|   <| | |_| |_| | | (_| | (__|   <
	|_|\_\_|\__|\__|_|  \__,_|\___|_|\_\
`
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "kittrack",
	Short: "Meal, stool and mood tracking for your kit.",
	Long: LOGO + `
kittrack logs meals, stool and mood against a kit id, either through an
interactive wizard (kittrack track) or one command at a time. It also runs
the tracking backend (kittrack serve).`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !alreadyAlerted(err) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.kittrack.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("proxy", "", "", "HTTP Proxy (Useful for debugging. Example: http://127.0.0.1:8080)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
	rootCmd.PersistentFlags().String("server", "", "Backend URL (overrides server.url)")

	viper.BindPFlag("server.url", rootCmd.PersistentFlags().Lookup("server"))
	viper.BindPFlag("server.proxy", rootCmd.PersistentFlags().Lookup("proxy"))
}

func setDefaults() {
	viper.SetDefault("server.url", "http://127.0.0.1:5000")
	viper.SetDefault("server.retries", 2)
	viper.SetDefault("server.timeout", "15s")
	viper.SetDefault("store.path", filepath.Join("~", ".config", "kittrack", "kittrack.sqlite"))
	viper.SetDefault("serve.listen", "127.0.0.1:5000")
	viper.SetDefault("serve.dbpath", "kittrack-server.sqlite")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	setDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".kittrack")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("kittrack")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := filepath.Join(home, ".kittrack.yaml")
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				fmt.Fprintf(os.Stderr, "Error creating config file: %s\n", err)
			}
		}
	}

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	utils.SetLogLevel(levelString)
}
