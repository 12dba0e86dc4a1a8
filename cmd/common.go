package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/kittrack/kittrack/internal/utils"
	"github.com/kittrack/kittrack/pkg/client"
	"github.com/kittrack/kittrack/pkg/localstore"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// stderrAlerter prints blocking alerts to stderr.
type stderrAlerter struct{}

func (stderrAlerter) Alert(msg string) {
	fmt.Fprintln(os.Stderr, "! "+msg)
}

// logNavigator reports where the browser flow would have gone next.
type logNavigator struct {
	baseURL string
}

func (n logNavigator) Navigate(path string) {
	utils.Log.Infof("Next: %s%s", n.baseURL, path)
}

func openStore() (*localstore.Store, error) {
	path, err := utils.ExpandHome(viper.GetString("store.path"), homedir.Dir)
	if err != nil {
		return nil, err
	}
	return localstore.Open(path)
}

// newClient builds a backend client from config. Extra options are applied
// after the defaults.
func newClient(store *localstore.Store, extra ...client.Option) (*client.Client, error) {
	baseURL := viper.GetString("server.url")
	opts := []client.Option{
		client.WithAlerter(stderrAlerter{}),
		client.WithNavigator(logNavigator{baseURL: baseURL}),
		client.WithLogger(utils.Log),
		client.WithHTTPLogger(utils.Log),
		client.WithRetries(viper.GetInt("server.retries")),
		client.WithTimeout(viper.GetDuration("server.timeout")),
		client.WithProxy(viper.GetString("server.proxy")),
	}
	if store != nil {
		opts = append(opts, client.WithStore(store), client.WithOfflineLog(true))
	}
	return client.New(baseURL, append(opts, extra...)...)
}

// resolveKit returns the --kit flag value or the cached kit id.
func resolveKit(ctx context.Context, cmd *cobra.Command, store *localstore.Store) (string, error) {
	if kit, _ := cmd.Flags().GetString("kit"); kit != "" {
		return kit, nil
	}
	kit, err := store.KitID(ctx)
	if err != nil {
		return "", err
	}
	if kit == "" {
		return "", errors.New("no kit id cached; run 'kittrack kit validate <id>' or pass --kit")
	}
	return kit, nil
}

func addKitFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("kit", "k", "", "Kit ID (defaults to the cached kit)")
}

// alreadyAlerted reports errors the client has shown to the user.
func alreadyAlerted(err error) bool {
	return errors.Is(err, client.ErrSubmissionFailed) ||
		errors.Is(err, client.ErrEmptyKitID) ||
		errors.Is(err, client.ErrInvalidKit) ||
		errors.Is(err, client.ErrNoFoodSelected) ||
		errors.Is(err, client.ErrMoodAlreadySubmitted)
}
