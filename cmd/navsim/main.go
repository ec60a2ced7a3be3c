// Command navsim renders a route fixture and simulates a trip along it
// without the HTTP service or a database.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roadwatch/service-navigation/internal/directions"
	"github.com/roadwatch/service-navigation/internal/platform/logger"
)

type options struct {
	fixture     string
	osrmURL     string
	osrmProfile string
	osrmTimeout time.Duration
	verbose     bool
	logger      *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "navsim",
		Short:         "Render and simulate navigation routes offline",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			env := "production"
			if opts.verbose {
				env = "development"
			}
			log, err := logger.NewNamed(env, "navsim")
			if err != nil {
				return err
			}
			if !opts.verbose {
				log = zap.NewNop()
			}
			opts.logger = log
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.fixture, "file", "f", "", "route fixture (YAML)")
	flags.StringVar(&opts.osrmURL, "osrm-url", "", "OSRM base URL; empty draws straight lines")
	flags.StringVar(&opts.osrmProfile, "osrm-profile", "driving", "OSRM routing profile")
	flags.DurationVar(&opts.osrmTimeout, "osrm-timeout", 5*time.Second, "OSRM request timeout")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log to stderr")
	_ = root.MarkPersistentFlagRequired("file")

	root.AddCommand(newRenderCmd(opts), newSimulateCmd(opts))
	return root
}

// provider returns the OSRM client, or a provider that always fails so the
// renderer draws its straight-line fallback.
func (o *options) provider() directions.Provider {
	if o.osrmURL == "" {
		return offlineProvider{}
	}
	return directions.NewOSRMClient(o.osrmURL, o.osrmProfile, o.osrmTimeout, o.logger)
}
