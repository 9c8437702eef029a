// scaffoldctl inspects and exercises a template portfolio from the
// command line: selection dry runs, health reports, replay fixtures,
// validation, and the persisted event log.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/scaffold-engine/internal/template"
)

// #region root

var (
	flagTemplatesDir string
	flagJSON         bool
	flagVerbose      bool

	logger *zap.Logger
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "scaffoldctl",
		Short:         "Inspect and exercise a reasoning-template portfolio",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if flagVerbose {
				logger, err = zap.NewDevelopment()
			} else {
				logger, err = zap.NewProduction()
			}
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&flagTemplatesDir, "templates", "templates", "directory of template YAML definitions")
	root.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON instead of a table")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose logging")

	root.AddCommand(
		newSelectCmd(),
		newHealthCmd(),
		newValidateCmd(),
		newReplayCmd(),
		newEventsCmd(),
		newRunCmd(),
	)
	return root
}

// loadRegistry loads the --templates directory.
func loadRegistry() (*template.Registry, error) {
	reg, err := template.RegistryFromDir(flagTemplatesDir)
	if err != nil {
		return nil, fmt.Errorf("load templates from %s: %w", flagTemplatesDir, err)
	}
	if reg.Len() == 0 {
		return nil, fmt.Errorf("no templates found in %s", flagTemplatesDir)
	}
	return reg, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion root
