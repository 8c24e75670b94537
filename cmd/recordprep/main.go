package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/recordprep/internal/config"
	"github.com/recordprep/internal/schema"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	cfg        config.Config
	log        *zap.Logger
}

// setup loads .env, the config file and environment overrides, and builds
// the logger.
func (a *app) setup() error {
	if err := config.LoadEnv(); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	log, err := cfg.Log.Logger()
	if err != nil {
		return err
	}
	a.cfg, a.log = cfg, log
	return nil
}

func main() {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "recordprep",
		Short: "Standardize address and name tables",
		Long: `Maps arbitrary upstream column layouts onto canonical address and name
records, splits combined fields, cleans values and flags records that are
not ready for address verification.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				a.log.Sync()
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML config file")

	rootCmd.AddCommand(createStandardizeCmd(a, schema.AddressMode))
	rootCmd.AddCommand(createStandardizeCmd(a, schema.NameMode))
	rootCmd.AddCommand(createParseCmd(a))
	rootCmd.AddCommand(createSampleCmd(a))
	rootCmd.AddCommand(createServeCmd(a))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
