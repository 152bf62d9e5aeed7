package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"fightstats-backend/cmd/fightstats/globals"
	"fightstats-backend/lib/chrono"
	"fightstats-backend/lib/configutil"
	"fightstats-backend/lib/telemetry"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
	shutdown   func(context.Context) error
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.json5", "path to the configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// readConfig reads a configuration file, a missing file leaves every
// setting at its default. With search set, path is also looked up in the
// parents of the working directory.
func readConfig(path string, search bool) (globals.Config, error) {
	var config globals.Config
	var err error
	if search && !filepath.IsAbs(path) {
		var found string
		config, found, err = configutil.ReadRecursively[globals.Config](path)
		if err == nil {
			slog.Debug("using configuration file", "path", found)
		}
	} else {
		config, err = configutil.ReadConfig[globals.Config](path)
	}
	if errors.Is(err, os.ErrNotExist) {
		slog.Warn("configuration file not found, using defaults", "path", path)
		err = nil
	}
	if err != nil {
		return globals.Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	config.SetDefaults()
	return config, nil
}

var rootCmd = &cobra.Command{
	Use:           "fightstats",
	Short:         "fightstats scrapes fighters and events from gidstats.com and links them together.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(verbose)

		config, err := readConfig(configPath, !cmd.Flags().Changed("config"))
		if err != nil {
			return err
		}
		clock, err := chrono.NewStandardImpl(config.Timezone)
		if err != nil {
			return fmt.Errorf("load timezone: %w", err)
		}

		t, err := telemetry.Setup(cmd.Context(), "fightstats", config.Telemetry)
		if err != nil {
			return fmt.Errorf("setup telemetry: %w", err)
		}
		shutdown = t.Shutdown

		cmd.SetContext(globals.Set(cmd.Context(), &globals.Value{
			Config: config,
			Clock:  clock,
			Tel:    telemetry.NewMeteredAPI("fightstats", telemetry.NewSlogAPI(nil, "command", cmd.Name())),
		}))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if shutdown == nil {
			return
		}
		err := shutdown(context.Background())
		if err != nil {
			slog.Warn("failed to shutdown telemetry", "err", err)
		}
	},
}

func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
