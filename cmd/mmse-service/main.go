package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/SAP-F-2025/mmse-service/internal/config"
	"github.com/SAP-F-2025/mmse-service/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "mmse-service",
		Short:        "MMSE assessment scoring service",
		SilenceUsage: true,
	}

	f := root.PersistentFlags()
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "", "Log format (text, json); defaults by environment")
	f.String("environment", "development", "Deployment environment")
	f.String("timezone", "UTC", "Time zone used to read reference times")

	root.AddCommand(serveCmd(), scoreCmd(), migrateCmd())
	return root
}

// loadConfig reads .env, the environment and the command's flags, in
// increasing order of precedence. Flag names map onto the upper-cased,
// underscored config keys.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := config.LoadEnvFile(); err != nil {
		return nil, err
	}
	v := config.NewViper()
	if err := bindFlags(v, cmd.Flags()); err != nil {
		return nil, err
	}
	return config.FromViper(v)
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var bindErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if bindErr != nil {
			return
		}
		key := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
		if err := v.BindPFlag(key, f); err != nil {
			bindErr = fmt.Errorf("bind flag %s: %w", f.Name, err)
		}
	})
	return bindErr
}

func setupLogging(cfg *config.Config) utils.Logger {
	logger := utils.NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat, cfg.IsProduction())
	slog.SetDefault(logger.Slog())
	return logger
}
