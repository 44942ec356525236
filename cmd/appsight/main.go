// Command appsight queries a local corpus of deployed application
// artifacts from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jward/appsight"
	"github.com/jward/appsight/internal/config"
)

var (
	flagConfig    string
	flagCacheDir  string
	flagInventory string
	flagEnvs      []string
)

var rootCmd = &cobra.Command{
	Use:           "appsight",
	Short:         "Query deployed application artifacts",
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "path to a YAML config file")
	pf.StringVar(&flagCacheDir, "cache-dir", "", "directory holding the env-org-app.zip archives")
	pf.StringVar(&flagInventory, "inventory", "", "path to the deployment inventory database")
	pf.StringSliceVar(&flagEnvs, "env", nil, "restrict to these environments (repeatable)")
}

// loadConfig merges the config file (or defaults) with flag overrides.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if flagConfig != "" {
		var err error
		cfg, err = config.Load(flagConfig)
		if err != nil {
			return nil, err
		}
	}
	if flagCacheDir != "" {
		cfg.CacheDir = flagCacheDir
	}
	if flagInventory != "" {
		cfg.InventoryPath = flagInventory
	}
	if len(flagEnvs) > 0 {
		cfg.Environments = flagEnvs
	}
	return cfg, nil
}

func openSession(cmd *cobra.Command) (*appsight.Session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	opts := []appsight.Option{
		appsight.WithEnvironments(cfg.Environments...),
		appsight.WithMaxParallel(cfg.MaxParallel),
		appsight.WithURLBases(cfg.RepoBaseURL, cfg.AppDomain),
	}
	if cfg.InventoryPath != "" {
		opts = append(opts, appsight.WithInventory(cfg.InventoryPath))
	}
	return appsight.Open(cmd.Context(), cfg.CacheDir, opts...)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
