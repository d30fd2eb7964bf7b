// Package main is the picsearch CLI entry point.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hyperjump/picsearch/internal/config"
	"github.com/hyperjump/picsearch/pkg/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/picsearch/config.yaml"

// loadConfig loads config from path. An explicit path wins; otherwise
// $PICSEARCH_CONFIG, then config.yaml in the current directory, then the default
// location. When none of the implicit candidates exist, built-in defaults are used.
// Returns the config and the path that was actually loaded ("" for defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, "", err
		}
		return cfg, path, nil
	}
	var candidates []string
	if env := os.Getenv(config.EnvConfigPath); env != "" {
		candidates = append(candidates, env)
	}
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, "config.yaml"))
	}
	candidates = append(candidates, defaultConfigPath)
	for i, candidate := range candidates {
		cfg, err := config.Load(candidate)
		if err == nil {
			return cfg, candidate, nil
		}
		// an env-named file must exist
		if !errors.Is(err, fs.ErrNotExist) || (i == 0 && os.Getenv(config.EnvConfigPath) != "") {
			return nil, "", err
		}
	}
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	return cfg, "", nil
}

func newLogger(cfg *config.Config, debug bool) (*zap.Logger, error) {
	if debug {
		return utils.NewLogger(true)
	}
	return utils.NewLoggerWithLevel(cfg.Log.Level, cfg.Log.Encoding)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "picsearch",
		Short: "Search a photo collection with natural-language text",
		Long: `picsearch ranks a fixed photo collection against a text query using
precomputed CLIP image embeddings and returns the closest photos with their
similarity as a percentage.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringP("config", "c", "", "config file path (default $"+config.EnvConfigPath+", ./config.yaml, "+defaultConfigPath+")")
	root.PersistentFlags().Bool("debug", false, "enable debug logging")

	root.AddCommand(newServeCmd())
	root.AddCommand(newSearchCmd())
	root.AddCommand(newCorpusCmd())
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "picsearch version %s\n", version)
		},
	})
	return root
}

// configFromFlags resolves the --config and --debug persistent flags.
func configFromFlags(cmd *cobra.Command) (*config.Config, string, bool, error) {
	path, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")
	cfg, resolved, err := loadConfig(path)
	if err != nil {
		return nil, "", false, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, resolved, cfg.Debug || debug, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
