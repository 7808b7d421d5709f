// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the univ-insight CLI. Each page of
// the client is a subcommand group: search and paper for research, report
// for digests, university for the explorer and crawl trigger, and login,
// logout, whoami and profile for the session.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/univ-insight/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the univ-insight CLI.
var rootCmd = &cobra.Command{
	Use:   "univ-insight",
	Short: "Discover university research and plan your next step",
	Long: `univ-insight is a client for the Univ-Insight research service. It searches
university research papers, explains them in plain language, suggests Plan B
universities with similar research, and generates personalized digest reports.

Log in once with "univ-insight login"; the identity is kept in a local
session database and restored on every run.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(viper.GetString("secrets.dir"), startupLogger(viper.GetViper(), os.Stderr))
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 && viper.GetBool("verbose") {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./univ-insight.yaml or ~/.config/univ-insight/config.yaml)")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides api.base_url)")
	rootCmd.PersistentFlags().Bool("verbose", false, "log requests and config details to stderr")
	rootCmd.PersistentFlags().Bool("no-fallback", false, "fail instead of showing sample data when the API is unreachable")

	viper.BindPFlag("api.base_url", rootCmd.PersistentFlags().Lookup("api-url"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func setDefaults() {
	viper.SetDefault("api.base_url", "http://localhost:8000/api/v1")
	viper.SetDefault("api.timeout", 30*time.Second)
	viper.SetDefault("api.user_agent", "univ-insight/"+version)
	viper.SetDefault("session.path", defaultSessionPath())
	viper.SetDefault("log.level", "warn")
	viper.SetDefault("log.format", "text")
	viper.SetDefault("search.limit", 20)
	viper.SetDefault("fallback.enabled", true)
	viper.SetDefault("secrets.dir", ".secrets/")
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".univ-insight", "session.db")
	}
	return filepath.Join(home, ".config", "univ-insight", "session.db")
}

func initConfig() {
	// A missing .env is normal; values already in the environment win.
	_ = godotenv.Load()

	setDefaults()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("univ-insight")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "univ-insight"))
		}
	}

	viper.SetEnvPrefix("UNIV_INSIGHT")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && viper.GetBool("verbose") {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
