package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/sealkeep/ward"
	"github.com/spf13/cobra"
)

var (
	vaultFile string
	verbose   bool
)

// rootCmd represents the base command. Running ward without a subcommand
// drops into the interactive shell.
var rootCmd = &cobra.Command{
	Use:   "ward",
	Short: "An encrypted secret store with a filter query language",
	Long: `Ward keeps named records of fields (user, pass, url, ...) encrypted at
rest under a master password, and lets you query them with boolean
filters:

  set gmail user = sussolini sensitive pass = amogus url = mail.google.com
  show user is sussolini and (pass contains sus or url matches '.*com')
  reveal gmail
  history gmail`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShell()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&vaultFile, "file", "f", "", "Vault file path (default ~/.ward/vault.ward)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

// resolveVaultPath prefers the flag, then the user config, then the
// default location.
func resolveVaultPath() (string, ward.Config, error) {
	var cfg ward.Config
	if cfgPath, err := ward.DefaultConfigPath(); err == nil {
		loaded, err := ward.LoadConfig(cfgPath)
		if err != nil {
			return "", cfg, err
		}
		cfg = loaded
	}

	if vaultFile != "" {
		return vaultFile, cfg, nil
	}
	if cfg.Vault != "" {
		return cfg.Vault, cfg, nil
	}

	path, err := ward.DefaultVaultPath()
	return path, cfg, err
}
