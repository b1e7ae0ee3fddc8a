package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/sealkeep/ward"
	"github.com/spf13/cobra"
)

// execCmd runs a single command non-interactively. The resolved value of
// a copy command goes to stdout so it can be piped into a clipboard
// tool.
var execCmd = &cobra.Command{
	Use:   "exec <command...>",
	Short: "Run one command against the vault and exit",
	Long: `Unlock the vault, run a single command and exit. Example:

  ward exec "show all"
  ward exec "copy gmail pass" | xclip -selection clipboard

The master password is read from the terminal, or from the
WARD_MASTER_PASSWORD environment variable when set.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _, err := resolveVaultPath()
		if err != nil {
			return err
		}

		master, err := readMasterPassword()
		if err != nil {
			return err
		}

		sess, err := ward.Open(path, master,
			ward.WithLogger(slog.Default()),
			ward.WithMustExist(true),
		)
		if err != nil {
			return err
		}

		result, err := sess.Exec(strings.Join(args, " "))
		if err != nil {
			return err
		}
		for _, out := range result.Lines {
			fmt.Println(out)
		}
		if result.Value != "" {
			fmt.Println(result.Value)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(execCmd)
}
