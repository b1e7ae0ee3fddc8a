package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"syscall"

	"github.com/sealkeep/ward"
	"github.com/sealkeep/ward/pkg/crypt"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Open the interactive command shell",
	Long: `Prompt for the master password, unlock the vault and read commands
until EOF (Ctrl-D). Every mutating command persists the vault before the
next prompt, so there is nothing to save on exit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShell()
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

func runShell() error {
	path, cfg, err := resolveVaultPath()
	if err != nil {
		return err
	}
	fmt.Printf("using vault '%s'\n", path)

	master, err := readMasterPassword()
	if err != nil {
		return err
	}

	sess, err := ward.Open(path, master, ward.WithLogger(slog.Default()))
	if err != nil {
		if errors.Is(err, crypt.ErrAuthentication) {
			return fmt.Errorf("unlock failed: %w", err)
		}
		return err
	}

	if cfg.Watch {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		if err := sess.Watch(ctx); err != nil {
			slog.Warn("could not watch vault file", "error", err)
		}
	}

	fmt.Println("type 'help' for usage examples, Ctrl-D to exit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "help", "example", "examples":
			printExamples()
			continue
		case "exit", "quit":
			return nil
		}

		result, err := sess.Exec(line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "!! %v\n", err)
			continue
		}
		for _, out := range result.Lines {
			fmt.Println(out)
		}
		if result.Value != "" {
			fmt.Println(result.Value)
		}
	}
}

// readMasterPassword reads the master password without echo when stdin
// is a terminal, falling back to WARD_MASTER_PASSWORD for scripting.
func readMasterPassword() (string, error) {
	if env := os.Getenv("WARD_MASTER_PASSWORD"); env != "" {
		return env, nil
	}

	if !term.IsTerminal(int(syscall.Stdin)) {
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read master password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Print("master password: ")
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read master password: %w", err)
	}
	return string(raw), nil
}

func printExamples() {
	fmt.Println("set gmail user = sussolini pass = amogus url = mail.google.sus")
	fmt.Println("set gmail sensitive pass = updatedpotatus")
	fmt.Println("del gmail")
	fmt.Println("del gmail pass url")
	fmt.Println("show all")
	fmt.Println("show gmail")
	fmt.Println("show user is sussolini and (pass contains sus or url matches '.*com')")
	fmt.Println("reveal . contains mail")
	fmt.Println("history gmail")
	fmt.Println("reveal history gmail")
	fmt.Println("copy gmail pass")
	fmt.Println("rename gmail oldgmail")
	fmt.Println("import /path/to/records.txt")
}
