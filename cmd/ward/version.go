package main

import (
	"fmt"
	"strings"

	"github.com/sealkeep/ward"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of ward",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ward version %s\n", strings.TrimSpace(ward.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
