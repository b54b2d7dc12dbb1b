package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/rulecraft"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of rulecraft",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("rulecraft version %s\n", strings.TrimSpace(rulecraft.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
