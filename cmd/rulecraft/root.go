package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rulecraft",
	Short: "rulecraft builds Clash configurations from a node list and rule categories",
	Long: `rulecraft turns a proxy node list into a Clash configuration that routes the
rule categories you pick. Use it as a chat in the terminal, an HTTP service,
an MCP server, or one-shot from the command line.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}
