package main

import (
	"fmt"
	"os"

	"github.com/aretw0/rulecraft"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate <source> <category>...",
	Short: "Generate a configuration in one shot",
	Long: `Fetches the node list at <source> and writes a Clash configuration routing
the given categories, in order, to stdout or --out.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		res, err := a.assistant.Generate(cmd.Context(), args[0], args[1:])
		if err != nil {
			a.logger.Debug("Generate failed", "err", err)
			return fmt.Errorf("%s", rulecraft.UserMessage(err))
		}

		out, _ := cmd.Flags().GetString("out")
		if out == "" || out == "-" {
			_, err = os.Stdout.Write(res.Document)
			return err
		}
		if err := os.WriteFile(out, res.Document, 0644); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote %s (%s)\n", out, res.Caption())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringP("out", "o", "", "Output file (default: stdout)")
}
