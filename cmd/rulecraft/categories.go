package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the available rule categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		resolve, _ := cmd.Flags().GetBool("urls")
		for _, c := range a.assistant.Categories() {
			if resolve {
				fmt.Printf("%s\t%s\n", c, a.assistant.Resolver().Resolve(c).URL)
				continue
			}
			fmt.Println(c)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
	categoriesCmd.Flags().Bool("urls", false, "Also print each category's rule set URL")
}
