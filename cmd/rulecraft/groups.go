package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "Manage category groups",
	Long:  `List, define and remove the named category bundles offered in the selection view.`,
}

var groupsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all groups",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		list := a.assistant.GroupList()
		if len(list) == 0 {
			fmt.Println("No groups defined.")
			return nil
		}
		for _, g := range list {
			fmt.Printf("%s: %s\n", g.Name, strings.Join(g.Members, ", "))
		}
		return nil
	},
}

var groupsSetCmd = &cobra.Command{
	Use:   "set <name> <category>...",
	Short: "Create or replace a group",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.assistant.Groups().Replace(cmd.Context(), args[0], args[1:]); err != nil {
			return err
		}
		fmt.Printf("Group %s saved.\n", args[0])
		return nil
	},
}

var groupsRmCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Remove a group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.assistant.Groups().Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Group %s removed.\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(groupsCmd)
	groupsCmd.AddCommand(groupsLsCmd, groupsSetCmd, groupsRmCmd)
}
