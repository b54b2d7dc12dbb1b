package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/aretw0/rulecraft"
	"github.com/aretw0/rulecraft/pkg/domain"
	"github.com/aretw0/rulecraft/pkg/fetch"
	"github.com/aretw0/rulecraft/pkg/node"
	"github.com/aretw0/rulecraft/pkg/selection"
	"github.com/aretw0/rulecraft/pkg/synth"
	"github.com/spf13/cobra"
)

var nodesCmd = &cobra.Command{
	Use:   "nodes <source>",
	Short: "Fetch and validate a node list",
	Long:  `Fetches a node list and prints each node with the region group it would join.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		m := selection.New()
		m.AllowAnyURL = cfg.Fetch.AllowAnyURL
		if err := m.CheckSource(args[0]); err != nil {
			return fmt.Errorf("%s", rulecraft.UserMessage(err))
		}
		client := fetch.NewClient(fetch.Options{Timeout: cfg.Fetch.Timeout, Token: cfg.Fetch.GitHubToken})

		text, err := client.FetchText(cmd.Context(), domain.FetchNodeList, fetch.NormalizeSourceURL(args[0]))
		if err != nil {
			logger.Debug("Fetch failed", "err", err)
			return fmt.Errorf("%s", rulecraft.UserMessage(err))
		}
		nodes, err := node.ParseList(text)
		if err != nil {
			return fmt.Errorf("%s", rulecraft.UserMessage(err))
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tHOST\tPORT\tREGION")
		for _, n := range nodes {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", n.Name, n.Host, n.Port, synth.RegionName(n.Region))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(nodesCmd)
}
