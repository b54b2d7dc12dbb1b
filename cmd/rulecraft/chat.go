package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/aretw0/rulecraft"
	"github.com/aretw0/rulecraft/internal/cli"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the assistant in the terminal",
	Long: `Runs the assistant as a line-oriented chat. Send a node list link, press
buttons by typing their numbers, and the generated clash.yaml is written to
the output directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		user, _ := cmd.Flags().GetString("user")
		outDir, _ := cmd.Flags().GetString("out")
		plain, _ := cmd.Flags().GetBool("plain")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		go a.assistant.RunSweeper(ctx, a.cfg.SweepInterval)

		interactive := !plain && term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
		return cli.RunChat(ctx, a.assistant,
			cli.NewInterruptibleReader(os.Stdin, ctx.Done()), os.Stdout,
			cli.ChatOptions{
				UserID:      user,
				OutDir:      outDir,
				Version:     strings.TrimSpace(rulecraft.Version),
				Interactive: interactive,
				Logger:      a.logger,
			})
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().String("user", "local", "User ID the chat runs as")
	chatCmd.Flags().StringP("out", "o", ".", "Directory generated configurations are written to")
	chatCmd.Flags().Bool("plain", false, "Disable colors, markdown and the banner")
}
