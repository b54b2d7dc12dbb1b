package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/aretw0/rulecraft/internal/presentation/tui"
	"github.com/aretw0/rulecraft/pkg/ports"
	"github.com/muesli/termenv"
)

// Handler is the part of the assistant the chat drives.
type Handler interface {
	HandleText(ctx context.Context, userID, text string, p ports.Presenter) error
	HandleAction(ctx context.Context, userID, data string, p ports.Presenter) error
}

// ChatOptions configures RunChat.
type ChatOptions struct {
	UserID      string
	OutDir      string
	Version     string
	Interactive bool // colors, markdown and the banner
	Logger      *slog.Logger
}

const chatHint = "Type a node list link or a command (/help). Press a button by typing its number, /quit to leave."

// RunChat reads lines from in and feeds them to h until EOF, /quit or an
// interrupt. A bare number presses that button of the last drawn view; a line
// starting with "!" is sent as raw action data.
func RunChat(ctx context.Context, h Handler, in io.Reader, out io.Writer, opts ChatOptions) error {
	if opts.UserID == "" {
		opts.UserID = "local"
	}
	if opts.OutDir == "" {
		opts.OutDir = "."
	}
	if opts.Logger == nil {
		opts.Logger = NewLogger(false)
	}

	popts := []tui.PresenterOption{tui.WithOutputDir(opts.OutDir)}
	if opts.Interactive {
		tui.PrintBanner(out, opts.Version)
		popts = append(popts, tui.WithMarkdown(tui.NewRenderer()))
	} else {
		popts = append(popts, tui.WithProfile(termenv.Ascii))
	}
	p := tui.NewPresenter(out, popts...)

	printSystemMessage(out, "%s", chatHint)
	sc := bufio.NewScanner(in)
	for {
		if opts.Interactive {
			fmt.Fprint(out, "> ")
		}
		if !sc.Scan() {
			break
		}
		line := strings.TrimSpace(sc.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			printSystemMessage(out, "Bye.")
			return nil
		}

		if err := dispatch(ctx, h, p, opts.UserID, line); err != nil {
			if isInterrupted(err) {
				return nil
			}
			opts.Logger.Error("Chat request failed", "err", err)
		}
		if ctx.Err() != nil {
			return nil
		}
	}

	if err := sc.Err(); err != nil && !isInterrupted(err) {
		return err
	}
	return nil
}

func dispatch(ctx context.Context, h Handler, p *tui.Presenter, userID, line string) error {
	if n, err := strconv.Atoi(line); err == nil {
		if data, ok := p.Button(n); ok {
			return h.HandleAction(ctx, userID, data, p)
		}
	}
	if data, ok := strings.CutPrefix(line, "!"); ok {
		return h.HandleAction(ctx, userID, strings.TrimSpace(data), p)
	}
	return h.HandleText(ctx, userID, line, p)
}
