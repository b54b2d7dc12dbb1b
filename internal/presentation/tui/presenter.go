package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aretw0/rulecraft/pkg/domain"
	"github.com/muesli/termenv"
)

// Presenter draws the assistant's output on a terminal. Buttons are numbered
// so a line-oriented chat can press them by number.
type Presenter struct {
	out      io.Writer
	outDir   string
	markdown func(string) (string, error)
	profile  termenv.Profile

	mu      sync.Mutex
	buttons []domain.Button
}

// PresenterOption configures a Presenter.
type PresenterOption func(*Presenter)

// WithMarkdown renders texts that look like markdown through fn.
func WithMarkdown(fn func(string) (string, error)) PresenterOption {
	return func(p *Presenter) {
		p.markdown = fn
	}
}

// WithOutputDir sets where delivered documents are written (default: the working directory).
func WithOutputDir(dir string) PresenterOption {
	return func(p *Presenter) {
		p.outDir = dir
	}
}

// WithProfile overrides the detected color profile.
func WithProfile(profile termenv.Profile) PresenterOption {
	return func(p *Presenter) {
		p.profile = profile
	}
}

// NewPresenter creates a Presenter writing to out.
func NewPresenter(out io.Writer, opts ...PresenterOption) *Presenter {
	p := &Presenter{
		out:     out,
		outDir:  ".",
		profile: termenv.ColorProfile(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SendText prints a message.
func (p *Presenter) SendText(ctx context.Context, userID, text string) error {
	if p.markdown != nil && strings.HasPrefix(text, "# ") {
		if rendered, err := p.markdown(text); err == nil {
			text = strings.TrimRight(rendered, "\n")
		}
	}
	_, err := fmt.Fprintln(p.out, text)
	return err
}

// PresentChoices prints text followed by the numbered view.
func (p *Presenter) PresentChoices(ctx context.Context, userID, text string, view domain.View) error {
	if _, err := fmt.Fprintln(p.out, p.profile.String(text).Bold()); err != nil {
		return err
	}
	return p.draw(view)
}

// UpdateChoices redraws the view.
func (p *Presenter) UpdateChoices(ctx context.Context, userID string, view domain.View) error {
	return p.draw(view)
}

// DeliverDocument writes doc to the output directory and prints where.
func (p *Presenter) DeliverDocument(ctx context.Context, userID string, doc []byte, filename, caption string) error {
	path := filepath.Join(p.outDir, filepath.Base(filename))
	if err := os.WriteFile(path, doc, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	msg := fmt.Sprintf("Saved %s (%s)", path, caption)
	_, err := fmt.Fprintln(p.out, p.profile.String(msg).Foreground(p.profile.Color("#34d399")))
	return err
}

// Button returns the data of the n-th button (1-based) of the last drawn view.
func (p *Presenter) Button(n int) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n < 1 || n > len(p.buttons) {
		return "", false
	}
	return p.buttons[n-1].Data, true
}

func (p *Presenter) draw(view domain.View) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.buttons = p.buttons[:0]
	var b strings.Builder
	for _, row := range view.Rows {
		cells := make([]string, 0, len(row.Buttons))
		for _, btn := range row.Buttons {
			p.buttons = append(p.buttons, btn)
			label := p.profile.String(btn.Label)
			if row.Kind == domain.RowCategories || row.Kind == domain.RowGroups {
				if strings.HasPrefix(btn.Label, "✅") {
					label = label.Foreground(p.profile.Color("#34d399"))
				}
			}
			num := p.profile.String(fmt.Sprintf("%d)", len(p.buttons))).Faint()
			cells = append(cells, num.String()+" "+label.String())
		}
		b.WriteString("  ")
		b.WriteString(strings.Join(cells, "   "))
		b.WriteByte('\n')
	}
	_, err := io.WriteString(p.out, b.String())
	return err
}
