package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/aretw0/rulecraft/pkg/domain"
	"github.com/aretw0/rulecraft/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	kind, userID, value string
}

type fakeHandler struct {
	calls []call
}

func (f *fakeHandler) HandleText(ctx context.Context, userID, text string, p ports.Presenter) error {
	f.calls = append(f.calls, call{"text", userID, text})
	view := domain.View{Rows: []domain.Row{{
		Kind:    domain.RowCategories,
		Buttons: []domain.Button{{Label: "⬜️ YouTube", Data: "TOGGLE_YouTube"}},
	}}}
	return p.PresentChoices(ctx, userID, "Choose:", view)
}

func (f *fakeHandler) HandleAction(ctx context.Context, userID, data string, p ports.Presenter) error {
	f.calls = append(f.calls, call{"action", userID, data})
	return p.SendText(ctx, userID, "pressed "+data)
}

func TestRunChat_Dispatch(t *testing.T) {
	h := &fakeHandler{}
	in := strings.NewReader("https://gist.github.com/u/x\n\n1\n7\n!GENERATE\n/quit\nignored\n")
	var out bytes.Buffer

	require.NoError(t, RunChat(context.Background(), h, in, &out, ChatOptions{UserID: "me"}))

	assert.Equal(t, []call{
		{"text", "me", "https://gist.github.com/u/x"},
		{"action", "me", "TOGGLE_YouTube"},
		{"text", "me", "7"},
		{"action", "me", "GENERATE"},
	}, h.calls)
	assert.Contains(t, out.String(), "1) ⬜️ YouTube")
	assert.Contains(t, out.String(), "pressed GENERATE")
	assert.Contains(t, out.String(), ">>> Bye.")
}

func TestRunChat_StopsOnInterrupt(t *testing.T) {
	h := &fakeHandler{}
	cancel := make(chan struct{})
	close(cancel)
	var out bytes.Buffer

	err := RunChat(context.Background(), h, NewInterruptibleReader(strings.NewReader("hello\n"), cancel), &out, ChatOptions{})
	assert.NoError(t, err)
	assert.Empty(t, h.calls)
}
