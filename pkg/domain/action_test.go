package domain_test

import (
	"testing"

	"github.com/aretw0/rulecraft/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAction(t *testing.T) {
	tests := []struct {
		data string
		want domain.Action
	}{
		{"TOGGLE_YouTube", domain.Action{Kind: domain.ActionToggleCategory, Item: "YouTube"}},
		{"TOGGLE_GROUP_Streaming", domain.Action{Kind: domain.ActionToggleGroup, Item: "Streaming"}},
		{"LETTER_N", domain.Action{Kind: domain.ActionLetter, Item: "N"}},
		{"NEXT", domain.Action{Kind: domain.ActionNextPage}},
		{"GPREV", domain.Action{Kind: domain.ActionPrevGroupPage}},
		{"GENERATE", domain.Action{Kind: domain.ActionGenerate}},
		{"EG_TOGGLE_Netflix", domain.Action{Kind: domain.ActionEditToggle, Item: "Netflix"}},
		{"EG_SAVE", domain.Action{Kind: domain.ActionEditSave}},
		{"EG_CLEAR_FILTER", domain.Action{Kind: domain.ActionEditClearFilter}},
	}
	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			got, err := domain.DecodeAction(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.data, got.Encode())
		})
	}
}

func TestAction_EncodeCategoryLikeGroup(t *testing.T) {
	tests := []struct {
		category string
		data     string
	}{
		{"GROUP_Foo", "TOGGLE_=GROUP_Foo"},
		{"=x", "TOGGLE_==x"},
		{"Netflix", "TOGGLE_Netflix"},
		{"GROUPS", "TOGGLE_GROUPS"},
	}
	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			a := domain.Action{Kind: domain.ActionToggleCategory, Item: tt.category}
			assert.Equal(t, tt.data, a.Encode())

			got, err := domain.DecodeAction(a.Encode())
			require.NoError(t, err)
			assert.Equal(t, a, got)
		})
	}

	group, err := domain.DecodeAction("TOGGLE_GROUP_Foo")
	require.NoError(t, err)
	assert.Equal(t, domain.ActionToggleGroup, group.Kind)
}

func TestDecodeAction_Unknown(t *testing.T) {
	for _, data := range []string{"", "FOO", "TOGGLE_", "TOGGLE_=", "LETTER_"} {
		_, err := domain.DecodeAction(data)
		assert.ErrorIs(t, err, domain.ErrUnknownAction, data)
	}
}

func TestAction_Editor(t *testing.T) {
	assert.True(t, domain.Action{Kind: domain.ActionEditSave}.Editor())
	assert.False(t, domain.Action{Kind: domain.ActionGenerate}.Editor())
}
