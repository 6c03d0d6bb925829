package validation

import (
	"strings"
	"testing"

	"socialvim/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckHandle(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		handle  string
		wantErr bool
	}{
		{"Plain", "vimmaster", false},
		{"Surrounding Whitespace Kept", "  neovim_fan \t", false},
		{"Whitespace Only", "   ", false},
		{"Empty", "", true},
		{"Exactly Max Length", strings.Repeat("a", MaxHandleLength), false},
		{"Too Long", strings.Repeat("a", MaxHandleLength+1), true},
		{"Multibyte Counted As Runes", strings.Repeat("é", MaxHandleLength), false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := CheckHandle(tt.handle)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, models.IsValidation(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

type createPostPayload struct {
	Content string `validate:"required,max=10"`
}

func TestStruct(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Struct(createPostPayload{Content: "hi"}))

	err := Struct(createPostPayload{})
	require.Error(t, err)
	assert.True(t, models.IsValidation(err))
	assert.Contains(t, err.Error(), "content is required")

	err = Struct(createPostPayload{Content: strings.Repeat("x", 11)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at most 10")

	long := strings.Repeat("x", 51)
	err = Struct(models.SettingsUpdate{Username: &long})
	require.Error(t, err)
	assert.True(t, models.IsValidation(err))
}
