package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typeText(f *Field, s string) {
	for _, r := range s {
		f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestField_ReturnsTypedValue(t *testing.T) {
	f := NewField(nil, "Context root", "/myService", false)
	typeText(f, "/shop")

	_, cmd := f.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, cmd)
	v, ok := f.Result()
	assert.True(t, ok)
	assert.Equal(t, "/shop", v)
	assert.Empty(t, f.View())
}

func TestField_EmptyYieldsDefault(t *testing.T) {
	f := NewField(nil, "Protocol", "HTTP", false)

	f.Update(tea.KeyMsg{Type: tea.KeyEnter})

	v, ok := f.Result()
	assert.True(t, ok)
	assert.Equal(t, "HTTP", v)
}

func TestField_Cancel(t *testing.T) {
	f := NewField(nil, "Name", "", false)
	typeText(f, "abc")

	f.Update(tea.KeyMsg{Type: tea.KeyEsc})

	_, ok := f.Result()
	assert.False(t, ok)
}

func TestField_NotConfirmed(t *testing.T) {
	f := NewField(nil, "Name", "x", false)

	_, ok := f.Result()

	assert.False(t, ok)
}

func TestField_SecretIsMasked(t *testing.T) {
	f := NewField(nil, "Access token", "", true)
	typeText(f, "s3cret")

	view := f.View()

	assert.Contains(t, view, "Access token")
	assert.NotContains(t, view, "s3cret")

	f.Update(tea.KeyMsg{Type: tea.KeyEnter})
	v, ok := f.Result()
	assert.True(t, ok)
	assert.Equal(t, "s3cret", v)
}
