package menu

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/resumerag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/resumerag/internal/core/domain"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestView_Navigation(t *testing.T) {
	v := NewView(nil)

	v, _ = v.Update(runes("k"))
	assert.Equal(t, 0, v.Selected())

	v, _ = v.Update(runes("j"))
	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2, v.Selected())

	for range 10 {
		v, _ = v.Update(runes("j"))
	}
	assert.Equal(t, 4, v.Selected())
}

func TestView_SelectChangesView(t *testing.T) {
	v := NewView(nil)
	v, _ = v.Update(runes("j"))

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewDocuments}, cmd())
}

func TestView_SelectQuit(t *testing.T) {
	v := NewView(nil)
	for range 4 {
		v, _ = v.Update(runes("j"))
	}

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestView_RendersStats(t *testing.T) {
	v := NewView(nil)
	assert.Equal(t, "Initialising...", v.View())

	v, _ = v.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	v, _ = v.Update(messages.StatsLoaded{Stats: domain.Stats{
		DocumentsCount: 2,
		ChunksCount:    31,
		IndexState:     "ready",
		Warnings:       []string{"scan.pdf: no text"},
	}})

	out := v.View()
	assert.Contains(t, out, "2 document(s), 31 chunks, index ready")
	assert.Contains(t, out, "1 file(s) skipped")
	assert.Contains(t, out, "Chat")
	assert.Contains(t, out, "Settings")
}
