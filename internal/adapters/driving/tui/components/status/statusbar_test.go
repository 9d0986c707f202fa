package status

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/resumerag/internal/adapters/driving/tui/keymap"
)

func TestBar_IdleShowsModelAndChunks(t *testing.T) {
	b := NewBar(nil, nil)
	b.SetWidth(120)
	b.SetModel("llama3.2")
	b.SetChunks(12)

	out := b.View()
	assert.Contains(t, out, "llama3.2 · 12 chunks")
	assert.Contains(t, out, "enter: ask")
	assert.Equal(t, StateReady, b.State())
}

func TestBar_States(t *testing.T) {
	b := NewBar(nil, nil)
	b.SetWidth(120)
	b.SetModel("mistral")

	b.SetState(StateThinking)
	assert.Contains(t, b.View(), "Retrieving...")

	b.SetState(StateStreaming)
	assert.Contains(t, b.View(), "Answering with mistral...")

	b.SetState(StateError)
	b.SetMessage("backend unreachable")
	assert.Contains(t, b.View(), "Error: backend unreachable")

	b.Clear()
	assert.Equal(t, StateReady, b.State())
	assert.Empty(t, b.Message())
}

func TestBar_MessageWhenReady(t *testing.T) {
	b := NewBar(nil, nil)
	b.SetWidth(120)
	b.SetMessage("Stopped")

	assert.Contains(t, b.View(), "Stopped")
}

func TestBar_SetHints(t *testing.T) {
	km := keymap.DefaultKeyMap()
	b := NewBar(nil, km)
	b.SetWidth(120)

	b.SetHints(km.StreamingHelp())

	out := b.View()
	assert.Contains(t, out, "esc: stop")
	assert.NotContains(t, out, "enter: ask")
	assert.Equal(t, 120, b.Width())
}
