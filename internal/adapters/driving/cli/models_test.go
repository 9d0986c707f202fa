package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelsCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0, len(modelsCmd.Commands()))
	for _, c := range modelsCmd.Commands() {
		names = append(names, c.Name())
	}

	assert.Contains(t, names, "list")
	assert.Contains(t, names, "pull")
}

func TestModelsList_MarksDefault(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("models", "list")

	require.NoError(t, err)
	got := lines(out)
	require.Len(t, got, 2)
	assert.Contains(t, got[0], "* llama3.2")
	assert.Contains(t, got[0], "available")
	assert.Contains(t, got[1], "mistral")
	assert.Contains(t, got[1], "not pulled")
}

func TestModelsList_Empty(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.models.models = nil

	out, err := executeCommand("models", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No models configured.")
}

func TestModelsPull(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("models", "pull", "mistral")

	require.NoError(t, err)
	assert.Equal(t, "mistral", ts.models.pulled)
	assert.Contains(t, out, "Pulling mistral...")
	assert.Contains(t, out, "Model mistral is ready.")
}

func TestModelsPull_Error(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.models.pullErr = errors.New("not supported")

	_, err := executeCommand("models", "pull", "gpt-4o")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to pull model")
}

func TestModels_ServiceNotConfigured(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	modelService = nil

	_, err := executeCommand("models", "list")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "model service not configured")
}
