package driven

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRequest_Messages_WithContext(t *testing.T) {
	req := GenerateRequest{
		Prompt:       "Where did John work?",
		Context:      "Worked at Acme 2019-2022.",
		SystemPrompt: "Answer from context.",
	}

	msgs := req.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].Role)
	assert.Equal(t, "Answer from context.", msgs[0].Content)
	assert.Equal(t, "user", msgs[1].Role)
	assert.Equal(t,
		"Based on the following context, answer the question.\n\nContext:\nWorked at Acme 2019-2022.\n\nQuestion: Where did John work?\n\nAnswer:",
		msgs[1].Content)
}

func TestGenerateRequest_Messages_PlainPrompt(t *testing.T) {
	msgs := GenerateRequest{Prompt: "hello"}.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, ChatMessage{Role: "user", Content: "hello"}, msgs[0])
}
