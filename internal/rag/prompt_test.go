package rag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adrigdeva/ragchat/internal/conversation"
	"github.com/adrigdeva/ragchat/internal/vectorstore"
)

func TestIsGreeting(t *testing.T) {
	for _, q := range []string{"hi", "Hello", "HEY!", "  thanks  ", "good morning", "Okay.", "bye"} {
		assert.True(t, IsGreeting(q), q)
	}
	for _, q := range []string{"hi, what is pgvector?", "hello world explain this", "what is RAG"} {
		assert.False(t, IsGreeting(q), q)
	}
}

func TestBuildPromptGreetingBypassesContext(t *testing.T) {
	contexts := []vectorstore.SearchResult{
		{Payload: vectorstore.Payload{Text: "irrelevant"}},
	}

	messages := BuildPrompt("hello", contexts, nil)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].Role)
	assert.NotContains(t, messages[0].Content, "context")
	assert.Equal(t, "user", messages[1].Role)
	assert.Equal(t, "hello", messages[1].Content)
}

func TestBuildPromptOrdering(t *testing.T) {
	contexts := []vectorstore.SearchResult{
		{Payload: vectorstore.Payload{Text: "First passage."}},
		{Payload: vectorstore.Payload{Text: "Second passage."}},
	}
	history := []conversation.Message{
		{Query: "earlier question", Response: "earlier answer"},
	}

	messages := BuildPrompt("what now?", contexts, history)
	require.Len(t, messages, 6)

	assert.Equal(t, "system", messages[0].Role)

	assert.Equal(t, "assistant", messages[1].Role)
	assert.Equal(t, "[1] First passage.", messages[1].Content)
	assert.Equal(t, "assistant", messages[2].Role)
	assert.Equal(t, "[2] Second passage.", messages[2].Content)

	assert.Equal(t, "user", messages[3].Role)
	assert.Equal(t, "earlier question", messages[3].Content)
	assert.Equal(t, "assistant", messages[4].Role)
	assert.Equal(t, "earlier answer", messages[4].Content)

	assert.Equal(t, "user", messages[5].Role)
	assert.Equal(t, "what now?", messages[5].Content)
}

func TestBuildPromptSkipsEmptyContexts(t *testing.T) {
	contexts := []vectorstore.SearchResult{
		{Payload: vectorstore.Payload{Text: "   "}},
		{Payload: vectorstore.Payload{Text: "Real passage."}},
	}

	messages := BuildPrompt("question", contexts, nil)
	require.Len(t, messages, 3)
	assert.Equal(t, "[2] Real passage.", messages[1].Content)
}

func TestBuildPromptNoContextsCarriesRefusalInstruction(t *testing.T) {
	messages := BuildPrompt("unanswerable question", nil, nil)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].Role)
	assert.Contains(t, messages[0].Content, RefusalMessage)
	assert.Equal(t, "user", messages[1].Role)
}
