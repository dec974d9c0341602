package rag

import (
	"fmt"
	"strings"

	"github.com/adrigdeva/ragchat/internal/conversation"
	"github.com/adrigdeva/ragchat/internal/llm"
	"github.com/adrigdeva/ragchat/internal/vectorstore"
)

// RefusalMessage is the exact string the model is instructed to emit
// when the retrieved context cannot answer the question.
const RefusalMessage = "Sorry, no relevant information is available in the provided context."

var systemPrompt = fmt.Sprintf(`You are a helpful AI assistant. Answer questions using ONLY the provided context.
The context passages are numbered; cite them with bracketed indices like [1] or [2] when you use them.
If the context does not contain the information needed to answer, respond with exactly:
%s
Do not use outside knowledge. Be concise and accurate.`, RefusalMessage)

const greetingPrompt = "You are a friendly AI assistant. Reply briefly and warmly to the user's greeting."

// greetings are the short inputs that skip retrieval context entirely.
var greetings = map[string]struct{}{
	"hi":             {},
	"hello":          {},
	"hey":            {},
	"good morning":   {},
	"good afternoon": {},
	"good evening":   {},
	"thanks":         {},
	"thank you":      {},
	"ok":             {},
	"okay":           {},
	"bye":            {},
	"goodbye":        {},
}

// IsGreeting reports whether the query is a bare greeting or
// acknowledgement, ignoring case, surrounding space and punctuation.
func IsGreeting(query string) bool {
	normalized := strings.ToLower(strings.TrimSpace(query))
	normalized = strings.TrimRight(normalized, ".!?, ")
	_, ok := greetings[normalized]
	return ok
}

// BuildPrompt assembles the message sequence for one query.
//
// Greetings get a minimal two-message exchange with no context. For
// real questions the order is: strict system prompt, one assistant
// message per retrieved context (tagged with its 1-based index so
// citations resolve), the recent history replayed chronologically as
// user/assistant pairs, and the live query last.
func BuildPrompt(query string, contexts []vectorstore.SearchResult, history []conversation.Message) []llm.Message {
	if IsGreeting(query) {
		return []llm.Message{
			{Role: "system", Content: greetingPrompt},
			{Role: "user", Content: query},
		}
	}

	messages := []llm.Message{
		{Role: "system", Content: systemPrompt},
	}

	for i, ctx := range contexts {
		text := strings.TrimSpace(ctx.Payload.Text)
		if text == "" {
			continue
		}
		messages = append(messages, llm.Message{
			Role:    "assistant",
			Content: fmt.Sprintf("[%d] %s", i+1, text),
		})
	}

	for _, msg := range history {
		messages = append(messages,
			llm.Message{Role: "user", Content: msg.Query},
			llm.Message{Role: "assistant", Content: msg.Response},
		)
	}

	messages = append(messages, llm.Message{Role: "user", Content: query})
	return messages
}
