package llm

import "context"

// Provider abstracts a chat/embedding backend (OpenAI, Anthropic, Ollama).
type Provider interface {
	ChatCompletionStream(ctx context.Context, req ChatRequest) (<-chan StreamChunk, error)
	GenerateEmbedding(ctx context.Context, req EmbeddingRequest) (*EmbeddingResponse, error)
	Name() string
}

// Gateway routes chat and embedding calls to the configured providers.
// The rest of the system never learns whether an embedding came from a
// remote API or a local model.
type Gateway interface {
	ChatStream(ctx context.Context, req ChatRequest) (<-chan StreamChunk, error)
	Embed(ctx context.Context, req EmbeddingRequest) (*EmbeddingResponse, error)
	Info() Info
}

// Message represents a single chat message.
type Message struct {
	Role    string `json:"role"` // system, user, assistant
	Content string `json:"content"`
}

// ChatRequest is the input for streaming chat completions.
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// StreamChunk is one increment of a streaming response. The stream is
// finite and forward-only: the channel closes after a chunk with Done
// set, and Err distinguishes a failed stream from a completed one.
type StreamChunk struct {
	Content string `json:"content,omitempty"`
	Done    bool   `json:"done"`
	Err     error  `json:"-"`
}

// EmbeddingRequest is the input for embedding generation.
type EmbeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

// EmbeddingResponse is the output from embedding generation.
type EmbeddingResponse struct {
	Provider   string      `json:"provider"`
	Model      string      `json:"model"`
	Embeddings [][]float32 `json:"embeddings"`
	Tokens     int         `json:"tokens"`
}

// Info describes the configured chat and embedding backends for the
// system info endpoint.
type Info struct {
	ChatProvider   string `json:"chatProvider"`
	ChatModel      string `json:"chatModel"`
	EmbedProvider  string `json:"embedProvider"`
	EmbedModel     string `json:"embedModel"`
	EmbedDimension int    `json:"embedDimension"`
}
