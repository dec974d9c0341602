package llm

import (
	"context"
	"fmt"

	"github.com/adrigdeva/ragchat/internal/config"
)

type gateway struct {
	chat     Provider
	embed    Provider
	chatCfg  config.LLMConfig
	embedCfg config.EmbeddingConfig
}

// NewGateway wires the configured chat and embedding providers. The two
// may differ: a remote chat model paired with a local embedding model is
// a supported setup.
func NewGateway(chatCfg config.LLMConfig, embedCfg config.EmbeddingConfig) (Gateway, error) {
	providers := map[string]Provider{}
	if chatCfg.OpenAIKey != "" {
		providers["openai"] = NewOpenAIProvider(chatCfg.OpenAIKey)
	}
	if chatCfg.AnthropicKey != "" {
		providers["anthropic"] = NewAnthropicProvider(chatCfg.AnthropicKey)
	}
	if chatCfg.OllamaURL != "" {
		providers["ollama"] = NewOllamaProvider(chatCfg.OllamaURL)
	}

	chat, ok := providers[chatCfg.Provider]
	if !ok {
		return nil, fmt.Errorf("chat provider %q not configured", chatCfg.Provider)
	}
	embed, ok := providers[embedCfg.Provider]
	if !ok {
		return nil, fmt.Errorf("embedding provider %q not configured", embedCfg.Provider)
	}

	return &gateway{
		chat:     chat,
		embed:    embed,
		chatCfg:  chatCfg,
		embedCfg: embedCfg,
	}, nil
}

func (g *gateway) ChatStream(ctx context.Context, req ChatRequest) (<-chan StreamChunk, error) {
	if req.Model == "" {
		req.Model = g.chatCfg.Model
	}
	if req.Temperature == 0 {
		req.Temperature = g.chatCfg.Temperature
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = g.chatCfg.MaxTokens
	}
	return g.chat.ChatCompletionStream(ctx, req)
}

func (g *gateway) Embed(ctx context.Context, req EmbeddingRequest) (*EmbeddingResponse, error) {
	if req.Model == "" {
		req.Model = g.embedCfg.Model
	}
	if req.Dimensions == 0 {
		req.Dimensions = g.embedCfg.Dimensions
	}
	return g.embed.GenerateEmbedding(ctx, req)
}

func (g *gateway) Info() Info {
	return Info{
		ChatProvider:   g.chat.Name(),
		ChatModel:      g.chatCfg.Model,
		EmbedProvider:  g.embed.Name(),
		EmbedModel:     g.embedCfg.Model,
		EmbedDimension: g.embedCfg.Dimensions,
	}
}
