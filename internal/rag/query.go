package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/adrigdeva/ragchat/internal/conversation"
	"github.com/adrigdeva/ragchat/internal/llm"
	"github.com/adrigdeva/ragchat/internal/vectorstore"
)

// Embedder is the slice of the embedding service the query path needs.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Searcher is the slice of the vector store the query path needs.
type Searcher interface {
	Search(ctx context.Context, vector []float32, k int, threshold float64) ([]vectorstore.SearchResult, error)
}

// ChatStreamer is the slice of the LLM gateway the query path needs.
type ChatStreamer interface {
	ChatStream(ctx context.Context, req llm.ChatRequest) (<-chan llm.StreamChunk, error)
}

// Options tunes retrieval for the query pipeline.
type Options struct {
	TopK          int
	MinScore      float64
	ContextWindow int
}

// Event is one increment of a query response. Contexts rides on the
// final successful event; Err marks a stream that terminated abnormally
// after zero or more content events.
type Event struct {
	Chunk    string
	Done     bool
	Contexts []conversation.Context
	Err      error
}

// Engine runs the read path: embed the query, search the store, build
// the prompt from context plus recent history, stream the answer, and
// persist the completed exchange.
type Engine struct {
	embedder Embedder
	store    Searcher
	chat     ChatStreamer
	history  *conversation.Store
	opts     Options
	logger   *slog.Logger
}

func NewEngine(embedder Embedder, store Searcher, chat ChatStreamer, history *conversation.Store, opts Options) *Engine {
	return &Engine{
		embedder: embedder,
		store:    store,
		chat:     chat,
		history:  history,
		opts:     opts,
		logger:   slog.Default().With("component", "query"),
	}
}

// Query answers one user question, emitting events on the returned
// channel as tokens arrive. The channel always terminates with exactly
// one event carrying Done or Err; the exchange is appended to history
// only when the stream completes cleanly.
func (e *Engine) Query(ctx context.Context, userID, query string) (<-chan Event, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty query")
	}

	var contexts []vectorstore.SearchResult
	if !IsGreeting(query) {
		vector, err := e.embedder.Embed(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("embed query: %w", err)
		}

		contexts, err = e.store.Search(ctx, vector, e.opts.TopK, e.opts.MinScore)
		if err != nil {
			return nil, fmt.Errorf("search context: %w", err)
		}
	}

	recent := e.history.RecentWindow(userID, e.opts.ContextWindow)
	messages := BuildPrompt(query, contexts, recent)

	stream, err := e.chat.ChatStream(ctx, llm.ChatRequest{Messages: messages})
	if err != nil {
		return nil, fmt.Errorf("start chat stream: %w", err)
	}

	events := make(chan Event)
	go e.forward(ctx, stream, events, userID, query, contexts)
	return events, nil
}

func (e *Engine) forward(ctx context.Context, stream <-chan llm.StreamChunk, events chan<- Event, userID, query string, contexts []vectorstore.SearchResult) {
	defer close(events)

	var answer strings.Builder
	for chunk := range stream {
		if chunk.Err != nil {
			e.logger.Error("chat stream failed", "user", userID, "error", chunk.Err)
			events <- Event{Err: chunk.Err, Done: true}
			return
		}
		if chunk.Content != "" {
			answer.WriteString(chunk.Content)
			select {
			case events <- Event{Chunk: chunk.Content}:
			case <-ctx.Done():
				return
			}
		}
		if chunk.Done {
			break
		}
	}

	used := contextsForHistory(contexts)
	e.history.Append(userID, query, answer.String(), used)
	e.logger.Info("query answered", "user", userID, "contexts", len(used), "answerLen", answer.Len())

	events <- Event{Done: true, Contexts: used}
}

func contextsForHistory(results []vectorstore.SearchResult) []conversation.Context {
	contexts := make([]conversation.Context, 0, len(results))
	for _, r := range results {
		contexts = append(contexts, conversation.Context{
			Text:   r.Payload.Text,
			Source: r.Payload.Source,
			Score:  r.Score,
		})
	}
	return contexts
}
