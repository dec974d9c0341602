package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/adrigdeva/ragchat/internal/conversation"
	"github.com/adrigdeva/ragchat/internal/rag"
)

type ChatHandler struct {
	engine  *rag.Engine
	history *conversation.Store
}

func NewChatHandler(engine *rag.Engine, history *conversation.Store) *ChatHandler {
	return &ChatHandler{engine: engine, history: history}
}

type chatRequest struct {
	UserID string `json:"userId"`
	Query  string `json:"query"`
}

type chatFrame struct {
	Chunk    string                 `json:"chunk,omitempty"`
	Done     bool                   `json:"done"`
	Contexts []conversation.Context `json:"contexts,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

// Chat streams the answer as server-sent events. Every frame is a JSON
// chatFrame; the last one has done set, with either contexts or error.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		req.UserID = "anonymous"
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	events, err := h.engine.Query(r.Context(), req.UserID, req.Query)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for ev := range events {
		frame := chatFrame{Chunk: ev.Chunk, Done: ev.Done, Contexts: ev.Contexts}
		if ev.Err != nil {
			frame.Error = ev.Err.Error()
		}

		data, _ := json.Marshal(frame)
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()

		if ev.Done {
			return
		}
	}
}

// History returns one page of the user's conversation, newest first.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

	writeJSON(w, http.StatusOK, h.history.Page(userID, page, pageSize))
}

func (h *ChatHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	deleted := h.history.Clear(userID)
	writeJSON(w, http.StatusOK, map[string]any{"deleted": deleted})
}

func (h *ChatHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.history.Stats())
}
