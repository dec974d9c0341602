package handlers

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adrigdeva/ragchat/internal/config"
	"github.com/adrigdeva/ragchat/internal/embedding"
	"github.com/adrigdeva/ragchat/internal/llm"
	"github.com/adrigdeva/ragchat/internal/vectorstore"
)

type SystemHandler struct {
	db       *pgxpool.Pool
	gateway  llm.Gateway
	embedSvc *embedding.Service
	store    vectorstore.Store
	cfg      *config.Config
}

func NewSystemHandler(db *pgxpool.Pool, gw llm.Gateway, embedSvc *embedding.Service, store vectorstore.Store, cfg *config.Config) *SystemHandler {
	return &SystemHandler{db: db, gateway: gw, embedSvc: embedSvc, store: store, cfg: cfg}
}

func (h *SystemHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *SystemHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{}

	if h.db != nil {
		if err := h.db.Ping(r.Context()); err != nil {
			checks["database"] = "unhealthy: " + err.Error()
		} else {
			checks["database"] = "ok"
		}
	}

	status := http.StatusOK
	for _, v := range checks {
		if v != "ok" {
			status = http.StatusServiceUnavailable
			break
		}
	}

	writeJSON(w, status, map[string]any{"status": statusStr(status), "checks": checks})
}

// Info reports the configured backends and current store/cache state.
func (h *SystemHandler) Info(w http.ResponseWriter, r *http.Request) {
	info := map[string]any{
		"llm":   h.gateway.Info(),
		"cache": h.embedSvc.CacheStats(),
		"rag": map[string]any{
			"topK":          h.cfg.RAG.TopK,
			"minScore":      h.cfg.RAG.MinScore,
			"contextWindow": h.cfg.RAG.ContextWindow,
		},
	}

	if collection, err := h.store.CollectionInfo(r.Context()); err == nil {
		info["collection"] = collection
	} else {
		info["collection"] = map[string]string{"error": err.Error()}
	}

	writeJSON(w, http.StatusOK, info)
}

func statusStr(code int) string {
	if code == http.StatusOK {
		return "ok"
	}
	return "unhealthy"
}
