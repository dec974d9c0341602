package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/panjf2000/ants/v2"

	"github.com/adrigdeva/ragchat/internal/api/handlers"
	"github.com/adrigdeva/ragchat/internal/api/middleware"
	"github.com/adrigdeva/ragchat/internal/config"
	"github.com/adrigdeva/ragchat/internal/conversation"
	"github.com/adrigdeva/ragchat/internal/embedding"
	"github.com/adrigdeva/ragchat/internal/ingest"
	"github.com/adrigdeva/ragchat/internal/jobs"
	"github.com/adrigdeva/ragchat/internal/llm"
	"github.com/adrigdeva/ragchat/internal/rag"
	"github.com/adrigdeva/ragchat/internal/vectorstore"
)

type Router struct {
	mux   *chi.Mux
	db    *pgxpool.Pool
	pool  *ants.Pool
	cfg   *config.Config
	llmGW llm.Gateway
}

func NewRouter(db *pgxpool.Pool, pool *ants.Pool, gw llm.Gateway, cfg *config.Config) *Router {
	return &Router{
		mux:   chi.NewRouter(),
		db:    db,
		pool:  pool,
		cfg:   cfg,
		llmGW: gw,
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	rl := middleware.NewRateLimiter(rt.cfg.Server.RateLimitRPS, rt.cfg.Server.RateLimitBurst)
	r.Use(rl.Limit)

	// Services
	cache := embedding.NewCache(rt.cfg.Cache.MaxSize, rt.cfg.Cache.TTL)
	embedSvc := embedding.NewService(rt.llmGW, cache)
	store := vectorstore.NewPgVectorStore(rt.db, rt.cfg.Vector.Collection, rt.cfg.Embedding.Dimensions)
	registry := jobs.NewRegistry()
	pipeline := ingest.NewPipeline(registry, embedSvc, store, rt.pool, rt.cfg.Upload, rt.cfg.Ingest)
	convStore := conversation.NewStore(rt.cfg.History.MaxLength, rt.cfg.History.PageSize)
	engine := rag.NewEngine(embedSvc, store, rt.llmGW, convStore, rag.Options{
		TopK:          rt.cfg.RAG.TopK,
		MinScore:      rt.cfg.RAG.MinScore,
		ContextWindow: rt.cfg.RAG.ContextWindow,
	})

	// Health endpoints
	system := handlers.NewSystemHandler(rt.db, rt.llmGW, embedSvc, store, rt.cfg)
	r.Get("/healthz", system.Healthz)
	r.Get("/readyz", system.Readyz)

	chat := handlers.NewChatHandler(engine, convStore)
	upload := handlers.NewUploadHandler(pipeline, registry, store, rt.cfg.Upload)

	r.Route("/api", func(r chi.Router) {
		r.Get("/info", system.Info)

		r.Route("/chat", func(r chi.Router) {
			r.Post("/", chat.Chat)
			r.Get("/stats", chat.Stats)
			r.Get("/history/{userID}", chat.History)
			r.Delete("/history/{userID}", chat.ClearHistory)
		})

		r.Route("/upload", func(r chi.Router) {
			r.Post("/document", upload.Document)
			r.Post("/text", upload.Text)
			r.Get("/status/{jobID}", upload.Status)
			r.Get("/stats", upload.Stats)
			r.Delete("/source/{source}", upload.DeleteSource)
		})
	})

	return r
}
