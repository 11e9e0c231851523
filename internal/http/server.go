package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/tour-matching/internal/auth"
	"github.com/example/tour-matching/internal/dispatch"
	"github.com/example/tour-matching/internal/embedding"
	"github.com/example/tour-matching/internal/events"
	"github.com/example/tour-matching/internal/match"
	"github.com/example/tour-matching/internal/store"
)

// Server wires the dispatch and matching services into HTTP handlers.
type Server struct {
	Dispatcher *dispatch.Service
	Matcher    *match.Service
	Embeddings *embedding.Service // nil when no embeddings endpoint is configured
	Auth       *auth.Verifier
	Store      store.Store
	Events     *events.Producer // nil when Kafka is not configured
	WSReg      *dispatch.WSRegistry

	mux    *mux.Router
	h      http.Handler
	logger *slog.Logger
}

type Options struct {
	Dispatcher *dispatch.Service
	Matcher    *match.Service
	Embeddings *embedding.Service
	Auth       *auth.Verifier
	Store      store.Store
	Events     *events.Producer
	WSReg      *dispatch.WSRegistry
	Logger     *slog.Logger
}

func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		Dispatcher: opts.Dispatcher,
		Matcher:    opts.Matcher,
		Embeddings: opts.Embeddings,
		Auth:       opts.Auth,
		Store:      opts.Store,
		Events:     opts.Events,
		WSReg:      opts.WSReg,
		mux:        mux.NewRouter(),
		logger:     logger,
	}
	s.registerMiddleware()
	s.routes()
	s.h = s.handler()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/functions/dispatch-driver", s.handleDispatchDriver).Methods(http.MethodPost)
	s.mux.HandleFunc("/functions/find-matches", s.handleFindMatches).Methods(http.MethodPost)
	s.mux.HandleFunc("/functions/generate-embeddings", s.handleGenerateEmbeddings).Methods(http.MethodPost)
	s.mux.HandleFunc("/internal/driver/locations", s.handleDriverLocation).Methods(http.MethodPost)
	s.mux.HandleFunc("/ws/drivers/{driver_id}", s.handleWS)
	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	s.mux.Handle("/metrics", promhttp.Handler())
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.h.ServeHTTP(w, r) }
