package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	queryhandler "github.com/kartavya/ragchat/internal/handler/query"
	sessionhandler "github.com/kartavya/ragchat/internal/handler/session"
	"github.com/kartavya/ragchat/internal/middleware"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(orchestrator queryhandler.Answerer, store sessionhandler.Store, corsOrigin string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(corsOrigin))

	queryhandler.New(orchestrator).RegisterRoutes(r)
	sessionhandler.New(store).RegisterRoutes(r)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
