package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"go-token-auth/internal/config"
	"go-token-auth/internal/handler"
	"go-token-auth/internal/middleware"
)

type healthChecker interface {
	Ping(ctx context.Context) error
}

func New(
	cfg *config.Config,
	authMiddleware *middleware.AuthMiddleware,
	authHandler *handler.AuthHandler,
	health healthChecker,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()

		if err := health.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("unavailable"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Group(func(auth chi.Router) {
		auth.Use(middleware.Timeout(cfg.RequestTimeout))

		auth.Post("/login", authHandler.Login)
		auth.Get("/refresh", authHandler.Refresh)
		auth.With(authMiddleware.RequireAuth).Get("/logout", authHandler.Logout)
	})

	return r
}
