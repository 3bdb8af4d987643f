package rest

import (
	"context"
	"fmt"
	"net/http"

	core_port "recommendation-service/internal/core/port"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Server - наш REST API сервер.
type Server struct {
	httpServer *http.Server
	logger     core_port.LoggerPort
}

// NewServer создает новый экземпляр сервера.
func NewServer(
	port string,
	scoresHandlers *ScoresHandler,
	recsHandlers *RecommendationsHandler,
	allowedOrigins []string,
	baseLogger core_port.LoggerPort,
) *Server {
	r := chi.NewRouter()

	// Общие middleware
	r.Use(LoggerMiddleware(baseLogger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-User-ID", "X-Trace-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api/v1", func(r chi.Router) {

		// --- Внутренние роуты (вызываются другими сервисами) ---
		r.Post("/scores/calculate", scoresHandlers.CalculateScores)
		r.Post("/listings/{listingID}/scores/recalculate", scoresHandlers.RecalculateListingScores)

		r.Route("/recommendations", func(r chi.Router) {

			// --- Публичные подборки (не требуют userID) ---
			r.Get("/popular", recsHandlers.GetPopular)
			r.Get("/trending", recsHandlers.GetTrending)
			r.Get("/high-score", recsHandlers.GetHighScore)
			r.Get("/location", recsHandlers.GetByLocation)

			// --- Приватные роуты (требуют userID из заголовка) ---
			r.Group(func(r chi.Router) {
				r.Use(AuthMiddleware)

				r.Get("/", recsHandlers.GetRecommendations)
				r.Get("/similar", recsHandlers.GetSimilar)
				r.Get("/nearby", recsHandlers.GetNearby)
			})
		})
	})

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	return &Server{
		httpServer: srv,
		logger:     baseLogger,
	}
}

// Start запускает HTTP-сервер.
func (s *Server) Start() error {
	s.logger.Info("Starting REST API server", core_port.Fields{"address": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Could not start server", err, nil)
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

// Stop корректно останавливает сервер.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping REST API server...", nil)
	return s.httpServer.Shutdown(ctx)
}
