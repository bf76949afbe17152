package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const resultsTimeout = 30 * time.Second

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Use(playerMiddleware)

		r.Get("/settings", s.handleSettings)

		r.Route("/game", func(r chi.Router) {
			r.Get("/", s.handleGame)
			r.Post("/start", s.handleStartGame)
			r.Put("/answer", s.handleSetAnswer)
			r.Post("/answer", s.handleSubmitAnswer)
			r.Post("/choice", s.handleSubmitChoice)
			r.Post("/reset", s.handleResetGame)
			r.Get("/ws", s.handleGameStream)
		})

		r.Route("/results", func(r chi.Router) {
			r.Use(timeoutMiddleware(resultsTimeout))
			r.Get("/", s.handleResults)
			r.Get("/stats", s.handleResultStats)
			r.Get("/export.xlsx", s.handleExportResults)
			r.Get("/{sessionID}", s.handleResult)
		})
	})

	return r
}
