package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dartmania/game-api/internal/game"
)

func NewRouter(gh *game.Handler) http.Handler {
	r := chi.NewRouter()

	r.Route("/api", func(api chi.Router) {
		api.Get("/state", gh.LatestState)              // GET    /api/state
		api.Get("/game/{gameID}", gh.GetGame)          // GET    /api/game/:id
		api.Post("/game", gh.CreateGame)               // POST   /api/game
		api.Post("/throw", gh.PostThrow)               // POST   /api/throw
		api.Post("/undo", gh.PostUndo)                 // POST   /api/undo
		api.Post("/end", gh.PostEnd)                   // POST   /api/end
		api.Get("/history", gh.ListHistory)            // GET    /api/history
		api.Delete("/history/{gameID}", gh.DeleteGame) // DELETE /api/history/:id
	})

	return r
}
