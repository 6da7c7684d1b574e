package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jaehyuk-c/voiceduel-client/internal/duel"
	"github.com/jaehyuk-c/voiceduel-client/internal/history"
)

func SetupRoutes(d *duel.Duel, store *history.Store) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", Healthz)
	r.Get("/state", StateHandler(d))
	r.Get("/history", HistoryHandler(store))
	return r
}
