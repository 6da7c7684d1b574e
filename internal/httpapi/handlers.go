package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/jaehyuk-c/voiceduel-client/internal/duel"
	"github.com/jaehyuk-c/voiceduel-client/internal/history"
)

const stateTimeout = 2 * time.Second

// StateHandler exposes the current duel snapshot for the presentation layer
// and for debugging.
func StateHandler(d *duel.Duel) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reply := make(chan duel.View, 1)
		d.Inbox() <- duel.GetState{Reply: reply}

		select {
		case view := <-reply:
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(view)
		case <-time.After(stateTimeout):
			http.Error(w, "state unavailable", http.StatusServiceUnavailable)
		}
	}
}

func HistoryHandler(store *history.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 20
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > 100 {
				http.Error(w, "bad limit", http.StatusBadRequest)
				return
			}
			limit = n
		}

		records, err := store.Recent(r.Context(), limit)
		if err != nil {
			http.Error(w, "failed to load history", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(records)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
