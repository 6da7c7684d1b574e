package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// ServerWSURL is the battle server's websocket endpoint.
	ServerWSURL string
	// ScoringURL is the remote utterance-scoring service.
	ScoringURL string
	// ScoringTimeout bounds one scoring call.
	ScoringTimeout time.Duration

	// CharacterID selects the local character from the catalog.
	CharacterID string
	// CatalogPath is the character/ability catalog file.
	CatalogPath string

	// HistoryDBPath is the local match-history SQLite file.
	HistoryDBPath string

	// HTTPAddr serves the debug/state endpoints.
	HTTPAddr string

	// Match parameters, normally provided by the room layer. Env-driven
	// here so a duel can be started without it.
	RemoteCharacterID string
	MaxHP             int
	LocalGoesFirst    bool
}

// Load reads .env if present, then the environment, falling back to dev
// defaults.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		ServerWSURL:    getenv("SERVER_WS_URL", "ws://localhost:8080/battle"),
		ScoringURL:     getenv("SCORING_URL", "http://localhost:8090"),
		ScoringTimeout: getdur("SCORING_TIMEOUT", 3*time.Second),
		CharacterID:    getenv("CHARACTER_ID", "frost-mage"),
		CatalogPath:    getenv("CATALOG_PATH", "characters.json"),
		HistoryDBPath:  getenv("HISTORY_DB_PATH", "history.db"),
		HTTPAddr:       getenv("HTTP_ADDR", ":8081"),

		RemoteCharacterID: getenv("REMOTE_CHARACTER_ID", "flame-knight"),
		MaxHP:             getint("MAX_HP", 100),
		LocalGoesFirst:    getbool("LOCAL_GOES_FIRST", true),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getbool(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getdur(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
