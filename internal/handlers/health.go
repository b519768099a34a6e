package handlers

import (
	"database/sql"
	"net/http"
)

// Healthz reports process liveness.
func Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ping reports store liveness by round-tripping to the database.
func Ping(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]bool{"database_ok": false})
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"database_ok": true})
	}
}
