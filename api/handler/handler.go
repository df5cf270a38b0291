package handler

import (
	"encoding/json"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"

	"watchdog/api/config"
	"watchdog/api/hub"
	"watchdog/api/notify"
	"watchdog/api/store"
)

var validWatchdogIDRe = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*$`)

type Handler struct {
	store      *store.Store
	dispatcher notify.Invoker
	ws         *hub.Hub
	cfg        *config.Config
}

func New(s *store.Store, d notify.Invoker, ws *hub.Hub, cfg *config.Config) *Handler {
	return &Handler{
		store:      s,
		dispatcher: d,
		ws:         ws,
		cfg:        cfg,
	}
}

// Routes mounts the lifecycle API on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/healthz", h.Healthz)
	r.Post("/watchdogs", h.CreateGenerated)
	r.Route("/watchdog/{wid}", func(r chi.Router) {
		r.Use(ValidateWatchdogID)
		r.Post("/", h.CreateOrUpdate)
		r.Get("/", h.Get)
		r.Get("/ping", h.Ping)
		r.Delete("/", h.Delete)
	})
}

// ValidateWatchdogID is middleware that rejects requests with invalid ids.
// Keeping ":" out of ids means heartbeat keys always parse back exactly.
func ValidateWatchdogID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wid := chi.URLParam(r, "wid")
		if wid == "" || !validWatchdogIDRe.MatchString(wid) {
			writeError(w, http.StatusBadRequest, "invalid watchdog id")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
