package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"watchdog/api/hub"
	"watchdog/api/model"
	"watchdog/api/store"
)

const defaultTimeout = 600 // seconds, when the caller leaves timeout unset

// CreateOrUpdate registers a watchdog under a caller-chosen id, or fully
// overwrites an existing one. Both TTLs are reset: the config record to the
// (clamped) expire, the heartbeat marker to timeout.
func (h *Handler) CreateOrUpdate(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, chi.URLParam(r, "wid"))
}

// CreateGenerated registers a watchdog under a fresh generated id.
func (h *Handler) CreateGenerated(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, uuid.NewString())
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request, wid string) {
	var cfg model.WatchdogConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Expire == 0 {
		cfg.Expire = h.cfg.MaxExpire
	}

	if err := cfg.Validate(h.cfg.MaxExpire); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	if err := h.store.SaveConfig(ctx, wid, &cfg); err != nil {
		log.Printf("handler: %v", err)
		writeError(w, http.StatusInternalServerError, "store error")
		return
	}
	if err := h.store.SetHeartbeat(ctx, wid, cfg.Timeout); err != nil {
		log.Printf("handler: %v", err)
		writeError(w, http.StatusInternalServerError, "store error")
		return
	}

	log.Printf("[%s] created/updated, timeout=%ds expire=%ds", wid, cfg.Timeout, cfg.Expire)
	h.ws.Broadcast(hub.Event{Type: "watchdog.created", WatchdogID: wid, Payload: cfg})

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":      wid,
		"timeout": cfg.Timeout,
		"expire":  cfg.Expire,
	})
}

// Get reports the watchdog's derived status and live TTLs. Status is always
// recomputed from fresh reads, never cached.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	wid := chi.URLParam(r, "wid")
	ctx := r.Context()

	cfg, err := h.store.LoadConfig(ctx, wid)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "watchdog not found or expired")
		return
	}
	if err != nil {
		log.Printf("handler: %v", err)
		writeError(w, http.StatusInternalServerError, "store error")
		return
	}

	hbTTL, err := h.store.HeartbeatTTL(ctx, wid)
	if err != nil {
		log.Printf("handler: %v", err)
		writeError(w, http.StatusInternalServerError, "store error")
		return
	}
	cfgTTL, err := h.store.ConfigTTL(ctx, wid)
	if err != nil {
		log.Printf("handler: %v", err)
		writeError(w, http.StatusInternalServerError, "store error")
		return
	}

	status := model.StatusAlert
	if hbTTL > 0 {
		status = model.StatusWatching
	}

	heartbeatSec := int64(hbTTL.Seconds())
	if heartbeatSec < 0 {
		heartbeatSec = 0
	}

	writeJSON(w, http.StatusOK, model.StatusInfo{
		ID:           wid,
		Status:       status,
		Timeout:      cfg.Timeout,
		ExpireIn:     int64(cfgTTL.Seconds()),
		HeartbeatTTL: heartbeatSec,
		AlertURL:     cfg.AlertURL,
		RecoverURL:   cfg.RecoverURL,
	})
}

// Ping resets the silence window. The liveness check happens before the
// refresh; refreshing first would make every ping look alive and mask the
// alert-to-watching transition.
func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) {
	wid := chi.URLParam(r, "wid")
	ctx := r.Context()

	cfg, err := h.store.LoadConfig(ctx, wid)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "watchdog not found or expired")
		return
	}
	if err != nil {
		log.Printf("handler: %v", err)
		writeError(w, http.StatusInternalServerError, "store error")
		return
	}

	alive, err := h.store.HeartbeatExists(ctx, wid)
	if err != nil {
		log.Printf("handler: %v", err)
		writeError(w, http.StatusInternalServerError, "store error")
		return
	}

	if err := h.store.SetHeartbeat(ctx, wid, cfg.Timeout); err != nil {
		log.Printf("handler: %v", err)
		writeError(w, http.StatusInternalServerError, "store error")
		return
	}

	if !alive {
		log.Printf("[%s] recovered, calling recover_url", wid)
		h.dispatcher.Go(cfg.RecoverURL, wid+"/recover")
		h.ws.Broadcast(hub.Event{Type: "watchdog.recovered", WatchdogID: wid})
		writeJSON(w, http.StatusOK, map[string]string{"id": wid, "status": "recovered"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": wid, "status": "ok"})
}

// Delete removes a watchdog entirely. A pending expiration notification for
// its heartbeat becomes a no-op once the config is gone.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	wid := chi.URLParam(r, "wid")

	existed, err := h.store.Delete(r.Context(), wid)
	if err != nil {
		log.Printf("handler: %v", err)
		writeError(w, http.StatusInternalServerError, "store error")
		return
	}
	if !existed {
		writeError(w, http.StatusNotFound, "watchdog not found")
		return
	}

	log.Printf("[%s] deleted", wid)
	h.ws.Broadcast(hub.Event{Type: "watchdog.deleted", WatchdogID: wid})
	writeJSON(w, http.StatusOK, map[string]string{"id": wid, "status": "deleted"})
}

// Healthz reports whether the store connection is usable.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"redis":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "redis": "ok"})
}
