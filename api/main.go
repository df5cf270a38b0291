package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"watchdog/api/config"
	"watchdog/api/handler"
	"watchdog/api/hub"
	"watchdog/api/listener"
	"watchdog/api/notify"
	"watchdog/api/store"
)

var Version = "dev"

func main() {
	cfg := config.Load()

	db, err := store.Connect(cfg.RedisURL, cfg.MaxExpire)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer db.Close()

	// Ask redis to publish expiration events. Managed instances often
	// forbid CONFIG, so a failure only warns; the operator may have set
	// notify-keyspace-events out of band.
	if err := db.EnableExpiryNotifications(context.Background()); err != nil {
		log.Printf("WARNING: could not enable keyspace notifications (%v); ensure notify-keyspace-events includes Ex", err)
	}

	allowedOrigins := []string{"http://localhost:5173", "http://localhost:3000"}
	if cfg.AllowedOrigins != "" {
		for _, o := range strings.Split(cfg.AllowedOrigins, ",") {
			o = strings.TrimSpace(o)
			if o != "" {
				allowedOrigins = append(allowedOrigins, o)
			}
		}
	}

	ws := hub.New(allowedOrigins)
	go ws.Run()

	dispatcher := notify.New(time.Duration(cfg.WebhookTimeout) * time.Second)

	lst := &listener.Listener{
		Store:      db,
		Dispatcher: dispatcher,
		Hub:        ws,
		Channel:    cfg.ExpiredChannel,
	}

	listenerCtx, listenerCancel := context.WithCancel(context.Background())
	defer listenerCancel()
	go func() {
		// Losing the expiration feed silently would be worse than a
		// visible crash; a subscription failure takes the process down.
		if err := lst.Run(listenerCtx); err != nil {
			log.Fatalf("listener: %v", err)
		}
	}()

	h := handler.New(db, dispatcher, ws, cfg)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	h.Routes(r)
	r.Get("/ws", ws.HandleConnect)

	// Serve UI static files in production
	if cfg.UIDir != "" {
		fileServer(r, cfg.UIDir)
	}

	srv := &http.Server{
		Addr:    cfg.BindAddr + ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("watchdog %s listening on %s:%s", Version, cfg.BindAddr, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")
	listenerCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	srv.Shutdown(ctx)
}

func fileServer(r chi.Router, dir string) {
	fs := http.FileServer(http.Dir(dir))
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		if _, err := os.Stat(dir + r.URL.Path); os.IsNotExist(err) {
			http.ServeFile(w, r, dir+"/index.html")
			return
		}
		fs.ServeHTTP(w, r)
	})
}
