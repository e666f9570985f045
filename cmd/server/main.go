package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/gorilla/mux"

	"github.com/alberti/alberti/backend-go/internal/auth"
	"github.com/alberti/alberti/backend-go/internal/config"
	"github.com/alberti/alberti/backend-go/internal/drawing"
	"github.com/alberti/alberti/backend-go/internal/layers"
	mw "github.com/alberti/alberti/backend-go/internal/middleware"
	"github.com/alberti/alberti/backend-go/internal/session"
	"github.com/alberti/alberti/backend-go/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()})))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := store.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := store.Migrate(ctx, pool); err != nil {
		slog.Error("migrate database", "error", err)
		os.Exit(1)
	}

	db := store.NewStore(pool)

	authService := auth.NewService(db, cfg.JWTSecret)
	authHandler := auth.NewHandler(authService)

	drawingService := drawing.NewService(db)
	drawingHandler := drawing.NewHandler(drawingService)

	hub := session.NewHub(drawingService, cfg.AutosaveInterval,
		layers.WithHistorySize(cfg.MaxUndos),
		layers.WithSnapRadius(cfg.SnapRadius),
		layers.WithMinZoom(cfg.MinZoomFactor),
	)
	go hub.Run(ctx)

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.Origins()))

	// Auth routes (public)
	r.HandleFunc("/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Protected API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.Authenticate)

	api.HandleFunc("/me", authHandler.Me).Methods("GET")
	api.HandleFunc("/drawings", drawingHandler.List).Methods("GET")
	api.HandleFunc("/drawings", drawingHandler.Create).Methods("POST")
	api.HandleFunc("/geometry/intersect", drawing.Intersect).Methods("POST")
	api.HandleFunc("/geometry/tangents", drawing.Tangents).Methods("POST")

	// Routes under a drawing ID are limited to its owner
	owned := api.PathPrefix("/drawings/{drawingId}").Subrouter()
	owned.Use(auth.RequireAccess(drawingService, "drawingId"))
	owned.HandleFunc("", drawingHandler.Get).Methods("GET")
	owned.HandleFunc("", drawingHandler.Delete).Methods("DELETE")
	owned.HandleFunc("/snapshots/latest", drawingHandler.GetLatestSnapshot).Methods("GET")

	// WebSocket endpoint
	ws := r.PathPrefix("/ws/drawing/{drawingId}").Subrouter()
	ws.Use(authService.Authenticate, auth.RequireAccess(drawingService, "drawingId"))
	ws.HandleFunc("", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, hub, cfg.Origins())
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Stop the hub first so open drawings are saved
		slog.Info("saving open drawings")
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

// handleWebSocket runs behind Authenticate and RequireAccess, so the caller
// owns the drawing.
func handleWebSocket(w http.ResponseWriter, r *http.Request, hub *session.Hub, origins []string) {
	drawingID := mux.Vars(r)["drawingId"]
	userID := auth.UserIDFromContext(r.Context())

	s, err := hub.Open(r.Context(), drawingID)
	if err != nil {
		if errors.Is(err, session.ErrSessionBusy) {
			http.Error(w, "drawing is open elsewhere", http.StatusConflict)
			return
		}
		slog.Error("open session", "drawing", drawingID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: originPatterns(origins),
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		hub.Leave(s)
		return
	}

	client := session.NewClient(hub, s, conn, userID)

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}

// originPatterns strips the scheme from allowed origins, the form
// websocket.AcceptOptions matches against.
func originPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimPrefix(o, "https://")
		o = strings.TrimPrefix(o, "http://")
		patterns = append(patterns, o)
	}
	return patterns
}
