// Command barikade starts the Barricade session server.
//
// The server hosts multiplayer rooms over a websocket protocol, with a
// small read-only REST surface next to it. Flags control host/port, the
// board directory, the event log, debug logging, and optional ngrok
// tunneling for easy external access during development.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"barikade/api"
	"barikade/game/config"
	"barikade/game/eventlog"
	"barikade/game/room"
	"barikade/game/service"
	"barikade/game/session"
	"barikade/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Barricade Server"
)

// Configuration flags control how the server starts and which services are enabled.
var (
	port         = flag.Int("port", 8080, "HTTP server port")
	host         = flag.String("host", "localhost", "HTTP server host")
	boardsDir    = flag.String("boards-dir", envDefault("BOARDS_DIR", "boards"), "Directory containing board definitions")
	staticDir    = flag.String("static-dir", envDefault("STATIC_DIR", "static"), "Directory served at /, empty to disable")
	eventLogPath = flag.String("event-log", envDefault("EVENT_LOG", "events/events.jsonl"), "Room event log file, empty to disable")
	debug        = flag.Bool("debug", false, "Enable debug logging")
	version      = flag.Bool("version", false, "Show version information")
	ngrokEnabled = flag.Bool("ngrok", false, "Enable ngrok tunnel")
	ngrokAuth    = flag.String("ngrok-auth", "", "Ngrok auth token (or use NGROK_AUTHTOKEN env var)")
	ngrokDomain  = flag.String("ngrok-domain", "", "Custom ngrok domain (optional)")
)

// Housekeeping cadence and retention windows.
const (
	sessionSweepEvery = 10 * time.Minute
	sessionMaxIdle    = 24 * time.Hour
	roomSweepEvery    = 10 * time.Minute
	roomMaxIdle       = 2 * time.Hour
)

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	// Load .env if present; its absence is not an error.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
	}

	flag.Parse()

	if *version {
		fmt.Printf("%s v%s\n", AppName, Version)
		os.Exit(0)
	}

	log := newLogger(*debug)
	log.Info().Str("version", Version).Msg("starting " + AppName)

	srv, cleanup, err := buildServer(log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize services")
	}
	defer cleanup()

	runHTTPServer(srv, log)
}

func newLogger(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// buildServer wires the board catalog, room registry, session manager,
// event log, game service, websocket hub, and HTTP surface together. The
// returned cleanup flushes the event log.
func buildServer(log zerolog.Logger) (http.Handler, func(), error) {
	boards, err := config.NewManager(*boardsDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create board manager: %w", err)
	}

	rooms := room.NewRegistry(boards)
	sessions := session.NewManager()

	cleanup := func() {}
	var events service.EventSink
	if *eventLogPath != "" {
		l, err := eventlog.NewLogger(*eventLogPath, log.With().Str("component", "eventlog").Logger())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open event log: %w", err)
		}
		events = l
		cleanup = func() {
			if err := l.Close(); err != nil {
				log.Error().Err(err).Msg("event log close failed")
			}
		}
	}

	// The hub and the service each hold the other, so the dispatcher is
	// bound after construction.
	hub := websocket.NewHub(nil, log.With().Str("component", "hub").Logger())
	svc := service.NewService(sessions, rooms, boards, hub, events, log.With().Str("component", "service").Logger())
	hub.SetDispatcher(svc)
	go hub.Run()

	go sessionSweepRoutine(sessions, log)
	go roomSweepRoutine(rooms, log)

	return api.NewServer(svc, hub, *staticDir, log.With().Str("component", "api").Logger()), cleanup, nil
}

// runHTTPServer serves until SIGINT/SIGTERM, optionally through an ngrok
// tunnel as well.
func runHTTPServer(handler http.Handler, log zerolog.Logger) {
	addr := fmt.Sprintf("%s:%d", *host, *port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Info().Str("addr", addr).Msg("HTTP server listening")
		log.Info().Msgf("REST API: http://%s/api", addr)
		log.Info().Msgf("WebSocket: ws://%s/ws", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	if ngrokShouldRun() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, handler, log)
		}()
	}

	sig := <-stop
	log.Info().Str("signal", sig.String()).Msg("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	wg.Wait()
	log.Info().Msg("server stopped")
}

func ngrokShouldRun() bool {
	if *ngrokEnabled {
		return true
	}
	env := os.Getenv("NGROK_ENABLED")
	return env == "true" || env == "1"
}

func runNgrokTunnel(ctx context.Context, handler http.Handler, log zerolog.Logger) {
	authToken := *ngrokAuth
	if authToken == "" {
		authToken = os.Getenv("NGROK_AUTHTOKEN")
	}
	if authToken == "" {
		log.Warn().Msg("ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return
	}

	domain := *ngrokDomain
	if domain == "" {
		domain = os.Getenv("NGROK_DOMAIN")
	}

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.Info().Str("domain", domain).Msg("using custom ngrok domain")
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Error().Err(err).Msg("failed to start ngrok tunnel")
		return
	}
	defer func() {
		if err := tun.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close ngrok tunnel")
		}
	}()

	log.Info().Str("url", tun.URL()).Msg("ngrok tunnel established")

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("ngrok server error")
	}
	log.Info().Msg("ngrok tunnel closed")
}

// sessionSweepRoutine periodically retires sessions idle past the
// retention window.
func sessionSweepRoutine(sessions *session.Manager, log zerolog.Logger) {
	ticker := time.NewTicker(sessionSweepEvery)
	defer ticker.Stop()

	for range ticker.C {
		if removed := sessions.CleanupExpired(sessionMaxIdle); removed > 0 {
			log.Info().Int("removed", removed).Msg("cleaned up expired sessions")
		}
	}
}

// roomSweepRoutine periodically drops rooms with no activity. Claim
// expiry inside surviving rooms runs as part of the same sweep.
func roomSweepRoutine(rooms *room.Registry, log zerolog.Logger) {
	ticker := time.NewTicker(roomSweepEvery)
	defer ticker.Stop()

	for range ticker.C {
		if removed := rooms.CleanupIdle(roomMaxIdle); removed > 0 {
			log.Info().Int("removed", removed).Msg("cleaned up idle rooms")
		}
	}
}
