// Command boxpusher starts the Box Pusher puzzle server.
//
// It supports three commands:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "validate" – lints level pack files and directories
//
// Flags control the listen address, packs directory, logging, and optional
// ngrok tunneling for easy external access during development. Every flag
// can also come from a config file or BOXPUSHER_* environment variables.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/boxpusher/api"
	"github.com/wricardo/boxpusher/game/config"
	"github.com/wricardo/boxpusher/game/service"
	"github.com/wricardo/boxpusher/game/session"
	"github.com/wricardo/boxpusher/logger"
	"github.com/wricardo/boxpusher/transport/mcp"
	"github.com/wricardo/boxpusher/transport/websocket"
	"github.com/wricardo/boxpusher/validate"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Box Pusher Server"
)

var log = logger.Component("main")

// services bundles everything the transports need
type services struct {
	settings *config.Settings
	game     service.GameService
	sessions *session.Manager
	packs    *config.Manager
}

// main loads the environment and runs the selected command.
func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "boxpusher",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Config file (yaml, json or toml)",
			},
			&cli.StringFlag{
				Name:  "addr",
				Usage: "HTTP listen address (default localhost:8080)",
			},
			&cli.StringFlag{
				Name:  "packs-dir",
				Usage: "Directory containing level packs (default packs)",
			},
			&cli.StringFlag{
				Name:  "default-pack",
				Usage: "Pack used when a session names none",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn, error",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Log format: text or json",
			},
		},
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "ngrok",
						Usage: "Enable ngrok tunnel",
					},
					&cli.StringFlag{
						Name:    "ngrok-domain",
						Usage:   "Custom ngrok domain (optional)",
						Sources: cli.EnvVars("NGROK_DOMAIN"),
					},
				},
				Action: serverAction,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run MCP stdio server, reusing an external API or starting an internal one",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "api-url",
						Usage: "External API probed before starting an internal one",
					},
				},
				Action: mcpAction,
			},
			{
				Name:      "validate",
				Usage:     "Validate level pack files",
				ArgsUsage: "[files or directories...]",
				Action:    validateAction,
			},
		},
		Action: serverAction,
	}
}

// loadSettings merges config file, environment, and explicit flags
func loadSettings(cmd *cli.Command) (*config.Settings, error) {
	s, err := config.LoadSettings(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	override := func(flag string, dst *string) {
		if cmd.IsSet(flag) {
			*dst = cmd.String(flag)
		}
	}
	override("addr", &s.Addr)
	override("packs-dir", &s.PacksDir)
	override("default-pack", &s.DefaultPack)
	override("log-level", &s.LogLevel)
	override("log-format", &s.LogFormat)
	override("ngrok-domain", &s.NgrokDomain)
	override("api-url", &s.APIURL)
	if cmd.IsSet("ngrok") {
		s.NgrokEnabled = cmd.Bool("ngrok")
	}

	logger.Init(s.LogLevel, s.LogFormat)
	return s, nil
}

func serverAction(ctx context.Context, cmd *cli.Command) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	log.Infof("Starting %s v%s (mode: server)", AppName, Version)

	svc, err := initializeServices(ctx, s)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	return runHTTPServer(ctx, svc)
}

func mcpAction(ctx context.Context, cmd *cli.Command) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	log.Infof("Starting %s v%s (mode: mcp)", AppName, Version)
	return runStdioMCPWithInternalServer(ctx, s)
}

func validateAction(ctx context.Context, cmd *cli.Command) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		paths = []string{s.PacksDir}
	}
	results, err := validate.Files(paths)
	if err != nil {
		return err
	}
	if !validate.Report(os.Stdout, results) {
		return cli.Exit("", 1)
	}
	return nil
}

// initializeServices wires the pack and session managers and the game
// service. It also starts background routines that live until ctx ends:
// expired session cleanup and pack directory watching.
func initializeServices(ctx context.Context, s *config.Settings) (*services, error) {
	packs, err := config.NewManager(s.PacksDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create pack manager: %w", err)
	}
	if s.DefaultPack != "" {
		if err := packs.SetDefault(s.DefaultPack); err != nil {
			return nil, fmt.Errorf("failed to set default pack: %w", err)
		}
	}

	profile, err := packs.LoadProfile()
	if err != nil {
		return nil, fmt.Errorf("failed to load animation profile: %w", err)
	}

	sessions := session.NewManager(session.WithProfile(profile))
	svc := &services{
		settings: s,
		game:     service.NewGameService(sessions, packs),
		sessions: sessions,
		packs:    packs,
	}

	go sessionCleanupRoutine(ctx, svc.game, s.SessionTTL)

	changes, err := packs.Watch(ctx)
	if err != nil {
		log.WithError(err).Warn("pack watcher disabled")
	} else {
		go watchRoutine(changes, packs, sessions)
	}

	return svc, nil
}

// sessionCleanupRoutine periodically removes sessions that have not been accessed
// within the provided retention window. Expiry goes through the game service
// so it never overlaps a clock tick.
func sessionCleanupRoutine(ctx context.Context, game service.GameService, ttl time.Duration) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			game.CleanupExpired(ctx, ttl)
		}
	}
}

// watchRoutine logs pack changes and applies animation profile edits to
// sessions created afterwards.
func watchRoutine(changes <-chan string, packs *config.Manager, sessions *session.Manager) {
	for name := range changes {
		if name != config.ProfileFile {
			log.WithField("pack", name).Info("pack changed on disk")
			continue
		}
		profile, err := packs.LoadProfile()
		if err != nil {
			log.WithError(err).Warn("keeping previous animation profile")
			continue
		}
		sessions.SetProfile(profile)
		log.Info("animation profile reloaded")
	}
}

// newRouter mounts the API and the /mcp endpoint
func newRouter(apiServer http.Handler, mcpClient *mcp.Client) *http.ServeMux {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", mcpHandler(mcpClient))
	return mainRouter
}

// mcpHandler passes JSON-RPC request bodies to the MCP server
func mcpHandler(mcpClient *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// startLive runs the hub and the animation clock until ctx ends. The API
// server must be created first so the hub has its command handler.
func startLive(ctx context.Context, svc *services, hub *websocket.Hub) {
	go hub.Run(ctx)
	clock := service.NewClock(svc.game, svc.settings.TickInterval(), hub)
	go clock.Run(ctx)
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled, it also provisions a public tunnel.
func runHTTPServer(ctx context.Context, svc *services) error {
	s := svc.settings

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	hub := websocket.NewHub()
	apiServer := api.NewServer(svc.game, hub)
	startLive(ctx, svc, hub)

	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", s.Addr))
	mainRouter := newRouter(apiServer, mcpClient)

	httpServer := &http.Server{
		Addr:         s.Addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	// Start regular HTTP server
	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Infof("HTTP server listening on %s", s.Addr)
		log.Infof("REST API: http://%s/api", s.Addr)
		log.Infof("WebSocket: ws://%s/ws?session=<session_id>", s.Addr)
		log.Infof("MCP endpoint: http://%s/mcp", s.Addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	if s.NgrokEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, s, mainRouter)
		}()
	}

	var err error
	select {
	case <-ctx.Done():
		log.Info("Shutting down...")
	case err = <-serveErr:
		log.WithError(err).Error("HTTP server failed")
	}
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		log.WithError(shutdownErr).Warn("HTTP server shutdown error")
	}

	wg.Wait()
	log.Info("Server stopped")
	return err
}

// runNgrok serves the router through an ngrok tunnel until ctx ends
func runNgrok(ctx context.Context, s *config.Settings, router http.Handler) {
	if s.NgrokAuthToken == "" {
		log.Warn("Ngrok enabled but no auth token provided (use BOXPUSHER_NGROK_AUTHTOKEN or NGROK_AUTHTOKEN)")
		return
	}

	log.Info("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if s.NgrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(s.NgrokDomain))
		log.Infof("Using custom ngrok domain: %s", s.NgrokDomain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(s.NgrokAuthToken))
	if err != nil {
		log.WithError(err).Error("Failed to start ngrok tunnel")
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.WithError(err).Warn("Failed to close ngrok tunnel")
		}
	}()

	ngrokURL := tun.URL()
	log.WithFields(logrus.Fields{
		"api":       ngrokURL + "/api",
		"websocket": ngrokURL + "/ws?session=<session_id>",
		"mcp":       ngrokURL + "/mcp",
	}).Infof("🚀 Ngrok tunnel established: %s", ngrokURL)

	if err := http.Serve(tun, router); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.WithError(err).Warn("Ngrok server error")
	}
	log.Info("Ngrok tunnel closed")
}

// probeAPI reports whether a boxpusher API answers at baseURL
func probeAPI(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/api")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 500
}

// startInternalServer serves the API on a random loopback port and returns
// its base URL. The server stops when ctx ends.
func startInternalServer(ctx context.Context, svc *services) (string, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("failed to get available port: %w", err)
	}

	hub := websocket.NewHub()
	apiServer := api.NewServer(svc.game, hub)
	startLive(ctx, svc, hub)

	httpServer := &http.Server{Handler: apiServer}
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("Internal HTTP server error")
		}
	}()
	go func() {
		<-ctx.Done()
		httpServer.Close()
	}()

	addr := listener.Addr().String()
	log.Infof("Internal HTTP server on %s for MCP stdio", addr)
	return "http://" + addr, nil
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It tries to reuse an external API first; if unavailable, it starts a
// minimal internal HTTP API bound to a random loopback port and targets that.
func runStdioMCPWithInternalServer(ctx context.Context, s *config.Settings) error {
	baseURL := s.APIURL
	log.Infof("Checking for external API server at %s...", baseURL)

	if probeAPI(baseURL) {
		log.Infof("External API server found at %s, using it for MCP", baseURL)
	} else {
		log.Info("No external API server found, starting internal HTTP server")

		svc, err := initializeServices(ctx, s)
		if err != nil {
			return fmt.Errorf("failed to initialize services: %w", err)
		}
		if baseURL, err = startInternalServer(ctx, svc); err != nil {
			return err
		}
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Info("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
