// Package server is the websocket front end of the game server.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/config"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/game/card"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/game/deal"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/game/session"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/server/handler"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/server/presence"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/server/storage"
)

// Server owns the connections and the session manager.
type Server struct {
	config  *config.Config
	redis   *redis.Client
	store   *storage.RedisStore
	manager *session.Manager
	handler *handler.Handler
	seats   *presence.Registry

	clients   map[string]*Client
	byPlayer  map[int]*Client
	clientsMu sync.RWMutex

	upgrader       websocket.Upgrader
	rateLimiter    *RateLimiter
	originChecker  *OriginChecker
	messageLimiter *MessageRateLimiter
	ipFilter       *IPFilter

	maxConnections int
	semaphore      chan struct{}

	httpServer *http.Server
	stop       chan struct{}
	stopOnce   sync.Once

	maintenanceMode bool
	maintenanceMu   sync.RWMutex
}

// NewServer connects to Redis, restores the stored games and wires the
// handlers.
func NewServer(cfg *config.Config, catalog *card.Catalog) (*Server, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return newServer(ctx, cfg, rdb, catalog)
}

func newServer(ctx context.Context, cfg *config.Config, rdb *redis.Client, catalog *card.Catalog) (*Server, error) {
	s := &Server{
		config:   cfg,
		redis:    rdb,
		store:    storage.NewRedisStore(rdb, cfg.Game.SessionTTLDuration()),
		clients:  make(map[string]*Client),
		byPlayer: make(map[int]*Client),
		seats:    presence.NewRegistry(cfg.Game.ReconnectTimeoutDuration()),
		rateLimiter: NewRateLimiter(
			cfg.Security.RateLimit.MaxPerSecond,
			cfg.Security.RateLimit.MaxPerMinute,
			cfg.Security.RateLimit.BanDurationTime(),
		),
		originChecker:  NewOriginChecker(cfg.Security.AllowedOrigins),
		messageLimiter: NewMessageRateLimiter(cfg.Security.MessageLimit.MaxPerSecond),
		ipFilter:       NewIPFilter(),
		maxConnections: cfg.Server.MaxConnections,
		semaphore:      make(chan struct{}, cfg.Server.MaxConnections),
		stop:           make(chan struct{}),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.originChecker.Check,
	}

	managerCfg := session.Config{
		MinPlayers:     cfg.Game.MinPlayers,
		MaxPlayers:     cfg.Game.MaxPlayers,
		WaitingTimeout: cfg.Game.WaitingTimeoutDuration(),
	}
	if cfg.Game.SubstitutionEnabled {
		managerCfg.Substitution = deal.MarkerSubstitution(cfg.Game.SubstitutionMarker)
	}
	s.manager = session.NewManager(s.store, catalog, managerCfg)

	s.handler = handler.NewHandler(handler.HandlerDeps{
		Server:  s,
		Manager: s.manager,
		Catalog: catalog,
	})
	s.manager.SetExpiryHandler(s.handler.NotifyExpired)

	if _, err := s.manager.Restore(ctx); err != nil {
		s.manager.Close()
		return nil, fmt.Errorf("restore games: %w", err)
	}
	// restored players get the usual grace period to come back
	for _, p := range s.manager.Seated() {
		s.seats.Hold(p.ID, p.Name)
	}

	log.Printf("🔒 limits: connections=%d/s, messages=%d/s, max connections=%d",
		cfg.Security.RateLimit.MaxPerSecond, cfg.Security.MessageLimit.MaxPerSecond, cfg.Server.MaxConnections)

	return s, nil
}

// Routes returns the HTTP handler of the server.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Start listens until Shutdown.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	go s.monitorStats()
	go s.watchSeats()

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("🚀 listening on ws://%s/ws (CPUs: %d)", addr, runtime.NumCPU())
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
