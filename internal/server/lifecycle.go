package server

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"time"

	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/protocol"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/protocol/codec"
)

const monitorInterval = 30 * time.Second

// monitorStats logs load figures and prunes the rate limiter.
func (s *Server) monitorStats() {
	ticker := time.NewTicker(monitorInterval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			s.rateLimiter.Prune(now)

			log.Printf("📊 online: %d | games running: %d | goroutines: %d | connections: %d/%d | memory: %.2f MB",
				s.GetOnlineCount(),
				s.manager.ActiveGamesCount(),
				runtime.NumGoroutine(),
				len(s.semaphore),
				s.maxConnections,
				float64(m.Alloc)/1024/1024)
		case <-s.stop:
			return
		}
	}
}

const seatSweepInterval = 5 * time.Second

// watchSeats forfeits the seats of players who did not come back in time.
func (s *Server) watchSeats() {
	ticker := time.NewTicker(seatSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			s.forfeitExpired(now)
		case <-s.stop:
			return
		}
	}
}

func (s *Server) forfeitExpired(now time.Time) {
	for _, seat := range s.seats.Expired(now) {
		log.Printf("⌛ player %d (%s) did not reconnect", seat.PlayerID, seat.Name)
		s.handler.Forfeit(seat.PlayerID, seat.Name)
	}
}

// EnterMaintenanceMode stops new connections and new games.
func (s *Server) EnterMaintenanceMode() {
	s.maintenanceMu.Lock()
	s.maintenanceMode = true
	s.maintenanceMu.Unlock()

	s.BroadcastToLobby(codec.MustNewMessage(protocol.MsgError, protocol.ErrorPayload{
		Code:    protocol.ErrCodeServerMaintenance,
		Message: "maintenance: no new games can be created",
	}))

	log.Println("🔧 maintenance mode: new connections and games refused")
}

// IsMaintenanceMode reports whether the server is draining.
func (s *Server) IsMaintenanceMode() bool {
	s.maintenanceMu.RLock()
	defer s.maintenanceMu.RUnlock()
	return s.maintenanceMode
}

// GracefulShutdown drains running games for up to timeout, then shuts down.
func (s *Server) GracefulShutdown(timeout time.Duration) {
	s.EnterMaintenanceMode()

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(s.config.Game.ShutdownCheckIntervalDuration())
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		active := s.manager.ActiveGamesCount()
		if active == 0 {
			log.Printf("✅ no games running, shutting down in %v", s.config.Game.CleanupDelayDuration())
			s.BroadcastToLobby(codec.MustNewMessage(protocol.MsgError, protocol.ErrorPayload{
				Code:    protocol.ErrCodeServerMaintenance,
				Message: fmt.Sprintf("server shutting down in %v", s.config.Game.CleanupDelayDuration()),
			}))
			break
		}
		log.Printf("⏳ waiting for %d games to finish...", active)
		<-ticker.C
	}

	if active := s.manager.ActiveGamesCount(); active > 0 {
		log.Printf("⚠️ timed out with %d games running, they stay in redis", active)
		s.Broadcast(codec.MustNewMessage(protocol.MsgError, protocol.ErrorPayload{
			Code:    protocol.ErrCodeServerMaintenance,
			Message: "server restarting, your game is kept",
		}))
	}

	time.Sleep(s.config.Game.CleanupDelayDuration())
	s.Shutdown()
}

func (s *Server) stopping() bool {
	select {
	case <-s.stop:
		return true
	default:
		return false
	}
}

// Shutdown closes every connection and releases the server's resources.
// Stored games are left in place for the next start.
func (s *Server) Shutdown() {
	s.stopOnce.Do(func() {
		close(s.stop)

		if s.httpServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = s.httpServer.Shutdown(ctx)
			cancel()
		}

		s.clientsMu.RLock()
		for _, client := range s.clients {
			client.Close()
		}
		s.clientsMu.RUnlock()

		s.manager.Close()
		_ = s.redis.Close()

		log.Println("server stopped")
	})
}
