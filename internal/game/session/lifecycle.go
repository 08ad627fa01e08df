package session

import (
	"context"
	crand "crypto/rand"
	"log"
	"math/rand/v2"
	"time"

	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/apperrors"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/game/card"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/logger"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/server/storage"
)

// NewRand returns a generator seeded from crypto/rand. Each deal gets its own.
func NewRand() *rand.Rand {
	var seed [32]byte
	if _, err := crand.Read(seed[:]); err != nil {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewChaCha8(seed))
}

// cleanupLoop periodically drops waiting games nobody started in time.
func (m *Manager) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanup(context.Background(), time.Now())
		case <-m.stop:
			return
		}
	}
}

// cleanup drops every waiting game created before now - WaitingTimeout and
// returns how many it dropped.
func (m *Manager) cleanup(ctx context.Context, now time.Time) int {
	if m.cfg.WaitingTimeout <= 0 {
		return 0
	}

	m.mu.RLock()
	entries := make([]*entry, 0, len(m.games))
	for _, e := range m.games {
		entries = append(entries, e)
	}
	onExpire := m.onExpire
	m.mu.RUnlock()

	dropped := 0
	for _, e := range entries {
		e.mu.Lock()
		g := e.game
		if e.removed || g.Status() != StatusWaiting || now.Sub(g.CreatedAt) <= m.cfg.WaitingTimeout {
			e.mu.Unlock()
			continue
		}
		released := m.drop(ctx, e)
		e.mu.Unlock()

		dropped++
		log.Printf("🧹 game %d timed out waiting for players", g.ID)
		if onExpire != nil {
			onExpire(g, released)
		}
	}
	return dropped
}

// Restore loads every persisted game into the manager. Finished or expired
// games are removed from storage; games that fail the integrity checks are
// logged and left out. It returns the number of games restored.
func (m *Manager) Restore(ctx context.Context) (int, error) {
	if m.store == nil {
		return 0, nil
	}
	ids, err := m.store.ListGameIDs(ctx)
	if err != nil {
		return 0, err
	}

	restored := 0
	for _, id := range ids {
		g, err := m.load(ctx, id)
		if err != nil {
			logger.LogError("🚨 game %d not restored: %v", id, err)
			if apperrors.IsFatal(err) {
				if qerr := m.store.QuarantineGame(ctx, id); qerr != nil {
					log.Printf("⚠️ failed to quarantine game %d: %v", id, qerr)
				}
			}
			continue
		}
		if g == nil {
			_ = m.store.DeleteGame(ctx, id)
			continue
		}
		if g.Status() == StatusFinished {
			e := &entry{game: g}
			e.mu.Lock()
			m.drop(ctx, e)
			e.mu.Unlock()
			continue
		}

		m.mu.Lock()
		m.games[id] = &entry{game: g}
		for _, p := range g.Players() {
			// forfeited players were released when they left
			if g.Status() == StatusWaiting || p.Alive {
				m.byPlayer[p.ID] = id
			}
		}
		if id > m.lastID {
			m.lastID = id
		}
		m.mu.Unlock()
		restored++
	}

	log.Printf("♻️ restored %d games", restored)
	return restored, nil
}

func (m *Manager) load(ctx context.Context, id int) (*GameSession, error) {
	data, err := m.store.LoadGame(ctx, id)
	if err != nil || data == nil {
		return nil, err
	}
	roster := make([]*storage.PlayerData, 0, len(data.Players))
	for _, pid := range data.Players {
		p, err := m.store.LoadPlayer(ctx, id, pid)
		if err != nil {
			return nil, err
		}
		if p != nil {
			roster = append(roster, p)
		}
	}
	return FromGameData(data, roster, m.catalogOrEmpty())
}

func (m *Manager) catalogOrEmpty() *card.Catalog {
	if m.catalog != nil {
		return m.catalog
	}
	return card.MustCatalog(nil)
}
