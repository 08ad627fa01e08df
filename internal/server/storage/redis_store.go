package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/apperrors"
)

const (
	// key prefixes
	gameKeyPrefix  = "game:"
	gameIndexKey   = "games:active"
	brokenIndexKey = "games:broken"
	gameSeqKey     = "seq:game"
	playerSeqKey   = "seq:player"
	seatKeyPrefix  = "seat:"

	defaultExpiration = 2 * time.Hour
)

// GameData is the persisted shape of a game session.
// Ordered lists keep their order; a nil list means the field was never written.
type GameData struct {
	ID               int    `json:"id"`
	Name             string `json:"name"`
	Password         string `json:"password,omitempty"`
	Status           int    `json:"status"`
	Host             int    `json:"host"`
	SecretRoleHolder *int   `json:"secretRoleHolder"`
	Winner           int    `json:"winner,omitempty"`
	Players          []int  `json:"players"`
	AssignedCards    []int  `json:"assignedCards"`
	TurnOrder        []int  `json:"turnOrder"`
	Deck             []int  `json:"deck"`
	DiscardPile      []int  `json:"discardPile"`
	MinPlayers       int    `json:"minPlayers"`
	MaxPlayers       int    `json:"maxPlayers"`
	CreatedAt        int64  `json:"createdAt"`
}

// PlayerData is the persisted shape of a roster entry.
type PlayerData struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	GameID   int    `json:"gameId"`
	Alive    bool   `json:"alive"`
	Infected bool   `json:"infected"`
	Hand     []int  `json:"hand"`
}

// SeatData ties a reconnect token to the player it was issued to.
type SeatData struct {
	PlayerID int    `json:"playerId"`
	Name     string `json:"name"`
}

// RedisStore persists sessions and roster entries in Redis.
type RedisStore struct {
	client     *redis.Client
	expiration time.Duration
}

// NewRedisStore creates a store. A non-positive expiration uses the default.
func NewRedisStore(client *redis.Client, expiration time.Duration) *RedisStore {
	if expiration <= 0 {
		expiration = defaultExpiration
	}
	return &RedisStore{client: client, expiration: expiration}
}

func gameKey(id int) string { return gameKeyPrefix + strconv.Itoa(id) }

// roster entries are scoped by game so a player's record in a finished or
// forfeited game is never overwritten by a later one.
func playerKey(gameID, playerID int) string {
	return gameKey(gameID) + ":player:" + strconv.Itoa(playerID)
}

// --- games ---

// SaveGame writes a session snapshot and indexes it.
func (rs *RedisStore) SaveGame(ctx context.Context, data *GameData) error {
	return rs.SaveSnapshot(ctx, data, nil)
}

// SaveSnapshot writes a session snapshot, indexes it and writes its roster
// entries in one transaction, so storage never holds a game and a roster
// from different moments.
func (rs *RedisStore) SaveSnapshot(ctx context.Context, data *GameData, players []*PlayerData) error {
	if data == nil {
		return nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal game %d: %w", data.ID, err)
	}

	pipe := rs.client.TxPipeline()
	pipe.Set(ctx, gameKey(data.ID), jsonData, rs.expiration)
	pipe.SAdd(ctx, gameIndexKey, data.ID)
	for _, p := range players {
		if p == nil {
			continue
		}
		jsonPlayer, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("marshal player %d: %w", p.ID, err)
		}
		pipe.Set(ctx, playerKey(p.GameID, p.ID), jsonPlayer, rs.expiration)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// LoadGame reads a session snapshot. A missing game returns (nil, nil);
// an unreadable one is a state integrity error.
func (rs *RedisStore) LoadGame(ctx context.Context, id int) (*GameData, error) {
	raw, err := rs.client.Get(ctx, gameKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var data GameData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("%w: game %d: %v", apperrors.ErrStateIntegrity, id, err)
	}
	return &data, nil
}

// DeleteGame removes a session snapshot.
func (rs *RedisStore) DeleteGame(ctx context.Context, id int) error {
	pipe := rs.client.TxPipeline()
	pipe.Del(ctx, gameKey(id))
	pipe.SRem(ctx, gameIndexKey, id)
	_, err := pipe.Exec(ctx)
	return err
}

// QuarantineGame moves a game that cannot be restored from the active index
// to the broken one. Its keys stay in place for inspection until they expire.
func (rs *RedisStore) QuarantineGame(ctx context.Context, id int) error {
	pipe := rs.client.TxPipeline()
	pipe.SRem(ctx, gameIndexKey, id)
	pipe.SAdd(ctx, brokenIndexKey, id)
	_, err := pipe.Exec(ctx)
	return err
}

// ListGameIDs returns the ids of every indexed session, ascending.
func (rs *RedisStore) ListGameIDs(ctx context.Context) ([]int, error) {
	members, err := rs.client.SMembers(ctx, gameIndexKey).Result()
	if err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(members))
	for _, m := range members {
		id, err := strconv.Atoi(m)
		if err != nil {
			return nil, fmt.Errorf("%w: game index member %q", apperrors.ErrStateIntegrity, m)
		}
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}

// NextGameID allocates a session id.
func (rs *RedisStore) NextGameID(ctx context.Context) (int, error) {
	n, err := rs.client.Incr(ctx, gameSeqKey).Result()
	return int(n), err
}

// --- players ---

// NextPlayerID allocates a player id.
func (rs *RedisStore) NextPlayerID(ctx context.Context) (int, error) {
	n, err := rs.client.Incr(ctx, playerSeqKey).Result()
	return int(n), err
}

// LoadPlayer reads a roster entry. A missing player returns (nil, nil).
func (rs *RedisStore) LoadPlayer(ctx context.Context, gameID, id int) (*PlayerData, error) {
	raw, err := rs.client.Get(ctx, playerKey(gameID, id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var data PlayerData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("%w: player %d: %v", apperrors.ErrStateIntegrity, id, err)
	}
	return &data, nil
}

// DeletePlayer removes a roster entry.
func (rs *RedisStore) DeletePlayer(ctx context.Context, gameID, id int) error {
	return rs.client.Del(ctx, playerKey(gameID, id)).Err()
}

// --- seats ---

func seatKey(token string) string { return seatKeyPrefix + token }

// SaveSeat records the player a reconnect token belongs to.
func (rs *RedisStore) SaveSeat(ctx context.Context, token string, data *SeatData) error {
	if data == nil || token == "" {
		return nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal seat of player %d: %w", data.PlayerID, err)
	}
	return rs.client.Set(ctx, seatKey(token), jsonData, rs.expiration).Err()
}

// LoadSeat reads the player behind a reconnect token. An unknown token
// returns (nil, nil).
func (rs *RedisStore) LoadSeat(ctx context.Context, token string) (*SeatData, error) {
	if token == "" {
		return nil, nil
	}
	raw, err := rs.client.Get(ctx, seatKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var data SeatData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("%w: seat: %v", apperrors.ErrStateIntegrity, err)
	}
	return &data, nil
}
