package presence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a settable time source.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestRegistry(grace time.Duration) (*Registry, *fakeClock) {
	clock := &fakeClock{t: time.Date(2023, time.October, 1, 12, 0, 0, 0, time.UTC)}
	r := NewRegistry(grace)
	r.now = clock.now
	return r, clock
}

func TestRegistry_Register(t *testing.T) {
	t.Parallel()
	r, _ := newTestRegistry(time.Minute)

	seat := r.Register(1, "Ana")
	assert.Equal(t, 1, seat.PlayerID)
	assert.Equal(t, "Ana", seat.Name)
	assert.Len(t, seat.Token, 64)
	assert.True(t, seat.Online)

	got, ok := r.Get(1)
	require.True(t, ok)
	assert.Equal(t, seat, got)

	again := r.Register(1, "Ana")
	assert.NotEqual(t, seat.Token, again.Token)
	_, ok = r.Reclaim(seat.Token)
	assert.False(t, ok, "registering again revokes the old token")
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_ReclaimWithinGrace(t *testing.T) {
	t.Parallel()
	r, clock := newTestRegistry(time.Minute)
	seat := r.Register(1, "Ana")

	r.SetOffline(1)
	got, _ := r.Get(1)
	assert.False(t, got.Online)
	assert.Equal(t, clock.t, got.DisconnectedAt)

	clock.advance(30 * time.Second)
	reclaimed, ok := r.Reclaim(seat.Token)
	require.True(t, ok)
	assert.Equal(t, 1, reclaimed.PlayerID)
	assert.True(t, reclaimed.Online)
	assert.True(t, reclaimed.DisconnectedAt.IsZero())
}

func TestRegistry_SetOnline(t *testing.T) {
	t.Parallel()
	r, clock := newTestRegistry(time.Minute)
	r.Register(1, "Ana")

	r.SetOffline(1)
	r.SetOnline(1)
	assert.Empty(t, r.Expired(clock.t.Add(time.Hour)))

	r.SetOnline(2)
	_, ok := r.Get(2)
	assert.False(t, ok, "unknown players get no seat")
}

func TestRegistry_ReclaimRejected(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		token func(r *Registry, clock *fakeClock) string
	}{
		{
			name:  "unknown token",
			token: func(*Registry, *fakeClock) string { return "nope" },
		},
		{
			name: "grace period over",
			token: func(r *Registry, clock *fakeClock) string {
				seat := r.Register(1, "Ana")
				r.SetOffline(1)
				clock.advance(2 * time.Minute)
				return seat.Token
			},
		},
		{
			name: "seat removed",
			token: func(r *Registry, _ *fakeClock) string {
				seat := r.Register(1, "Ana")
				r.Remove(1)
				return seat.Token
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r, clock := newTestRegistry(time.Minute)
			_, ok := r.Reclaim(tt.token(r, clock))
			assert.False(t, ok)
		})
	}
}

func TestRegistry_Expired(t *testing.T) {
	t.Parallel()
	r, clock := newTestRegistry(time.Minute)

	r.Register(1, "Ana")
	r.Register(2, "Bruno")
	gone := r.Register(3, "Carla")
	r.SetOffline(3)
	clock.advance(10 * time.Second)
	r.SetOffline(2)

	assert.Empty(t, r.Expired(clock.t.Add(30*time.Second)))

	expired := r.Expired(clock.t.Add(55 * time.Second))
	require.Len(t, expired, 1)
	assert.Equal(t, 3, expired[0].PlayerID)
	_, ok := r.Reclaim(gone.Token)
	assert.False(t, ok)

	expired = r.Expired(clock.t.Add(2 * time.Minute))
	require.Len(t, expired, 1)
	assert.Equal(t, 2, expired[0].PlayerID)
	assert.Equal(t, 1, r.Len(), "online seats never expire")
}

func TestRegistry_Concurrent(t *testing.T) {
	t.Parallel()
	r := NewRegistry(time.Minute)

	done := make(chan struct{})
	for i := 1; i <= 20; i++ {
		go func(id int) {
			defer func() { done <- struct{}{} }()
			seat := r.Register(id, "p")
			r.SetOffline(id)
			r.Reclaim(seat.Token)
			r.Expired(time.Now())
			if id%2 == 0 {
				r.Remove(id)
			}
		}(i)
	}
	for range 20 {
		<-done
	}
	assert.Equal(t, 10, r.Len())
}

func TestRegistry_HoldAndAdopt(t *testing.T) {
	t.Parallel()
	r, clock := newTestRegistry(time.Minute)

	r.Hold(4, "Eva")
	held, ok := r.Get(4)
	require.True(t, ok)
	assert.False(t, held.Online)
	assert.Empty(t, held.Token)

	r.Hold(4, "Someone else")
	held, _ = r.Get(4)
	assert.Equal(t, "Eva", held.Name, "holding twice keeps the first seat")

	_, ok = r.Adopt(9, "tok")
	assert.False(t, ok, "no seat to adopt")

	clock.advance(20 * time.Second)
	seat, ok := r.Adopt(4, "tok")
	require.True(t, ok)
	assert.True(t, seat.Online)
	assert.Equal(t, "tok", seat.Token)

	_, ok = r.Adopt(4, "other")
	assert.False(t, ok, "an online seat cannot be adopted")

	r.SetOffline(4)
	reclaimed, ok := r.Reclaim("tok")
	require.True(t, ok, "an adopted token reclaims like an issued one")
	assert.Equal(t, 4, reclaimed.PlayerID)
}

func TestRegistry_HeldSeatExpires(t *testing.T) {
	t.Parallel()
	r, clock := newTestRegistry(time.Minute)

	r.Hold(4, "Eva")
	clock.advance(2 * time.Minute)
	_, ok := r.Adopt(4, "tok")
	assert.False(t, ok)

	expired := r.Expired(clock.t)
	require.Len(t, expired, 1)
	assert.Equal(t, 4, expired[0].PlayerID)
	assert.Zero(t, r.Len())
}
