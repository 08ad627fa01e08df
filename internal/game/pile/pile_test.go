package pile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/apperrors"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/game/card"
)

func TestPile_PeekDraw(t *testing.T) {
	t.Parallel()

	p := New(4, 5, 6)

	id, err := p.Peek()
	require.NoError(t, err)
	assert.Equal(t, card.ID(4), id)
	assert.Equal(t, 3, p.Len(), "peek must not remove")

	id, err = p.Draw()
	require.NoError(t, err)
	assert.Equal(t, card.ID(4), id)
	assert.Equal(t, []card.ID{5, 6}, p.IDs())
}

func TestPile_Empty(t *testing.T) {
	t.Parallel()

	p := New()
	_, err := p.Peek()
	assert.ErrorIs(t, err, apperrors.ErrEmptyDeck)
	_, err = p.Draw()
	assert.ErrorIs(t, err, apperrors.ErrEmptyDeck)

	_, ok := p.Top()
	assert.False(t, ok)
	assert.NotNil(t, p.IDs())
	assert.Empty(t, p.IDs())
}

func TestPile_PushAppendsToBack(t *testing.T) {
	t.Parallel()

	p := New()
	p.Push(1)
	p.Push(2)
	p.Push(3)
	assert.Equal(t, []card.ID{1, 2, 3}, p.IDs())

	top, ok := p.Top()
	assert.True(t, ok)
	assert.Equal(t, card.ID(3), top)
	assert.True(t, p.Contains(2))
	assert.False(t, p.Contains(9))

	p.Clear()
	assert.Equal(t, 0, p.Len())
}

func TestPile_DoesNotAliasInput(t *testing.T) {
	t.Parallel()

	src := []card.ID{1, 2}
	p := New(src...)
	src[0] = 99

	out := p.IDs()
	out[1] = 77

	assert.Equal(t, []card.ID{1, 2}, p.IDs())
}

func TestPile_DrawUntilEmpty(t *testing.T) {
	t.Parallel()

	p := New(1, 2, 3)
	var drawn []card.ID
	for p.Len() > 0 {
		id, err := p.Draw()
		require.NoError(t, err)
		drawn = append(drawn, id)
	}
	assert.Equal(t, []card.ID{1, 2, 3}, drawn)

	p.Push(8)
	id, err := p.Draw()
	require.NoError(t, err)
	assert.Equal(t, card.ID(8), id)
}
