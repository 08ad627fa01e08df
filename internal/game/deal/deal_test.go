package deal

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/apperrors"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/game/card"
)

const (
	roleID      card.ID = 1
	infectionID card.ID = 100 // 100..
	fillerID    card.ID = 200 // 200..
	ordinaryID  card.ID = 300 // 300..
)

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// testCatalog builds a role card, infections infection cards, fillers
// stay-away cards and ordinaries ordinary cards, all unconditional.
func testCatalog(infections, fillers, ordinaries int) []card.Card {
	cards := []card.Card{{ID: roleID, Name: "The Thing", Type: card.TypeRoleReveal}}
	for i := range infections {
		cards = append(cards, card.Card{ID: infectionID + card.ID(i), Type: card.TypeInfection})
	}
	for i := range fillers {
		cards = append(cards, card.Card{ID: fillerID + card.ID(i), Type: card.TypeStayAway})
	}
	for i := range ordinaries {
		cards = append(cards, card.Card{ID: ordinaryID + card.ID(i), Type: card.TypeOrdinary})
	}
	return cards
}

func roster(n int) []int {
	players := make([]int, n)
	for i := range players {
		players[i] = i + 1
	}
	return players
}

// assertDealInvariants checks card uniqueness, hand sizes and the single role holder.
func assertDealInvariants(t *testing.T, assigned []card.Card, players []int, res *Result) {
	t.Helper()

	byID := make(map[card.ID]card.Card, len(assigned))
	for _, c := range assigned {
		byID[c.ID] = c
	}

	seen := make(map[card.ID]string)
	holders := 0
	dealt := 0
	for _, p := range players {
		hand, ok := res.Hands[p]
		require.True(t, ok, "player %d has no hand", p)
		require.Len(t, hand, CardsPerPlayer)
		for _, id := range hand {
			_, known := byID[id]
			require.True(t, known, "card %d not assigned", id)
			require.NotContains(t, seen, id, "card %d dealt twice", id)
			seen[id] = "hand"
			if byID[id].Type == card.TypeRoleReveal {
				holders++
				assert.Equal(t, p, res.RoleHolder)
			}
			dealt++
		}
	}
	for _, id := range res.Deck {
		_, known := byID[id]
		require.True(t, known, "card %d not assigned", id)
		require.NotContains(t, seen, id, "card %d in hand and deck", id)
		seen[id] = "deck"
		assert.NotEqual(t, card.TypeRoleReveal, byID[id].Type)
		assert.NotEqual(t, card.TypeOrdinary, byID[id].Type)
	}
	assert.Equal(t, CardsPerPlayer*len(players), dealt)
	assert.Equal(t, 1, holders, "exactly one role card must be dealt")
	assert.Len(t, res.Hands, len(players))
}

func TestUnlockCards(t *testing.T) {
	t.Parallel()

	catalog := []card.Card{
		{ID: 1, Type: card.TypeRoleReveal},
		{ID: 2, Type: card.TypeStayAway, Threshold: card.Threshold(4)},
		{ID: 3, Type: card.TypeStayAway, Threshold: card.Threshold(5)},
		{ID: 4, Type: card.TypeInfection, Threshold: card.Threshold(9)},
		{ID: 5, Type: card.TypeOrdinary, Threshold: card.Threshold(0)},
	}

	got := UnlockCards(catalog, 5)
	assert.Equal(t, []card.ID{1, 2, 3, 5}, card.IDs(got))

	got = UnlockCards(catalog, 4)
	assert.Equal(t, []card.ID{1, 2, 5}, card.IDs(got))

	// deterministic
	assert.Equal(t, UnlockCards(catalog, 9), UnlockCards(catalog, 9))
	assert.Len(t, UnlockCards(catalog, 9), 5)
}

func TestInitialDeal_FourPlayerScenario(t *testing.T) {
	t.Parallel()

	assigned := testCatalog(3, 20, 0)
	players := []int{'A', 'B', 'C', 'D'}

	res, err := InitialDeal(assigned, players, newRand(42))
	require.NoError(t, err)
	assertDealInvariants(t, assigned, players, res)

	// 20 fillers - 15 dealt = 5 leftovers, plus 3 infections
	assert.Len(t, res.Deck, 8)
	assert.GreaterOrEqual(t, len(res.Deck), 3)
	for i := range 3 {
		assert.Contains(t, res.Deck, infectionID+card.ID(i))
	}
	assert.Contains(t, players, res.RoleHolder)
}

func TestInitialDeal_AllPlayerCounts(t *testing.T) {
	t.Parallel()

	for n := 4; n <= 12; n++ {
		assigned := testCatalog(n, 4*n+3, 2)
		players := roster(n)
		for seed := range uint64(20) {
			res, err := InitialDeal(assigned, players, newRand(seed))
			require.NoError(t, err, "n=%d seed=%d", n, seed)
			assertDealInvariants(t, assigned, players, res)
			// every dealable and infection card is accounted for
			assert.Equal(t, 4*n+3+n+1, len(res.Deck)+CardsPerPlayer*n)
		}
	}
}

func TestInitialDeal_ExactCardCount(t *testing.T) {
	t.Parallel()

	assigned := testCatalog(2, 4*5-1, 0)
	res, err := InitialDeal(assigned, roster(5), newRand(3))
	require.NoError(t, err)
	assertDealInvariants(t, assigned, roster(5), res)
	assert.ElementsMatch(t, []card.ID{infectionID, infectionID + 1}, res.Deck)
}

func TestInitialDeal_PoolIsFirstFillersInCatalogOrder(t *testing.T) {
	t.Parallel()

	assigned := testCatalog(0, 10, 0)
	res, err := InitialDeal(assigned, roster(2), newRand(9))
	require.NoError(t, err)

	// 2 players -> 7 fillers + role dealt; fillers 7, 8, 9 are left
	assert.ElementsMatch(t, []card.ID{fillerID + 7, fillerID + 8, fillerID + 9}, res.Deck)
}

func TestInitialDeal_OrdinaryCardsStayOut(t *testing.T) {
	t.Parallel()

	assigned := testCatalog(1, 20, 5)
	res, err := InitialDeal(assigned, roster(4), newRand(11))
	require.NoError(t, err)

	for _, hand := range res.Hands {
		for _, id := range hand {
			assert.Less(t, id, ordinaryID)
		}
	}
	for _, id := range res.Deck {
		assert.Less(t, id, ordinaryID)
	}
}

func TestInitialDeal_SameSeedSameDeal(t *testing.T) {
	t.Parallel()

	assigned := testCatalog(3, 30, 0)
	a, err := InitialDeal(assigned, roster(6), newRand(5))
	require.NoError(t, err)
	b, err := InitialDeal(assigned, roster(6), newRand(5))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestInitialDeal_RoleCardIsDistributed(t *testing.T) {
	t.Parallel()

	counts := make(map[int]int)
	for seed := range uint64(200) {
		res, err := InitialDeal(testCatalog(0, 15, 0), roster(4), newRand(seed))
		require.NoError(t, err)
		counts[res.RoleHolder]++
	}
	// every seat should receive the role card at least once over 200 deals
	assert.Len(t, counts, 4)
}

func TestInitialDeal_MissingRoleCard(t *testing.T) {
	t.Parallel()

	noRole := testCatalog(2, 20, 0)[1:]
	_, err := InitialDeal(noRole, roster(4), newRand(1))
	assert.ErrorIs(t, err, apperrors.ErrMissingRoleCard)

	twoRoles := append(testCatalog(2, 20, 0), card.Card{ID: 999, Type: card.TypeRoleReveal})
	_, err = InitialDeal(twoRoles, roster(4), newRand(1))
	assert.ErrorIs(t, err, apperrors.ErrMissingRoleCard)
}

func TestInitialDeal_InsufficientCards(t *testing.T) {
	t.Parallel()

	// 4 players need 15 dealable cards; infections and ordinaries do not count
	assigned := testCatalog(10, 14, 10)
	_, err := InitialDeal(assigned, roster(4), newRand(1))
	assert.ErrorIs(t, err, apperrors.ErrInsufficientCards)
}

func TestInitialDeal_InvalidRoster(t *testing.T) {
	t.Parallel()

	_, err := InitialDeal(testCatalog(1, 20, 0), nil, newRand(1))
	assert.ErrorIs(t, err, apperrors.ErrInvalidRoster)

	_, err = InitialDeal(testCatalog(1, 20, 0), []int{1, 1, 2}, newRand(1))
	assert.ErrorIs(t, err, apperrors.ErrInvalidRoster)
}

func TestRandomDeal_RoleCardInHolderFirstSlot(t *testing.T) {
	t.Parallel()

	assigned := testCatalog(3, 25, 1)
	players := roster(5)
	for seed := range uint64(30) {
		res, err := RandomDeal(assigned, players, newRand(seed), nil)
		require.NoError(t, err)
		assertDealInvariants(t, assigned, players, res)
		assert.Equal(t, roleID, res.Hands[res.RoleHolder][0])
		assert.Len(t, res.Deck, 3+25-(4*5-1))
	}
}

func TestRandomDeal_Substitution(t *testing.T) {
	t.Parallel()

	const marker card.ID = 500
	assigned := append(testCatalog(2, 20, 0), card.Card{
		ID:        marker,
		Name:      "Flamethrower",
		Type:      card.TypeInfection,
		Threshold: card.Threshold(4),
	})
	players := roster(4)

	for seed := range uint64(20) {
		res, err := RandomDeal(assigned, players, newRand(seed), MarkerSubstitution("Flamethrower"))
		require.NoError(t, err)
		assertDealInvariants(t, assigned, players, res)
		holder := res.Hands[res.RoleHolder]
		assert.Equal(t, roleID, holder[0])
		assert.Equal(t, marker, holder[1])
		assert.NotContains(t, res.Deck, marker)
	}
}

func TestRandomDeal_SubstitutionSkipped(t *testing.T) {
	t.Parallel()

	assigned := append(testCatalog(2, 20, 0), card.Card{
		ID:        500,
		Name:      "Flamethrower",
		Type:      card.TypeInfection,
		Threshold: card.Threshold(6),
	})
	players := roster(4)

	tests := []struct {
		name string
		hook SubstitutionHook
	}{
		{"threshold does not match", MarkerSubstitution("Flamethrower")},
		{"unknown marker", MarkerSubstitution("Axe")},
		{"card not in deck", func([]card.Card, int) (card.ID, bool) { return 12345, true }},
		{"panicking hook", func([]card.Card, int) (card.ID, bool) { panic("lookup failed") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			// UnlockCards drops the threshold-6 marker for 4 players
			unlocked := UnlockCards(assigned, 4)
			res, err := RandomDeal(unlocked, players, newRand(8), tt.hook)
			require.NoError(t, err)
			assertDealInvariants(t, unlocked, players, res)

			plain, err := RandomDeal(unlocked, players, newRand(8), nil)
			require.NoError(t, err)
			assert.Equal(t, plain, res)
		})
	}
}

func TestRandomDeal_Errors(t *testing.T) {
	t.Parallel()

	_, err := RandomDeal(testCatalog(1, 20, 0)[1:], roster(4), newRand(1), nil)
	assert.ErrorIs(t, err, apperrors.ErrMissingRoleCard)

	_, err = RandomDeal(testCatalog(1, 10, 0), roster(4), newRand(1), nil)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientCards)

	_, err = RandomDeal(testCatalog(1, 10, 0), nil, newRand(1), nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRoster)
}

func TestMarkerSubstitution(t *testing.T) {
	t.Parallel()

	assigned := []card.Card{
		{ID: 1, Name: "Flamethrower", Threshold: card.Threshold(4)},
		{ID: 2, Name: "Flamethrower", Threshold: card.Threshold(6)},
		{ID: 3, Name: "Axe", Threshold: card.Threshold(6)},
	}
	hook := MarkerSubstitution("Flamethrower")

	id, ok := hook(assigned, 6)
	assert.True(t, ok)
	assert.Equal(t, card.ID(2), id)

	_, ok = hook(assigned, 5)
	assert.False(t, ok)
}
