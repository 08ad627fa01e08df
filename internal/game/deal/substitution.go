package deal

import (
	"log"

	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/game/card"
)

// SubstitutionHook picks a card the role holder should get in place of their
// first random card. Returning false skips the swap.
type SubstitutionHook func(assigned []card.Card, playerCount int) (card.ID, bool)

// MarkerSubstitution returns a hook that selects the unlocked card named
// marker whose threshold equals the player count.
func MarkerSubstitution(marker string) SubstitutionHook {
	return func(assigned []card.Card, playerCount int) (card.ID, bool) {
		for _, c := range assigned {
			if c.Name == marker && c.HasThreshold(playerCount) {
				return c.ID, true
			}
		}
		return 0, false
	}
}

// safeSubstitute runs hook and swallows any panic; the swap is cosmetic and
// must never abort a deal.
func safeSubstitute(hook SubstitutionHook, assigned []card.Card, playerCount int) (id card.ID, ok bool) {
	if hook == nil {
		return 0, false
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("⚠️ card substitution skipped: %v", r)
			id, ok = 0, false
		}
	}()
	return hook(assigned, playerCount)
}
