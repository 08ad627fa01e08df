package card

import (
	"fmt"
	"strings"
)

// ID references a card definition in the catalog.
type ID int

// Type is the catalog type tag of a card.
type Type int

const (
	TypeOrdinary   Type = iota // never enters the deal pool or the draw pile
	TypeStayAway               // plain action cards dealt into opening hands
	TypeInfection              // only ever reach hands through the draw pile
	TypeRoleReveal             // exactly one per catalog, marks the secret role holder
)

// typeNames maps types to their catalog spelling
var typeNames = map[Type]string{
	TypeOrdinary:   "ordinary",
	TypeStayAway:   "stay_away",
	TypeInfection:  "infection",
	TypeRoleReveal: "role_reveal",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("type(%d)", int(t))
}

// ParseType parses a catalog type name.
func ParseType(s string) (Type, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for t, name := range typeNames {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown card type %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	if _, ok := typeNames[t]; !ok {
		return nil, fmt.Errorf("unknown card type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Card is an immutable catalog definition.
type Card struct {
	ID   ID     `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Type Type   `json:"type" yaml:"type"`
	// Threshold is the minimum player count for the card to be in play. Nil means always.
	Threshold *int `json:"threshold,omitempty" yaml:"threshold,omitempty"`
}

// Unlocked reports whether the card is legal in a session of playerCount players.
func (c Card) Unlocked(playerCount int) bool {
	return c.Threshold == nil || *c.Threshold <= playerCount
}

// Dealable reports whether the card may be dealt into an opening hand.
func (c Card) Dealable() bool {
	return c.Type == TypeStayAway
}

// HasThreshold reports whether the card is gated exactly at n players.
func (c Card) HasThreshold(n int) bool {
	return c.Threshold != nil && *c.Threshold == n
}

// Threshold returns a pointer suitable for Card.Threshold.
func Threshold(n int) *int {
	return &n
}

// IDs returns the ids of cards, in order.
func IDs(cards []Card) []ID {
	ids := make([]ID, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	return ids
}
