package card

import (
	"fmt"
	"sort"
)

// Catalog is the read-only set of card definitions supplied to the engine.
type Catalog struct {
	cards []Card
	byID  map[ID]Card
}

// NewCatalog builds a catalog ordered by card id. Duplicate ids are rejected.
func NewCatalog(cards []Card) (*Catalog, error) {
	c := &Catalog{
		cards: make([]Card, 0, len(cards)),
		byID:  make(map[ID]Card, len(cards)),
	}
	for _, def := range cards {
		if _, dup := c.byID[def.ID]; dup {
			return nil, fmt.Errorf("duplicate card id %d", def.ID)
		}
		if _, ok := typeNames[def.Type]; !ok {
			return nil, fmt.Errorf("card %d: unknown type %d", def.ID, int(def.Type))
		}
		c.byID[def.ID] = def
		c.cards = append(c.cards, def)
	}
	sort.Slice(c.cards, func(i, j int) bool { return c.cards[i].ID < c.cards[j].ID })
	return c, nil
}

// MustCatalog is NewCatalog that panics on error, for fixtures.
func MustCatalog(cards []Card) *Catalog {
	c, err := NewCatalog(cards)
	if err != nil {
		panic(err)
	}
	return c
}

// Cards returns a copy of every definition, ordered by id.
func (c *Catalog) Cards() []Card {
	out := make([]Card, len(c.cards))
	copy(out, c.cards)
	return out
}

// Get looks up a definition.
func (c *Catalog) Get(id ID) (Card, bool) {
	def, ok := c.byID[id]
	return def, ok
}

// Len returns the number of definitions.
func (c *Catalog) Len() int {
	return len(c.cards)
}
