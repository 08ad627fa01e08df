package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/game/card"
)

// seedFile is the YAML layout of a catalog seed. A definition with copies > 1
// expands into consecutive ids starting at id.
type seedFile struct {
	Cards []seedCard `yaml:"cards"`
}

type seedCard struct {
	ID        int       `yaml:"id"`
	Name      string    `yaml:"name"`
	Type      card.Type `yaml:"type"`
	Threshold *int      `yaml:"threshold"`
	Copies    int       `yaml:"copies"`
}

// LoadSeedFile reads a catalog seed.
func LoadSeedFile(path string) ([]card.Card, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes a catalog seed and expands its copies.
func ParseSeed(data []byte) ([]card.Card, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	seen := make(map[card.ID]bool)
	var cards []card.Card
	for _, def := range f.Cards {
		if def.Name == "" {
			return nil, fmt.Errorf("card %d: name is required", def.ID)
		}
		if def.Threshold != nil && *def.Threshold <= 0 {
			return nil, fmt.Errorf("card %d: threshold must be positive", def.ID)
		}
		copies := max(def.Copies, 1)
		for i := range copies {
			id := card.ID(def.ID + i)
			if id <= 0 {
				return nil, fmt.Errorf("card %q: id must be positive", def.Name)
			}
			if seen[id] {
				return nil, fmt.Errorf("%w: %d", ErrDuplicateCard, id)
			}
			seen[id] = true

			c := card.Card{ID: id, Name: def.Name, Type: def.Type}
			if def.Threshold != nil {
				c.Threshold = card.Threshold(*def.Threshold)
			}
			cards = append(cards, c)
		}
	}
	return cards, nil
}
