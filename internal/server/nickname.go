package server

import (
	"math/rand/v2"
	"strings"
	"unicode/utf8"
)

const maxNameLength = 24

var (
	adjectives = []string{
		"Brave", "Quiet", "Frozen", "Lucky", "Restless",
		"Careful", "Hungry", "Silent", "Nervous", "Stubborn",
		"Wary", "Bold", "Sleepy", "Grim", "Cheerful",
	}

	nouns = []string{
		"Scientist", "Pilot", "Medic", "Cook", "Mechanic",
		"Geologist", "Radioman", "Sled Dog", "Captain", "Biologist",
		"Meteorologist", "Doctor", "Engineer", "Husky", "Explorer",
	}
)

// GenerateNickname returns a random display name.
func GenerateNickname() string {
	return adjectives[rand.IntN(len(adjectives))] + " " + nouns[rand.IntN(len(nouns))]
}

// sanitizeName trims a requested display name and caps its length. An empty
// result means the caller should generate one.
func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.Map(func(r rune) rune {
		if r < ' ' {
			return -1
		}
		return r
	}, name)
	if utf8.RuneCountInString(name) > maxNameLength {
		name = string([]rune(name)[:maxNameLength])
	}
	return strings.TrimSpace(name)
}
