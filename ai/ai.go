// Package ai provides automatic opponents for single-player matches.
// A Picker chooses a deck at match start and one card per round; each
// profile implements a different strategy over the same interface.
package ai

import (
	"math/rand"
	"sort"

	"tcg-companion-server/cards"
)

// Picker drives seat 1 in an auto match.
type Picker interface {
	Name() string
	PickDeck(decks map[string][]cards.Card) (name string, deck []cards.Card, ok bool)
	PickCard(own, opponent []cards.Card) (cards.Card, bool)
}

// New returns the picker for the given profile name. Unknown profiles
// fall back to the random picker.
func New(profile string) Picker {
	switch profile {
	case "tank":
		return tankPicker{}
	case "counter":
		return counterPicker{}
	default:
		return randomPicker{}
	}
}

// sortedDeckNames gives map iteration a stable order before any random
// choice, so picks only vary through the rand calls.
func sortedDeckNames(decks map[string][]cards.Card) []string {
	names := make([]string, 0, len(decks))
	for name, deck := range decks {
		if len(deck) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

type randomPicker struct{}

func (randomPicker) Name() string { return "random" }

func (randomPicker) PickDeck(decks map[string][]cards.Card) (string, []cards.Card, bool) {
	names := sortedDeckNames(decks)
	if len(names) == 0 {
		return "", nil, false
	}
	name := names[rand.Intn(len(names))]
	return name, decks[name], true
}

func (randomPicker) PickCard(own, _ []cards.Card) (cards.Card, bool) {
	if len(own) == 0 {
		return cards.Card{}, false
	}
	return own[rand.Intn(len(own))], true
}

// tankPicker favors raw HP: the deck with the highest total and the
// card with the highest HP.
type tankPicker struct{}

func (tankPicker) Name() string { return "tank" }

func (tankPicker) PickDeck(decks map[string][]cards.Card) (string, []cards.Card, bool) {
	names := sortedDeckNames(decks)
	if len(names) == 0 {
		return "", nil, false
	}
	best := names[0]
	bestHP := -1
	for _, name := range names {
		total := 0
		for _, c := range decks[name] {
			total += c.HP
		}
		if total > bestHP {
			best, bestHP = name, total
		}
	}
	return best, decks[best], true
}

func (tankPicker) PickCard(own, _ []cards.Card) (cards.Card, bool) {
	if len(own) == 0 {
		return cards.Card{}, false
	}
	best := own[0]
	for _, c := range own[1:] {
		if c.HP > best.HP {
			best = c
		}
	}
	return best, true
}

// counterPicker reads the opponent's deck, finds its dominant type and
// plays a card whose type is strong against it per the type chart.
type counterPicker struct{}

func (counterPicker) Name() string { return "counter" }

func (counterPicker) PickDeck(decks map[string][]cards.Card) (string, []cards.Card, bool) {
	return randomPicker{}.PickDeck(decks)
}

func (counterPicker) PickCard(own, opponent []cards.Card) (cards.Card, bool) {
	if len(own) == 0 {
		return cards.Card{}, false
	}
	target := dominantType(opponent)
	if target != "" {
		var candidates []cards.Card
		for _, c := range own {
			if cards.StrongAgainst(c.FirstType(), target) {
				candidates = append(candidates, c)
			}
		}
		if len(candidates) > 0 {
			// Among counters, still prefer the sturdiest one.
			return tankPicker{}.PickCard(candidates, nil)
		}
	}
	return tankPicker{}.PickCard(own, nil)
}

// dominantType returns the most frequent first type in a deck, breaking
// count ties alphabetically.
func dominantType(deck []cards.Card) string {
	counts := make(map[string]int)
	for _, c := range deck {
		if t := c.FirstType(); t != "" {
			counts[t]++
		}
	}
	best := ""
	for t, n := range counts {
		if best == "" || n > counts[best] || (n == counts[best] && t < best) {
			best = t
		}
	}
	return best
}
