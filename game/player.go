package game

import "tcg-companion-server/cards"

// Player represents one seat in a match. In auto matches seat 1 has no
// Send channel and is driven by the match's OpponentPicker.
type Player struct {
	Name     string
	DeckName string
	Deck     []cards.Card
	Selected *cards.Card
	Score    int
	Send     chan []byte
}

// Ready reports whether the player has picked a card this round.
func (p *Player) Ready() bool {
	return p != nil && p.Selected != nil
}

// cardInDeck returns a copy of the deck card with the given id.
func (p *Player) cardInDeck(id string) (cards.Card, bool) {
	for _, c := range p.Deck {
		if c.ID == id {
			return c, true
		}
	}
	return cards.Card{}, false
}
