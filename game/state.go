package game

import (
	"tcg-companion-server/battle"
	"tcg-companion-server/cards"
)

// CardView is the client-facing shape of a card.
type CardView struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Image string   `json:"image,omitempty"`
	HP    int      `json:"hp"`
	Types []string `json:"types,omitempty"`
}

// SideView is one seat's public state. Decks are hidden until both have
// been chosen; selections are hidden until the battle starts.
type SideView struct {
	Name     string     `json:"name"`
	DeckName string     `json:"deckName,omitempty"`
	Score    int        `json:"score"`
	Ready    bool       `json:"ready"`
	Deck     []CardView `json:"deck,omitempty"`
	Selected *CardView  `json:"selected,omitempty"`
}

// StateMsg is the full match snapshot broadcast after every transition.
type StateMsg struct {
	Type    string      `json:"type"`
	MatchID string      `json:"matchId"`
	Phase   string      `json:"phase"`
	Round   int         `json:"round"`
	Players [2]SideView `json:"players"`
}

// ResultMsg announces a resolved battle. WinnerSeat is -1 on a draw.
type ResultMsg struct {
	Type       string        `json:"type"`
	Round      int           `json:"round"`
	WinnerSeat int           `json:"winnerSeat"`
	Result     battle.Result `json:"result"`
	Scores     [2]int        `json:"scores"`
}

// GameOverMsg announces the end of the match.
type GameOverMsg struct {
	Type       string `json:"type"`
	WinnerSeat int    `json:"winnerSeat"`
	WinnerName string `json:"winnerName"`
	Scores     [2]int `json:"scores"`
}

func buildCardView(c *cards.Card) *CardView {
	if c == nil {
		return nil
	}
	return &CardView{
		ID:    c.ID,
		Name:  c.Name,
		Image: c.Image,
		HP:    c.HP,
		Types: c.Types,
	}
}

func buildDeckView(deck []cards.Card) []CardView {
	if len(deck) == 0 {
		return nil
	}
	views := make([]CardView, len(deck))
	for i := range deck {
		views[i] = *buildCardView(&deck[i])
	}
	return views
}

// BuildState assembles the match snapshot for the current phase.
func BuildState(g *Game) StateMsg {
	msg := StateMsg{
		Type:    "match_state",
		MatchID: g.ID,
		Phase:   g.Phase.String(),
		Round:   g.Round,
	}
	revealDecks := g.Phase >= DeckReveal
	revealSelections := g.Phase >= Battle
	for seat, p := range g.Players {
		side := SideView{
			Name:     p.Name,
			DeckName: p.DeckName,
			Score:    p.Score,
			Ready:    p.Ready(),
		}
		if revealDecks {
			side.Deck = buildDeckView(p.Deck)
		}
		if revealSelections {
			side.Selected = buildCardView(p.Selected)
		}
		msg.Players[seat] = side
	}
	return msg
}

// BuildResult assembles the battle announcement for the just-ended round.
func BuildResult(g *Game, winnerSeat int) ResultMsg {
	return ResultMsg{
		Type:       "battle_result",
		Round:      g.Round,
		WinnerSeat: winnerSeat,
		Result:     *g.Result,
		Scores:     [2]int{g.Players[0].Score, g.Players[1].Score},
	}
}

// BuildGameOver assembles the final announcement.
func BuildGameOver(g *Game, winnerSeat int) GameOverMsg {
	return GameOverMsg{
		Type:       "game_over",
		WinnerSeat: winnerSeat,
		WinnerName: g.Players[winnerSeat].Name,
		Scores:     [2]int{g.Players[0].Score, g.Players[1].Score},
	}
}
