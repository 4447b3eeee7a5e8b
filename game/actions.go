package game

import (
	"context"
	"fmt"
	"log/slog"

	"tcg-companion-server/battle"
)

func (g *Game) handleSelectDeck(seat int, name string) {
	if seat < 0 || seat > 1 {
		return
	}
	if g.Phase != DeckSelection {
		g.sendError(seat, "Deck selection is over.")
		return
	}
	deck, ok := g.Decks.SavedDeckCards(name)
	if !ok {
		g.sendError(seat, fmt.Sprintf("Unknown deck %q.", name))
		return
	}
	if len(deck) == 0 {
		g.sendError(seat, fmt.Sprintf("Deck %q is empty.", name))
		return
	}

	p := g.Players[seat]
	p.DeckName = name
	p.Deck = deck

	if g.Picker != nil && g.Players[1].DeckName == "" {
		g.pickOpponentDeck()
	}

	if g.Players[0].DeckName != "" && g.Players[1].DeckName != "" {
		g.Phase = DeckReveal
		slog.Info("decks chosen", "tag", "game", "match", g.ID,
			"deck0", g.Players[0].DeckName, "deck1", g.Players[1].DeckName)
	}
	g.broadcastState()
}

// pickOpponentDeck lets the auto opponent choose from the saved decks.
func (g *Game) pickOpponentDeck() {
	name, deck, ok := g.Picker.PickDeck(g.Decks.SavedDecks())
	if !ok {
		return
	}
	g.Players[1].DeckName = name
	g.Players[1].Deck = deck
}

func (g *Game) handleSelectCard(seat int, cardID string) {
	if seat < 0 || seat > 1 {
		return
	}
	if g.Phase != CardSelection {
		g.sendError(seat, "You cannot pick a card right now.")
		return
	}
	p := g.Players[seat]
	if p.Selected != nil {
		g.sendError(seat, "You already picked a card this round.")
		return
	}
	card, ok := p.cardInDeck(cardID)
	if !ok {
		g.sendError(seat, "That card is not in your deck.")
		return
	}
	p.Selected = &card

	if g.Picker != nil && seat == 0 && g.Players[1].Selected == nil {
		if pick, ok := g.Picker.PickCard(g.Players[1].Deck, g.Players[0].Deck); ok {
			g.Players[1].Selected = &pick
		}
	}

	if g.Players[0].Selected != nil && g.Players[1].Selected != nil {
		g.prepareBattle()
		return
	}
	g.broadcastState()
}

// prepareBattle re-fetches both selections from the card provider, resolves
// the battle and enters the reveal phase. On a provider failure both
// selections are cleared and the match stays in card_selection.
func (g *Game) prepareBattle() {
	if g.Provider != nil {
		for _, p := range g.Players {
			ctx, cancel := context.WithTimeout(context.Background(), providerFetchTimeout)
			fresh, err := g.Provider.GetCard(ctx, p.Selected.ID)
			cancel()
			if err != nil {
				slog.Warn("fetching card for battle", "tag", "game",
					"match", g.ID, "card", p.Selected.ID, "err", err)
				g.abortBattlePreparation()
				return
			}
			*p.Selected = *fresh
		}
	}

	g.Phase = Battle
	result := battle.ResolveWithMode(g.Mode, g.Players[0].Selected, g.Players[1].Selected)
	g.Result = &result
	slog.Info("battle resolved", "tag", "game", "match", g.ID, "round", g.Round,
		"card0", g.Players[0].Selected.Name, "card1", g.Players[1].Selected.Name,
		"reason", result.Reason, "draw", result.IsDraw)

	g.broadcastState()
	g.startRevealTimer()
}

func (g *Game) abortBattlePreparation() {
	g.Players[0].Selected = nil
	g.Players[1].Selected = nil
	for seat := range g.Players {
		g.sendError(seat, "Could not fetch card details from the card service. Pick your cards again.")
	}
	g.broadcastState()
}

// handleBattleRevealDone applies the resolved result: it credits the
// winner, checks the win threshold right after that single increment and
// either ends the match or moves to the round summary.
func (g *Game) handleBattleRevealDone() {
	if g.Phase != Battle || g.Result == nil {
		return
	}
	result := g.Result

	winnerSeat := -1
	if !result.IsDraw {
		if result.Winner == g.Players[0].Selected {
			winnerSeat = 0
		} else {
			winnerSeat = 1
		}
		g.Players[winnerSeat].Score++
	}

	g.broadcast(BuildResult(g, winnerSeat))

	if winnerSeat >= 0 && g.Players[winnerSeat].Score >= g.Config.WinThreshold {
		g.finishGame()
		return
	}

	g.Players[0].Selected = nil
	g.Players[1].Selected = nil
	g.Round++
	g.Phase = RoundSummary
	g.broadcastState()
}

func (g *Game) finishGame() {
	g.Phase = GameOver
	winnerSeat := g.matchWinnerSeat()
	slog.Info("match over", "tag", "game", "match", g.ID,
		"winner", g.Players[winnerSeat].Name,
		"score0", g.Players[0].Score, "score1", g.Players[1].Score)
	g.broadcast(BuildGameOver(g, winnerSeat))
	g.Finished = true
	if g.OnGameEnd != nil {
		g.OnGameEnd(g, "completed")
	}
}

func (g *Game) handleContinue() {
	switch g.Phase {
	case DeckReveal:
		g.Phase = CardSelection
		g.broadcastState()
	case RoundSummary:
		g.Result = nil
		g.Phase = CardSelection
		g.broadcastState()
	default:
		g.sendError(0, "Nothing to continue.")
	}
}
