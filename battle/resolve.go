// Package battle decides the outcome of one card-vs-card round.
// Resolution is pure and total: any two well-formed cards produce exactly
// one Result, and resolving the same pair twice yields the same Result.
package battle

import (
	"fmt"

	"tcg-companion-server/cards"
)

// Reason explains how a round was decided.
type Reason string

const (
	ReasonType Reason = "type"
	ReasonHP   Reason = "hp"
	ReasonDraw Reason = "draw"
	// ReasonDefault is the legacy mode's arbitrary first-card tie-break;
	// the refined mode never produces it.
	ReasonDefault Reason = "default"
)

// Mode selects the resolution algorithm.
type Mode string

const (
	// ModeRefined uses each card's own weakness/resistance lists and
	// allows draws. This is the contract; legacy is its predecessor.
	ModeRefined Mode = "refined"
	// ModeLegacy uses the static type chart and never draws.
	ModeLegacy Mode = "legacy"
)

// ParseMode maps a configuration string to a Mode, defaulting to refined.
func ParseMode(s string) Mode {
	if s == string(ModeLegacy) {
		return ModeLegacy
	}
	return ModeRefined
}

// Result is the outcome of one round. Winner and Loser are nil only
// when IsDraw is true.
type Result struct {
	Winner      *cards.Card `json:"winner,omitempty"`
	Loser       *cards.Card `json:"loser,omitempty"`
	Reason      Reason      `json:"reason"`
	Description string      `json:"description"`
	IsDraw      bool        `json:"isDraw"`
}

// ResolveWithMode dispatches to the resolver selected by mode.
func ResolveWithMode(mode Mode, card1, card2 *cards.Card) Result {
	if mode == ModeLegacy {
		return ResolveLegacy(card1, card2)
	}
	return Resolve(card1, card2)
}

// Resolve decides a round using each card's declared weakness and
// resistance lists. Mutual weakness or mutual resistance is a draw;
// a single weakness beats a single resistance in precedence; with no
// type-based decision the higher HP wins, and equal HP is a draw.
func Resolve(card1, card2 *cards.Card) Result {
	t1 := card1.FirstType()
	t2 := card2.FirstType()

	if t1 != "" && t2 != "" {
		card2Weak := card2.WeakTo(t1)
		card1Weak := card1.WeakTo(t2)

		if card1Weak && card2Weak {
			return draw(fmt.Sprintf("%s and %s are both weak to each other's type, so the round is a draw!", card1.Name, card2.Name))
		}

		card2Resists := card2.ResistsTo(t1)
		card1Resists := card1.ResistsTo(t2)

		switch {
		case card1Resists && card2Resists:
			return draw(fmt.Sprintf("%s and %s both resist each other's type, so the round is a draw!", card1.Name, card2.Name))
		case card2Weak:
			return typeWin(card1, card2, fmt.Sprintf("%s is super effective against %s!", t1, t2))
		case card1Weak:
			return typeWin(card2, card1, fmt.Sprintf("%s is super effective against %s!", t2, t1))
		case card1Resists:
			return typeWin(card1, card2, fmt.Sprintf("%s resists %s!", card1.Name, t2))
		case card2Resists:
			return typeWin(card2, card1, fmt.Sprintf("%s resists %s!", card2.Name, t1))
		}
	}

	if card1.HP != card2.HP {
		winner, loser := card1, card2
		if card2.HP > card1.HP {
			winner, loser = card2, card1
		}
		return Result{
			Winner:      winner,
			Loser:       loser,
			Reason:      ReasonHP,
			Description: fmt.Sprintf("Victory by higher HP (%d vs %d)", winner.HP, loser.HP),
		}
	}

	return draw(fmt.Sprintf("Both cards stand at %d HP, so the round is a draw!", card1.HP))
}

// ResolveLegacy decides a round using only the static type chart.
// It never draws: equal HP falls through to the first card.
func ResolveLegacy(card1, card2 *cards.Card) Result {
	t1 := card1.FirstType()
	t2 := card2.FirstType()

	if t1 != "" && t2 != "" {
		if cards.StrongAgainst(t1, t2) {
			return typeWin(card1, card2, fmt.Sprintf("%s is super effective against %s!", t1, t2))
		}
		if cards.StrongAgainst(t2, t1) {
			return typeWin(card2, card1, fmt.Sprintf("%s is super effective against %s!", t2, t1))
		}
	}

	if card1.HP != card2.HP {
		winner, loser := card1, card2
		if card2.HP > card1.HP {
			winner, loser = card2, card1
		}
		return Result{
			Winner:      winner,
			Loser:       loser,
			Reason:      ReasonHP,
			Description: fmt.Sprintf("Victory by higher HP (%d vs %d)", winner.HP, loser.HP),
		}
	}

	return Result{
		Winner:      card1,
		Loser:       card2,
		Reason:      ReasonDefault,
		Description: "Perfect tie; first card takes the round.",
	}
}

func typeWin(winner, loser *cards.Card, description string) Result {
	return Result{
		Winner:      winner,
		Loser:       loser,
		Reason:      ReasonType,
		Description: description,
	}
}

func draw(description string) Result {
	return Result{
		Reason:      ReasonDraw,
		Description: description,
		IsDraw:      true,
	}
}
