package battle

import (
	"testing"

	"tcg-companion-server/cards"
)

func card(name, typ string, hp int) *cards.Card {
	c := &cards.Card{ID: "id-" + name, Name: name, HP: hp}
	if typ != "" {
		c.Types = []string{typ}
	}
	return c
}

func weakTo(c *cards.Card, types ...string) *cards.Card {
	for _, t := range types {
		c.Weaknesses = append(c.Weaknesses, cards.Matchup{Type: t, Value: "×2"})
	}
	return c
}

func resistsTo(c *cards.Card, types ...string) *cards.Card {
	for _, t := range types {
		c.Resistances = append(c.Resistances, cards.Matchup{Type: t, Value: "-30"})
	}
	return c
}

func TestResolveWeaknessDecidesRound(t *testing.T) {
	// Fire 60 vs Grass 90 where Grass is weak to Fire: type beats raw HP.
	a := card("Charmander", "Fire", 60)
	b := weakTo(card("Bulbasaur", "Grass", 90), "Fire")

	res := Resolve(a, b)

	if res.IsDraw {
		t.Fatal("expected a decision, got draw")
	}
	if res.Winner != a {
		t.Errorf("expected Charmander to win, got %v", res.Winner)
	}
	if res.Loser != b {
		t.Errorf("expected Bulbasaur to lose, got %v", res.Loser)
	}
	if res.Reason != ReasonType {
		t.Errorf("expected reason type, got %q", res.Reason)
	}
}

func TestResolveMutualWeaknessIsDraw(t *testing.T) {
	a := weakTo(card("Golem", "Fighting", 110), "Water")
	b := weakTo(card("Blastoise", "Water", 100), "Fighting")

	res := Resolve(a, b)

	if !res.IsDraw {
		t.Fatal("expected draw for mutual weakness")
	}
	if res.Winner != nil || res.Loser != nil {
		t.Error("draw must not carry a winner or loser")
	}
	if res.Reason != ReasonDraw {
		t.Errorf("expected reason draw, got %q", res.Reason)
	}
}

func TestResolveMutualResistanceIsDraw(t *testing.T) {
	a := resistsTo(card("Aggron", "Steel", 140), "Psychic")
	b := resistsTo(card("Metagross", "Psychic", 130), "Steel")

	res := Resolve(a, b)

	if !res.IsDraw {
		t.Fatal("expected draw for mutual resistance")
	}
	if res.Reason != ReasonDraw {
		t.Errorf("expected reason draw, got %q", res.Reason)
	}
}

func TestResolveSingleResistanceWins(t *testing.T) {
	a := resistsTo(card("Gyarados", "Water", 95), "Fire")

	// a resists b's type but nobody is weak: resisting card wins.
	b := card("Arcanine", "Fire", 90)

	res := Resolve(a, b)

	if res.Winner != a {
		t.Errorf("expected resisting card to win, got %v", res.Winner)
	}
	if res.Reason != ReasonType {
		t.Errorf("expected reason type, got %q", res.Reason)
	}
}

func TestResolveWeaknessTakesPrecedenceOverResistance(t *testing.T) {
	// b is weak to a's type and a also resists b's type. Weakness is
	// checked first, so the decision is recorded via b's weakness.
	a := resistsTo(card("Vaporeon", "Water", 80), "Fire")
	b := weakTo(card("Flareon", "Fire", 90), "Water")

	res := Resolve(a, b)

	if res.Winner != a {
		t.Errorf("expected Vaporeon to win, got %v", res.Winner)
	}
	if res.Reason != ReasonType {
		t.Errorf("expected reason type, got %q", res.Reason)
	}
}

func TestResolveFallsBackToHP(t *testing.T) {
	a := card("Snorlax", "Normal", 140)
	b := card("Pikachu", "Electric", 60)

	res := Resolve(a, b)

	if res.Winner != a {
		t.Errorf("expected higher HP card to win, got %v", res.Winner)
	}
	if res.Reason != ReasonHP {
		t.Errorf("expected reason hp, got %q", res.Reason)
	}
}

func TestResolveTypelessCardsCompareHP(t *testing.T) {
	a := card("MysteryA", "", 50)
	b := card("MysteryB", "", 70)

	res := Resolve(a, b)

	if res.Winner != b {
		t.Errorf("expected MysteryB to win on HP, got %v", res.Winner)
	}
	if res.Reason != ReasonHP {
		t.Errorf("expected reason hp, got %q", res.Reason)
	}
}

func TestResolveEqualHPIsDraw(t *testing.T) {
	a := card("Ditto", "Normal", 70)
	b := card("Clefairy", "Fairy", 70)

	res := Resolve(a, b)

	if !res.IsDraw {
		t.Fatal("expected draw for equal HP with no type decision")
	}
	if res.Winner != nil || res.Loser != nil {
		t.Error("draw must not carry a winner or loser")
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	a := weakTo(card("Ivysaur", "Grass", 80), "Fire")
	b := card("Growlithe", "Fire", 70)

	first := Resolve(a, b)
	second := Resolve(a, b)

	if first.Winner != second.Winner || first.Reason != second.Reason || first.Description != second.Description {
		t.Errorf("resolver not deterministic: %+v vs %+v", first, second)
	}
}

func TestResolveWinnerInvariantUnderArgumentOrder(t *testing.T) {
	pairs := []struct {
		a, b *cards.Card
	}{
		{card("Charmander", "Fire", 60), weakTo(card("Bulbasaur", "Grass", 90), "Fire")},
		{card("Snorlax", "Normal", 140), card("Pikachu", "Electric", 60)},
		{resistsTo(card("Gyarados", "Water", 95), "Fire"), card("Arcanine", "Fire", 90)},
	}

	for _, p := range pairs {
		forward := Resolve(p.a, p.b)
		reversed := Resolve(p.b, p.a)

		if forward.IsDraw != reversed.IsDraw {
			t.Errorf("%s vs %s: draw flag differs between argument orders", p.a.Name, p.b.Name)
			continue
		}
		if !forward.IsDraw && forward.Winner.ID != reversed.Winner.ID {
			t.Errorf("%s vs %s: winner changed with argument order (%s vs %s)",
				p.a.Name, p.b.Name, forward.Winner.Name, reversed.Winner.Name)
		}
	}
}

func TestResolveLegacyUsesStaticChart(t *testing.T) {
	a := card("Charmander", "Fire", 50)
	b := card("Oddish", "Grass", 120)

	res := ResolveLegacy(a, b)

	if res.Winner != a {
		t.Errorf("expected Fire to beat Grass via chart, got %v", res.Winner)
	}
	if res.Reason != ReasonType {
		t.Errorf("expected reason type, got %q", res.Reason)
	}
}

func TestResolveLegacyNeverDraws(t *testing.T) {
	a := card("Ditto", "Normal", 70)
	b := card("Clefairy", "Fairy", 70)

	res := ResolveLegacy(a, b)

	if res.IsDraw {
		t.Fatal("legacy mode must never draw")
	}
	if res.Winner != a {
		t.Errorf("expected first card to take a perfect tie, got %v", res.Winner)
	}
	if res.Reason != ReasonDefault {
		t.Errorf("expected reason default, got %q", res.Reason)
	}
}

func TestParseMode(t *testing.T) {
	if ParseMode("legacy") != ModeLegacy {
		t.Error("expected legacy mode")
	}
	if ParseMode("refined") != ModeRefined {
		t.Error("expected refined mode")
	}
	if ParseMode("") != ModeRefined {
		t.Error("unknown mode should default to refined")
	}
}
