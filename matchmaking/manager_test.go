package matchmaking

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tcg-companion-server/cards"
	"tcg-companion-server/config"
	"tcg-companion-server/game"
	"tcg-companion-server/matcherrors"
	"tcg-companion-server/storage"
	"tcg-companion-server/ws"
)

type stubDecks map[string][]cards.Card

func (s stubDecks) SavedDeckCards(name string) ([]cards.Card, bool) {
	deck, ok := s[name]
	return deck, ok
}

func (s stubDecks) SavedDecks() map[string][]cards.Card { return s }

func someDecks() stubDecks {
	return stubDecks{
		"Starters": {{ID: "c1", Name: "Charmander", HP: 60, Types: []string{"Fire"}}},
	}
}

func testManager(t *testing.T, decks game.DeckSource) *Manager {
	t.Helper()
	cfg := config.Defaults()
	cfg.BattleRevealMS = 0
	blobs, err := storage.NewStore(filepath.Join(t.TempDir(), "data.json"))
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	return NewManager(cfg, decks, nil, blobs)
}

func testClient(name string) *ws.Client {
	return &ws.Client{Name: name, Send: make(chan []byte, 64)}
}

func TestStartMatchHotSeat(t *testing.T) {
	m := testManager(t, someDecks())
	c := testClient("Ash")

	if err := m.StartMatch(c, ""); err != nil {
		t.Fatalf("StartMatch: %v", err)
	}
	if c.Game == nil {
		t.Fatal("client has no game")
	}
	if c.AutoMatch {
		t.Error("hot-seat match marked as auto")
	}
	if m.ActiveCount() != 1 {
		t.Errorf("active count = %d, want 1", m.ActiveCount())
	}

	// match_started arrives before the initial state broadcast.
	select {
	case data := <-c.Send:
		if want := `"type":"match_started"`; !strings.Contains(string(data), want) {
			t.Errorf("first message = %s, want %s", data, want)
		}
	case <-time.After(time.Second):
		t.Fatal("no match_started message")
	}
}

func TestStartMatchAuto(t *testing.T) {
	m := testManager(t, someDecks())
	c := testClient("Ash")

	if err := m.StartMatch(c, ModeAuto); err != nil {
		t.Fatalf("StartMatch: %v", err)
	}
	if !c.AutoMatch {
		t.Error("auto match not marked on client")
	}
	if c.Game.Players[1].Send != nil {
		t.Error("auto opponent should have no send channel")
	}
}

func TestStartMatchErrors(t *testing.T) {
	m := testManager(t, someDecks())
	c := testClient("Ash")

	if err := m.StartMatch(c, "ranked"); !errors.Is(err, matcherrors.ErrUnknownMode) {
		t.Errorf("unknown mode error = %v", err)
	}

	empty := testManager(t, stubDecks{})
	if err := empty.StartMatch(c, ""); !errors.Is(err, matcherrors.ErrNoSavedDecks) {
		t.Errorf("no decks error = %v", err)
	}

	if err := m.StartMatch(c, ""); err != nil {
		t.Fatalf("StartMatch: %v", err)
	}
	if err := m.StartMatch(c, ""); !errors.Is(err, matcherrors.ErrAlreadyInMatch) {
		t.Errorf("second start error = %v", err)
	}
}

func TestAbandonedMatchRecorded(t *testing.T) {
	m := testManager(t, someDecks())
	c := testClient("Ash")

	if err := m.StartMatch(c, ""); err != nil {
		t.Fatalf("StartMatch: %v", err)
	}

	c.Game.Actions <- game.Action{Type: game.ActionDisconnect}
	select {
	case <-c.Game.Done:
	case <-time.After(time.Second):
		t.Fatal("game did not finish")
	}

	records := m.History()
	if len(records) != 1 {
		t.Fatalf("history length = %d, want 1", len(records))
	}
	r := records[0]
	if r.Reason != "abandoned" {
		t.Errorf("reason = %q, want abandoned", r.Reason)
	}
	if r.Seats[0].Name != "Ash" || r.Seats[1].Name != "Player 2" {
		t.Errorf("seats = %+v", r.Seats)
	}
	if r.Winner != "" {
		t.Errorf("winner = %q, want empty on 0-0", r.Winner)
	}
	if m.ActiveCount() != 0 {
		t.Errorf("active count = %d, want 0", m.ActiveCount())
	}
}
