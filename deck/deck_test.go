package deck

import (
	"path/filepath"
	"strings"
	"testing"

	"tcg-companion-server/cards"
	"tcg-companion-server/config"
	"tcg-companion-server/storage"
)

func testConfig() *config.Config {
	cfg := config.Defaults()
	cfg.MaxCardsInDeck = 6
	cfg.MaxSameCard = 1
	cfg.MaxTotalHP = 400
	return cfg
}

func testStore(t *testing.T) *Store {
	t.Helper()
	blobs, err := storage.NewStore(filepath.Join(t.TempDir(), "blobs.json"))
	if err != nil {
		t.Fatalf("storage.NewStore: %v", err)
	}
	return NewStore(testConfig(), blobs)
}

func mkCard(id, name string, hp int, types ...string) cards.Card {
	return cards.Card{ID: id, Name: name, HP: hp, Types: types}
}

func TestAddSucceedsWithinLimits(t *testing.T) {
	s := testStore(t)

	res := s.Add(mkCard("c1", "Pikachu", 60, "Electric"))
	if !res.Success {
		t.Fatalf("expected success, got %q", res.Message)
	}
	if !s.IsInDeck("c1") {
		t.Error("card should be in deck after Add")
	}
	if !strings.Contains(res.Message, "Pikachu") {
		t.Errorf("success message should name the card, got %q", res.Message)
	}
}

func TestAddRejectsWhenDeckFull(t *testing.T) {
	s := testStore(t)

	for i := 0; i < 6; i++ {
		res := s.Add(mkCard(string(rune('a'+i)), "Card"+string(rune('A'+i)), 10))
		if !res.Success {
			t.Fatalf("setup add %d failed: %q", i, res.Message)
		}
	}

	res := s.Add(mkCard("extra", "Extra", 10))
	if res.Success {
		t.Fatal("expected capacity rejection")
	}
	if !strings.Contains(res.Message, "limit of 6 cards") {
		t.Errorf("expected capacity message, got %q", res.Message)
	}
	if s.Stats().TotalCards != 6 {
		t.Error("rejected add must not mutate the deck")
	}
}

func TestAddRejectsDuplicateName(t *testing.T) {
	s := testStore(t)

	s.Add(mkCard("c1", "Pikachu", 60))
	// Duplicate detection is by name, not id.
	res := s.Add(mkCard("c2", "Pikachu", 60))
	if res.Success {
		t.Fatal("expected duplicate-name rejection")
	}
	if !strings.Contains(res.Message, "Pikachu") {
		t.Errorf("expected message to name the duplicate, got %q", res.Message)
	}
}

func TestAddRejectsHPOverBudget(t *testing.T) {
	// Five 70-HP cards (350) fit the budget; a sixth 60-HP card (410) does not.
	s := testStore(t)

	names := []string{"A", "B", "C", "D", "E"}
	for i, n := range names {
		res := s.Add(mkCard(string(rune('a'+i)), n, 70))
		if !res.Success {
			t.Fatalf("setup add %q failed: %q", n, res.Message)
		}
	}

	res := s.Add(mkCard("f", "F", 60))
	if res.Success {
		t.Fatal("expected HP budget rejection")
	}
	if !strings.Contains(res.Message, "400 HP") {
		t.Errorf("expected HP limit message, got %q", res.Message)
	}

	stats := s.Stats()
	if stats.TotalCards != 5 || stats.TotalHP != 350 {
		t.Errorf("deck must stay at 5 cards/350 HP, got %d/%d", stats.TotalCards, stats.TotalHP)
	}
}

func TestAddChecksCapacityBeforeDuplicateBeforeHP(t *testing.T) {
	cfg := testConfig()
	cfg.MaxCardsInDeck = 1
	cfg.MaxTotalHP = 50
	blobs, _ := storage.NewStore(filepath.Join(t.TempDir(), "b.json"))
	s := NewStore(cfg, blobs)

	s.Add(mkCard("c1", "Pikachu", 40))

	// This add violates all three rules; the capacity message must win.
	res := s.Add(mkCard("c2", "Pikachu", 40))
	if res.Success {
		t.Fatal("expected rejection")
	}
	if !strings.Contains(res.Message, "limit of 1 cards") {
		t.Errorf("expected the capacity message first, got %q", res.Message)
	}
}

func TestRemoveByIDNotName(t *testing.T) {
	s := testStore(t)
	s.Add(mkCard("c1", "Pikachu", 60))
	s.Add(mkCard("c2", "Eevee", 50))

	s.Remove("c1")

	if s.IsInDeck("c1") {
		t.Error("c1 should be removed")
	}
	if !s.IsInDeck("c2") {
		t.Error("c2 should remain")
	}

	// Removing an absent id is a no-op.
	s.Remove("ghost")
	if s.Stats().TotalCards != 1 {
		t.Error("no-op remove must not mutate the deck")
	}
}

func TestClearZeroesEverything(t *testing.T) {
	s := testStore(t)
	s.Add(mkCard("c1", "Pikachu", 60))

	s.Clear()

	stats := s.Stats()
	if stats.TotalCards != 0 || stats.TotalHP != 0 {
		t.Errorf("expected empty stats after Clear, got %+v", stats)
	}
}

func TestStatsCountByType(t *testing.T) {
	s := testStore(t)
	s.Add(mkCard("c1", "Charizard", 120, "Fire", "Flying"))
	s.Add(mkCard("c2", "Squirtle", 50, "Water"))
	s.Add(mkCard("c3", "MysteryEgg", 30))

	stats := s.Stats()

	if stats.CountByType["Fire"] != 1 || stats.CountByType["Flying"] != 1 {
		t.Errorf("multi-type card should count once per type, got %v", stats.CountByType)
	}
	if stats.CountByType["Water"] != 1 {
		t.Errorf("expected one Water card, got %v", stats.CountByType)
	}
	if stats.CountByType["Unknown"] != 1 {
		t.Errorf("typeless card should bucket under Unknown, got %v", stats.CountByType)
	}
}

func TestStatsIdempotent(t *testing.T) {
	s := testStore(t)
	s.Add(mkCard("c1", "Pikachu", 60, "Electric"))

	first := s.Stats()
	second := s.Stats()

	if first.TotalCards != second.TotalCards || first.TotalHP != second.TotalHP {
		t.Error("Stats must be idempotent between mutations")
	}
	if len(first.CountByType) != len(second.CountByType) {
		t.Error("CountByType changed without a mutation")
	}
}

func TestSaveAndLoad(t *testing.T) {
	s := testStore(t)
	s.Add(mkCard("c1", "Pikachu", 60, "Electric"))
	s.Add(mkCard("c2", "Eevee", 50, "Normal"))

	s.Save("starters")

	s.Clear()
	if s.Stats().TotalCards != 0 {
		t.Fatal("deck should be empty after Clear")
	}

	if !s.Load("starters") {
		t.Fatal("expected Load to find the snapshot")
	}
	stats := s.Stats()
	if stats.TotalCards != 2 || stats.TotalHP != 110 {
		t.Errorf("loaded deck mismatch: %+v", stats)
	}
}

func TestSaveEmptyDeckIsNoOp(t *testing.T) {
	s := testStore(t)

	s.Save("empty")

	if len(s.SavedDeckNames()) != 0 {
		t.Error("saving an empty deck must not create a snapshot")
	}
}

func TestSaveOverwritesSameName(t *testing.T) {
	s := testStore(t)
	s.Add(mkCard("c1", "Pikachu", 60))
	s.Save("mine")

	s.Add(mkCard("c2", "Eevee", 50))
	s.Save("mine")

	decks := s.SavedDeckList()
	if len(decks) != 1 {
		t.Fatalf("expected one snapshot, got %d", len(decks))
	}
	if decks["mine"].TotalCards != 2 {
		t.Errorf("expected re-save to overwrite, got %d cards", decks["mine"].TotalCards)
	}
}

func TestLoadUnknownNameIsNoOp(t *testing.T) {
	s := testStore(t)
	s.Add(mkCard("c1", "Pikachu", 60))

	if s.Load("ghost") {
		t.Error("Load of unknown name should report false")
	}
	if s.Stats().TotalCards != 1 {
		t.Error("failed Load must leave the active deck untouched")
	}
}

func TestActiveDeckSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blobs.json")
	blobs, err := storage.NewStore(path)
	if err != nil {
		t.Fatal(err)
	}
	cfg := testConfig()

	s := NewStore(cfg, blobs)
	s.Add(mkCard("c1", "Pikachu", 60))

	reopened, err := storage.NewStore(path)
	if err != nil {
		t.Fatal(err)
	}
	restored := NewStore(cfg, reopened)
	if !restored.IsInDeck("c1") {
		t.Error("active deck should hydrate from the blob store")
	}
}

func TestWorksWithoutPersistence(t *testing.T) {
	blobs, _ := storage.NewStore("")
	s := NewStore(testConfig(), blobs)

	res := s.Add(mkCard("c1", "Pikachu", 60))
	if !res.Success {
		t.Fatalf("expected Add to work without a blob store, got %q", res.Message)
	}
	s.Save("mine")
	if s.Load("mine") {
		// Without persistence there is nowhere to save snapshots to.
		t.Error("expected Load to miss when persistence is disabled")
	}
}
