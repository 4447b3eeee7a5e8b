// Package deck owns the active deck and the saved-deck snapshots.
// All mutation goes through Store; presentation code never touches the
// card list directly. Admission rules are enforced at add time only.
package deck

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"tcg-companion-server/cards"
	"tcg-companion-server/config"
	"tcg-companion-server/storage"
)

// Blob-store keys. The legacy singular "savedDeck" key from early app
// revisions is intentionally not read or written.
const (
	currentDeckKey = "currentDeck"
	savedDecksKey  = "savedDecks"
)

// Result reports a deck mutation attempt. Rejections are values, not errors.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SavedDeck is a named snapshot of a deck and its statistics at save time.
type SavedDeck struct {
	Cards      []cards.Card `json:"cards"`
	CreatedAt  time.Time    `json:"createdAt"`
	TotalCards int          `json:"totalCards"`
	TotalHP    int          `json:"totalHP"`
}

// Stats are the deck's derived statistics, recomputed from the cards on
// every mutation so they can never drift from the deck contents.
type Stats struct {
	TotalCards  int            `json:"totalCards"`
	TotalHP     int            `json:"totalHP"`
	CountByType map[string]int `json:"countByType"`
}

// Store is the deck validator and owner of the active deck.
type Store struct {
	mu    sync.Mutex
	cfg   *config.Config
	blobs *storage.Store
	cards []cards.Card
}

// NewStore creates a deck store, hydrating the active deck from the blob
// store. A corrupt or missing blob means an empty deck.
func NewStore(cfg *config.Config, blobs *storage.Store) *Store {
	s := &Store{cfg: cfg, blobs: blobs}

	var saved []cards.Card
	ok, err := blobs.Get(currentDeckKey, &saved)
	if err != nil {
		slog.Warn("loading active deck", "tag", "deck", "err", err)
	}
	if ok {
		s.cards = saved
		slog.Info("active deck restored", "tag", "deck", "cards", len(saved))
	}
	return s
}

// Cards returns a copy of the active deck in order.
func (s *Store) Cards() []cards.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]cards.Card, len(s.cards))
	copy(out, s.cards)
	return out
}

// Add admits a card into the deck. Constraints are checked in fixed order
// (capacity, duplicate-name limit, HP budget) and the first failure
// short-circuits with a user-facing message. On success the card is
// appended and the deck persisted.
func (s *Store) Add(card cards.Card) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.cards) >= s.cfg.MaxCardsInDeck {
		return Result{Message: fmt.Sprintf("Your deck has reached the limit of %d cards.", s.cfg.MaxCardsInDeck)}
	}

	sameName := 0
	for _, c := range s.cards {
		if c.Name == card.Name {
			sameName++
		}
	}
	if sameName >= s.cfg.MaxSameCard {
		return Result{Message: fmt.Sprintf("You cannot have more than %d copies of %q in your deck.", s.cfg.MaxSameCard, card.Name)}
	}

	currentHP := totalHP(s.cards)
	if currentHP+card.HP > s.cfg.MaxTotalHP {
		return Result{Message: fmt.Sprintf("Adding this card would exceed the %d HP limit for your deck (current total: %d, card: %d HP).",
			s.cfg.MaxTotalHP, currentHP, card.HP)}
	}

	s.cards = append(s.cards, card)
	s.persistLocked()
	return Result{Success: true, Message: fmt.Sprintf("%s (%d HP) was added to your deck.", card.Name, card.HP)}
}

// Remove drops the first card matching id. No-op if absent.
func (s *Store) Remove(cardID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range s.cards {
		if c.ID == cardID {
			s.cards = append(s.cards[:i], s.cards[i+1:]...)
			s.persistLocked()
			return
		}
	}
}

// Clear empties the active deck and removes its persisted blob.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cards = nil
	if err := s.blobs.Delete(currentDeckKey); err != nil {
		slog.Error("clearing active deck blob", "tag", "deck", "err", err)
	}
}

// Save snapshots the active deck under name (overwriting any previous
// snapshot with that name) and rewrites the active deck blob.
// No-op when the deck is empty.
func (s *Store) Save(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.cards) == 0 {
		return
	}

	decks := s.savedDecksLocked()
	snapshot := SavedDeck{
		Cards:      append([]cards.Card(nil), s.cards...),
		CreatedAt:  time.Now(),
		TotalCards: len(s.cards),
		TotalHP:    totalHP(s.cards),
	}
	decks[name] = snapshot

	if err := s.blobs.Set(savedDecksKey, decks); err != nil {
		slog.Error("saving deck snapshot", "tag", "deck", "name", name, "err", err)
	}
	s.persistLocked()
	slog.Info("deck saved", "tag", "deck", "name", name, "cards", snapshot.TotalCards, "hp", snapshot.TotalHP)
}

// Load replaces the active deck with the named snapshot and persists it
// as the active deck. Returns false (and leaves the deck untouched) when
// the name is unknown.
func (s *Store) Load(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	decks := s.savedDecksLocked()
	snapshot, ok := decks[name]
	if !ok {
		return false
	}

	s.cards = append([]cards.Card(nil), snapshot.Cards...)
	s.persistLocked()
	slog.Info("deck loaded", "tag", "deck", "name", name, "cards", len(s.cards))
	return true
}

// IsInDeck reports whether a card with the given id is in the active deck.
func (s *Store) IsInDeck(cardID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.cards {
		if c.ID == cardID {
			return true
		}
	}
	return false
}

// Stats recomputes the deck statistics from the current contents.
// A multi-type card counts once per type; typeless cards fall into the
// "Unknown" bucket.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	countByType := make(map[string]int)
	for _, c := range s.cards {
		if len(c.Types) == 0 {
			countByType["Unknown"]++
			continue
		}
		for _, t := range c.Types {
			countByType[t]++
		}
	}
	return Stats{
		TotalCards:  len(s.cards),
		TotalHP:     totalHP(s.cards),
		CountByType: countByType,
	}
}

// SavedDeckNames lists the saved deck names in sorted order.
func (s *Store) SavedDeckNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	decks := s.savedDecksLocked()
	names := make([]string, 0, len(decks))
	for name := range decks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SavedDeckList returns all snapshots keyed by name.
func (s *Store) SavedDeckList() map[string]SavedDeck {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.savedDecksLocked()
}

// SavedDeckCards returns the cards of the named snapshot.
func (s *Store) SavedDeckCards(name string) ([]cards.Card, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	decks := s.savedDecksLocked()
	snapshot, ok := decks[name]
	if !ok {
		return nil, false
	}
	return append([]cards.Card(nil), snapshot.Cards...), true
}

// SavedDecks returns name → cards for every snapshot (the match state
// machine's deck source view).
func (s *Store) SavedDecks() map[string][]cards.Card {
	s.mu.Lock()
	defer s.mu.Unlock()

	decks := s.savedDecksLocked()
	out := make(map[string][]cards.Card, len(decks))
	for name, snapshot := range decks {
		out[name] = append([]cards.Card(nil), snapshot.Cards...)
	}
	return out
}

// savedDecksLocked reads the saved-decks blob. Corrupt or absent blobs
// yield an empty map. Caller must hold s.mu.
func (s *Store) savedDecksLocked() map[string]SavedDeck {
	decks := make(map[string]SavedDeck)
	if _, err := s.blobs.Get(savedDecksKey, &decks); err != nil {
		slog.Warn("loading saved decks", "tag", "deck", "err", err)
	}
	return decks
}

// persistLocked writes the active deck blob. Caller must hold s.mu.
func (s *Store) persistLocked() {
	if err := s.blobs.Set(currentDeckKey, s.cards); err != nil {
		slog.Error("persisting active deck", "tag", "deck", "err", err)
	}
}

func totalHP(cs []cards.Card) int {
	sum := 0
	for _, c := range cs {
		sum += c.HP
	}
	return sum
}
