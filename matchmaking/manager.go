// Package matchmaking creates and tracks match sessions. Unlike a queue
// pairing strangers, every match here is local: one client either plays
// both seats (hot-seat) or faces an automatic opponent.
package matchmaking

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"tcg-companion-server/ai"
	"tcg-companion-server/config"
	"tcg-companion-server/game"
	"tcg-companion-server/matcherrors"
	"tcg-companion-server/storage"
	"tcg-companion-server/ws"
	"tcg-companion-server/wsutil"
)

const historyKey = "matchHistory"

// ModeHotSeat and ModeAuto are the supported match modes.
const (
	ModeHotSeat = "hotseat"
	ModeAuto    = "auto"
)

// SeatRecord is one seat's line in a finished match's record.
type SeatRecord struct {
	Name  string `json:"name"`
	Deck  string `json:"deck"`
	Score int    `json:"score"`
}

// MatchRecord is the persisted summary of a finished match.
type MatchRecord struct {
	ID      string        `json:"id"`
	Mode    string        `json:"mode"`
	Seats   [2]SeatRecord `json:"seats"`
	Winner  string        `json:"winner,omitempty"`
	Rounds  int           `json:"rounds"`
	Reason  string        `json:"reason"`
	EndedAt time.Time     `json:"endedAt"`
}

// Manager creates match sessions and records their outcomes.
type Manager struct {
	mu       sync.Mutex
	cfg      *config.Config
	decks    game.DeckSource
	provider game.CardProvider
	blobs    *storage.Store
	active   map[string]*game.Game
}

// NewManager creates a Manager. provider and blobs may be nil.
func NewManager(cfg *config.Config, decks game.DeckSource, provider game.CardProvider, blobs *storage.Store) *Manager {
	return &Manager{
		cfg:      cfg,
		decks:    decks,
		provider: provider,
		blobs:    blobs,
		active:   make(map[string]*game.Game),
	}
}

// StartMatch creates a match for the client in the given mode and starts
// its goroutine. The empty mode means hot-seat.
func (m *Manager) StartMatch(c *ws.Client, mode string) error {
	if mode == "" {
		mode = ModeHotSeat
	}
	if mode != ModeHotSeat && mode != ModeAuto {
		return matcherrors.ErrUnknownMode
	}
	if c.Game != nil && !c.Game.Finished {
		return matcherrors.ErrAlreadyInMatch
	}
	if len(m.decks.SavedDecks()) == 0 {
		return matcherrors.ErrNoSavedDecks
	}

	matchID := uuid.NewString()
	p0 := &game.Player{Name: c.Name, Send: c.Send}

	var p1 *game.Player
	var picker game.OpponentPicker
	if mode == ModeAuto {
		p := ai.New(m.cfg.AIProfile)
		picker = p
		p1 = &game.Player{Name: "CPU (" + p.Name() + ")"}
	} else {
		p1 = &game.Player{Name: "Player 2", Send: c.Send}
	}

	g := game.NewGame(matchID, m.cfg, m.decks, m.provider, picker, p0, p1)
	g.OnGameEnd = func(g *game.Game, endReason string) {
		m.recordEnd(g, mode, endReason)
	}

	m.mu.Lock()
	m.active[matchID] = g
	m.mu.Unlock()

	c.Game = g
	c.AutoMatch = mode == ModeAuto

	slog.Info("match created", "tag", "matchmaking",
		"match", matchID, "mode", mode, "player", c.Name)

	started := ws.MatchStartedMsg{
		Type:         "match_started",
		MatchID:      matchID,
		Mode:         mode,
		OpponentName: p1.Name,
	}
	data, _ := json.Marshal(started)
	wsutil.SafeSend(c.Send, data)

	go g.Run()
	return nil
}

// ActiveCount reports how many matches are currently running.
func (m *Manager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}

// History returns all recorded matches, oldest first.
func (m *Manager) History() []MatchRecord {
	var records []MatchRecord
	if _, err := m.blobs.Get(historyKey, &records); err != nil {
		slog.Warn("reading match history", "tag", "matchmaking", "err", err)
	}
	return records
}

// recordEnd persists the finished match and drops it from the active set.
func (m *Manager) recordEnd(g *game.Game, mode, endReason string) {
	record := MatchRecord{
		ID:      g.ID,
		Mode:    mode,
		Rounds:  g.Round,
		Reason:  endReason,
		EndedAt: time.Now(),
	}
	for seat, p := range g.Players {
		record.Seats[seat] = SeatRecord{Name: p.Name, Deck: p.DeckName, Score: p.Score}
	}
	if g.Players[0].Score != g.Players[1].Score {
		winner := g.Players[0]
		if g.Players[1].Score > winner.Score {
			winner = g.Players[1]
		}
		record.Winner = winner.Name
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.active, g.ID)

	var records []MatchRecord
	if _, err := m.blobs.Get(historyKey, &records); err != nil {
		slog.Warn("reading match history", "tag", "matchmaking", "err", err)
	}
	records = append(records, record)
	if err := m.blobs.Set(historyKey, records); err != nil {
		slog.Error("writing match history", "tag", "matchmaking", "err", err)
	}
}
