package game

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"tcg-companion-server/battle"
	"tcg-companion-server/cards"
	"tcg-companion-server/config"
	"tcg-companion-server/wsutil"
)

// Phase is the match state machine's current state.
type Phase int

const (
	DeckSelection Phase = iota
	DeckReveal
	CardSelection
	Battle
	RoundSummary
	GameOver
)

// String returns the protocol string for a Phase.
func (p Phase) String() string {
	switch p {
	case DeckSelection:
		return "deck_selection"
	case DeckReveal:
		return "deck_reveal"
	case CardSelection:
		return "card_selection"
	case Battle:
		return "battle"
	case RoundSummary:
		return "round_summary"
	case GameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// ActionType enumerates the kinds of actions a match can process.
type ActionType int

const (
	ActionSelectDeck ActionType = iota
	ActionSelectCard
	ActionContinue
	ActionDisconnect
	ActionBattleRevealDone // internal: fired when the reveal delay expires
)

// Action represents an event sent into the match's action channel.
type Action struct {
	Type   ActionType
	Seat   int    // 0 or 1
	Name   string // deck name (for SelectDeck)
	CardID string // card id (for SelectCard)
}

// DeckSource provides saved decks by name. Implemented by the deck store.
type DeckSource interface {
	SavedDeckCards(name string) ([]cards.Card, bool)
	SavedDecks() map[string][]cards.Card
}

// CardProvider re-fetches card details during battle preparation so the
// resolver sees fresh matchup data. May be nil (selections used as-is).
type CardProvider interface {
	GetCard(ctx context.Context, id string) (*cards.Card, error)
}

// OpponentPicker drives seat 1 in auto matches. May be nil (hot-seat).
type OpponentPicker interface {
	PickDeck(decks map[string][]cards.Card) (name string, deck []cards.Card, ok bool)
	PickCard(own, opponent []cards.Card) (cards.Card, bool)
}

const providerFetchTimeout = 15 * time.Second

// Game manages a single match. All mutation happens on the Run goroutine,
// fed by the Actions channel; timers post internal actions rather than
// touching state, so every transition is atomic.
type Game struct {
	ID       string
	Config   *config.Config
	Players  [2]*Player
	Phase    Phase
	Round    int
	Result   *battle.Result
	Mode     battle.Mode
	Finished bool

	Decks    DeckSource
	Provider CardProvider
	Picker   OpponentPicker

	Actions chan Action
	Done    chan struct{}

	revealCancel chan struct{}

	// newTimer builds the reveal timer; tests substitute it to advance
	// virtual time instead of sleeping.
	newTimer func(d time.Duration) <-chan time.Time

	// OnGameEnd is called once when the match ends, for history recording
	// and session cleanup. endReason is "completed" or "abandoned".
	OnGameEnd func(g *Game, endReason string)
}

// NewGame creates a match in deck_selection with round counter at 1.
func NewGame(id string, cfg *config.Config, decks DeckSource, provider CardProvider, picker OpponentPicker, p0, p1 *Player) *Game {
	return &Game{
		ID:       id,
		Config:   cfg,
		Players:  [2]*Player{p0, p1},
		Phase:    DeckSelection,
		Round:    1,
		Mode:     battle.ParseMode(cfg.BattleMode),
		Decks:    decks,
		Provider: provider,
		Picker:   picker,
		Actions:  make(chan Action, 16),
		Done:     make(chan struct{}),
		newTimer: func(d time.Duration) <-chan time.Time { return time.After(d) },
	}
}

// Run is the main match loop. It processes actions sequentially.
// It should be run as a goroutine.
func (g *Game) Run() {
	defer close(g.Done)

	g.broadcastState()

	for {
		action, ok := <-g.Actions
		if !ok || g.Finished {
			return
		}
		switch action.Type {
		case ActionSelectDeck:
			g.handleSelectDeck(action.Seat, action.Name)
		case ActionSelectCard:
			g.handleSelectCard(action.Seat, action.CardID)
		case ActionContinue:
			g.handleContinue()
		case ActionBattleRevealDone:
			g.handleBattleRevealDone()
		case ActionDisconnect:
			g.handleDisconnect()
			return
		}
		if g.Finished {
			return
		}
	}
}

// startRevealTimer schedules the internal reveal action. With a zero or
// negative delay the result is disclosed immediately (tests rely on this).
func (g *Game) startRevealTimer() {
	delay := time.Duration(g.Config.BattleRevealMS) * time.Millisecond
	if delay <= 0 {
		g.handleBattleRevealDone()
		return
	}
	g.cancelRevealTimer()
	g.revealCancel = make(chan struct{})
	cancel := g.revealCancel
	timer := g.newTimer(delay)
	go func() {
		select {
		case <-timer:
			select {
			case g.Actions <- Action{Type: ActionBattleRevealDone}:
			case <-g.Done:
			}
		case <-cancel:
		}
	}()
}

// cancelRevealTimer stops a pending reveal timer goroutine. Safe if none.
func (g *Game) cancelRevealTimer() {
	if g.revealCancel != nil {
		close(g.revealCancel)
		g.revealCancel = nil
	}
}

func (g *Game) handleDisconnect() {
	g.cancelRevealTimer()
	if g.Finished {
		return
	}
	g.Finished = true
	slog.Info("match abandoned", "tag", "game", "match", g.ID, "round", g.Round)
	if g.OnGameEnd != nil && g.Phase != GameOver {
		g.OnGameEnd(g, "abandoned")
	}
}

func (g *Game) sendError(seat int, message string) {
	p := g.Players[seat]
	if p == nil || p.Send == nil {
		return
	}
	msg := map[string]string{
		"type":    "error",
		"message": message,
	}
	data, _ := json.Marshal(msg)
	wsutil.SafeSend(p.Send, data)
}

// broadcast sends a message once per distinct client channel. In hot-seat
// matches both seats share one channel; in auto matches seat 1 has none.
func (g *Game) broadcast(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("marshaling match message", "tag", "game", "err", err)
		return
	}
	var prev chan []byte
	for _, p := range g.Players {
		if p == nil || p.Send == nil || p.Send == prev {
			continue
		}
		wsutil.SafeSend(p.Send, data)
		prev = p.Send
	}
}

func (g *Game) broadcastState() {
	g.broadcast(BuildState(g))
}

// matchWinnerSeat returns the seat with the strictly higher score.
// Equal scores cannot happen at game over: the threshold is checked
// immediately after each single increment.
func (g *Game) matchWinnerSeat() int {
	if g.Players[0].Score > g.Players[1].Score {
		return 0
	}
	if g.Players[1].Score > g.Players[0].Score {
		return 1
	}
	return -1
}
