package ws

import (
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"tcg-companion-server/auth"
	"tcg-companion-server/game"
	"tcg-companion-server/matcherrors"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	Hub  *Hub
	Conn *websocket.Conn
	Send chan []byte
	Name string
	Game *game.Game

	// AutoMatch is true when the current match has an automatic opponent
	// in seat 1; seat 1 actions from the client are then rejected.
	AutoMatch bool
}

// ReadPump pumps messages from the websocket connection to the hub.
// It runs in its own goroutine per connection.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Error("websocket read", "tag", "ws", "err", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// WritePump pumps messages from the send channel to the websocket connection.
// It runs in its own goroutine per connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(data []byte) {
	var envelope InboundEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		c.sendError("Invalid message format.")
		return
	}

	switch envelope.Type {
	case "auth":
		c.handleAuth(envelope.Raw)
	case "set_name":
		c.handleSetName(envelope.Raw)
	case "start_match":
		c.handleStartMatch(envelope.Raw)
	case "select_deck":
		c.handleSelectDeck(envelope.Raw)
	case "select_card":
		c.handleSelectCard(envelope.Raw)
	case "continue":
		c.handleContinue()
	case "play_again":
		c.handlePlayAgain()
	default:
		c.sendError("Unknown message type: " + envelope.Type)
	}
}

func (c *Client) handleAuth(raw json.RawMessage) {
	var msg AuthMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid auth message.")
		return
	}

	name, err := auth.UsernameFromToken(c.Hub.Config.AuthSecret, msg.Token)
	if err != nil {
		c.sendError("Invalid token.")
		return
	}
	c.Name = name

	ok := AuthOKMsg{Type: "auth_ok", Name: name}
	data, _ := json.Marshal(ok)
	select {
	case c.Send <- data:
	default:
	}
}

func (c *Client) handleSetName(raw json.RawMessage) {
	var msg SetNameMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid set_name message.")
		return
	}

	name := strings.TrimSpace(msg.Name)
	if len(name) < 1 || len(name) > c.Hub.Config.MaxNameLength {
		c.sendError("Name must be between 1 and " + strconv.Itoa(c.Hub.Config.MaxNameLength) + " characters.")
		return
	}

	if c.Game != nil && !c.Game.Finished {
		c.sendError("Cannot change name while in a match.")
		return
	}

	c.Name = name
}

func (c *Client) handleStartMatch(raw json.RawMessage) {
	var msg StartMatchMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid start_match message.")
		return
	}

	if c.Name == "" {
		c.sendError("Set a name or authenticate before starting a match.")
		return
	}

	err := c.Hub.Sessions.StartMatch(c, msg.Mode)
	switch {
	case err == nil:
	case errors.Is(err, matcherrors.ErrAlreadyInMatch):
		c.sendError("You already have a match in progress.")
	case errors.Is(err, matcherrors.ErrNoSavedDecks):
		c.sendError("Save at least one deck before starting a match.")
	case errors.Is(err, matcherrors.ErrUnknownMode):
		c.sendError("Unknown match mode: " + msg.Mode)
	default:
		slog.Error("starting match", "tag", "ws", "err", err)
		c.sendError("Could not start a match.")
	}
}

func (c *Client) handleSelectDeck(raw json.RawMessage) {
	if c.Game == nil {
		c.sendError("You are not in a match.")
		return
	}

	var msg SelectDeckMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid select_deck message.")
		return
	}
	if !c.controlsSeat(msg.Seat) {
		return
	}

	c.Game.Actions <- game.Action{
		Type: game.ActionSelectDeck,
		Seat: msg.Seat,
		Name: msg.Name,
	}
}

func (c *Client) handleSelectCard(raw json.RawMessage) {
	if c.Game == nil {
		c.sendError("You are not in a match.")
		return
	}

	var msg SelectCardMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid select_card message.")
		return
	}
	if !c.controlsSeat(msg.Seat) {
		return
	}

	c.Game.Actions <- game.Action{
		Type:   game.ActionSelectCard,
		Seat:   msg.Seat,
		CardID: msg.CardID,
	}
}

func (c *Client) handleContinue() {
	if c.Game == nil {
		c.sendError("You are not in a match.")
		return
	}
	c.Game.Actions <- game.Action{Type: game.ActionContinue}
}

func (c *Client) handlePlayAgain() {
	if c.Game != nil && !c.Game.Finished {
		c.sendError("Cannot leave a match that is still in progress.")
		return
	}

	c.Game = nil
	c.AutoMatch = false

	ready := ReadyMsg{Type: "ready"}
	data, _ := json.Marshal(ready)
	select {
	case c.Send <- data:
	default:
	}
}

// controlsSeat rejects seat 1 actions when an automatic opponent holds it.
func (c *Client) controlsSeat(seat int) bool {
	if seat < 0 || seat > 1 {
		c.sendError("Invalid seat.")
		return false
	}
	if c.AutoMatch && seat == 1 {
		c.sendError("The automatic opponent controls that seat.")
		return false
	}
	return true
}

func (c *Client) sendError(message string) {
	msg := ErrorMsg{Type: "error", Message: message}
	data, _ := json.Marshal(msg)
	select {
	case c.Send <- data:
	default:
	}
}
