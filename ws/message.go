package ws

import "encoding/json"

// InboundEnvelope is the generic envelope for all client-to-server messages.
// The Type field is used for routing; Raw holds the full JSON payload.
type InboundEnvelope struct {
	Type string          `json:"type"`
	Raw  json.RawMessage `json:"-"`
}

// UnmarshalJSON implements custom unmarshaling to capture the raw payload.
func (e *InboundEnvelope) UnmarshalJSON(data []byte) error {
	type typeOnly struct {
		Type string `json:"type"`
	}
	var t typeOnly
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	e.Type = t.Type
	e.Raw = json.RawMessage(data)
	return nil
}

// --- Client-to-Server message payloads ---

// AuthMsg carries a signed identity token; on success the client's display
// name is taken from the token subject.
type AuthMsg struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// SetNameMsg is sent by the client to declare a display name.
type SetNameMsg struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// StartMatchMsg asks for a new match. Mode is "hotseat" (one client plays
// both seats) or "auto" (seat 1 is the automatic opponent); empty means
// hotseat.
type StartMatchMsg struct {
	Type string `json:"type"`
	Mode string `json:"mode"`
}

// SelectDeckMsg picks a saved deck for a seat during deck selection.
type SelectDeckMsg struct {
	Type string `json:"type"`
	Seat int    `json:"seat"`
	Name string `json:"name"`
}

// SelectCardMsg picks a card from a seat's deck for the current round.
type SelectCardMsg struct {
	Type   string `json:"type"`
	Seat   int    `json:"seat"`
	CardID string `json:"cardId"`
}

// ContinueMsg advances past the deck reveal or the round summary.
type ContinueMsg struct {
	Type string `json:"type"`
}

// PlayAgainMsg leaves a finished match so a new one can be started.
type PlayAgainMsg struct {
	Type string `json:"type"`
}

// --- Server-to-Client messages ---

// ErrorMsg is sent when a client action is invalid.
type ErrorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// AuthOKMsg confirms a successful token authentication.
type AuthOKMsg struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// MatchStartedMsg is sent when a match has been created for the client.
type MatchStartedMsg struct {
	Type         string `json:"type"`
	MatchID      string `json:"matchId"`
	Mode         string `json:"mode"`
	OpponentName string `json:"opponentName"`
}

// ReadyMsg confirms the client has left its finished match.
type ReadyMsg struct {
	Type string `json:"type"`
}
