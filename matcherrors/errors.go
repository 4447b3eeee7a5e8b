package matcherrors

import "errors"

// Match session sentinel errors. Used by both matchmaking and ws packages
// to avoid circular imports.
var (
	ErrAlreadyInMatch = errors.New("already in a match")
	ErrNoSavedDecks   = errors.New("no saved decks")
	ErrUnknownMode    = errors.New("unknown match mode")
)
