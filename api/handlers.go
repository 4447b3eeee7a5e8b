// Package api exposes the companion's REST surface: account registration,
// card search, deck editing and match history.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"tcg-companion-server/auth"
	"tcg-companion-server/cards"
	"tcg-companion-server/config"
	"tcg-companion-server/deck"
	"tcg-companion-server/matchmaking"
)

const bearerPrefix = "Bearer "

// HistorySource provides recorded match outcomes.
type HistorySource interface {
	History() []matchmaking.MatchRecord
}

// Handler holds dependencies for API handlers.
type Handler struct {
	Config  *config.Config
	Users   *auth.Service
	Decks   *deck.Store
	Cards   *cards.Client
	Matches HistorySource
}

// NewHandler creates a new API handler with the given dependencies.
func NewHandler(cfg *config.Config, users *auth.Service, decks *deck.Store, cardsClient *cards.Client, matches HistorySource) *Handler {
	return &Handler{
		Config:  cfg,
		Users:   users,
		Decks:   decks,
		Cards:   cardsClient,
		Matches: matches,
	}
}

// CORS sets CORS headers on the response. Call before writing body.
func CORS(w http.ResponseWriter, r *http.Request) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return true
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "tag", "api", "err", err)
	}
}

// extractUsername validates the Authorization header and returns the
// username, or the empty string on failure.
func (h *Handler) extractUsername(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return ""
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	username, err := auth.UsernameFromToken(h.Config.AuthSecret, token)
	if err != nil {
		return ""
	}
	return username
}

type credentials struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type sessionResponse struct {
	User  auth.User `json:"user"`
	Token string    `json:"token"`
}

// Register creates an account and returns the user with a session token.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if CORS(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.Users.Register(creds.Username, creds.Email)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	token, err := auth.IssueToken(h.Config.AuthSecret, user.Username)
	if err != nil {
		slog.Error("issuing token", "tag", "api", "err", err)
		http.Error(w, "could not issue token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{User: user, Token: token})
}

// Login looks up an account by username or email and returns a session
// token. There is no password; identity is a convenience, not a wall.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if CORS(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var creds struct {
		Identifier string `json:"identifier"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user, ok := h.Users.Lookup(creds.Identifier)
	if !ok {
		http.Error(w, "unknown user", http.StatusNotFound)
		return
	}

	token, err := auth.IssueToken(h.Config.AuthSecret, user.Username)
	if err != nil {
		slog.Error("issuing token", "tag", "api", "err", err)
		http.Error(w, "could not issue token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{User: user, Token: token})
}

type cardListResponse struct {
	Cards      []cards.Card `json:"cards"`
	Page       int          `json:"page"`
	PageSize   int          `json:"pageSize"`
	TotalCount int          `json:"totalCount"`
}

// ListCards proxies a paginated card search to the card provider.
func (h *Handler) ListCards(w http.ResponseWriter, r *http.Request) {
	if CORS(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.Cards == nil {
		http.Error(w, "card provider not configured", http.StatusServiceUnavailable)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize <= 0 {
		pageSize = h.Config.CardAPIPageSize
	}

	list, total, err := h.Cards.ListCards(r.Context(), page, pageSize)
	if err != nil {
		slog.Error("listing cards", "tag", "api", "err", err)
		http.Error(w, "card provider unavailable", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, cardListResponse{
		Cards:      list,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
	})
}

// GetCard proxies a single card lookup by id.
func (h *Handler) GetCard(w http.ResponseWriter, r *http.Request) {
	if CORS(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.Cards == nil {
		http.Error(w, "card provider not configured", http.StatusServiceUnavailable)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "missing id", http.StatusBadRequest)
		return
	}

	card, err := h.Cards.GetCard(r.Context(), id)
	if err != nil {
		if cards.IsNotFound(err) {
			http.Error(w, "card not found", http.StatusNotFound)
			return
		}
		slog.Error("fetching card", "tag", "api", "card", id, "err", err)
		http.Error(w, "card provider unavailable", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

type deckResponse struct {
	Cards []cards.Card `json:"cards"`
	Stats deck.Stats   `json:"stats"`
}

func (h *Handler) deckState() deckResponse {
	return deckResponse{Cards: h.Decks.Cards(), Stats: h.Decks.Stats()}
}

// CurrentDeck returns the working deck and its stats.
func (h *Handler) CurrentDeck(w http.ResponseWriter, r *http.Request) {
	if CORS(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.deckState())
}

type deckMutationResponse struct {
	Result deck.Result  `json:"result"`
	Cards  []cards.Card `json:"cards"`
	Stats  deck.Stats   `json:"stats"`
}

// AddCard tries to add a card to the working deck. The deck's constraint
// verdict is returned with 200 either way; the result carries the message.
func (h *Handler) AddCard(w http.ResponseWriter, r *http.Request) {
	if CORS(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var card cards.Card
	if err := json.NewDecoder(r.Body).Decode(&card); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if card.ID == "" || card.Name == "" {
		http.Error(w, "card id and name are required", http.StatusBadRequest)
		return
	}

	result := h.Decks.Add(card)
	state := h.deckState()
	writeJSON(w, http.StatusOK, deckMutationResponse{Result: result, Cards: state.Cards, Stats: state.Stats})
}

// RemoveCard removes a card from the working deck by id.
func (h *Handler) RemoveCard(w http.ResponseWriter, r *http.Request) {
	if CORS(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		CardID string `json:"cardId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	h.Decks.Remove(req.CardID)
	writeJSON(w, http.StatusOK, h.deckState())
}

// ClearDeck empties the working deck.
func (h *Handler) ClearDeck(w http.ResponseWriter, r *http.Request) {
	if CORS(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.Decks.Clear()
	writeJSON(w, http.StatusOK, h.deckState())
}

// SaveDeck snapshots the working deck under a name.
func (h *Handler) SaveDeck(w http.ResponseWriter, r *http.Request) {
	if CORS(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		http.Error(w, "deck name is required", http.StatusBadRequest)
		return
	}
	if len(h.Decks.Cards()) == 0 {
		http.Error(w, "cannot save an empty deck", http.StatusBadRequest)
		return
	}

	h.Decks.Save(req.Name)
	writeJSON(w, http.StatusOK, h.Decks.SavedDeckList())
}

// LoadDeck replaces the working deck with a saved one.
func (h *Handler) LoadDeck(w http.ResponseWriter, r *http.Request) {
	if CORS(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if !h.Decks.Load(req.Name) {
		http.Error(w, "unknown deck", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, h.deckState())
}

// SavedDecks lists all saved decks with their summaries.
func (h *Handler) SavedDecks(w http.ResponseWriter, r *http.Request) {
	if CORS(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.Decks.SavedDeckList())
}

// History returns recorded match outcomes for the authenticated user.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	if CORS(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if h.extractUsername(r) == "" {
		http.Error(w, "authorization required", http.StatusUnauthorized)
		return
	}

	records := []matchmaking.MatchRecord{}
	if h.Matches != nil {
		records = h.Matches.History()
	}
	writeJSON(w, http.StatusOK, records)
}
