package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"tcg-companion-server/api"
	"tcg-companion-server/auth"
	"tcg-companion-server/cards"
	"tcg-companion-server/config"
	"tcg-companion-server/deck"
	"tcg-companion-server/game"
	"tcg-companion-server/loghandler"
	"tcg-companion-server/matchmaking"
	"tcg-companion-server/storage"
	"tcg-companion-server/ws"
)

func main() {
	slog.SetDefault(slog.New(loghandler.NewCompactHandler(os.Stdout, slog.LevelInfo)))

	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found; using environment variables", "tag", "main")
	}

	cfg := config.Load()
	slog.Info("configuration loaded", "tag", "main",
		"maxCards", cfg.MaxCardsInDeck, "maxHP", cfg.MaxTotalHP,
		"winThreshold", cfg.WinThreshold, "battleMode", cfg.BattleMode,
		"port", cfg.WSPort)

	if cfg.AuthSecret == "" {
		slog.Warn("AUTH_SECRET is not set; issued tokens will not survive a restart securely", "tag", "main")
	}

	blobs, err := storage.NewStore(cfg.StorePath)
	if err != nil {
		slog.Error("opening data store", "tag", "main", "err", err)
		os.Exit(1)
	}

	users := auth.NewService(blobs)
	decks := deck.NewStore(cfg, blobs)

	var provider *cards.Client
	if cfg.CardAPIBaseURL != "" {
		provider = cards.NewClient(cfg.CardAPIBaseURL, cfg.CardAPIKey)
	} else {
		slog.Warn("CARD_API_BASE_URL is not set; card search and battle refresh are disabled", "tag", "main")
	}

	manager := matchmaking.NewManager(cfg, decks, cardProvider(provider), blobs)

	hub := ws.NewHub(cfg, manager)
	go hub.Run(context.Background())

	handler := api.NewHandler(cfg, users, decks, provider, manager)

	http.HandleFunc("/ws", hub.ServeWS)
	http.HandleFunc("/api/register", handler.Register)
	http.HandleFunc("/api/login", handler.Login)
	http.HandleFunc("/api/cards", handler.ListCards)
	http.HandleFunc("/api/card", handler.GetCard)
	http.HandleFunc("/api/deck", handler.CurrentDeck)
	http.HandleFunc("/api/deck/add", handler.AddCard)
	http.HandleFunc("/api/deck/remove", handler.RemoveCard)
	http.HandleFunc("/api/deck/clear", handler.ClearDeck)
	http.HandleFunc("/api/deck/save", handler.SaveDeck)
	http.HandleFunc("/api/deck/load", handler.LoadDeck)
	http.HandleFunc("/api/decks", handler.SavedDecks)
	http.HandleFunc("/api/history", handler.History)

	addr := fmt.Sprintf(":%d", cfg.WSPort)
	slog.Info("companion server listening", "tag", "main", "addr", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		slog.Error("server stopped", "tag", "main", "err", err)
		os.Exit(1)
	}
}

// cardProvider keeps the manager's interface field nil when no client is
// configured, so battles skip the refresh step instead of calling through
// a typed nil pointer.
func cardProvider(c *cards.Client) game.CardProvider {
	if c == nil {
		return nil
	}
	return c
}
