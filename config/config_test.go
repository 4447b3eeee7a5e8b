package config

import (
	"os"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.MaxCardsInDeck != 6 {
		t.Errorf("expected MaxCardsInDeck=6, got %d", cfg.MaxCardsInDeck)
	}
	if cfg.MaxSameCard != 1 {
		t.Errorf("expected MaxSameCard=1, got %d", cfg.MaxSameCard)
	}
	if cfg.MaxTotalHP != 400 {
		t.Errorf("expected MaxTotalHP=400, got %d", cfg.MaxTotalHP)
	}
	if cfg.WinThreshold != 3 {
		t.Errorf("expected WinThreshold=3, got %d", cfg.WinThreshold)
	}
	if cfg.BattleMode != "refined" {
		t.Errorf("expected BattleMode=refined, got %q", cfg.BattleMode)
	}
	if cfg.WSPort != 8080 {
		t.Errorf("expected WSPort=8080, got %d", cfg.WSPort)
	}
	if cfg.CardAPIBaseURL != "https://api.pokemontcg.io/v2" {
		t.Errorf("unexpected CardAPIBaseURL: %q", cfg.CardAPIBaseURL)
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	os.Setenv("MAX_TOTAL_HP", "1000")
	os.Setenv("WIN_THRESHOLD", "5")
	os.Setenv("BATTLE_MODE", "legacy")
	os.Setenv("WS_PORT", "9090")
	defer func() {
		os.Unsetenv("MAX_TOTAL_HP")
		os.Unsetenv("WIN_THRESHOLD")
		os.Unsetenv("BATTLE_MODE")
		os.Unsetenv("WS_PORT")
	}()

	cfg := Load()

	if cfg.MaxTotalHP != 1000 {
		t.Errorf("expected MaxTotalHP=1000 after env override, got %d", cfg.MaxTotalHP)
	}
	if cfg.WinThreshold != 5 {
		t.Errorf("expected WinThreshold=5 after env override, got %d", cfg.WinThreshold)
	}
	if cfg.BattleMode != "legacy" {
		t.Errorf("expected BattleMode=legacy after env override, got %q", cfg.BattleMode)
	}
	if cfg.WSPort != 9090 {
		t.Errorf("expected WSPort=9090 after env override, got %d", cfg.WSPort)
	}
}

func TestLoadInvalidEnvValueKeepsDefault(t *testing.T) {
	os.Setenv("MAX_CARDS_IN_DECK", "six")
	defer os.Unsetenv("MAX_CARDS_IN_DECK")

	cfg := Load()

	if cfg.MaxCardsInDeck != 6 {
		t.Errorf("expected MaxCardsInDeck to keep default 6, got %d", cfg.MaxCardsInDeck)
	}
}
