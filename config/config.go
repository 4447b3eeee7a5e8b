package config

import (
	"encoding/json"
	"log"
	"os"
	"strconv"
)

// Config holds all configurable server parameters.
type Config struct {
	// Deck limits. The HP budget differed between app revisions (400 vs 1000),
	// so it is configuration, not a constant.
	MaxCardsInDeck int `json:"max_cards_in_deck"`
	MaxSameCard    int `json:"max_same_card"`
	MaxTotalHP     int `json:"max_total_hp"`

	// WinThreshold is the score that ends a match.
	WinThreshold int `json:"win_threshold"`

	// BattleRevealMS delays disclosure of the battle result so the client can
	// animate. The result itself is computed before the delay starts.
	// 0 disables the delay (used by tests).
	BattleRevealMS int `json:"battle_reveal_ms"`

	// BattleMode selects the resolver: "refined" (per-card weakness/resistance
	// lists, draws possible) or "legacy" (static type chart, no draws).
	BattleMode string `json:"battle_mode"`

	// Card data provider (pokemontcg.io v2 compatible).
	CardAPIBaseURL  string `json:"card_api_base_url"`
	CardAPIKey      string `json:"card_api_key"`
	CardAPIPageSize int    `json:"card_api_page_size"`

	// StorePath is the local blob-store file. Empty disables persistence.
	StorePath string `json:"store_path"`

	// AuthSecret signs identity tokens. Empty disables token issuance.
	AuthSecret string `json:"auth_secret"`

	// AIProfile names the auto-opponent picker used for "auto" matches.
	AIProfile string `json:"ai_profile"`

	MaxNameLength int `json:"max_name_length"`
	WSPort        int `json:"ws_port"`
}

// Defaults returns a Config with all default values.
func Defaults() *Config {
	return &Config{
		MaxCardsInDeck:  6,
		MaxSameCard:     1,
		MaxTotalHP:      400,
		WinThreshold:    3,
		BattleRevealMS:  4000,
		BattleMode:      "refined",
		CardAPIBaseURL:  "https://api.pokemontcg.io/v2",
		CardAPIKey:      "",
		CardAPIPageSize: 20,
		StorePath:       "companion_data.json",
		AuthSecret:      "",
		AIProfile:       "random",
		MaxNameLength:   24,
		WSPort:          8080,
	}
}

// Load reads configuration from an optional config.json file,
// then applies environment variable overrides. Fields not set
// in either source retain their default values.
func Load() *Config {
	cfg := Defaults()

	if f, err := os.Open("config.json"); err == nil {
		defer f.Close()
		if err := json.NewDecoder(f).Decode(cfg); err != nil {
			log.Printf("Warning: failed to parse config.json: %v", err)
		}
	}

	overrideInt(&cfg.MaxCardsInDeck, "MAX_CARDS_IN_DECK")
	overrideInt(&cfg.MaxSameCard, "MAX_SAME_CARD")
	overrideInt(&cfg.MaxTotalHP, "MAX_TOTAL_HP")
	overrideInt(&cfg.WinThreshold, "WIN_THRESHOLD")
	overrideInt(&cfg.BattleRevealMS, "BATTLE_REVEAL_MS")
	overrideString(&cfg.BattleMode, "BATTLE_MODE")
	overrideString(&cfg.CardAPIBaseURL, "CARD_API_BASE_URL")
	overrideString(&cfg.CardAPIKey, "CARD_API_KEY")
	overrideInt(&cfg.CardAPIPageSize, "CARD_API_PAGE_SIZE")
	overrideString(&cfg.StorePath, "STORE_PATH")
	overrideString(&cfg.AuthSecret, "AUTH_SECRET")
	overrideString(&cfg.AIProfile, "AI_PROFILE")
	overrideInt(&cfg.MaxNameLength, "MAX_NAME_LENGTH")
	overrideInt(&cfg.WSPort, "WS_PORT")

	return cfg
}

func overrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*field = n
		} else {
			log.Printf("Warning: invalid value for %s: %q", envKey, val)
		}
	}
}

func overrideString(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}
