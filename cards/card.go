package cards

import (
	"strconv"
	"strings"
)

// Matchup is a per-card declared relationship to an opposing type
// (a weakness or resistance entry), with the printed modifier ("×2", "-30").
type Matchup struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

// SetInfo is the card's set metadata as returned by the provider.
type SetInfo struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name,omitempty"`
	Series string `json:"series,omitempty"`
}

// Card is the app's simplified model of one playable card.
// ID is stable per distinct printed card; Name is the key for the
// max-copies deck rule, not ID.
type Card struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Image       string    `json:"image,omitempty"`
	HP          int       `json:"hp"`
	Types       []string  `json:"types,omitempty"`
	Weaknesses  []Matchup `json:"weaknesses,omitempty"`
	Resistances []Matchup `json:"resistances,omitempty"`
	Set         SetInfo   `json:"set"`
}

// FirstType returns the card's first declared type, or "" when typeless.
// Only the first type participates in matchup resolution.
func (c *Card) FirstType() string {
	if len(c.Types) == 0 {
		return ""
	}
	return c.Types[0]
}

// WeakTo reports whether the card declares a weakness against the given type.
func (c *Card) WeakTo(t string) bool {
	for _, m := range c.Weaknesses {
		if strings.EqualFold(m.Type, t) {
			return true
		}
	}
	return false
}

// ResistsTo reports whether the card declares a resistance against the given type.
func (c *Card) ResistsTo(t string) bool {
	for _, m := range c.Resistances {
		if strings.EqualFold(m.Type, t) {
			return true
		}
	}
	return false
}

// ParseHP normalizes the provider's HP field, a free-form string
// ("70", "None", sometimes empty). Absent or unparseable HP is 0.
func ParseHP(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
