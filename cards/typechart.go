package cards

import "strings"

// TypeMatchup lists the types an elemental type is strong and weak against.
type TypeMatchup struct {
	Strengths  []string
	Weaknesses []string
}

// TypeChart is the static elemental matchup table used by the legacy battle
// mode and the counter picker. Per-card weakness/resistance lists override it
// in the refined mode.
var TypeChart = map[string]TypeMatchup{
	"Fire": {
		Strengths:  []string{"Grass", "Bug", "Steel", "Ice"},
		Weaknesses: []string{"Water", "Ground", "Rock"},
	},
	"Water": {
		Strengths:  []string{"Fire", "Ground", "Rock"},
		Weaknesses: []string{"Grass", "Electric"},
	},
	"Grass": {
		Strengths:  []string{"Water", "Ground", "Rock"},
		Weaknesses: []string{"Fire", "Ice", "Poison", "Flying", "Bug"},
	},
	"Electric": {
		Strengths:  []string{"Water", "Flying"},
		Weaknesses: []string{"Ground"},
	},
	"Psychic": {
		Strengths:  []string{"Fighting", "Poison"},
		Weaknesses: []string{"Dark", "Ghost"},
	},
	"Fighting": {
		Strengths:  []string{"Normal", "Ice", "Rock", "Dark", "Steel"},
		Weaknesses: []string{"Flying", "Psychic", "Fairy"},
	},
}

// StrongAgainst reports whether attacker's type is listed as strong
// against defender's type in the static chart.
func StrongAgainst(attacker, defender string) bool {
	mu, ok := TypeChart[attacker]
	if !ok {
		return false
	}
	for _, t := range mu.Strengths {
		if strings.EqualFold(t, defender) {
			return true
		}
	}
	return false
}
