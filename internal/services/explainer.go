package services

import (
	"fmt"
	"math"
	"strings"

	"github.com/mentiva/studyloop/pkg/models"
)

// Recommendation explanations are built from an ordered rule list. Each rule
// inspects the recommended game against the favorite set and contributes at
// most one clause; clauses are joined with a fixed separator. The rules are
// checked in priority order: category, difficulty, duration proximity.

const (
	explanationSeparator = " • "

	// durationProximityMinutes is how close a game's duration must be to the
	// favorites' mean to count as "similar duration".
	durationProximityMinutes = 5.0
)

type explanationRule func(game models.Game, favorites []models.Game) (string, bool)

// RecommendationExplainer produces the human-readable reason attached to a
// recommendation. Pure and deterministic for the same inputs.
type RecommendationExplainer struct {
	rules []explanationRule
}

func NewRecommendationExplainer() *RecommendationExplainer {
	return &RecommendationExplainer{
		rules: []explanationRule{
			categoryMatchRule,
			difficultyMatchRule,
			durationProximityRule,
		},
	}
}

// Explain runs the rule list over the favorite set. When no rule fires it
// falls back to a generic line so every recommendation carries a reason.
func (re *RecommendationExplainer) Explain(game models.Game, favorites []models.Game) string {
	if len(favorites) == 0 {
		return popularityExplanation
	}

	var clauses []string
	for _, rule := range re.rules {
		if clause, ok := rule(game, favorites); ok {
			clauses = append(clauses, clause)
		}
	}

	if len(clauses) == 0 {
		return "Highly rated game in a related category"
	}

	return strings.Join(clauses, explanationSeparator)
}

func categoryMatchRule(game models.Game, favorites []models.Game) (string, bool) {
	for _, fav := range favorites {
		if fav.Category == game.Category {
			return fmt.Sprintf("Similar to %s (same category: %s)", fav.Title, game.Category), true
		}
	}
	return "", false
}

func difficultyMatchRule(game models.Game, favorites []models.Game) (string, bool) {
	for _, fav := range favorites {
		if strings.EqualFold(fav.Difficulty, game.Difficulty) {
			return fmt.Sprintf("Matches your preferred difficulty: %s", game.Difficulty), true
		}
	}
	return "", false
}

func durationProximityRule(game models.Game, favorites []models.Game) (string, bool) {
	total := 0
	for _, fav := range favorites {
		total += fav.EstimatedTime
	}
	mean := float64(total) / float64(len(favorites))

	if math.Abs(float64(game.EstimatedTime)-mean) < durationProximityMinutes {
		return fmt.Sprintf("Similar duration to games you enjoy (~%d min)", game.EstimatedTime), true
	}
	return "", false
}
