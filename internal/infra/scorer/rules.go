package scorer

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"newswatch/internal/domain/entity"
)

// baseScore is the starting relevance for every article before any
// keyword, geographic or urgency adjustment.
const baseScore = 5.0

// RulesConfig holds the tables driving the rule-based scorer.
// The same config must always produce the same score and rationale for the
// same article text; nothing here may depend on time or randomness.
type RulesConfig struct {
	// KeywordWeights maps a keyword (single word or phrase) to the score
	// it contributes when matched in the article title or summary.
	KeywordWeights map[string]float64

	// InternationalWords mark articles of international significance.
	InternationalBonus float64
	InternationalWords []string

	// HomeRegionWords mark articles relevant to the configured home region.
	HomeRegionBonus float64
	HomeRegionWords []string

	// UrgentWords and DevelopingWords drive the urgency bonus. An urgent
	// match adds UrgentBonus, otherwise a developing match adds
	// DevelopingBonus. The bonuses do not stack.
	UrgentBonus     float64
	UrgentWords     []string
	DevelopingBonus float64
	DevelopingWords []string
}

// DefaultRulesConfig returns the built-in scoring tables. Operators override
// them in the YAML config; the defaults favor hard political and economic
// news over regional items.
func DefaultRulesConfig() RulesConfig {
	return RulesConfig{
		KeywordWeights: map[string]float64{
			// Critical topics
			"war": 4, "terror": 4, "nuclear": 5, "coup": 5,
			"crisis": 3, "collapse": 4, "emergency": 2,

			// Politics
			"president": 3, "chancellor": 3, "election": 3, "referendum": 3,
			"government": 1, "parliament": 1, "minister": 1, "law": 1,
			"verdict": 2, "sanctions": 2,

			// Economy
			"economy": 1, "trade": 1, "inflation": 2, "recession": 3,
			"market": 1, "bank": 1, "rate cut": 1.5, "fed": 0.5,

			// Society
			"protests": 1.5, "strike": 1, "reform": 1, "scandal": 2,

			// Geopolitical actors
			"ukraine": 1, "russia": 1, "china": 1, "nato": 1, "israel": 1,
		},
		InternationalBonus: 2.0,
		InternationalWords: []string{"international", "global", "world", "worldwide", "eu", "nato", "un"},
		HomeRegionBonus:    1.0,
		HomeRegionWords:    []string{"germany", "berlin", "bundestag"},
		UrgentBonus:        2.0,
		UrgentWords:        []string{"breaking", "urgent", "just in"},
		DevelopingBonus:    1.0,
		DevelopingWords:    []string{"developing", "ongoing", "continues"},
	}
}

// Rules is the deterministic keyword scorer. It is both a first-class
// backend and the fallback target for every model-backed scorer.
type Rules struct {
	cfg RulesConfig

	// sortedKeywords fixes the match iteration order so rationales are
	// reproducible across calls.
	sortedKeywords []string
}

// NewRules creates a rule-based scorer from the given tables.
func NewRules(cfg RulesConfig) *Rules {
	keywords := make([]string, 0, len(cfg.KeywordWeights))
	for kw := range cfg.KeywordWeights {
		keywords = append(keywords, kw)
	}
	sort.Strings(keywords)

	return &Rules{cfg: cfg, sortedKeywords: keywords}
}

// Name implements Scorer.
func (r *Rules) Name() string { return "rules" }

// Score implements Scorer. It never returns an error: the rule tables are
// total over any input text.
func (r *Rules) Score(_ context.Context, article entity.Article) (entity.ScoredArticle, error) {
	text := normalizeForMatching(article.Title + " " + article.Summary)
	words := wordSet(text)

	score := baseScore
	var matched []string
	var reasons []string

	for _, kw := range r.sortedKeywords {
		if !matchKeyword(text, words, kw) {
			continue
		}
		weight := r.cfg.KeywordWeights[kw]
		score += weight
		matched = append(matched, kw)
		switch {
		case weight >= 3:
			reasons = append(reasons, "critical topic: "+kw)
		case weight >= 2:
			reasons = append(reasons, "important topic: "+kw)
		}
	}

	switch {
	case matchAny(text, words, r.cfg.InternationalWords):
		score += r.cfg.InternationalBonus
		reasons = append(reasons, "international significance")
	case matchAny(text, words, r.cfg.HomeRegionWords):
		score += r.cfg.HomeRegionBonus
		reasons = append(reasons, "home region relevance")
	}

	switch {
	case matchAny(text, words, r.cfg.UrgentWords):
		score += r.cfg.UrgentBonus
		reasons = append(reasons, "high urgency")
	case matchAny(text, words, r.cfg.DevelopingWords):
		score += r.cfg.DevelopingBonus
		reasons = append(reasons, "developing story")
	}

	score = entity.ClampScore(score)

	if len(reasons) == 0 {
		reasons = append(reasons, "standard news assessment")
	}

	return entity.ScoredArticle{
		Article:    article,
		Score:      score,
		Rationale:  fmt.Sprintf("%s: %s", priorityCategory(score), strings.Join(reasons, ", ")),
		ScorerName: r.Name(),
	}, nil
}

// MatchedKeywords returns the keywords that fire for the given article, in
// the same deterministic order Score applies them.
func (r *Rules) MatchedKeywords(article entity.Article) []string {
	text := normalizeForMatching(article.Title + " " + article.Summary)
	words := wordSet(text)

	var matched []string
	for _, kw := range r.sortedKeywords {
		if matchKeyword(text, words, kw) {
			matched = append(matched, kw)
		}
	}
	return matched
}

func priorityCategory(score float64) string {
	switch {
	case score >= 8:
		return "very high priority"
	case score >= 6:
		return "high priority"
	case score >= 4:
		return "medium priority"
	default:
		return "low priority"
	}
}

// normalizeForMatching lowercases the text and replaces punctuation with
// spaces so keyword matching sees clean word boundaries.
func normalizeForMatching(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func wordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(text) {
		set[w] = struct{}{}
	}
	return set
}

// matchKeyword matches single-word keywords against whole words only;
// "fed" must not fire inside "suffered". Phrases match as substrings of
// the normalized text.
func matchKeyword(text string, words map[string]struct{}, keyword string) bool {
	if strings.ContainsRune(keyword, ' ') {
		return strings.Contains(text, keyword)
	}
	_, ok := words[keyword]
	return ok
}

func matchAny(text string, words map[string]struct{}, keywords []string) bool {
	for _, kw := range keywords {
		if matchKeyword(text, words, kw) {
			return true
		}
	}
	return false
}
