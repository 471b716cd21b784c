package classifier

import (
	"strings"

	"honeypot-service/internal/models"
	"honeypot-service/internal/signature"
)

// familyMatches is the ordered match result for one signature family.
type familyMatches struct {
	family  *signature.Family
	ruleIDs []string
}

// Classify assigns an attack category and severity to an arbitrary payload.
// It is pure and total: any input, including the empty string, yields a
// result, and input with no signature hits yields brute_force/low with an
// empty rule list.
func Classify(payload string) models.Classification {
	lowered := strings.ToLower(payload)

	// Every rule of every family is evaluated; no short-circuiting, so the
	// detected pattern list is complete evidence, not just the verdict.
	matches := make([]familyMatches, 0, len(signature.Families))
	for i := range signature.Families {
		fam := &signature.Families[i]
		var ids []string
		for _, rule := range fam.Rules {
			if rule.Matches(lowered) {
				ids = append(ids, rule.ID(fam.Label))
			}
		}
		matches = append(matches, familyMatches{family: fam, ruleIDs: ids})
	}

	return reduce(matches)
}

// reduce folds per-family match results into a single verdict:
// category is the family of the first matching rule in evaluation order,
// severity is the monotonic maximum of every matching family's severity.
// The two rules are independent, so a payload can carry a category from one
// family and a severity forced higher by a later one.
func reduce(matches []familyMatches) models.Classification {
	result := models.Classification{
		Category:     models.CategoryBruteForce,
		Severity:     models.SeverityLow,
		MatchedRules: []string{},
	}

	for _, m := range matches {
		if len(m.ruleIDs) == 0 {
			continue
		}
		result.MatchedRules = append(result.MatchedRules, m.ruleIDs...)
		if result.Category == models.CategoryBruteForce {
			result.Category = m.family.Category
		}
		result.Severity = result.Severity.Max(m.family.Severity)
	}

	return result
}
