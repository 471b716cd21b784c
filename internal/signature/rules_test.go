package signature

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"honeypot-service/internal/models"
)

func TestFamilyOrderIsFixed(t *testing.T) {
	// The evaluation order is part of the classification contract.
	expected := []models.AttackCategory{
		models.CategorySQLInjection,
		models.CategoryXSS,
		models.CategoryCommandInjection,
		models.CategoryPathTraversal,
	}

	assert.Len(t, Families, len(expected))
	for i, fam := range Families {
		assert.Equal(t, expected[i], fam.Category)
		assert.NotEmpty(t, fam.Label)
		assert.NotEmpty(t, fam.Rules)
	}
}

func TestRuleIDCarriesFamilyLabel(t *testing.T) {
	rule := Families[0].Rules[0]
	id := rule.ID("SQL")

	assert.Contains(t, id, "SQL: ")
	assert.LessOrEqual(t, len(id), len("SQL: ")+30)
}

func TestRulesMatchCaseInsensitively(t *testing.T) {
	var unionRule *Rule
	for i := range Families[0].Rules {
		if Families[0].Rules[i].Pattern == `(\s|'|")*(union)(\s)+(select)` {
			unionRule = &Families[0].Rules[i]
			break
		}
	}
	if unionRule == nil {
		t.Fatal("union select rule not found")
	}

	assert.True(t, unionRule.Matches("' union select * from users"))
	assert.True(t, unionRule.Matches("' UNION SELECT * FROM USERS"))
	assert.False(t, unionRule.Matches("ordinary login"))
}
