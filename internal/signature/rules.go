package signature

import (
	"regexp"

	"honeypot-service/internal/models"
)

// Family groups detection rules by the attack class they recognize.
type Family struct {
	// Label tags matched rules in classifier output ("SQL", "XSS", ...).
	Label string
	// Category is assigned when this family is the first one to match.
	Category models.AttackCategory
	// Severity is merged into the result whenever any rule of the family
	// matches; merging is a monotonic upgrade, never a downgrade.
	Severity models.Severity
	Rules    []Rule
}

// Rule is a single case-insensitive detection pattern. Rules are data loaded
// once at process start and never mutated.
type Rule struct {
	Pattern string
	re      *regexp.Regexp
}

// Matches reports whether the rule fires against the (already lower-cased) payload.
func (r Rule) Matches(payload string) bool {
	return r.re.MatchString(payload)
}

// ID is the identifier recorded in an event's detected patterns: the family
// label plus the leading 30 characters of the pattern, enough to trace the
// match back to this table.
func (r Rule) ID(label string) string {
	p := r.Pattern
	if len(p) > 30 {
		p = p[:30]
	}
	return label + ": " + p
}

func compile(patterns ...string) []Rule {
	rules := make([]Rule, 0, len(patterns))
	for _, p := range patterns {
		rules = append(rules, Rule{Pattern: p, re: regexp.MustCompile("(?i)" + p)})
	}
	return rules
}

// Families is the fixed evaluation order: SQL injection first, then XSS,
// command injection, path traversal. Reordering changes both category
// assignment and severity merging, so the order is part of the contract.
var Families = []Family{
	{
		Label:    "SQL",
		Category: models.CategorySQLInjection,
		Severity: models.SeverityCritical,
		Rules: compile(
			`('|")(\s)*(or|and)(\s)*('|")?\s*\d`,
			`(\s|'|")*(union)(\s)+(select)`,
			`(\s|'|")*(select)(\s)+(\*|\w+)`,
			`(\s|'|")*(--)|(#)|(/\*)`,
			`(\s|'|")*(drop|delete|truncate|alter)(\s)+(table|database)`,
			`(\s|'|")*(insert)(\s)+(into)`,
			`(\s|'|")*(update)(\s)+\w+(\s)+(set)`,
			`1(\s)*=(\s)*1`,
			`\d+(\s)*=(\s)*\d+`,
			`(\s|'|")*(exec|execute)(\s|\()`,
			`benchmark\s*\(`,
			`sleep\s*\(`,
		),
	},
	{
		Label:    "XSS",
		Category: models.CategoryXSS,
		Severity: models.SeverityHigh,
		Rules: compile(
			`<script[^>]*>`,
			`javascript\s*:`,
			`on\w+\s*=\s*['"]?`,
			`<iframe[^>]*>`,
			`<object[^>]*>`,
			`<embed[^>]*>`,
			`<link[^>]*>`,
			`<meta[^>]*>`,
			`<img[^>]*onerror`,
			`expression\s*\(`,
			`eval\s*\(`,
			`document\.cookie`,
			`document\.location`,
			`window\.location`,
		),
	},
	{
		Label:    "CMD",
		Category: models.CategoryCommandInjection,
		Severity: models.SeverityCritical,
		Rules: compile(
			"[;&|`$]",
			`\|\|?`,
			`&&`,
			`\$\(`,
			`\$\{`,
			"`[^`]*`",
			`;\s*(ls|cat|rm|wget|curl|nc|bash|sh|python|perl|php)`,
		),
	},
	{
		Label:    "PATH",
		Category: models.CategoryPathTraversal,
		Severity: models.SeverityHigh,
		Rules: compile(
			`\.\.[\\/]`,
			`%2e%2e[\\/]`,
			`\.\.%2f`,
			`%2e%2e%2f`,
		),
	},
}
