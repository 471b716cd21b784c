package models

import (
	"encoding/json"
	"time"
)

// TimestampLayout is the storage format for event timestamps: fixed-width
// UTC ISO-8601 so lexical order equals chronological order and the
// aggregation pipelines can bucket by substring (date = [0:10], hour = [11:13]).
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// AttackCategory classifies the intent of a captured payload.
type AttackCategory string

const (
	CategoryBruteForce       AttackCategory = "brute_force"
	CategorySQLInjection     AttackCategory = "sql_injection"
	CategoryXSS              AttackCategory = "xss"
	CategoryCommandInjection AttackCategory = "command_injection"
	CategoryPathTraversal    AttackCategory = "path_traversal"
)

// Severity is totally ordered: Low < Medium < High < Critical.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var severityRank = map[Severity]int{
	SeverityLow:      0,
	SeverityMedium:   1,
	SeverityHigh:     2,
	SeverityCritical: 3,
}

// Rank returns the position of s in the severity order (unknown values rank lowest).
func (s Severity) Rank() int {
	return severityRank[s]
}

// Max returns the higher of s and other.
func (s Severity) Max(other Severity) Severity {
	if other.Rank() > s.Rank() {
		return other
	}
	return s
}

// Classification is the classifier's verdict for a single payload.
// Category is brute_force and Severity is low exactly when no rule matched.
type Classification struct {
	Category     AttackCategory `json:"category"`
	Severity     Severity       `json:"severity"`
	MatchedRules []string       `json:"matched_rules"`
}

// AttackEvent is the durable record of one captured login attempt.
// It is created once by the recorder and never mutated afterwards.
type AttackEvent struct {
	ID                string         `json:"id" bson:"id"`
	Timestamp         string         `json:"timestamp" bson:"timestamp"`
	IPAddress         string         `json:"ip_address" bson:"ip_address"`
	UserAgent         string         `json:"user_agent" bson:"user_agent"`
	AttackType        AttackCategory `json:"attack_type" bson:"attack_type"`
	Payload           string         `json:"payload" bson:"payload"`
	UsernameAttempted string         `json:"username_attempted" bson:"username_attempted"`
	PasswordAttempted string         `json:"password_attempted" bson:"password_attempted"`
	Endpoint          string         `json:"endpoint" bson:"endpoint"`
	Country           string         `json:"country" bson:"country"`
	City              string         `json:"city" bson:"city"`
	Severity          Severity       `json:"severity" bson:"severity"`
	DetectedPatterns  []string       `json:"detected_patterns" bson:"detected_patterns"`
}

// EventTime parses the stored timestamp back into a time.Time.
func (e *AttackEvent) EventTime() (time.Time, error) {
	return time.Parse(TimestampLayout, e.Timestamp)
}

// CountryCount is one row of the top-countries ranking.
type CountryCount struct {
	Country string `json:"country"`
	Count   int64  `json:"count"`
}

// HourCount is one bucket of the hour-of-day histogram. Hour is the
// zero-padded two-digit hour extracted from the event timestamp.
type HourCount struct {
	Hour  string `json:"hour"`
	Count int64  `json:"count"`
}

// AttackStats is the dashboard overview. Derived on every query, never stored.
type AttackStats struct {
	TotalAttacks      int64            `json:"total_attacks"`
	UniqueIPs         int64            `json:"unique_ips"`
	AttackTypes       map[string]int64 `json:"attack_types"`
	SeverityBreakdown map[string]int64 `json:"severity_breakdown"`
	AttacksByCountry  []CountryCount   `json:"attacks_by_country"`
	AttacksByHour     []HourCount      `json:"attacks_by_hour"`
	RecentAttacks     []AttackEvent    `json:"recent_attacks"`
}

// TimelineEntry holds one day's per-category counts. Days with zero events
// never appear in a timeline.
type TimelineEntry struct {
	Date   string
	Total  int64
	ByType map[string]int64
}

// MarshalJSON flattens ByType into the entry object so each category count is
// a top-level key next to "date" and "total", matching the dashboard contract.
func (t TimelineEntry) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(t.ByType)+2)
	for k, v := range t.ByType {
		out[k] = v
	}
	out["date"] = t.Date
	out["total"] = t.Total
	return json.Marshal(out)
}

// HoneypotLoginRequest is the decoy login body.
type HoneypotLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AdminLoginRequest is the dashboard login body.
type AdminLoginRequest struct {
	Password string `json:"password"`
}

// AttackPage is one page of the attack listing plus the total for pagination.
type AttackPage struct {
	Attacks []AttackEvent `json:"attacks"`
	Total   int64         `json:"total"`
}
