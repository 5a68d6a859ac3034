package judiciary

import (
	"errors"
	"fmt"
	"strings"
)

// Rule is one ordered entry of a keyword table.
type Rule struct {
	Label    string
	Keywords []string
}

// RuleTable is an immutable, ordered list of rules. The first rule with any
// keyword contained in the text wins; match counts are irrelevant.
type RuleTable struct {
	rules []Rule
}

// NewRuleTable copies rules into a table. Keywords are lower-cased once here.
func NewRuleTable(rules []Rule) (RuleTable, error) {
	out := make([]Rule, 0, len(rules))
	for i, r := range rules {
		label := strings.TrimSpace(r.Label)
		if label == "" {
			return RuleTable{}, fmt.Errorf("rule %d: empty label", i)
		}
		kws := make([]string, 0, len(r.Keywords))
		for _, kw := range r.Keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				kws = append(kws, kw)
			}
		}
		if len(kws) == 0 {
			return RuleTable{}, fmt.Errorf("rule %q: no keywords", label)
		}
		out = append(out, Rule{Label: label, Keywords: kws})
	}
	return RuleTable{rules: out}, nil
}

// Match returns the label of the first matching rule. text must already be
// lower-cased.
func (t RuleTable) Match(text string) (string, bool) {
	for _, r := range t.rules {
		for _, kw := range r.Keywords {
			if strings.Contains(text, kw) {
				return r.Label, true
			}
		}
	}
	return "", false
}

// Len returns the number of rules.
func (t RuleTable) Len() int { return len(t.rules) }

// Classifier assigns the composite "[DOMAIN] Risco: TIER" label.
type Classifier struct {
	domains       RuleTable
	risks         RuleTable
	defaultDomain string
	defaultRisk   string
}

// ErrEmptyRuleTable is returned when a classifier is built without rules.
var ErrEmptyRuleTable = errors.New("judiciary: empty rule table")

// NewClassifier builds a classifier from the two tables and their fallbacks.
// Matched labels are upper-cased; fallbacks are used verbatim.
func NewClassifier(domains, risks RuleTable, defaultDomain, defaultRisk string) (*Classifier, error) {
	if domains.Len() == 0 || risks.Len() == 0 {
		return nil, ErrEmptyRuleTable
	}
	return &Classifier{
		domains:       domains,
		risks:         risks,
		defaultDomain: defaultDomain,
		defaultRisk:   defaultRisk,
	}, nil
}

// Label computes the label for a record. Either argument may be empty.
func (c *Classifier) Label(topic, text string) string {
	content := strings.ToLower(topic + " " + text)

	domain := c.defaultDomain
	if l, ok := c.domains.Match(content); ok {
		domain = strings.ToUpper(l)
	}
	risk := c.defaultRisk
	if l, ok := c.risks.Match(content); ok {
		risk = strings.ToUpper(l)
	}
	return FormatLabel(domain, risk)
}

// FormatLabel renders the stored label.
func FormatLabel(domain, risk string) string {
	return "[" + domain + "] Risco: " + risk
}

//Personal.AI order the ending
