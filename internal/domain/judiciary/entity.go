// Package judiciary holds the core model of the jurimetrics platform: judicial
// units (courts), adjudicating bodies (the office of judgment inside a court),
// case records harvested from the public DataJud API, and the pure
// transformations applied to them: CNJ routing, decision-text mining, subject
// normalisation and rule-based classification.
package judiciary

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Labels and placeholders written to the store. They are user-visible and
// kept in Portuguese.
const (
	PendingLabel       = "Aguardando Análise"
	DefaultTopic       = "Geral"
	UnknownVara        = "Vara Desconhecida"
	adjudicatorPrefix  = "Juízo da "
	minedSectionMarker = "--- TRECHOS DA DECISÃO ---"
)

// JudicialUnit is a court (tribunal). Name is unique (e.g. "TJSP").
type JudicialUnit struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Jurisdiction string `json:"jurisdiction"`
}

// Adjudicator is the office of judgment of a court sub-unit ("vara").
// Name is unique and always derived through AdjudicatorName.
type Adjudicator struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Vara   string `json:"vara"`
	UnitID int64  `json:"judicial_unit_id"`
}

// CaseRecord is one harvested case. Number is the dedup key.
type CaseRecord struct {
	ID            int64      `json:"id"`
	Number        string     `json:"case_number"`
	Text          string     `json:"decision_text"`
	Label         string     `json:"label"`
	Topic         string     `json:"topic"`
	FiledOn       *time.Time `json:"filed_on,omitempty"`
	AdjudicatorID int64      `json:"adjudicator_id"`
}

// HasMinedText reports whether the record text already carries a mined
// decision excerpt.
func (c *CaseRecord) HasMinedText() bool {
	return c != nil && HasMinedText(c.Text)
}

// TopicCount is one entry of an adjudicator's topic distribution.
type TopicCount struct {
	Topic string `json:"topic"`
	Count int64  `json:"count"`
}

// AdjudicatorName derives the unique display name of the adjudicating body
// for a sub-unit name. A blank vara maps to UnknownVara.
func AdjudicatorName(vara string) string {
	return adjudicatorPrefix + NormalizeVara(vara)
}

// NormalizeVara trims vara and substitutes UnknownVara when it is blank.
func NormalizeVara(vara string) string {
	v := strings.TrimSpace(vara)
	if v == "" {
		return UnknownVara
	}
	return v
}

// ComposeDecisionText builds the stored decision text from the topic and an
// optional mined excerpt.
func ComposeDecisionText(topic, excerpt string) string {
	text := "Assunto: " + topic + "."
	if excerpt != "" {
		text += " \n" + minedSectionMarker + "\n" + excerpt
	}
	return text
}

// HasMinedText reports whether text contains a mined excerpt section.
func HasMinedText(text string) bool {
	return strings.Contains(text, minedSectionMarker)
}

// filingLayouts are tried in order against the date portion of
// dataAjuizamento. DataJud emits both ISO dates and compact timestamps.
var filingLayouts = []string{"2006-01-02", "20060102150405", "20060102"}

// ParseFilingDate parses an upstream filing date. Anything unparseable yields
// nil; it never fails.
func ParseFilingDate(raw string) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		s = s[:i]
	}
	for _, layout := range filingLayouts {
		if len(s) != len(layout) {
			continue
		}
		if t, err := time.Parse(layout, s); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}
	return nil
}

// truncateRunes returns at most n runes of s.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// TruncateRunes returns at most n runes of s. Exported for callers that bound
// document size before embedding.
func TruncateRunes(s string, n int) string { return truncateRunes(s, n) }

//Personal.AI order the ending
