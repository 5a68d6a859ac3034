package judiciary

import (
	"strings"
	"unicode/utf8"
)

// decisionKeywords flag movements that usually carry the judge's reasoning.
var decisionKeywords = []string{"julgamento", "concluso", "sentença", "decisão", "despacho", "mérito"}

const (
	minFragmentRunes = 50
	excerptBudget    = 100
	dateRunes        = 10
)

// MineDecisionText builds a bounded excerpt from the movement log of a case.
// It returns ("", false) when no movement qualifies; callers must then leave
// any previously mined text untouched.
//
// The budget is soft: once the excerpt passes it, scanning stops after the
// current movement, whose fragments are always appended in full.
func MineDecisionText(src CaseSource) (string, bool) {
	if len(src.Movements) == 0 {
		return "", false
	}

	var b strings.Builder
	for _, mv := range src.Movements {
		if !isDecisionMovement(mv.Name) {
			continue
		}
		date := truncateRunes(mv.Timestamp, dateRunes)
		for _, frag := range mv.Complement {
			if utf8.RuneCountInString(frag) > minFragmentRunes {
				b.WriteString(" [" + date + "] " + frag + " | ")
			}
		}
		if utf8.RuneCountInString(b.String()) > excerptBudget {
			break
		}
	}

	if b.Len() == 0 {
		return "", false
	}
	return b.String(), true
}

func isDecisionMovement(name string) bool {
	n := strings.ToLower(name)
	for _, kw := range decisionKeywords {
		if strings.Contains(n, kw) {
			return true
		}
	}
	return false
}

//Personal.AI order the ending
