package judiciary

import (
	"fmt"
	"strings"
)

// CNJ number layout NNNNNNN-DD.AAAA.J.TR.OOOO, read on the digits-only form.
const (
	cnjDigits       = 20
	branchOffset    = 13
	courtCodeOffset = 14
	courtCodeEnd    = 16
	branchState     = "8"
	branchFederal   = "4"
)

// DefaultDataJudURL is the public DataJud host.
const DefaultDataJudURL = "https://api-publica.datajud.cnj.jus.br"

// courtEntry pairs the DataJud index with the persisted court name. The
// name is TJ plus the state for state courts, so 07 is TJDF even though
// its index is tjdft.
type courtEntry struct {
	apiCode      string
	court        string
	jurisdiction string
}

// stateCourts maps the two-digit TR code of the state branch.
var stateCourts = map[string]courtEntry{
	"26": {"tjsp", "TJSP", "SP"},
	"19": {"tjrj", "TJRJ", "RJ"},
	"13": {"tjmg", "TJMG", "MG"},
	"21": {"tjrs", "TJRS", "RS"},
	"16": {"tjpr", "TJPR", "PR"},
	"05": {"tjba", "TJBA", "BA"},
	"07": {"tjdft", "TJDF", "DF"},
	"24": {"tjsc", "TJSC", "SC"},
	"06": {"tjce", "TJCE", "CE"},
	"08": {"tjpa", "TJPA", "PA"},
	"09": {"tjgo", "TJGO", "GO"},
}

// federalCourts maps the TR code of the federal branch to its regional court.
var federalCourts = map[string]courtEntry{
	"01": {"trf1", "TRF1", "BR"},
	"02": {"trf2", "TRF2", "BR"},
	"03": {"trf3", "TRF3", "BR"},
	"04": {"trf4", "TRF4", "BR"},
	"05": {"trf5", "TRF5", "BR"},
}

var fallbackCourt = courtEntry{"tjsp", "TJSP", "SP"}

// Route is the resolved DataJud target for a case identifier.
type Route struct {
	Endpoint     string `json:"endpoint"`
	Court        string `json:"court"`
	Jurisdiction string `json:"jurisdiction"`
	APICode      string `json:"api_code"`

	// Fallback is set when the identifier could not be decoded to a mapped
	// court and the default (most populous) court was chosen instead.
	Fallback bool   `json:"fallback"`
	Warning  string `json:"warning,omitempty"`

	// InvalidIdentifier marks a fallback caused by fewer than 20 digits.
	InvalidIdentifier bool `json:"invalid_identifier"`
}

// CourtRouter decodes CNJ numbers into DataJud endpoints. It is pure: the
// same input always yields the same Route.
type CourtRouter struct {
	baseURL string
}

// NewCourtRouter returns a router producing endpoints under baseURL. An empty
// baseURL uses the public DataJud host.
func NewCourtRouter(baseURL string) *CourtRouter {
	b := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if b == "" {
		b = DefaultDataJudURL
	}
	return &CourtRouter{baseURL: b}
}

// RouteCase routes caseID against the public DataJud host.
func RouteCase(caseID string) Route {
	return NewCourtRouter("").Route(caseID)
}

// Route resolves caseID. It never fails; unknown inputs fall back to TJSP
// with Fallback set and Warning describing why.
func (r *CourtRouter) Route(caseID string) Route {
	digits := DigitsOnly(caseID)
	if len(digits) < cnjDigits {
		route := r.build(fallbackCourt)
		route.Fallback = true
		route.InvalidIdentifier = true
		route.Warning = fmt.Sprintf("número CNJ com %d dígitos (mínimo %d); usando %s", len(digits), cnjDigits, route.Court)
		return route
	}

	branch := digits[branchOffset : branchOffset+1]
	tr := digits[courtCodeOffset:courtCodeEnd]

	switch branch {
	case branchState:
		if e, ok := stateCourts[tr]; ok {
			return r.build(e)
		}
	case branchFederal:
		if e, ok := federalCourts[tr]; ok {
			return r.build(e)
		}
	}

	route := r.build(fallbackCourt)
	route.Fallback = true
	route.Warning = fmt.Sprintf("tribunal %s.%s não mapeado; usando %s", branch, tr, route.Court)
	return route
}

func (r *CourtRouter) build(e courtEntry) Route {
	return Route{
		Endpoint:     r.baseURL + "/api_publica_" + e.apiCode + "/_search",
		Court:        e.court,
		Jurisdiction: e.jurisdiction,
		APICode:      e.apiCode,
	}
}

// DigitsOnly strips every non-digit character from s.
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, c := range s {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// QueryNumber formats a case identifier the way DataJud indexes
// numeroProcesso: dots and hyphens removed.
func QueryNumber(caseID string) string {
	return strings.NewReplacer(".", "", "-", "").Replace(strings.TrimSpace(caseID))
}

//Personal.AI order the ending
