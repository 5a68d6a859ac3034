package judiciary

import (
	"github.com/turtacn/Prologos-Jurimetrics/pkg/types/common"
)

// Event types published on the broker.
const (
	EventHarvestRequested = "juris.harvest.requested"
	EventProfileCloned    = "juris.profile.cloned"
	EventCasesClassified  = "juris.cases.classified"
)

// HarvestRequested asks a worker to clone the profile behind CaseID.
type HarvestRequested struct {
	common.BaseEvent
	CaseID   string `json:"case_id"`
	Classify bool   `json:"classify"`
}

func NewHarvestRequested(caseID string, classify bool) *HarvestRequested {
	return &HarvestRequested{
		BaseEvent: common.NewBaseEvent(EventHarvestRequested, caseID),
		CaseID:    caseID,
		Classify:  classify,
	}
}

// ProfileCloned reports a successful harvest.
type ProfileCloned struct {
	common.BaseEvent
	CaseID      string `json:"case_id"`
	Court       string `json:"court"`
	Adjudicator string `json:"adjudicator"`
	New         int    `json:"new"`
	WithText    int    `json:"with_text"`
}

func NewProfileCloned(caseID, court, adjudicator string, created, withText int) *ProfileCloned {
	return &ProfileCloned{
		BaseEvent:   common.NewBaseEvent(EventProfileCloned, court),
		CaseID:      caseID,
		Court:       court,
		Adjudicator: adjudicator,
		New:         created,
		WithText:    withText,
	}
}

// CasesClassified reports a finished classification pass.
type CasesClassified struct {
	common.BaseEvent
	Scanned int `json:"scanned"`
	Updated int `json:"updated"`
}

func NewCasesClassified(scanned, updated int) *CasesClassified {
	return &CasesClassified{
		BaseEvent: common.NewBaseEvent(EventCasesClassified, "decisoes"),
		Scanned:   scanned,
		Updated:   updated,
	}
}

//Personal.AI order the ending
