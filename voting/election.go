// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
)

type ElectionType string

const (
	TypeGeneral      ElectionType = "general"
	TypeDepartmental ElectionType = "departmental"
	TypeSpecial      ElectionType = "special"
)

type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

type VotingRule string

const (
	RuleSingle   VotingRule = "single"
	RuleRanked   VotingRule = "ranked"
	RuleWeighted VotingRule = "weighted"
)

// Membership statuses, mirroring the organization roster.
const (
	MemberPending  = "pending"
	MemberActive   = "active"
	MemberInactive = "inactive"
	MemberRejected = "rejected"
)

const (
	GenderAll    = "all"
	GenderMale   = "male"
	GenderFemale = "female"
)

type Candidate struct {
	ID           string `json:"id"`
	Name         string `json:"name" validate:"notblank"`
	Department   string `json:"department"`
	AcademicYear string `json:"academic_year"`
	Manifesto    string `json:"manifesto,omitempty"`
	PhotoURL     string `json:"photo_url,omitempty"`
}

type Position struct {
	ID          string      `json:"id"`
	Title       string      `json:"title" validate:"notblank"`
	Description string      `json:"description,omitempty"`
	Candidates  []Candidate `json:"candidates" validate:"min=1,dive"`
}

// Candidate looks up a candidate of p by id.
func (p Position) Candidate(id string) (Candidate, bool) {
	for _, c := range p.Candidates {
		if c.ID == id {
			return c, true
		}
	}
	return Candidate{}, false
}

// Eligibility restricts which members may vote. Empty lists admit everyone.
type Eligibility struct {
	AcademicYears      []string `json:"academic_years"`
	Departments        []string `json:"departments"`
	MembershipStatuses []string `json:"membership_statuses" validate:"min=1,dive,oneof=pending active inactive rejected"`
	Gender             string   `json:"gender" validate:"oneof=all male female"`
}

func DefaultEligibility() Eligibility {
	return Eligibility{
		MembershipStatuses: []string{MemberActive},
		Gender:             GenderAll,
	}
}

// Voter is the subset of a member record eligibility rules look at.
type Voter struct {
	Department   string
	AcademicYear string
	Status       string
	Gender       string
}

// Admits reports whether v satisfies every rule of e.
func (e Eligibility) Admits(v Voter) bool {
	if len(e.AcademicYears) > 0 && !containsFold(e.AcademicYears, v.AcademicYear) {
		return false
	}
	if len(e.Departments) > 0 && !containsFold(e.Departments, v.Department) {
		return false
	}
	if len(e.MembershipStatuses) > 0 && !containsFold(e.MembershipStatuses, v.Status) {
		return false
	}
	if e.Gender != "" && e.Gender != GenderAll && !strings.EqualFold(e.Gender, v.Gender) {
		return false
	}
	return true
}

func containsFold(list []string, s string) bool {
	return slices.ContainsFunc(list, func(item string) bool {
		return strings.EqualFold(item, s)
	})
}

type Election struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Type        ElectionType `json:"type"`
	VotingRule  VotingRule   `json:"voting_rule"`
	AutoClose   bool         `json:"auto_close"`
	StartsAt    time.Time    `json:"starts_at"`
	EndsAt      time.Time    `json:"ends_at"`
	TotalVoters int          `json:"total_voters"`
	VotedCount  int          `json:"voted_count"`
	Positions   []Position   `json:"positions"`
	Eligibility Eligibility  `json:"eligibility"`
}

// StatusAt derives the lifecycle status from the voting window.
func (e Election) StatusAt(now time.Time) Status {
	switch {
	case now.Before(e.StartsAt):
		return StatusUpcoming
	case now.Before(e.EndsAt):
		return StatusActive
	default:
		return StatusCompleted
	}
}

// TimeRemaining formats the time left until EndsAt the way the catalog shows it.
func (e Election) TimeRemaining(now time.Time) string {
	diff := e.EndsAt.Sub(now)
	if diff <= 0 {
		return "Ended"
	}

	days := int(diff / (24 * time.Hour))
	hours := int(diff % (24 * time.Hour) / time.Hour)
	minutes := int(diff % time.Hour / time.Minute)

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh remaining", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm remaining", hours, minutes)
	default:
		return fmt.Sprintf("%dm remaining", minutes)
	}
}

// Turnout is VotedCount as a percentage of TotalVoters, one decimal.
func (e Election) Turnout() float64 {
	return percent(e.VotedCount, e.TotalVoters, 1)
}

func (e Election) Position(id string) (Position, bool) {
	for _, p := range e.Positions {
		if p.ID == id {
			return p, true
		}
	}
	return Position{}, false
}

func (e Election) CandidateCount() int {
	n := 0
	for _, p := range e.Positions {
		n += len(p.Candidates)
	}
	return n
}

// CheckSelections validates a ballot against the election: at least one
// selection, every position known, every candidate on that position.
func (e Election) CheckSelections(selections map[string]string) error {
	if len(selections) == 0 {
		return ErrEmptyBallot
	}
	for positionID, candidateID := range selections {
		p, ok := e.Position(positionID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownPosition, positionID)
		}
		if _, ok := p.Candidate(candidateID); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownCandidate, candidateID)
		}
	}
	return nil
}

// percent returns part/whole*100 rounded to the given number of decimals.
// A zero whole yields 0.
func percent(part, whole, decimals int) float64 {
	if whole <= 0 {
		return 0
	}
	return round(float64(part)/float64(whole)*100, decimals)
}

func round(x float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(x*scale) / scale
}
