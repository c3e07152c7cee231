// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"time"

	"github.com/CAPTURE751/STUDENT-organization-management-system/voting"
)

// Member roles; anything other than RoleMember counts as a leader.
const (
	RoleMember = "member"
)

// Request types

type CreateOrganizationRequest struct {
	Name string `json:"name" validate:"notblank,max=200"`
	Type string `json:"type" validate:"max=50"`
}

type AddMemberRequest struct {
	// ID is optional; the server generates one when empty.
	ID           string `json:"id" validate:"omitempty,max=64"`
	Name         string `json:"name" validate:"notblank,max=200"`
	Email        string `json:"email" validate:"omitempty,email"`
	Department   string `json:"department"`
	AcademicYear string `json:"academic_year"`
	Gender       string `json:"gender" validate:"omitempty,oneof=male female"`
	Role         string `json:"role"`
	Status       string `json:"status" validate:"omitempty,oneof=pending active inactive rejected"`
}

// CreateElectionRequest carries a full wizard draft.
type CreateElectionRequest struct {
	OrganizationID string `json:"organization_id" validate:"notblank"`
	voting.Draft   `validate:"-"`
}

type SubmitBallotRequest struct {
	// position id -> candidate id
	Selections map[string]string `json:"selections" validate:"required,min=1"`
}

type CreatePetitionRequest struct {
	OrganizationID       string `json:"organization_id" validate:"notblank"`
	voting.PetitionDraft `validate:"-"`
}

type CastVoteRequest struct {
	Choice voting.Choice `json:"choice" validate:"required,oneof=impeach dismiss"`
}

// Response types

type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

type Member struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email,omitempty"`
	Department     string    `json:"department"`
	AcademicYear   string    `json:"academic_year"`
	Gender         string    `json:"gender,omitempty"`
	Role           string    `json:"role"`
	Status         string    `json:"status"`
	JoinedAt       time.Time `json:"joined_at"`
}

// Voter returns the fields eligibility rules are checked against.
func (m Member) Voter() voting.Voter {
	return voting.Voter{
		Department:   m.Department,
		AcademicYear: m.AcademicYear,
		Status:       m.Status,
		Gender:       m.Gender,
	}
}

// Election is a stored election with its derived status.
type Election struct {
	voting.Election
	OrganizationID string        `json:"organization_id"`
	Status         voting.Status `json:"status"`
	CreatedAt      time.Time     `json:"created_at"`
}

// ElectionSummary is one row of the election catalog.
type ElectionSummary struct {
	ID             string              `json:"id"`
	OrganizationID string              `json:"organization_id"`
	Title          string              `json:"title"`
	Description    string              `json:"description"`
	Type           voting.ElectionType `json:"type"`
	Status         voting.Status       `json:"status"`
	StartsAt       time.Time           `json:"starts_at"`
	EndsAt         time.Time           `json:"ends_at"`
	TimeRemaining  string              `json:"time_remaining"`
	Relative       string              `json:"relative"`
	TotalVoters    int                 `json:"total_voters"`
	VotedCount     int                 `json:"voted_count"`
	Turnout        float64             `json:"turnout"`
	Positions      int                 `json:"positions"`
	Candidates     int                 `json:"candidates"`
}

type CreateElectionResponse struct {
	ElectionID  string `json:"election_id"`
	TotalVoters int    `json:"total_voters"`
}

// DraftValidationResponse reports the wizard state of a draft: the first
// step that does not validate and the field errors of every failing step.
type DraftValidationResponse struct {
	Valid    bool                           `json:"valid"`
	Step     int                            `json:"step"`
	StepName string                         `json:"step_name"`
	Progress float64                        `json:"progress"`
	Errors   map[string][]voting.FieldError `json:"errors"`
}

type SubmitBallotResponse struct {
	voting.Receipt
	Message string `json:"message"`
}

// Petition is a stored petition with its vote settings.
type Petition struct {
	voting.Petition
	OrganizationID  string     `json:"organization_id"`
	Progress        float64    `json:"progress"`
	Remaining       int        `json:"remaining_signatures"`
	SupportShare    float64    `json:"support_share"`
	EligibleVoters  int        `json:"eligible_voters,omitempty"`
	QuorumPercent   float64    `json:"quorum_percent,omitempty"`
	MajorityPercent float64    `json:"majority_percent,omitempty"`
	OpenedAt        *time.Time `json:"opened_at,omitempty"`
	ClosedAt        *time.Time `json:"closed_at,omitempty"`
}

// PetitionDetail is a petition with the members who signed it.
type PetitionDetail struct {
	Petition
	Supporters []Supporter `json:"supporters"`
}

type Supporter struct {
	MemberID string    `json:"member_id"`
	Name     string    `json:"name"`
	SignedAt time.Time `json:"signed_at"`
}

type SignatureResponse struct {
	Signatures int                   `json:"signatures"`
	Required   int                   `json:"required_signatures"`
	Progress   float64               `json:"progress"`
	Status     voting.PetitionStatus `json:"status"`
}

type CastVoteResponse struct {
	voting.Receipt
	Choice voting.Choice `json:"choice"`
}

// LiveUpdate is pushed to turnout subscribers after every ballot.
type LiveUpdate struct {
	ElectionID  string    `json:"election_id"`
	VotedCount  int       `json:"voted_count"`
	TotalVoters int       `json:"total_voters"`
	Turnout     float64   `json:"turnout"`
	At          time.Time `json:"at"`
}

type ErrorResponse struct {
	Error   string              `json:"error"`
	Message string              `json:"message"`
	Fields  []voting.FieldError `json:"fields,omitempty"`
}
