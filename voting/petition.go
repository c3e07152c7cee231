// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"math"
	"strings"
	"time"
)

type PetitionStatus string

const (
	PetitionCollecting PetitionStatus = "collecting"
	PetitionVerified   PetitionStatus = "verified"
	PetitionVoting     PetitionStatus = "voting"
	PetitionCompleted  PetitionStatus = "completed"
)

// DefaultSignatureThreshold is the share of active members, in percent,
// whose signatures a petition needs before it can go to a vote.
const DefaultSignatureThreshold = 20.0

// PetitionDraft is the create form of an impeachment petition.
type PetitionDraft struct {
	AccusedLeader           string `json:"accused_leader" validate:"notblank"`
	AccusedRole             string `json:"accused_role"`
	ConstitutionalViolation string `json:"constitutional_violation" validate:"notblank"`
	MisconductDescription   string `json:"misconduct_description" validate:"notblank"`
	EvidenceURL             string `json:"evidence_url,omitempty" validate:"omitempty,url"`
}

func (d PetitionDraft) Validate() error {
	if fields := Validate(d); len(fields) > 0 {
		return NewValidationError(ErrInvalid, fields...)
	}
	return nil
}

type Petition struct {
	ID                      string         `json:"id"`
	AccusedLeader           string         `json:"accused_leader"`
	AccusedRole             string         `json:"accused_role"`
	ConstitutionalViolation string         `json:"constitutional_violation"`
	MisconductDescription   string         `json:"misconduct_description"`
	EvidenceURL             string         `json:"evidence_url,omitempty"`
	ThresholdPercent        float64        `json:"threshold_percent"`
	TotalMembers            int            `json:"total_members"`
	RequiredSignatures      int            `json:"required_signatures"`
	Signatures              int            `json:"signatures"`
	Status                  PetitionStatus `json:"status"`
	CreatedAt               time.Time      `json:"created_at"`
}

// NewPetition validates d and sizes the signature requirement from the
// current membership.
func NewPetition(id string, d PetitionDraft, totalMembers int, thresholdPercent float64, now time.Time) (Petition, error) {
	if err := d.Validate(); err != nil {
		return Petition{}, err
	}
	if totalMembers < 1 {
		return Petition{}, ErrNoMembers
	}
	p := Petition{
		ID:                      id,
		AccusedLeader:           strings.TrimSpace(d.AccusedLeader),
		AccusedRole:             strings.TrimSpace(d.AccusedRole),
		ConstitutionalViolation: strings.TrimSpace(d.ConstitutionalViolation),
		MisconductDescription:   strings.TrimSpace(d.MisconductDescription),
		EvidenceURL:             d.EvidenceURL,
		ThresholdPercent:        thresholdPercent,
		TotalMembers:            totalMembers,
		RequiredSignatures:      RequiredSignatures(totalMembers, thresholdPercent),
		Status:                  PetitionCollecting,
		CreatedAt:               now,
	}
	if p.ThresholdReached() {
		p.Status = PetitionVerified
	}
	return p, nil
}

// RequiredSignatures is ceil(totalMembers × thresholdPercent / 100).
func RequiredSignatures(totalMembers int, thresholdPercent float64) int {
	return ceilShare(totalMembers, thresholdPercent)
}

// SignatureProgress is current/required as a percentage with two decimals.
// It is not capped at 100.
func SignatureProgress(current, required int) float64 {
	if required <= 0 {
		return 100
	}
	return percent(current, required, 2)
}

func (p Petition) Progress() float64 {
	return SignatureProgress(p.Signatures, p.RequiredSignatures)
}

// SupportShare is signatures over the members counted at filing, two
// decimals.
func (p Petition) SupportShare() float64 {
	return percent(p.Signatures, p.TotalMembers, 2)
}

func (p Petition) ThresholdReached() bool {
	return p.Signatures >= p.RequiredSignatures
}

func (p Petition) RemainingSignatures() int {
	return max(0, p.RequiredSignatures-p.Signatures)
}

// AddSignature counts one more supporter and marks the petition verified
// once the threshold is met. Signing stays open after verification.
func (p *Petition) AddSignature() error {
	if p.Status != PetitionCollecting && p.Status != PetitionVerified {
		return ErrPetitionClosed
	}
	p.Signatures++
	if p.Status == PetitionCollecting && p.ThresholdReached() {
		p.Status = PetitionVerified
	}
	return nil
}

// OpenVote moves a verified petition to voting.
func (p *Petition) OpenVote() error {
	switch p.Status {
	case PetitionVerified:
		p.Status = PetitionVoting
		return nil
	case PetitionCollecting:
		return ErrThresholdNotReached
	default:
		return ErrPetitionClosed
	}
}

func (p *Petition) CloseVote() error {
	if p.Status != PetitionVoting {
		return ErrNotVoting
	}
	p.Status = PetitionCompleted
	return nil
}

// ceilShare is ceil(n × pct / 100), ignoring float noise below 1e-9.
func ceilShare(n int, pct float64) int {
	x := float64(n) * pct / 100
	return int(math.Ceil(math.Round(x*1e9) / 1e9))
}
