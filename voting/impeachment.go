// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"time"
)

type Choice string

const (
	ChoiceImpeach Choice = "impeach"
	ChoiceDismiss Choice = "dismiss"
)

func (c Choice) Valid() bool {
	return c == ChoiceImpeach || c == ChoiceDismiss
}

// Default impeachment thresholds: half of the eligible members must vote,
// and two thirds of the votes cast must support impeachment.
const (
	DefaultQuorumPercent   = 50.0
	DefaultMajorityPercent = 200.0 / 3
)

// VoteSubmitter records an impeachment vote and issues a receipt.
type VoteSubmitter interface {
	SubmitImpeachmentVote(ctx context.Context, petitionID string, choice Choice) (Receipt, error)
}

type VoteSubmitFunc func(ctx context.Context, petitionID string, choice Choice) (Receipt, error)

func (f VoteSubmitFunc) SubmitImpeachmentVote(ctx context.Context, petitionID string, choice Choice) (Receipt, error) {
	return f(ctx, petitionID, choice)
}

// ImpeachmentBallot is one voter's session on a petition. A vote can be
// cast once; the flag is never reset.
type ImpeachmentBallot struct {
	petitionID string
	selected   Choice
	hasVoted   bool
	receipt    Receipt
}

func NewImpeachmentBallot(petitionID string) *ImpeachmentBallot {
	return &ImpeachmentBallot{petitionID: petitionID}
}

func (b *ImpeachmentBallot) Selected() Choice { return b.selected }
func (b *ImpeachmentBallot) HasVoted() bool   { return b.hasVoted }
func (b *ImpeachmentBallot) Receipt() Receipt { return b.receipt }

func (b *ImpeachmentBallot) Select(c Choice) error {
	if b.hasVoted {
		return ErrAlreadyVoted
	}
	if !c.Valid() {
		return ErrInvalidChoice
	}
	b.selected = c
	return nil
}

func (b *ImpeachmentBallot) Submit(ctx context.Context, s VoteSubmitter) (Receipt, error) {
	if b.hasVoted {
		return Receipt{}, ErrAlreadyVoted
	}
	if b.selected == "" {
		return Receipt{}, ErrNoChoice
	}
	receipt, err := s.SubmitImpeachmentVote(ctx, b.petitionID, b.selected)
	if err != nil {
		return Receipt{}, err
	}
	b.hasVoted = true
	b.receipt = receipt
	return receipt, nil
}

// Tally is the running count of an impeachment vote.
type Tally struct {
	Eligible         int `json:"eligible"`
	Voted            int `json:"voted"`
	Impeach          int `json:"impeach"`
	Dismiss          int `json:"dismiss"`
	QuorumRequired   int `json:"quorum_required"`
	MajorityRequired int `json:"majority_required"`
}

// NewTally sizes quorum from the eligible members and the majority from the
// votes cast so far.
func NewTally(eligible, impeach, dismiss int, quorumPercent, majorityPercent float64) Tally {
	voted := impeach + dismiss
	return Tally{
		Eligible:         eligible,
		Voted:            voted,
		Impeach:          impeach,
		Dismiss:          dismiss,
		QuorumRequired:   ceilShare(eligible, quorumPercent),
		MajorityRequired: max(1, ceilShare(voted, majorityPercent)),
	}
}

func (t Tally) QuorumMet() bool { return t.Voted >= t.QuorumRequired }
func (t Tally) Passing() bool   { return t.Impeach >= t.MajorityRequired }

// Progress is the share of eligible members who voted, two decimals.
func (t Tally) Progress() float64 { return percent(t.Voted, t.Eligible, 2) }

// ImpeachShare is the share of eligible members who voted to impeach.
func (t Tally) ImpeachShare() float64 { return percent(t.Impeach, t.Eligible, 2) }

func (t Tally) QuorumStatus() string {
	if t.QuorumMet() {
		return "Met"
	}
	return "Not Met"
}

func (t Tally) MajorityStatus() string {
	if t.Passing() {
		return "Passing"
	}
	return "Not Passing"
}

// Impeached reports the binding outcome: quorum met and majority passing.
func (t Tally) Impeached() bool {
	return t.QuorumMet() && t.Passing()
}

// TallySummary is the wire form of a tally with its derived flags.
type TallySummary struct {
	Tally
	QuorumMet      bool      `json:"quorum_met"`
	QuorumStatus   string    `json:"quorum_status"`
	Passing        bool      `json:"passing"`
	MajorityStatus string    `json:"majority_status"`
	Progress       float64   `json:"progress"`
	ImpeachShare   float64   `json:"impeach_share"`
	Impeached      bool      `json:"impeached"`
	ComputedAt     time.Time `json:"computed_at"`
}

func (t Tally) Summary(now time.Time) TallySummary {
	return TallySummary{
		Tally:          t,
		QuorumMet:      t.QuorumMet(),
		QuorumStatus:   t.QuorumStatus(),
		Passing:        t.Passing(),
		MajorityStatus: t.MajorityStatus(),
		Progress:       t.Progress(),
		ImpeachShare:   t.ImpeachShare(),
		Impeached:      t.Impeached(),
		ComputedAt:     now,
	}
}
