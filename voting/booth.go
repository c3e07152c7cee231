// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"fmt"
	"maps"
	"time"
)

type BoothState int

const (
	BoothVoting BoothState = iota
	BoothSubmitting
	BoothSubmitted
)

func (s BoothState) String() string {
	switch s {
	case BoothVoting:
		return "voting"
	case BoothSubmitting:
		return "submitting"
	case BoothSubmitted:
		return "submitted"
	default:
		return "unknown"
	}
}

// Receipt is the server-issued acknowledgement of a recorded vote.
type Receipt struct {
	ID          string    `json:"receipt_id"`
	SubmittedAt time.Time `json:"submitted_at"`
	Selected    int       `json:"selected"`
	Total       int       `json:"total"`
}

// BallotSubmitter records a ballot somewhere and issues a receipt.
type BallotSubmitter interface {
	SubmitBallot(ctx context.Context, electionID string, selections map[string]string) (Receipt, error)
}

type BallotSubmitFunc func(ctx context.Context, electionID string, selections map[string]string) (Receipt, error)

func (f BallotSubmitFunc) SubmitBallot(ctx context.Context, electionID string, selections map[string]string) (Receipt, error) {
	return f(ctx, electionID, selections)
}

// DefaultSubmitDelay is the pause before an offline ballot is acknowledged.
const DefaultSubmitDelay = 2 * time.Second

// Wait blocks for d or until ctx is done.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Delayed waits d before handing the ballot to next.
func Delayed(d time.Duration, next BallotSubmitter) BallotSubmitter {
	return BallotSubmitFunc(func(ctx context.Context, electionID string, selections map[string]string) (Receipt, error) {
		if err := Wait(ctx, d); err != nil {
			return Receipt{}, err
		}
		return next.SubmitBallot(ctx, electionID, selections)
	})
}

// Booth steps a voter through the positions of one election. It is not safe
// for concurrent use.
type Booth struct {
	election   Election
	step       int
	selections map[string]string
	state      BoothState
	receipt    Receipt
}

func NewBooth(e Election) (*Booth, error) {
	if len(e.Positions) == 0 {
		return nil, ErrNoPositions
	}
	if e.VotingRule != "" && e.VotingRule != RuleSingle {
		return nil, fmt.Errorf("%w: %s", ErrRuleUnsupported, e.VotingRule)
	}
	return &Booth{election: e, selections: make(map[string]string)}, nil
}

func (b *Booth) State() BoothState { return b.state }
func (b *Booth) Step() int         { return b.step }
func (b *Booth) Receipt() Receipt  { return b.receipt }

func (b *Booth) Current() Position {
	return b.election.Positions[b.step]
}

func (b *Booth) Selections() map[string]string {
	return maps.Clone(b.selections)
}

// Remaining counts positions without a selection.
func (b *Booth) Remaining() int {
	return len(b.election.Positions) - len(b.selections)
}

// SelectCandidate records or overwrites the choice for a position without
// moving between steps.
func (b *Booth) SelectCandidate(positionID, candidateID string) error {
	if err := b.editable(); err != nil {
		return err
	}
	p, ok := b.election.Position(positionID)
	if !ok {
		return ErrUnknownPosition
	}
	if _, ok := p.Candidate(candidateID); !ok {
		return ErrUnknownCandidate
	}
	b.selections[positionID] = candidateID
	return nil
}

// Next moves forward once the current position has a choice. It stays on
// the last position.
func (b *Booth) Next() error {
	if err := b.editable(); err != nil {
		return err
	}
	if _, ok := b.selections[b.Current().ID]; !ok {
		return ErrNoSelection
	}
	if b.step < len(b.election.Positions)-1 {
		b.step++
	}
	return nil
}

func (b *Booth) Previous() error {
	if err := b.editable(); err != nil {
		return err
	}
	if b.step == 0 {
		return ErrFirstStep
	}
	b.step--
	return nil
}

// ConfirmationPrompt is the question shown before the ballot is sent.
func (b *Booth) ConfirmationPrompt() string {
	return fmt.Sprintf(
		"Are you sure you want to submit your vote? You have voted for %d out of %d positions. This action cannot be undone.",
		len(b.selections), len(b.election.Positions),
	)
}

// Submit sends the ballot from the last position. Partial ballots are
// accepted. A failed submission returns the booth to the voting state.
func (b *Booth) Submit(ctx context.Context, s BallotSubmitter) (Receipt, error) {
	if err := b.editable(); err != nil {
		return Receipt{}, err
	}
	if b.step != len(b.election.Positions)-1 {
		return Receipt{}, ErrNotLastStep
	}
	if len(b.selections) == 0 {
		return Receipt{}, ErrEmptyBallot
	}

	b.state = BoothSubmitting
	receipt, err := s.SubmitBallot(ctx, b.election.ID, b.Selections())
	if err != nil {
		b.state = BoothVoting
		return Receipt{}, err
	}

	b.state = BoothSubmitted
	b.receipt = receipt
	return receipt, nil
}

func (b *Booth) editable() error {
	switch b.state {
	case BoothSubmitting:
		return ErrSubmitting
	case BoothSubmitted:
		return ErrSubmitted
	}
	return nil
}
