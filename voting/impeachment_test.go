// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImpeachmentBallotVotesOnce(t *testing.T) {
	calls := 0
	submit := VoteSubmitFunc(func(_ context.Context, petitionID string, c Choice) (Receipt, error) {
		calls++
		assert.Equal(t, "pt1", petitionID)
		assert.Equal(t, ChoiceImpeach, c)
		return Receipt{ID: "r1"}, nil
	})

	b := NewImpeachmentBallot("pt1")
	_, err := b.Submit(context.Background(), submit)
	assert.ErrorIs(t, err, ErrNoChoice)
	assert.ErrorIs(t, b.Select("abstain"), ErrInvalidChoice)

	require.NoError(t, b.Select(ChoiceImpeach))
	r, err := b.Submit(context.Background(), submit)
	require.NoError(t, err)
	assert.Equal(t, "r1", r.ID)
	assert.True(t, b.HasVoted())

	_, err = b.Submit(context.Background(), submit)
	assert.ErrorIs(t, err, ErrAlreadyVoted)
	assert.ErrorIs(t, b.Select(ChoiceDismiss), ErrAlreadyVoted)
	assert.Equal(t, 1, calls)
}

func TestTallyLabels(t *testing.T) {
	assert.Equal(t, "Met", Tally{Voted: 89, QuorumRequired: 75}.QuorumStatus())
	assert.Equal(t, "Not Met", Tally{Voted: 74, QuorumRequired: 75}.QuorumStatus())
	assert.Equal(t, "Not Passing", Tally{Impeach: 52, MajorityRequired: 67}.MajorityStatus())
	assert.Equal(t, "Passing", Tally{Impeach: 67, MajorityRequired: 67}.MajorityStatus())
}

func TestNewTally(t *testing.T) {
	tally := NewTally(150, 60, 30, DefaultQuorumPercent, DefaultMajorityPercent)
	assert.Equal(t, 90, tally.Voted)
	assert.Equal(t, 75, tally.QuorumRequired)
	assert.Equal(t, 60, tally.MajorityRequired)
	assert.True(t, tally.QuorumMet())
	assert.True(t, tally.Passing())
	assert.True(t, tally.Impeached())
	assert.Equal(t, 60.0, tally.Progress())
	assert.Equal(t, 40.0, tally.ImpeachShare())

	tally = NewTally(150, 59, 31, DefaultQuorumPercent, DefaultMajorityPercent)
	assert.False(t, tally.Passing())
	assert.False(t, tally.Impeached())

	tally = NewTally(150, 0, 0, DefaultQuorumPercent, DefaultMajorityPercent)
	assert.Equal(t, 1, tally.MajorityRequired)
	assert.False(t, tally.Passing())

	s := NewTally(10, 3, 0, 50, 50).Summary(time.Unix(0, 0))
	assert.False(t, s.QuorumMet)
	assert.Equal(t, "Not Met", s.QuorumStatus)
	assert.Equal(t, "Passing", s.MajorityStatus)
	assert.Equal(t, 30.0, s.Progress)
}
