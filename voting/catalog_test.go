// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNavigatorRouting(t *testing.T) {
	election := ElectionItem(Election{ID: "e1", Title: "Council"})
	petition := PetitionItem(Petition{ID: "pt1", AccusedLeader: "Sam"})

	tests := []struct {
		name   string
		open   func(*Navigator) error
		want   View
		wantID string
	}{
		{"election to booth", func(n *Navigator) error { return n.SelectForVoting(election) }, ViewBooth, "e1"},
		{"petition to impeach vote", func(n *Navigator) error { return n.SelectForVoting(petition) }, ViewImpeachVote, "pt1"},
		{"election results", func(n *Navigator) error { return n.SelectForResults(election) }, ViewResults, "e1"},
		{"setup", (*Navigator).OpenSetup, ViewSetup, ""},
		{"impeachment", (*Navigator).OpenImpeachment, ViewImpeachment, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewNavigator()
			require.NoError(t, tt.open(n))
			assert.Equal(t, tt.want, n.View())

			item, ok := n.Selected()
			assert.Equal(t, tt.wantID != "", ok)
			assert.Equal(t, tt.wantID, item.ID())

			n.Back()
			assert.Equal(t, ViewList, n.View())
			_, ok = n.Selected()
			assert.False(t, ok)
		})
	}
}

func TestNavigatorRejects(t *testing.T) {
	n := NewNavigator()
	assert.ErrorIs(t, n.SelectForResults(PetitionItem(Petition{ID: "pt1"})), ErrWrongKind)
	assert.ErrorIs(t, n.SelectForVoting(Item{Kind: "poll"}), ErrUnknownKind)
	assert.ErrorIs(t, n.SelectForVoting(Item{Kind: KindElection}), ErrUnknownKind)
	assert.Equal(t, ViewList, n.View())

	require.NoError(t, n.OpenSetup())
	assert.ErrorIs(t, n.OpenImpeachment(), ErrFlowActive)
	assert.Equal(t, ViewSetup, n.View())
}

func TestFilter(t *testing.T) {
	items := []Item{
		ElectionItem(Election{ID: "e1", Title: "Student Council", Description: "Annual vote"}),
		ElectionItem(Election{ID: "e2", Title: "Sports Captain", Description: "Pick the CAPTAIN"}),
		PetitionItem(Petition{ID: "pt1", AccusedLeader: "Sam", ConstitutionalViolation: "Article 4"}),
	}

	ids := func(items []Item) []string {
		out := []string{}
		for _, it := range items {
			out = append(out, it.ID())
		}
		return out
	}

	assert.Equal(t, []string{"e1", "e2", "pt1"}, ids(Filter(items, "")))
	assert.Equal(t, []string{"e1"}, ids(Filter(items, "council")))
	assert.Equal(t, []string{"e2"}, ids(Filter(items, "captain")))
	assert.Equal(t, []string{"pt1"}, ids(Filter(items, "impeachment of sam")))
	assert.Empty(t, Filter(items, "zzz"))
}
