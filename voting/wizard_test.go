// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldNames(fields []FieldError) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Field
	}
	return names
}

func validDetails() Details {
	start := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	end := start.Add(48 * time.Hour)
	return Details{
		Title:     "Student Council 2025",
		Type:      TypeGeneral,
		StartsAt:  &start,
		EndsAt:    &end,
		AutoClose: true,
	}
}

func TestWizardAddCandidate(t *testing.T) {
	w := NewWizard()
	pid := w.Draft().Positions[0].ID

	w.CandidateForm.Name = "  "
	_, err := w.AddCandidate(pid)
	require.ErrorIs(t, err, ErrInvalid)
	assert.Equal(t, []string{"name"}, fieldNames(Fields(err)))
	assert.Empty(t, w.Draft().Positions[0].Candidates)

	w.CandidateForm = CandidateInput{Name: "Jane Doe", Department: "Physics"}
	c, err := w.AddCandidate(pid)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", c.Name)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, CandidateInput{}, w.CandidateForm, "form is cleared")

	candidates := w.Draft().Positions[0].Candidates
	require.Len(t, candidates, 1)
	assert.Equal(t, c, candidates[0])

	w.CandidateForm.Name = "John Roe"
	c2, err := w.AddCandidate(pid)
	require.NoError(t, err)
	assert.NotEqual(t, c.ID, c2.ID)

	_, err = w.AddCandidate("nope")
	assert.ErrorIs(t, err, ErrUnknownPosition)
}

func TestWizardStepValidation(t *testing.T) {
	w := NewWizard()

	err := w.Next()
	require.ErrorIs(t, err, ErrInvalid)
	assert.ElementsMatch(t,
		[]string{"details.title", "details.starts_at", "details.ends_at"},
		fieldNames(Fields(err)))
	assert.Equal(t, StepDetails, w.Step())

	w.SetDetails(validDetails())
	require.NoError(t, w.Next())
	assert.Equal(t, StepPositions, w.Step())

	err = w.Next()
	require.ErrorIs(t, err, ErrInvalid)
	assert.ElementsMatch(t,
		[]string{"positions[0].title", "positions[0].candidates"},
		fieldNames(Fields(err)))
	assert.Equal(t, StepPositions, w.Step())

	pid := w.Draft().Positions[0].ID
	require.NoError(t, w.UpdatePosition(pid, "President", ""))
	w.CandidateForm.Name = "Jane Doe"
	_, err = w.AddCandidate(pid)
	require.NoError(t, err)
	require.NoError(t, w.Next())

	w.SetEligibility(Eligibility{Gender: "other"})
	assert.ElementsMatch(t,
		[]string{"eligibility.gender"},
		fieldNames(w.Validate(StepEligibility)),
		"missing statuses default to active")

	w.SetEligibility(Eligibility{MembershipStatuses: []string{"sleeping"}, Gender: GenderAll})
	assert.Equal(t, []string{"eligibility.membership_statuses[0]"}, fieldNames(w.Validate(StepEligibility)))
}

func TestWizardDetailsPresenceOnly(t *testing.T) {
	w := NewWizard()
	d := validDetails()
	before := d.StartsAt.Add(-time.Hour)
	d.EndsAt = &before
	w.SetDetails(d)
	assert.Empty(t, w.Validate(StepDetails))
}

func TestWizardNavigation(t *testing.T) {
	w := NewWizard()
	assert.Equal(t, 33.33, w.Progress())
	assert.ErrorIs(t, w.Previous(), ErrFirstStep)

	w.SetDetails(validDetails())
	require.NoError(t, w.Next())
	assert.Equal(t, 66.67, w.Progress())
	require.NoError(t, w.Previous())
	assert.Equal(t, StepDetails, w.Step())

	_, err := w.Create()
	assert.ErrorIs(t, err, ErrNotLastStep)
}

func TestWizardPositions(t *testing.T) {
	w := NewWizard()
	first := w.Draft().Positions[0].ID

	assert.ErrorIs(t, w.RemovePosition(first), ErrLastPosition)

	second := w.AddPosition()
	require.Len(t, w.Draft().Positions, 2)
	assert.NotEqual(t, first, second.ID)

	require.NoError(t, w.RemovePosition(first))
	positions := w.Draft().Positions
	require.Len(t, positions, 1)
	assert.Equal(t, second.ID, positions[0].ID)

	assert.ErrorIs(t, w.RemovePosition("missing"), ErrUnknownPosition)
	assert.ErrorIs(t, w.UpdatePosition("missing", "x", ""), ErrUnknownPosition)

	w.CandidateForm.Name = "Jane Doe"
	c, err := w.AddCandidate(second.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, w.RemoveCandidate(second.ID, "missing"), ErrUnknownCandidate)
	require.NoError(t, w.RemoveCandidate(second.ID, c.ID))
	assert.Empty(t, w.Draft().Positions[0].Candidates)
}

func TestWizardCreate(t *testing.T) {
	w := NewWizard()
	w.SetDetails(validDetails())
	require.NoError(t, w.Next())

	pid := w.Draft().Positions[0].ID
	require.NoError(t, w.UpdatePosition(pid, "President", "Leads the council"))
	for _, name := range []string{"Jane Doe", "John Roe"} {
		w.CandidateForm.Name = name
		_, err := w.AddCandidate(pid)
		require.NoError(t, err)
	}
	require.NoError(t, w.Next())
	assert.Equal(t, 100.0, w.Progress())
	assert.ErrorIs(t, w.Next(), ErrLastStep)

	e, err := w.Create()
	require.NoError(t, err)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "Student Council 2025", e.Title)
	assert.Equal(t, RuleSingle, e.VotingRule)
	assert.Equal(t, 0, e.VotedCount)
	require.Len(t, e.Positions, 1)
	assert.Len(t, e.Positions[0].Candidates, 2)
	assert.Equal(t, []string{MemberActive}, e.Eligibility.MembershipStatuses)
}

func TestComplete(t *testing.T) {
	d := Draft{
		Details: validDetails(),
		Positions: []Position{{
			Title:      "Treasurer",
			Candidates: []Candidate{{Name: "Ada"}, {Name: "Grace"}},
		}},
	}

	e, err := Complete(d)
	require.NoError(t, err)
	require.Len(t, e.Positions, 1)
	assert.NotEmpty(t, e.Positions[0].ID)
	assert.NotEqual(t, e.Positions[0].Candidates[0].ID, e.Positions[0].Candidates[1].ID)
	assert.Equal(t, GenderAll, e.Eligibility.Gender)

	d.Positions[0].Candidates = nil
	_, err = Complete(d)
	require.ErrorIs(t, err, ErrInvalid)
	assert.Equal(t, []string{"positions[0].candidates"}, fieldNames(Fields(err)))
}

func TestWizardDuplicateIDs(t *testing.T) {
	d := Draft{
		Details: validDetails(),
		Positions: []Position{
			{ID: "p1", Title: "President", Candidates: []Candidate{{ID: "c1", Name: "Ada"}, {ID: "c1", Name: "Grace"}}},
			{ID: "p1", Title: "Treasurer", Candidates: []Candidate{{Name: "Linus"}, {Name: "Ken"}}},
		},
	}

	w := NewWizardFrom(d)
	assert.ElementsMatch(t,
		[]string{"positions[0].candidates[1].id", "positions[1].id"},
		fieldNames(w.Validate(StepPositions)))

	_, err := Complete(d)
	require.ErrorIs(t, err, ErrInvalid)

	e, err := Complete(d.WithoutIDs())
	require.NoError(t, err)
	assert.NotEqual(t, e.Positions[0].ID, e.Positions[1].ID)
	assert.NotEqual(t, e.Positions[0].Candidates[0].ID, e.Positions[0].Candidates[1].ID)
	assert.Equal(t, "c1", d.Positions[0].Candidates[0].ID, "WithoutIDs leaves the original draft alone")
}
