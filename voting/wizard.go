// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Step is a stage of the election setup wizard.
type Step int

const (
	StepDetails Step = iota + 1
	StepPositions
	StepEligibility
)

var steps = []Step{StepDetails, StepPositions, StepEligibility}

func (s Step) String() string {
	switch s {
	case StepDetails:
		return "details"
	case StepPositions:
		return "positions"
	case StepEligibility:
		return "eligibility"
	default:
		return "unknown"
	}
}

// Details is the first wizard step. Only presence is checked.
type Details struct {
	Title       string       `json:"title" validate:"notblank"`
	Description string       `json:"description"`
	Type        ElectionType `json:"type" validate:"omitempty,oneof=general departmental special"`
	VotingRule  VotingRule   `json:"voting_rule" validate:"omitempty,oneof=single ranked weighted"`
	StartsAt    *time.Time   `json:"starts_at" validate:"required"`
	EndsAt      *time.Time   `json:"ends_at" validate:"required"`
	AutoClose   bool         `json:"auto_close"`
}

// Draft is the election being built by the wizard.
type Draft struct {
	Details     Details     `json:"details"`
	Positions   []Position  `json:"positions"`
	Eligibility Eligibility `json:"eligibility"`
}

type positionsStep struct {
	Positions []Position `json:"positions" validate:"dive"`
}

// CandidateInput is the add-candidate form of the positions step.
type CandidateInput struct {
	Name         string `json:"name"`
	Department   string `json:"department"`
	AcademicYear string `json:"academic_year"`
	Manifesto    string `json:"manifesto"`
	PhotoURL     string `json:"photo_url"`
}

// Wizard drives a Draft through the three setup steps. It is not safe for
// concurrent use.
type Wizard struct {
	step  Step
	draft Draft
	newID func() string

	// CandidateForm holds the pending candidate; AddCandidate consumes it.
	CandidateForm CandidateInput
}

// NewWizard starts an empty draft with a single blank position.
func NewWizard() *Wizard {
	w := &Wizard{step: StepDetails, newID: uuid.NewString}
	w.draft = Draft{
		Details:     Details{Type: TypeGeneral, VotingRule: RuleSingle, AutoClose: true},
		Positions:   []Position{{ID: w.newID(), Candidates: []Candidate{}}},
		Eligibility: DefaultEligibility(),
	}
	return w
}

// NewWizardFrom resumes a draft built elsewhere, minting ids for positions
// and candidates that arrive without one.
func NewWizardFrom(d Draft) *Wizard {
	w := &Wizard{step: StepDetails, newID: uuid.NewString}
	w.draft = normalize(d, w.newID)
	return w
}

func normalize(d Draft, newID func() string) Draft {
	if d.Details.Type == "" {
		d.Details.Type = TypeGeneral
	}
	if d.Details.VotingRule == "" {
		d.Details.VotingRule = RuleSingle
	}
	if d.Eligibility.Gender == "" {
		d.Eligibility.Gender = GenderAll
	}
	if d.Eligibility.MembershipStatuses == nil {
		d.Eligibility.MembershipStatuses = []string{MemberActive}
	}

	positions := make([]Position, len(d.Positions))
	for i, p := range d.Positions {
		if p.ID == "" {
			p.ID = newID()
		}
		candidates := make([]Candidate, len(p.Candidates))
		for j, c := range p.Candidates {
			if c.ID == "" {
				c.ID = newID()
			}
			candidates[j] = c
		}
		p.Candidates = candidates
		positions[i] = p
	}
	d.Positions = positions
	return d
}

// WithoutIDs returns a copy of d with every position and candidate id
// cleared, so the wizard mints fresh ones.
func (d Draft) WithoutIDs() Draft {
	positions := make([]Position, len(d.Positions))
	for i, p := range d.Positions {
		p.ID = ""
		candidates := make([]Candidate, len(p.Candidates))
		for j, c := range p.Candidates {
			c.ID = ""
			candidates[j] = c
		}
		p.Candidates = candidates
		positions[i] = p
	}
	d.Positions = positions
	return d
}

// duplicateIDs reports position ids, and candidate ids, used more than once
// in a draft. Empty ids are minted later and never clash.
func duplicateIDs(positions []Position) []FieldError {
	var fields []FieldError
	seenPositions := make(map[string]bool)
	seenCandidates := make(map[string]bool)
	for i, p := range positions {
		if p.ID != "" && seenPositions[p.ID] {
			fields = append(fields, FieldError{Field: fmt.Sprintf("positions[%d].id", i), Error: duplicateIDText})
		}
		seenPositions[p.ID] = true
		for j, c := range p.Candidates {
			if c.ID != "" && seenCandidates[c.ID] {
				fields = append(fields, FieldError{Field: fmt.Sprintf("positions[%d].candidates[%d].id", i, j), Error: duplicateIDText})
			}
			seenCandidates[c.ID] = true
		}
	}
	return fields
}

func (w *Wizard) Step() Step { return w.step }

// Progress is the completed share of the wizard, e.g. 33.33 on step one.
func (w *Wizard) Progress() float64 {
	return percent(int(w.step), len(steps), 2)
}

// Draft returns a copy of the current draft.
func (w *Wizard) Draft() Draft {
	return normalize(w.draft, func() string { return "" })
}

func (w *Wizard) SetDetails(d Details) {
	w.draft.Details = d
}

func (w *Wizard) SetEligibility(e Eligibility) {
	w.draft.Eligibility = e
}

// AddPosition appends an empty position and returns it.
func (w *Wizard) AddPosition() Position {
	p := Position{ID: w.newID(), Candidates: []Candidate{}}
	w.draft.Positions = append(w.draft.Positions, p)
	return p
}

// RemovePosition deletes a position; the last one cannot be removed.
func (w *Wizard) RemovePosition(id string) error {
	i := w.positionIndex(id)
	if i < 0 {
		return ErrUnknownPosition
	}
	if len(w.draft.Positions) == 1 {
		return ErrLastPosition
	}
	w.draft.Positions = append(w.draft.Positions[:i], w.draft.Positions[i+1:]...)
	return nil
}

func (w *Wizard) UpdatePosition(id, title, description string) error {
	i := w.positionIndex(id)
	if i < 0 {
		return ErrUnknownPosition
	}
	w.draft.Positions[i].Title = title
	w.draft.Positions[i].Description = description
	return nil
}

// AddCandidate appends the candidate in CandidateForm to a position and
// clears the form. The trimmed name must not be empty.
func (w *Wizard) AddCandidate(positionID string) (Candidate, error) {
	i := w.positionIndex(positionID)
	if i < 0 {
		return Candidate{}, ErrUnknownPosition
	}

	name := strings.TrimSpace(w.CandidateForm.Name)
	if name == "" {
		return Candidate{}, NewValidationError(ErrInvalid, FieldError{Field: "name", Error: requiredText})
	}

	c := Candidate{
		ID:           w.newID(),
		Name:         name,
		Department:   strings.TrimSpace(w.CandidateForm.Department),
		AcademicYear: strings.TrimSpace(w.CandidateForm.AcademicYear),
		Manifesto:    strings.TrimSpace(w.CandidateForm.Manifesto),
		PhotoURL:     w.CandidateForm.PhotoURL,
	}
	w.draft.Positions[i].Candidates = append(w.draft.Positions[i].Candidates, c)
	w.CandidateForm = CandidateInput{}
	return c, nil
}

func (w *Wizard) RemoveCandidate(positionID, candidateID string) error {
	i := w.positionIndex(positionID)
	if i < 0 {
		return ErrUnknownPosition
	}
	candidates := w.draft.Positions[i].Candidates
	for j, c := range candidates {
		if c.ID == candidateID {
			w.draft.Positions[i].Candidates = append(candidates[:j], candidates[j+1:]...)
			return nil
		}
	}
	return ErrUnknownCandidate
}

func (w *Wizard) positionIndex(id string) int {
	for i, p := range w.draft.Positions {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Validate returns the field errors blocking the given step.
func (w *Wizard) Validate(step Step) []FieldError {
	d := normalize(w.draft, w.newID)
	switch step {
	case StepDetails:
		return prefixFields("details", Validate(d.Details))
	case StepPositions:
		if len(d.Positions) == 0 {
			return []FieldError{{Field: "positions", Error: "at least one position is required"}}
		}
		return append(Validate(positionsStep{Positions: d.Positions}), duplicateIDs(d.Positions)...)
	case StepEligibility:
		return prefixFields("eligibility", Validate(d.Eligibility))
	default:
		return []FieldError{{Field: "step", Error: "unknown step"}}
	}
}

// ValidateAll runs every step and returns the failing ones.
func (w *Wizard) ValidateAll() map[Step][]FieldError {
	failing := make(map[Step][]FieldError)
	for _, s := range steps {
		if fields := w.Validate(s); len(fields) > 0 {
			failing[s] = fields
		}
	}
	return failing
}

// Next advances one step once the current step validates.
func (w *Wizard) Next() error {
	if w.step == StepEligibility {
		return ErrLastStep
	}
	if fields := w.Validate(w.step); len(fields) > 0 {
		return NewValidationError(ErrInvalid, fields...)
	}
	w.step++
	return nil
}

func (w *Wizard) Previous() error {
	if w.step == StepDetails {
		return ErrFirstStep
	}
	w.step--
	return nil
}

// Create finishes the wizard. It must be on the last step and every step
// must validate. The returned election has no voters counted yet.
func (w *Wizard) Create() (Election, error) {
	if w.step != StepEligibility {
		return Election{}, ErrNotLastStep
	}
	for _, s := range steps {
		if fields := w.Validate(s); len(fields) > 0 {
			return Election{}, NewValidationError(ErrInvalid, fields...)
		}
	}

	d := normalize(w.draft, w.newID)
	return Election{
		ID:          w.newID(),
		Title:       strings.TrimSpace(d.Details.Title),
		Description: strings.TrimSpace(d.Details.Description),
		Type:        d.Details.Type,
		VotingRule:  d.Details.VotingRule,
		AutoClose:   d.Details.AutoClose,
		StartsAt:    *d.Details.StartsAt,
		EndsAt:      *d.Details.EndsAt,
		Positions:   d.Positions,
		Eligibility: d.Eligibility,
	}, nil
}

// Complete walks a full draft through every step and creates the election.
func Complete(d Draft) (Election, error) {
	w := NewWizardFrom(d)
	for w.step != StepEligibility {
		if err := w.Next(); err != nil {
			return Election{}, err
		}
	}
	return w.Create()
}
