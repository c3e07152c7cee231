// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import "errors"

var (
	// ErrInvalid is wrapped by every ValidationError.
	ErrInvalid = errors.New("validation failed")

	ErrUnknownPosition  = errors.New("unknown position")
	ErrUnknownCandidate = errors.New("unknown candidate")
	ErrLastPosition     = errors.New("an election needs at least one position")

	ErrFirstStep = errors.New("already on the first step")
	ErrLastStep  = errors.New("already on the last step")

	ErrNoPositions     = errors.New("election has no positions")
	ErrNoSelection     = errors.New("no candidate selected for the current position")
	ErrNotLastStep     = errors.New("ballot can only be submitted from the last position")
	ErrEmptyBallot     = errors.New("ballot has no selections")
	ErrSubmitting      = errors.New("ballot submission in progress")
	ErrSubmitted       = errors.New("ballot already submitted")
	ErrRuleUnsupported = errors.New("voting rule not supported for ballots")

	ErrNoChoice      = errors.New("no vote choice selected")
	ErrInvalidChoice = errors.New("vote choice must be impeach or dismiss")
	ErrAlreadyVoted  = errors.New("already voted")

	ErrNoMembers           = errors.New("organization has no active members")
	ErrPetitionClosed      = errors.New("petition is not collecting signatures")
	ErrThresholdNotReached = errors.New("signature threshold not reached")
	ErrNotVoting           = errors.New("petition vote is not open")

	ErrUnknownKind = errors.New("unknown item kind")
	ErrWrongKind   = errors.New("item kind not valid for this view")
	ErrFlowActive  = errors.New("another flow is active; go back to the list first")
)

// FieldError is used to indicate an error with a specific field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	if err == nil {
		err = ErrInvalid
	}
	return &ValidationError{Err: err, Fields: flds}
}

func (err *ValidationError) Error() string {
	if err.Err == nil {
		return ErrInvalid.Error()
	}
	return err.Err.Error()
}

func (err *ValidationError) Unwrap() []error {
	if err.Err == nil || err.Err == ErrInvalid {
		return []error{ErrInvalid}
	}
	return []error{err.Err, ErrInvalid}
}

// Fields returns the field errors carried by err, if any.
func Fields(err error) []FieldError {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Fields
	}
	return nil
}
