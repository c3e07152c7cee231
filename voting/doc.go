// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package voting holds the election workflows as plain state machines with no
I/O. The handlers package drives them and persists what they produce.

# Setup Wizard

A Wizard builds one election through three ordered steps:

	details → positions → eligibility

Each step has a validation function returning []FieldError. Next refuses to
advance while the list is non-empty, and Create only succeeds from the last
step with every step valid:

	w := voting.NewWizard()
	w.SetDetails(details)
	_ = w.Next()
	w.CandidateForm.Name = "Jane Doe"
	_, _ = w.AddCandidate(w.Draft().Positions[0].ID)

# Ballot Booth

A Booth walks a voter through the positions of one election, one per step.
Selections can be changed freely; Next needs a choice for the current
position. Submit is only allowed from the last position and accepts partial
ballots. The submission itself is injected as a BallotSubmitter, so the
default two second delay (Delayed) can be cancelled through the context.

# Impeachment

A Petition collects signatures until ceil(members × threshold / 100) is
reached, then moves collecting → verified → voting → completed. An
ImpeachmentBallot casts impeach or dismiss once. Tally reports quorum (share
of eligible members who voted) and majority (share of votes cast).

# Results

Vote counts are the only stored numbers. Tabulate derives percentages, ranks
and winners; BuildReport renders the summary, detailed or analytics view.

# Catalog

Item is a tagged union of elections and petitions. Navigator keeps the single
active view and routes selections to the booth, the results or the
impeachment vote.
*/
package voting
