// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request and response types for the API.

Domain types (elections, petitions, receipts, tallies) live in the voting
package; the types here embed them and add what storage knows, such as the
owning organization and timestamps.

# Request Types

  - CreateOrganizationRequest: name, type
  - AddMemberRequest: member profile and membership status
  - CreateElectionRequest: organization_id plus a full wizard draft
  - SubmitBallotRequest: selections (position id → candidate id)
  - CreatePetitionRequest: organization_id plus the petition form
  - CastVoteRequest: choice (impeach or dismiss)

Embedded drafts are skipped by struct validation (validate:"-") and checked
by the voting package instead, which reports wizard step paths.

# Response Types

  - Organization, Member
  - Election, ElectionSummary, CreateElectionResponse
  - DraftValidationResponse: per-step field errors of a draft
  - SubmitBallotResponse: receipt_id and the "voted k of n" message
  - Petition, Supporter, SignatureResponse
  - CastVoteResponse
  - LiveUpdate: turnout pushed over the live websocket
  - ErrorResponse: error, message, optional field errors
*/
package models
