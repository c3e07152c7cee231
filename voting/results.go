// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"fmt"
	"slices"
)

type ViewMode string

const (
	ViewSummary   ViewMode = "summary"
	ViewDetailed  ViewMode = "detailed"
	ViewAnalytics ViewMode = "analytics"
)

// ParseViewMode accepts the three result views; empty means summary.
func ParseViewMode(s string) (ViewMode, error) {
	switch ViewMode(s) {
	case "", ViewSummary:
		return ViewSummary, nil
	case ViewDetailed, ViewAnalytics:
		return ViewMode(s), nil
	default:
		return "", fmt.Errorf("unknown view %q", s)
	}
}

type CandidateResult struct {
	CandidateID string  `json:"candidate_id"`
	Name        string  `json:"name"`
	Votes       int     `json:"votes"`
	Percentage  float64 `json:"percentage"`
	Rank        int     `json:"rank"`
	Label       string  `json:"label"`
}

type PositionResult struct {
	PositionID string            `json:"position_id"`
	Title      string            `json:"title"`
	TotalVotes int               `json:"total_votes"`
	Candidates []CandidateResult `json:"candidates"`
	Winner     *CandidateResult  `json:"winner,omitempty"`
	Tie        bool              `json:"tie"`
}

// Counts maps position id to candidate id to votes.
type Counts map[string]map[string]int

// Tabulate ranks the candidates of every position from raw counts.
// Percentages are derived here and never stored. A position has a winner
// only when its top candidate has votes and is not tied.
func Tabulate(e Election, counts Counts) []PositionResult {
	results := make([]PositionResult, 0, len(e.Positions))
	for _, p := range e.Positions {
		byCandidate := counts[p.ID]

		total := 0
		for _, c := range p.Candidates {
			total += byCandidate[c.ID]
		}

		candidates := make([]CandidateResult, len(p.Candidates))
		for i, c := range p.Candidates {
			votes := byCandidate[c.ID]
			candidates[i] = CandidateResult{
				CandidateID: c.ID,
				Name:        c.Name,
				Votes:       votes,
				Percentage:  percent(votes, total, 1),
			}
		}
		// Stable keeps ballot order among equal counts.
		slices.SortStableFunc(candidates, func(a, b CandidateResult) int {
			return b.Votes - a.Votes
		})
		for i := range candidates {
			candidates[i].Rank = i + 1
			if i == 0 {
				candidates[i].Label = "Winner"
			} else {
				candidates[i].Label = fmt.Sprintf("#%d", i+1)
			}
		}

		r := PositionResult{
			PositionID: p.ID,
			Title:      p.Title,
			TotalVotes: total,
			Candidates: candidates,
		}
		if len(candidates) > 1 && candidates[0].Votes == candidates[1].Votes {
			r.Tie = true
		}
		if len(candidates) > 0 && candidates[0].Votes > 0 && !r.Tie {
			w := candidates[0]
			r.Winner = &w
		} else if len(candidates) > 0 {
			candidates[0].Label = "#1"
		}
		results = append(results, r)
	}
	return results
}

type Winner struct {
	PositionID    string          `json:"position_id"`
	PositionTitle string          `json:"position_title"`
	Candidate     CandidateResult `json:"candidate"`
}

type Summary struct {
	TotalVotes  int      `json:"total_votes"`
	TotalVoters int      `json:"total_voters"`
	Turnout     float64  `json:"turnout"`
	Positions   int      `json:"positions"`
	Candidates  int      `json:"candidates"`
	Winners     []Winner `json:"winners"`
}

type PositionAnalytics struct {
	PositionID string `json:"position_id"`
	Title      string `json:"title"`
	TotalVotes int    `json:"total_votes"`
	// Participation is the share of ballots that chose anyone here.
	Participation float64           `json:"participation"`
	Margin        int               `json:"margin"`
	MarginPoints  float64           `json:"margin_points"`
	Shares        []CandidateResult `json:"shares"`
}

// Report is one rendering of an election's results. Only the section of
// the requested view is set.
type Report struct {
	ElectionID string              `json:"election_id"`
	Title      string              `json:"title"`
	View       ViewMode            `json:"view"`
	Summary    *Summary            `json:"summary,omitempty"`
	Positions  []PositionResult    `json:"positions,omitempty"`
	Analytics  []PositionAnalytics `json:"analytics,omitempty"`
}

func BuildReport(e Election, results []PositionResult, view ViewMode) Report {
	r := Report{ElectionID: e.ID, Title: e.Title, View: view}
	switch view {
	case ViewDetailed:
		r.Positions = results
	case ViewAnalytics:
		r.Analytics = analytics(e, results)
	default:
		r.View = ViewSummary
		r.Summary = summarize(e, results)
	}
	return r
}

func summarize(e Election, results []PositionResult) *Summary {
	s := &Summary{
		TotalVotes:  e.VotedCount,
		TotalVoters: e.TotalVoters,
		Turnout:     e.Turnout(),
		Positions:   len(e.Positions),
		Candidates:  e.CandidateCount(),
		Winners:     []Winner{},
	}
	for _, r := range results {
		if r.Winner != nil {
			s.Winners = append(s.Winners, Winner{
				PositionID:    r.PositionID,
				PositionTitle: r.Title,
				Candidate:     *r.Winner,
			})
		}
	}
	return s
}

func analytics(e Election, results []PositionResult) []PositionAnalytics {
	out := make([]PositionAnalytics, 0, len(results))
	for _, r := range results {
		a := PositionAnalytics{
			PositionID:    r.PositionID,
			Title:         r.Title,
			TotalVotes:    r.TotalVotes,
			Participation: percent(r.TotalVotes, e.VotedCount, 1),
			Shares:        r.Candidates,
		}
		if len(r.Candidates) > 1 {
			a.Margin = r.Candidates[0].Votes - r.Candidates[1].Votes
			a.MarginPoints = round(r.Candidates[0].Percentage-r.Candidates[1].Percentage, 1)
		} else if len(r.Candidates) == 1 {
			a.Margin = r.Candidates[0].Votes
			a.MarginPoints = r.Candidates[0].Percentage
		}
		out = append(out, a)
	}
	return out
}
