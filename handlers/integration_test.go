// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CAPTURE751/STUDENT-organization-management-system/live"
	"github.com/CAPTURE751/STUDENT-organization-management-system/middleware"
	"github.com/CAPTURE751/STUDENT-organization-management-system/models"
	"github.com/CAPTURE751/STUDENT-organization-management-system/router"
	"github.com/CAPTURE751/STUDENT-organization-management-system/testutil"
	"github.com/CAPTURE751/STUDENT-organization-management-system/voting"
)

type client struct {
	t   *testing.T
	url string
}

func (c client) do(method, path, memberID string, body any, out any) int {
	c.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, c.url+path, reader)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if memberID != "" {
		req.Header.Set(middleware.MemberHeader, memberID)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// TestElectionWorkflow drives an election from organization setup to final
// results over HTTP, with a live subscriber watching turnout.
func TestElectionWorkflow(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := live.NewHub()
	go hub.Run(ctx)

	srv := httptest.NewServer(middleware.CORS(cfg.CORSOrigins)(router.NewRouter(conn, cfg, router.Services{Hub: hub})))
	t.Cleanup(srv.Close)
	c := client{t: t, url: srv.URL}

	// 1. Organization and roster
	var org models.Organization
	require.Equal(t, http.StatusCreated, c.do("POST", "/organizations", "", models.CreateOrganizationRequest{Name: "Physics Society", Type: "academic"}, &org))

	memberIDs := make([]string, 0, 4)
	for _, name := range []string{"Ada", "Grace", "Linus", "Ken"} {
		var m models.Member
		require.Equal(t, http.StatusCreated, c.do("POST", "/organizations/"+org.ID+"/members", "",
			models.AddMemberRequest{Name: name, Department: "Physics", AcademicYear: "Year 2", Status: voting.MemberActive}, &m))
		memberIDs = append(memberIDs, m.ID)
	}
	var late models.Member
	require.Equal(t, http.StatusCreated, c.do("POST", "/organizations/"+org.ID+"/members", "",
		models.AddMemberRequest{Name: "Newcomer"}, &late))

	// 2. Wizard draft then creation
	start := time.Now().Add(-time.Minute).UTC().Truncate(time.Second)
	end := start.Add(time.Hour)
	draft := voting.Draft{
		Details: voting.Details{Title: "Executive Committee", StartsAt: &start, EndsAt: &end},
		Positions: []voting.Position{
			{Title: "President", Candidates: []voting.Candidate{{Name: "Ada"}, {Name: "Grace"}}},
			{Title: "Secretary", Candidates: []voting.Candidate{{Name: "Linus"}, {Name: "Ken"}}},
		},
	}
	var check models.DraftValidationResponse
	require.Equal(t, http.StatusOK, c.do("POST", "/elections/drafts/validate", "", draft, &check))
	require.True(t, check.Valid, "draft errors: %v", check.Errors)

	var created models.CreateElectionResponse
	require.Equal(t, http.StatusCreated, c.do("POST", "/elections", "", models.CreateElectionRequest{OrganizationID: org.ID, Draft: draft}, &created))
	assert.Equal(t, 4, created.TotalVoters, "pending members are not in the default electorate")

	var election models.Election
	require.Equal(t, http.StatusOK, c.do("GET", "/elections/"+created.ElectionID, "", nil, &election))
	require.Equal(t, voting.StatusActive, election.Status)
	pres, sec := election.Positions[0], election.Positions[1]

	// 3. Live subscriber
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/elections/" + election.ID + "/live"
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer ws.Close()

	var update models.LiveUpdate
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, ws.ReadJSON(&update))
	assert.Equal(t, 0, update.VotedCount)

	// 4. Voting; results stay sealed
	ballots := []map[string]string{
		{pres.ID: pres.Candidates[0].ID, sec.ID: sec.Candidates[1].ID},
		{pres.ID: pres.Candidates[0].ID},
		{pres.ID: pres.Candidates[1].ID, sec.ID: sec.Candidates[1].ID},
	}
	for i, sel := range ballots {
		var receipt models.SubmitBallotResponse
		require.Equal(t, http.StatusCreated, c.do("POST", "/elections/"+election.ID+"/ballots", memberIDs[i],
			models.SubmitBallotRequest{Selections: sel}, &receipt))

		require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
		require.NoError(t, ws.ReadJSON(&update))
		assert.Equal(t, i+1, update.VotedCount)
	}
	assert.Equal(t, 75.0, update.Turnout)

	assert.Equal(t, http.StatusConflict, c.do("POST", "/elections/"+election.ID+"/ballots", memberIDs[0],
		models.SubmitBallotRequest{Selections: ballots[1]}, nil))
	assert.Equal(t, http.StatusForbidden, c.do("POST", "/elections/"+election.ID+"/ballots", late.ID,
		models.SubmitBallotRequest{Selections: ballots[1]}, nil))
	assert.Equal(t, http.StatusForbidden, c.do("GET", "/elections/"+election.ID+"/results", "", nil, nil))

	// 5. Close the window and read the results
	_, err = conn.Exec(`UPDATE election SET ends_at = $1 WHERE id = $2`, time.Now().Add(-time.Second).UTC(), election.ID)
	require.NoError(t, err)

	assert.Equal(t, http.StatusConflict, c.do("POST", "/elections/"+election.ID+"/ballots", memberIDs[3],
		models.SubmitBallotRequest{Selections: ballots[1]}, nil))

	var report voting.Report
	require.Equal(t, http.StatusOK, c.do("GET", "/elections/"+election.ID+"/results", "", nil, &report))
	require.NotNil(t, report.Summary)
	assert.Equal(t, 3, report.Summary.TotalVotes)
	require.Len(t, report.Summary.Winners, 2)
	for _, w := range report.Summary.Winners {
		switch w.PositionID {
		case pres.ID:
			assert.Equal(t, pres.Candidates[0].ID, w.Candidate.CandidateID)
		case sec.ID:
			assert.Equal(t, sec.Candidates[1].ID, w.Candidate.CandidateID)
		}
	}

	var completed []models.ElectionSummary
	require.Equal(t, http.StatusOK, c.do("GET", "/elections?status=completed&org="+org.ID, "", nil, &completed))
	require.Len(t, completed, 1)
	assert.Equal(t, 3, completed[0].VotedCount)
}

// TestImpeachmentWorkflow drives a petition from filing to a binding vote
func TestImpeachmentWorkflow(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	srv := httptest.NewServer(router.NewRouter(conn, cfg, router.Services{}))
	t.Cleanup(srv.Close)
	c := client{t: t, url: srv.URL}

	orgID := testutil.CreateTestOrganization(t, conn)
	members := testutil.AddTestMembers(t, conn, orgID, 5)
	treasurer := testutil.AddTestMember(t, conn, orgID, "Sam Smith", voting.MemberActive, "treasurer")

	var leaders []models.Member
	require.Equal(t, http.StatusOK, c.do("GET", "/organizations/"+orgID+"/leaders", "", nil, &leaders))
	require.Len(t, leaders, 1)
	assert.Equal(t, treasurer, leaders[0].ID)

	var petition models.PetitionDetail
	require.Equal(t, http.StatusCreated, c.do("POST", "/petitions", "", models.CreatePetitionRequest{
		OrganizationID: orgID,
		PetitionDraft: voting.PetitionDraft{
			AccusedLeader:           leaders[0].Name,
			AccusedRole:             leaders[0].Role,
			ConstitutionalViolation: "Article 7",
			MisconductDescription:   "Missed every meeting this term.",
		},
	}, &petition))
	// ceil(6 * 20%) = 2
	require.Equal(t, 2, petition.RequiredSignatures)
	base := "/petitions/" + petition.ID

	assert.Equal(t, http.StatusConflict, c.do("POST", base+"/vote/open", "", nil, nil))
	for _, m := range members[:2] {
		require.Equal(t, http.StatusCreated, c.do("POST", base+"/signatures", m, nil, nil))
	}
	require.Equal(t, http.StatusOK, c.do("POST", base+"/vote/open", "", nil, &petition))
	assert.Equal(t, voting.PetitionVoting, petition.Status)
	assert.Equal(t, 6, petition.EligibleVoters)

	for _, m := range members[:3] {
		require.Equal(t, http.StatusCreated, c.do("POST", base+"/votes", m, models.CastVoteRequest{Choice: voting.ChoiceImpeach}, nil))
	}
	require.Equal(t, http.StatusCreated, c.do("POST", base+"/votes", treasurer, models.CastVoteRequest{Choice: voting.ChoiceDismiss}, nil))

	var tally voting.TallySummary
	require.Equal(t, http.StatusOK, c.do("POST", base+"/vote/close", "", nil, &tally))
	assert.Equal(t, 4, tally.Voted)
	assert.True(t, tally.QuorumMet)
	assert.True(t, tally.Impeached)

	var listed []models.Petition
	require.Equal(t, http.StatusOK, c.do("GET", "/petitions?org="+orgID, "", nil, &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, voting.PetitionCompleted, listed[0].Status)
}
