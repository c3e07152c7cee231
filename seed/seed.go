// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package seed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/CAPTURE751/STUDENT-organization-management-system/auth"
	"github.com/CAPTURE751/STUDENT-organization-management-system/cliparse"
	"github.com/CAPTURE751/STUDENT-organization-management-system/db"
	"github.com/CAPTURE751/STUDENT-organization-management-system/models"
	"github.com/CAPTURE751/STUDENT-organization-management-system/voting"
)

type File struct {
	Organizations []Organization `yaml:"organizations"`
}

type Organization struct {
	ID        string     `yaml:"id"`
	Name      string     `yaml:"name"`
	Type      string     `yaml:"type"`
	Members   []Member   `yaml:"members"`
	Elections []Election `yaml:"elections"`
	Petitions []Petition `yaml:"petitions"`
}

type Member struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Email        string `yaml:"email"`
	Department   string `yaml:"department"`
	AcademicYear string `yaml:"academic_year"`
	Gender       string `yaml:"gender"`
	Role         string `yaml:"role"`
	Status       string `yaml:"status"`
}

// Election windows are relative to load time so a demo database always has
// something upcoming, open and finished.
type Election struct {
	ID          string        `yaml:"id"`
	Title       string        `yaml:"title"`
	Description string        `yaml:"description"`
	Type        string        `yaml:"type"`
	VotingRule  string        `yaml:"voting_rule"`
	AutoClose   *bool         `yaml:"auto_close"`
	StartsIn    time.Duration `yaml:"starts_in"`
	Duration    time.Duration `yaml:"duration"`
	Positions   []Position    `yaml:"positions"`
	Eligibility Eligibility   `yaml:"eligibility"`
}

type Position struct {
	Title       string      `yaml:"title"`
	Description string      `yaml:"description"`
	Candidates  []Candidate `yaml:"candidates"`
}

type Candidate struct {
	Name         string `yaml:"name"`
	Department   string `yaml:"department"`
	AcademicYear string `yaml:"academic_year"`
	Manifesto    string `yaml:"manifesto"`
	PhotoURL     string `yaml:"photo_url"`
}

type Eligibility struct {
	AcademicYears      []string `yaml:"academic_years"`
	Departments        []string `yaml:"departments"`
	MembershipStatuses []string `yaml:"membership_statuses"`
	Gender             string   `yaml:"gender"`
}

type Petition struct {
	ID                      string   `yaml:"id"`
	AccusedLeader           string   `yaml:"accused_leader"`
	AccusedRole             string   `yaml:"accused_role"`
	ConstitutionalViolation string   `yaml:"constitutional_violation"`
	MisconductDescription   string   `yaml:"misconduct_description"`
	EvidenceURL             string   `yaml:"evidence_url"`
	Signatures              []string `yaml:"signatures"`
}

// Stats counts what Apply inserted.
type Stats struct {
	Organizations int
	Members       int
	Elections     int
	Petitions     int
	Skipped       int
}

// Parse decodes a seed document. Unknown keys are errors.
func Parse(r io.Reader) (File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return File{}, fmt.Errorf("decode seed: %w", err)
	}
	return f, nil
}

// Load reads and applies the seed file at path.
func Load(ctx context.Context, conn *sql.DB, path string, cfg cliparse.Config) (Stats, error) {
	fh, err := os.Open(path)
	if err != nil {
		return Stats{}, fmt.Errorf("open seed: %w", err)
	}
	defer fh.Close()

	f, err := Parse(fh)
	if err != nil {
		return Stats{}, err
	}
	stats, err := Apply(ctx, conn, f, cfg, time.Now().UTC())
	if err != nil {
		return stats, err
	}
	slog.Info("seed loaded",
		"path", path,
		"organizations", stats.Organizations,
		"members", stats.Members,
		"elections", stats.Elections,
		"petitions", stats.Petitions,
		"skipped", stats.Skipped,
	)
	return stats, nil
}

// Apply inserts every organization not already present, each in its own
// transaction. Organizations that exist are skipped whole, so loading the
// same file twice is harmless.
func Apply(ctx context.Context, conn *sql.DB, f File, cfg cliparse.Config, now time.Time) (Stats, error) {
	var stats Stats
	for i, o := range f.Organizations {
		if o.ID == "" || o.Name == "" {
			return stats, fmt.Errorf("organizations[%d]: id and name are required", i)
		}
		_, err := db.GetOrganization(ctx, conn, o.ID)
		if err == nil {
			stats.Skipped++
			continue
		}
		if !errors.Is(err, db.ErrNotFound) {
			return stats, err
		}

		var add Stats
		err = db.InTx(ctx, conn, func(tx *sql.Tx) error {
			add = Stats{}
			return applyOrganization(ctx, tx, o, cfg, now, &add)
		})
		if err != nil {
			return stats, fmt.Errorf("organization %s: %w", o.ID, err)
		}
		stats.Organizations += add.Organizations
		stats.Members += add.Members
		stats.Elections += add.Elections
		stats.Petitions += add.Petitions
	}
	return stats, nil
}

func applyOrganization(ctx context.Context, tx *sql.Tx, o Organization, cfg cliparse.Config, now time.Time, stats *Stats) error {
	err := db.InsertOrganization(ctx, tx, models.Organization{ID: o.ID, Name: o.Name, Type: o.Type, CreatedAt: now})
	if err != nil {
		return err
	}
	stats.Organizations++

	for _, m := range o.Members {
		member := models.Member{
			ID:             m.ID,
			OrganizationID: o.ID,
			Name:           m.Name,
			Email:          m.Email,
			Department:     m.Department,
			AcademicYear:   m.AcademicYear,
			Gender:         m.Gender,
			Role:           m.Role,
			Status:         m.Status,
			JoinedAt:       now,
		}
		if member.ID == "" {
			if member.ID, err = auth.GenerateID(8); err != nil {
				return err
			}
		}
		if member.Role == "" {
			member.Role = models.RoleMember
		}
		if member.Status == "" {
			member.Status = voting.MemberActive
		}
		if err := db.InsertMember(ctx, tx, member); err != nil {
			return fmt.Errorf("member %q: %w", m.Name, err)
		}
		stats.Members++
	}

	for _, se := range o.Elections {
		e, err := voting.Complete(se.draft(now))
		if err != nil {
			return fmt.Errorf("election %q: %w", se.Title, err)
		}
		if se.ID != "" {
			e.ID = se.ID
		}
		voters, err := db.EligibleMembers(ctx, tx, o.ID, e.Eligibility)
		if err != nil {
			return err
		}
		e.TotalVoters = len(voters)
		if err := db.InsertElection(ctx, tx, o.ID, e, now); err != nil {
			return fmt.Errorf("election %q: %w", se.Title, err)
		}
		err = db.InsertElectorate(ctx, tx, e.ID, voters, func(memberID string) string {
			return auth.VoterHash(e.ID, memberID, cfg.ReceiptSalt)
		})
		if err != nil {
			return err
		}
		stats.Elections++
	}

	for _, sp := range o.Petitions {
		if err := applyPetition(ctx, tx, o.ID, sp, cfg, now); err != nil {
			return fmt.Errorf("petition against %q: %w", sp.AccusedLeader, err)
		}
		stats.Petitions++
	}
	return nil
}

func (se Election) draft(now time.Time) voting.Draft {
	starts := now.Add(se.StartsIn)
	duration := se.Duration
	if duration <= 0 {
		duration = 24 * time.Hour
	}
	ends := starts.Add(duration)
	autoClose := true
	if se.AutoClose != nil {
		autoClose = *se.AutoClose
	}

	positions := make([]voting.Position, len(se.Positions))
	for i, p := range se.Positions {
		candidates := make([]voting.Candidate, len(p.Candidates))
		for j, c := range p.Candidates {
			candidates[j] = voting.Candidate{
				Name:         c.Name,
				Department:   c.Department,
				AcademicYear: c.AcademicYear,
				Manifesto:    c.Manifesto,
				PhotoURL:     c.PhotoURL,
			}
		}
		positions[i] = voting.Position{Title: p.Title, Description: p.Description, Candidates: candidates}
	}

	return voting.Draft{
		Details: voting.Details{
			Title:       se.Title,
			Description: se.Description,
			Type:        voting.ElectionType(se.Type),
			VotingRule:  voting.VotingRule(se.VotingRule),
			StartsAt:    &starts,
			EndsAt:      &ends,
			AutoClose:   autoClose,
		},
		Positions: positions,
		Eligibility: voting.Eligibility{
			AcademicYears:      se.Eligibility.AcademicYears,
			Departments:        se.Eligibility.Departments,
			MembershipStatuses: se.Eligibility.MembershipStatuses,
			Gender:             se.Eligibility.Gender,
		},
	}
}

func applyPetition(ctx context.Context, tx *sql.Tx, orgID string, sp Petition, cfg cliparse.Config, now time.Time) error {
	total, err := db.CountActiveMembers(ctx, tx, orgID)
	if err != nil {
		return err
	}
	id := sp.ID
	if id == "" {
		if id, err = auth.GenerateID(8); err != nil {
			return err
		}
	}
	p, err := voting.NewPetition(id, voting.PetitionDraft{
		AccusedLeader:           sp.AccusedLeader,
		AccusedRole:             sp.AccusedRole,
		ConstitutionalViolation: sp.ConstitutionalViolation,
		MisconductDescription:   sp.MisconductDescription,
		EvidenceURL:             sp.EvidenceURL,
	}, total, cfg.SignatureThreshold, now)
	if err != nil {
		return err
	}
	if err := db.InsertPetition(ctx, tx, orgID, p); err != nil {
		return err
	}

	for _, memberID := range sp.Signatures {
		if err := checkSigner(ctx, tx, orgID, memberID); err != nil {
			return err
		}
		if err := db.AddSignature(ctx, tx, p.ID, memberID, now); err != nil {
			return fmt.Errorf("signature of %s: %w", memberID, err)
		}
		if err := p.AddSignature(); err != nil {
			return err
		}
	}
	if p.Status == voting.PetitionVerified {
		return db.SetPetitionStatus(ctx, tx, p.ID, voting.PetitionCollecting, voting.PetitionVerified)
	}
	return nil
}

// ErrIneligibleSigner is returned for a seeded signature whose member is
// missing, belongs to another organization, or is not active.
var ErrIneligibleSigner = errors.New("signer is not an active member of the organization")

func checkSigner(ctx context.Context, tx *sql.Tx, orgID, memberID string) error {
	m, err := db.GetMember(ctx, tx, memberID)
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("signature of %s: %w", memberID, ErrIneligibleSigner)
	}
	if err != nil {
		return err
	}
	if m.OrganizationID != orgID || m.Status != voting.MemberActive {
		return fmt.Errorf("signature of %s: %w", memberID, ErrIneligibleSigner)
	}
	return nil
}
