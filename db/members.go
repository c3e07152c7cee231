// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/CAPTURE751/STUDENT-organization-management-system/models"
	"github.com/CAPTURE751/STUDENT-organization-management-system/voting"
)

func InsertOrganization(ctx context.Context, q Queryer, o models.Organization) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO organization (id, name, type, created_at)
		VALUES ($1, $2, $3, $4)
	`, o.ID, o.Name, o.Type, o.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert organization: %w", err)
	}
	return nil
}

func GetOrganization(ctx context.Context, q Queryer, id string) (models.Organization, error) {
	var o models.Organization
	err := q.QueryRowContext(ctx, `
		SELECT id, name, type, created_at FROM organization WHERE id = $1
	`, id).Scan(&o.ID, &o.Name, &o.Type, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Organization{}, ErrNotFound
	}
	if err != nil {
		return models.Organization{}, fmt.Errorf("get organization: %w", err)
	}
	return o, nil
}

func InsertMember(ctx context.Context, q Queryer, m models.Member) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO membership (id, organization_id, name, email, department, academic_year, gender, role, status, joined_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, m.ID, m.OrganizationID, m.Name, m.Email, m.Department, m.AcademicYear, m.Gender, m.Role, m.Status, m.JoinedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert member: %w", err)
	}
	return nil
}

const memberColumns = `id, organization_id, name, email, department, academic_year, gender, role, status, joined_at`

func scanMember(s interface{ Scan(...any) error }) (models.Member, error) {
	var m models.Member
	err := s.Scan(&m.ID, &m.OrganizationID, &m.Name, &m.Email, &m.Department,
		&m.AcademicYear, &m.Gender, &m.Role, &m.Status, &m.JoinedAt)
	return m, err
}

func GetMember(ctx context.Context, q Queryer, id string) (models.Member, error) {
	m, err := scanMember(q.QueryRowContext(ctx, `
		SELECT `+memberColumns+` FROM membership WHERE id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Member{}, ErrNotFound
	}
	if err != nil {
		return models.Member{}, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}

// ListMembers returns an organization's roster ordered by name. An empty
// status lists everyone.
func ListMembers(ctx context.Context, q Queryer, orgID, status string) ([]models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM membership WHERE organization_id = $1`
	args := []any{orgID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY name, id`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	members := []models.Member{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// CountActiveMembers is the membership base petitions and impeachment
// votes are sized from.
func CountActiveMembers(ctx context.Context, q Queryer, orgID string) (int, error) {
	var n int
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM membership WHERE organization_id = $1 AND status = $2
	`, orgID, voting.MemberActive).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return n, nil
}

// EligibleMembers returns the ids of the members of an organization
// admitted by rules.
func EligibleMembers(ctx context.Context, q Queryer, orgID string, rules voting.Eligibility) ([]string, error) {
	members, err := ListMembers(ctx, q, orgID, "")
	if err != nil {
		return nil, err
	}
	ids := []string{}
	for _, m := range members {
		if rules.Admits(m.Voter()) {
			ids = append(ids, m.ID)
		}
	}
	return ids, nil
}

// CountEligible counts the members of an organization admitted by rules.
func CountEligible(ctx context.Context, q Queryer, orgID string, rules voting.Eligibility) (int, error) {
	ids, err := EligibleMembers(ctx, q, orgID, rules)
	return len(ids), err
}

// Leaders lists active members holding a role other than plain member;
// they are the ones a petition can be raised against.
func Leaders(ctx context.Context, q Queryer, orgID string) ([]models.Member, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+memberColumns+` FROM membership
		WHERE organization_id = $1 AND status = $2 AND role <> $3
		ORDER BY name, id
	`, orgID, voting.MemberActive, models.RoleMember)
	if err != nil {
		return nil, fmt.Errorf("list leaders: %w", err)
	}
	defer rows.Close()

	leaders := []models.Member{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan leader: %w", err)
		}
		leaders = append(leaders, m)
	}
	return leaders, rows.Err()
}
