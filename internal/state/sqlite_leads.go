package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kolmo-labs/buildledger/pkg/core"
)

// CreateLead inserts a captured lead, assigning a UUID when none is set.
func (s *SQLiteStore) CreateLead(ctx context.Context, l *core.Lead) error {
	if l.Name == "" {
		return fmt.Errorf("lead name is required: %w", core.ErrInvalidInput)
	}
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	if l.Status == "" {
		l.Status = core.LeadStatusNew
	}

	now := time.Now().UTC()
	l.CreatedAt = now
	l.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO leads (id, name, email, phone, site_address, notes, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.Name, l.Email, l.Phone, l.SiteAddress, l.Notes, l.Status, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}
	return nil
}

// GetLead retrieves a lead by ID.
func (s *SQLiteStore) GetLead(ctx context.Context, id string) (*core.Lead, error) {
	l := &core.Lead{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, phone, site_address, notes, status, created_at, updated_at
		 FROM leads WHERE id = ?`,
		id,
	).Scan(&l.ID, &l.Name, &l.Email, &l.Phone, &l.SiteAddress, &l.Notes, &l.Status, &l.CreatedAt, &l.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("lead %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return l, nil
}

// ListLeads retrieves all leads, newest first.
func (s *SQLiteStore) ListLeads(ctx context.Context) ([]*core.Lead, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, phone, site_address, notes, status, created_at, updated_at
		 FROM leads ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	var leads []*core.Lead
	for rows.Next() {
		l := &core.Lead{}
		if err := rows.Scan(&l.ID, &l.Name, &l.Email, &l.Phone, &l.SiteAddress, &l.Notes, &l.Status, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

// UpdateLeadStatus transitions a lead to the given status.
func (s *SQLiteStore) UpdateLeadStatus(ctx context.Context, id string, status core.LeadStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE leads SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update lead status: %w", err)
	}
	return requireRow(res, "lead", id)
}
