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

// --- Lead operations ---

func (s *PostgresStore) CreateLead(ctx context.Context, l *core.Lead) error {
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
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		l.ID, l.Name, l.Email, l.Phone, l.SiteAddress, l.Notes, l.Status, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetLead(ctx context.Context, id string) (*core.Lead, error) {
	l := &core.Lead{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, phone, site_address, notes, status, created_at, updated_at
		 FROM leads WHERE id = $1`,
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

func (s *PostgresStore) ListLeads(ctx context.Context) ([]*core.Lead, error) {
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

func (s *PostgresStore) UpdateLeadStatus(ctx context.Context, id string, status core.LeadStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE leads SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update lead status: %w", err)
	}
	return requireRow(res, "lead", id)
}

// --- Quote operations ---

func (s *PostgresStore) SaveQuote(ctx context.Context, q *core.Quote) error {
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var projectID any
	if q.ProjectID != 0 {
		projectID = q.ProjectID
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO quotes (id, project_id, materials_subtotal, labor_subtotal, permit_fees,
		                     subtotal, margin_amount, total, deck_sqft, price_per_sqft, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		q.ID, projectID, q.MaterialsSubtotal, q.LaborSubtotal, q.PermitFees,
		q.Subtotal, q.MarginAmount, q.Total, q.DeckSqft, q.PricePerSqft, q.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save quote: %w", err)
	}

	for i, li := range q.LineItems {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO quote_line_items (quote_id, position, category, description, quantity, unit, material_cost, labor_cost)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			q.ID, i, li.Category, li.Description, li.Quantity, li.Unit, li.MaterialCost, li.LaborCost,
		)
		if err != nil {
			return fmt.Errorf("failed to save quote line item: %w", err)
		}
	}

	return tx.Commit()
}

func (s *PostgresStore) ListQuotesByProject(ctx context.Context, projectID int64) ([]*core.Quote, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, materials_subtotal, labor_subtotal, permit_fees,
		        subtotal, margin_amount, total, deck_sqft, price_per_sqft, created_at
		 FROM quotes WHERE project_id = $1 ORDER BY created_at DESC`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}
	defer rows.Close()

	var quotes []*core.Quote
	for rows.Next() {
		q := &core.Quote{}
		if err := rows.Scan(&q.ID, &q.ProjectID, &q.MaterialsSubtotal, &q.LaborSubtotal, &q.PermitFees,
			&q.Subtotal, &q.MarginAmount, &q.Total, &q.DeckSqft, &q.PricePerSqft, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		quotes = append(quotes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, q := range quotes {
		items, err := s.postgresQuoteLineItems(ctx, q.ID)
		if err != nil {
			return nil, err
		}
		q.LineItems = items
	}
	return quotes, nil
}

func (s *PostgresStore) postgresQuoteLineItems(ctx context.Context, quoteID string) ([]core.QuoteLineItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, description, quantity, unit, material_cost, labor_cost
		 FROM quote_line_items WHERE quote_id = $1 ORDER BY position`,
		quoteID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list quote line items: %w", err)
	}
	defer rows.Close()

	var items []core.QuoteLineItem
	for rows.Next() {
		var li core.QuoteLineItem
		if err := rows.Scan(&li.Category, &li.Description, &li.Quantity, &li.Unit, &li.MaterialCost, &li.LaborCost); err != nil {
			return nil, fmt.Errorf("failed to scan quote line item: %w", err)
		}
		items = append(items, li)
	}
	return items, rows.Err()
}
