package state

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kolmo-labs/buildledger/pkg/core"
)

// SaveQuote persists a quote and its line items atomically.
func (s *SQLiteStore) SaveQuote(ctx context.Context, q *core.Quote) error {
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
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ID, projectID, q.MaterialsSubtotal, q.LaborSubtotal, q.PermitFees,
		q.Subtotal, q.MarginAmount, q.Total, q.DeckSqft, q.PricePerSqft, q.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save quote: %w", err)
	}

	for i, li := range q.LineItems {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO quote_line_items (quote_id, position, category, description, quantity, unit, material_cost, labor_cost)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			q.ID, i, li.Category, li.Description, li.Quantity, li.Unit, li.MaterialCost, li.LaborCost,
		)
		if err != nil {
			return fmt.Errorf("failed to save quote line item: %w", err)
		}
	}

	return tx.Commit()
}

// ListQuotesByProject retrieves all quotes for a project with their line
// items, newest first.
func (s *SQLiteStore) ListQuotesByProject(ctx context.Context, projectID int64) ([]*core.Quote, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, materials_subtotal, labor_subtotal, permit_fees,
		        subtotal, margin_amount, total, deck_sqft, price_per_sqft, created_at
		 FROM quotes WHERE project_id = ? ORDER BY created_at DESC`,
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
		items, err := s.quoteLineItems(ctx, q.ID)
		if err != nil {
			return nil, err
		}
		q.LineItems = items
	}
	return quotes, nil
}

func (s *SQLiteStore) quoteLineItems(ctx context.Context, quoteID string) ([]core.QuoteLineItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, description, quantity, unit, material_cost, labor_cost
		 FROM quote_line_items WHERE quote_id = ? ORDER BY position`,
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
