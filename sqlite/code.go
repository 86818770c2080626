package sqlite

import (
	"context"
	"fmt"

	"github.com/meikuraledutech/wbs"
)

// CreateCode inserts a lookup code. Values are unique across all types.
func (s *SQLiteStore) CreateCode(ctx context.Context, c *wbs.Code) error {
	taken, err := exists(ctx, s.db, `SELECT EXISTS (SELECT 1 FROM wbs_codes WHERE code_value = ?)`, c.Value)
	if err != nil {
		return fmt.Errorf("wbs: check code: %w", err)
	}
	if taken {
		return wbs.ErrCodeExists
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO wbs_codes (code_value, code_type, code_label) VALUES (?, ?, ?)`,
		c.Value, c.Type, c.Label,
	); err != nil {
		return fmt.Errorf("wbs: insert code: %w", err)
	}
	return nil
}

// ListCodes returns the codes of one type in insertion order.
func (s *SQLiteStore) ListCodes(ctx context.Context, codeType string) ([]wbs.Code, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT code_type, code_value, code_label FROM wbs_codes WHERE code_type = ? ORDER BY rowid`, codeType)
	if err != nil {
		return nil, fmt.Errorf("wbs: list codes: %w", err)
	}
	defer rows.Close()

	codes := []wbs.Code{}
	for rows.Next() {
		var c wbs.Code
		if err := rows.Scan(&c.Type, &c.Value, &c.Label); err != nil {
			return nil, fmt.Errorf("wbs: scan code: %w", err)
		}
		codes = append(codes, c)
	}
	return codes, rows.Err()
}
