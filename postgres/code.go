package postgres

import (
	"context"
	"fmt"

	"github.com/meikuraledutech/wbs"
)

// CreateCode inserts a lookup code.
// Returns wbs.ErrCodeExists when the value is taken by any type.
func (s *PGStore) CreateCode(ctx context.Context, c *wbs.Code) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO wbs_codes (code_value, code_type, code_label) VALUES ($1, $2, $3)`,
		c.Value, c.Type, c.Label,
	)
	if err != nil {
		if code, _ := pgCode(err); code == uniqueViolation {
			return wbs.ErrCodeExists
		}
		return fmt.Errorf("wbs: insert code: %w", err)
	}
	return nil
}

// ListCodes returns the codes of one type in creation order.
func (s *PGStore) ListCodes(ctx context.Context, codeType string) ([]wbs.Code, error) {
	rows, err := s.db.Query(ctx,
		`SELECT code_type, code_value, code_label FROM wbs_codes WHERE code_type = $1 ORDER BY created_at, code_value`,
		codeType)
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("wbs: rows codes: %w", err)
	}
	return codes, nil
}
