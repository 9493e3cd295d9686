package property

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/mobcash/mobcash/core"
	"github.com/tsenart/nap"
)

type store struct {
	db *nap.DB
}

func New(db *nap.DB) core.PropertyStore {
	return &store{db: db}
}

func (s *store) Get(ctx context.Context, key string, value any) error {
	b := sq.Select("`value`").From("properties").Where("`key` = ?", key)
	row := b.RunWith(s.db.Master()).QueryRowContext(ctx)

	var raw []byte
	if err := row.Scan(&raw); err == nil {
		return json.Unmarshal(raw, value)
	} else if errors.Is(err, sql.ErrNoRows) {
		return nil
	} else {
		return err
	}
}

func (s *store) Set(ctx context.Context, key string, value any) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	b := sq.Update("properties").
		Set("`value`", jsonValue).
		Set("`version`", sq.Expr("`version` + 1")).
		Where("`key` = ?", key)

	result, err := b.RunWith(s.db.Master()).ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to set property: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if n > 0 {
		return nil
	}

	b2 := sq.Insert("properties").Columns("`key`", "`value`").Values(key, jsonValue)
	_, err = b2.RunWith(s.db.Master()).ExecContext(ctx)
	return err
}
