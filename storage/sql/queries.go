package sql

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of the pgx connection / pool API the storage relies on
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

const (
	settingQuery = `SELECT value FROM settings WHERE key = $1`

	saveSettingQuery = `
INSERT INTO settings (key, value, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

	feeEntryQuery = `
SELECT rate, amount, discount, rank_index, fee_percent, text, computed_at
FROM fee_entries
WHERE id = 1`

	saveFeeEntryQuery = `
INSERT INTO fee_entries (id, rate, amount, discount, rank_index, fee_percent, text, computed_at)
VALUES (1, $1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE SET rate        = EXCLUDED.rate,
                               amount      = EXCLUDED.amount,
                               discount    = EXCLUDED.discount,
                               rank_index  = EXCLUDED.rank_index,
                               fee_percent = EXCLUDED.fee_percent,
                               text        = EXCLUDED.text,
                               computed_at = EXCLUDED.computed_at`
)
