package sqlite

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the elastic journal.
var Migrations = migrate.NewGroup("elastic")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_elastic_journal",
			Version: "20240601000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS elastic_journal (
    id          TEXT PRIMARY KEY,
    seq         INTEGER NOT NULL,
    kind        TEXT NOT NULL DEFAULT '',
    ref         TEXT NOT NULL DEFAULT '',
    state       TEXT NOT NULL,
    accounts    TEXT NOT NULL DEFAULT '[]',
    allowances  TEXT NOT NULL DEFAULT '[]',
    settings    TEXT NOT NULL DEFAULT '{}',
    created_at  TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at  TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_elastic_journal_seq ON elastic_journal (seq);
CREATE INDEX IF NOT EXISTS idx_elastic_journal_kind ON elastic_journal (kind, seq);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS elastic_journal`)
				return err
			},
		},
	)
}
