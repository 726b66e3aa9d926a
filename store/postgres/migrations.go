package postgres

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
    seq         BIGINT NOT NULL,
    kind        TEXT NOT NULL DEFAULT '',
    ref         TEXT NOT NULL DEFAULT '',
    state       JSONB NOT NULL,
    accounts    JSONB NOT NULL DEFAULT '[]',
    allowances  JSONB NOT NULL DEFAULT '[]',
    settings    JSONB NOT NULL DEFAULT '{}',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_elastic_journal_seq ON elastic_journal (seq);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS elastic_journal`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "index_elastic_journal_kind",
			Version: "20240601000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE INDEX IF NOT EXISTS idx_elastic_journal_kind ON elastic_journal (kind, seq);
CREATE INDEX IF NOT EXISTS idx_elastic_journal_ref ON elastic_journal (ref) WHERE ref != '';
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
DROP INDEX IF EXISTS idx_elastic_journal_ref;
DROP INDEX IF EXISTS idx_elastic_journal_kind;
`)
				return err
			},
		},
	)
}
