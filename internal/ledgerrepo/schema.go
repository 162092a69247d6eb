package ledgerrepo

import (
	"context"
	"database/sql"
	"fmt"
)

// postgresSchema mirrors db/migration/000001_init_schema.up.sql.
const postgresSchema = `
CREATE TABLE IF NOT EXISTS accounts (
    id             VARCHAR(36) PRIMARY KEY,
    owner          VARCHAR(255) NOT NULL,
    currency       VARCHAR(16) NOT NULL,
    balance        NUMERIC NOT NULL DEFAULT 0,
    version        BIGINT NOT NULL DEFAULT 0,
    allow_negative BOOLEAN NOT NULL DEFAULT FALSE,
    status         VARCHAR(16) NOT NULL DEFAULT 'active',
    created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
    CONSTRAINT accounts_owner_currency_key UNIQUE (owner, currency),
    CONSTRAINT accounts_balance_check CHECK (allow_negative OR balance >= 0),
    CONSTRAINT accounts_status_check CHECK (status IN ('active', 'closed', 'frozen'))
);

CREATE TABLE IF NOT EXISTS entries (
    id              VARCHAR(36) PRIMARY KEY,
    account_id      VARCHAR(36) NOT NULL REFERENCES accounts (id),
    kind            VARCHAR(32) NOT NULL,
    amount          NUMERIC NOT NULL,
    balance_after   NUMERIC NOT NULL,
    sequence        BIGINT NOT NULL,
    status          VARCHAR(16) NOT NULL,
    idempotency_key VARCHAR(128) NOT NULL,
    reference       VARCHAR(256) NOT NULL DEFAULT '',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    CONSTRAINT entries_idempotency_key_key UNIQUE (idempotency_key),
    CONSTRAINT entries_account_id_sequence_key UNIQUE (account_id, sequence),
    CONSTRAINT entries_amount_check CHECK (amount <> 0)
);

CREATE INDEX IF NOT EXISTS entries_account_id_created_at_idx ON entries (account_id, created_at);
`

// sqliteSchema keeps amounts as TEXT so sqlite never rounds them through a float.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS accounts (
    id             TEXT PRIMARY KEY,
    owner          TEXT NOT NULL,
    currency       TEXT NOT NULL,
    balance        TEXT NOT NULL DEFAULT '0',
    version        INTEGER NOT NULL DEFAULT 0,
    allow_negative BOOLEAN NOT NULL DEFAULT FALSE,
    status         TEXT NOT NULL DEFAULT 'active',
    created_at     TIMESTAMP NOT NULL,
    updated_at     TIMESTAMP NOT NULL,
    CONSTRAINT accounts_owner_currency_key UNIQUE (owner, currency),
    CONSTRAINT accounts_balance_check CHECK (allow_negative OR CAST(balance AS NUMERIC) >= 0),
    CONSTRAINT accounts_status_check CHECK (status IN ('active', 'closed', 'frozen'))
);

CREATE TABLE IF NOT EXISTS entries (
    id              TEXT PRIMARY KEY,
    account_id      TEXT NOT NULL REFERENCES accounts (id),
    kind            TEXT NOT NULL,
    amount          TEXT NOT NULL,
    balance_after   TEXT NOT NULL,
    sequence        INTEGER NOT NULL,
    status          TEXT NOT NULL,
    idempotency_key TEXT NOT NULL,
    reference       TEXT NOT NULL DEFAULT '',
    created_at      TIMESTAMP NOT NULL,
    CONSTRAINT entries_idempotency_key_key UNIQUE (idempotency_key),
    CONSTRAINT entries_account_id_sequence_key UNIQUE (account_id, sequence),
    CONSTRAINT entries_amount_check CHECK (CAST(amount AS NUMERIC) <> 0)
);

CREATE INDEX IF NOT EXISTS entries_account_id_created_at_idx ON entries (account_id, created_at);
`

// Migrate creates the ledger tables for the given driver if they do not exist.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	var schema string

	switch driver {
	case "postgres":
		schema = postgresSchema
	case "sqlite3":
		schema = sqliteSchema
	default:
		return fmt.Errorf("unsupported db driver %q", driver)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate %s schema: %w", driver, err)
	}

	return nil
}
