package postgres

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/pratham-srivastava-07/Nexus/internal/config"
)

/*
	-- Schema

	CREATE TABLE users (
		id          UUID PRIMARY KEY,
		phone       TEXT NOT NULL UNIQUE,
		username    TEXT NOT NULL DEFAULT 'User',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE rooms (
		id          TEXT PRIMARY KEY,
		owner_id    UUID NOT NULL REFERENCES users(id),
		is_group    BOOLEAN NOT NULL DEFAULT FALSE,
		name        TEXT,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE room_members (
		room_id     TEXT NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
		user_id     UUID NOT NULL REFERENCES users(id),
		joined_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (room_id, user_id)
	);

	CREATE TABLE messages (
		id            UUID PRIMARY KEY,
		seq           BIGSERIAL,
		room_id       TEXT NOT NULL REFERENCES rooms(id),
		sender_id     UUID NOT NULL REFERENCES users(id),
		body          TEXT NOT NULL DEFAULT '',
		media         TEXT,
		type          TEXT NOT NULL DEFAULT 'text',
		ts            TIMESTAMPTZ NOT NULL DEFAULT now(),
		read_receipt  BOOLEAN NOT NULL DEFAULT FALSE
	);
	CREATE INDEX messages_room_order ON messages (room_id, ts, seq);
*/

func New(ctx context.Context, cfg config.PostgresConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, err
	}
	// Pool tuning
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
	// Health check
	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
