package sqlstore

import (
	"context"
	"fmt"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS roles (
		name TEXT PRIMARY KEY
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS user_roles (
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		role TEXT NOT NULL REFERENCES roles(name),
		PRIMARY KEY (user_id, role)
	)`,
	`CREATE TABLE IF NOT EXISTS students (
		student_number TEXT PRIMARY KEY,
		first_name TEXT NOT NULL,
		surname TEXT NOT NULL,
		email TEXT NOT NULL,
		enrollment_date DATETIME NOT NULL,
		photo TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS consumers (
		consumer_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		address TEXT NOT NULL,
		phone TEXT NOT NULL,
		registration_date DATETIME NOT NULL,
		photo TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS outbox (
		id TEXT PRIMARY KEY,
		aggregate_type TEXT NOT NULL,
		aggregate_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		payload TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		processed BOOLEAN NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_students_email ON students(email)`,
	`CREATE INDEX IF NOT EXISTS idx_consumers_email ON consumers(email)`,
	`CREATE INDEX IF NOT EXISTS idx_outbox_pending ON outbox(processed, created_at)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS roles (
		name TEXT PRIMARY KEY
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS user_roles (
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		role TEXT NOT NULL REFERENCES roles(name),
		PRIMARY KEY (user_id, role)
	)`,
	`CREATE TABLE IF NOT EXISTS students (
		student_number TEXT PRIMARY KEY,
		first_name TEXT NOT NULL,
		surname TEXT NOT NULL,
		email TEXT NOT NULL,
		enrollment_date TIMESTAMP WITH TIME ZONE NOT NULL,
		photo TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS consumers (
		consumer_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		address TEXT NOT NULL,
		phone TEXT NOT NULL,
		registration_date TIMESTAMP WITH TIME ZONE NOT NULL,
		photo TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS outbox (
		id TEXT PRIMARY KEY,
		aggregate_type TEXT NOT NULL,
		aggregate_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		payload JSONB NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL,
		processed BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_students_email ON students(email)`,
	`CREATE INDEX IF NOT EXISTS idx_consumers_email ON consumers(email)`,
	`CREATE INDEX IF NOT EXISTS idx_outbox_pending ON outbox(processed, created_at)`,
}

// InitSchema crea todas las tablas si no existen.
func InitSchema(ctx context.Context, db *DB) error {
	stmts := sqliteSchema
	if db.Dialect == Postgres {
		stmts = postgresSchema
	}
	for _, stmt := range stmts {
		if _, err := db.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}
