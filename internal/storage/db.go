package storage

import (
	"context"
	"database/sql"
	"log"
	"strings"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

type DB struct {
	connection *sql.DB
}

func NewDB(dataSourceName string) (*DB, error) {
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, err
	}

	// Connection pool tuning
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &DB{connection: db}, nil
}

func (db *DB) Close() {
	if err := db.connection.Close(); err != nil {
		log.Println("Error closing the database connection:", err)
	}
}

// EnsureSchema creates the tables when they do not exist yet. Idempotent;
// safe to run on every start.
func (db *DB) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS jobs (
            id TEXT PRIMARY KEY,
            title TEXT NOT NULL,
            jd_text TEXT NOT NULL DEFAULT '',
            required_skills TEXT NOT NULL DEFAULT '',
            preferred_skills TEXT NOT NULL DEFAULT '',
            suggested_keywords TEXT NOT NULL DEFAULT '',
            min_experience DOUBLE PRECISION NOT NULL DEFAULT 0,
            status TEXT NOT NULL DEFAULT 'idle',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS resumes (
            file_id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            resume_text TEXT NOT NULL DEFAULT '',
            view_link TEXT NOT NULL DEFAULT '',
            candidate_name TEXT NOT NULL DEFAULT '',
            candidate_experience DOUBLE PRECISION NOT NULL DEFAULT 0,
            skills TEXT NOT NULL DEFAULT '',
            projects JSONB NOT NULL DEFAULT '[]',
            employment_gaps JSONB NOT NULL DEFAULT '{}',
            uploaded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS matches (
            job_id TEXT NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
            resume_id TEXT NOT NULL,
            resume_name TEXT NOT NULL DEFAULT '',
            candidate_name TEXT NOT NULL DEFAULT '',
            candidate_experience DOUBLE PRECISION NOT NULL DEFAULT 0,
            match_score INTEGER NOT NULL DEFAULT 0,
            skill_match_score INTEGER NOT NULL DEFAULT 0,
            matched_skills TEXT NOT NULL DEFAULT '',
            missing_skills TEXT NOT NULL DEFAULT '',
            relevant_projects TEXT NOT NULL DEFAULT '',
            review_status TEXT NOT NULL DEFAULT 'review',
            has_gap BOOLEAN NOT NULL DEFAULT FALSE,
            gap_months INTEGER NOT NULL DEFAULT 0,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            PRIMARY KEY (job_id, resume_id)
        )`,
	}
	for _, stmt := range stmts {
		if _, err := db.connection.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// GetConnection returns the underlying database connection for advanced queries
func (db *DB) GetConnection() *sql.DB {
	return db.connection
}

// helper to split comma-separated skills
func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

func joinList(list []string) string {
	return strings.Join(list, ",")
}
