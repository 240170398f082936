package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"jd-match/internal/workspace"
)

// SaveJob inserts or updates a job. A job without an id gets one assigned
// here; persistence owns identity.
func (db *DB) SaveJob(ctx context.Context, job *workspace.Job) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = workspace.StatusIdle
	}
	query := `INSERT INTO jobs (id, title, jd_text, required_skills, preferred_skills, suggested_keywords, min_experience, status, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
              ON CONFLICT (id) DO UPDATE
                SET title = EXCLUDED.title,
                    jd_text = EXCLUDED.jd_text,
                    required_skills = EXCLUDED.required_skills,
                    preferred_skills = EXCLUDED.preferred_skills,
                    suggested_keywords = EXCLUDED.suggested_keywords,
                    min_experience = EXCLUDED.min_experience,
                    status = EXCLUDED.status,
                    updated_at = NOW()`
	_, err := db.connection.ExecContext(ctx, query,
		job.ID,
		job.Title,
		job.Text,
		joinList(job.RequiredSkills),
		joinList(job.PreferredSkills),
		joinList(job.SuggestedKeywords),
		job.MinExperience,
		string(job.Status),
	)
	return err
}

func scanJob(row interface{ Scan(...interface{}) error }) (*workspace.Job, error) {
	job := &workspace.Job{}
	var required, preferred, keywords, status string
	err := row.Scan(&job.ID, &job.Title, &job.Text, &required, &preferred, &keywords, &job.MinExperience, &status)
	if err != nil {
		return nil, err
	}
	if required != "" {
		job.RequiredSkills = splitAndTrim(required)
	}
	if preferred != "" {
		job.PreferredSkills = splitAndTrim(preferred)
	}
	if keywords != "" {
		job.SuggestedKeywords = splitAndTrim(keywords)
	}
	job.Status = workspace.JobStatus(status)
	return job, nil
}

// GetJob loads one job by id.
func (db *DB) GetJob(ctx context.Context, jobID string) (*workspace.Job, error) {
	query := `SELECT id, title, jd_text, required_skills, preferred_skills, suggested_keywords, min_experience, status
              FROM jobs WHERE id = $1`
	job, err := scanJob(db.connection.QueryRowContext(ctx, query, jobID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("job %s not found", jobID)
	}
	return job, err
}

// ListJobs returns every stored job, newest first.
func (db *DB) ListJobs(ctx context.Context) ([]*workspace.Job, error) {
	query := `SELECT id, title, jd_text, required_skills, preferred_skills, suggested_keywords, min_experience, status
              FROM jobs ORDER BY created_at DESC`
	rows, err := db.connection.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*workspace.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, job)
	}
	return res, rows.Err()
}

// DeleteJob removes a job; its matches go with it via the FK cascade.
func (db *DB) DeleteJob(ctx context.Context, jobID string) error {
	res, err := db.connection.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, jobID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return fmt.Errorf("job %s not found", jobID)
	}
	return err
}
