package storage

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"jd-match/internal/matching"
	"jd-match/internal/workspace"
)

// SaveResume inserts or updates a parsed resume. A resume without a file
// id gets one assigned here, so the name fallback only ever applies to
// records that skipped persistence.
func (db *DB) SaveResume(ctx context.Context, rec *workspace.ResumeRecord) error {
	if rec.FileID == "" {
		rec.FileID = uuid.NewString()
	}
	projects, err := json.Marshal(rec.Projects)
	if err != nil {
		return err
	}
	gaps, err := json.Marshal(rec.EmploymentGaps)
	if err != nil {
		return err
	}
	query := `INSERT INTO resumes (file_id, name, resume_text, view_link, candidate_name, candidate_experience, skills, projects, employment_gaps)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
              ON CONFLICT (file_id) DO UPDATE
                SET name = EXCLUDED.name,
                    resume_text = EXCLUDED.resume_text,
                    view_link = EXCLUDED.view_link,
                    candidate_name = EXCLUDED.candidate_name,
                    candidate_experience = EXCLUDED.candidate_experience,
                    skills = EXCLUDED.skills,
                    projects = EXCLUDED.projects,
                    employment_gaps = EXCLUDED.employment_gaps`
	_, err = db.connection.ExecContext(ctx, query,
		rec.FileID,
		rec.Name,
		rec.Text,
		rec.ViewLink,
		rec.CandidateName,
		rec.CandidateExperience,
		joinList(rec.Skills),
		projects,
		gaps,
	)
	return err
}

// ListResumes returns the full resume pool in upload order.
func (db *DB) ListResumes(ctx context.Context) ([]*workspace.ResumeRecord, error) {
	query := `SELECT file_id, name, resume_text, view_link, candidate_name, candidate_experience, skills, projects, employment_gaps
              FROM resumes ORDER BY uploaded_at ASC`
	rows, err := db.connection.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*workspace.ResumeRecord
	for rows.Next() {
		rec := &workspace.ResumeRecord{}
		var skills string
		var projects, gaps []byte
		if err := rows.Scan(&rec.FileID, &rec.Name, &rec.Text, &rec.ViewLink, &rec.CandidateName, &rec.CandidateExperience, &skills, &projects, &gaps); err != nil {
			return nil, err
		}
		if skills != "" {
			rec.Skills = splitAndTrim(skills)
		}
		if len(projects) > 0 {
			var parsed []matching.Project
			if err := json.Unmarshal(projects, &parsed); err == nil {
				rec.Projects = parsed
			}
		}
		if len(gaps) > 0 {
			_ = json.Unmarshal(gaps, &rec.EmploymentGaps)
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

// ResumeIDs returns every stored file id, for import deduplication.
func (db *DB) ResumeIDs(ctx context.Context) ([]string, error) {
	rows, err := db.connection.QueryContext(ctx, `SELECT file_id FROM resumes`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteResume removes a resume and every match that references it, in one
// transaction so a failure cannot leave orphaned matches.
func (db *DB) DeleteResume(ctx context.Context, fileID string) error {
	tx, err := db.connection.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM matches WHERE resume_id = $1`, fileID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM resumes WHERE file_id = $1`, fileID); err != nil {
		return err
	}
	return tx.Commit()
}

// NewFileID mints a storage identity for an uploaded file.
func NewFileID() string {
	return uuid.NewString()
}
