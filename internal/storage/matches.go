package storage

import (
	"context"

	"jd-match/internal/workspace"
)

// SaveMatches upserts one job's full ranked match list. Each row is keyed
// by (job_id, resume_id) so a re-rank overwrites prior rows in place.
// review_status is written from the record as-is; the runner carries prior
// decisions into the records it saves, and an undecided pair defaults to
// pending review.
func (db *DB) SaveMatches(ctx context.Context, jobID string, matches []workspace.MatchRecord) error {
	tx, err := db.connection.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO matches (job_id, resume_id, resume_name, candidate_name, candidate_experience, match_score, skill_match_score, matched_skills, missing_skills, relevant_projects, review_status, has_gap, gap_months, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
              ON CONFLICT (job_id, resume_id) DO UPDATE
                SET resume_name = EXCLUDED.resume_name,
                    candidate_name = EXCLUDED.candidate_name,
                    candidate_experience = EXCLUDED.candidate_experience,
                    match_score = EXCLUDED.match_score,
                    skill_match_score = EXCLUDED.skill_match_score,
                    matched_skills = EXCLUDED.matched_skills,
                    missing_skills = EXCLUDED.missing_skills,
                    relevant_projects = EXCLUDED.relevant_projects,
                    review_status = EXCLUDED.review_status,
                    has_gap = EXCLUDED.has_gap,
                    gap_months = EXCLUDED.gap_months,
                    updated_at = NOW()`
	for _, m := range matches {
		status := m.ReviewStatus
		if status == workspace.ReviewNone {
			status = workspace.ReviewPending
		}
		_, err := tx.ExecContext(ctx, query,
			jobID,
			m.ResumeID,
			m.ResumeName,
			m.CandidateName,
			m.CandidateExperience,
			m.MatchScore,
			m.SkillMatchScore,
			joinList(m.MatchedSkills),
			joinList(m.MissingSkills),
			joinList(m.RelevantProjects),
			string(status),
			m.HasGap,
			m.GapMonths,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LoadMatches returns one job's persisted matches, best score first.
func (db *DB) LoadMatches(ctx context.Context, jobID string) ([]workspace.MatchRecord, error) {
	query := `SELECT job_id, resume_id, resume_name, candidate_name, candidate_experience, match_score, skill_match_score, matched_skills, missing_skills, relevant_projects, review_status, has_gap, gap_months
              FROM matches WHERE job_id = $1 ORDER BY match_score DESC, resume_name ASC`
	rows, err := db.connection.QueryContext(ctx, query, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []workspace.MatchRecord
	for rows.Next() {
		var m workspace.MatchRecord
		var matched, missing, projects, status string
		if err := rows.Scan(&m.JobID, &m.ResumeID, &m.ResumeName, &m.CandidateName, &m.CandidateExperience, &m.MatchScore, &m.SkillMatchScore, &matched, &missing, &projects, &status, &m.HasGap, &m.GapMonths); err != nil {
			return nil, err
		}
		if matched != "" {
			m.MatchedSkills = splitAndTrim(matched)
		}
		if missing != "" {
			m.MissingSkills = splitAndTrim(missing)
		}
		if projects != "" {
			m.RelevantProjects = splitAndTrim(projects)
		}
		m.ReviewStatus = workspace.ReviewStatus(status)
		res = append(res, m)
	}
	return res, rows.Err()
}

// UpdateReviewStatus records a recruiter decision on one persisted match.
func (db *DB) UpdateReviewStatus(ctx context.Context, jobID, resumeID string, status workspace.ReviewStatus) error {
	query := `UPDATE matches SET review_status = $3, updated_at = NOW() WHERE job_id = $1 AND resume_id = $2`
	_, err := db.connection.ExecContext(ctx, query, jobID, resumeID, string(status))
	return err
}
