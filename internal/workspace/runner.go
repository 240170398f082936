package workspace

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"jd-match/internal/extract"
	"jd-match/internal/matching"
)

// Extractor is the skill-extraction collaborator. A single document's
// failure must not abort extraction for the rest of the batch.
type Extractor interface {
	Extract(ctx context.Context, text string, kind extract.Kind) (*extract.Result, error)
}

// SimilarityRanker is the semantic-similarity collaborator. A failed batch
// degrades every resume's semantic signal to zero.
type SimilarityRanker interface {
	Rank(ctx context.Context, jdText string, resumes map[string]string) (map[string]float64, error)
}

// MatchStore is the persistence collaborator for match records.
type MatchStore interface {
	SaveMatches(ctx context.Context, jobID string, matches []MatchRecord) error
	LoadMatches(ctx context.Context, jobID string) ([]MatchRecord, error)
}

// Runner drives one job's workflow: extraction fan-out over the resume
// set, scoring, ranking, and the persistence handoff. Enrichment calls are
// bounded by a small worker limit to respect upstream rate limits.
type Runner struct {
	store       *Store
	extractor   Extractor
	similarity  SimilarityRanker
	matches     MatchStore
	ranker      *matching.Ranker
	concurrency int
	log         *zap.Logger
}

func NewRunner(store *Store, extractor Extractor, similarity SimilarityRanker, matches MatchStore, concurrency int, log *zap.Logger) *Runner {
	if concurrency <= 0 {
		concurrency = 3
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		store:       store,
		extractor:   extractor,
		similarity:  similarity,
		matches:     matches,
		ranker:      matching.NewRanker(log),
		concurrency: concurrency,
		log:         log,
	}
}

func convertProjects(in []extract.Project) []matching.Project {
	out := make([]matching.Project, 0, len(in))
	for _, p := range in {
		out = append(out, matching.Project{
			Name:         p.Name,
			Description:  p.Description,
			Technologies: p.Technologies,
		})
	}
	return out
}

// RunExtraction extracts the job description's requirements and fans out
// over the job's resumes that still need parsing. Per-resume failures are
// logged and skipped; only a JD extraction failure is fatal for the run.
func (r *Runner) RunExtraction(ctx context.Context, jobID string) error {
	job, ok := r.store.JobInfo(jobID)
	if !ok {
		return fmt.Errorf("unknown job %s", jobID)
	}
	epoch := r.store.ActivateJob(jobID)

	if err := r.store.TransitionJob(jobID, StatusExtracting); err != nil {
		_ = r.store.TransitionJob(jobID, StatusError)
		return err
	}

	jdRes, err := r.extractor.Extract(ctx, job.Text, extract.KindJob)
	if err != nil {
		r.store.TransitionJob(jobID, StatusError)
		return fmt.Errorf("jd extraction failed: %w", err)
	}
	r.store.UpdateJobRequirements(jobID, epoch, jdRes.Skills, jdRes.PreferredSkills, jdRes.SuggestedKeywords, jdRes.RequiredExperience)

	views := r.store.ViewsFor(jobID)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for _, v := range views {
		if len(v.Skills) > 0 && v.CandidateName != "" {
			continue // already enriched
		}
		v := v
		g.Go(func() error {
			res, err := r.extractor.Extract(gctx, v.Text, extract.KindResume)
			if err != nil {
				r.log.Warn("resume extraction failed, skipping",
					zap.String("resume", v.Name),
					zap.Error(err))
				return nil
			}
			upd := ResumeUpdate{
				Skills:              res.Skills,
				CandidateName:       res.CandidateName,
				CandidateExperience: res.CandidateExperience,
			}
			if res.ParsedDetails != nil {
				if res.ParsedDetails.EmploymentGaps != nil {
					upd.EmploymentGaps = &EmploymentGaps{
						HasGap:         res.ParsedDetails.EmploymentGaps.HasGap,
						TotalGapMonths: res.ParsedDetails.EmploymentGaps.TotalGapMonths,
					}
				}
				upd.Projects = convertProjects(res.ParsedDetails.Projects)
			}
			if !r.store.ApplyResumeExtraction(jobID, epoch, v.Identity(), upd) {
				r.log.Warn("discarding stale extraction result",
					zap.String("job", jobID),
					zap.String("resume", v.Name))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		r.store.TransitionJob(jobID, StatusError)
		return err
	}

	return r.store.TransitionJob(jobID, StatusExtracted)
}

// RunMatchAndRank scores every resume in the job against the extracted
// requirements, blends the five signals, commits the ranking in one step
// and hands the records to persistence. The final order is computed only
// after every per-resume result has resolved.
func (r *Runner) RunMatchAndRank(ctx context.Context, jobID string) error {
	job, ok := r.store.JobInfo(jobID)
	if !ok {
		return fmt.Errorf("unknown job %s", jobID)
	}
	if len(job.RequiredSkills) == 0 {
		r.store.TransitionJob(jobID, StatusError)
		return fmt.Errorf("job %s has no required skills to score against", jobID)
	}
	epoch := r.store.ActivateJob(jobID)

	if err := r.store.TransitionJob(jobID, StatusMatching); err != nil {
		_ = r.store.TransitionJob(jobID, StatusError)
		return err
	}

	// Snapshot before the reset: recruiter decisions made on the previous
	// ranking survive a recompute.
	views := r.store.ViewsFor(jobID)
	// Previous scores for this job must not leak into the new run. Other
	// jobs' views and the global pool are untouched.
	r.store.ResetViews(jobID)

	type scoredView struct {
		snap  ViewSnapshot
		skill matching.SkillMatch
		proj  matching.ProjectMatch
	}
	scored := make([]scoredView, 0, len(views))
	for _, v := range views {
		scored = append(scored, scoredView{
			snap:  v,
			skill: matching.MatchSkills(job.RequiredSkills, v.Skills),
			proj:  matching.MatchProjects(job.RequiredSkills, v.Projects),
		})
	}

	if err := r.store.TransitionJob(jobID, StatusRanking); err != nil {
		_ = r.store.TransitionJob(jobID, StatusError)
		return err
	}

	resumeTexts := make(map[string]string, len(views))
	for _, v := range views {
		resumeTexts[v.Identity()] = v.Text
	}
	raw, err := r.similarity.Rank(ctx, job.Text, resumeTexts)
	if err != nil {
		// Semantic signal degrades to zero; the ranking still runs.
		r.log.Warn("similarity service unavailable, semantic scores default to 0",
			zap.String("job", jobID),
			zap.Error(err))
		raw = nil
	}
	semScores := matching.NewSemanticScores(raw)

	candidates := make([]matching.CandidateScores, 0, len(scored))
	for _, sv := range scored {
		candidates = append(candidates, matching.CandidateScores{
			ID:              sv.snap.Identity(),
			SkillScore:      float64(sv.skill.Score),
			ExperienceScore: matching.ExperienceScore(sv.snap.CandidateExperience, job.MinExperience),
			ProjectScore:    sv.proj.Score,
			SemanticScore:   semScores.For(sv.snap.FileID, sv.snap.Name),
			GapPenalty:      matching.GapPenalty(sv.snap.GapMonths),
		})
	}
	ranked := r.ranker.Rank(candidates)

	byIdentity := make(map[string]scoredView, len(scored))
	for _, sv := range scored {
		byIdentity[sv.snap.Identity()] = sv
	}

	viewScores := make([]ViewScore, 0, len(ranked))
	records := make([]MatchRecord, 0, len(ranked))
	for _, rc := range ranked {
		sv := byIdentity[rc.ID]
		// Carry the pre-reset decision forward; an undecided pair is
		// pending review.
		status := sv.snap.ReviewStatus
		if status == ReviewNone {
			status = ReviewPending
		}
		viewScores = append(viewScores, ViewScore{
			Identity:         rc.ID,
			FinalScore:       rc.FinalScore,
			SkillMatchScore:  sv.skill.Score,
			MatchedSkills:    sv.skill.Matched,
			MissingSkills:    sv.skill.Missing,
			RelevantProjects: sv.proj.RelevantProjects,
			ReviewStatus:     status,
		})
		records = append(records, MatchRecord{
			JobID:               jobID,
			ResumeID:            rc.ID,
			ResumeName:          sv.snap.Name,
			CandidateName:       sv.snap.CandidateName,
			CandidateExperience: sv.snap.CandidateExperience,
			MatchScore:          rc.FinalScore,
			SkillMatchScore:     sv.skill.Score,
			MatchedSkills:       sv.skill.Matched,
			MissingSkills:       sv.skill.Missing,
			RelevantProjects:    sv.proj.RelevantProjects,
			ReviewStatus:        status,
			HasGap:              sv.snap.HasGap,
			GapMonths:           sv.snap.GapMonths,
		})
	}

	if !r.store.ApplyRanking(jobID, epoch, viewScores) {
		// Job was deleted or re-activated mid-run; nothing to persist.
		return nil
	}

	if err := r.matches.SaveMatches(ctx, jobID, records); err != nil {
		r.store.TransitionJob(jobID, StatusError)
		return fmt.Errorf("persist matches for job %s: %w", jobID, err)
	}

	loaded, err := r.matches.LoadMatches(ctx, jobID)
	if err != nil {
		r.log.Warn("reload of persisted matches failed, keeping in-memory scores",
			zap.String("job", jobID),
			zap.Error(err))
	} else {
		r.store.ApplyLoadedMatches(jobID, loaded)
	}

	return r.store.TransitionJob(jobID, StatusRanked)
}
