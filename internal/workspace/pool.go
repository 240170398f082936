// Package workspace owns the in-memory association model: one global pool
// of parsed resumes, projected lazily into per-job view sets that carry
// job-scoped scores and review decisions without cross-contamination.
package workspace

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"jd-match/internal/matching"
)

// EmploymentGaps is the parsed employment-gap summary for a resume.
type EmploymentGaps struct {
	HasGap         bool `json:"has_gap"`
	TotalGapMonths int  `json:"total_gap_months"`
}

// ResumeRecord is one globally shared parsed resume. Text, skills and
// experience are global properties: only extraction results and deletes may
// change them, never a per-job operation.
type ResumeRecord struct {
	FileID              string             `json:"fileId,omitempty"`
	Name                string             `json:"name"`
	Text                string             `json:"text,omitempty"`
	ViewLink            string             `json:"viewLink,omitempty"`
	CandidateName       string             `json:"candidateName,omitempty"`
	CandidateExperience float64            `json:"candidateExperience"`
	Skills              []string           `json:"skills"`
	Projects            []matching.Project `json:"projects,omitempty"`
	EmploymentGaps      EmploymentGaps     `json:"employment_gaps"`
}

// Identity returns the record's dedup key: the storage-assigned file id,
// falling back to the file name when absent. The name fallback is
// collision-prone but matches how imports without ids behave.
func (r *ResumeRecord) Identity() string {
	if r.FileID != "" {
		return r.FileID
	}
	return r.Name
}

// resumeView holds the job-scoped mutable fields for one (job, resume)
// pair. Shared fields are read through the record pointer, never copied.
type resumeView struct {
	resume           *ResumeRecord
	matchScore       int
	skillMatchScore  int
	matchedSkills    []string
	missingSkills    []string
	relevantProjects []string
	reviewStatus     ReviewStatus
}

// ViewSnapshot is a point-in-time read of one view, shared resume fields
// included. Reads re-derive from the global record so a view can never
// serve stale shared data.
type ViewSnapshot struct {
	FileID              string             `json:"fileId,omitempty"`
	Name                string             `json:"name"`
	Text                string             `json:"-"`
	ViewLink            string             `json:"viewLink,omitempty"`
	CandidateName       string             `json:"candidateName,omitempty"`
	CandidateExperience float64            `json:"candidateExperience"`
	Skills              []string           `json:"skills"`
	Projects            []matching.Project `json:"-"`
	HasGap              bool               `json:"hasGap"`
	GapMonths           int                `json:"gapMonths"`
	MatchScore          int                `json:"matchScore"`
	SkillMatchScore     int                `json:"skillMatchScore"`
	MatchedSkills       []string           `json:"matchedSkills"`
	MissingSkills       []string           `json:"missingSkills"`
	RelevantProjects    []string           `json:"relevantProjects"`
	ReviewStatus        ReviewStatus       `json:"candidateStatus,omitempty"`
}

// Identity mirrors ResumeRecord.Identity for snapshots.
func (v ViewSnapshot) Identity() string {
	if v.FileID != "" {
		return v.FileID
	}
	return v.Name
}

// ViewScore is the commit unit for one ranked view, applied atomically per
// job after all per-resume results have resolved. ReviewStatus carries the
// decision the view should hold after the commit; recomputing scores is
// not a recruiter action and must not erase one.
type ViewScore struct {
	Identity         string
	FinalScore       int
	SkillMatchScore  int
	MatchedSkills    []string
	MissingSkills    []string
	RelevantProjects []string
	ReviewStatus     ReviewStatus
}

// ResumeUpdate carries extraction results onto a global record. Zero-value
// fields are left untouched so a partial extraction cannot erase known
// data.
type ResumeUpdate struct {
	Skills              []string
	CandidateName       string
	CandidateExperience float64
	EmploymentGaps      *EmploymentGaps
	Projects            []matching.Project
}

// Store owns the global resume pool, the registered jobs, and each job's
// view set. All access is serialized by one mutex: single-process in-memory
// consistency with read-through projection is the contract, nothing more.
type Store struct {
	mu        sync.Mutex
	pool      map[string]*ResumeRecord
	poolOrder []string
	jobs      map[string]*Job
	views     map[string]map[string]*resumeView
	viewOrder map[string][]string
	epochs    map[string]uint64
	log       *zap.Logger
}

func NewStore(log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		pool:      make(map[string]*ResumeRecord),
		jobs:      make(map[string]*Job),
		views:     make(map[string]map[string]*resumeView),
		viewOrder: make(map[string][]string),
		epochs:    make(map[string]uint64),
		log:       log,
	}
}

// AddGlobalResume inserts a resume into the global pool. A duplicate
// identity is a no-op, not an error: re-importing the same file must not
// clobber existing state.
func (s *Store) AddGlobalResume(rec *ResumeRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := rec.Identity()
	if id == "" {
		return
	}
	if _, exists := s.pool[id]; exists {
		return
	}
	s.pool[id] = rec
	s.poolOrder = append(s.poolOrder, id)
}

// Resumes returns the global pool in insertion order.
func (s *Store) Resumes() []ResumeRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ResumeRecord, 0, len(s.poolOrder))
	for _, id := range s.poolOrder {
		out = append(out, *s.pool[id])
	}
	return out
}

// AddJob registers a persisted job. Jobs without an id are not tracked;
// persistence assigns identity first.
func (s *Store) AddJob(j *Job) error {
	if j.ID == "" {
		return fmt.Errorf("job %q has no id", j.Title)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if j.Status == "" {
		j.Status = StatusIdle
	}
	s.jobs[j.ID] = j
	if _, ok := s.views[j.ID]; !ok {
		s.views[j.ID] = make(map[string]*resumeView)
	}
	return nil
}

// JobInfo returns a copy of the job's current state.
func (s *Store) JobInfo(jobID string) (Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[jobID]
	if !ok {
		return Job{}, false
	}
	return *j, true
}

// Jobs returns copies of every registered job.
func (s *Store) Jobs() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, *j)
	}
	return out
}

// TransitionJob advances the job's lifecycle state.
func (s *Store) TransitionJob(jobID string, next JobStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[jobID]
	if !ok {
		return fmt.Errorf("unknown job %s", jobID)
	}
	return j.Transition(next)
}

// UpdateJobRequirements applies a JD extraction result, guarded by the
// job's activation epoch so a stale in-flight extraction cannot overwrite
// a newer one.
func (s *Store) UpdateJobRequirements(jobID string, epoch uint64, required, preferred, keywords []string, minExperience float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[jobID]
	if !ok || s.epochs[jobID] != epoch {
		return false
	}
	if len(required) > 0 {
		j.RequiredSkills = required
	}
	if len(preferred) > 0 {
		j.PreferredSkills = preferred
	}
	if len(keywords) > 0 {
		j.SuggestedKeywords = keywords
	}
	if minExperience > 0 {
		j.MinExperience = minExperience
	}
	return true
}

// RemoveJob drops a job, its views and its epoch. Global resumes are
// untouched.
func (s *Store) RemoveJob(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.jobs, jobID)
	delete(s.views, jobID)
	delete(s.viewOrder, jobID)
	// Bump rather than delete so in-flight runs observe a stale epoch.
	s.epochs[jobID]++
}

// MarkRanked flags a job as holding results, bypassing the lifecycle
// steps. Used when persisted matches are loaded for a job that never ran
// in this process.
func (s *Store) MarkRanked(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if j, ok := s.jobs[jobID]; ok {
		j.Status = StatusRanked
	}
}

// ActivateJob bumps and returns the job's activation epoch. Every workflow
// run captures the epoch at start; results arriving under an older epoch
// are discarded on commit.
func (s *Store) ActivateJob(jobID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.epochs[jobID]++
	return s.epochs[jobID]
}

// Epoch returns the job's current activation epoch.
func (s *Store) Epoch(jobID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epochs[jobID]
}

// syncViewsLocked lazily projects the global pool into the job's view set:
// every pooled resume missing from the job gains a fresh view, existing
// views keep their job-scoped fields. Caller holds s.mu.
func (s *Store) syncViewsLocked(jobID string) {
	jobViews, ok := s.views[jobID]
	if !ok {
		jobViews = make(map[string]*resumeView)
		s.views[jobID] = jobViews
	}
	for _, id := range s.poolOrder {
		if _, exists := jobViews[id]; exists {
			continue
		}
		jobViews[id] = &resumeView{resume: s.pool[id]}
		s.viewOrder[jobID] = append(s.viewOrder[jobID], id)
	}
}

func snapshotLocked(v *resumeView) ViewSnapshot {
	r := v.resume
	return ViewSnapshot{
		FileID:              r.FileID,
		Name:                r.Name,
		Text:                r.Text,
		ViewLink:            r.ViewLink,
		CandidateName:       r.CandidateName,
		CandidateExperience: r.CandidateExperience,
		Skills:              append([]string(nil), r.Skills...),
		Projects:            append([]matching.Project(nil), r.Projects...),
		HasGap:              r.EmploymentGaps.HasGap,
		GapMonths:           r.EmploymentGaps.TotalGapMonths,
		MatchScore:          v.matchScore,
		SkillMatchScore:     v.skillMatchScore,
		MatchedSkills:       append([]string(nil), v.matchedSkills...),
		MissingSkills:       append([]string(nil), v.missingSkills...),
		RelevantProjects:    append([]string(nil), v.relevantProjects...),
		ReviewStatus:        v.reviewStatus,
	}
}

// ViewsFor returns the job's view set after the lazy sync, in stable
// insertion order.
func (s *Store) ViewsFor(jobID string) []ViewSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.syncViewsLocked(jobID)
	order := s.viewOrder[jobID]
	out := make([]ViewSnapshot, 0, len(order))
	for _, id := range order {
		out = append(out, snapshotLocked(s.views[jobID][id]))
	}
	return out
}

// ResetViews clears score and review-status fields for every view in the
// job, keeping identities. Used when entering a job with no fresh persisted
// matches and before recomputation.
func (s *Store) ResetViews(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range s.views[jobID] {
		v.matchScore = 0
		v.skillMatchScore = 0
		v.matchedSkills = nil
		v.missingSkills = nil
		v.relevantProjects = nil
		v.reviewStatus = ReviewNone
	}
}

// clampLoaded normalizes a persisted score that exceeds the 0-100 contract.
func (s *Store) clampLoaded(field, id string, score int) int {
	if score <= 100 {
		return score
	}
	s.log.Warn("persisted score out of range, clamping",
		zap.String("field", field),
		zap.String("resume", id),
		zap.Int("value", score))
	return 100
}

// ApplyLoadedMatches merges a persisted match list into the job's views by
// resume identity. Scores above 100 are corrupt but recoverable: clamp,
// warn, continue. A match for a resume not yet tracked in this job (added
// by another session) gets a synthesized view.
func (s *Store) ApplyLoadedMatches(jobID string, matches []MatchRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.syncViewsLocked(jobID)
	jobViews := s.views[jobID]

	for _, m := range matches {
		var view *resumeView
		for _, id := range []string{m.ResumeID, m.ResumeName} {
			if id == "" {
				continue
			}
			if v, ok := jobViews[id]; ok {
				view = v
				break
			}
		}
		if view == nil {
			stub := &ResumeRecord{
				FileID:              m.ResumeID,
				Name:                m.ResumeName,
				CandidateName:       m.CandidateName,
				CandidateExperience: m.CandidateExperience,
			}
			view = &resumeView{resume: stub}
			jobViews[stub.Identity()] = view
			s.viewOrder[jobID] = append(s.viewOrder[jobID], stub.Identity())
		}

		view.matchScore = s.clampLoaded("matchScore", m.ResumeID, m.MatchScore)
		view.skillMatchScore = s.clampLoaded("skillMatchScore", m.ResumeID, m.SkillMatchScore)
		view.matchedSkills = append([]string(nil), m.MatchedSkills...)
		view.missingSkills = append([]string(nil), m.MissingSkills...)
		view.relevantProjects = append([]string(nil), m.RelevantProjects...)
		view.reviewStatus = m.ReviewStatus

		// Candidate identity fields are shared resume properties: fill
		// them only when unknown, never clobber from a per-job record.
		if view.resume.CandidateName == "" {
			view.resume.CandidateName = m.CandidateName
		}
		if view.resume.CandidateExperience == 0 {
			view.resume.CandidateExperience = m.CandidateExperience
		}
	}
}

// ApplyResumeExtraction writes extraction results onto the global record.
// Extraction is the one sanctioned mutator of shared fields; the epoch
// guard discards results that arrive after the job was deleted or
// re-activated.
func (s *Store) ApplyResumeExtraction(jobID string, epoch uint64, identity string, upd ResumeUpdate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epochs[jobID] != epoch {
		return false
	}
	rec, ok := s.pool[identity]
	if !ok {
		return false
	}
	if len(upd.Skills) > 0 {
		rec.Skills = upd.Skills
	}
	if upd.CandidateName != "" {
		rec.CandidateName = upd.CandidateName
	}
	if upd.CandidateExperience > 0 {
		rec.CandidateExperience = upd.CandidateExperience
	}
	if upd.EmploymentGaps != nil {
		rec.EmploymentGaps = *upd.EmploymentGaps
	}
	if len(upd.Projects) > 0 {
		rec.Projects = upd.Projects
	}
	return true
}

// ApplyRanking commits the computed scores for every view in one step, so
// partial results are never observable. A stale epoch means the job was
// deleted or re-activated mid-run: the whole commit is discarded.
func (s *Store) ApplyRanking(jobID string, epoch uint64, scores []ViewScore) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epochs[jobID] != epoch {
		s.log.Warn("discarding stale ranking results",
			zap.String("job", jobID),
			zap.Uint64("epoch", epoch),
			zap.Uint64("current", s.epochs[jobID]))
		return false
	}
	s.syncViewsLocked(jobID)
	jobViews := s.views[jobID]
	for _, sc := range scores {
		v, ok := jobViews[sc.Identity]
		if !ok {
			continue
		}
		v.matchScore = sc.FinalScore
		v.skillMatchScore = sc.SkillMatchScore
		v.matchedSkills = sc.MatchedSkills
		v.missingSkills = sc.MissingSkills
		v.relevantProjects = sc.RelevantProjects
		v.reviewStatus = sc.ReviewStatus
	}
	return true
}

// SetReviewStatus records a recruiter decision on one (job, resume) pair.
func (s *Store) SetReviewStatus(jobID, identity string, status ReviewStatus) error {
	if !ValidReviewStatus(status) {
		return fmt.Errorf("invalid review status %q", status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.syncViewsLocked(jobID)
	v, ok := s.views[jobID][identity]
	if !ok {
		return fmt.Errorf("resume %s not tracked in job %s", identity, jobID)
	}
	v.reviewStatus = status
	return nil
}

// RemoveGlobalResume deletes a resume from the pool and from every job's
// view set. Irreversible; the persistence cascade is the caller's duty.
func (s *Store) RemoveGlobalResume(identity string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pool[identity]; !ok {
		return false
	}
	delete(s.pool, identity)
	s.poolOrder = removeString(s.poolOrder, identity)
	for jobID, jobViews := range s.views {
		if _, ok := jobViews[identity]; ok {
			delete(jobViews, identity)
			s.viewOrder[jobID] = removeString(s.viewOrder[jobID], identity)
		}
	}
	return true
}

// DeduplicateImportCandidates filters a batch of newly discovered files
// down to those whose identity is not already known. This is the sole guard
// against re-import storms on repeated scans of the same folder.
func DeduplicateImportCandidates(existingIDs []string, incoming []ResumeRecord) []ResumeRecord {
	known := make(map[string]bool, len(existingIDs))
	for _, id := range existingIDs {
		if id != "" {
			known[id] = true
		}
	}
	out := make([]ResumeRecord, 0, len(incoming))
	for _, rec := range incoming {
		id := rec.Identity()
		if id == "" || known[id] {
			continue
		}
		known[id] = true
		out = append(out, rec)
	}
	return out
}

func removeString(list []string, target string) []string {
	out := list[:0]
	for _, s := range list {
		if s != target {
			out = append(out, s)
		}
	}
	return out
}
