package workspace

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jd-match/internal/extract"
)

type fakeExtractor struct {
	mu      sync.Mutex
	jd      *extract.Result
	resumes map[string]*extract.Result // keyed by resume text
	failFor map[string]bool
	calls   int
}

func (f *fakeExtractor) Extract(_ context.Context, text string, kind extract.Kind) (*extract.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	if kind == extract.KindJob {
		if f.jd == nil {
			return nil, errors.New("jd extraction unavailable")
		}
		return f.jd, nil
	}
	if f.failFor[text] {
		return nil, errors.New("resume extraction failed")
	}
	res, ok := f.resumes[text]
	if !ok {
		return &extract.Result{Skills: []string{}}, nil
	}
	return res, nil
}

type fakeSimilarity struct {
	scores map[string]float64
	err    error
	onRank func()
}

func (f *fakeSimilarity) Rank(_ context.Context, _ string, _ map[string]string) (map[string]float64, error) {
	if f.onRank != nil {
		f.onRank()
	}
	return f.scores, f.err
}

type fakeMatchStore struct {
	mu      sync.Mutex
	saved   map[string][]MatchRecord
	saveErr error
}

func newFakeMatchStore() *fakeMatchStore {
	return &fakeMatchStore{saved: make(map[string][]MatchRecord)}
}

func (f *fakeMatchStore) SaveMatches(_ context.Context, jobID string, matches []MatchRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved[jobID] = matches
	return nil
}

func (f *fakeMatchStore) LoadMatches(_ context.Context, jobID string) ([]MatchRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saved[jobID], nil
}

func seedRunnerStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(nil)
	require.NoError(t, s.AddJob(&Job{ID: "jd-1", Title: "Backend Engineer", Text: "jd text"}))
	s.AddGlobalResume(&ResumeRecord{FileID: "f1", Name: "alice.pdf", Text: "alice text"})
	s.AddGlobalResume(&ResumeRecord{FileID: "f2", Name: "bob.pdf", Text: "bob text"})
	return s
}

func TestRunExtractionEnrichesJobAndResumes(t *testing.T) {
	store := seedRunnerStore(t)
	extractor := &fakeExtractor{
		jd: &extract.Result{
			Skills:             []string{"Go", "Kafka"},
			RequiredExperience: 5,
		},
		resumes: map[string]*extract.Result{
			"alice text": {
				Skills:              []string{"Go", "Kafka", "PostgreSQL"},
				CandidateName:       "Alice Smith",
				CandidateExperience: 6,
				ParsedDetails: &extract.ParsedDetails{
					EmploymentGaps: &extract.EmploymentGaps{HasGap: true, TotalGapMonths: 18},
					Projects: []extract.Project{
						{Name: "Event Pipeline", Technologies: []string{"Kafka", "Go"}},
					},
				},
			},
			"bob text": {
				Skills:              []string{"Python"},
				CandidateName:       "Bob Jones",
				CandidateExperience: 2,
			},
		},
	}
	r := NewRunner(store, extractor, &fakeSimilarity{}, newFakeMatchStore(), 2, nil)

	require.NoError(t, r.RunExtraction(context.Background(), "jd-1"))

	job, ok := store.JobInfo("jd-1")
	require.True(t, ok)
	assert.Equal(t, StatusExtracted, job.Status)
	assert.Equal(t, []string{"Go", "Kafka"}, job.RequiredSkills)
	assert.InDelta(t, 5, job.MinExperience, 1e-9)

	views := store.ViewsFor("jd-1")
	require.Len(t, views, 2)
	assert.Equal(t, "Alice Smith", views[0].CandidateName)
	assert.True(t, views[0].HasGap)
	assert.Equal(t, 18, views[0].GapMonths)
	assert.Equal(t, "Bob Jones", views[1].CandidateName)
}

func TestRunExtractionIsolatesResumeFailures(t *testing.T) {
	store := seedRunnerStore(t)
	extractor := &fakeExtractor{
		jd: &extract.Result{Skills: []string{"Go"}},
		resumes: map[string]*extract.Result{
			"bob text": {Skills: []string{"Go"}, CandidateName: "Bob Jones"},
		},
		failFor: map[string]bool{"alice text": true},
	}
	r := NewRunner(store, extractor, &fakeSimilarity{}, newFakeMatchStore(), 2, nil)

	require.NoError(t, r.RunExtraction(context.Background(), "jd-1"))

	job, _ := store.JobInfo("jd-1")
	assert.Equal(t, StatusExtracted, job.Status)

	views := store.ViewsFor("jd-1")
	require.Len(t, views, 2)
	assert.Empty(t, views[0].CandidateName) // failed resume stayed unparsed
	assert.Equal(t, "Bob Jones", views[1].CandidateName)
}

func TestRunExtractionJDFailureErrorsJob(t *testing.T) {
	store := seedRunnerStore(t)
	r := NewRunner(store, &fakeExtractor{}, &fakeSimilarity{}, newFakeMatchStore(), 2, nil)

	err := r.RunExtraction(context.Background(), "jd-1")
	require.Error(t, err)

	job, _ := store.JobInfo("jd-1")
	assert.Equal(t, StatusError, job.Status)
}

func TestRunMatchAndRankFullFlow(t *testing.T) {
	store := seedRunnerStore(t)
	job, _ := store.JobInfo("jd-1")
	job.RequiredSkills = []string{"Go", "Kafka"}
	job.MinExperience = 4
	job.Status = StatusExtracted
	require.NoError(t, store.AddJob(&job))

	epoch := store.ActivateJob("jd-1")
	require.True(t, store.ApplyResumeExtraction("jd-1", epoch, "f1", ResumeUpdate{
		Skills:              []string{"Go", "Kafka"},
		CandidateName:       "Alice Smith",
		CandidateExperience: 6,
	}))

	matches := newFakeMatchStore()
	sim := &fakeSimilarity{scores: map[string]float64{"f1": 0.9, "f2": 0.2}}
	r := NewRunner(store, &fakeExtractor{}, sim, matches, 2, nil)

	require.NoError(t, r.RunMatchAndRank(context.Background(), "jd-1"))

	jobAfter, _ := store.JobInfo("jd-1")
	assert.Equal(t, StatusRanked, jobAfter.Status)

	views := store.ViewsFor("jd-1")
	require.Len(t, views, 2)

	byName := map[string]ViewSnapshot{}
	for _, v := range views {
		byName[v.Name] = v
	}
	alice := byName["alice.pdf"]
	bob := byName["bob.pdf"]

	// Alice: skill 100, exp 100, projects 0, semantic 90 -> 74
	assert.Equal(t, 74, alice.MatchScore)
	assert.Equal(t, 100, alice.SkillMatchScore)
	assert.Equal(t, []string{"Go", "Kafka"}, alice.MatchedSkills)
	assert.Equal(t, ReviewPending, alice.ReviewStatus)

	// Bob: everything zero except semantic 20 -> 2
	assert.Equal(t, 2, bob.MatchScore)
	assert.Equal(t, []string{"Go", "Kafka"}, bob.MissingSkills)

	saved := matches.saved["jd-1"]
	require.Len(t, saved, 2)
	assert.Equal(t, 74, saved[0].MatchScore) // best first
	assert.Equal(t, "jd-1", saved[0].JobID)
	assert.Equal(t, ReviewPending, saved[0].ReviewStatus)
}

func TestRerankPreservesReviewDecisions(t *testing.T) {
	store := seedRunnerStore(t)
	job, _ := store.JobInfo("jd-1")
	job.RequiredSkills = []string{"Go"}
	job.Status = StatusExtracted
	require.NoError(t, store.AddJob(&job))

	epoch := store.ActivateJob("jd-1")
	require.True(t, store.ApplyResumeExtraction("jd-1", epoch, "f1", ResumeUpdate{
		Skills:              []string{"Go"},
		CandidateExperience: 4,
	}))

	matches := newFakeMatchStore()
	r := NewRunner(store, &fakeExtractor{}, &fakeSimilarity{}, matches, 2, nil)
	require.NoError(t, r.RunMatchAndRank(context.Background(), "jd-1"))

	require.NoError(t, store.SetReviewStatus("jd-1", "f1", ReviewAccepted))
	require.NoError(t, store.SetReviewStatus("jd-1", "f2", ReviewRejected))

	// Recomputing scores on identical input is not a recruiter action:
	// the decisions must survive, in the views and in what gets saved.
	require.NoError(t, r.RunMatchAndRank(context.Background(), "jd-1"))

	byName := map[string]ViewSnapshot{}
	for _, v := range store.ViewsFor("jd-1") {
		byName[v.Name] = v
	}
	assert.Equal(t, ReviewAccepted, byName["alice.pdf"].ReviewStatus)
	assert.Equal(t, ReviewRejected, byName["bob.pdf"].ReviewStatus)

	saved := map[string]MatchRecord{}
	for _, m := range matches.saved["jd-1"] {
		saved[m.ResumeID] = m
	}
	assert.Equal(t, ReviewAccepted, saved["f1"].ReviewStatus)
	assert.Equal(t, ReviewRejected, saved["f2"].ReviewStatus)
}

func TestRunMatchAndRankFromIdleErrorsJob(t *testing.T) {
	store := seedRunnerStore(t)
	job, _ := store.JobInfo("jd-1")
	job.RequiredSkills = []string{"Go"} // supplied inline, never extracted
	require.NoError(t, store.AddJob(&job))

	r := NewRunner(store, &fakeExtractor{}, &fakeSimilarity{}, newFakeMatchStore(), 2, nil)
	err := r.RunMatchAndRank(context.Background(), "jd-1")
	require.Error(t, err)

	jobAfter, _ := store.JobInfo("jd-1")
	assert.Equal(t, StatusError, jobAfter.Status)
}

func TestRunMatchAndRankRequiresSkills(t *testing.T) {
	store := seedRunnerStore(t)
	r := NewRunner(store, &fakeExtractor{}, &fakeSimilarity{}, newFakeMatchStore(), 2, nil)

	err := r.RunMatchAndRank(context.Background(), "jd-1")
	require.Error(t, err)

	job, _ := store.JobInfo("jd-1")
	assert.Equal(t, StatusError, job.Status)
}

func TestRunMatchAndRankDegradesOnSimilarityFailure(t *testing.T) {
	store := seedRunnerStore(t)
	job, _ := store.JobInfo("jd-1")
	job.RequiredSkills = []string{"Go"}
	job.Status = StatusExtracted
	require.NoError(t, store.AddJob(&job))

	epoch := store.ActivateJob("jd-1")
	require.True(t, store.ApplyResumeExtraction("jd-1", epoch, "f1", ResumeUpdate{
		Skills:              []string{"Go"},
		CandidateExperience: 8,
	}))

	matches := newFakeMatchStore()
	sim := &fakeSimilarity{err: errors.New("similarity service down")}
	r := NewRunner(store, &fakeExtractor{}, sim, matches, 2, nil)

	require.NoError(t, r.RunMatchAndRank(context.Background(), "jd-1"))

	views := store.ViewsFor("jd-1")
	byName := map[string]ViewSnapshot{}
	for _, v := range views {
		byName[v.Name] = v
	}
	// Alice: skill 100, exp 100 (8y vs default 4), semantic 0 -> 65
	assert.Equal(t, 65, byName["alice.pdf"].MatchScore)
}

func TestRunMatchAndRankDiscardsStaleRun(t *testing.T) {
	store := seedRunnerStore(t)
	job, _ := store.JobInfo("jd-1")
	job.RequiredSkills = []string{"Go"}
	job.Status = StatusExtracted
	require.NoError(t, store.AddJob(&job))

	matches := newFakeMatchStore()
	// Re-activation lands while the run waits on the similarity service.
	sim := &fakeSimilarity{onRank: func() { store.ActivateJob("jd-1") }}
	r := NewRunner(store, &fakeExtractor{}, sim, matches, 2, nil)

	require.NoError(t, r.RunMatchAndRank(context.Background(), "jd-1"))

	// Nothing committed, nothing persisted.
	assert.Empty(t, matches.saved["jd-1"])
	views := store.ViewsFor("jd-1")
	for _, v := range views {
		assert.Zero(t, v.MatchScore)
	}
}

func TestRunMatchAndRankPersistFailureErrorsJob(t *testing.T) {
	store := seedRunnerStore(t)
	job, _ := store.JobInfo("jd-1")
	job.RequiredSkills = []string{"Go"}
	job.Status = StatusExtracted
	require.NoError(t, store.AddJob(&job))

	matches := newFakeMatchStore()
	matches.saveErr = errors.New("db unavailable")
	r := NewRunner(store, &fakeExtractor{}, &fakeSimilarity{}, matches, 2, nil)

	err := r.RunMatchAndRank(context.Background(), "jd-1")
	require.Error(t, err)

	jobAfter, _ := store.JobInfo("jd-1")
	assert.Equal(t, StatusError, jobAfter.Status)
}
