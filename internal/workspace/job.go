package workspace

import "fmt"

// JobStatus is one step of a job's ranking lifecycle.
type JobStatus string

const (
	StatusIdle       JobStatus = "idle"
	StatusExtracting JobStatus = "extracting"
	StatusExtracted  JobStatus = "extracted"
	StatusMatching   JobStatus = "matching"
	StatusRanking    JobStatus = "ranking"
	StatusRanked     JobStatus = "ranked"
	StatusError      JobStatus = "error"
)

// validTransitions encodes the lifecycle
// idle -> extracting -> extracted -> matching -> ranking -> ranked,
// with error reachable from any in-flight state and re-runs allowed from
// extracted/ranked/error.
var validTransitions = map[JobStatus]map[JobStatus]bool{
	StatusIdle:       {StatusExtracting: true, StatusError: true},
	StatusExtracting: {StatusExtracted: true, StatusError: true},
	StatusExtracted:  {StatusExtracting: true, StatusMatching: true, StatusError: true},
	StatusMatching:   {StatusRanking: true, StatusError: true},
	StatusRanking:    {StatusRanked: true, StatusError: true},
	StatusRanked:     {StatusExtracting: true, StatusMatching: true, StatusError: true},
	StatusError:      {StatusExtracting: true, StatusMatching: true, StatusError: true},
}

// CanTransition reports whether moving from s to next is a legal lifecycle
// step.
func (s JobStatus) CanTransition(next JobStatus) bool {
	if s == next {
		return true
	}
	return validTransitions[s][next]
}

// Job is one recruiting workspace: a job description plus its extracted
// requirements and lifecycle status. ID is assigned by the persistence
// layer on first save and is empty until then.
type Job struct {
	ID                string    `json:"jdId,omitempty"`
	Title             string    `json:"title"`
	Text              string    `json:"text"`
	RequiredSkills    []string  `json:"requiredSkills"`
	PreferredSkills   []string  `json:"preferredSkills,omitempty"`
	SuggestedKeywords []string  `json:"suggestedKeywords,omitempty"`
	MinExperience     float64   `json:"minExperience"`
	Status            JobStatus `json:"status"`
}

// Transition moves the job to the next lifecycle state, rejecting illegal
// jumps (e.g. idle straight to ranked).
func (j *Job) Transition(next JobStatus) error {
	if j.Status == "" {
		j.Status = StatusIdle
	}
	if !j.Status.CanTransition(next) {
		return fmt.Errorf("job %q: invalid status transition %s -> %s", j.Title, j.Status, next)
	}
	j.Status = next
	return nil
}
