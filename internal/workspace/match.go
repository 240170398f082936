package workspace

// ReviewStatus is a recruiter's decision on one (job, resume) pair.
type ReviewStatus string

const (
	ReviewNone     ReviewStatus = ""
	ReviewAccepted ReviewStatus = "accepted"
	ReviewPending  ReviewStatus = "review"
	ReviewRejected ReviewStatus = "rejected"
)

// ValidReviewStatus reports whether s is one of the accepted decision
// values.
func ValidReviewStatus(s ReviewStatus) bool {
	switch s {
	case ReviewNone, ReviewAccepted, ReviewPending, ReviewRejected:
		return true
	}
	return false
}

// MatchRecord is the persisted form of a scored (job, resume) pair, the
// unit sent to and read back from storage. Keyed by (JobID, ResumeID).
type MatchRecord struct {
	JobID               string       `json:"jdId"`
	ResumeID            string       `json:"resumeId"`
	ResumeName          string       `json:"resumeName"`
	CandidateName       string       `json:"candidateName,omitempty"`
	CandidateExperience float64      `json:"candidateExperience"`
	MatchScore          int          `json:"matchScore"`
	SkillMatchScore     int          `json:"skillMatchScore"`
	MatchedSkills       []string     `json:"matchedSkills"`
	MissingSkills       []string     `json:"missingSkills"`
	RelevantProjects    []string     `json:"relevantProjects,omitempty"`
	ReviewStatus        ReviewStatus `json:"candidateStatus,omitempty"`
	HasGap              bool         `json:"hasGap"`
	GapMonths           int          `json:"gapMonths"`
}
