// Package matching implements the scoring core: skill coverage, experience,
// employment-gap, project-relevance and semantic signals blended into one
// bounded match score per resume.
package matching

// Weights for the final score blend. These are fixed business constants,
// not tunables.
const (
	weightSkill    = 0.40
	weightExp      = 0.25
	weightProjects = 0.25
	weightSemantic = 0.10

	// Applied when a job has no recorded minimum experience, so that
	// experience still differentiates candidates instead of scoring
	// everyone at 100.
	defaultMinExperienceYears = 4
)

// ExperienceScore compares resume years against the job minimum. Capped at
// 100; experience beyond the requirement earns no bonus. Negative resume
// years are treated as 0.
func ExperienceScore(resumeYears, jobMinYears float64) float64 {
	if resumeYears < 0 {
		resumeYears = 0
	}
	if jobMinYears <= 0 {
		jobMinYears = defaultMinExperienceYears
	}
	denom := jobMinYears
	if denom < 1 {
		denom = 1
	}
	ratio := resumeYears / denom
	if ratio > 1 {
		ratio = 1
	}
	return ratio * 100
}

// GapPenalty returns the flat deduction for total employment-gap months:
// more than 24 months costs 20 points, more than 12 costs 10.
func GapPenalty(totalGapMonths int) float64 {
	switch {
	case totalGapMonths > 24:
		return 20
	case totalGapMonths > 12:
		return 10
	default:
		return 0
	}
}

// Project is one parsed project from a resume.
type Project struct {
	Name         string   `json:"project_name"`
	Description  string   `json:"description,omitempty"`
	Technologies []string `json:"technologies_used"`
}

// ProjectMatch is the outcome of checking required skills against the
// technologies demonstrated in a resume's project history.
type ProjectMatch struct {
	Score            float64  `json:"projectScore"`
	Corroborated     []string `json:"corroboratedSkills"`
	RelevantProjects []string `json:"relevantProjects"`
}

// MatchProjects unions the technologies across all projects and counts how
// many required skills are corroborated by at least one of them. It also
// reports which projects contain a matching technology. An empty required
// list scores 0.
func MatchProjects(required []string, projects []Project) ProjectMatch {
	match := ProjectMatch{
		Corroborated:     []string{},
		RelevantProjects: []string{},
	}
	req := dedupeNormalized(required)
	if len(req) == 0 {
		return match
	}

	techUnion := []string{}
	seen := make(map[string]bool)
	for _, p := range projects {
		relevant := false
		for _, tech := range p.Technologies {
			n := NormalizeSkill(tech)
			if n != "" && !seen[n] {
				seen[n] = true
				techUnion = append(techUnion, tech)
			}
			if !relevant {
				for _, want := range req {
					if SkillsEquivalent(want, tech) {
						relevant = true
						break
					}
				}
			}
		}
		if relevant && p.Name != "" {
			match.RelevantProjects = append(match.RelevantProjects, p.Name)
		}
	}

	for _, want := range req {
		for _, tech := range techUnion {
			if SkillsEquivalent(want, tech) {
				match.Corroborated = append(match.Corroborated, want)
				break
			}
		}
	}

	match.Score = float64(len(match.Corroborated)) / float64(len(req)) * 100
	return match
}

// SemanticScores adapts an external similarity result (resume identity to a
// 0-1 float) onto the 0-100 scale used internally.
type SemanticScores map[string]float64

// NewSemanticScores clamps each raw similarity into [0, 1] and rescales to
// 0-100. A nil result (failed or skipped call) yields an empty set, which
// scores every resume at 0.
func NewSemanticScores(raw map[string]float64) SemanticScores {
	scores := make(SemanticScores, len(raw))
	for id, sim := range raw {
		if sim < 0 {
			sim = 0
		}
		if sim > 1 {
			sim = 1
		}
		scores[id] = sim * 100
	}
	return scores
}

// For returns the semantic score for the first identity present in the
// result set. Absence is a designed case and scores 0.
func (s SemanticScores) For(ids ...string) float64 {
	for _, id := range ids {
		if id == "" {
			continue
		}
		if score, ok := s[id]; ok {
			return score
		}
	}
	return 0
}
