package matching

import (
	"math"
	"sort"

	"go.uber.org/zap"
)

// CandidateScores holds the component signals for one resume before
// blending. All components are on the 0-100 scale except GapPenalty, which
// is a flat deduction.
type CandidateScores struct {
	ID              string  `json:"id"`
	SkillScore      float64 `json:"skill_score"`
	ExperienceScore float64 `json:"experience_score"`
	ProjectScore    float64 `json:"project_score"`
	SemanticScore   float64 `json:"semantic_score"`
	GapPenalty      float64 `json:"gap_penalty"`
}

// RankedCandidate is one resume's final blended score and rank position.
type RankedCandidate struct {
	CandidateScores
	FinalScore int `json:"final_score"`
	Rank       int `json:"rank"`
}

// Ranker blends component scores into one final score per resume and
// produces a total order. It is pure apart from clamp warnings.
type Ranker struct {
	log *zap.Logger
}

func NewRanker(log *zap.Logger) *Ranker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ranker{log: log}
}

// clamp forces an externally sourced component into [0, 100]. Upstream
// services are not trusted to respect the contract; a warning is recorded
// instead of rejecting the whole match.
func (r *Ranker) clamp(field, id string, v float64) float64 {
	if v >= 0 && v <= 100 {
		return v
	}
	clamped := math.Min(math.Max(v, 0), 100)
	r.log.Warn("score out of range, clamping",
		zap.String("field", field),
		zap.String("resume", id),
		zap.Float64("value", v),
		zap.Float64("clamped", clamped))
	return clamped
}

// Rank computes finalScore = 0.40*skill + 0.25*exp + 0.25*project +
// 0.10*semantic - gapPenalty, clamped to [0, 100] and rounded, then sorts
// descending. The sort is stable so ties keep their input order and
// re-running on identical input yields an identical ordering.
func (r *Ranker) Rank(candidates []CandidateScores) []RankedCandidate {
	ranked := make([]RankedCandidate, 0, len(candidates))
	for _, c := range candidates {
		c.SkillScore = r.clamp("skillMatchScore", c.ID, c.SkillScore)
		c.ExperienceScore = r.clamp("expScore", c.ID, c.ExperienceScore)
		c.ProjectScore = r.clamp("projectScore", c.ID, c.ProjectScore)
		c.SemanticScore = r.clamp("semScore", c.ID, c.SemanticScore)

		final := weightSkill*c.SkillScore +
			weightExp*c.ExperienceScore +
			weightProjects*c.ProjectScore +
			weightSemantic*c.SemanticScore -
			c.GapPenalty

		score := int(math.Round(math.Max(0, final)))
		if score > 100 {
			score = 100
		}

		ranked = append(ranked, RankedCandidate{
			CandidateScores: c,
			FinalScore:      score,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].FinalScore > ranked[j].FinalScore
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}
