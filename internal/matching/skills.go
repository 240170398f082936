package matching

import (
	"math"
	"strings"
)

// NormalizeSkill lowercases and trims a raw skill token so that tokens
// produced by different extraction runs compare consistently.
func NormalizeSkill(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SkillsEquivalent reports whether two skill tokens refer to the same skill.
// Equivalence is case-insensitive exact match or substring containment in
// either direction ("React" vs "React.js"). Containment is binary, there is
// no similarity threshold.
func SkillsEquivalent(a, b string) bool {
	na, nb := NormalizeSkill(a), NormalizeSkill(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}

// SkillMatch is the outcome of comparing a job's required skills against a
// resume's declared skill list.
type SkillMatch struct {
	Score   int      `json:"skillMatchScore"` // 0-100
	Matched []string `json:"matchedSkills"`
	Missing []string `json:"missingSkills"`
}

// dedupeNormalized removes duplicate tokens by normalized form, keeping the
// first occurrence and its original spelling.
func dedupeNormalized(skills []string) []string {
	seen := make(map[string]bool, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		n := NormalizeSkill(s)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, s)
	}
	return out
}

// MatchSkills computes required-skill coverage. Both lists are deduped by
// normalized form first so duplicates cannot inflate or deflate the ratio.
// Matched skills keep the required-list order and spelling. An empty
// required list scores 0.
func MatchSkills(required, resumeSkills []string) SkillMatch {
	req := dedupeNormalized(required)
	res := dedupeNormalized(resumeSkills)

	match := SkillMatch{
		Matched: []string{},
		Missing: []string{},
	}
	if len(req) == 0 {
		return match
	}

	for _, want := range req {
		found := false
		for _, have := range res {
			if SkillsEquivalent(want, have) {
				found = true
				break
			}
		}
		if found {
			match.Matched = append(match.Matched, want)
		} else {
			match.Missing = append(match.Missing, want)
		}
	}

	match.Score = int(math.Round(float64(len(match.Matched)) / float64(len(req)) * 100))
	return match
}
