package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSkillsEquivalent(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"exact", "Go", "Go", true},
		{"case insensitive", "PostgreSQL", "postgresql", true},
		{"whitespace trimmed", "  react ", "React", true},
		{"substring forward", "Java", "JavaScript", true},
		{"substring backward", "JavaScript", "Java", true},
		{"no relation", "Go", "Rust", false},
		{"empty left", "", "Go", false},
		{"empty right", "Go", "", false},
		{"both empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SkillsEquivalent(tt.a, tt.b))
		})
	}
}

func TestMatchSkills(t *testing.T) {
	tests := []struct {
		name        string
		required    []string
		resume      []string
		wantScore   int
		wantMatched []string
		wantMissing []string
	}{
		{
			name:        "full match",
			required:    []string{"Go", "PostgreSQL"},
			resume:      []string{"go", "postgresql", "docker"},
			wantScore:   100,
			wantMatched: []string{"Go", "PostgreSQL"},
			wantMissing: []string{},
		},
		{
			name:        "partial match rounds half up",
			required:    []string{"Go", "Rust", "Kafka"},
			resume:      []string{"Go", "Kafka"},
			wantScore:   67,
			wantMatched: []string{"Go", "Kafka"},
			wantMissing: []string{"Rust"},
		},
		{
			name:        "empty required scores zero",
			required:    nil,
			resume:      []string{"Go"},
			wantScore:   0,
			wantMatched: []string{},
			wantMissing: []string{},
		},
		{
			name:        "empty resume misses everything",
			required:    []string{"Go", "Rust"},
			resume:      nil,
			wantScore:   0,
			wantMatched: []string{},
			wantMissing: []string{"Go", "Rust"},
		},
		{
			name:        "duplicate required skills counted once",
			required:    []string{"Go", "go", "GO", "Rust"},
			resume:      []string{"Go"},
			wantScore:   50,
			wantMatched: []string{"Go"},
			wantMissing: []string{"Rust"},
		},
		{
			name:        "containment matches",
			required:    []string{"AWS Lambda"},
			resume:      []string{"aws"},
			wantScore:   100,
			wantMatched: []string{"AWS Lambda"},
			wantMissing: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchSkills(tt.required, tt.resume)
			assert.Equal(t, tt.wantScore, got.Score)
			assert.Equal(t, tt.wantMatched, got.Matched)
			assert.Equal(t, tt.wantMissing, got.Missing)
		})
	}
}

func TestMatchSkillsPartition(t *testing.T) {
	// Every deduped required skill lands in exactly one of matched or
	// missing.
	required := []string{"Go", "Rust", "Kafka", "PostgreSQL", "Docker"}
	got := MatchSkills(required, []string{"go", "docker", "terraform"})
	assert.Len(t, got.Matched, 2)
	assert.Len(t, got.Missing, 3)
	assert.Equal(t, len(required), len(got.Matched)+len(got.Missing))
}
