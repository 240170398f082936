// Package extract is the thin client for the external skill-extraction
// service. The service parses free text (a job description or a resume)
// into skills, candidate details and structured parse results. Every field
// of the response is optional: a missing field is a designed case with a
// defined default, not an accident.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	pkghttp "jd-match/pkg/http"
)

// Kind tells the service which prompt profile to use.
type Kind string

const (
	KindJob    Kind = "JD"
	KindResume Kind = "resume"
)

// EmploymentGaps summarizes gaps in a candidate's work history.
type EmploymentGaps struct {
	HasGap         bool `json:"has_gap"`
	TotalGapMonths int  `json:"total_gap_months"`
}

// Project is one parsed project entry.
type Project struct {
	Name         string   `json:"project_name"`
	Description  string   `json:"description,omitempty"`
	Technologies []string `json:"technologies_used"`
}

// ParsedDetails carries the structured part of an extraction.
type ParsedDetails struct {
	EmploymentGaps *EmploymentGaps `json:"employment_gaps,omitempty"`
	Projects       []Project       `json:"projects,omitempty"`
}

// Result is one extraction outcome.
type Result struct {
	Skills              []string       `json:"skills"`
	PreferredSkills     []string       `json:"preferredSkills,omitempty"`
	SuggestedKeywords   []string       `json:"suggestedKeywords,omitempty"`
	CandidateName       string         `json:"candidateName,omitempty"`
	CandidateExperience float64        `json:"candidateExperience,omitempty"`
	RequiredExperience  float64        `json:"requiredExperience,omitempty"`
	ParsedDetails       *ParsedDetails `json:"parsedDetails,omitempty"`
}

type Client struct {
	baseURL string
	apiKey  string
	http    *pkghttp.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    pkghttp.NewClient(timeout),
	}
}

type extractRequest struct {
	Text string `json:"text"`
	Type Kind   `json:"type,omitempty"`
}

type extractResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Result
}

// Extract sends one document to the extraction service. Failures are
// per-document: the caller is expected to continue with the rest of its
// batch.
func (c *Client) Extract(ctx context.Context, text string, kind Kind) (*Result, error) {
	payload, err := json.Marshal(extractRequest{Text: text, Type: kind})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/extract-skills", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extraction call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("extraction service error: %d - %s", resp.StatusCode, string(body))
	}

	var out extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode extraction response: %w", err)
	}
	if !out.Success {
		return nil, fmt.Errorf("extraction service rejected document: %s", out.Error)
	}
	if out.Skills == nil {
		out.Skills = []string{}
	}
	return &out.Result, nil
}
