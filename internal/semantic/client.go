// Package semantic is the thin client for the external similarity service,
// which scores each resume's textual similarity to a job description on a
// 0-1 scale. Absence of a resume in the result is valid and means no
// semantic contribution; the adapter in internal/matching turns absence
// into a zero score.
package semantic

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

type Client struct {
	baseURL string
	http    *pkghttp.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    pkghttp.NewClient(timeout),
	}
}

type rankRequest struct {
	JDText     string            `json:"jdText"`
	ResumeData map[string]string `json:"resumeData"`
}

type rankResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Results []struct {
		ID    string  `json:"id"`
		Score float64 `json:"score"`
	} `json:"results"`
}

// Rank submits the job description and the resume texts in one batch and
// returns resume identity -> similarity (0-1). Ids missing from the
// service's answer are simply absent from the map.
func (c *Client) Rank(ctx context.Context, jdText string, resumes map[string]string) (map[string]float64, error) {
	payload, err := json.Marshal(rankRequest{JDText: jdText, ResumeData: resumes})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rank-resumes", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("similarity call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("similarity service error: %d - %s", resp.StatusCode, string(body))
	}

	var out rankResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode similarity response: %w", err)
	}
	if !out.Success {
		return nil, fmt.Errorf("similarity service rejected batch: %s", out.Error)
	}

	scores := make(map[string]float64, len(out.Results))
	for _, r := range out.Results {
		scores[r.ID] = r.Score
	}
	return scores, nil
}
