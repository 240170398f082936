package api

import (
	"encoding/json"
	"net/http"
	"sort"

	"go.uber.org/zap"

	"jd-match/internal/workspace"
)

// GetMatchesHandler returns a job's candidate list with scores
// @Summary Get matches for a job
// @Description Return every resume viewed through the job, merged with persisted match scores. Sorted best score first once the job has been ranked.
// @Tags matches
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /jobs/{id}/matches [get]
func (a *API) GetMatchesHandler(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	job, ok := a.store.JobInfo(jobID)
	if !ok {
		respondError(w, http.StatusNotFound, "job not found")
		return
	}

	// Merge persisted scores into the views before reading them out. A
	// load failure is not fatal: in-memory scores still serve.
	persisted, err := a.db.LoadMatches(r.Context(), jobID)
	if err != nil {
		a.log.Warn("failed to load persisted matches", zap.String("job", jobID), zap.Error(err))
	} else if len(persisted) > 0 {
		a.store.ApplyLoadedMatches(jobID, persisted)
		// Persisted results mean the job has been ranked, even if the run
		// happened in an earlier process.
		if job.Status == workspace.StatusIdle || job.Status == workspace.StatusExtracted {
			a.store.MarkRanked(jobID)
			job.Status = workspace.StatusRanked
		}
	}

	views := a.store.ViewsFor(jobID)
	if job.Status == workspace.StatusRanked || len(persisted) > 0 {
		sort.SliceStable(views, func(i, j int) bool {
			return views[i].MatchScore > views[j].MatchScore
		})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"jdId":    jobID,
		"status":  job.Status,
		"resumes": views,
	})
}

type reviewRequest struct {
	Status workspace.ReviewStatus `json:"candidateStatus"`
}

// SetReviewStatusHandler records a recruiter decision on one candidate
// @Summary Set review status
// @Description Mark one (job, resume) pair accepted, rejected or back to review. The decision is job-scoped: the same resume under another job is untouched.
// @Tags matches
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param resumeId path string true "Resume file ID"
// @Param request body reviewRequest true "New review status"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /jobs/{id}/matches/{resumeId}/status [patch]
func (a *API) SetReviewStatusHandler(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	resumeID := r.PathValue("resumeId")

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if !workspace.ValidReviewStatus(req.Status) {
		respondError(w, http.StatusBadRequest, "invalid review status")
		return
	}

	if err := a.store.SetReviewStatus(jobID, resumeID, req.Status); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	if err := a.db.UpdateReviewStatus(r.Context(), jobID, resumeID, req.Status); err != nil {
		a.log.Error("failed to persist review status",
			zap.String("job", jobID),
			zap.String("resume", resumeID),
			zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to persist review status")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"jdId":            jobID,
		"resumeId":        resumeID,
		"candidateStatus": string(req.Status),
	})
}
