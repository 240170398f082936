package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"jd-match/internal/workspace"
)

// CreateJobHandler registers a new job description
// @Summary Create a job
// @Description Store a job description and register it for matching
// @Tags jobs
// @Accept json
// @Produce json
// @Param job body workspace.Job true "Job description"
// @Success 201 {object} workspace.Job
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /jobs [post]
func (a *API) CreateJobHandler(w http.ResponseWriter, r *http.Request) {
	var job workspace.Job
	if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if job.Title == "" || job.Text == "" {
		respondError(w, http.StatusBadRequest, "title and text are required")
		return
	}
	job.Status = workspace.StatusIdle

	if err := a.db.SaveJob(r.Context(), &job); err != nil {
		a.log.Error("failed to save job", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to save job")
		return
	}
	if err := a.store.AddJob(&job); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, job)
}

// UpdateJobHandler replaces a job's description and requirements
// @Summary Update a job
// @Description Replace the job's title, text and requirement lists. The lifecycle status is kept; re-run extraction after changing the text.
// @Tags jobs
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param job body workspace.Job true "Updated job"
// @Success 200 {object} workspace.Job
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /jobs/{id} [put]
func (a *API) UpdateJobHandler(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	current, ok := a.store.JobInfo(jobID)
	if !ok {
		respondError(w, http.StatusNotFound, "job not found")
		return
	}

	var job workspace.Job
	if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	job.ID = jobID
	job.Status = current.Status
	if job.Title == "" || job.Text == "" {
		respondError(w, http.StatusBadRequest, "title and text are required")
		return
	}

	if err := a.db.SaveJob(r.Context(), &job); err != nil {
		a.log.Error("failed to update job", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to update job")
		return
	}
	if err := a.store.AddJob(&job); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, job)
}

// ListJobsHandler lists all jobs
// @Summary List jobs
// @Tags jobs
// @Produce json
// @Success 200 {array} workspace.Job
// @Router /jobs [get]
func (a *API) ListJobsHandler(w http.ResponseWriter, r *http.Request) {
	jobs, err := a.db.ListJobs(r.Context())
	if err != nil {
		a.log.Error("failed to list jobs", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}
	if jobs == nil {
		jobs = []*workspace.Job{}
	}
	respondJSON(w, http.StatusOK, jobs)
}

// GetJobHandler returns one job with its current lifecycle status
// @Summary Get a job
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} workspace.Job
// @Failure 404 {object} map[string]string
// @Router /jobs/{id} [get]
func (a *API) GetJobHandler(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	job, ok := a.store.JobInfo(jobID)
	if !ok {
		respondError(w, http.StatusNotFound, "job not found")
		return
	}
	respondJSON(w, http.StatusOK, job)
}

// DeleteJobHandler removes a job and its matches
// @Summary Delete a job
// @Description Delete a job; its persisted matches go with it. Resumes stay.
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /jobs/{id} [delete]
func (a *API) DeleteJobHandler(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	if err := a.db.DeleteJob(r.Context(), jobID); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	a.store.RemoveJob(jobID)
	respondJSON(w, http.StatusOK, map[string]string{"deleted": jobID})
}

// ExtractJobHandler starts requirement and resume extraction for a job
// @Summary Run extraction
// @Description Extract required skills from the JD and parse every resume that still needs it. Runs in the background.
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 202 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /jobs/{id}/extract [post]
func (a *API) ExtractJobHandler(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	if _, ok := a.store.JobInfo(jobID); !ok {
		respondError(w, http.StatusNotFound, "job not found")
		return
	}
	if !a.queueTask(jobID, TaskExtract) {
		respondError(w, http.StatusServiceUnavailable, "task queue full")
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"jdId": jobID, "status": "queued"})
}

// RankJobHandler starts matching and ranking for a job
// @Summary Run matching and ranking
// @Description Score every resume against the job's extracted requirements and commit the ranking. Runs in the background. Requires a prior extraction.
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 202 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /jobs/{id}/rank [post]
func (a *API) RankJobHandler(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	job, ok := a.store.JobInfo(jobID)
	if !ok {
		respondError(w, http.StatusNotFound, "job not found")
		return
	}
	if len(job.RequiredSkills) == 0 {
		respondError(w, http.StatusConflict, "job has no extracted skills; run extraction first")
		return
	}
	if !a.queueTask(jobID, TaskRank) {
		respondError(w, http.StatusServiceUnavailable, "task queue full")
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"jdId": jobID, "status": "queued"})
}
