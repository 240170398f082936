package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"jd-match/internal/config"
	"jd-match/internal/cv"
	"jd-match/internal/extract"
	"jd-match/internal/semantic"
	"jd-match/internal/storage"
	"jd-match/internal/workspace"
)

type API struct {
	db        *storage.DB
	store     *workspace.Store
	runner    *workspace.Runner
	cvParser  *cv.Parser
	taskQueue chan rankTask // Background queue for async extraction and ranking runs
	log       *zap.Logger
}

func NewAPI(cfg *config.Config, db *storage.DB, log *zap.Logger) *API {
	if log == nil {
		log = zap.NewNop()
	}

	store := workspace.NewStore(log)
	extractor := extract.NewClient(cfg.ExtractorURL, cfg.ExtractorAPIKey, 60*time.Second)
	similarity := semantic.NewClient(cfg.SimilarityURL, 60*time.Second)
	runner := workspace.NewRunner(store, extractor, similarity, db, cfg.EnrichConcurrency, log)

	api := &API{
		db:        db,
		store:     store,
		runner:    runner,
		cvParser:  cv.NewParser(cfg.UploadsDir),
		taskQueue: make(chan rankTask, 50), // Buffer for 50 queued runs
		log:       log,
	}

	// Start background worker
	api.StartBackgroundWorker()

	return api
}

// Bootstrap ensures the schema and rehydrates the in-memory workspace from
// persistence: every stored job and every stored resume.
func (a *API) Bootstrap(ctx context.Context) error {
	if err := a.db.EnsureSchema(ctx); err != nil {
		return err
	}

	jobs, err := a.db.ListJobs(ctx)
	if err != nil {
		return err
	}
	for _, job := range jobs {
		// In-flight states do not survive a restart
		switch job.Status {
		case workspace.StatusExtracting, workspace.StatusMatching, workspace.StatusRanking:
			job.Status = workspace.StatusError
		}
		if err := a.store.AddJob(job); err != nil {
			return err
		}
	}

	resumes, err := a.db.ListResumes(ctx)
	if err != nil {
		return err
	}
	for _, rec := range resumes {
		a.store.AddGlobalResume(rec)
	}

	a.log.Info("workspace bootstrapped",
		zap.Int("jobs", len(jobs)),
		zap.Int("resumes", len(resumes)))
	return nil
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
