package api

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

func NewRouter(a *API) http.Handler {
	mux := http.NewServeMux()

	// Swagger documentation - must be registered first
	mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"),
	))

	// Health check (for Railway, k8s, etc.)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Job endpoints
	mux.HandleFunc("POST /api/jobs", a.CreateJobHandler)
	mux.HandleFunc("GET /api/jobs", a.ListJobsHandler)
	mux.HandleFunc("GET /api/jobs/{id}", a.GetJobHandler)
	mux.HandleFunc("PUT /api/jobs/{id}", a.UpdateJobHandler)
	mux.HandleFunc("DELETE /api/jobs/{id}", a.DeleteJobHandler)
	mux.HandleFunc("POST /api/jobs/{id}/extract", a.ExtractJobHandler)
	mux.HandleFunc("POST /api/jobs/{id}/rank", a.RankJobHandler)

	// Match endpoints
	mux.HandleFunc("GET /api/jobs/{id}/matches", a.GetMatchesHandler)
	mux.HandleFunc("PATCH /api/jobs/{id}/matches/{resumeId}/status", a.SetReviewStatusHandler)

	// Resume endpoints
	mux.HandleFunc("POST /api/resumes/upload", a.ResumeUploadHandler)
	mux.HandleFunc("POST /api/resumes/import", a.ResumeImportHandler)
	mux.HandleFunc("GET /api/resumes", a.ListResumesHandler)
	mux.HandleFunc("DELETE /api/resumes/{id}", a.DeleteResumeHandler)

	return mux
}
