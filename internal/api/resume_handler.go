package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"

	"go.uber.org/zap"

	"jd-match/internal/storage"
	"jd-match/internal/workspace"
)

// ResumeUploadHandler handles resume file uploads
// @Summary Upload a resume
// @Description Upload a resume file (PDF/DOCX/TXT), extract its text and add it to the shared resume pool
// @Tags resumes
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Resume file (PDF, DOCX or TXT)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /resumes/upload [post]
func (a *API) ResumeUploadHandler(w http.ResponseWriter, r *http.Request) {
	// Parse multipart form (max 10MB)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		respondError(w, http.StatusBadRequest, "file too large or invalid (max 10MB)")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	ext := filepath.Ext(header.Filename)
	if ext != ".pdf" && ext != ".docx" && ext != ".doc" && ext != ".txt" {
		respondError(w, http.StatusBadRequest, "invalid file type (supported: PDF, DOCX, TXT)")
		return
	}

	parsed, err := a.cvParser.ParseFile(header.Filename, file)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to parse resume: %v", err))
		return
	}

	rec := &workspace.ResumeRecord{
		FileID: storage.NewFileID(),
		Name:   parsed.Filename,
		Text:   parsed.FullText,
	}
	if err := a.db.SaveResume(r.Context(), rec); err != nil {
		a.log.Error("failed to save resume", zap.String("file", rec.Name), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to save resume")
		return
	}
	a.store.AddGlobalResume(rec)

	a.log.Info("resume uploaded",
		zap.String("file", parsed.Filename),
		zap.Int("text_length", len(parsed.FullText)))

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"fileId":      rec.FileID,
		"filename":    parsed.Filename,
		"file_type":   parsed.FileType,
		"file_size":   parsed.FileSize,
		"text_length": len(parsed.FullText),
	})
}

type importRequest struct {
	Resumes    []workspace.ResumeRecord `json:"resumes"`
	ExcludeIDs []string                 `json:"excludeIds,omitempty"`
}

// ResumeImportHandler bulk-imports externally sourced resumes
// @Summary Import resumes
// @Description Import a batch of already-parsed resumes (e.g. from a drive folder scan). Known identities and excludeIds are skipped; only genuinely new files enter the pool.
// @Tags resumes
// @Accept json
// @Produce json
// @Param request body importRequest true "Resumes plus ids to skip"
// @Success 200 {object} map[string]int
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /resumes/import [post]
func (a *API) ResumeImportHandler(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	known := req.ExcludeIDs
	for _, rec := range a.store.Resumes() {
		known = append(known, rec.Identity())
	}

	fresh := workspace.DeduplicateImportCandidates(known, req.Resumes)
	for i := range fresh {
		rec := &fresh[i]
		if err := a.db.SaveResume(r.Context(), rec); err != nil {
			a.log.Error("failed to save imported resume", zap.String("file", rec.Name), zap.Error(err))
			respondError(w, http.StatusInternalServerError, "failed to save imported resume")
			return
		}
		a.store.AddGlobalResume(rec)
	}

	respondJSON(w, http.StatusOK, map[string]int{
		"imported": len(fresh),
		"skipped":  len(req.Resumes) - len(fresh),
	})
}

// ListResumesHandler returns the shared resume pool
// @Summary List resumes
// @Tags resumes
// @Produce json
// @Success 200 {array} workspace.ResumeRecord
// @Router /resumes [get]
func (a *API) ListResumesHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, a.store.Resumes())
}

// DeleteResumeHandler removes a resume everywhere
// @Summary Delete a resume
// @Description Remove a resume from the shared pool, from every job's candidate list and from persistence.
// @Tags resumes
// @Produce json
// @Param id path string true "Resume file ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /resumes/{id} [delete]
func (a *API) DeleteResumeHandler(w http.ResponseWriter, r *http.Request) {
	fileID := r.PathValue("id")
	if !a.store.RemoveGlobalResume(fileID) {
		respondError(w, http.StatusNotFound, "resume not found")
		return
	}
	if err := a.db.DeleteResume(r.Context(), fileID); err != nil {
		a.log.Error("failed to delete resume", zap.String("file_id", fileID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to delete resume")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"deleted": fileID})
}
