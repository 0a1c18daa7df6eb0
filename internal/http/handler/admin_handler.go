package handler

import (
	"net/http"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/fardapack/crm-api/internal/config"
	"github.com/fardapack/crm-api/internal/service"
)

// AdminHandler handles database backup and restore
type AdminHandler struct {
	backupService *service.BackupService
	cfg           *config.BackupConfig
	logger        *zap.Logger
}

func NewAdminHandler(backupService *service.BackupService, cfg *config.BackupConfig, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		backupService: backupService,
		cfg:           cfg,
		logger:        logger,
	}
}

// DownloadBackup godoc
// @Summary Download database backup
// @Description Stream the live database file
// @Tags Admin
// @Produce application/octet-stream
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /admin/backup [get]
func (h *AdminHandler) DownloadBackup(w http.ResponseWriter, r *http.Request) {
	path := h.backupService.DatabasePath()
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filepath.Base(path)+`"`)
	http.ServeFile(w, r, path)
}

// RestoreBackup godoc
// @Summary Restore database from upload
// @Description Validate an uploaded .db or .zip and atomically replace the live database
// @Tags Admin
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Database file or zip archive"
// @Success 200 {object} domain.RestoreResultDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /admin/restore [post]
func (h *AdminHandler) RestoreBackup(w http.ResponseWriter, r *http.Request) {
	maxBytes := h.cfg.MaxUploadSizeMB << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid multipart upload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	result, err := h.backupService.Restore(r.Context(), header.Filename, header.Size, file)
	if err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to restore database", zap.Error(err), zap.String("filename", header.Filename))
		respondWithError(w, http.StatusInternalServerError, "Failed to restore database")
		return
	}

	respondJSON(w, http.StatusOK, result)
}
