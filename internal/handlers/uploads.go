package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/aivahq/aiva-backend/internal/models"
	"github.com/aivahq/aiva-backend/internal/repository"
	"github.com/aivahq/aiva-backend/internal/storage"
)

// receiveImage reads and validates the multipart "file" field. A nil
// error with a written response never happens; on failure the response
// has already been written.
func (h *Handler) receiveImage(w http.ResponseWriter, r *http.Request) (data []byte, contentType, originalName string, ok bool) {
	if h.uploader == nil {
		writeError(w, http.StatusServiceUnavailable, "uploads are not configured")
		return nil, "", "", false
	}
	if err := r.ParseMultipartForm(storage.MaxImageSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return nil, "", "", false
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return nil, "", "", false
	}
	defer file.Close()

	contentType = header.Header.Get("Content-Type")
	if err := storage.ValidateImage(contentType, header.Size); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, "", "", false
	}
	data, err = io.ReadAll(io.LimitReader(file, storage.MaxImageSize+1))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, "", "", false
	}
	if int64(len(data)) > storage.MaxImageSize {
		writeError(w, http.StatusBadRequest, "file too large")
		return nil, "", "", false
	}
	return data, contentType, header.Filename, true
}

// UploadFile accepts a multipart image, pushes it to object storage, and
// records the upload for quota accounting.
func (h *Handler) UploadFile(w http.ResponseWriter, r *http.Request) {
	data, contentType, originalName, ok := h.receiveImage(w, r)
	if !ok {
		return
	}

	key, url, err := h.uploader.Upload(r.Context(), data, contentType)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	upload, err := h.store.Uploads.Create(r.Context(), models.FileUpload{
		UserID:       userID(r),
		Filename:     key,
		OriginalName: originalName,
		MimeType:     contentType,
		Size:         int64(len(data)),
		URL:          url,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, upload)
}

func (h *Handler) ListUploads(w http.ResponseWriter, r *http.Request) {
	uploads, err := h.store.Uploads.ListByUser(r.Context(), userID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, uploads)
}

// GetUploadURL signs a short-lived download link for the caller's own
// upload, for sharing objects the bucket does not serve publicly.
func (h *Handler) GetUploadURL(w http.ResponseWriter, r *http.Request) {
	if h.uploader == nil {
		writeError(w, http.StatusServiceUnavailable, "uploads are not configured")
		return
	}
	id := pathVar(r, "id")
	upload, err := h.store.Uploads.GetByID(r.Context(), id)
	if err == repository.ErrNotFound {
		writeError(w, http.StatusNotFound, "upload not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if upload.UserID != userID(r) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	url, err := h.uploader.PresignGet(r.Context(), upload.Filename, 15*time.Minute)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (h *Handler) DeleteUpload(w http.ResponseWriter, r *http.Request) {
	id := pathVar(r, "id")
	upload, err := h.store.Uploads.GetByID(r.Context(), id)
	if err == repository.ErrNotFound {
		writeError(w, http.StatusNotFound, "upload not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if upload.UserID != userID(r) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	if h.uploader != nil {
		if err := h.uploader.Delete(r.Context(), upload.Filename); err != nil {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
	}
	if err := h.store.Uploads.Delete(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
