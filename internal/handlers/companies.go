package handlers

import (
	"net/http"

	"github.com/aivahq/aiva-backend/internal/models"
	"github.com/aivahq/aiva-backend/internal/repository"
	"github.com/aivahq/aiva-backend/internal/state"
)

func (h *Handler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.companies.List(r.Context(), userID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, companies)
}

func (h *Handler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	var company models.Company
	if err := decodeJSON(r, &company); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if company.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	company.UserID = userID(r)
	created, err := h.companies.Create(r.Context(), company)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetCompany(w http.ResponseWriter, r *http.Request) {
	company, err := h.store.Companies.GetByID(r.Context(), pathVar(r, "id"))
	if err == repository.ErrNotFound {
		writeError(w, http.StatusNotFound, "company not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if company.UserID != userID(r) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	writeJSON(w, http.StatusOK, company)
}

func (h *Handler) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	id := pathVar(r, "id")
	existing, err := h.store.Companies.GetByID(r.Context(), id)
	if err == repository.ErrNotFound {
		writeError(w, http.StatusNotFound, "company not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if existing.UserID != userID(r) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	var company models.Company
	if err := decodeJSON(r, &company); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	company.ID = id
	company.UserID = existing.UserID
	company.CreatedAt = existing.CreatedAt
	updated, err := h.companies.Update(r.Context(), company)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteCompany(w http.ResponseWriter, r *http.Request) {
	id := pathVar(r, "id")
	uid := userID(r)
	existing, err := h.store.Companies.GetByID(r.Context(), id)
	if err == repository.ErrNotFound {
		writeError(w, http.StatusNotFound, "company not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if existing.UserID != uid {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	if err := h.companies.Delete(r.Context(), uid, id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// UploadCompanyLogo stores a logo image and points the company at its
// public URL. The upload is also recorded so it counts against storage.
func (h *Handler) UploadCompanyLogo(w http.ResponseWriter, r *http.Request) {
	id := pathVar(r, "id")
	uid := userID(r)
	existing, err := h.store.Companies.GetByID(r.Context(), id)
	if err == repository.ErrNotFound {
		writeError(w, http.StatusNotFound, "company not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if existing.UserID != uid {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	data, contentType, originalName, ok := h.receiveImage(w, r)
	if !ok {
		return
	}
	key, url, err := h.uploader.Upload(r.Context(), data, contentType)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if _, err := h.store.Uploads.Create(r.Context(), models.FileUpload{
		UserID:       uid,
		Filename:     key,
		OriginalName: originalName,
		MimeType:     contentType,
		Size:         int64(len(data)),
		URL:          url,
	}); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	existing.Logo = &url
	updated, err := h.companies.Update(r.Context(), existing)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// GetCurrentCompany resolves the active company selection.
func (h *Handler) GetCurrentCompany(w http.ResponseWriter, r *http.Request) {
	company, err := h.companies.Current(r.Context(), userID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if company == nil {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, company)
}

func (h *Handler) SelectCompany(w http.ResponseWriter, r *http.Request) {
	company, err := h.companies.Select(r.Context(), userID(r), pathVar(r, "id"))
	if err == repository.ErrNotFound {
		writeError(w, http.StatusNotFound, "company not found")
		return
	}
	if err == state.ErrForbidden {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, company)
}
