package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"prioritizacion/internal/domain"
	"prioritizacion/internal/dto"
	"prioritizacion/internal/httpx"
	"prioritizacion/internal/service"
	"prioritizacion/internal/spreadsheet"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type adminHandlers struct {
	campaigns      service.CampaignService
	imports        service.ImportService
	exports        service.ExportService
	maxUploadBytes int64
}

func campaignID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid campaign id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *adminHandlers) listCampaigns(w http.ResponseWriter, r *http.Request) {
	items, err := h.campaigns.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if items == nil {
		items = []domain.Campaign{}
	}
	httpx.WriteJSON(w, http.StatusOK, dto.CampaignListResponse{OK: true, Items: items})
}

func (h *adminHandlers) createCampaign(w http.ResponseWriter, r *http.Request) {
	var in dto.CampaignInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeFailure(w, http.StatusBadRequest, "bad request")
		return
	}
	c, err := h.campaigns.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, dto.CampaignResponse{OK: true, Campaign: c})
}

func (h *adminHandlers) updateCampaign(w http.ResponseWriter, r *http.Request) {
	id, ok := campaignID(w, r)
	if !ok {
		return
	}
	var in dto.CampaignInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeFailure(w, http.StatusBadRequest, "bad request")
		return
	}
	c, err := h.campaigns.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto.CampaignResponse{OK: true, Campaign: c})
}

func (h *adminHandlers) deleteCampaign(w http.ResponseWriter, r *http.Request) {
	id, ok := campaignID(w, r)
	if !ok {
		return
	}
	counts, err := h.campaigns.Delete(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto.DeleteCampaignResponse{OK: true, Deleted: counts})
}

// importWorkbook accepts a multipart upload with a "file" part and an
// optional "campaignId" field.
func (h *adminHandlers) importWorkbook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeFailure(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("the file exceeds %d bytes", h.maxUploadBytes))
			return
		}
		writeFailure(w, http.StatusBadRequest, "expected a multipart form")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	var req dto.ImportRequest
	if raw := strings.TrimSpace(r.FormValue("campaignId")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeFailure(w, http.StatusBadRequest, "invalid campaign id")
			return
		}
		req.DefaultCampaignID = &id
	}

	file, header, err := r.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		// the service reports the missing file
	case err != nil:
		writeFailure(w, http.StatusBadRequest, "could not read the uploaded file")
		return
	default:
		defer file.Close()
		req.FileName = header.Filename
		req.ContentType = header.Header.Get("Content-Type")
		if req.Data, err = io.ReadAll(file); err != nil {
			writeFailure(w, http.StatusBadRequest, "could not read the uploaded file")
			return
		}
	}

	res, err := h.imports.Import(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if !res.Success {
		status = http.StatusBadRequest
	}
	httpx.WriteJSON(w, status, res)
}

func (h *adminHandlers) exportCampaign(w http.ResponseWriter, r *http.Request) {
	id, ok := campaignID(w, r)
	if !ok {
		return
	}
	data, err := h.exports.Export(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", spreadsheet.MIMEXLSX)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="prioritizacion-%s.xlsx"`, id))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
