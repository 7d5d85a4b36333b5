package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"prioritizacion/internal/dto"
	"prioritizacion/internal/httpx"
	"prioritizacion/internal/service"
)

type rankingHandlers struct {
	ranking  service.RankingService
	sessions *Sessions
}

func (h *rankingHandlers) list(w http.ResponseWriter, r *http.Request) {
	id, _ := ApplicantFrom(r.Context())
	items, err := h.ranking.List(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if items == nil {
		items = []dto.RankingItem{}
	}
	httpx.WriteJSON(w, http.StatusOK, dto.RankingResponse{OK: true, Items: items})
}

func (h *rankingHandlers) save(w http.ResponseWriter, r *http.Request) {
	id, _ := ApplicantFrom(r.Context())
	var req dto.SaveRankingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "bad request")
		return
	}
	if err := h.ranking.Save(r.Context(), id, req.PositionIDs); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto.OperationResponse{OK: true})
}

func (h *rankingHandlers) reset(w http.ResponseWriter, r *http.Request) {
	id, _ := ApplicantFrom(r.Context())
	if err := h.ranking.Reset(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto.OperationResponse{OK: true})
}

// submit saves the posted order first when one is sent, then submits and
// ends the session.
func (h *rankingHandlers) submit(w http.ResponseWriter, r *http.Request) {
	id, _ := ApplicantFrom(r.Context())
	var req dto.SaveRankingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeFailure(w, http.StatusBadRequest, "bad request")
		return
	}
	if len(req.PositionIDs) > 0 {
		if err := h.ranking.Save(r.Context(), id, req.PositionIDs); err != nil {
			writeError(w, r, err)
			return
		}
	}
	if err := h.ranking.Submit(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	h.sessions.clear(w, ApplicantCookie)
	httpx.WriteJSON(w, http.StatusOK, dto.OperationResponse{OK: true, SessionEnded: true})
}
