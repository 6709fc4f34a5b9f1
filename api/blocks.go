package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"booking-availability/block"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type blockResponse struct {
	ID        int64  `json:"id"`
	Date      string `json:"date"`
	Reason    string `json:"reason"`
	CreatedAt int64  `json:"created_at"`
}

func toBlockResponse(b block.Block) blockResponse {
	return blockResponse{
		ID:        b.ID,
		Date:      b.DateString(),
		Reason:    b.Reason,
		CreatedAt: b.CreatedAt.Unix(),
	}
}

type getBlocksResponse struct {
	Blocks []blockResponse `json:"blocks"`
}

func (a *API) getBlocks(w http.ResponseWriter, r *http.Request) {
	var from time.Time
	if value := r.URL.Query().Get("from"); value != "" {
		parsed, err := a.engine.ParseDate(value)
		if err != nil {
			a.Response(w, http.StatusBadRequest, "from must be in YYYY-MM-DD format")
			return
		}
		from = parsed
	}

	blocks, err := a.blocks.List(r.Context(), from)
	if err != nil {
		a.internalError(w, "could not list blocks", err)
		return
	}

	response := getBlocksResponse{Blocks: make([]blockResponse, 0, len(blocks))}
	for _, b := range blocks {
		response.Blocks = append(response.Blocks, toBlockResponse(b))
	}
	a.Response(w, http.StatusOK, response)
}

type createBlockRequest struct {
	Date   string `json:"date"`
	Reason string `json:"reason"`
}

func (a *API) createBlock(w http.ResponseWriter, r *http.Request) {
	var req createBlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.Response(w, http.StatusBadRequest, "invalid request body")
		return
	}

	date, err := a.engine.ParseDate(req.Date)
	if err != nil {
		a.Response(w, http.StatusBadRequest, "date must be in YYYY-MM-DD format")
		return
	}

	b := block.Block{Date: date, Reason: req.Reason}
	if err := b.Validate(); err != nil {
		a.Response(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := a.blocks.Create(r.Context(), b, a.now())
	if errors.Is(err, block.ErrAlreadyBlocked) {
		a.Response(w, http.StatusConflict, "date is already blocked")
		return
	}
	if err != nil {
		a.internalError(w, "could not create block", err, zap.String("date", req.Date))
		return
	}
	a.Response(w, http.StatusCreated, toBlockResponse(*created))
}

func (a *API) deleteBlock(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		a.Response(w, http.StatusBadRequest, "invalid block ID")
		return
	}

	err = a.blocks.Delete(r.Context(), id)
	if errors.Is(err, block.ErrNotFound) {
		a.Response(w, http.StatusNotFound, "block not found")
		return
	}
	if err != nil {
		a.internalError(w, "could not delete block", err, zap.Int64("block_id", id))
		return
	}
	a.Response(w, http.StatusNoContent, nil)
}
