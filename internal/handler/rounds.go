package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"roundsync/internal/repository"
)

// RoundHandler serves the mirrored round tables read-only. Writes only ever
// come from the sync loops.
type RoundHandler struct {
	Repo repository.RoundRepository
}

func (h *RoundHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1")
	group.GET("/rounds", h.listRounds)
	group.GET("/lottery/rounds", h.listLotteryRounds)
	group.GET("/lottery/rounds/:id/winners", h.listWinners)
	group.GET("/sync/state", h.syncState)
}

func (h *RoundHandler) listRounds(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	chain := strings.TrimSpace(c.Query("chain"))
	if chain == "" {
		Error(c, http.StatusBadRequest, "chain is required", nil)
		return
	}
	limit := intQuery(c, "limit", 50)
	items, err := h.Repo.ListRounds(c.Request.Context(), chain, limit)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, map[string]any{"chain": chain, "count": len(items)})
}

func (h *RoundHandler) listLotteryRounds(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 50)
	items, err := h.Repo.ListLotteryRounds(c.Request.Context(), limit)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, map[string]any{"count": len(items)})
}

func (h *RoundHandler) listWinners(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	roundID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid round id", nil)
		return
	}
	items, err := h.Repo.ListLotteryWinners(c.Request.Context(), roundID)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, map[string]any{"round_id": roundID, "count": len(items)})
}

func (h *RoundHandler) syncState(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	scope := strings.TrimSpace(c.Query("scope"))
	if scope == "" {
		Error(c, http.StatusBadRequest, "scope is required", nil)
		return
	}
	state, err := h.Repo.GetSyncState(c.Request.Context(), scope)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if state == nil {
		Error(c, http.StatusNotFound, "no sync state for scope", nil)
		return
	}
	Ok(c, state, nil)
}
