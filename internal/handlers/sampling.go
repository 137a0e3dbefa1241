package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/openagora/agora-backend/internal/logger"
	"github.com/openagora/agora-backend/internal/sampling"
	"github.com/openagora/agora-backend/internal/services"
	"github.com/openagora/agora-backend/internal/store"
)

const defaultBatchCount = 5

// userIDHeader carries the caller identity resolved by the auth layer in
// front of this service.
const userIDHeader = "X-User-ID"

type SamplingHandler struct {
	log         *logger.Logger
	samplingSvc services.SamplingService
}

func NewSamplingHandler(baseLog *logger.Logger, samplingSvc services.SamplingService) *SamplingHandler {
	return &SamplingHandler{
		log:         baseLog.With("handler", "SamplingHandler"),
		samplingSvc: samplingSvc,
	}
}

// GET /api/proposals/next-batch?count=N
func (h *SamplingHandler) NextBatch(c *gin.Context) {
	userID, err := uuid.Parse(c.GetHeader(userIDHeader))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_argument", fmt.Errorf("missing or invalid %s header", userIDHeader))
		return
	}

	count := defaultBatchCount
	if raw := c.Query("count"); raw != "" {
		count, err = strconv.Atoi(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_argument", fmt.Errorf("count must be an integer, got %q", raw))
			return
		}
	}

	result, err := h.samplingSvc.NextBatch(c.Request.Context(), userID, count)
	if err != nil {
		h.log.Error("Next batch selection failed", "user_id", userID, "error", err)
		RespondError(c, http.StatusInternalServerError, "internal", err)
		return
	}
	RespondOK(c, result)
}

// GET /api/proposals/:id/score
func (h *SamplingHandler) ScoreProposal(c *gin.Context) {
	proposalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_argument", fmt.Errorf("invalid proposal id"))
		return
	}

	scored, err := h.samplingSvc.ScoreProposal(c.Request.Context(), proposalID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			RespondError(c, http.StatusNotFound, "not_found", err)
			return
		}
		h.log.Error("Proposal scoring failed", "proposal_id", proposalID, "error", err)
		RespondError(c, http.StatusInternalServerError, "internal", err)
		return
	}
	RespondOK(c, scored)
}

// GET /api/sampling/config
func (h *SamplingHandler) GetConfig(c *gin.Context) {
	RespondOK(c, h.samplingSvc.Config(c.Request.Context()))
}

// PATCH /api/sampling/config
func (h *SamplingHandler) UpdateConfig(c *gin.Context) {
	var patch sampling.ConfigPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_argument", err)
		return
	}

	cfg, err := h.samplingSvc.UpdateConfig(c.Request.Context(), patch)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_argument", err)
		return
	}
	RespondOK(c, cfg)
}
