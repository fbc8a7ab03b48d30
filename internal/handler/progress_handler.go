package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lumafit/coach-api/internal/dto"
	"github.com/lumafit/coach-api/internal/service"
	appErrors "github.com/lumafit/coach-api/pkg/errors"
	"github.com/lumafit/coach-api/pkg/response"
)

// ProgressHandler exposes progression endpoints.
type ProgressHandler struct {
	progression *service.ProgressionService
}

// NewProgressHandler constructs the handler.
func NewProgressHandler(progression *service.ProgressionService) *ProgressHandler {
	return &ProgressHandler{progression: progression}
}

// Next godoc
// @Summary Next session target
// @Tags Progress
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /progress/next [get]
func (h *ProgressHandler) Next(c *gin.Context) {
	res, err := h.progression.NextFor(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// CompleteDay godoc
// @Summary Record a finished session
// @Tags Progress
// @Accept json
// @Produce json
// @Param payload body dto.CompleteDayRequest true "Completed day"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /progress/complete-day [post]
func (h *ProgressHandler) CompleteDay(c *gin.Context) {
	var req dto.CompleteDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid completion payload"))
		return
	}

	res, err := h.progression.CompleteDay(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// History godoc
// @Summary Workout history, newest first
// @Tags Progress
// @Produce json
// @Param limit query int false "Page size" default(50)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /progress/history [get]
func (h *ProgressHandler) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	res, err := h.progression.History(c.Request.Context(), claimsFromContext(c), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}
