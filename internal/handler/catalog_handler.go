package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lumafit/coach-api/internal/dto"
	"github.com/lumafit/coach-api/internal/service"
	appErrors "github.com/lumafit/coach-api/pkg/errors"
	"github.com/lumafit/coach-api/pkg/response"
)

// CatalogHandler exposes program browsing and matching endpoints.
type CatalogHandler struct {
	catalog *service.CatalogService
	matcher *service.MatchService
}

// NewCatalogHandler constructs the handler.
func NewCatalogHandler(catalog *service.CatalogService, matcher *service.MatchService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, matcher: matcher}
}

// List godoc
// @Summary Browse the program catalog
// @Tags Programs
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /programs [get]
func (h *CatalogHandler) List(c *gin.Context) {
	entries, err := h.catalog.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	summaries := make([]dto.ProgramSummary, 0, len(entries))
	for _, entry := range entries {
		summaries = append(summaries, dto.SummaryFromEntry(entry))
	}
	response.JSON(c, http.StatusOK, summaries, nil)
}

// Get godoc
// @Summary Full program detail
// @Tags Programs
// @Produce json
// @Param id path string true "Program ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /programs/{id} [get]
func (h *CatalogHandler) Get(c *gin.Context) {
	entry, err := h.catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// Match godoc
// @Summary Rank programs against stated preferences
// @Tags Programs
// @Accept json
// @Produce json
// @Param payload body dto.MatchRequest true "Preferences"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /programs/match [post]
func (h *CatalogHandler) Match(c *gin.Context) {
	var req dto.MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid match payload"))
		return
	}

	results, err := h.matcher.Rank(c.Request.Context(), req.Preferences())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results, nil)
}
