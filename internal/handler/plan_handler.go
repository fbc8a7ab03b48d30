package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lumafit/coach-api/internal/dto"
	"github.com/lumafit/coach-api/internal/service"
	appErrors "github.com/lumafit/coach-api/pkg/errors"
	"github.com/lumafit/coach-api/pkg/response"
)

// PlanHandler exposes plan activation endpoints.
type PlanHandler struct {
	activation *service.ActivationService
}

// NewPlanHandler constructs the handler.
func NewPlanHandler(activation *service.ActivationService) *PlanHandler {
	return &PlanHandler{activation: activation}
}

// Activate godoc
// @Summary Start a catalog program
// @Description Submits the program schedule to the workout planner and records
// @Description the plan on the user's profile.
// @Tags Plans
// @Accept json
// @Produce json
// @Param payload body dto.ActivatePlanRequest true "Program to start"
// @Success 201 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /plans/activate [post]
func (h *PlanHandler) Activate(c *gin.Context) {
	var req dto.ActivatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "programId required"))
		return
	}

	res, err := h.activation.Start(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}

// Current godoc
// @Summary Current plan record
// @Tags Plans
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /plans/current [get]
func (h *PlanHandler) Current(c *gin.Context) {
	res, err := h.activation.CurrentPlan(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}
