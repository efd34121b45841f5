package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/fintera-ledger/internal/middleware"
	"github.com/sjperalta/fintera-ledger/internal/services"
)

type ScoreHandler struct {
	scoreService *services.ScoreService
}

func NewScoreHandler(scoreService *services.ScoreService) *ScoreHandler {
	return &ScoreHandler{scoreService: scoreService}
}

// @Summary Credit Score
// @Description Recomputes the tenant's credit score (300-850), rating, credit limit and the factors behind it
// @Tags Score
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.ScoreResult
// @Router /score [get]
func (h *ScoreHandler) Show(c *gin.Context) {
	result, err := h.scoreService.CalculateTenantScore(c.Request.Context(), middleware.GetTenantID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
