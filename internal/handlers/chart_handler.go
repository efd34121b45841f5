package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/fintera-ledger/internal/middleware"
	"github.com/sjperalta/fintera-ledger/internal/services"
)

type ChartHandler struct {
	chartService *services.ChartService
}

func NewChartHandler(chartService *services.ChartService) *ChartHandler {
	return &ChartHandler{chartService: chartService}
}

// @Summary Seed Chart of Accounts
// @Description Creates the standard chart for the tenant. Idempotent; a partial chart is reported as a conflict.
// @Tags Chart
// @Produce json
// @Security BearerAuth
// @Success 201 {object} services.SeedResult
// @Success 200 {object} services.SeedResult
// @Failure 409 {object} map[string]string
// @Router /chart/seed [post]
func (h *ChartHandler) Seed(c *gin.Context) {
	result, err := h.chartService.Seed(c.Request.Context(), middleware.GetTenantID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusCreated
	if result.AlreadySeeded {
		status = http.StatusOK
	}
	c.JSON(status, result)
}

// @Summary List Chart of Accounts
// @Description Lists the tenant's accounts ordered by code
// @Tags Chart
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /chart [get]
func (h *ChartHandler) Index(c *gin.Context) {
	accounts, err := h.chartService.List(c.Request.Context(), middleware.GetTenantID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if len(accounts) == 0 {
		respondError(c, services.ErrChartNotSeeded)
		return
	}

	c.JSON(http.StatusOK, gin.H{"accounts": accounts, "total": len(accounts)})
}
