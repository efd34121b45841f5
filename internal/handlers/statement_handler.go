package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/fintera-ledger/internal/middleware"
	"github.com/sjperalta/fintera-ledger/internal/models"
	"github.com/sjperalta/fintera-ledger/internal/services"
)

type StatementHandler struct {
	statementService *services.StatementService
	exportService    *services.ExportService
}

func NewStatementHandler(statementService *services.StatementService, exportService *services.ExportService) *StatementHandler {
	return &StatementHandler{statementService: statementService, exportService: exportService}
}

func periodFromQuery(c *gin.Context) (models.Period, error) {
	from, err := queryTime(c, "from", false)
	if err != nil {
		return models.Period{}, err
	}
	to, err := queryTime(c, "to", true)
	if err != nil {
		return models.Period{}, err
	}
	return models.Period{From: from, To: to}, nil
}

// @Summary Balance General
// @Description Balance sheet as of a date; assets equal liabilities plus equity plus net income
// @Tags Statements
// @Produce json
// @Security BearerAuth
// @Param as_of query string false "YYYY-MM-DD or RFC3339 (defaults to now)"
// @Success 200 {object} models.BalanceGeneral
// @Router /statements/balance-general [get]
func (h *StatementHandler) BalanceGeneral(c *gin.Context) {
	asOf, err := queryTime(c, "as_of", true)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.statementService.GetBalanceGeneral(c.Request.Context(), middleware.GetTenantID(c), asOf)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// @Summary Estado de Resultados
// @Description Income statement for a period; both bounds are inclusive
// @Tags Statements
// @Produce json
// @Security BearerAuth
// @Param from query string false "YYYY-MM-DD or RFC3339"
// @Param to query string false "YYYY-MM-DD or RFC3339"
// @Success 200 {object} models.EstadoResultados
// @Failure 400 {object} map[string]string
// @Router /statements/estado-resultados [get]
func (h *StatementHandler) EstadoResultados(c *gin.Context) {
	period, err := periodFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.statementService.GetEstadoResultados(c.Request.Context(), middleware.GetTenantID(c), period)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// @Summary Export Statement
// @Description Downloads a statement as CSV, XLSX or PDF. A copy is archived; its path is returned in X-Archive-Path.
// @Tags Statements
// @Produce octet-stream
// @Security BearerAuth
// @Param kind query string true "balance or results"
// @Param format query string false "csv, xlsx or pdf" default(csv)
// @Param as_of query string false "Balance date"
// @Param from query string false "Results period start"
// @Param to query string false "Results period end"
// @Success 200 {file} file
// @Failure 400 {object} map[string]string
// @Router /statements/export [get]
func (h *StatementHandler) Export(c *gin.Context) {
	asOf, err := queryTime(c, "as_of", true)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	period, err := periodFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	file, err := h.exportService.Export(c.Request.Context(), middleware.GetTenantID(c), services.ExportRequest{
		Kind:   c.Query("kind"),
		Format: c.DefaultQuery("format", services.FormatCSV),
		AsOf:   asOf,
		Period: period,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if file.ArchivePath != "" {
		c.Header("X-Archive-Path", file.ArchivePath)
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
