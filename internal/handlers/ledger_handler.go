package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/fintera-ledger/internal/middleware"
	"github.com/sjperalta/fintera-ledger/internal/models"
	"github.com/sjperalta/fintera-ledger/internal/repository"
	"github.com/sjperalta/fintera-ledger/internal/services"
)

type LedgerHandler struct {
	ledgerService *services.LedgerService
}

func NewLedgerHandler(ledgerService *services.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

// @Summary Account Balance
// @Description Signed balance of every account at or below prefix, as of a date (inclusive)
// @Tags Ledger
// @Produce json
// @Security BearerAuth
// @Param prefix query string true "Account code prefix" example(1.1)
// @Param as_of query string false "YYYY-MM-DD or RFC3339"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /ledger/balance [get]
func (h *LedgerHandler) Balance(c *gin.Context) {
	prefix := c.Query("prefix")
	asOf, err := queryTime(c, "as_of", true)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	balance, err := h.ledgerService.BalanceOf(c.Request.Context(), middleware.GetTenantID(c), prefix, asOf)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"prefix": prefix, "as_of": asOf, "balance": balance})
}

// @Summary List Journal Entries
// @Tags Ledger
// @Produce json
// @Security BearerAuth
// @Param source_type query string false "SALE, PAYMENT, PURCHASE, EXPENSE, CASH_IN, CASH_OUT, RETURN"
// @Param source_ref query string false "Source reference"
// @Param from query string false "YYYY-MM-DD or RFC3339"
// @Param to query string false "YYYY-MM-DD or RFC3339"
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Success 200 {object} map[string]interface{}
// @Router /ledger/entries [get]
func (h *LedgerHandler) Entries(c *gin.Context) {
	from, err := queryTime(c, "from", false)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	to, err := queryTime(c, "to", true)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	query := repository.NewEntryQuery(middleware.GetTenantID(c))
	query.ListQuery = listQuery(c)
	query.SourceType = models.SourceType(strings.ToUpper(c.Query("source_type")))
	query.SourceRef = c.Query("source_ref")
	query.From, query.To = from, to

	entries, total, err := h.ledgerService.Entries(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries, "pagination": pagination(query.ListQuery, total)})
}

// @Summary Show Journal Entry
// @Tags Ledger
// @Produce json
// @Security BearerAuth
// @Param entry_id path string true "Entry ID"
// @Success 200 {object} models.JournalEntry
// @Failure 404 {object} map[string]string
// @Router /ledger/entries/{entry_id} [get]
func (h *LedgerHandler) Entry(c *gin.Context) {
	entry, err := h.ledgerService.Entry(c.Request.Context(), middleware.GetTenantID(c), c.Param("entry_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}
