package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-ledger/internal/middleware"
	"github.com/sjperalta/fintera-ledger/internal/services"
)

type ShiftHandler struct {
	shiftService *services.ShiftService
}

func NewShiftHandler(shiftService *services.ShiftService) *ShiftHandler {
	return &ShiftHandler{shiftService: shiftService}
}

type OpenShiftRequest struct {
	InitialCash decimal.Decimal `json:"initial_cash" swaggertype:"string" example:"500.00"`
}

type CloseShiftRequest struct {
	CashTotal    decimal.Decimal `json:"cash_total" swaggertype:"string"`
	CardTotal    decimal.Decimal `json:"card_total" swaggertype:"string"`
	CreditTotal  decimal.Decimal `json:"credit_total" swaggertype:"string"`
	ManualIn     decimal.Decimal `json:"manual_in" swaggertype:"string"`
	ManualOut    decimal.Decimal `json:"manual_out" swaggertype:"string"`
	DeclaredCash decimal.Decimal `json:"declared_cash" swaggertype:"string"`
}

// @Summary Open Shift
// @Description Opens a cash shift owned by the authenticated cashier
// @Tags Shifts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body OpenShiftRequest true "Opening float"
// @Success 201 {object} models.Shift
// @Router /shifts [post]
func (h *ShiftHandler) Open(c *gin.Context) {
	var req OpenShiftRequest
	if err := BindNestedOrFlat(c, "shift", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cuerpo de solicitud inválido"})
		return
	}

	shift, err := h.shiftService.Open(c.Request.Context(), middleware.GetTenantID(c), middleware.GetUserID(c), req.InitialCash)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, shift)
}

// @Summary Close Shift
// @Description Reconciles declared against expected cash and classifies the difference (PERFECT, WARNING, ALERT)
// @Tags Shifts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param shift_id path string true "Shift ID"
// @Param request body CloseShiftRequest true "Shift totals"
// @Success 200 {object} models.Shift
// @Failure 403 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /shifts/{shift_id}/close [post]
func (h *ShiftHandler) Close(c *gin.Context) {
	var req CloseShiftRequest
	if err := BindNestedOrFlat(c, "shift", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cuerpo de solicitud inválido"})
		return
	}

	shift, err := h.shiftService.Close(c.Request.Context(), middleware.GetTenantID(c), c.Param("shift_id"),
		middleware.GetUserID(c), services.CloseShiftInput{
			CashTotal:    req.CashTotal,
			CardTotal:    req.CardTotal,
			CreditTotal:  req.CreditTotal,
			ManualIn:     req.ManualIn,
			ManualOut:    req.ManualOut,
			DeclaredCash: req.DeclaredCash,
		})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shift)
}

// @Summary List Shifts
// @Tags Shifts
// @Produce json
// @Security BearerAuth
// @Param status query string false "open or closed"
// @Param cashier_id query string false "Cashier"
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Success 200 {object} map[string]interface{}
// @Router /shifts [get]
func (h *ShiftHandler) Index(c *gin.Context) {
	query := listQuery(c, "status", "cashier_id")
	shifts, total, err := h.shiftService.List(c.Request.Context(), middleware.GetTenantID(c), query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shifts": shifts, "pagination": pagination(query, total)})
}

// @Summary Show Shift
// @Tags Shifts
// @Produce json
// @Security BearerAuth
// @Param shift_id path string true "Shift ID"
// @Success 200 {object} models.Shift
// @Failure 404 {object} map[string]string
// @Router /shifts/{shift_id} [get]
func (h *ShiftHandler) Show(c *gin.Context) {
	shift, err := h.shiftService.Get(c.Request.Context(), middleware.GetTenantID(c), c.Param("shift_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shift)
}
