package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-ledger/internal/middleware"
	"github.com/sjperalta/fintera-ledger/internal/models"
	"github.com/sjperalta/fintera-ledger/internal/services"
)

type PostingHandler struct {
	postingService *services.PostingService
	saleService    *services.SaleService
}

func NewPostingHandler(postingService *services.PostingService, saleService *services.SaleService) *PostingHandler {
	return &PostingHandler{postingService: postingService, saleService: saleService}
}

// EventMetaRequest is shared by every posting request
type EventMetaRequest struct {
	Reference   string `json:"reference"`
	Date        string `json:"date" example:"2026-03-31"`
	Description string `json:"description"`
}

func (r EventMetaRequest) meta() (services.EventMeta, error) {
	date, err := parseTime(r.Date, false)
	if err != nil {
		return services.EventMeta{}, err
	}
	m := services.EventMeta{Reference: r.Reference, Description: r.Description}
	if date != nil {
		m.Date = *date
	}
	return m, nil
}

type SaleRequest struct {
	EventMetaRequest
	Amount  decimal.Decimal      `json:"amount" swaggertype:"string" example:"1000.00"`
	Cost    decimal.Decimal      `json:"cost" swaggertype:"string" example:"600.00"`
	Method  models.PaymentMethod `json:"method" example:"CASH"`
	TaxRate *decimal.Decimal     `json:"tax_rate,omitempty" swaggertype:"string" example:"0.15"`
}

type PaymentRequest struct {
	EventMetaRequest
	Amount decimal.Decimal      `json:"amount" swaggertype:"string"`
	Method models.PaymentMethod `json:"method" example:"CARD"`
}

type PurchaseRequest struct {
	EventMetaRequest
	Amount decimal.Decimal      `json:"amount" swaggertype:"string"`
	Method models.PaymentMethod `json:"method" example:"CREDIT"`
}

type ExpenseRequest struct {
	EventMetaRequest
	Amount   decimal.Decimal          `json:"amount" swaggertype:"string"`
	Category services.ExpenseCategory `json:"category" example:"RENT"`
	Method   models.PaymentMethod     `json:"method" example:"CASH"`
}

type CashInRequest struct {
	EventMetaRequest
	Amount decimal.Decimal     `json:"amount" swaggertype:"string"`
	Kind   services.CashInKind `json:"kind" example:"MISC_INCOME"`
}

type CashOutRequest struct {
	EventMetaRequest
	Amount decimal.Decimal      `json:"amount" swaggertype:"string"`
	Kind   services.CashOutKind `json:"kind" example:"OWNER_WITHDRAWAL"`
}

// ReturnRequest reverses a recorded sale when SaleReference is set;
// otherwise the amounts describe a return without a recorded sale.
type ReturnRequest struct {
	EventMetaRequest
	SaleReference string               `json:"sale_reference"`
	Amount        decimal.Decimal      `json:"amount" swaggertype:"string"`
	Cost          decimal.Decimal      `json:"cost" swaggertype:"string"`
	Method        models.PaymentMethod `json:"method"`
	TaxRate       *decimal.Decimal     `json:"tax_rate,omitempty" swaggertype:"string"`
}

// bind reads a flat body or one nested under key, then resolves the shared meta
func bind(c *gin.Context, key string, req any, base *EventMetaRequest) (services.EventMeta, bool) {
	if err := BindNestedOrFlat(c, key, req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cuerpo de solicitud inválido"})
		return services.EventMeta{}, false
	}
	meta, err := base.meta()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return services.EventMeta{}, false
	}
	return meta, true
}

func (h *PostingHandler) respond(c *gin.Context, entry *models.JournalEntry, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"entry": entry})
}

// @Summary Post Sale
// @Description Records a sale and its journal entry. The reference must be unique per tenant.
// @Tags Postings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SaleRequest true "Sale"
// @Success 201 {object} map[string]interface{}
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /postings/sales [post]
func (h *PostingHandler) Sale(c *gin.Context) {
	var req SaleRequest
	meta, ok := bind(c, "sale", &req, &req.EventMetaRequest)
	if !ok {
		return
	}

	sale, entry, err := h.saleService.RecordSale(c.Request.Context(), middleware.GetTenantID(c), services.SaleEvent{
		EventMeta: meta,
		Amount:    req.Amount,
		Cost:      req.Cost,
		Method:    req.Method,
		TaxRate:   req.TaxRate,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"entry": entry, "sale": sale})
}

// @Summary Post Customer Payment
// @Description Collects a receivable (Cuentas por Cobrar) in cash or card
// @Tags Postings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body PaymentRequest true "Payment"
// @Success 201 {object} map[string]interface{}
// @Failure 422 {object} map[string]string
// @Router /postings/payments [post]
func (h *PostingHandler) Payment(c *gin.Context) {
	var req PaymentRequest
	meta, ok := bind(c, "payment", &req, &req.EventMetaRequest)
	if !ok {
		return
	}
	entry, err := h.postingService.PostPayment(c.Request.Context(), middleware.GetTenantID(c), services.PaymentEvent{
		EventMeta: meta, Amount: req.Amount, Method: req.Method,
	})
	h.respond(c, entry, err)
}

// @Summary Post Inventory Purchase
// @Tags Postings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body PurchaseRequest true "Purchase"
// @Success 201 {object} map[string]interface{}
// @Failure 422 {object} map[string]string
// @Router /postings/purchases [post]
func (h *PostingHandler) Purchase(c *gin.Context) {
	var req PurchaseRequest
	meta, ok := bind(c, "purchase", &req, &req.EventMetaRequest)
	if !ok {
		return
	}
	entry, err := h.postingService.PostPurchase(c.Request.Context(), middleware.GetTenantID(c), services.PurchaseEvent{
		EventMeta: meta, Amount: req.Amount, Method: req.Method,
	})
	h.respond(c, entry, err)
}

// @Summary Post Operating Expense
// @Description Category is one of RENT, UTILITIES, PAYROLL, GENERAL, DEPRECIATION
// @Tags Postings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ExpenseRequest true "Expense"
// @Success 201 {object} map[string]interface{}
// @Failure 422 {object} map[string]string
// @Router /postings/expenses [post]
func (h *PostingHandler) Expense(c *gin.Context) {
	var req ExpenseRequest
	meta, ok := bind(c, "expense", &req, &req.EventMetaRequest)
	if !ok {
		return
	}
	entry, err := h.postingService.PostExpense(c.Request.Context(), middleware.GetTenantID(c), services.ExpenseEvent{
		EventMeta: meta, Amount: req.Amount, Category: req.Category, Method: req.Method,
	})
	h.respond(c, entry, err)
}

// @Summary Post Manual Cash-In
// @Tags Postings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CashInRequest true "Cash in"
// @Success 201 {object} map[string]interface{}
// @Failure 422 {object} map[string]string
// @Router /postings/cash-in [post]
func (h *PostingHandler) CashIn(c *gin.Context) {
	var req CashInRequest
	meta, ok := bind(c, "cash_in", &req, &req.EventMetaRequest)
	if !ok {
		return
	}
	entry, err := h.postingService.PostCashIn(c.Request.Context(), middleware.GetTenantID(c), services.CashInEvent{
		EventMeta: meta, Amount: req.Amount, Kind: req.Kind,
	})
	h.respond(c, entry, err)
}

// @Summary Post Manual Cash-Out
// @Tags Postings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CashOutRequest true "Cash out"
// @Success 201 {object} map[string]interface{}
// @Failure 422 {object} map[string]string
// @Router /postings/cash-out [post]
func (h *PostingHandler) CashOut(c *gin.Context) {
	var req CashOutRequest
	meta, ok := bind(c, "cash_out", &req, &req.EventMetaRequest)
	if !ok {
		return
	}
	entry, err := h.postingService.PostCashOut(c.Request.Context(), middleware.GetTenantID(c), services.CashOutEvent{
		EventMeta: meta, Amount: req.Amount, Kind: req.Kind,
	})
	h.respond(c, entry, err)
}

// @Summary Post Return
// @Description Reverses a recorded sale by sale_reference, or posts a return from explicit amounts
// @Tags Postings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ReturnRequest true "Return"
// @Success 201 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /postings/returns [post]
func (h *PostingHandler) Return(c *gin.Context) {
	var req ReturnRequest
	meta, ok := bind(c, "return", &req, &req.EventMetaRequest)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	tenantID := middleware.GetTenantID(c)

	if req.SaleReference != "" {
		sale, entry, err := h.saleService.ReturnSale(ctx, tenantID, req.SaleReference, meta)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"entry": entry, "sale": sale})
		return
	}

	entry, err := h.postingService.PostReturn(ctx, tenantID, services.ReturnEvent{
		EventMeta: meta,
		Amount:    req.Amount,
		Cost:      req.Cost,
		Method:    req.Method,
		TaxRate:   req.TaxRate,
	})
	h.respond(c, entry, err)
}
