package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/finadvisor/api/http/presenter"
	"github.com/artem13815/finadvisor/pkg/financial"
)

type FinancialHandler struct {
	svc financial.UseCase
}

func NewFinancialHandler(svc financial.UseCase) *FinancialHandler {
	return &FinancialHandler{svc: svc}
}

// Products
// @Summary List financial products
// @Tags    financial
// @Produce json
// @Security BearerAuth
// @Param   category   query string false "product category"
// @Param   risk_level query string false "risk level"
// @Param   limit      query int    false "page size"
// @Param   offset     query int    false "offset"
// @Success 200 {array} financial.Product
// @Router  /financial/products [get]
func (h *FinancialHandler) Products(c *fiber.Ctx) error {
	limit, offset := parseLimitOffset(c, 50)
	items, err := h.svc.ListProducts(c.UserContext(), financial.ProductFilter{
		Category:  c.Query("category"),
		RiskLevel: c.Query("risk_level"),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, items)
}

// Product
// @Summary Get product
// @Tags    financial
// @Produce json
// @Security BearerAuth
// @Param   id path int true "product id"
// @Success 200 {object} financial.Product
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /financial/products/{id} [get]
func (h *FinancialHandler) Product(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid product id")
	}
	p, err := h.svc.GetProduct(c.UserContext(), id)
	if err != nil {
		return writeDomainError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, p)
}

// Investments
// @Summary List the caller's investments
// @Tags    financial
// @Produce json
// @Security BearerAuth
// @Param   investment_type query string false "filter by type"
// @Success 200 {array} financial.Investment
// @Router  /financial/investments [get]
func (h *FinancialHandler) Investments(c *fiber.Ctx) error {
	items, err := h.svc.ListInvestments(c.UserContext(), currentUser(c), c.Query("investment_type"))
	if err != nil {
		return writeDomainError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, items)
}

// Investment
// @Summary Get investment
// @Tags    financial
// @Produce json
// @Security BearerAuth
// @Param   id path string true "investment id"
// @Success 200 {object} financial.Investment
// @Failure 403 {object} presenter.ErrorResponse
// @Router  /financial/investments/{id} [get]
func (h *FinancialHandler) Investment(c *fiber.Ctx) error {
	id, ok := uuidParam(c, "id")
	if !ok {
		return presenter.Error(c, http.StatusBadRequest, "invalid investment id")
	}
	inv, err := h.svc.GetInvestment(c.UserContext(), currentUser(c), id)
	if err != nil {
		return writeDomainError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, inv)
}

// CreateInvestment
// @Summary Create investment
// @Tags    financial
// @Accept  json
// @Produce json
// @Security BearerAuth
// @Param   input body financial.InvestmentInput true "investment"
// @Success 201 {object} financial.Investment
// @Failure 400 {object} presenter.ErrorResponse
// @Router  /financial/investments [post]
func (h *FinancialHandler) CreateInvestment(c *fiber.Ctx) error {
	var req financial.InvestmentInput
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	inv, err := h.svc.CreateInvestment(c.UserContext(), currentUser(c), req)
	if err != nil {
		return writeDomainError(c, err)
	}
	return presenter.JSON(c, http.StatusCreated, inv)
}

// UpdateInvestment
// @Summary Update investment
// @Tags    financial
// @Accept  json
// @Produce json
// @Security BearerAuth
// @Param   id    path string                    true "investment id"
// @Param   input body financial.InvestmentPatch true "changes"
// @Success 200 {object} financial.Investment
// @Failure 403 {object} presenter.ErrorResponse
// @Router  /financial/investments/{id} [put]
func (h *FinancialHandler) UpdateInvestment(c *fiber.Ctx) error {
	id, ok := uuidParam(c, "id")
	if !ok {
		return presenter.Error(c, http.StatusBadRequest, "invalid investment id")
	}
	var req financial.InvestmentPatch
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	inv, err := h.svc.UpdateInvestment(c.UserContext(), currentUser(c), id, req)
	if err != nil {
		return writeDomainError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, inv)
}

// DeleteInvestment
// @Summary Delete investment
// @Tags    financial
// @Security BearerAuth
// @Param   id path string true "investment id"
// @Success 204
// @Router  /financial/investments/{id} [delete]
func (h *FinancialHandler) DeleteInvestment(c *fiber.Ctx) error {
	id, ok := uuidParam(c, "id")
	if !ok {
		return presenter.Error(c, http.StatusBadRequest, "invalid investment id")
	}
	if err := h.svc.DeleteInvestment(c.UserContext(), currentUser(c), id); err != nil {
		return writeDomainError(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// InvestmentSummary
// @Summary Portfolio totals and allocation
// @Tags    financial
// @Produce json
// @Security BearerAuth
// @Success 200 {object} financial.InvestmentSummary
// @Router  /financial/investments/summary [get]
func (h *FinancialHandler) InvestmentSummary(c *fiber.Ctx) error {
	sum, err := h.svc.InvestmentSummary(c.UserContext(), currentUser(c))
	if err != nil {
		return writeDomainError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, sum)
}

// TransactionSummary
// @Summary Spending summary
// @Tags    financial
// @Produce json
// @Security BearerAuth
// @Param   months query int false "look-back window in months (default 3)"
// @Success 200 {object} financial.TransactionSummary
// @Router  /financial/transaction-summary [get]
func (h *FinancialHandler) TransactionSummary(c *fiber.Ctx) error {
	months := c.QueryInt("months", 3)
	if months < 1 || months > 24 {
		return presenter.Error(c, http.StatusBadRequest, "months must be between 1 and 24")
	}
	sum, err := h.svc.TransactionSummary(c.UserContext(), currentUser(c), months)
	if err != nil {
		return writeDomainError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, sum)
}

// Account
// @Summary Account balances
// @Tags    financial
// @Produce json
// @Security BearerAuth
// @Success 200 {object} financial.Account
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /financial/account [get]
func (h *FinancialHandler) Account(c *fiber.Ctx) error {
	acc, err := h.svc.Account(c.UserContext(), currentUser(c))
	if err != nil {
		return writeDomainError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, acc)
}

// CreditHistory
// @Summary Credit history
// @Tags    financial
// @Produce json
// @Security BearerAuth
// @Success 200 {object} financial.CreditHistory
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /financial/credit-history [get]
func (h *FinancialHandler) CreditHistory(c *fiber.Ctx) error {
	ch, err := h.svc.CreditHistory(c.UserContext(), currentUser(c))
	if err != nil {
		return writeDomainError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, ch)
}

// Demographics
// @Summary Demographic profile
// @Tags    financial
// @Produce json
// @Security BearerAuth
// @Success 200 {object} financial.Demographic
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /financial/demographics [get]
func (h *FinancialHandler) Demographics(c *fiber.Ctx) error {
	d, err := h.svc.Demographic(c.UserContext(), currentUser(c))
	if err != nil {
		return writeDomainError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, d)
}

// Profile
// @Summary Full financial profile
// @Tags    financial
// @Produce json
// @Security BearerAuth
// @Success 200 {object} financial.Profile
// @Router  /financial/financial-profile [get]
func (h *FinancialHandler) Profile(c *fiber.Ctx) error {
	p, err := h.svc.Profile(c.UserContext(), currentUser(c))
	if err != nil {
		return writeDomainError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, p)
}
