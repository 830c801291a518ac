package handlers

import (
	"storeadmin/internal/repositories"
	"storeadmin/internal/services/ledger"
	"storeadmin/internal/utils"
	"storeadmin/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type TransactionHandler struct {
	service ledger.Service
}

func NewTransactionHandler(s ledger.Service) *TransactionHandler {
	return &TransactionHandler{service: s}
}

func transactionFilter(c *fiber.Ctx, window repositories.Page) repositories.TransactionFilter {
	return repositories.TransactionFilter{
		Page:            window,
		CustomerID:      queryUint(c, "customerId"),
		Status:          c.Query("status"),
		TransactionType: c.Query("transactionType"),
		PaymentMethod:   c.Query("paymentMethod"),
		Search:          c.Query("search"),
		Created:         queryDateRange(c),
	}
}

func (h *TransactionHandler) Create(c *fiber.Ctx) error {
	var in ledger.CreateInput
	if err := bind(c, &in); err != nil {
		return response.FromError(c, err)
	}
	tx, err := h.service.Create(c.UserContext(), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Transaction created", tx)
}

func (h *TransactionHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var u ledger.StatusUpdate
	if err := bind(c, &u); err != nil {
		return response.FromError(c, err)
	}
	tx, err := h.service.UpdateStatus(c.UserContext(), id, u)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Transaction status updated", tx)
}

// Refund records a refund against the transaction named by its public id.
func (h *TransactionHandler) Refund(c *fiber.Ctx) error {
	var input struct {
		TransactionID string          `json:"transactionId"`
		Amount        decimal.Decimal `json:"amount"`
		Reason        string          `json:"reason"`
	}
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}
	out, err := h.service.ProcessRefund(c.UserContext(), input.TransactionID, input.Amount, input.Reason)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Refund processed", out)
}

func (h *TransactionHandler) Get(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	tx, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	if !claims.CanActFor(tx.CustomerID) {
		return response.Forbidden(c)
	}
	return response.Success(c, "Transaction retrieved", tx)
}

func (h *TransactionHandler) List(c *fiber.Ctx) error {
	p, window := page(c)
	list, total, err := h.service.List(c.UserContext(), transactionFilter(c, window))
	if err != nil {
		return response.FromError(c, err)
	}
	p.SetTotal(total)
	return response.Paginated(c, "Transactions retrieved", list, p)
}

func (h *TransactionHandler) ListByCustomer(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.FromError(c, err)
	}
	customerID, err := paramID(c, "customerId")
	if err != nil {
		return response.FromError(c, err)
	}
	if !claims.CanActFor(customerID) {
		return response.Forbidden(c)
	}
	p, window := page(c)
	list, total, err := h.service.ListByCustomer(c.UserContext(), customerID, transactionFilter(c, window))
	if err != nil {
		return response.FromError(c, err)
	}
	p.SetTotal(total)
	return response.Paginated(c, "Transactions retrieved", list, p)
}

func (h *TransactionHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Transaction statistics retrieved", stats)
}
