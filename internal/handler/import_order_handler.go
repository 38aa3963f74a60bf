package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"go-liquor-inventory/internal/model"
	"go-liquor-inventory/internal/service"
)

type ImportOrderHandler struct {
	service service.ImportOrderService
}

func NewImportOrderHandler(s service.ImportOrderService) *ImportOrderHandler {
	return &ImportOrderHandler{service: s}
}

type CancelImportOrderRequest struct {
	Reason string `json:"reason"`
}

// GetImportOrders lists orders, optionally filtered by ?status= and ?supplier_id=.
func (h *ImportOrderHandler) GetImportOrders(c *fiber.Ctx) error {
	supplierID, err := queryID(c, "supplier_id")
	if err != nil {
		return writeError(c, err)
	}
	orders, err := h.service.List(c.UserContext(), model.ImportOrderFilter{
		Status:     model.ImportOrderStatus(c.Query("status")),
		SupplierID: supplierID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(orders)
}

func (h *ImportOrderHandler) GetImportOrder(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	order, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(order)
}

// CreateImportOrder defaults the manager to the caller when none is given.
func (h *ImportOrderHandler) CreateImportOrder(c *fiber.Ctx) error {
	var req service.CreateImportOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	userID := getUserID(c)
	if req.ManagerID == uuid.Nil {
		if id, err := uuid.Parse(userID); err == nil {
			req.ManagerID = id
		}
	}

	order, err := h.service.Create(c.UserContext(), &req, userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Import order created", "data": order})
}

func (h *ImportOrderHandler) ApproveImportOrder(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	order, err := h.service.Approve(c.UserContext(), id, getUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Import order approved", "data": order})
}

func (h *ImportOrderHandler) CompleteImportOrder(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	order, err := h.service.Complete(c.UserContext(), id, getUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Import order completed", "data": order})
}

func (h *ImportOrderHandler) CancelImportOrder(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var req CancelImportOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	order, err := h.service.Cancel(c.UserContext(), id, req.Reason, getUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Import order cancelled", "data": order})
}
