package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"go-liquor-inventory/internal/apperr"
	"go-liquor-inventory/internal/model"
	"go-liquor-inventory/internal/service"
)

const defaultTransactionLimit = 100

type InventoryHandler struct {
	service service.InventoryService
}

func NewInventoryHandler(s service.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: s}
}

func (h *InventoryHandler) CreateProduct(c *fiber.Ctx) error {
	var product model.Product
	if err := c.BodyParser(&product); err != nil {
		return invalidJSON(c)
	}
	if err := h.service.CreateProduct(c.UserContext(), &product, getUserID(c)); err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Product created", "data": product})
}

func (h *InventoryHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var req service.UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	updated, err := h.service.UpdateProduct(c.UserContext(), id, &req, getUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product updated", "data": updated})
}

func (h *InventoryHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.service.ListProducts(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(products)
}

func (h *InventoryHandler) GetProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	product, err := h.service.GetProduct(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(product)
}

func (h *InventoryHandler) CreateSupplier(c *fiber.Ctx) error {
	var supplier model.Supplier
	if err := c.BodyParser(&supplier); err != nil {
		return invalidJSON(c)
	}
	if err := h.service.CreateSupplier(c.UserContext(), &supplier, getUserID(c)); err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Supplier created", "data": supplier})
}

func (h *InventoryHandler) GetSuppliers(c *fiber.Ctx) error {
	suppliers, err := h.service.ListSuppliers(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(suppliers)
}

func (h *InventoryHandler) GetInventories(c *fiber.Ctx) error {
	rows, err := h.service.ListInventory(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(rows)
}

func (h *InventoryHandler) GetInventory(c *fiber.Ctx) error {
	productID, err := paramID(c, "productId")
	if err != nil {
		return writeError(c, err)
	}
	inv, err := h.service.GetInventory(c.UserContext(), productID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(inv)
}

func (h *InventoryHandler) GetProductTransactions(c *fiber.Ctx) error {
	productID, err := paramID(c, "productId")
	if err != nil {
		return writeError(c, err)
	}
	rows, err := h.service.TransactionsForProduct(c.UserContext(), productID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(rows)
}

func (h *InventoryHandler) AdjustInventory(c *fiber.Ctx) error {
	productID, err := paramID(c, "productId")
	if err != nil {
		return writeError(c, err)
	}
	var req service.AdjustInventoryRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	res, err := h.service.Adjust(c.UserContext(), productID, &req, getUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Inventory adjusted", "data": res})
}

// GetTransactions lists ledger rows newest first. Supports product_id, type,
// reference_type, reference_id, from, to and limit query parameters.
func (h *InventoryHandler) GetTransactions(c *fiber.Ctx) error {
	filter, err := transactionFilter(c)
	if err != nil {
		return writeError(c, err)
	}
	rows, err := h.service.ListTransactions(c.UserContext(), filter)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(rows)
}

func (h *InventoryHandler) GetTransaction(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	tx, err := h.service.GetTransaction(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(tx)
}

func transactionFilter(c *fiber.Ctx) (model.TransactionFilter, error) {
	var (
		f   model.TransactionFilter
		err error
	)
	if f.ProductID, err = queryID(c, "product_id"); err != nil {
		return f, err
	}
	if f.ReferenceID, err = queryID(c, "reference_id"); err != nil {
		return f, err
	}
	if f.From, err = queryTime(c, "from"); err != nil {
		return f, err
	}
	if f.To, err = queryTime(c, "to"); err != nil {
		return f, err
	}
	f.Type = model.InventoryTransactionType(c.Query("type"))
	f.ReferenceType = model.ReferenceType(c.Query("reference_type"))

	f.Limit = defaultTransactionLimit
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return f, apperr.Validation("invalid limit %q", raw)
		}
		f.Limit = limit
	}
	return f, nil
}
