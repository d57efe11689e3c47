package handlers

import (
	"inventory/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Put("/:id", h.HandleReplaceOrder)
	orderRoutes.Delete("/:id", h.HandleDeleteOrder)
	orderRoutes.Post("/:id/items", h.HandleAddItem)
	orderRoutes.Delete("/:id/items/:itemId", h.HandleRemoveItem)
	orderRoutes.Post("/:id/toggle-payment", h.HandleTogglePayment)
}

// HandleGetOrders retrieves all orders, newest first.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.GetAllOrders(c.UserContext())
	if err != nil {
		return respondError(c, err, "Could not retrieve orders")
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.service.GetOrderByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Could not retrieve order")
	}
	return c.JSON(order)
}

// HandleCreateOrder creates a new order and draws stock for its items.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req services.OrderRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}

	order, err := h.service.CreateOrder(c.UserContext(), req)
	if err != nil {
		return respondError(c, err, "Could not create order")
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleReplaceOrder replaces every item and the customer data of an order.
func (h *OrderHandler) HandleReplaceOrder(c *fiber.Ctx) error {
	var req services.OrderRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}

	order, err := h.service.ReplaceOrder(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return respondError(c, err, "Could not update order")
	}
	return c.JSON(order)
}

// HandleDeleteOrder deletes an order and returns its piece stock.
func (h *OrderHandler) HandleDeleteOrder(c *fiber.Ctx) error {
	if err := h.service.DeleteOrder(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err, "Could not delete order")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleAddItem appends one item to an existing order.
func (h *OrderHandler) HandleAddItem(c *fiber.Ctx) error {
	var req services.ItemRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}

	order, err := h.service.AddItem(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return respondError(c, err, "Could not add order item")
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleRemoveItem removes one item from an order.
func (h *OrderHandler) HandleRemoveItem(c *fiber.Ctx) error {
	order, err := h.service.RemoveItem(c.UserContext(), c.Params("id"), c.Params("itemId"))
	if err != nil {
		return respondError(c, err, "Could not remove order item")
	}
	return c.JSON(order)
}

// HandleTogglePayment flips an order between unpaid and paid.
func (h *OrderHandler) HandleTogglePayment(c *fiber.Ctx) error {
	order, err := h.service.TogglePaymentStatus(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Could not change payment status")
	}
	return c.JSON(order)
}
