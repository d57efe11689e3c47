package handlers

import (
	"inventory/internal/models"
	"inventory/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CustomerHandler handles HTTP requests for customers.
type CustomerHandler struct {
	service  *services.CustomerService
	validate *validator.Validate
}

func NewCustomerHandler(service *services.CustomerService) *CustomerHandler {
	return &CustomerHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *CustomerHandler) RegisterRoutes(router fiber.Router) {
	customerRoutes := router.Group("/customers")
	customerRoutes.Get("/", h.HandleGetCustomers)
	customerRoutes.Get("/:id", h.HandleGetCustomerByID)
	customerRoutes.Post("/", h.HandleCreateCustomer)
	customerRoutes.Put("/:id", h.HandleUpdateCustomer)
	customerRoutes.Delete("/:id", h.HandleDeleteCustomer)
}

// CustomerRequest is the body of a customer creation.
type CustomerRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Phone   string `json:"phone" validate:"max=50"`
	Address string `json:"address" validate:"max=300"`
}

func (h *CustomerHandler) HandleGetCustomers(c *fiber.Ctx) error {
	customers, err := h.service.GetAllCustomers(c.UserContext())
	if err != nil {
		return respondError(c, err, "Could not retrieve customers")
	}
	return c.JSON(customers)
}

func (h *CustomerHandler) HandleGetCustomerByID(c *fiber.Ctx) error {
	customer, err := h.service.GetCustomerByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Could not retrieve customer")
	}
	return c.JSON(customer)
}

func (h *CustomerHandler) HandleCreateCustomer(c *fiber.Ctx) error {
	var req CustomerRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}

	customer := models.Customer{Name: req.Name, Phone: req.Phone, Address: req.Address}
	if err := h.service.CreateCustomer(c.UserContext(), &customer); err != nil {
		return respondError(c, err, "Could not create customer")
	}
	return c.Status(fiber.StatusCreated).JSON(customer)
}

func (h *CustomerHandler) HandleUpdateCustomer(c *fiber.Ctx) error {
	var patch services.CustomerPatch
	if ok, err := bind(c, h.validate, &patch); !ok {
		return err
	}

	customer, err := h.service.UpdateCustomer(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return respondError(c, err, "Could not update customer")
	}
	return c.JSON(customer)
}

// HandleDeleteCustomer removes a customer. Existing orders keep their snapshot.
func (h *CustomerHandler) HandleDeleteCustomer(c *fiber.Ctx) error {
	if err := h.service.DeleteCustomer(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err, "Could not delete customer")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
