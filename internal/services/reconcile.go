package services

import (
	"context"
	"errors"
	"fmt"

	"inventory/internal/models"
	"inventory/internal/repositories"

	"github.com/shopspring/decimal"
)

// subtotal returns price × quantity.
func subtotal(price, quantity float64) float64 {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromFloat(quantity)).InexactFloat64()
}

// sumSubtotals is the order total for the given items.
func sumSubtotals(items []models.OrderItem) float64 {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(decimal.NewFromFloat(item.Subtotal))
	}
	return total.InexactFloat64()
}

func nextLine(items []models.OrderItem) int {
	line := 0
	for _, item := range items {
		if item.Line > line {
			line = item.Line
		}
	}
	return line + 1
}

// resolveUnit applies the default unit and checks it against the closed set.
func resolveUnit(req ItemRequest) (models.Unit, error) {
	if req.Unit == nil || *req.Unit == "" {
		return models.UnitPiece, nil
	}
	unit := models.Unit(*req.Unit)
	if !unit.Valid() {
		return "", repositories.Invalid("order item", req.ProductID,
			fmt.Sprintf("unit %q must be %q or %q", unit, models.UnitPiece, models.UnitWeight))
	}
	return unit, nil
}

// takeLine validates one requested line against its product, draws stock for
// piece units and returns the item with the product snapshot filled in.
// It must run inside a unit of work.
func takeLine(ctx context.Context, products repositories.ProductRepository, req ItemRequest, line int) (models.OrderItem, error) {
	if req.Quantity <= 0 {
		return models.OrderItem{}, repositories.Invalid("order item", req.ProductID, "quantity must be positive")
	}
	product, err := products.GetForUpdate(ctx, req.ProductID)
	if err != nil {
		return models.OrderItem{}, err
	}
	unit, err := resolveUnit(req)
	if err != nil {
		return models.OrderItem{}, err
	}
	price := product.Price
	if req.UnitPrice != nil {
		price = *req.UnitPrice
	}
	if price < 0 {
		return models.OrderItem{}, repositories.Invalid("order item", req.ProductID, "unit price cannot be negative")
	}

	if unit.CountsStock() {
		if err := products.DecrementStock(ctx, product.ID, req.Quantity); err != nil {
			return models.OrderItem{}, err
		}
	}

	return models.OrderItem{
		Line:        line,
		ProductID:   product.ID,
		ProductName: product.Name,
		UnitPrice:   price,
		Quantity:    req.Quantity,
		Unit:        unit,
		Subtotal:    subtotal(price, req.Quantity),
	}, nil
}

// takeLines runs takeLine over a whole request, numbering lines from first.
func takeLines(ctx context.Context, products repositories.ProductRepository, reqs []ItemRequest, first int) ([]models.OrderItem, error) {
	items := make([]models.OrderItem, 0, len(reqs))
	for i, req := range reqs {
		item, err := takeLine(ctx, products, req, first+i)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// returnLine gives a piece item's quantity back to its product.
// A product that no longer exists is skipped.
func returnLine(ctx context.Context, products repositories.ProductRepository, item models.OrderItem) error {
	if !item.Unit.CountsStock() {
		return nil
	}
	err := products.IncrementStock(ctx, item.ProductID, item.Quantity)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil
	}
	return err
}

func fillSnapshot(order *models.Order, customer *models.Customer) {
	order.CustomerID = &customer.ID
	if order.CustomerName == "" {
		order.CustomerName = customer.Name
	}
	if order.CustomerPhone == "" {
		order.CustomerPhone = customer.Phone
	}
	if order.CustomerAddress == "" {
		order.CustomerAddress = customer.Address
	}
}

// attachCustomer sets the order's customer for a new order. Without a
// customer id a walk-in customer is created from the inline fields.
func attachCustomer(ctx context.Context, customers repositories.CustomerRepository, order *models.Order, req OrderRequest) error {
	order.CustomerName = req.CustomerName
	order.CustomerPhone = req.CustomerPhone
	order.CustomerAddress = req.CustomerAddress

	if req.CustomerID != nil && *req.CustomerID != "" {
		customer, err := customers.GetByID(ctx, *req.CustomerID)
		if err != nil {
			return err
		}
		fillSnapshot(order, customer)
		return nil
	}

	walkIn := &models.Customer{
		Name:    req.CustomerName,
		Phone:   req.CustomerPhone,
		Address: req.CustomerAddress,
	}
	if walkIn.Name == "" {
		walkIn.Name = models.WalkInCustomerName
	}
	if walkIn.Phone == "" {
		walkIn.Phone = models.Sentinel
	}
	if err := customers.Create(ctx, walkIn); err != nil {
		return err
	}
	fillSnapshot(order, walkIn)
	return nil
}

// reattachCustomer overwrites the customer of an existing order. Unlike
// attachCustomer it never creates a customer.
func reattachCustomer(ctx context.Context, customers repositories.CustomerRepository, order *models.Order, req OrderRequest) error {
	order.CustomerID = nil
	order.CustomerName = req.CustomerName
	order.CustomerPhone = req.CustomerPhone
	order.CustomerAddress = req.CustomerAddress

	if req.CustomerID == nil || *req.CustomerID == "" {
		return nil
	}
	customer, err := customers.GetByID(ctx, *req.CustomerID)
	if err != nil {
		return err
	}
	fillSnapshot(order, customer)
	return nil
}

func productIDs(groups ...[]models.OrderItem) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, items := range groups {
		for _, item := range items {
			if !seen[item.ProductID] {
				seen[item.ProductID] = true
				ids = append(ids, item.ProductID)
			}
		}
	}
	return ids
}
