package services

// ItemRequest is one line of an order request. Unit and UnitPrice are
// optional: an absent unit means "piece" and an absent price means the
// product's current price.
type ItemRequest struct {
	ProductID string   `json:"product_id" validate:"required"`
	Quantity  float64  `json:"quantity" validate:"gt=0"`
	Unit      *string  `json:"unit,omitempty"`
	UnitPrice *float64 `json:"unit_price,omitempty"`
}

// OrderRequest is the payload for creating or replacing an order.
type OrderRequest struct {
	CustomerID      *string       `json:"customer_id,omitempty"`
	CustomerName    string        `json:"customer_name" validate:"max=200"`
	CustomerPhone   string        `json:"customer_phone" validate:"max=50"`
	CustomerAddress string        `json:"customer_address" validate:"max=300"`
	Items           []ItemRequest `json:"items" validate:"dive"`
}

// ProductPatch carries the fields of a partial product update.
type ProductPatch struct {
	Name           *string  `json:"name" validate:"omitempty,min=1,max=200"`
	SKU            *string  `json:"sku" validate:"omitempty,max=100"`
	Price          *float64 `json:"price" validate:"omitempty,gte=0"`
	Stock          *float64 `json:"stock" validate:"omitempty,gte=0"`
	Description    *string  `json:"description" validate:"omitempty,max=500"`
	OriginalWeight *string  `json:"original_weight" validate:"omitempty,max=50"`
}

// CustomerPatch carries the fields of a partial customer update.
type CustomerPatch struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=200"`
	Phone   *string `json:"phone" validate:"omitempty,max=50"`
	Address *string `json:"address" validate:"omitempty,max=300"`
}
