package dto

type CreateVariantInput struct {
	ProductID        string `json:"product_id"`
	AttributeID      string `json:"attribute_id"`
	Quantity         int    `json:"quantity"`
	ReservedQuantity int    `json:"reserved_quantity"`
	IsActive         *bool  `json:"is_active"`
}

type UpdateVariantInput struct {
	ID               string `json:"-"`
	Quantity         *int   `json:"quantity"`
	ReservedQuantity *int   `json:"reserved_quantity"`
	IsActive         *bool  `json:"is_active"`
}

// StockUpdate sets the absolute quantity of one attribute of a product.
type StockUpdate struct {
	AttributeID string `json:"attribute_id"`
	Quantity    int    `json:"quantity"`
}
