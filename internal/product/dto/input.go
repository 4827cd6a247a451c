package dto

import "github.com/shopspring/decimal"

type CreateProductInput struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Cost          decimal.Decimal `json:"cost"`
	CategoryID    string          `json:"category_id"`
	SubcategoryID string          `json:"subcategory_id"`
	AttributeIDs  []string        `json:"attribute_ids"`
	CoverImage    string          `json:"cover_image"`
	HoverImage    string          `json:"hover_image"`
	ProductImages []string        `json:"product_images"`
	IsFeatured    bool            `json:"is_featured"`
	IsNew         bool            `json:"is_new"`
}

// UpdateProductInput patches the non-nil fields. Stock and attribute ids are
// owned by the reconcile flow and cannot be patched here.
type UpdateProductInput struct {
	ID            string           `json:"-"`
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	Price         *decimal.Decimal `json:"price"`
	Cost          *decimal.Decimal `json:"cost"`
	CategoryID    *string          `json:"category_id"`
	SubcategoryID *string          `json:"subcategory_id"`
	CoverImage    *string          `json:"cover_image"`
	HoverImage    *string          `json:"hover_image"`
	ProductImages []string         `json:"product_images"`
	IsActive      *bool            `json:"is_active"`
	IsFeatured    *bool            `json:"is_featured"`
	IsNew         *bool            `json:"is_new"`
}
