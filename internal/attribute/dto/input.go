package dto

import "github.com/fekuna/storefront-inventory-service/internal/model"

type CreateAttributeInput struct {
	SubcategoryID string              `json:"subcategory_id"`
	Name          string              `json:"name"`
	Type          model.AttributeType `json:"type"`
	Value         string              `json:"value"`
	Description   string              `json:"description"`
	ColorHex      string              `json:"color_hex"`
	SortOrder     int                 `json:"sort_order"`
	IsActive      *bool               `json:"is_active"`
}

// UpdateAttributeInput patches only the non-nil fields. An empty Description or
// ColorHex clears the stored value.
type UpdateAttributeInput struct {
	ID            string               `json:"-"`
	SubcategoryID *string              `json:"subcategory_id"`
	Name          *string              `json:"name"`
	Type          *model.AttributeType `json:"type"`
	Value         *string              `json:"value"`
	Description   *string              `json:"description"`
	ColorHex      *string              `json:"color_hex"`
	SortOrder     *int                 `json:"sort_order"`
	IsActive      *bool                `json:"is_active"`
}
