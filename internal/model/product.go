package model

import (
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type Product struct {
	BaseModel
	Name          string          `db:"name" json:"name"`
	Description   *string         `db:"description" json:"description,omitempty"`
	Price         decimal.Decimal `db:"price" json:"price"`
	Cost          decimal.Decimal `db:"cost" json:"cost"`
	Stock         int             `db:"stock" json:"stock"` // Aggregate, derived from the variant ledger
	AttributeIDs  pq.StringArray  `db:"attribute_ids" json:"attribute_ids"`
	CategoryID    *string         `db:"category_id" json:"category_id,omitempty"`
	SubcategoryID *string         `db:"subcategory_id" json:"subcategory_id,omitempty"`
	CoverImage    *string         `db:"cover_image" json:"cover_image,omitempty"`
	HoverImage    *string         `db:"hover_image" json:"hover_image,omitempty"`
	ProductImages pq.StringArray  `db:"product_images" json:"product_images"`
	IsActive      bool            `db:"is_active" json:"is_active"`
	IsFeatured    bool            `db:"is_featured" json:"is_featured"`
	IsNew         bool            `db:"is_new" json:"is_new"`
}

func (p *Product) HasAttribute(attributeID string) bool {
	for _, id := range p.AttributeIDs {
		if id == attributeID {
			return true
		}
	}
	return false
}
