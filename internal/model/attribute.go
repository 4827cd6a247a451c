package model

import "strings"

type AttributeType string

const (
	AttributeTypeColor    AttributeType = "color"
	AttributeTypeAroma    AttributeType = "aroma"
	AttributeTypeSize     AttributeType = "size"
	AttributeTypeMaterial AttributeType = "material"
	AttributeTypeStyle    AttributeType = "style"
	AttributeTypeVariant  AttributeType = "variant"
)

func (t AttributeType) Valid() bool {
	switch t {
	case AttributeTypeColor, AttributeTypeAroma, AttributeTypeSize,
		AttributeTypeMaterial, AttributeTypeStyle, AttributeTypeVariant:
		return true
	}
	return false
}

// Attribute is one selectable option value (Color=Rojo) within a subcategory.
type Attribute struct {
	BaseModel
	SubcategoryID string        `db:"subcategory_id" json:"subcategory_id"`
	Name          string        `db:"name" json:"name"`
	Type          AttributeType `db:"type" json:"type"`
	Value         string        `db:"value" json:"value"`
	Description   *string       `db:"description" json:"description,omitempty"`
	ColorHex      *string       `db:"color_hex" json:"color_hex,omitempty"`
	SortOrder     int           `db:"sort_order" json:"sort_order"`
	IsActive      bool          `db:"is_active" json:"is_active"`
}

// SameOption reports whether a collides with the given option on the catalog key
// (subcategory, lower(name), lower(value)).
func (a *Attribute) SameOption(subcategoryID, name, value string) bool {
	return a.SubcategoryID == subcategoryID &&
		strings.EqualFold(a.Name, name) &&
		strings.EqualFold(a.Value, value)
}
