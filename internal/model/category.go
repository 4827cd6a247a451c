package model

type Category struct {
	BaseModel
	Name        string  `db:"name" json:"name"`
	Description *string `db:"description" json:"description,omitempty"`
	ImageURL    *string `db:"image_url" json:"image_url,omitempty"`
	SortOrder   int     `db:"sort_order" json:"sort_order"`
	IsActive    bool    `db:"is_active" json:"is_active"`

	// Subcategories is filled for tree listings only.
	Subcategories []Subcategory `db:"-" json:"subcategories,omitempty"`
}

// Subcategory scopes the attribute catalog.
type Subcategory struct {
	BaseModel
	CategoryID  string  `db:"category_id" json:"category_id"`
	Name        string  `db:"name" json:"name"`
	Description *string `db:"description" json:"description,omitempty"`
	SortOrder   int     `db:"sort_order" json:"sort_order"`
	IsActive    bool    `db:"is_active" json:"is_active"`
}
