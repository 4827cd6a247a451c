package dto

type ProductFilters struct {
	CategoryID    string `json:"category_id,omitempty"`
	SubcategoryID string `json:"subcategory_id,omitempty"`
	IsActive      *bool  `json:"is_active,omitempty"`
	SearchQuery   string `json:"q,omitempty"`
	SortBy        string `json:"sort_by,omitempty"` // name, price, stock, created_at
	SortOrder     string `json:"sort_order,omitempty"`
	Page          int    `json:"page,omitempty"`
	PageSize      int    `json:"page_size,omitempty"`
}
