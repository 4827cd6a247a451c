package dto

type AttributeFilters struct {
	SubcategoryID string
	Type          string
	IsActive      *bool
}
