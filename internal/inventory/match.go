package inventory

import "github.com/fekuna/storefront-inventory-service/internal/model"

// Match returns the rows that belong to attr, keeping the input order. Rows
// carrying attr's id win; rows keyed by the legacy name/value pair are returned
// only when no row carries the id. Within the winning set active rows come
// back alone; inactive rows are returned only when nothing active matches.
func Match(rows []model.VariantInventory, attr *model.Attribute) []model.VariantInventory {
	var byID, byName []model.VariantInventory
	for _, row := range rows {
		switch {
		case row.VariantData.MatchesID(attr.ID):
			byID = append(byID, row)
		case row.VariantData.AttributeID == "" && row.VariantData.MatchesNameValue(attr.Name, attr.Value):
			byName = append(byName, row)
		}
	}
	if len(byID) > 0 {
		return preferActive(byID)
	}
	return preferActive(byName)
}

func preferActive(rows []model.VariantInventory) []model.VariantInventory {
	var active []model.VariantInventory
	for _, row := range rows {
		if row.IsActive {
			active = append(active, row)
		}
	}
	if len(active) > 0 {
		return active
	}
	return rows
}
