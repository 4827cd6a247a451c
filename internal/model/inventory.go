package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// VariantInventory is the stock ledger row for one (product, attribute) pair.
type VariantInventory struct {
	ID               string      `db:"id" json:"id"`
	ProductID        string      `db:"product_id" json:"product_id"`
	VariantData      VariantData `db:"variant_data" json:"variant_data"`
	Quantity         int         `db:"quantity" json:"quantity"`
	ReservedQuantity int         `db:"reserved_quantity" json:"reserved_quantity"`
	IsActive         bool        `db:"is_active" json:"is_active"`
	CreatedAt        time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time   `db:"updated_at" json:"updated_at"`
}

func (v *VariantInventory) Available() int {
	if v.Quantity < v.ReservedQuantity {
		return 0
	}
	return v.Quantity - v.ReservedQuantity
}

// VariantData is the soft reference from a ledger row to its attribute.
// AttributeID is authoritative. Name, value and type are a display cache and
// are never used for matching. Legacy holds rows written before attribute ids
// were stored, shaped as {"<attribute name>": "<attribute value>"}.
type VariantData struct {
	AttributeID    string
	AttributeName  string
	AttributeValue string
	AttributeType  string
	Legacy         map[string]string
}

const (
	keyAttributeID    = "attribute_id"
	keyAttributeName  = "attribute_name"
	keyAttributeValue = "attribute_value"
	keyAttributeType  = "attribute_type"
)

func NewVariantData(attr *Attribute) VariantData {
	return VariantData{
		AttributeID:    attr.ID,
		AttributeName:  attr.Name,
		AttributeValue: attr.Value,
		AttributeType:  string(attr.Type),
	}
}

// MatchesID is the primary matching rule.
func (d VariantData) MatchesID(attributeID string) bool {
	return attributeID != "" && d.AttributeID == attributeID
}

// MatchesNameValue is the legacy fallback: a key equal to the attribute name
// holding the attribute value.
func (d VariantData) MatchesNameValue(name, value string) bool {
	if name == "" {
		return false
	}
	v, ok := d.Legacy[name]
	return ok && v == value
}

func (d VariantData) MarshalJSON() ([]byte, error) {
	m := make(map[string]string, len(d.Legacy)+4)
	for k, v := range d.Legacy {
		m[k] = v
	}
	set := func(k, v string) {
		if v != "" {
			m[k] = v
		}
	}
	set(keyAttributeID, d.AttributeID)
	set(keyAttributeName, d.AttributeName)
	set(keyAttributeValue, d.AttributeValue)
	set(keyAttributeType, d.AttributeType)
	return json.Marshal(m)
}

func (d *VariantData) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*d = VariantData{}
	for k, v := range raw {
		s, ok := v.(string)
		if !ok {
			continue
		}
		switch k {
		case keyAttributeID:
			d.AttributeID = s
		case keyAttributeName:
			d.AttributeName = s
		case keyAttributeValue:
			d.AttributeValue = s
		case keyAttributeType:
			d.AttributeType = s
		default:
			if d.Legacy == nil {
				d.Legacy = make(map[string]string)
			}
			d.Legacy[k] = s
		}
	}
	return nil
}

// Value stores VariantData as jsonb text; lib/pq would send []byte as bytea.
func (d VariantData) Value() (driver.Value, error) {
	b, err := d.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (d *VariantData) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = VariantData{}
		return nil
	case []byte:
		return d.UnmarshalJSON(v)
	case string:
		return d.UnmarshalJSON([]byte(v))
	default:
		return errors.New("variant_data: unsupported scan type")
	}
}
