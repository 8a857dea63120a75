// Package catalog crawls the remote category service and flattens it into a
// searchable, deduplicated product index with category lineage.
package catalog

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Category is one node of the remote category tree. The tree is three levels
// deep: category, subcategory, and the leaf subcategory holding products.
type Category struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	ParentID *int   `json:"parent_id,omitempty"`
}

// Lineage is the full three-level category path a product was found under.
type Lineage struct {
	Category    Category `json:"category"`
	Subcategory Category `json:"subcategory"`
	Leaf        Category `json:"leaf"`
}

// Product is one catalog entry. ID is the identity key; the same product
// reachable through several category paths is kept once.
type Product struct {
	ID              int     `json:"id"`
	DisplayName     string  `json:"display_name"`
	Packaging       string  `json:"packaging,omitempty"`
	UnitPrice       float64 `json:"unit_price"`
	BulkPrice       string  `json:"bulk_price,omitempty"`
	ReferencePrice  string  `json:"reference_price,omitempty"`
	ReferenceFormat string  `json:"reference_format,omitempty"`
	Lineage         Lineage `json:"lineage"`
}

// wireCategory mirrors the remote service's category payload. Every field is
// optional on the wire; absent keys mean absent, never an error.
type wireCategory struct {
	ID         int            `json:"id"`
	Name       string         `json:"name"`
	Categories []wireCategory `json:"categories"`
	Products   []wireProduct  `json:"products"`
}

// wireCategoryList is the shape of the top-level categories response.
type wireCategoryList struct {
	Results []wireCategory `json:"results"`
}

// wireProduct mirrors the remote service's product payload.
type wireProduct struct {
	ID           int               `json:"id"`
	DisplayName  string            `json:"display_name"`
	Packaging    string            `json:"packaging"`
	Instructions priceInstructions `json:"price_instructions"`
}

type priceInstructions struct {
	UnitPrice       flexPrice `json:"unit_price"`
	BulkPrice       string    `json:"bulk_price"`
	ReferencePrice  string    `json:"reference_price"`
	ReferenceFormat string    `json:"reference_format"`
}

// flexPrice tolerates prices sent either as JSON numbers or as strings
// ("0.89"), which the remote service mixes freely.
type flexPrice float64

func (p *flexPrice) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*p = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// A malformed price degrades to zero instead of failing the branch.
		*p = 0
		return nil
	}
	*p = flexPrice(v)
	return nil
}

var _ json.Unmarshaler = (*flexPrice)(nil)
