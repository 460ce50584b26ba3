package model

import (
	"encoding/json"
	"fmt"
)

// Category is the admin-facing product category. The set is fixed; the
// catalog pages each browse exactly one of them.
type Category string

const (
	CategoryIFPD          Category = "IFPD"
	CategoryPrinters3D    Category = "3D Printers"
	CategoryStemRobotics  Category = "STEM & Robotics"
	CategoryCamera        Category = "Camera"
	CategoryDigitalBoards Category = "Digital Boards"
	CategoryLight         Category = "Light"
	CategoryMic           Category = "Mic"
	CategoryOPS           Category = "OPS"
	CategorySpeaker       Category = "Speaker"
	CategoryStand         Category = "Stand"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryIFPD,
	CategoryPrinters3D,
	CategoryStemRobotics,
	CategoryCamera,
	CategoryDigitalBoards,
	CategoryLight,
	CategoryMic,
	CategoryOPS,
	CategorySpeaker,
	CategoryStand,
}

// Validate implements the enum contract used by pkg/validator.
func (c Category) Validate() error {
	for _, known := range Categories {
		if c == known {
			return nil
		}
	}
	return fmt.Errorf("unknown category: %q", c)
}

// AdditionalImageSlots is the fixed number of secondary image slots a
// product carries. Slots may hold the empty string.
const AdditionalImageSlots = 3

// Product is the catalog item record. ID is assigned by the remote product
// service; a draft has an empty ID.
type Product struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Price            float64  `json:"price"`
	Description      string   `json:"description"`
	Category         Category `json:"category"`
	Image            string   `json:"image"`
	AdditionalImages []string `json:"additionalImages"`
	Rating           float64  `json:"rating"`
	Quantity         int      `json:"quantity"`
	Discount         float64  `json:"discount"`
	Stocks           int      `json:"stocks"`
	Features         []string `json:"features"`
}

// NewProduct returns a field-complete product with typed defaults: every
// field present, three empty additional image slots, no features.
func NewProduct() Product {
	return Product{
		AdditionalImages: make([]string, AdditionalImageSlots),
		Features:         []string{},
	}
}

var knownFields = map[string]struct{}{
	"id":               {},
	"name":             {},
	"price":            {},
	"description":      {},
	"category":         {},
	"image":            {},
	"additionalImages": {},
	"rating":           {},
	"quantity":         {},
	"discount":         {},
	"stocks":           {},
	"features":         {},
}

// FromPartial overlays the fields present in raw over a field-complete
// default template, so absent fields never surface as zero-value surprises
// downstream. Unknown fields are rejected rather than silently dropped.
func FromPartial(raw json.RawMessage) (Product, error) {
	return OverlayPartial(NewProduct(), raw)
}

// OverlayPartial overlays the fields present in raw over base. Only fields
// named in raw are touched; unknown field names are an error.
func OverlayPartial(base Product, raw json.RawMessage) (Product, error) {
	if len(raw) == 0 {
		return base.Normalized(), nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Product{}, fmt.Errorf("unmarshal partial product: %w", err)
	}

	for name := range fields {
		if _, ok := knownFields[name]; !ok {
			return Product{}, fmt.Errorf("unknown product field: %q", name)
		}
	}

	if err := json.Unmarshal(raw, &base); err != nil {
		return Product{}, fmt.Errorf("overlay partial product: %w", err)
	}

	return base.Normalized(), nil
}

// Normalized returns a copy with the record-shape invariants restored:
// exactly three additional image slots (padded or truncated) and features
// with empty strings and exact duplicates dropped.
func (p Product) Normalized() Product {
	images := make([]string, AdditionalImageSlots)
	copy(images, p.AdditionalImages)
	p.AdditionalImages = images

	features := make([]string, 0, len(p.Features))
	seen := make(map[string]struct{}, len(p.Features))
	for _, f := range p.Features {
		if f == "" {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		features = append(features, f)
	}
	p.Features = features

	return p
}

// AddFeature appends f unless it is empty or an exact duplicate of an
// existing feature.
func (p *Product) AddFeature(f string) {
	if f == "" {
		return
	}
	for _, existing := range p.Features {
		if existing == f {
			return
		}
	}
	p.Features = append(p.Features, f)
}

// IsDraft reports whether the product has not been persisted remotely yet.
func (p Product) IsDraft() bool {
	return p.ID == ""
}

// Equal compares two products by full content.
func (p Product) Equal(other Product) bool {
	a, err := json.Marshal(p.Normalized())
	if err != nil {
		return false
	}
	b, err := json.Marshal(other.Normalized())
	if err != nil {
		return false
	}
	return string(a) == string(b)
}

// SameContent reports whether two product sets hold the same records in the
// same order, compared by full content rather than reference.
func SameContent(a, b []Product) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
