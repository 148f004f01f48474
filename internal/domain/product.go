package domain

import (
	"strconv"
	"strings"
	"time"
)

// Gender values accepted for a product. The feed occasionally carries other
// strings; those records are rejected during reconciliation.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderUnisex = "unisex"
)

// NaturalKeySeparator joins the components of a natural key. Unit separator
// is used because it cannot appear in feed field values.
const NaturalKeySeparator = "\x1f"

// Product represents a persisted catalog product.
// Products are only ever created by a successful ingestion run; this pipeline
// never updates or deletes them. The natural key is unique across the table
// and the database constraint is the final arbiter when concurrent uploads
// race on the same key.
type Product struct {
	ID                    string    `gorm:"type:text;primaryKey" json:"id"`
	FeedID                string    `gorm:"type:text;not null;index:idx_products_feed_id" json:"feed_id"`
	NaturalKey            string    `gorm:"type:text;not null;uniqueIndex:idx_products_natural_key" json:"-"`
	Title                 string    `gorm:"type:text;not null" json:"title"`
	ProductType           string    `gorm:"type:text" json:"product_type"`
	Link                  string    `gorm:"type:text" json:"link"`
	Description           string    `gorm:"type:text" json:"description"`
	ImageLink             string    `gorm:"type:text" json:"image_link"`
	Price                 float64   `gorm:"not null" json:"price"`
	SalePrice             *float64  `json:"sale_price,omitempty"`
	FinalPrice            *float64  `json:"final_price,omitempty"`
	Availability          string    `gorm:"type:text;not null" json:"availability"`
	GoogleProductCategory string    `gorm:"type:text" json:"google_product_category"`
	Brand                 string    `gorm:"type:text;not null;index:idx_products_brand" json:"brand"`
	GTIN                  string    `gorm:"type:text" json:"gtin"`
	ItemGroupID           string    `gorm:"type:text" json:"item_group_id"`
	Condition             string    `gorm:"type:text;index:idx_products_condition" json:"condition"`
	AgeGroup              string    `gorm:"type:text" json:"age_group"`
	Color                 string    `gorm:"type:text" json:"color"`
	Gender                string    `gorm:"type:text;index:idx_products_gender" json:"gender"`
	Quantity              int       `gorm:"not null" json:"quantity"`
	CustomLabel0          string    `gorm:"type:text" json:"custom_label_0"`
	CustomLabel1          string    `gorm:"type:text" json:"custom_label_1"`
	CustomLabel2          string    `gorm:"type:text" json:"custom_label_2"`
	CustomLabel3          string    `gorm:"type:text" json:"custom_label_3"`
	CustomLabel4          string    `gorm:"type:text" json:"custom_label_4"`
	CreatedAt             time.Time `json:"created_at"`
}

// TableName returns the database table name for Product.
func (Product) TableName() string {
	return "products"
}

// Fingerprint summarises the value-bearing fields of a product so that a
// re-uploaded record can be told apart from a conflicting one without
// comparing column by column.
type Fingerprint string

// ComputeNaturalKey builds the deduplication key for a product. GTIN plus
// item group id identifies a product across uploads; records without a GTIN
// fall back to title plus brand.
func ComputeNaturalKey(gtin, itemGroupID, title, brand string) string {
	gtin = strings.TrimSpace(gtin)
	if gtin != "" {
		return gtin + NaturalKeySeparator + strings.TrimSpace(itemGroupID)
	}
	return strings.TrimSpace(title) + NaturalKeySeparator + strings.TrimSpace(brand)
}

// Fingerprint computes the canonical value fingerprint of the product.
func (p *Product) Fingerprint() Fingerprint {
	return ComputeFingerprint(
		p.Title, p.Brand, p.Availability, p.Condition, p.Gender,
		p.Price, p.SalePrice, p.Quantity,
	)
}

// ComputeFingerprint canonicalises the fields that decide whether two records
// with the same natural key are identical or conflicting.
func ComputeFingerprint(title, brand, availability, condition, gender string, price float64, salePrice *float64, quantity int) Fingerprint {
	sale := ""
	if salePrice != nil {
		sale = strconv.FormatFloat(*salePrice, 'f', -1, 64)
	}
	parts := []string{
		strings.TrimSpace(title),
		strings.TrimSpace(brand),
		strings.TrimSpace(availability),
		strings.TrimSpace(condition),
		strings.TrimSpace(gender),
		strconv.FormatFloat(price, 'f', -1, 64),
		sale,
		strconv.Itoa(quantity),
	}
	return Fingerprint(strings.Join(parts, NaturalKeySeparator))
}
