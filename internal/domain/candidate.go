package domain

// CandidateRecord is one parsed feed item before validation. All values are
// carried as the raw strings found in the feed; type checks happen during
// reconciliation, not parsing. Position is 1-based and points at the item's
// order within the uploaded file for error reporting.
type CandidateRecord struct {
	Position int

	FeedID                string
	Title                 string
	ProductType           string
	Link                  string
	Description           string
	ImageLink             string
	Price                 string
	SalePrice             string
	FinalPrice            string
	Availability          string
	GoogleProductCategory string
	Brand                 string
	GTIN                  string
	ItemGroupID           string
	Condition             string
	AgeGroup              string
	Color                 string
	Gender                string
	Quantity              string
	CustomLabels          [5]string
}

// NaturalKey derives the deduplication key from the raw record fields.
func (r *CandidateRecord) NaturalKey() string {
	return ComputeNaturalKey(r.GTIN, r.ItemGroupID, r.Title, r.Brand)
}
