package domain

import "testing"

// TestComputeNaturalKey verifies GTIN keys and the title+brand fallback
func TestComputeNaturalKey(t *testing.T) {
	testCases := []struct {
		name        string
		gtin        string
		itemGroupID string
		title       string
		brand       string
		want        string
	}{
		{
			name:        "gtin with group",
			gtin:        "1234567890123",
			itemGroupID: "wallets",
			title:       "Leather Wallet",
			brand:       "Acme",
			want:        "1234567890123" + NaturalKeySeparator + "wallets",
		},
		{
			name:  "gtin without group",
			gtin:  "1234567890123",
			title: "Leather Wallet",
			brand: "Acme",
			want:  "1234567890123" + NaturalKeySeparator,
		},
		{
			name:        "fallback to title and brand",
			itemGroupID: "wallets",
			title:       "Leather Wallet",
			brand:       "Acme",
			want:        "Leather Wallet" + NaturalKeySeparator + "Acme",
		},
		{
			name:  "whitespace trimmed",
			gtin:  "  1234567890123  ",
			title: "x",
			brand: "y",
			want:  "1234567890123" + NaturalKeySeparator,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeNaturalKey(tc.gtin, tc.itemGroupID, tc.title, tc.brand)
			if got != tc.want {
				t.Errorf("ComputeNaturalKey: got %q, want %q", got, tc.want)
			}
		})
	}
}

// TestFingerprintDistinguishesValues verifies identical values produce equal
// fingerprints and any value change produces a different one
func TestFingerprintDistinguishesValues(t *testing.T) {
	sale := 99.0
	base := Product{
		Title:        "Leather Wallet",
		Brand:        "Acme",
		Availability: "in stock",
		Condition:    "new",
		Gender:       GenderMale,
		Price:        120.0,
		SalePrice:    &sale,
		Quantity:     4,
	}

	same := base
	if base.Fingerprint() != same.Fingerprint() {
		t.Error("Identical products should share a fingerprint")
	}

	mutations := map[string]func(*Product){
		"title":        func(p *Product) { p.Title = "Canvas Tote" },
		"brand":        func(p *Product) { p.Brand = "Other" },
		"availability": func(p *Product) { p.Availability = "out of stock" },
		"condition":    func(p *Product) { p.Condition = "used" },
		"gender":       func(p *Product) { p.Gender = GenderFemale },
		"price":        func(p *Product) { p.Price = 121.0 },
		"sale price":   func(p *Product) { p.SalePrice = nil },
		"quantity":     func(p *Product) { p.Quantity = 5 },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			changed := base
			mutate(&changed)
			if changed.Fingerprint() == base.Fingerprint() {
				t.Errorf("Changing %s should change the fingerprint", name)
			}
		})
	}
}

// TestFingerprintIgnoresDescriptiveFields verifies descriptive fields do not
// affect duplicate detection
func TestFingerprintIgnoresDescriptiveFields(t *testing.T) {
	base := Product{Title: "x", Brand: "y", Availability: "in stock", Condition: "new", Gender: GenderUnisex, Price: 1, Quantity: 1}
	changed := base
	changed.Description = "new description"
	changed.ImageLink = "https://example.com/other.jpg"
	changed.Color = "red"

	if base.Fingerprint() != changed.Fingerprint() {
		t.Error("Descriptive fields should not affect the fingerprint")
	}
}

// TestSummaryAccounting verifies Total and Failed
func TestSummaryAccounting(t *testing.T) {
	s := IngestionSummary{Inserted: 3, Duplicate: 2, Conflicting: 1, Malformed: 4}
	if s.Total() != 10 {
		t.Errorf("Total: got %d, want 10", s.Total())
	}
	if s.Failed() {
		t.Error("Summary without failure reason is not failed")
	}

	s.FailureReason = "boom"
	if !s.Failed() {
		t.Error("Summary with failure reason is failed")
	}
}
