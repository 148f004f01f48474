package feed

import (
	"errors"
	"strings"
	"testing"
)

const sampleFeed = `<?xml version="1.0" encoding="utf-8"?>
<rss xmlns:g="http://base.google.com/ns/1.0" version="2.0">
<channel>
<title>Example Store</title>
<item>
<g:id>SKU-001</g:id>
<title> Leather Wallet </title>
<g:brand>Acme</g:brand>
<g:price>120.00 AED</g:price>
<g:sale_price>99.00 AED</g:sale_price>
<g:availability>in stock</g:availability>
<g:condition>new</g:condition>
<g:gender>male</g:gender>
<g:quantity>4</g:quantity>
<g:gtin>1234567890123</g:gtin>
<g:item_group_id>wallets</g:item_group_id>
<g:custom_label_0>summer</g:custom_label_0>
</item>
<item>
<g:id>SKU-002</g:id>
<title>Canvas Tote</title>
<g:brand>Acme</g:brand>
<g:price>80.00 AED</g:price>
<g:availability>out of stock</g:availability>
<g:condition>used</g:condition>
<g:gender>female</g:gender>
<g:quantity>0</g:quantity>
</item>
</channel>
</rss>`

// TestParseExtractsFields verifies field extraction from a well-formed feed
func TestParseExtractsFields(t *testing.T) {
	records, err := Parse(strings.NewReader(sampleFeed))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	first := records[0]
	if first.Position != 1 {
		t.Errorf("Position: got %d, want 1", first.Position)
	}
	if first.FeedID != "SKU-001" {
		t.Errorf("FeedID: got %q, want %q", first.FeedID, "SKU-001")
	}
	if first.Title != "Leather Wallet" {
		t.Errorf("Title not trimmed: got %q", first.Title)
	}
	if first.Price != "120.00 AED" {
		t.Errorf("Price: got %q", first.Price)
	}
	if first.SalePrice != "99.00 AED" {
		t.Errorf("SalePrice: got %q", first.SalePrice)
	}
	if first.GTIN != "1234567890123" {
		t.Errorf("GTIN: got %q", first.GTIN)
	}
	if first.ItemGroupID != "wallets" {
		t.Errorf("ItemGroupID: got %q", first.ItemGroupID)
	}
	if first.CustomLabels[0] != "summer" {
		t.Errorf("CustomLabels[0]: got %q", first.CustomLabels[0])
	}

	second := records[1]
	if second.Position != 2 {
		t.Errorf("Position: got %d, want 2", second.Position)
	}
	// Optional fields absent from the item stay empty
	if second.SalePrice != "" || second.GTIN != "" {
		t.Errorf("Missing optional fields should be empty, got sale_price=%q gtin=%q",
			second.SalePrice, second.GTIN)
	}
}

// TestParseEmptyInput verifies empty and whitespace-only input yields an empty feed
func TestParseEmptyInput(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "whitespace only", input: "   \n\t  "},
		{name: "empty channel", input: `<rss><channel></channel></rss>`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			records, err := Parse(strings.NewReader(tc.input))
			if err != nil {
				t.Fatalf("Parse returned error: %v", err)
			}
			if len(records) != 0 {
				t.Errorf("Expected 0 records, got %d", len(records))
			}
		})
	}
}

// TestParseMalformedInput verifies structural problems produce MalformedInputError
func TestParseMalformedInput(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{name: "garbage prefix", input: "not xml at all"},
		{name: "wrong root element", input: `<feed><item/></feed>`},
		{name: "unclosed item", input: `<rss><channel><item><title>x</channel></rss>`},
		{name: "truncated document", input: `<rss><channel><item>`},
		{name: "mismatched tags", input: `<rss><channel><item><g:id>1</g:price></item></channel></rss>`},
		{name: "text after root", input: `<rss><channel></channel></rss>trailing garbage`},
		{name: "second root element", input: `<rss><channel></channel></rss><rss></rss>`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tc.input))
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			var malformed *MalformedInputError
			if !errors.As(err, &malformed) {
				t.Fatalf("Expected MalformedInputError, got %T: %v", err, err)
			}
			if malformed.Error() == "" {
				t.Error("Error message should not be empty")
			}
		})
	}
}

// TestParseReportsOffset verifies the error carries the offending position
func TestParseReportsOffset(t *testing.T) {
	input := `<rss><channel><item><title>x</title></item><item><broken</item></channel></rss>`
	_, err := Parse(strings.NewReader(input))
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	var malformed *MalformedInputError
	if !errors.As(err, &malformed) {
		t.Fatalf("Expected MalformedInputError, got %T", err)
	}
	if malformed.Offset <= 0 {
		t.Errorf("Expected positive offset, got %d", malformed.Offset)
	}
}

// TestParseAllowsTrailingWhitespace verifies whitespace after the closing
// root is not an error
func TestParseAllowsTrailingWhitespace(t *testing.T) {
	records, err := Parse(strings.NewReader("<rss><channel></channel></rss>\n\t  "))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected 0 records, got %d", len(records))
	}
}

// TestParseIgnoresUnknownElements verifies foreign markup inside items is skipped
func TestParseIgnoresUnknownElements(t *testing.T) {
	input := `<rss><channel>
<language>en</language>
<item><g:id xmlns:g="http://base.google.com/ns/1.0">SKU-9</g:id><unknown><nested/></unknown></item>
</channel></rss>`
	records, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].FeedID != "SKU-9" {
		t.Errorf("FeedID: got %q, want %q", records[0].FeedID, "SKU-9")
	}
}
