// Package feed parses Google Merchant style product feeds into candidate
// records. Parsing is streaming and defensive: beyond the outer
// rss/channel/item container nothing is assumed about the markup, and missing
// optional fields yield empty values rather than errors.
package feed

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/ozgun/catalogd/internal/domain"
)

// merchantNS is the namespace used by Google Merchant feed fields.
const merchantNS = "http://base.google.com/ns/1.0"

// xmlItem mirrors one <item> element. Fields outside the merchant namespace
// (title, link, description) are plain RSS fields.
type xmlItem struct {
	FeedID                string `xml:"http://base.google.com/ns/1.0 id"`
	Title                 string `xml:"title"`
	ProductType           string `xml:"http://base.google.com/ns/1.0 product_type"`
	Link                  string `xml:"link"`
	Description           string `xml:"description"`
	ImageLink             string `xml:"http://base.google.com/ns/1.0 image_link"`
	Price                 string `xml:"http://base.google.com/ns/1.0 price"`
	SalePrice             string `xml:"http://base.google.com/ns/1.0 sale_price"`
	FinalPrice            string `xml:"http://base.google.com/ns/1.0 finalprice"`
	Availability          string `xml:"http://base.google.com/ns/1.0 availability"`
	GoogleProductCategory string `xml:"http://base.google.com/ns/1.0 google_product_category"`
	Brand                 string `xml:"http://base.google.com/ns/1.0 brand"`
	GTIN                  string `xml:"http://base.google.com/ns/1.0 gtin"`
	ItemGroupID           string `xml:"http://base.google.com/ns/1.0 item_group_id"`
	Condition             string `xml:"http://base.google.com/ns/1.0 condition"`
	AgeGroup              string `xml:"http://base.google.com/ns/1.0 age_group"`
	Color                 string `xml:"http://base.google.com/ns/1.0 color"`
	Gender                string `xml:"http://base.google.com/ns/1.0 gender"`
	Quantity              string `xml:"http://base.google.com/ns/1.0 quantity"`
	CustomLabel0          string `xml:"http://base.google.com/ns/1.0 custom_label_0"`
	CustomLabel1          string `xml:"http://base.google.com/ns/1.0 custom_label_1"`
	CustomLabel2          string `xml:"http://base.google.com/ns/1.0 custom_label_2"`
	CustomLabel3          string `xml:"http://base.google.com/ns/1.0 custom_label_3"`
	CustomLabel4          string `xml:"http://base.google.com/ns/1.0 custom_label_4"`
}

// Parse reads a product feed and returns its items as candidate records in
// document order. Empty or whitespace-only input yields an empty slice and no
// error. Structural problems return a *MalformedInputError describing the
// first offending position; per-field validation is left to reconciliation.
func Parse(r io.Reader) ([]domain.CandidateRecord, error) {
	dec := xml.NewDecoder(r)

	rootSeen := false
	depth := 0 // currently open elements, root included
	records := []domain.CandidateRecord{}
	position := 0

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			// Empty input is a valid, empty feed. A truncated document with
			// an opened root is caught by the decoder before EOF.
			return records, nil
		}
		if err != nil {
			return nil, malformed(dec, err, "not well-formed markup")
		}

		switch t := tok.(type) {
		case xml.CharData:
			// depth 0 is outside the root, both before it opens and after it
			// closes.
			if depth == 0 && strings.TrimSpace(string(t)) != "" {
				return nil, malformed(dec, nil, "content outside root element")
			}
		case xml.StartElement:
			if !rootSeen {
				if t.Name.Local != "rss" {
					return nil, malformed(dec, nil, "missing required rss root element")
				}
				rootSeen = true
				depth++
				continue
			}
			if depth == 0 {
				return nil, malformed(dec, nil, "content after closing root element")
			}
			if t.Name.Local != "item" {
				depth++
				continue
			}
			position++
			var item xmlItem
			// DecodeElement consumes the matching end tag, so depth is
			// unchanged.
			if err := dec.DecodeElement(&item, &t); err != nil {
				return nil, malformed(dec, err, "not well-formed markup inside item")
			}
			records = append(records, toCandidate(&item, position))
		case xml.EndElement:
			depth--
		}
	}
}

// toCandidate converts a decoded item to a candidate record, trimming the
// surrounding whitespace feeds routinely carry inside elements.
func toCandidate(item *xmlItem, position int) domain.CandidateRecord {
	return domain.CandidateRecord{
		Position:              position,
		FeedID:                strings.TrimSpace(item.FeedID),
		Title:                 strings.TrimSpace(item.Title),
		ProductType:           strings.TrimSpace(item.ProductType),
		Link:                  strings.TrimSpace(item.Link),
		Description:           strings.TrimSpace(item.Description),
		ImageLink:             strings.TrimSpace(item.ImageLink),
		Price:                 strings.TrimSpace(item.Price),
		SalePrice:             strings.TrimSpace(item.SalePrice),
		FinalPrice:            strings.TrimSpace(item.FinalPrice),
		Availability:          strings.TrimSpace(item.Availability),
		GoogleProductCategory: strings.TrimSpace(item.GoogleProductCategory),
		Brand:                 strings.TrimSpace(item.Brand),
		GTIN:                  strings.TrimSpace(item.GTIN),
		ItemGroupID:           strings.TrimSpace(item.ItemGroupID),
		Condition:             strings.TrimSpace(item.Condition),
		AgeGroup:              strings.TrimSpace(item.AgeGroup),
		Color:                 strings.TrimSpace(item.Color),
		Gender:                strings.TrimSpace(item.Gender),
		Quantity:              strings.TrimSpace(item.Quantity),
		CustomLabels: [5]string{
			strings.TrimSpace(item.CustomLabel0),
			strings.TrimSpace(item.CustomLabel1),
			strings.TrimSpace(item.CustomLabel2),
			strings.TrimSpace(item.CustomLabel3),
			strings.TrimSpace(item.CustomLabel4),
		},
	}
}

// malformed wraps a decoder error with positional information.
func malformed(dec *xml.Decoder, err error, msg string) *MalformedInputError {
	e := &MalformedInputError{
		Offset: dec.InputOffset(),
		Msg:    msg,
		Err:    err,
	}
	var syntaxErr *xml.SyntaxError
	if errors.As(err, &syntaxErr) {
		e.Line = syntaxErr.Line
		if syntaxErr.Msg != "" {
			e.Msg = msg + ": " + syntaxErr.Msg
		}
	}
	return e
}
