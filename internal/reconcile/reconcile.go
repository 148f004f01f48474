// Package reconcile classifies candidate records against the set of already
// persisted natural keys. Classification is deterministic and
// order-preserving: the result lists records in the same order the parser
// produced them.
package reconcile

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/ozgun/catalogd/internal/domain"
)

// Class is the outcome of classifying one candidate record.
type Class string

const (
	// ClassInsertable marks a record whose natural key is unseen and whose
	// required fields validate.
	ClassInsertable Class = "insertable"
	// ClassDuplicate marks a record whose natural key is already persisted
	// with identical values, or repeats an earlier record in the same file.
	ClassDuplicate Class = "duplicate"
	// ClassConflicting marks a record whose natural key is persisted with
	// differing values; it is flagged for admin attention, never auto-merged.
	ClassConflicting Class = "conflicting"
	// ClassMalformed marks a record with a missing required field or a value
	// that fails type validation.
	ClassMalformed Class = "malformed"
)

// ClassifiedRecord pairs a candidate with its classification. Product is
// populated only for insertable records.
type ClassifiedRecord struct {
	Record  domain.CandidateRecord
	Class   Class
	Reason  string
	Product *domain.Product
}

// Result is the outcome of classifying one run's worth of records.
type Result struct {
	Records     []ClassifiedRecord
	Insertable  []domain.Product
	Inserted    int
	Duplicate   int
	Conflicting int
	Malformed   int
	Problems    []domain.RecordProblem
}

// Classify walks the candidate records in order and buckets each one into
// exactly one class. The existing key set is fetched once per run by the
// caller; keys accepted for insertion during the walk are remembered so
// intra-file duplicates are caught without another database pass (first
// occurrence wins, later ones are duplicates of it, not of the database).
func Classify(existing map[string]domain.Fingerprint, records []domain.CandidateRecord) *Result {
	res := &Result{Records: make([]ClassifiedRecord, 0, len(records))}
	seen := make(map[string]struct{})

	for _, rec := range records {
		cr := classifyOne(existing, seen, rec)
		res.Records = append(res.Records, cr)

		switch cr.Class {
		case ClassInsertable:
			res.Inserted++
			res.Insertable = append(res.Insertable, *cr.Product)
			seen[rec.NaturalKey()] = struct{}{}
		case ClassDuplicate:
			res.Duplicate++
		case ClassConflicting:
			res.Conflicting++
			res.Problems = append(res.Problems, domain.RecordProblem{
				Position: rec.Position,
				FeedID:   rec.FeedID,
				Reason:   cr.Reason,
			})
		case ClassMalformed:
			res.Malformed++
			res.Problems = append(res.Problems, domain.RecordProblem{
				Position: rec.Position,
				FeedID:   rec.FeedID,
				Reason:   cr.Reason,
			})
		}
	}
	return res
}

func classifyOne(existing map[string]domain.Fingerprint, seen map[string]struct{}, rec domain.CandidateRecord) ClassifiedRecord {
	product, err := buildProduct(rec)
	if err != nil {
		return ClassifiedRecord{Record: rec, Class: ClassMalformed, Reason: err.Error()}
	}

	key := rec.NaturalKey()
	if _, ok := seen[key]; ok {
		return ClassifiedRecord{Record: rec, Class: ClassDuplicate, Reason: "repeats an earlier record in this file"}
	}
	if fp, ok := existing[key]; ok {
		if fp == product.Fingerprint() {
			return ClassifiedRecord{Record: rec, Class: ClassDuplicate, Reason: "already stored with identical values"}
		}
		return ClassifiedRecord{Record: rec, Class: ClassConflicting, Reason: "already stored with different values"}
	}
	return ClassifiedRecord{Record: rec, Class: ClassInsertable, Product: product}
}

// buildProduct validates required fields and types and assembles the product
// row an insertable record would create.
func buildProduct(rec domain.CandidateRecord) (*domain.Product, error) {
	for _, f := range []struct{ name, value string }{
		{"id", rec.FeedID},
		{"title", rec.Title},
		{"brand", rec.Brand},
		{"price", rec.Price},
		{"availability", rec.Availability},
		{"condition", rec.Condition},
		{"gender", rec.Gender},
		{"quantity", rec.Quantity},
	} {
		if f.value == "" {
			return nil, fmt.Errorf("required field %s is missing", f.name)
		}
	}

	price, err := parsePrice(rec.Price)
	if err != nil {
		return nil, fmt.Errorf("price %q is not a valid amount", rec.Price)
	}
	var sale *float64
	if rec.SalePrice != "" {
		v, err := parsePrice(rec.SalePrice)
		if err != nil {
			return nil, fmt.Errorf("sale_price %q is not a valid amount", rec.SalePrice)
		}
		sale = &v
	}
	var final *float64
	if rec.FinalPrice != "" {
		v, err := parsePrice(rec.FinalPrice)
		if err != nil {
			return nil, fmt.Errorf("finalprice %q is not a valid amount", rec.FinalPrice)
		}
		final = &v
	}

	quantity, err := strconv.Atoi(rec.Quantity)
	if err != nil || quantity < 0 {
		return nil, fmt.Errorf("quantity %q is not a non-negative integer", rec.Quantity)
	}

	switch rec.Gender {
	case domain.GenderMale, domain.GenderFemale, domain.GenderUnisex:
	default:
		return nil, fmt.Errorf("gender %q is not one of male, female, unisex", rec.Gender)
	}

	return &domain.Product{
		ID:                    uuid.New().String(),
		FeedID:                rec.FeedID,
		NaturalKey:            rec.NaturalKey(),
		Title:                 rec.Title,
		ProductType:           rec.ProductType,
		Link:                  rec.Link,
		Description:           rec.Description,
		ImageLink:             rec.ImageLink,
		Price:                 price,
		SalePrice:             sale,
		FinalPrice:            final,
		Availability:          rec.Availability,
		GoogleProductCategory: rec.GoogleProductCategory,
		Brand:                 rec.Brand,
		GTIN:                  rec.GTIN,
		ItemGroupID:           rec.ItemGroupID,
		Condition:             rec.Condition,
		AgeGroup:              rec.AgeGroup,
		Color:                 rec.Color,
		Gender:                rec.Gender,
		Quantity:              quantity,
		CustomLabel0:          rec.CustomLabels[0],
		CustomLabel1:          rec.CustomLabels[1],
		CustomLabel2:          rec.CustomLabels[2],
		CustomLabel3:          rec.CustomLabels[3],
		CustomLabel4:          rec.CustomLabels[4],
	}, nil
}
