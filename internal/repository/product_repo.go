package repository

import (
	"context"

	"github.com/ozgun/catalogd/internal/domain"
	"gorm.io/gorm"
)

// ProductRepository handles product data operations.
type ProductRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new ProductRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *ProductRepository: repository instance bound to db.
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// ListFilter narrows a product listing. Empty fields match everything.
type ListFilter struct {
	Condition string
	Gender    string
	Brand     string
}

// Sort orders a product listing. By is "title" or "price"; Desc reverses.
type Sort struct {
	By   string
	Desc bool
}

// Page selects one page of a listing. Number is 1-based.
type Page struct {
	Number int
	Size   int
}

// FilterOptions holds the distinct values available for listing filters.
// Derived from persisted products on every call rather than cached.
type FilterOptions struct {
	Conditions []string `json:"conditions"`
	Genders    []string `json:"genders"`
	Brands     []string `json:"brands"`
}

// keyRow is the projection used to build the natural-key snapshot.
type keyRow struct {
	NaturalKey   string
	Title        string
	Brand        string
	Availability string
	Condition    string
	Gender       string
	Price        float64
	SalePrice    *float64
	Quantity     int
}

// ExistingNaturalKeys loads the natural key of every persisted product along
// with its value fingerprint. Called once per ingestion run so reconciliation
// never goes back to the database per record.
func (r *ProductRepository) ExistingNaturalKeys(ctx context.Context) (map[string]domain.Fingerprint, error) {
	var rows []keyRow
	if err := r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Select("natural_key", "title", "brand", "availability", "condition", "gender", "price", "sale_price", "quantity").
		Find(&rows).Error; err != nil {
		return nil, newPersistenceError("existing natural keys", err)
	}

	keys := make(map[string]domain.Fingerprint, len(rows))
	for _, row := range rows {
		keys[row.NaturalKey] = domain.ComputeFingerprint(
			row.Title, row.Brand, row.Availability, row.Condition, row.Gender,
			row.Price, row.SalePrice, row.Quantity,
		)
	}
	return keys, nil
}

// Transaction runs fn inside one database transaction. The orchestrator uses
// it to make the bulk insert all-or-nothing.
func (r *ProductRepository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

// BulkInsertTx inserts the given products inside the caller's transaction.
// Any failure, including a unique-constraint hit from a concurrent upload,
// returns a *PersistenceError and leaves the transaction to be rolled back.
func (r *ProductRepository) BulkInsertTx(ctx context.Context, tx *gorm.DB, products []domain.Product) (int, error) {
	if len(products) == 0 {
		return 0, nil
	}
	if err := tx.WithContext(ctx).Create(&products).Error; err != nil {
		return 0, newPersistenceError("bulk insert", err)
	}
	return len(products), nil
}

// ListPaged retrieves one page of products with filtering and sorting.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - filter: field filters; empty values are ignored.
//   - sort: ordering; zero value sorts by title ascending.
//   - page: 1-based page selection.
// Returns:
//   - []domain.Product: the requested page.
//   - int64: total number of matching products.
//   - error: non-nil if the query fails.
func (r *ProductRepository) ListPaged(ctx context.Context, filter ListFilter, sort Sort, page Page) ([]domain.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Product{})

	if filter.Condition != "" {
		query = query.Where("condition = ?", filter.Condition)
	}
	if filter.Gender != "" {
		query = query.Where("gender = ?", filter.Gender)
	}
	if filter.Brand != "" {
		query = query.Where("brand = ?", filter.Brand)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, newPersistenceError("list products", err)
	}

	column := "title"
	if sort.By == "price" {
		column = "price"
	}
	direction := "ASC"
	if sort.Desc {
		direction = "DESC"
	}

	if page.Number < 1 {
		page.Number = 1
	}

	var products []domain.Product
	if err := query.
		Order(column + " " + direction).
		Limit(page.Size).
		Offset((page.Number - 1) * page.Size).
		Find(&products).Error; err != nil {
		return nil, 0, newPersistenceError("list products", err)
	}
	return products, total, nil
}

// GetByID retrieves a product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	var product domain.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// GetFilterOptions retrieves the distinct filter values currently present in
// the catalog.
func (r *ProductRepository) GetFilterOptions(ctx context.Context) (*FilterOptions, error) {
	opts := &FilterOptions{}

	if err := r.db.WithContext(ctx).Model(&domain.Product{}).Distinct("condition").Pluck("condition", &opts.Conditions).Error; err != nil {
		return nil, newPersistenceError("filter options", err)
	}
	if err := r.db.WithContext(ctx).Model(&domain.Product{}).Distinct("gender").Pluck("gender", &opts.Genders).Error; err != nil {
		return nil, newPersistenceError("filter options", err)
	}
	if err := r.db.WithContext(ctx).Model(&domain.Product{}).Distinct("brand").Pluck("brand", &opts.Brands).Error; err != nil {
		return nil, newPersistenceError("filter options", err)
	}
	return opts, nil
}
