package service

import (
	"context"

	"github.com/ozgun/catalogd/internal/config"
	"github.com/ozgun/catalogd/internal/domain"
	"github.com/ozgun/catalogd/internal/repository"
)

// ListParams are the validated query parameters of a product listing.
type ListParams struct {
	Condition string
	Gender    string
	Brand     string
	SortBy    string // "title" or "price"
	Order     string // "asc" or "desc"
	Page      int
	PageSize  int
}

// ProductPage is one page of a product listing.
type ProductPage struct {
	Results    []domain.Product `json:"results"`
	Count      int64            `json:"count"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}

// CatalogService backs the read-side endpoints: paged listing, detail, and
// filter vocabulary.
type CatalogService struct {
	products *repository.ProductRepository
	cfg      config.ListingConfig
}

// NewCatalogService creates the catalog read service.
func NewCatalogService(products *repository.ProductRepository, cfg config.ListingConfig) *CatalogService {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 5
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 100
	}
	return &CatalogService{products: products, cfg: cfg}
}

// ListProducts returns one page of products matching the filters. The sort
// vocabulary matches the persisted fields reconciliation validates, so any
// filterable value is also a value the pipeline accepted.
func (s *CatalogService) ListProducts(ctx context.Context, params ListParams) (*ProductPage, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize <= 0 {
		params.PageSize = s.cfg.PageSize
	}
	if params.PageSize > s.cfg.MaxPageSize {
		params.PageSize = s.cfg.MaxPageSize
	}

	filter := repository.ListFilter{
		Condition: params.Condition,
		Gender:    params.Gender,
		Brand:     params.Brand,
	}
	sort := repository.Sort{
		By:   params.SortBy,
		Desc: params.Order == "desc",
	}
	page := repository.Page{Number: params.Page, Size: params.PageSize}

	products, total, err := s.products.ListPaged(ctx, filter, sort, page)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(params.PageSize) - 1) / int64(params.PageSize))
	return &ProductPage{
		Results:    products,
		Count:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages,
	}, nil
}

// GetProduct retrieves a single product by its identifier.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.products.GetByID(ctx, id)
}

// FilterOptions returns the distinct condition, gender, and brand values
// currently in the catalog, computed fresh on every call.
func (s *CatalogService) FilterOptions(ctx context.Context) (*repository.FilterOptions, error) {
	return s.products.GetFilterOptions(ctx)
}
