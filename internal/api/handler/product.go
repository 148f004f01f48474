package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ozgun/catalogd/internal/service"
	"gorm.io/gorm"
)

// ProductHandler handles catalog read endpoints.
type ProductHandler struct {
	catalogService *service.CatalogService
}

// NewProductHandler creates a new product handler.
// Parameters:
//   - catalogService: catalog read service instance.
// Returns:
//   - *ProductHandler: initialized handler.
func NewProductHandler(catalogService *service.CatalogService) *ProductHandler {
	return &ProductHandler{
		catalogService: catalogService,
	}
}

// ListProducts handles GET /api/v1/products.
// Supported query parameters: condition, gender, brand, sort_by, order,
// page, page_size.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ProductHandler) ListProducts(c *gin.Context) {
	params := service.ListParams{
		Condition: c.Query("condition"),
		Gender:    c.Query("gender"),
		Brand:     c.Query("brand"),
		SortBy:    c.Query("sort_by"),
		Order:     c.DefaultQuery("order", "asc"),
	}

	if page := c.Query("page"); page != "" {
		n, err := strconv.Atoi(page)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid page parameter",
			})
			return
		}
		params.Page = n
	}

	if size := c.Query("page_size"); size != "" {
		n, err := strconv.Atoi(size)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid page_size parameter",
			})
			return
		}
		params.PageSize = n
	}

	if params.SortBy != "" && params.SortBy != "title" && params.SortBy != "price" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "sort_by must be 'title' or 'price'",
		})
		return
	}

	page, err := h.catalogService.ListProducts(c.Request.Context(), params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list products: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetProduct handles GET /api/v1/products/:id.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id := c.Param("id")

	product, err := h.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Product not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get product: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, product)
}

// GetFilterOptions handles GET /api/v1/filter-options.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ProductHandler) GetFilterOptions(c *gin.Context) {
	options, err := h.catalogService.FilterOptions(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get filter options: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, options)
}
