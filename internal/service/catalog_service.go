package service

import (
	"context"
	"fmt"
	"time"

	"shopfront/internal/domain"
	"shopfront/internal/repository"

	"github.com/google/uuid"
)

// CatalogPage is one page of a filtered catalog view.
type CatalogPage struct {
	Products   []domain.Product `json:"products"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}

// CatalogService derives browsable views over the product catalog and owns
// the admin write path.
type CatalogService interface {
	List(ctx context.Context, filter domain.Filter, page int) (*CatalogPage, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type catalogService struct {
	productRepo repository.ProductRepository
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(productRepo repository.ProductRepository) CatalogService {
	return &catalogService{productRepo: productRepo}
}

// List fetches the catalog, applies the filter in memory, and slices the
// requested page. A concrete category narrows the fetch to that category's
// rows; the remaining filter fields still apply on top.
func (s *catalogService) List(ctx context.Context, filter domain.Filter, page int) (*CatalogPage, error) {
	if page < 1 {
		page = 1
	}

	var products []domain.Product
	var err error
	if filter.Category != "" && filter.Category != domain.FilterAny {
		products, err = s.productRepo.FindByCategory(ctx, filter.Category)
	} else {
		products, err = s.productRepo.ListAll(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	filtered := domain.FilterProducts(products, filter)

	return &CatalogPage{
		Products:   domain.Paginate(filtered, page, domain.DefaultPageSize),
		Total:      len(filtered),
		Page:       page,
		PageSize:   domain.DefaultPageSize,
		TotalPages: domain.PageCount(len(filtered), domain.DefaultPageSize),
	}, nil
}

// Get retrieves one product. Absence surfaces as ErrProductNotFound for the
// transport layer to map, never as a panic.
func (s *catalogService) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

// Create adds a listing, assigning its id.
func (s *catalogService) Create(ctx context.Context, product *domain.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	return s.productRepo.Create(ctx, product)
}

// Update replaces a listing's fields.
func (s *catalogService) Update(ctx context.Context, product *domain.Product) error {
	product.UpdatedAt = time.Now()
	return s.productRepo.Update(ctx, product)
}

// Delete removes a listing from the catalog.
func (s *catalogService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.productRepo.Delete(ctx, id)
}
