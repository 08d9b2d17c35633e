package service

import (
	"context"
	"fmt"
	"testing"

	"shopfront/internal/domain"
	"shopfront/internal/repository"

	"github.com/google/uuid"
)

type mockProductRepository struct {
	products        []domain.Product
	listAllCalls    int
	byCategoryCalls int
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	m.products = append(m.products, *product)
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	for i, p := range m.products {
		if p.ID == product.ID {
			m.products[i] = *product
			return nil
		}
	}
	return repository.ErrProductNotFound
}

func (m *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	for i, p := range m.products {
		if p.ID == id {
			m.products = append(m.products[:i], m.products[i+1:]...)
			return nil
		}
	}
	return repository.ErrProductNotFound
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	for _, p := range m.products {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (m *mockProductRepository) FindByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	m.byCategoryCalls++
	result := []domain.Product{}
	for _, p := range m.products {
		if p.Category == category {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m *mockProductRepository) ListAll(ctx context.Context) ([]domain.Product, error) {
	m.listAllCalls++
	return append([]domain.Product{}, m.products...), nil
}

func seedCatalog(count int, category string, gender domain.Gender) *mockProductRepository {
	repo := &mockProductRepository{}
	for i := 0; i < count; i++ {
		repo.products = append(repo.products, domain.Product{
			ID:       uuid.New(),
			Title:    fmt.Sprintf("%s %d", category, i),
			Price:    50,
			Category: category,
			Gender:   gender,
			Sizes:    []string{"M", "L"},
			Colors:   []string{"black"},
		})
	}
	return repo
}

func TestCatalogListPaginates(t *testing.T) {
	repo := seedCatalog(25, "Shoes", domain.GenderUnisex)
	service := NewCatalogService(repo)
	ctx := context.Background()

	page, err := service.List(ctx, domain.Filter{}, 1)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if page.Total != 25 {
		t.Errorf("expected total 25, got %d", page.Total)
	}
	if page.TotalPages != 3 {
		t.Errorf("expected 3 pages, got %d", page.TotalPages)
	}
	if len(page.Products) != domain.DefaultPageSize {
		t.Errorf("expected a full page of %d, got %d", domain.DefaultPageSize, len(page.Products))
	}

	last, err := service.List(ctx, domain.Filter{}, 3)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(last.Products) != 1 {
		t.Errorf("expected 1 product on the last page, got %d", len(last.Products))
	}

	beyond, err := service.List(ctx, domain.Filter{}, 4)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(beyond.Products) != 0 {
		t.Errorf("expected an empty page past the end, got %d", len(beyond.Products))
	}
}

func TestCatalogListClampsPage(t *testing.T) {
	repo := seedCatalog(5, "Shoes", domain.GenderUnisex)
	service := NewCatalogService(repo)

	page, err := service.List(context.Background(), domain.Filter{}, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if page.Page != 1 {
		t.Errorf("expected page clamped to 1, got %d", page.Page)
	}
	if len(page.Products) != 5 {
		t.Errorf("expected 5 products, got %d", len(page.Products))
	}
}

func TestCatalogListAppliesFilter(t *testing.T) {
	repo := seedCatalog(4, "Shoes", domain.GenderMale)
	repo.products = append(repo.products, seedCatalog(3, "Hats", domain.GenderFemale).products...)
	service := NewCatalogService(repo)

	page, err := service.List(context.Background(), domain.Filter{Category: "Hats"}, 1)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if page.Total != 3 {
		t.Errorf("expected 3 hats, got %d", page.Total)
	}

	any, err := service.List(context.Background(), domain.Filter{Category: domain.FilterAny}, 1)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if any.Total != 7 {
		t.Errorf("expected the Any wildcard to match everything, got %d", any.Total)
	}
}

func TestCatalogListCategoryFastPath(t *testing.T) {
	repo := seedCatalog(4, "Shoes", domain.GenderMale)
	repo.products = append(repo.products, seedCatalog(3, "Hats", domain.GenderFemale).products...)
	service := NewCatalogService(repo)
	ctx := context.Background()

	// A concrete category fetches only that category's rows.
	page, err := service.List(ctx, domain.Filter{Category: "Hats", Gender: string(domain.GenderFemale)}, 1)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if page.Total != 3 {
		t.Errorf("expected 3 hats, got %d", page.Total)
	}
	if repo.byCategoryCalls != 1 || repo.listAllCalls != 0 {
		t.Errorf("expected the category fetch, got byCategory=%d listAll=%d",
			repo.byCategoryCalls, repo.listAllCalls)
	}

	// The wildcard still loads the whole catalog.
	if _, err := service.List(ctx, domain.Filter{Category: domain.FilterAny}, 1); err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if repo.listAllCalls != 1 {
		t.Errorf("expected the full fetch for the wildcard, got %d", repo.listAllCalls)
	}

	// The remaining filter fields still apply on top of the narrowed fetch.
	narrowed, err := service.List(ctx, domain.Filter{Category: "Hats", Gender: string(domain.GenderMale)}, 1)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if narrowed.Total != 0 {
		t.Errorf("expected gender filter to apply within the category, got %d", narrowed.Total)
	}
}

func TestCatalogCreateAssignsIDAndTimestamps(t *testing.T) {
	repo := &mockProductRepository{}
	service := NewCatalogService(repo)

	product := &domain.Product{Title: "New Jacket", Price: 80, Category: "Jackets"}
	if err := service.Create(context.Background(), product); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if product.ID == uuid.Nil {
		t.Error("expected an assigned product id")
	}
	if product.CreatedAt.IsZero() || product.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}

	stored, err := service.Get(context.Background(), product.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if stored.Title != "New Jacket" {
		t.Errorf("stored title mismatch: %s", stored.Title)
	}
}

func TestCatalogGetMissingProduct(t *testing.T) {
	service := NewCatalogService(&mockProductRepository{})

	_, err := service.Get(context.Background(), uuid.New())
	if err != repository.ErrProductNotFound {
		t.Errorf("expected ErrProductNotFound, got %v", err)
	}
}
