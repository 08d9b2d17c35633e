package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"shopfront/internal/cart"
	"shopfront/internal/domain"
	"shopfront/internal/middleware"
	"shopfront/internal/repository"
	"shopfront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// stubCatalogService serves a fixed set of products.
type stubCatalogService struct {
	products map[uuid.UUID]domain.Product
}

func (s *stubCatalogService) List(ctx context.Context, filter domain.Filter, page int) (*service.CatalogPage, error) {
	all := []domain.Product{}
	for _, p := range s.products {
		all = append(all, p)
	}
	filtered := domain.FilterProducts(all, filter)
	return &service.CatalogPage{
		Products:   domain.Paginate(filtered, page, domain.DefaultPageSize),
		Total:      len(filtered),
		Page:       page,
		PageSize:   domain.DefaultPageSize,
		TotalPages: domain.PageCount(len(filtered), domain.DefaultPageSize),
	}, nil
}

func (s *stubCatalogService) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return &p, nil
}

func (s *stubCatalogService) Create(ctx context.Context, product *domain.Product) error {
	s.products[product.ID] = *product
	return nil
}

func (s *stubCatalogService) Update(ctx context.Context, product *domain.Product) error {
	s.products[product.ID] = *product
	return nil
}

func (s *stubCatalogService) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.products, id)
	return nil
}

// fakeAuth injects a fixed identity, standing in for the JWT middleware.
func fakeAuth(userID uuid.UUID, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), middleware.UserIDKey, userID)
			ctx = context.WithValue(ctx, middleware.UserRoleKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newCartTestServer(t *testing.T, userID uuid.UUID, products ...domain.Product) *chi.Mux {
	t.Helper()

	catalog := &stubCatalogService{products: make(map[uuid.UUID]domain.Product)}
	for _, p := range products {
		catalog.products[p.ID] = p
	}

	store := cart.NewStore(nil, 0, zap.NewNop())
	handler := NewCartHandler(store, catalog, zap.NewNop())

	router := chi.NewRouter()
	handler.RegisterRoutes(router, fakeAuth(userID, "user"))
	return router
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeCart(t *testing.T, w *httptest.ResponseRecorder) CartResponse {
	t.Helper()
	var resp CartResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode cart response: %v", err)
	}
	return resp
}

func TestCartAddMergesQuantity(t *testing.T) {
	userID := uuid.New()
	product := domain.Product{ID: uuid.New(), Title: "Canvas Sneaker", Price: 100, Discount: 0.1}
	router := newCartTestServer(t, userID, product)

	body := AddCartItemRequest{ProductID: product.ID.String()}

	w := doJSON(t, router, "POST", "/api/cart/items", body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, "POST", "/api/cart/items", body)
	resp := decodeCart(t, w)

	if len(resp.Items) != 1 {
		t.Fatalf("expected a single merged line, got %d", len(resp.Items))
	}
	if resp.Items[0].Quantity != 2 {
		t.Errorf("expected quantity 2, got %d", resp.Items[0].Quantity)
	}
	if resp.ItemCount != 2 {
		t.Errorf("expected item count 2, got %d", resp.ItemCount)
	}
	// 2 * 100 * 0.9
	if resp.Subtotal != 180 {
		t.Errorf("expected subtotal 180, got %.2f", resp.Subtotal)
	}
}

func TestCartAddUnknownProduct(t *testing.T) {
	router := newCartTestServer(t, uuid.New())

	w := doJSON(t, router, "POST", "/api/cart/items", AddCartItemRequest{ProductID: uuid.New().String()})
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown product, got %d", w.Code)
	}
}

func TestCartUpdateQuantityZeroRemoves(t *testing.T) {
	userID := uuid.New()
	product := domain.Product{ID: uuid.New(), Title: "Wool Beanie", Price: 25}
	router := newCartTestServer(t, userID, product)

	doJSON(t, router, "POST", "/api/cart/items", AddCartItemRequest{ProductID: product.ID.String()})

	w := doJSON(t, router, "PUT", "/api/cart/items/"+product.ID.String(), UpdateQuantityRequest{Quantity: 0})
	resp := decodeCart(t, w)

	if len(resp.Items) != 0 {
		t.Errorf("expected quantity zero to remove the line, got %d lines", len(resp.Items))
	}
}

func TestCartRemoveAndClear(t *testing.T) {
	userID := uuid.New()
	first := domain.Product{ID: uuid.New(), Title: "Canvas Sneaker", Price: 100}
	second := domain.Product{ID: uuid.New(), Title: "Wool Beanie", Price: 25}
	router := newCartTestServer(t, userID, first, second)

	doJSON(t, router, "POST", "/api/cart/items", AddCartItemRequest{ProductID: first.ID.String()})
	doJSON(t, router, "POST", "/api/cart/items", AddCartItemRequest{ProductID: second.ID.String()})

	w := doJSON(t, router, "DELETE", "/api/cart/items/"+first.ID.String(), nil)
	resp := decodeCart(t, w)
	if len(resp.Items) != 1 {
		t.Fatalf("expected 1 line after removal, got %d", len(resp.Items))
	}

	// Removing an absent line is a no-op.
	w = doJSON(t, router, "DELETE", "/api/cart/items/"+first.ID.String(), nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 for no-op removal, got %d", w.Code)
	}

	w = doJSON(t, router, "DELETE", "/api/cart", nil)
	resp = decodeCart(t, w)
	if len(resp.Items) != 0 || resp.Subtotal != 0 {
		t.Errorf("expected an empty cart after clear, got %+v", resp)
	}
}

func TestCartsAreIsolatedPerUser(t *testing.T) {
	product := domain.Product{ID: uuid.New(), Title: "Canvas Sneaker", Price: 100}

	catalog := &stubCatalogService{products: map[uuid.UUID]domain.Product{product.ID: product}}
	store := cart.NewStore(nil, 0, zap.NewNop())
	handler := NewCartHandler(store, catalog, zap.NewNop())

	alice := uuid.New()
	bob := uuid.New()

	aliceRouter := chi.NewRouter()
	handler.RegisterRoutes(aliceRouter, fakeAuth(alice, "user"))
	bobRouter := chi.NewRouter()
	handler.RegisterRoutes(bobRouter, fakeAuth(bob, "user"))

	doJSON(t, aliceRouter, "POST", "/api/cart/items", AddCartItemRequest{ProductID: product.ID.String()})

	w := doJSON(t, bobRouter, "GET", "/api/cart", nil)
	resp := decodeCart(t, w)
	if len(resp.Items) != 0 {
		t.Errorf("expected bob's cart to be empty, got %d lines", len(resp.Items))
	}
}
