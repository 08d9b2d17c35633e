package transport

import (
	"net/http"

	"shopfront/internal/cart"
	"shopfront/internal/domain"
	"shopfront/internal/middleware"
	"shopfront/internal/repository"
	"shopfront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AddCartItemRequest names the product to add; the server snapshots the
// listing itself.
type AddCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
}

// UpdateQuantityRequest sets a line's quantity absolutely. Zero or a
// negative value removes the line.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CartResponse is the cart view returned by every cart endpoint.
type CartResponse struct {
	Items     []domain.CartItem `json:"items"`
	Subtotal  float64           `json:"subtotal"`
	ItemCount int               `json:"item_count"`
}

// CartHandler handles HTTP requests for the session cart.
type CartHandler struct {
	store          *cart.Store
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(store *cart.Store, catalogService service.CatalogService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		store:          store,
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers all cart routes; every route requires auth.
func (h *CartHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.Get)
		r.Delete("/", h.Clear)
		r.Post("/items", h.AddItem)
		r.Put("/items/{productID}", h.UpdateQuantity)
		r.Delete("/items/{productID}", h.RemoveItem)
	})
}

// Get returns the user's cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	h.respondWithCart(w, h.store.Items(r.Context(), userID))
}

// AddItem snapshots the named product into the cart. Re-adding a product
// already in the cart bumps its quantity and keeps the original snapshot.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req AddCartItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	product, err := h.catalogService.Get(r.Context(), productID)
	if err != nil {
		if err == repository.ErrProductNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to load product for cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to add item")
		return
	}

	items := h.store.AddItem(r.Context(), userID, *product)
	h.respondWithCart(w, items)
}

// UpdateQuantity sets a line's quantity; zero or below removes the line.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	var req UpdateQuantityRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	items := h.store.UpdateQuantity(r.Context(), userID, productID, req.Quantity)
	h.respondWithCart(w, items)
}

// RemoveItem drops a line regardless of quantity.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	items := h.store.RemoveItem(r.Context(), userID, productID)
	h.respondWithCart(w, items)
}

// Clear empties the cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	h.store.Clear(r.Context(), userID)
	h.respondWithCart(w, []domain.CartItem{})
}

func (h *CartHandler) respondWithCart(w http.ResponseWriter, items []domain.CartItem) {
	middleware.RespondWithJSON(w, http.StatusOK, CartResponse{
		Items:     items,
		Subtotal:  domain.Subtotal(items),
		ItemCount: domain.ItemCount(items),
	})
}
