package transport

import (
	"net/http"

	"shopfront/internal/cart"
	"shopfront/internal/middleware"
	"shopfront/internal/repository"
	"shopfront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CheckoutRequest names the delivery address for the order. The items and
// total come from the server-side cart, never from the client.
type CheckoutRequest struct {
	AddressID string `json:"address_id" validate:"required,uuid"`
}

// OrderHandler handles HTTP requests for checkout and order history.
type OrderHandler struct {
	orderService   service.OrderService
	profileService service.ProfileService
	store          *cart.Store
	logger         *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(
	orderService service.OrderService,
	profileService service.ProfileService,
	store *cart.Store,
	logger *zap.Logger,
) *OrderHandler {
	return &OrderHandler{
		orderService:   orderService,
		profileService: profileService,
		store:          store,
		logger:         logger,
	}
}

// RegisterRoutes registers all order routes; every route requires auth.
func (h *OrderHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.Checkout)
		r.Get("/", h.List)
		r.Get("/{orderID}", h.Get)
	})
}

// Checkout turns the cart into an order. An Idempotency-Key header makes the
// call safe to retry: the same key returns the order created the first time.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CheckoutRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	addressID, err := uuid.Parse(req.AddressID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid address ID")
		return
	}

	address, err := h.profileService.GetAddress(r.Context(), userID, addressID)
	if err != nil {
		if err == repository.ErrAddressNotFound {
			middleware.RespondWithError(w, http.StatusBadRequest, "address not found")
			return
		}
		h.logger.Error("Failed to resolve checkout address", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to checkout")
		return
	}

	items := h.store.Items(r.Context(), userID)
	idempotencyKey := r.Header.Get("Idempotency-Key")

	order, err := h.orderService.Checkout(r.Context(), userID, items, *address, idempotencyKey)
	if err != nil {
		switch err {
		case service.ErrEmptyCart:
			middleware.RespondWithError(w, http.StatusBadRequest, "cart is empty")
		case service.ErrNoAddress:
			middleware.RespondWithError(w, http.StatusBadRequest, "delivery address is required")
		default:
			h.logger.Error("Checkout failed", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to checkout")
		}
		return
	}

	h.store.Clear(r.Context(), userID)

	h.logger.Info("Order created",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", userID.String()),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, order)
}

// List returns the user's order history, most recent first.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	orders, err := h.orderService.ListByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list orders", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

// Get returns one of the user's orders.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	order, err := h.orderService.Get(r.Context(), userID, orderID)
	if err != nil {
		if err == repository.ErrOrderNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
			return
		}
		h.logger.Error("Failed to get order", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get order")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}
