package transport

import (
	"net/http"

	"shopfront/internal/middleware"
	"shopfront/internal/repository"
	"shopfront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AddAddressRequest is the payload for adding a delivery address.
type AddAddressRequest struct {
	Label           string `json:"label" validate:"required"`
	DeliveryAddress string `json:"delivery_address" validate:"required,min=5"`
}

// ProfileHandler handles HTTP requests for favorites and addresses.
type ProfileHandler struct {
	profileService service.ProfileService
	logger         *zap.Logger
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(profileService service.ProfileService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		logger:         logger,
	}
}

// RegisterRoutes registers all profile routes; every route requires auth.
func (h *ProfileHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/profile", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.GetProfile)

		r.Route("/favorites", func(r chi.Router) {
			r.Get("/", h.ListFavorites)
			r.Put("/{productID}", h.AddFavorite)
			r.Delete("/{productID}", h.RemoveFavorite)
		})

		r.Route("/addresses", func(r chi.Router) {
			r.Get("/", h.ListAddresses)
			r.Post("/", h.AddAddress)
			r.Delete("/{addressID}", h.RemoveAddress)
		})
	})
}

// GetProfile returns the user's identity, favorites and addresses in one view.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	profile, err := h.profileService.GetProfile(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to get profile", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get profile")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, profile)
}

// ListFavorites returns the user's favorite product ids.
func (h *ProfileHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	favorites, err := h.profileService.ListFavorites(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list favorites", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list favorites")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"favorites": favorites})
}

// AddFavorite marks a product as a favorite; repeating the call is a no-op.
func (h *ProfileHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
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

	if err := h.profileService.AddFavorite(r.Context(), userID, productID); err != nil {
		h.logger.Error("Failed to add favorite", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to add favorite")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "favorite added"})
}

// RemoveFavorite unmarks a product; removing a non-favorite is a no-op.
func (h *ProfileHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
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

	if err := h.profileService.RemoveFavorite(r.Context(), userID, productID); err != nil {
		h.logger.Error("Failed to remove favorite", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to remove favorite")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "favorite removed"})
}

// ListAddresses returns the user's delivery addresses.
func (h *ProfileHandler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	addresses, err := h.profileService.ListAddresses(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list addresses", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list addresses")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"addresses": addresses})
}

// AddAddress stores a new address and returns it with its assigned id.
func (h *ProfileHandler) AddAddress(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req AddAddressRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	address, err := h.profileService.AddAddress(r.Context(), userID, req.Label, req.DeliveryAddress)
	if err != nil {
		h.logger.Error("Failed to add address", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to add address")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, address)
}

// RemoveAddress deletes one of the user's addresses by id.
func (h *ProfileHandler) RemoveAddress(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	addressID, err := uuid.Parse(chi.URLParam(r, "addressID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid address ID")
		return
	}

	if err := h.profileService.RemoveAddress(r.Context(), userID, addressID); err != nil {
		if err == repository.ErrAddressNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "address not found")
			return
		}
		h.logger.Error("Failed to remove address", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to remove address")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "address removed"})
}
