package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"storefront/internal/browse"
	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateProductRequest is a complete product draft
type CreateProductRequest struct {
	Type          domain.ProductType `json:"type" validate:"required"`
	Name          string             `json:"name" validate:"required,max=200"`
	Description   string             `json:"description" validate:"max=10000"`
	Price         int64              `json:"price" validate:"gte=0"`
	DiscountPrice *int64             `json:"discount_price" validate:"omitempty,gte=0"`
	ThumbnailURL  string             `json:"thumbnail_url" validate:"omitempty,url"`
	Featured      bool               `json:"featured"`
	Details       json.RawMessage    `json:"details"`
	Publish       bool               `json:"publish"`
}

// UpdateProductRequest is a sparse update; absent fields are left as they are
type UpdateProductRequest struct {
	Type          *domain.ProductType `json:"type"`
	Name          *string             `json:"name" validate:"omitempty,max=200"`
	Description   *string             `json:"description" validate:"omitempty,max=10000"`
	Price         *int64              `json:"price" validate:"omitempty,gte=0"`
	DiscountPrice *int64              `json:"discount_price" validate:"omitempty,gte=0"`
	ClearDiscount bool                `json:"clear_discount"`
	ThumbnailURL  *string             `json:"thumbnail_url" validate:"omitempty,url"`
	Featured      *bool               `json:"featured"`
	Details       json.RawMessage     `json:"details"`
}

// ProductListResponse wraps a creator's product listing
type ProductListResponse struct {
	Products []*domain.Product `json:"products"`
}

// ProductHandler handles HTTP requests for the catalog
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// RegisterRoutes registers the public catalog and the creator's product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.Browse)
		r.Get("/{id}", h.GetPublished)
	})

	r.Route("/api/creator/products", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.ListMine)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Post("/{id}/publish", h.Publish)
		r.Post("/{id}/unpublish", h.Unpublish)
	})
}

// Browse lists published products matching the query filters
func (h *ProductHandler) Browse(w http.ResponseWriter, r *http.Request) {
	filter := browse.ParseFilter(r.URL.Query())

	page, err := h.productService.Browse(r.Context(), filter)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to browse products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, page)
}

// GetPublished returns one published product
func (h *ProductHandler) GetPublished(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	product, err := h.productService.GetPublished(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// ListMine lists the caller's products including drafts
func (h *ProductHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	creator, ok := creatorID(w, r)
	if !ok {
		return
	}

	products, err := h.productService.ListMine(r.Context(), creator)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to list products")
		return
	}
	if products == nil {
		products = []*domain.Product{}
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductListResponse{Products: products})
}

// Create stores a complete draft, optionally publishing it at once
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	creator, ok := creatorID(w, r)
	if !ok {
		return
	}

	var req CreateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Create product validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	product := &domain.Product{
		Type:          req.Type,
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
		ThumbnailURL:  req.ThumbnailURL,
		Featured:      req.Featured,
	}
	if req.Publish {
		now := time.Now().UTC()
		product.PublishedAt = &now
	}

	if len(req.Details) > 0 {
		details, err := domain.DecodeDetails(req.Type, req.Details)
		if err != nil {
			middleware.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		product.Details = details
	}

	created, err := h.productService.Create(r.Context(), creator, product)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to create product")
		return
	}

	h.logger.Info("Product created",
		zap.String("product_id", created.ID.String()),
		zap.String("creator_id", creator.String()),
		zap.String("type", string(created.Type)),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, created)
}

// Get returns one of the caller's products
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	creator, ok := creatorID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	product, err := h.productService.Get(r.Context(), creator, id)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Update applies a sparse update to one of the caller's products
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	creator, ok := creatorID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Update product validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	changes := repository.ProductChangeSet{
		Type:          req.Type,
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
		ClearDiscount: req.ClearDiscount && req.DiscountPrice == nil,
		ThumbnailURL:  req.ThumbnailURL,
		Featured:      req.Featured,
	}

	if len(req.Details) > 0 {
		// Details decode against the new type, or the stored one when unchanged
		var detailsType domain.ProductType
		if req.Type != nil {
			detailsType = *req.Type
		} else {
			current, err := h.productService.Get(r.Context(), creator, id)
			if err != nil {
				respondWithServiceError(w, h.logger, err, "failed to update product")
				return
			}
			detailsType = current.Type
		}

		details, err := domain.DecodeDetails(detailsType, req.Details)
		if err != nil {
			middleware.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		changes.Details = details
	}

	if changes.IsEmpty() {
		middleware.RespondWithError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	updated, err := h.productService.Update(r.Context(), creator, id, changes)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to update product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, updated)
}

// Delete removes one of the caller's products
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	creator, ok := creatorID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.productService.Delete(r.Context(), creator, id); err != nil {
		respondWithServiceError(w, h.logger, err, "failed to delete product")
		return
	}

	h.logger.Info("Product deleted", zap.String("product_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

// Publish makes a product visible in the public catalog
func (h *ProductHandler) Publish(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.productService.Publish, "failed to publish product")
}

// Unpublish turns a product back into a draft
func (h *ProductHandler) Unpublish(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.productService.Unpublish, "failed to unpublish product")
}

type transitionFunc func(ctx context.Context, creatorID, id uuid.UUID) (*domain.Product, error)

func (h *ProductHandler) transition(w http.ResponseWriter, r *http.Request, fn transitionFunc, failure string) {
	creator, ok := creatorID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	product, err := fn(r.Context(), creator, id)
	if err != nil {
		respondWithServiceError(w, h.logger, err, failure)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}
