package transport

import (
	"context"
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/offers"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductLookup resolves the published products an offer refers to
type ProductLookup interface {
	GetPublished(ctx context.Context, id uuid.UUID) (*domain.Product, error)
}

// CreateBundleRequest represents the bundle creation payload
type CreateBundleRequest struct {
	Name        string      `json:"name" validate:"required,max=200"`
	ProductIDs  []uuid.UUID `json:"product_ids" validate:"required,min=2"`
	DiscountPct float64     `json:"discount_pct" validate:"gte=0,lte=100"`
}

// CreateUpsellRequest represents the upsell creation payload
type CreateUpsellRequest struct {
	ProductID      uuid.UUID `json:"product_id" validate:"required"`
	OfferProductID uuid.UUID `json:"offer_product_id" validate:"required"`
	DiscountPct    float64   `json:"discount_pct" validate:"gte=0,lte=100"`
	Headline       string    `json:"headline" validate:"max=200"`
}

// BundleView is a bundle with its current price. Price is absent while any
// of its products is missing or unpublished.
type BundleView struct {
	offers.Bundle
	Price *int64 `json:"price,omitempty"`
}

// UpsellView is an upsell with the discounted price of the offered product
type UpsellView struct {
	offers.Upsell
	Price *int64 `json:"price,omitempty"`
}

// OfferHandler manages bundles and upsells for administrators
type OfferHandler struct {
	store    *offers.Store
	products ProductLookup
	logger   *zap.Logger
}

// NewOfferHandler creates a new OfferHandler
func NewOfferHandler(store *offers.Store, products ProductLookup, logger *zap.Logger) *OfferHandler {
	return &OfferHandler{
		store:    store,
		products: products,
		logger:   logger,
	}
}

// RegisterRoutes registers the admin offer routes
func (h *OfferHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(authMiddleware, adminMiddleware)

		r.Get("/bundles", h.ListBundles)
		r.Post("/bundles", h.CreateBundle)
		r.Delete("/bundles/{id}", h.DeleteBundle)

		r.Get("/upsells", h.ListUpsells)
		r.Post("/upsells", h.CreateUpsell)
		r.Delete("/upsells/{id}", h.DeleteUpsell)
	})
}

func (h *OfferHandler) ListBundles(w http.ResponseWriter, r *http.Request) {
	bundles := h.store.ListBundles()
	out := make([]BundleView, 0, len(bundles))
	for _, b := range bundles {
		out = append(out, h.bundleView(r.Context(), b))
	}
	middleware.RespondWithJSON(w, http.StatusOK, out)
}

// CreateBundle stores a bundle of at least two distinct products
func (h *OfferHandler) CreateBundle(w http.ResponseWriter, r *http.Request) {
	var req CreateBundleRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	bundle, err := h.store.CreateBundle(offers.Bundle{
		Name:        req.Name,
		ProductIDs:  req.ProductIDs,
		DiscountPct: req.DiscountPct,
	})
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to create bundle")
		return
	}

	h.logger.Info("Bundle created", zap.String("bundle_id", bundle.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, h.bundleView(r.Context(), bundle))
}

func (h *OfferHandler) DeleteBundle(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteBundle(id); err != nil {
		respondWithServiceError(w, h.logger, err, "failed to delete bundle")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *OfferHandler) ListUpsells(w http.ResponseWriter, r *http.Request) {
	upsells := h.store.ListUpsells()
	out := make([]UpsellView, 0, len(upsells))
	for _, u := range upsells {
		out = append(out, h.upsellView(r.Context(), u))
	}
	middleware.RespondWithJSON(w, http.StatusOK, out)
}

// CreateUpsell stores an upsell between two different products
func (h *OfferHandler) CreateUpsell(w http.ResponseWriter, r *http.Request) {
	var req CreateUpsellRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	upsell, err := h.store.CreateUpsell(offers.Upsell{
		ProductID:      req.ProductID,
		OfferProductID: req.OfferProductID,
		DiscountPct:    req.DiscountPct,
		Headline:       req.Headline,
	})
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to create upsell")
		return
	}

	h.logger.Info("Upsell created", zap.String("upsell_id", upsell.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, h.upsellView(r.Context(), upsell))
}

func (h *OfferHandler) DeleteUpsell(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteUpsell(id); err != nil {
		respondWithServiceError(w, h.logger, err, "failed to delete upsell")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *OfferHandler) bundleView(ctx context.Context, b offers.Bundle) BundleView {
	prices := make([]int64, 0, len(b.ProductIDs))
	for _, id := range b.ProductIDs {
		p, err := h.products.GetPublished(ctx, id)
		if err != nil {
			return BundleView{Bundle: b}
		}
		prices = append(prices, p.EffectivePrice())
	}
	price := offers.BundlePrice(prices, b.DiscountPct)
	return BundleView{Bundle: b, Price: &price}
}

func (h *OfferHandler) upsellView(ctx context.Context, u offers.Upsell) UpsellView {
	p, err := h.products.GetPublished(ctx, u.OfferProductID)
	if err != nil {
		return UpsellView{Upsell: u}
	}
	price := offers.UpsellPrice(p.EffectivePrice(), u.DiscountPct)
	return UpsellView{Upsell: u, Price: &price}
}
