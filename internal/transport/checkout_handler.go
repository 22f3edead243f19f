package transport

import (
	"math"
	"net/http"

	"storefront/internal/forms"
	"storefront/internal/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CheckoutValidation echoes the card form in its display format
type CheckoutValidation struct {
	Valid      bool   `json:"valid"`
	CardNumber string `json:"card_number"`
	Expiry     string `json:"expiry"`
}

// CheckoutHandler validates the card payment form before it is handed to the processor
type CheckoutHandler struct {
	logger *zap.Logger
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{logger: logger}
}

// RegisterRoutes registers the checkout routes
func (h *CheckoutHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/checkout/validate", h.Validate)
}

// Validate formats the card number and expiry, then reports every invalid
// field at once
func (h *CheckoutHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var payment forms.CardPayment
	if err := middleware.DecodeJSON(r, &payment); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Group without truncating so extra digits still fail validation
	payment.CardNumber = forms.FormatCardNumber(payment.CardNumber, math.MaxInt)
	payment.Expiry = maskExpiry(payment.Expiry)

	if errs := forms.ValidateCardPayment(payment); len(errs) > 0 {
		h.logger.Debug("Card payment rejected", zap.Int("invalid_fields", len(errs)))
		middleware.RespondWithFieldErrors(w, errs)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, CheckoutValidation{
		Valid:      true,
		CardNumber: payment.CardNumber,
		Expiry:     payment.Expiry,
	})
}

// maskExpiry formats s as MM/YY unless it carries more than four digits,
// which is left as is to fail validation
func maskExpiry(s string) string {
	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits > 4 {
		return s
	}
	return forms.FormatExpiry(s)
}
