package transport

import (
	"errors"
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/offers"
	"storefront/internal/repository"
	"storefront/internal/service"
	"storefront/internal/wizard"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// respondWithServiceError maps domain errors onto HTTP statuses. Anything
// unrecognised is logged and reported as a 500 with a generic message.
func respondWithServiceError(w http.ResponseWriter, logger *zap.Logger, err error, fallback string) {
	var stepErr *wizard.StepError

	switch {
	case errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, wizard.ErrSessionNotFound),
		errors.Is(err, offers.ErrBundleNotFound),
		errors.Is(err, offers.ErrUpsellNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrForbidden):
		// Other creators' products are reported as missing
		middleware.RespondWithError(w, http.StatusNotFound, repository.ErrProductNotFound.Error())
	case errors.As(err, &stepErr):
		middleware.RespondWithErrorDetails(w, http.StatusUnprocessableEntity, stepErr.Message, map[string]interface{}{
			"step": stepErr.Step,
		})
	case errors.Is(err, service.ErrInvalidProduct),
		errors.Is(err, repository.ErrEmptyChangeSet),
		errors.Is(err, offers.ErrBundleTooSmall),
		errors.Is(err, offers.ErrSelfUpsell):
		middleware.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		logger.Error(fallback, zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}

// uuidParam reads a UUID path parameter, answering 400 when it is malformed
func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// creatorID reads the authenticated creator, answering 401 when absent
func creatorID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := middleware.GetCreatorID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return uuid.Nil, false
	}
	return id, true
}
