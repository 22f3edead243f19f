package transport

import (
	"errors"
	"net/http"

	"storefront/internal/forms"
	"storefront/internal/metrics"
	"storefront/internal/middleware"
	"storefront/internal/panels"
	"storefront/internal/service"
	"storefront/internal/wizard"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StartWizardRequest opens a session, empty or hydrated from a stored product
type StartWizardRequest struct {
	Shape     wizard.Shape `json:"shape" validate:"required,oneof=standard physical"`
	ProductID *uuid.UUID   `json:"product_id"`
}

// SaveWizardRequest persists the draft, publishing it when asked
type SaveWizardRequest struct {
	Publish bool `json:"publish"`
}

// WizardResponse is a session with the read-only summary of its draft
type WizardResponse struct {
	Session *wizard.Session      `json:"session"`
	Preview []panels.PreviewLine `json:"preview"`
}

// WizardHandler drives product wizard sessions stored between requests
type WizardHandler struct {
	store          wizard.Store
	productService service.ProductService
	logger         *zap.Logger
}

// NewWizardHandler creates a new WizardHandler
func NewWizardHandler(store wizard.Store, productService service.ProductService, logger *zap.Logger) *WizardHandler {
	return &WizardHandler{
		store:          store,
		productService: productService,
		logger:         logger,
	}
}

// RegisterRoutes registers the wizard routes, all of which require a creator
func (h *WizardHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/creator/wizard", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.Start)
		r.Route("/{sid}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Delete("/", h.Discard)
			r.Post("/messages", h.Apply)
			r.Post("/next", h.Next)
			r.Post("/previous", h.Previous)
			r.Post("/save", h.Save)
			r.Delete("/banner", h.DismissBanner)
		})
	})
}

// Start opens a new session
func (h *WizardHandler) Start(w http.ResponseWriter, r *http.Request) {
	creator, ok := creatorID(w, r)
	if !ok {
		return
	}

	var req StartWizardRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	var (
		session *wizard.Session
		err     error
	)
	if req.ProductID != nil {
		product, getErr := h.productService.Get(r.Context(), creator, *req.ProductID)
		if getErr != nil {
			respondWithServiceError(w, h.logger, getErr, "failed to load product")
			return
		}
		session, err = wizard.FromProduct(product, req.Shape)
	} else {
		session, err = wizard.New(creator, req.Shape)
	}
	if err != nil {
		middleware.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := h.store.Save(r.Context(), session); err != nil {
		respondWithServiceError(w, h.logger, err, "failed to start wizard")
		return
	}

	h.logger.Debug("Wizard session started",
		zap.String("session_id", session.ID),
		zap.String("shape", string(session.Shape)),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, view(session))
}

// Get returns the session and its preview
func (h *WizardHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, ok := h.load(w, r)
	if !ok {
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, view(session))
}

// Discard drops the session without touching any stored product
func (h *WizardHandler) Discard(w http.ResponseWriter, r *http.Request) {
	session, ok := h.load(w, r)
	if !ok {
		return
	}
	if err := h.store.Delete(r.Context(), session.ID); err != nil {
		respondWithServiceError(w, h.logger, err, "failed to discard wizard")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Apply runs one reducer message against the draft
func (h *WizardHandler) Apply(w http.ResponseWriter, r *http.Request) {
	session, ok := h.load(w, r)
	if !ok {
		return
	}

	var env wizard.Envelope
	if err := middleware.DecodeAndValidate(r, &env); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	msg, err := env.Decode()
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := session.Apply(msg); err != nil {
		var fieldErr *panels.FieldError
		if errors.As(err, &fieldErr) {
			middleware.RespondWithFieldErrors(w, map[string]string{fieldErr.Field: fieldErr.Message})
			return
		}
		middleware.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	h.persist(w, r, session, http.StatusOK)
}

// Next validates the active step and advances. A blocked step is persisted
// with its banner and reported as 422.
func (h *WizardHandler) Next(w http.ResponseWriter, r *http.Request) {
	session, ok := h.load(w, r)
	if !ok {
		return
	}

	stepErr := session.Next()
	if err := h.store.Save(r.Context(), session); err != nil {
		respondWithServiceError(w, h.logger, err, "failed to store wizard session")
		return
	}
	if stepErr != nil {
		respondWithServiceError(w, h.logger, stepErr, "failed to advance wizard")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view(session))
}

// Previous moves back one step
func (h *WizardHandler) Previous(w http.ResponseWriter, r *http.Request) {
	session, ok := h.load(w, r)
	if !ok {
		return
	}
	session.Previous()
	h.persist(w, r, session, http.StatusOK)
}

// Save persists the draft as a product. The session survives a failed save
// so the creator can retry.
func (h *WizardHandler) Save(w http.ResponseWriter, r *http.Request) {
	session, ok := h.load(w, r)
	if !ok {
		return
	}

	var req SaveWizardRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	mode := "draft"
	if req.Publish {
		mode = "publish"
	}

	saveErr := session.Save(r.Context(), h.productService, req.Publish)
	metrics.RecordWizardSave(mode, saveErr)

	if err := h.store.Save(r.Context(), session); err != nil {
		respondWithServiceError(w, h.logger, err, "failed to store wizard session")
		return
	}
	if saveErr != nil {
		h.logger.Warn("Wizard save failed",
			zap.String("session_id", session.ID),
			zap.String("mode", mode),
			zap.Error(saveErr),
		)
		respondWithServiceError(w, h.logger, saveErr, session.Banner)
		return
	}

	h.logger.Info("Wizard saved product",
		zap.String("session_id", session.ID),
		zap.String("product_id", session.Draft.ID.String()),
		zap.String("mode", mode),
	)
	middleware.RespondWithJSON(w, http.StatusOK, view(session))
}

// DismissBanner clears the page-level message
func (h *WizardHandler) DismissBanner(w http.ResponseWriter, r *http.Request) {
	session, ok := h.load(w, r)
	if !ok {
		return
	}
	session.DismissBanner()
	h.persist(w, r, session, http.StatusOK)
}

// load reads the session named in the path. Sessions of other creators are
// reported as missing.
func (h *WizardHandler) load(w http.ResponseWriter, r *http.Request) (*wizard.Session, bool) {
	creator, ok := creatorID(w, r)
	if !ok {
		return nil, false
	}

	session, err := h.store.Load(r.Context(), chi.URLParam(r, "sid"))
	if err == nil && session.CreatorID != creator {
		err = wizard.ErrSessionNotFound
	}
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to load wizard session")
		return nil, false
	}
	return session, true
}

func (h *WizardHandler) persist(w http.ResponseWriter, r *http.Request, session *wizard.Session, status int) {
	if err := h.store.Save(r.Context(), session); err != nil {
		respondWithServiceError(w, h.logger, err, "failed to store wizard session")
		return
	}
	middleware.RespondWithJSON(w, status, view(session))
}

// view renders the core fields followed by the active panel's summary
func view(s *wizard.Session) WizardResponse {
	d := s.Draft
	preview := []panels.PreviewLine{
		{Label: "Name", Value: orDash(d.Name)},
		{Label: "Price", Value: forms.FormatCents(d.Price)},
	}
	if d.DiscountPrice != nil {
		preview = append(preview, panels.PreviewLine{Label: "Discount price", Value: forms.FormatCents(*d.DiscountPrice)})
	}

	if d.Type != "" {
		if panel, err := panels.For(d.Type); err == nil {
			preview = append(preview, panel.Preview(d.Details)...)
		}
	}
	return WizardResponse{Session: s, Preview: preview}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
