package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/offers"
	"storefront/internal/repository"
	"storefront/internal/service"
	"storefront/internal/storage"
	"storefront/internal/wizard"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

// Mock repositories for testing
type mockProductRepository struct {
	mu       sync.Mutex
	products map[uuid.UUID]*domain.Product
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[product.ID] = product.Clone()
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, id uuid.UUID, changes repository.ProductChangeSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if changes.IsEmpty() {
		return repository.ErrEmptyChangeSet
	}
	p, ok := m.products[id]
	if !ok {
		return repository.ErrProductNotFound
	}
	changes.Apply(p)
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return p.Clone(), nil
}

func (m *mockProductRepository) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]*domain.Product, error) {
	return m.list(func(p *domain.Product) bool { return p.CreatorID == creatorID }), nil
}

func (m *mockProductRepository) ListPublished(ctx context.Context) ([]*domain.Product, error) {
	return m.list((*domain.Product).IsPublished), nil
}

func (m *mockProductRepository) list(keep func(*domain.Product) bool) []*domain.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Product
	for _, p := range m.products {
		if keep(p) {
			out = append(out, p.Clone())
		}
	}
	return out
}

type mockCreatorRepository struct{}

func (mockCreatorRepository) Create(ctx context.Context, creator *domain.Creator) error {
	return nil
}

// Every creator exists and none has a payment account connected
func (mockCreatorRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Creator, error) {
	return &domain.Creator{ID: id}, nil
}

type testServer struct {
	t        *testing.T
	router   chi.Router
	products *mockProductRepository
	service  service.ProductService
	offers   *offers.Store
	redis    *miniredis.Miniredis
	uploads  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger := zap.NewNop()
	products := &mockProductRepository{products: map[uuid.UUID]*domain.Product{}}
	svc := service.NewProductService(products, mockCreatorRepository{}, nil, "usd", logger)
	offerStore := offers.NewStore()
	uploads := t.TempDir()

	auth := middleware.AuthMiddleware(testSecret, logger)
	r := chi.NewRouter()
	NewProductHandler(svc, logger).RegisterRoutes(r, auth)
	NewWizardHandler(wizard.NewRedisStore(client, time.Hour), svc, logger).RegisterRoutes(r, auth)
	NewUploadHandler(storage.NewLocal(uploads, "/uploads"), logger).RegisterRoutes(r, auth)
	NewCheckoutHandler(logger).RegisterRoutes(r)
	NewOfferHandler(offerStore, svc, logger).RegisterRoutes(r, auth, middleware.RequireAdmin(logger))

	return &testServer{
		t:        t,
		router:   r,
		products: products,
		service:  svc,
		offers:   offerStore,
		redis:    mr,
		uploads:  uploads,
	}
}

func token(t *testing.T, creatorID uuid.UUID, role string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  creatorID.String(),
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return signed
}

// do sends a JSON request, authenticated as creatorID unless it is uuid.Nil
func (s *testServer) do(method, path string, creatorID uuid.UUID, body interface{}) *httptest.ResponseRecorder {
	return s.doAs(method, path, creatorID, middleware.RoleCreator, body)
}

func (s *testServer) doAs(method, path string, creatorID uuid.UUID, role string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			s.t.Fatalf("Failed to encode body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if creatorID != uuid.Nil {
		req.Header.Set("Authorization", "Bearer "+token(s.t, creatorID, role))
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[middleware.ErrorResponse](t, w).Error.Message
}

// seedPublished stores a published product directly in the repository
func (s *testServer) seedPublished(creatorID uuid.UUID, name string, price int64) *domain.Product {
	now := time.Now().UTC()
	p := &domain.Product{
		ID:          uuid.New(),
		CreatorID:   creatorID,
		Type:        domain.TypeService,
		Name:        name,
		Price:       price,
		Details:     domain.ServiceDetails{},
		PublishedAt: &now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_ = s.products.Create(context.Background(), p)
	return p
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, w.Code, w.Body.String())
	}
}
