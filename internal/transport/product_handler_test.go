package transport

import (
	"net/http"
	"testing"

	"storefront/internal/browse"
	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Feature: creator-storefront, Property 10: Invalid product payloads are rejected
func TestProperty_InvalidProductPayloadsRejected(t *testing.T) {
	srv := newTestServer(t)
	creator := uuid.New()

	invalid := []map[string]interface{}{
		{"name": "No type", "price": 100},
		{"type": "course", "price": 100},
		{"type": "course", "name": "Negative", "price": -5},
		{"type": "course", "name": "Bad thumb", "thumbnail_url": "not a url"},
		{"type": "spaceship", "name": "Unknown type"},
		{"type": "course", "name": "Bad details", "details": []int{1}},
	}

	properties := gopter.NewProperties(nil)

	properties.Property("malformed drafts never create a product", prop.ForAll(
		func(i int) bool {
			w := srv.do(http.MethodPost, "/api/creator/products", creator, invalid[i])
			if w.Code != http.StatusBadRequest && w.Code != http.StatusUnprocessableEntity {
				t.Logf("case %d: unexpected status %d", i, w.Code)
				return false
			}
			return errorMessage(t, w) != "" && len(srv.products.products) == 0
		},
		gen.IntRange(0, len(invalid)-1),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestCreateProduct_WithDetailsAndPublish(t *testing.T) {
	srv := newTestServer(t)
	creator := uuid.New()

	w := srv.do(http.MethodPost, "/api/creator/products", creator, map[string]interface{}{
		"type":    "external_link",
		"name":    "My portfolio",
		"price":   0,
		"details": map[string]interface{}{"destination_url": "https://example.com", "button_text": "Go"},
		"publish": true,
	})
	expectStatus(t, w, http.StatusCreated)

	created := decode[domain.Product](t, w)
	if created.CreatorID != creator || !created.IsPublished() {
		t.Errorf("unexpected product %+v", created)
	}
	d, ok := created.Details.(domain.ExternalLinkDetails)
	if !ok || d.DestinationURL != "https://example.com" || d.ButtonText != "Go" {
		t.Errorf("details lost: %#v", created.Details)
	}

	public := srv.do(http.MethodGet, "/api/products/"+created.ID.String(), uuid.Nil, nil)
	expectStatus(t, public, http.StatusOK)
}

func TestCreatorRoutesRequireToken(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/api/creator/products", "/api/creator/wizard/abc"} {
		w := srv.do(http.MethodGet, path, uuid.Nil, nil)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", path, w.Code)
		}
	}
}

func TestDraftsStayPrivate(t *testing.T) {
	srv := newTestServer(t)
	owner := uuid.New()

	w := srv.do(http.MethodPost, "/api/creator/products", owner, map[string]interface{}{
		"type": "course", "name": "Secret course", "price": 1000,
	})
	expectStatus(t, w, http.StatusCreated)
	draft := decode[domain.Product](t, w)
	path := "/api/creator/products/" + draft.ID.String()

	expectStatus(t, srv.do(http.MethodGet, "/api/products/"+draft.ID.String(), uuid.Nil, nil), http.StatusNotFound)
	expectStatus(t, srv.do(http.MethodGet, path, uuid.New(), nil), http.StatusNotFound)
	expectStatus(t, srv.do(http.MethodDelete, path, uuid.New(), nil), http.StatusNotFound)
	expectStatus(t, srv.do(http.MethodGet, path, owner, nil), http.StatusOK)

	list := decode[ProductListResponse](t, srv.do(http.MethodGet, "/api/creator/products", owner, nil))
	if len(list.Products) != 1 {
		t.Errorf("expected the draft in the creator listing, got %d", len(list.Products))
	}
}

func TestUpdateProduct_SparseAndDetails(t *testing.T) {
	srv := newTestServer(t)
	creator := uuid.New()

	created := decode[domain.Product](t, srv.do(http.MethodPost, "/api/creator/products", creator, map[string]interface{}{
		"type": "course", "name": "Go basics", "description": "Intro", "price": 2500,
	}))
	path := "/api/creator/products/" + created.ID.String()

	w := srv.do(http.MethodPatch, path, creator, map[string]interface{}{
		"price":   1900,
		"details": map[string]interface{}{"modules": []string{"Syntax", "Testing"}},
	})
	expectStatus(t, w, http.StatusOK)

	updated := decode[domain.Product](t, w)
	if updated.Price != 1900 || updated.Name != "Go basics" || updated.Description != "Intro" {
		t.Errorf("sparse update touched other fields: %+v", updated)
	}
	if d, ok := updated.Details.(domain.CourseDetails); !ok || len(d.Modules) != 2 {
		t.Errorf("details not updated: %#v", updated.Details)
	}

	expectStatus(t, srv.do(http.MethodPatch, path, creator, map[string]interface{}{}), http.StatusBadRequest)
	expectStatus(t, srv.do(http.MethodPatch, "/api/creator/products/not-a-uuid", creator, map[string]interface{}{"price": 1}), http.StatusBadRequest)
}

func TestPublishUnpublishAndDelete(t *testing.T) {
	srv := newTestServer(t)
	creator := uuid.New()

	created := decode[domain.Product](t, srv.do(http.MethodPost, "/api/creator/products", creator, map[string]interface{}{
		"type": "service", "name": "Logo design", "price": 15000,
	}))
	path := "/api/creator/products/" + created.ID.String()

	published := decode[domain.Product](t, srv.do(http.MethodPost, path+"/publish", creator, nil))
	if !published.IsPublished() {
		t.Fatalf("publish did not stamp published_at")
	}
	page := decode[browse.Page](t, srv.do(http.MethodGet, "/api/products", uuid.Nil, nil))
	if page.Total != 1 {
		t.Errorf("expected published product in browse, got %d", page.Total)
	}

	back := decode[domain.Product](t, srv.do(http.MethodPost, path+"/unpublish", creator, nil))
	if back.IsPublished() {
		t.Errorf("unpublish left published_at set")
	}

	expectStatus(t, srv.do(http.MethodDelete, path, creator, nil), http.StatusNoContent)
	expectStatus(t, srv.do(http.MethodGet, path, creator, nil), http.StatusNotFound)
}

func TestBrowse_QueryFilters(t *testing.T) {
	srv := newTestServer(t)
	creator := uuid.New()
	srv.seedPublished(creator, "Cheap sticker", 500)
	srv.seedPublished(creator, "Poster", 2500)
	srv.seedPublished(creator, "Canvas print", 9000)

	w := srv.do(http.MethodGet, "/api/products?min_price=10&max_price=50&sort=price_desc", uuid.Nil, nil)
	expectStatus(t, w, http.StatusOK)

	page := decode[browse.Page](t, w)
	if page.Total != 1 || page.Items[0].Name != "Poster" {
		t.Errorf("unexpected page %+v", page)
	}

	page = decode[browse.Page](t, srv.do(http.MethodGet, "/api/products?page_size=2&page=2&sort=price_asc", uuid.Nil, nil))
	if page.Total != 3 || len(page.Items) != 1 || page.Items[0].Name != "Canvas print" || page.TotalPages != 2 {
		t.Errorf("unexpected second page %+v", page)
	}
}

func TestBrowse_HugePageNumber(t *testing.T) {
	srv := newTestServer(t)
	srv.seedPublished(uuid.New(), "Poster", 2500)

	w := srv.do(http.MethodGet, "/api/products?page=100000000000000000&page_size=100", uuid.Nil, nil)
	expectStatus(t, w, http.StatusOK)
	if page := decode[browse.Page](t, w); len(page.Items) != 0 || page.Total != 1 {
		t.Errorf("unexpected page %+v", page)
	}
}
