package transport

import (
	"net/http"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/wizard"

	"github.com/google/uuid"
)

func startWizard(t *testing.T, srv *testServer, creator uuid.UUID, body map[string]interface{}) *wizard.Session {
	t.Helper()
	w := srv.do(http.MethodPost, "/api/creator/wizard", creator, body)
	expectStatus(t, w, http.StatusCreated)
	return decode[WizardResponse](t, w).Session
}

func send(srv *testServer, creator uuid.UUID, sid, kind string, payload interface{}) int {
	w := srv.do(http.MethodPost, "/api/creator/wizard/"+sid+"/messages", creator, map[string]interface{}{
		"kind":    kind,
		"payload": payload,
	})
	return w.Code
}

func TestWizard_StandardFlowPublishes(t *testing.T) {
	srv := newTestServer(t)
	creator := uuid.New()
	s := startWizard(t, srv, creator, map[string]interface{}{"shape": "standard"})
	base := "/api/creator/wizard/" + s.ID

	// The type step blocks until a type is chosen
	w := srv.do(http.MethodPost, base+"/next", creator, nil)
	expectStatus(t, w, http.StatusUnprocessableEntity)
	if msg := errorMessage(t, w); msg != "Please select a product type" {
		t.Errorf("unexpected banner %q", msg)
	}
	stored := decode[WizardResponse](t, srv.do(http.MethodGet, base, creator, nil))
	if stored.Session.Banner == "" {
		t.Errorf("blocked step should persist its banner")
	}
	expectStatus(t, srv.do(http.MethodDelete, base+"/banner", creator, nil), http.StatusOK)

	if code := send(srv, creator, s.ID, "select_type", map[string]string{"type": "external_link"}); code != http.StatusOK {
		t.Fatalf("select_type failed: %d", code)
	}
	expectStatus(t, srv.do(http.MethodPost, base+"/next", creator, nil), http.StatusOK)

	if code := send(srv, creator, s.ID, "update_core", map[string]interface{}{
		"name": "Portfolio", "description": "My work", "price": 0,
	}); code != http.StatusOK {
		t.Fatalf("update_core failed: %d", code)
	}
	if code := send(srv, creator, s.ID, "update_details", map[string]string{"destination_url": "not a url"}); code != http.StatusUnprocessableEntity {
		t.Errorf("expected invalid URL to be rejected, got %d", code)
	}
	if code := send(srv, creator, s.ID, "update_details", map[string]string{"destination_url": "https://example.com"}); code != http.StatusOK {
		t.Fatalf("update_details failed: %d", code)
	}

	w = srv.do(http.MethodPost, base+"/save", creator, map[string]bool{"publish": true})
	expectStatus(t, w, http.StatusOK)

	saved := decode[WizardResponse](t, w).Session.Draft
	if saved.ID == uuid.Nil || !saved.IsPublished() {
		t.Fatalf("expected a published product, got %+v", saved)
	}
	expectStatus(t, srv.do(http.MethodGet, "/api/products/"+saved.ID.String(), uuid.Nil, nil), http.StatusOK)
}

func TestWizard_PublishBlockedByInvalidStep(t *testing.T) {
	srv := newTestServer(t)
	creator := uuid.New()
	s := startWizard(t, srv, creator, map[string]interface{}{"shape": "standard"})

	send(srv, creator, s.ID, "select_type", map[string]string{"type": "download"})
	send(srv, creator, s.ID, "update_core", map[string]string{"name": "Presets", "description": "Lightroom presets"})

	w := srv.do(http.MethodPost, "/api/creator/wizard/"+s.ID+"/save", creator, map[string]bool{"publish": true})
	expectStatus(t, w, http.StatusUnprocessableEntity)
	if len(srv.products.products) != 0 {
		t.Errorf("blocked publish must not store a product")
	}

	// A draft save needs no validation
	expectStatus(t, srv.do(http.MethodPost, "/api/creator/wizard/"+s.ID+"/save", creator, map[string]bool{"publish": false}), http.StatusOK)
	if len(srv.products.products) != 1 {
		t.Errorf("expected the draft to be stored")
	}
}

func TestWizard_EditHydratesFromProduct(t *testing.T) {
	srv := newTestServer(t)
	creator := uuid.New()
	product := srv.seedPublished(creator, "Consulting", 9000)

	s := startWizard(t, srv, creator, map[string]interface{}{"shape": "standard", "product_id": product.ID})
	if s.Step != 2 || s.Draft.ID != product.ID || s.Draft.Type != domain.TypeService {
		t.Errorf("unexpected hydrated session %+v", s)
	}

	w := srv.do(http.MethodPost, "/api/creator/wizard", uuid.New(), map[string]interface{}{"shape": "standard", "product_id": product.ID})
	expectStatus(t, w, http.StatusNotFound)

	w = srv.do(http.MethodPost, "/api/creator/wizard", creator, map[string]interface{}{"shape": "physical", "product_id": product.ID})
	expectStatus(t, w, http.StatusUnprocessableEntity)
}

func TestWizard_SessionsArePrivateAndDiscardable(t *testing.T) {
	srv := newTestServer(t)
	creator := uuid.New()
	s := startWizard(t, srv, creator, map[string]interface{}{"shape": "physical"})
	base := "/api/creator/wizard/" + s.ID

	expectStatus(t, srv.do(http.MethodGet, base, uuid.New(), nil), http.StatusNotFound)

	resp := decode[WizardResponse](t, srv.do(http.MethodGet, base, creator, nil))
	if resp.Session.Draft.Type != domain.TypePhysical || len(resp.Preview) == 0 {
		t.Errorf("unexpected physical session %+v", resp)
	}

	expectStatus(t, srv.do(http.MethodDelete, base, creator, nil), http.StatusNoContent)
	expectStatus(t, srv.do(http.MethodGet, base, creator, nil), http.StatusNotFound)
}

func TestWizard_BadRequests(t *testing.T) {
	srv := newTestServer(t)
	creator := uuid.New()

	expectStatus(t, srv.do(http.MethodPost, "/api/creator/wizard", creator, map[string]string{"shape": "circular"}), http.StatusBadRequest)

	s := startWizard(t, srv, creator, map[string]interface{}{"shape": "standard"})
	if code := send(srv, creator, s.ID, "teleport", nil); code != http.StatusBadRequest {
		t.Errorf("unknown message kind: expected 400, got %d", code)
	}
	if code := send(srv, creator, s.ID, "generate_variants", nil); code != http.StatusUnprocessableEntity {
		t.Errorf("variants on a non-physical draft: expected 422, got %d", code)
	}

	w := srv.do(http.MethodPost, "/api/creator/wizard/"+s.ID+"/previous", creator, nil)
	expectStatus(t, w, http.StatusOK)
	if decode[WizardResponse](t, w).Session.Step != 1 {
		t.Errorf("previous at the first step should stay put")
	}
}
