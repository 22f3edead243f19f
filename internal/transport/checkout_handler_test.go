package transport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

type fieldErrorsResponse struct {
	Error struct {
		Details struct {
			Fields map[string]string `json:"fields"`
		} `json:"details"`
	} `json:"error"`
}

func TestCheckout_ValidCardIsFormatted(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(http.MethodPost, "/api/checkout/validate", uuid.Nil, map[string]string{
		"card_number":     "4242424242424242",
		"expiry":          "1229",
		"cvc":             "123",
		"cardholder_name": "Ada Lovelace",
	})
	expectStatus(t, w, http.StatusOK)

	got := decode[CheckoutValidation](t, w)
	if !got.Valid || got.CardNumber != "4242 4242 4242 4242" || got.Expiry != "12/29" {
		t.Errorf("unexpected validation %+v", got)
	}
}

func TestCheckout_ReportsEveryInvalidField(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(http.MethodPost, "/api/checkout/validate", uuid.Nil, map[string]string{
		"card_number":     "4242",
		"expiry":          "13",
		"cvc":             "1",
		"cardholder_name": "  ",
	})
	expectStatus(t, w, http.StatusUnprocessableEntity)

	fields := decode[fieldErrorsResponse](t, w).Error.Details.Fields
	for _, f := range []string{"card_number", "expiry", "cvc", "cardholder_name"} {
		if fields[f] == "" {
			t.Errorf("missing error for %s in %v", f, fields)
		}
	}

	expectStatus(t, srv.do(http.MethodPost, "/api/checkout/validate", uuid.Nil, "{"), http.StatusBadRequest)
}

func TestCheckout_ExtraDigitsAreRejected(t *testing.T) {
	srv := newTestServer(t)

	for _, tc := range []struct {
		field, number, expiry string
	}{
		{"card_number", "41111111111111119999", "1229"},
		{"card_number", "4111 1111 1111 1111 1", "1229"},
		{"expiry", "4111111111111111", "12/299"},
	} {
		w := srv.do(http.MethodPost, "/api/checkout/validate", uuid.Nil, map[string]string{
			"card_number":     tc.number,
			"expiry":          tc.expiry,
			"cvc":             "123",
			"cardholder_name": "Ada Lovelace",
		})
		expectStatus(t, w, http.StatusUnprocessableEntity)
		if fields := decode[fieldErrorsResponse](t, w).Error.Details.Fields; fields[tc.field] == "" {
			t.Errorf("%s/%s: expected a %s error, got %v", tc.number, tc.expiry, tc.field, fields)
		}
	}
}

func TestCheckout_OversizedBodyIsRejected(t *testing.T) {
	srv := newTestServer(t)

	body := `{"cardholder_name":"` + strings.Repeat("a", 2<<20) + `"}`
	expectStatus(t, srv.do(http.MethodPost, "/api/checkout/validate", uuid.Nil, body), http.StatusBadRequest)
}

// Feature: creator-storefront, Property 11: Any 16-digit card with a valid form passes checkout validation
func TestProperty_CheckoutAcceptsWellFormedCards(t *testing.T) {
	srv := newTestServer(t)

	properties := gopter.NewProperties(nil)

	properties.Property("well formed cards validate regardless of separators", prop.ForAll(
		func(digits []int, month int, year int, sep string) bool {
			number := ""
			for i, d := range digits {
				if i > 0 && i%4 == 0 {
					number += sep
				}
				number += fmt.Sprint(d)
			}

			w := srv.do(http.MethodPost, "/api/checkout/validate", uuid.Nil, map[string]string{
				"card_number":     number,
				"expiry":          fmt.Sprintf("%02d%02d", month, year),
				"cvc":             "1234",
				"cardholder_name": "Grace Hopper",
			})
			if w.Code != http.StatusOK {
				return false
			}
			var got CheckoutValidation
			return json.Unmarshal(w.Body.Bytes(), &got) == nil && len(got.CardNumber) == 19
		},
		gen.SliceOfN(16, gen.IntRange(0, 9)),
		gen.IntRange(1, 12),
		gen.IntRange(0, 99),
		gen.OneConstOf("", " ", "-"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
