package forms

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestFormatExpiry(t *testing.T) {
	cases := map[string]string{
		"1234":   "12/34",
		"1":      "1",
		"12":     "12",
		"123":    "12/3",
		"123456": "12/34",
		"12/34":  "12/34",
		"ab":     "",
	}

	for input, want := range cases {
		if got := FormatExpiry(input); got != want {
			t.Errorf("FormatExpiry(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestFormatCardNumber(t *testing.T) {
	if got := FormatCardNumber("4111111111111111", 0); got != "4111 1111 1111 1111" {
		t.Errorf("unexpected card format: %q", got)
	}
	if got := FormatCardNumber("4111-1111-11", 0); got != "4111 1111 11" {
		t.Errorf("unexpected card format: %q", got)
	}
	if got := FormatCardNumber("41111111111111119999", 0); got != "4111 1111 1111 1111" {
		t.Errorf("expected truncation to max length, got %q", got)
	}
}

// Feature: creator-storefront, Property 1: Card formatting only keeps digits in groups of four
func TestProperty_CardNumberGroupsOfFour(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("formatted card numbers are digit groups of at most four", prop.ForAll(
		func(input string) bool {
			out := FormatCardNumber(input, 0)
			if len(out) > CardNumberMaxLength {
				return false
			}
			if out == "" {
				return true
			}
			for _, group := range strings.Split(out, " ") {
				if len(group) == 0 || len(group) > 4 {
					return false
				}
				if digitsOnly(group) != group {
					return false
				}
			}
			return true
		},
		gen.AnyString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestIsValidURL(t *testing.T) {
	cases := map[string]bool{
		"":                    true,
		"not a url":           false,
		"https://example.com": true,
		"/relative/path":      false,
		"mailto:me@x.io":      true,
	}

	for input, want := range cases {
		if got := IsValidURL(input); got != want {
			t.Errorf("IsValidURL(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNumericCoercion(t *testing.T) {
	if got := ParseFloatOr("abc", 1.5); got != 1.5 {
		t.Errorf("expected default, got %v", got)
	}
	if got := ParseFloatOr(" 2.25 ", 0); got != 2.25 {
		t.Errorf("expected 2.25, got %v", got)
	}
	if got := ParseIntOr("", 0); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
	if got := ParseIntOr("7.9", 0); got != 7 {
		t.Errorf("expected 7, got %d", got)
	}
	if got := ParseIntAtLeast("-3", 1); got != 1 {
		t.Errorf("expected floor 1, got %d", got)
	}
	if got := ParseCents("19.99", 0); got != 1999 {
		t.Errorf("expected 1999, got %d", got)
	}
	if got := ParseCents("-1", 0); got != 0 {
		t.Errorf("expected default for negative amount, got %d", got)
	}
	if got := FormatCents(5000); got != "50.00" {
		t.Errorf("expected 50.00, got %s", got)
	}
}

// Feature: creator-storefront, Property 2: Coercion never panics and always yields a value
func TestProperty_CoercionNeverBlocks(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("ParseIntAtLeast respects the floor for any input", prop.ForAll(
		func(input string, floor int) bool {
			return ParseIntAtLeast(input, floor) >= floor
		},
		gen.AnyString(),
		gen.IntRange(-100, 100),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestValidateCardPayment_ReportsOnlyMissingName(t *testing.T) {
	errs := ValidateCardPayment(CardPayment{
		CardNumber:     "4111 1111 1111 1111",
		Expiry:         "12/30",
		CVC:            "123",
		CardholderName: "   ",
	})

	if len(errs) != 1 {
		t.Fatalf("expected exactly one error, got %v", errs)
	}
	if _, ok := errs["cardholder_name"]; !ok {
		t.Errorf("expected cardholder_name error, got %v", errs)
	}
}

func TestValidateCardPayment_ReportsAllFailures(t *testing.T) {
	errs := ValidateCardPayment(CardPayment{
		CardNumber: "4111 1111",
		Expiry:     "13/30",
		CVC:        "12",
	})

	for _, field := range []string{"card_number", "expiry", "cvc", "cardholder_name"} {
		if _, ok := errs[field]; !ok {
			t.Errorf("expected %s error, got %v", field, errs)
		}
	}
}

func TestValidateCardPayment_Valid(t *testing.T) {
	errs := ValidateCardPayment(CardPayment{
		CardNumber:     "4111111111111111",
		Expiry:         "01/29",
		CVC:            "1234",
		CardholderName: "Ada Lovelace",
	})
	if len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
}

// Feature: creator-storefront, Property 3: Card numbers without exactly 16 digits are rejected
func TestProperty_CardNumberLength(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("card number validation requires 16 digits", prop.ForAll(
		func(digits string) bool {
			errs := ValidateCardPayment(CardPayment{
				CardNumber:     FormatCardNumber(digits, 64),
				Expiry:         "12/30",
				CVC:            "123",
				CardholderName: "Test",
			})
			_, rejected := errs["card_number"]
			return rejected == (len(digits) != 16)
		},
		gen.NumString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
