package razorpay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

func TestToPaise(t *testing.T) {
	paise, err := ToPaise(decimal.RequireFromString("1234.50"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if paise != 123450 {
		t.Fatalf("expected 123450 paise, got %d", paise)
	}
}

func TestToPaiseRejectsNonPositive(t *testing.T) {
	if _, err := ToPaise(decimal.Zero); !errors.Is(err, ErrAmountInvalid) {
		t.Fatalf("expected ErrAmountInvalid for zero, got %v", err)
	}
	if _, err := ToPaise(decimal.NewFromInt(-10)); !errors.Is(err, ErrAmountInvalid) {
		t.Fatalf("expected ErrAmountInvalid for negative, got %v", err)
	}
}

func TestVerifySignature(t *testing.T) {
	cfg := &Config{KeyID: "rzp_test_key", KeySecret: "secret"}
	sig := SignPayload("order_abc|pay_xyz", "secret")

	err := VerifySignature(cfg, CallbackInput{
		GatewayOrderID:   "order_abc",
		GatewayPaymentID: "pay_xyz",
		Signature:        sig,
	})
	if err != nil {
		t.Fatalf("expected valid signature, got %v", err)
	}
}

func TestVerifySignatureRejectsTampered(t *testing.T) {
	cfg := &Config{KeyID: "rzp_test_key", KeySecret: "secret"}
	sig := SignPayload("order_abc|pay_xyz", "secret")

	err := VerifySignature(cfg, CallbackInput{
		GatewayOrderID:   "order_abc",
		GatewayPaymentID: "pay_other",
		Signature:        sig,
	})
	if !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected ErrSignatureInvalid, got %v", err)
	}
}

func TestVerifySignatureRejectsEmptyFields(t *testing.T) {
	cfg := &Config{KeyID: "rzp_test_key", KeySecret: "secret"}
	err := VerifySignature(cfg, CallbackInput{})
	if !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected ErrSignatureInvalid, got %v", err)
	}
}

func TestCreateOrder(t *testing.T) {
	var gotPath string
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		user, pass, ok := r.BasicAuth()
		if !ok || user != "rzp_test_key" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":       "order_abc123",
			"amount":   149900,
			"currency": "INR",
			"status":   "created",
		})
	}))
	defer server.Close()

	cfg := &Config{KeyID: "rzp_test_key", KeySecret: "secret", APIBase: server.URL}
	cfg.normalize()
	result, err := CreateOrder(context.Background(), cfg, CreateInput{
		Receipt: "KH20260901123456",
		Amount:  decimal.RequireFromString("1499"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/orders" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotBody["amount"].(float64) != 149900 {
		t.Fatalf("expected 149900 paise in request, got %v", gotBody["amount"])
	}
	if result.GatewayOrderID != "order_abc123" {
		t.Fatalf("unexpected gateway order id %q", result.GatewayOrderID)
	}
	if result.AmountPaise != 149900 {
		t.Fatalf("unexpected amount %d", result.AmountPaise)
	}
}

func TestCreateOrderGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{
				"code":        "BAD_REQUEST_ERROR",
				"description": "amount exceeds maximum",
			},
		})
	}))
	defer server.Close()

	cfg := &Config{KeyID: "rzp_test_key", KeySecret: "secret", APIBase: server.URL}
	cfg.normalize()
	_, err := CreateOrder(context.Background(), cfg, CreateInput{
		Receipt: "KH20260901123456",
		Amount:  decimal.NewFromInt(100),
	})
	if !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("expected ErrRequestFailed, got %v", err)
	}
}

func TestCreateOrderRejectsInvalidAmount(t *testing.T) {
	cfg := &Config{KeyID: "rzp_test_key", KeySecret: "secret"}
	cfg.normalize()
	_, err := CreateOrder(context.Background(), cfg, CreateInput{
		Receipt: "KH20260901123456",
		Amount:  decimal.Zero,
	})
	if !errors.Is(err, ErrAmountInvalid) {
		t.Fatalf("expected ErrAmountInvalid, got %v", err)
	}
}

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig(map[string]interface{}{
		"key_id":     " rzp_test_key ",
		"key_secret": "secret",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIBase != defaultAPIBase {
		t.Fatalf("expected default api base, got %q", cfg.APIBase)
	}
	if cfg.Currency != "INR" {
		t.Fatalf("expected INR currency, got %q", cfg.Currency)
	}
	if cfg.KeyID != "rzp_test_key" {
		t.Fatalf("expected trimmed key id, got %q", cfg.KeyID)
	}
}

func TestValidateConfig(t *testing.T) {
	if err := ValidateConfig(nil); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid for nil config, got %v", err)
	}
	if err := ValidateConfig(&Config{KeyID: "k"}); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid for missing secret, got %v", err)
	}
	if err := ValidateConfig(&Config{KeyID: "k", KeySecret: "s"}); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}
