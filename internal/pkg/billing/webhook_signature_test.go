package billing

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestVerifyWebhookSignature(t *testing.T) {
	secret := "whsec_test_secret"
	payload := []byte(`{"id":"evt_1","type":"invoice.paid","data":{"object":{}}}`)
	header := SignPayload(payload, secret, time.Now())

	if err := VerifyWebhookSignature(payload, header, secret); err != nil {
		t.Fatalf("expected valid signature, got %v", err)
	}

	if err := VerifyWebhookSignature([]byte(`{"tampered":true}`), header, secret); !errors.Is(err, ErrSignatureInvalid) {
		t.Errorf("tampered payload: expected ErrSignatureInvalid, got %v", err)
	}

	if err := VerifyWebhookSignature(payload, header, "whsec_other"); !errors.Is(err, ErrSignatureInvalid) {
		t.Errorf("wrong secret: expected ErrSignatureInvalid, got %v", err)
	}
}

func TestVerifyWebhookSignatureMissingSecret(t *testing.T) {
	payload := []byte(`{}`)
	header := SignPayload(payload, "whsec_test_secret", time.Now())

	if err := VerifyWebhookSignature(payload, header, ""); !errors.Is(err, ErrConfigMissing) {
		t.Fatalf("expected ErrConfigMissing, got %v", err)
	}
	if err := VerifyWebhookSignature(payload, header, "   "); !errors.Is(err, ErrConfigMissing) {
		t.Fatalf("blank secret: expected ErrConfigMissing, got %v", err)
	}
}

func TestVerifyWebhookSignatureTimestampTolerance(t *testing.T) {
	secret := "whsec_test_secret"
	payload := []byte(`{"id":"evt_1"}`)

	stale := SignPayload(payload, secret, time.Now().Add(-6*time.Minute))
	if err := VerifyWebhookSignature(payload, stale, secret); !errors.Is(err, ErrSignatureInvalid) {
		t.Errorf("stale timestamp: expected ErrSignatureInvalid, got %v", err)
	}

	future := SignPayload(payload, secret, time.Now().Add(6*time.Minute))
	if err := VerifyWebhookSignature(payload, future, secret); !errors.Is(err, ErrSignatureInvalid) {
		t.Errorf("future timestamp: expected ErrSignatureInvalid, got %v", err)
	}

	// Inside the window on both sides.
	recent := SignPayload(payload, secret, time.Now().Add(-4*time.Minute))
	if err := VerifyWebhookSignature(payload, recent, secret); err != nil {
		t.Errorf("recent timestamp: expected valid, got %v", err)
	}
}

func TestVerifyWebhookSignatureMalformedHeader(t *testing.T) {
	secret := "whsec_test_secret"
	payload := []byte(`{}`)

	cases := []string{
		"",
		"t=abc,v1=deadbeef",
		"t=1700000000",
		"v1=deadbeef",
		"nonsense",
	}
	for _, header := range cases {
		if err := VerifyWebhookSignature(payload, header, secret); !errors.Is(err, ErrSignatureInvalid) {
			t.Errorf("header %q: expected ErrSignatureInvalid, got %v", header, err)
		}
	}

	valid := SignPayload(payload, secret, time.Now())
	broken := strings.Replace(valid, "v1=", "v1=zz", 1)
	if err := VerifyWebhookSignature(payload, broken, secret); !errors.Is(err, ErrSignatureInvalid) {
		t.Errorf("non-hex digest: expected ErrSignatureInvalid, got %v", err)
	}
}
