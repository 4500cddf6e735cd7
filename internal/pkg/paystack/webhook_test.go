package paystack

import "testing"

const testSecret = "sk_test_abc123"

func TestVerifySignatureRoundTrip(t *testing.T) {
	body := []byte(`{"event":"charge.success","data":{"reference":"res_1","status":"success","amount":18150,"currency":"NGN"}}`)

	sig := ComputeSignature(testSecret, body)
	if !VerifySignature(testSecret, body, sig) {
		t.Fatal("expected signature to verify")
	}
}

func TestVerifySignatureRejectsTamperedBody(t *testing.T) {
	body := []byte(`{"event":"charge.success","data":{"amount":18150}}`)
	sig := ComputeSignature(testSecret, body)

	tampered := []byte(`{"event":"charge.success","data":{"amount":99999}}`)
	if VerifySignature(testSecret, tampered, sig) {
		t.Fatal("expected tampered body to fail verification")
	}
}

func TestVerifySignatureRejectsWrongKey(t *testing.T) {
	body := []byte(`{"event":"charge.success"}`)
	sig := ComputeSignature("sk_live_other", body)
	if VerifySignature(testSecret, body, sig) {
		t.Fatal("expected signature under wrong key to fail")
	}
}

func TestParseWebhook(t *testing.T) {
	body := []byte(`{"event":"charge.success","data":{"reference":"res_42","status":"success","amount":18150,"currency":"NGN"}}`)
	sig := ComputeSignature(testSecret, body)

	event, err := ParseWebhook(testSecret, body, sig)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !event.IsChargeSuccess() {
		t.Fatal("expected charge.success event")
	}
	if event.Data.Reference != "res_42" || event.Data.Amount != 18150 {
		t.Fatalf("unexpected data: %+v", event.Data)
	}
}

func TestParseWebhookBadSignature(t *testing.T) {
	body := []byte(`{"event":"charge.success"}`)
	if _, err := ParseWebhook(testSecret, body, "deadbeef"); err == nil {
		t.Fatal("expected error for bad signature")
	}
}
