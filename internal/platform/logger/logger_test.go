package logger

import "testing"

func TestSanitizeKVsRedactsCredentials(t *testing.T) {
	out := sanitizeKVs([]interface{}{
		"access_token", "abc",
		"email", "someone@example.com",
		"platform", "instagram",
	})
	if len(out) != 6 {
		t.Fatalf("unexpected length: %d", len(out))
	}
	if out[1] != "[REDACTED]" {
		t.Fatalf("access_token not redacted: %v", out[1])
	}
	if out[3] != "[REDACTED]" {
		t.Fatalf("email not redacted: %v", out[3])
	}
	if out[5] != "instagram" {
		t.Fatalf("platform should pass through, got %v", out[5])
	}
}

func TestSanitizeKVsHashesUserIDs(t *testing.T) {
	out := sanitizeKVs([]interface{}{"user_id", "0b6c7c5e-1111-2222-3333-444455556666"})
	got, ok := out[1].(string)
	if !ok || len(got) != len("hash:")+12 || got[:5] != "hash:" {
		t.Fatalf("expected hashed user id, got %v", out[1])
	}
}

func TestSanitizeKVsOddLength(t *testing.T) {
	out := sanitizeKVs([]interface{}{"platform", "tiktok", "dangling"})
	if len(out) != 3 || out[2] != "dangling" {
		t.Fatalf("dangling key should be kept as-is: %v", out)
	}
}

func TestLooksLikeJWT(t *testing.T) {
	if !looksLikeJWT("eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxMjM0NTY3ODkwIn0.sig") {
		t.Fatal("expected JWT-shaped string to match")
	}
	if looksLikeJWT("v1.2.3") {
		t.Fatal("short dotted string should not match")
	}
}
