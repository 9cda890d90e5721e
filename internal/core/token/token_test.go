package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/quillpress/blog-system/internal/core/domain"
)

func TestCodec_RoundTrip(t *testing.T) {
	codec := NewCodec("secret", time.Hour)
	user := &domain.User{ID: "u1", Role: domain.RoleWriter}

	raw, issued, err := codec.Issue(user)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if issued.ID == "" {
		t.Fatalf("expected jti to be set")
	}

	claims, err := codec.Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if claims.UserID() != "u1" || claims.Role != domain.RoleWriter {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.ID != issued.ID {
		t.Fatalf("jti mismatch: %s vs %s", claims.ID, issued.ID)
	}
}

func TestCodec_Expired(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	codec := NewCodec("secret", time.Hour).WithClock(func() time.Time { return start })

	raw, _, err := codec.Issue(&domain.User{ID: "u1", Role: domain.RoleReader})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := codec.WithClock(func() time.Time { return start.Add(59 * time.Minute) }).Decode(raw); err != nil {
		t.Fatalf("expected valid before expiry, got %v", err)
	}

	_, err = codec.WithClock(func() time.Time { return start.Add(61 * time.Minute) }).Decode(raw)
	if !errors.Is(err, ErrInvalid) || !errors.Is(err, domain.ErrCredentialInvalid) {
		t.Fatalf("expected ErrInvalid after expiry, got %v", err)
	}
}

func TestCodec_RejectsTampering(t *testing.T) {
	codec := NewCodec("secret", time.Hour)
	raw, _, err := codec.Issue(&domain.User{ID: "u1", Role: domain.RoleReader})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	forged, _, err := NewCodec("other-secret", time.Hour).Issue(&domain.User{ID: "u1", Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub":  "u1",
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1"}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	parts := strings.Split(raw, ".")
	truncated := parts[0] + "." + parts[1] + ".AAAA"

	for name, input := range map[string]string{
		"empty":         "",
		"garbage":       "not-a-token",
		"bad signature": truncated,
		"other secret":  forged,
		"alg none":      unsigned,
		"no expiry":     noExp,
	} {
		if _, err := codec.Decode(input); !errors.Is(err, ErrInvalid) {
			t.Fatalf("%s: expected ErrInvalid, got %v", name, err)
		}
	}
}

func TestCodec_IssueRequiresID(t *testing.T) {
	if _, _, err := NewCodec("secret", 0).Issue(&domain.User{Role: domain.RoleReader}); err == nil {
		t.Fatalf("expected error for user without id")
	}
}

func TestPeek(t *testing.T) {
	raw, _, err := NewCodec("secret", time.Hour).Issue(&domain.User{ID: "u9", Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	claims, err := Peek(raw)
	if err != nil {
		t.Fatalf("Peek: %v", err)
	}
	if claims.UserID() != "u9" || claims.Role != domain.RoleAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if _, err := Peek("nope"); err == nil {
		t.Fatalf("expected error for garbage")
	}
}
