package auth

import (
	"errors"
	"testing"
	"time"

	"realones/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func testConfig() *config.JWTConfig {
	return &config.JWTConfig{Secret: "s3cret", Issuer: "realones", Audience: "authenticated", AccessExpiry: time.Hour}
}

func TestGenerateAndParse(t *testing.T) {
	cfg := testConfig()
	id := uuid.New()
	tok, err := GenerateAccessToken(cfg, id, "ada@example.com")
	if err != nil {
		t.Fatal(err)
	}
	claims, got, err := ParseAccessToken(cfg, tok)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if got != id || claims.Email != "ada@example.com" {
		t.Errorf("got %s / %+v", got, claims)
	}
}

func TestParseAccessToken_Rejects(t *testing.T) {
	cfg := testConfig()
	id := uuid.New()

	sign := func(c jwt.Claims, secret string) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
		if err != nil {
			t.Fatal(err)
		}
		return s
	}
	valid := func() jwt.RegisteredClaims {
		return jwt.RegisteredClaims{
			Subject:   id.String(),
			Issuer:    "realones",
			Audience:  jwt.ClaimStrings{"authenticated"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}
	}

	expired := valid()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	wrongIss := valid()
	wrongIss.Issuer = "someone-else"
	wrongAud := valid()
	wrongAud.Audience = jwt.ClaimStrings{"anon"}
	badSub := valid()
	badSub.Subject = "42"
	noExp := valid()
	noExp.ExpiresAt = nil

	tests := map[string]string{
		"garbage":        "not-a-token",
		"wrong secret":   sign(&Claims{RegisteredClaims: valid()}, "other"),
		"expired":        sign(&Claims{RegisteredClaims: expired}, cfg.Secret),
		"wrong issuer":   sign(&Claims{RegisteredClaims: wrongIss}, cfg.Secret),
		"wrong audience": sign(&Claims{RegisteredClaims: wrongAud}, cfg.Secret),
		"non uuid sub":   sign(&Claims{RegisteredClaims: badSub}, cfg.Secret),
		"no expiry":      sign(&Claims{RegisteredClaims: noExp}, cfg.Secret),
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			if _, _, err := ParseAccessToken(cfg, tok); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("err = %v, want ErrInvalidToken", err)
			}
		})
	}
}
